package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devhub/internal/auth"
	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/storage"
	"devhub/internal/validation"
)

const invalidCredentials = "Invalid username or password"

type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
	revoked  auth.RevocationList
	avatars  storage.AvatarStore
	cache    *cache.Coordinator
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// ProfilePatch carries optional profile edits. A nil field is left untouched.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	Bio       *string
}

type UpdateProfileInput struct {
	UserID uint
	Patch  ProfilePatch
	Avatar *storage.AvatarUpload
}

func NewUserService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	revoked auth.RevocationList,
	avatars storage.AvatarStore,
	coordinator *cache.Coordinator,
) *UserService {
	if revoked == nil {
		revoked = auth.NoopRevocationList{}
	}
	if coordinator == nil {
		coordinator = cache.NewCoordinator(nil)
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		revoked:  revoked,
		avatars:  avatars,
		cache:    coordinator,
	}
}

// Register creates the account and signs the new user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = models.NormalizeUsername(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	// bcrypt limit; counted in bytes, not characters
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, models.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, in.Username, 0)
	if err != nil {
		return nil, storeError(err)
	}
	if exists {
		return nil, models.NewConflictError("Username already exists")
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, in.Email, 0)
	if err != nil {
		return nil, storeError(err)
	}
	if exists {
		return nil, models.NewConflictError("Email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, models.NewValidationError(err.Error())
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ProfilePic:   models.DefaultProfilePic,
	}
	// The unique indexes still catch a registration racing this one.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeError(err)
	}
	return s.signIn(user)
}

// Authenticate checks credentials. Unknown users and wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	username = models.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	return s.signIn(user)
}

func (s *UserService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// UpdateProfile applies the present fields of the patch and an optional new avatar.
// Username and avatar changes flush cached listings, which embed both.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, storeError(err)
	}

	p := in.Patch
	flush := false

	if p.FirstName != nil {
		first := strings.TrimSpace(*p.FirstName)
		if first == "" {
			return nil, models.NewValidationError("firstName cannot be empty")
		}
		if err := validation.Var("firstName", first, "max=50"); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.FirstName = first
	}
	if p.LastName != nil {
		last := strings.TrimSpace(*p.LastName)
		if err := validation.Var("lastName", last, "max=50"); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.LastName = last
	}
	if p.Bio != nil {
		user.Bio = strings.TrimSpace(*p.Bio)
	}

	if p.Email != nil {
		email := models.NormalizeEmail(*p.Email)
		if email == "" {
			return nil, models.NewValidationError("email cannot be empty")
		}
		if err := validation.Var("email", email, "email,max=120"); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			taken, err := s.userRepo.ExistsByEmail(ctx, email, user.ID)
			if err != nil {
				return nil, storeError(err)
			}
			if taken {
				return nil, models.NewConflictError("Email already exists")
			}
			user.Email = email
		}
	}

	if p.Username != nil {
		username := models.NormalizeUsername(*p.Username)
		if username == "" {
			return nil, models.NewValidationError("username cannot be empty")
		}
		if err := validation.Var("username", username, "max=50"); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			taken, err := s.userRepo.ExistsByUsername(ctx, username, user.ID)
			if err != nil {
				return nil, storeError(err)
			}
			if taken {
				return nil, models.NewConflictError("Username already exists")
			}
			user.Username = username
			flush = true
		}
	}

	if in.Avatar != nil {
		if s.avatars == nil {
			return nil, models.NewInternalError(errors.New("avatar storage not configured"))
		}
		name, err := s.avatars.Save(ctx, *in.Avatar)
		if err != nil {
			return nil, storeError(err)
		}
		user.ProfilePic = name
		flush = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if in.Avatar != nil {
			_ = s.avatars.Remove(user.ProfilePic)
		}
		return nil, storeError(err)
	}
	if flush {
		s.cache.InvalidateAll(ctx)
	}
	return user, nil
}

// VerifyToken parses an access token and rejects revoked ones.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := s.VerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return models.NewUnauthorizedError("Invalid or expired token")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
