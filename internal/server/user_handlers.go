package server

import (
	"io"
	"strings"

	"devhub/internal/models"
	"devhub/internal/service"
	"devhub/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// profile form keys, shared by the multipart, urlencoded and JSON encodings
const (
	fieldFirstName  = "firstName"
	fieldLastName   = "lastName"
	fieldEmail      = "email"
	fieldUsername   = "username"
	fieldBio        = "bio"
	fieldProfilePic = "profile_pic"
)

// CurrentUser handles GET /current_user
// @Summary Current user
// @Description Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /current_user [get]
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// EditProfile handles PUT /edit_profile
// @Summary Edit profile
// @Description Update profile fields and optionally upload a new profile picture. Omitted fields are left unchanged.
// @Tags users
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param firstName formData string false "First name"
// @Param lastName formData string false "Last name"
// @Param email formData string false "Email"
// @Param username formData string false "Username"
// @Param bio formData string false "Bio"
// @Param profile_pic formData file false "Profile picture"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /edit_profile [put]
func (s *Server) EditProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{UserID: currentUserID(c)}

	contentType := string(c.Request().Header.ContentType())
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		patch, avatar, err := parseMultipartProfile(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		in.Patch, in.Avatar = patch, avatar
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		in.Patch = parseFormProfile(c)
	default:
		var req struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Email     *string `json:"email"`
			Username  *string `json:"username"`
			Bio       *string `json:"bio"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid request body"))
			}
		}
		in.Patch = service.ProfilePatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Username:  req.Username,
			Bio:       req.Bio,
		}
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func parseMultipartProfile(c *fiber.Ctx) (service.ProfilePatch, *storage.AvatarUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return service.ProfilePatch{}, nil, models.NewValidationError("Invalid multipart form")
	}

	value := func(key string) *string {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}
	patch := service.ProfilePatch{
		FirstName: value(fieldFirstName),
		LastName:  value(fieldLastName),
		Email:     value(fieldEmail),
		Username:  value(fieldUsername),
		Bio:       value(fieldBio),
	}

	files := form.File[fieldProfilePic]
	if len(files) == 0 || files[0].Filename == "" {
		return patch, nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return patch, nil, models.NewValidationError("Invalid profile picture")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return patch, nil, models.NewValidationError("Invalid profile picture")
	}
	return patch, &storage.AvatarUpload{Filename: files[0].Filename, Content: content}, nil
}

func parseFormProfile(c *fiber.Ctx) service.ProfilePatch {
	args := c.Request().PostArgs()
	value := func(key string) *string {
		if !args.Has(key) {
			return nil
		}
		v := string(args.Peek(key))
		return &v
	}
	return service.ProfilePatch{
		FirstName: value(fieldFirstName),
		LastName:  value(fieldLastName),
		Email:     value(fieldEmail),
		Username:  value(fieldUsername),
		Bio:       value(fieldBio),
	}
}

// ServeUpload handles GET /uploads/:filename
// @Summary Serve upload
// @Description Serve a stored profile picture
// @Tags users
// @Produce image/webp
// @Param filename path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /uploads/{filename} [get]
func (s *Server) ServeUpload(c *fiber.Ctx) error {
	path, err := s.avatars.Path(c.Params("filename"))
	if err != nil {
		return respond(c, err)
	}
	return c.SendFile(path)
}
