package service

import (
	"context"
	"errors"
	"testing"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository. Unset funcs return zero values.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	existsByUsernameFn func(context.Context, string, uint) (bool, error)
	existsByEmailFn    func(context.Context, string, uint) (bool, error)
	updateFn           func(context.Context, *models.User) error
	searchFn           func(context.Context, string, int, int) ([]*models.User, int64, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	if s.existsByUsernameFn == nil {
		return false, nil
	}
	return s.existsByUsernameFn(ctx, username, excludeID)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	if s.existsByEmailFn == nil {
		return false, nil
	}
	return s.existsByEmailFn(ctx, email, excludeID)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, int64, error) {
	if s.searchFn == nil {
		return nil, 0, nil
	}
	return s.searchFn(ctx, query, limit, offset)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post, []string) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	updateFn         func(context.Context, uint, repository.PostPatch) (*models.Post, error)
	deleteFn         func(context.Context, uint) error
	listFn           func(context.Context, repository.ListFilter) ([]*models.Post, int64, error)
	searchFn         func(context.Context, string, int, int) ([]*models.Post, int64, error)
	trendingFn       func(context.Context, int) ([]*models.Post, error)
	listBookmarkedFn func(context.Context, uint) ([]*models.Post, error)
	toggleLikeFn     func(context.Context, uint, uint) (models.ToggleResult, error)
	toggleBookmarkFn func(context.Context, uint, uint) (models.ToggleResult, error)
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	isBookmarkedFn   func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tags []string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, post, tags)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, patch repository.PostPatch) (*models.Post, error) {
	if s.updateFn == nil {
		return &models.Post{ID: id}, nil
	}
	return s.updateFn(ctx, id, patch)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.ListFilter) ([]*models.Post, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, int64, error) {
	if s.searchFn == nil {
		return nil, 0, nil
	}
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) Trending(ctx context.Context, limit int) ([]*models.Post, error) {
	if s.trendingFn == nil {
		return nil, nil
	}
	return s.trendingFn(ctx, limit)
}
func (s *postRepoStub) ListBookmarked(ctx context.Context, userID uint) ([]*models.Post, error) {
	if s.listBookmarkedFn == nil {
		return nil, nil
	}
	return s.listBookmarkedFn(ctx, userID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	if s.toggleLikeFn == nil {
		return models.ToggleResult{}, nil
	}
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) ToggleBookmark(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	if s.toggleBookmarkFn == nil {
		return models.ToggleResult{}, nil
	}
	return s.toggleBookmarkFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if s.isLikedFn == nil {
		return false, nil
	}
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) IsBookmarked(ctx context.Context, userID, postID uint) (bool, error) {
	if s.isBookmarkedFn == nil {
		return false, nil
	}
	return s.isBookmarkedFn(ctx, userID, postID)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	likedIDsFn   func(context.Context, uint, []uint) (map[uint]bool, error)
	deleteFn     func(context.Context, uint) error
	toggleLikeFn func(context.Context, uint, uint) (models.ToggleResult, error)
	isLikedFn    func(context.Context, uint, uint) (bool, error)
	recentFn     func(context.Context, int) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if s.listByPostFn == nil {
		return nil, nil
	}
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) LikedIDs(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	if s.likedIDsFn == nil {
		return map[uint]bool{}, nil
	}
	return s.likedIDsFn(ctx, userID, ids)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ToggleLike(ctx context.Context, userID, commentID uint) (models.ToggleResult, error) {
	if s.toggleLikeFn == nil {
		return models.ToggleResult{}, nil
	}
	return s.toggleLikeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) IsLiked(ctx context.Context, userID, commentID uint) (bool, error) {
	if s.isLikedFn == nil {
		return false, nil
	}
	return s.isLikedFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Recent(ctx context.Context, limit int) ([]*models.Comment, error) {
	if s.recentFn == nil {
		return nil, nil
	}
	return s.recentFn(ctx, limit)
}

// newTestCache returns a coordinator backed by a private miniredis.
func newTestCache(t *testing.T) (*cache.Coordinator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCoordinator(cache.NewRedisStore(client, "test")), mr
}

func assertCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func ptr[T any](v T) *T {
	return &v
}
