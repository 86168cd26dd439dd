package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 200
	maxTagsOnPost = 20
)

type PostService struct {
	postRepo repository.PostRepository
	cache    *cache.Coordinator
}

type CreatePostInput struct {
	HostID uint
	Title  string
	Body   string
	Tags   []string
}

type EditPostInput struct {
	UserID uint
	PostID uint
	Patch  repository.PostPatch
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, coordinator *cache.Coordinator) *PostService {
	if coordinator == nil {
		coordinator = cache.NewCoordinator(nil)
	}
	return &PostService{postRepo: postRepo, cache: coordinator}
}

// CreatePost stores the post with its tags and flushes every cached listing.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Tags) > maxTagsOnPost {
		return nil, models.NewValidationError("Too many tags (max 20)")
	}

	hostID := in.HostID
	post := &models.Post{HostID: &hostID, Title: title, Body: in.Body}
	if err := s.postRepo.Create(ctx, post, in.Tags); err != nil {
		span.SetError(err)
		return nil, storeError(err)
	}
	s.cache.InvalidateAll(ctx)

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return created, nil
}

// EditPost applies the present fields of the patch. Only the host may edit.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.EditPost", attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	if err := s.authorizeHost(ctx, in.UserID, in.PostID, "edit"); err != nil {
		return nil, err
	}

	patch := in.Patch
	if patch.Title == nil && patch.Body == nil {
		return nil, models.NewValidationError("Nothing to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		patch.Title = &title
	}
	if patch.Body != nil && strings.TrimSpace(*patch.Body) == "" {
		return nil, models.NewValidationError("Body cannot be empty")
	}

	post, err := s.postRepo.Update(ctx, in.PostID, patch)
	if err != nil {
		span.SetError(err)
		return nil, storeError(err)
	}
	s.cache.InvalidateAll(ctx)
	return post, nil
}

// DeletePost removes the post with its comments and relations. Only the host may delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost", attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	if err := s.authorizeHost(ctx, in.UserID, in.PostID, "delete"); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		span.SetError(err)
		return storeError(err)
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

func (s *PostService) authorizeHost(ctx context.Context, userID, postID uint, action string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return storeError(err)
	}
	if post.HostID == nil || *post.HostID != userID {
		return models.NewForbiddenError("You can only " + action + " your own posts")
	}
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleLike", attribute.Int("post.id", int(postID)))
	defer span.End()

	res, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		return models.ToggleResult{}, storeError(err)
	}
	observability.RecordToggle("post_like", res.Active)
	return res, nil
}

func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleBookmark", attribute.Int("post.id", int(postID)))
	defer span.End()

	res, err := s.postRepo.ToggleBookmark(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		return models.ToggleResult{}, storeError(err)
	}
	observability.RecordToggle("post_bookmark", res.Active)
	return res, nil
}

func (s *PostService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	return liked, storeError(err)
}

func (s *PostService) IsBookmarked(ctx context.Context, userID, postID uint) (bool, error) {
	bookmarked, err := s.postRepo.IsBookmarked(ctx, userID, postID)
	return bookmarked, storeError(err)
}

// ListBookmarks returns the user's bookmarks, most recently bookmarked first.
func (s *PostService) ListBookmarks(ctx context.Context, userID uint) ([]models.BookmarkView, error) {
	posts, err := s.postRepo.ListBookmarked(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.BookmarkView, 0, len(posts))
	for _, p := range posts {
		v := models.BookmarkView{ID: p.ID, Title: p.Title, Created: p.CreatedAt}
		if p.Host != nil {
			v.HostUsername = p.Host.Username
		}
		out = append(out, v)
	}
	return out, nil
}
