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

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	cache       *cache.Coordinator
}

type AddCommentInput struct {
	UserID uint
	PostID uint
	Body   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, coordinator *cache.Coordinator) *CommentService {
	if coordinator == nil {
		coordinator = cache.NewCoordinator(nil)
	}
	return &CommentService{commentRepo: commentRepo, cache: coordinator}
}

// AddComment stores the comment and drops the cached activity feed.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.CommentView, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.AddComment", attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	userID := in.UserID
	comment := &models.Comment{PostID: in.PostID, UserID: &userID, Body: body}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, storeError(err)
	}
	s.cache.InvalidateRecentActivity(ctx)

	view := models.NewCommentView(comment)
	return &view, nil
}

// DeleteComment removes the caller's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	span, ctx := observability.NewSpan(ctx, "CommentService.DeleteComment", attribute.Int("comment.id", int(in.CommentID)))
	defer span.End()

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return storeError(err)
	}
	if comment.UserID == nil || *comment.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		span.SetError(err)
		return storeError(err)
	}
	s.cache.InvalidateRecentActivity(ctx)
	return nil
}

func (s *CommentService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (models.ToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.ToggleCommentLike", attribute.Int("comment.id", int(commentID)))
	defer span.End()

	res, err := s.commentRepo.ToggleLike(ctx, userID, commentID)
	if err != nil {
		span.SetError(err)
		return models.ToggleResult{}, storeError(err)
	}
	observability.RecordToggle("comment_like", res.Active)
	return res, nil
}

func (s *CommentService) IsCommentLiked(ctx context.Context, userID, commentID uint) (bool, error) {
	liked, err := s.commentRepo.IsLiked(ctx, userID, commentID)
	return liked, storeError(err)
}

// ListComments returns the post's comments oldest first, flagging those the viewer liked.
// A zero viewerID marks none as liked.
func (s *CommentService) ListComments(ctx context.Context, postID, viewerID uint) ([]models.CommentView, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeError(err)
	}
	return commentViews(ctx, s.commentRepo, comments, viewerID)
}

func commentViews(ctx context.Context, repo repository.CommentRepository, comments []*models.Comment, viewerID uint) ([]models.CommentView, error) {
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := repo.LikedIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.NewCommentView(c)
		views[i].IsLiked = liked[c.ID]
	}
	return views, nil
}
