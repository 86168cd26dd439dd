package repository

import (
	"context"
	"errors"

	"devhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	LikedIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, commentID uint) (models.ToggleResult, error)
	IsLiked(ctx context.Context, userID, commentID uint) (bool, error)
	Recent(ctx context.Context, limit int) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `comments.*,
	(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count`

// Create inserts the comment and records its author as a commentor of the post.
// The post row is share-locked so a concurrent post deletion cannot orphan it.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := rowExists(lockForShare(tx), "posts", comment.PostID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Post", comment.PostID)
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if comment.UserID != nil {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.PostCommentor{PostID: comment.PostID, UserID: *comment.UserID}).Error
			if err != nil {
				return err
			}
		}
		return tx.Preload("User").Take(comment, comment.ID).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Select(commentColumns).Preload("User").Where("comments.id = ?", id).Take(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns the post's comments in the order they were written.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	db := r.db.WithContext(ctx)
	ok, err := rowExists(db, "posts", postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Post", postID)
	}

	var comments []*models.Comment
	err = db.Select(commentColumns).Preload("User").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").Order("comments.id ASC").
		Find(&comments).Error
	return comments, err
}

// LikedIDs returns which of commentIDs the user has liked.
func (r *commentRepository) LikedIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if userID == 0 || len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// Delete removes the comment and its likes. The author stays a commentor of
// the post while they have other comments on it.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := lockForUpdate(tx).Select("id", "post_id", "user_id").Where("id = ?", id).Take(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		if err != nil {
			return err
		}

		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}

		if comment.UserID == nil {
			return nil
		}
		var remaining int64
		err = tx.Model(&models.Comment{}).
			Where("post_id = ? AND user_id = ?", comment.PostID, *comment.UserID).
			Count(&remaining).Error
		if err != nil || remaining > 0 {
			return err
		}
		return tx.Where("post_id = ? AND user_id = ?", comment.PostID, *comment.UserID).
			Delete(&models.PostCommentor{}).Error
	})
}

func (r *commentRepository) ToggleLike(ctx context.Context, userID, commentID uint) (models.ToggleResult, error) {
	return toggle(ctx, r.db, commentLikes, commentID, userID)
}

func (r *commentRepository) IsLiked(ctx context.Context, userID, commentID uint) (bool, error) {
	return isMember(ctx, r.db, commentLikes, commentID, userID)
}

// Recent returns the newest comments whose author still exists, with author and post loaded.
func (r *commentRepository) Recent(ctx context.Context, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Post").
		Where("comments.user_id IS NOT NULL").
		Order("comments.created_at DESC").Order("comments.id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
