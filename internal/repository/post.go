package repository

import (
	"context"
	"errors"

	"devhub/internal/models"

	"gorm.io/gorm"
)

// ListFilter narrows and pages the post listing. An empty Tag means no filter.
type ListFilter struct {
	Tag    string
	Limit  int
	Offset int
}

// PostPatch carries optional edits; nil fields are left untouched.
type PostPatch struct {
	Title *string
	Body  *string
}

// PostRepository defines interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagNames []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, id uint, patch PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]*models.Post, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, int64, error)
	Trending(ctx context.Context, limit int) ([]*models.Post, error)
	ListBookmarked(ctx context.Context, userID uint) ([]*models.Post, error)
	ToggleLike(ctx context.Context, userID, postID uint) (models.ToggleResult, error)
	ToggleBookmark(ctx context.Context, userID, postID uint) (models.ToggleResult, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	IsBookmarked(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails selects posts with their host and every derived counter.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM post_bookmarks WHERE post_bookmarks.post_id = posts.id) AS bookmarks_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count`).
		Preload("Host")
}

func withTag(tag string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tag == "" {
			return db
		}
		return db.Where(`EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id
			WHERE post_tags.post_id = posts.id AND tags.name = ?)`, tag)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}

// loadTags fills Tags on each post with one query.
func loadTags(db *gorm.DB, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		p.Tags = []string{}
		byID[p.ID] = p
	}

	var rows []struct {
		PostID uint
		Name   string
	}
	err := db.Table("post_tags").
		Select("post_tags.post_id AS post_id, tags.name AS name").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		if p := byID[row.PostID]; p != nil {
			p.Tags = append(p.Tags, row.Name)
		}
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		tags, err := upsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		post.Tags = make([]string, 0, len(tags))
		for _, t := range tags {
			if err := tx.Create(&models.PostTag{PostID: post.ID, TagID: t.ID}).Error; err != nil {
				return err
			}
			post.Tags = append(post.Tags, t.Name)
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return getPost(r.db.WithContext(ctx), id)
}

func getPost(db *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(db).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	if err := loadTags(db, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, patch PostPatch) (*models.Post, error) {
	var updated *models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := rowExists(lockForUpdate(tx), "posts", id)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Post", id)
		}

		changes := map[string]any{}
		if patch.Title != nil {
			changes["title"] = *patch.Title
		}
		if patch.Body != nil {
			changes["body"] = *patch.Body
		}
		if len(changes) > 0 {
			if err := tx.Model(&models.Post{ID: id}).Updates(changes).Error; err != nil {
				return err
			}
		}

		updated, err = getPost(tx, id)
		return err
	})
	return updated, err
}

// Delete removes the post and everything hanging off it in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := rowExists(lockForUpdate(tx), "posts", id)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Post", id)
		}

		if err := tx.Exec("DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)", id).Error; err != nil {
			return err
		}
		for _, child := range []any{&models.Comment{}, &models.PostTag{}, &models.PostLike{}, &models.PostBookmark{}, &models.PostCommentor{}} {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) List(ctx context.Context, filter ListFilter) ([]*models.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Scopes(withTag(filter.Tag)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := withDetails(db).Scopes(withTag(filter.Tag), newestFirst).
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	if err := loadTags(db, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Search matches titles case-insensitively.
func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, int64, error) {
	db := r.db.WithContext(ctx)
	cond := `LOWER(posts.title) LIKE ? ESCAPE '\'`
	pattern := likePattern(query)

	var total int64
	if err := db.Model(&models.Post{}).Where(cond, pattern).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := withDetails(db).Where(cond, pattern).Scopes(newestFirst).
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

// Trending returns liked posts only, most liked first, newest first on ties.
func (r *postRepository) Trending(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := withDetails(r.db.WithContext(ctx)).
		Where("EXISTS (SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id)").
		Order("likes_count DESC").
		Scopes(newestFirst).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListBookmarked returns the user's bookmarks, most recently bookmarked first.
func (r *postRepository) ListBookmarked(ctx context.Context, userID uint) ([]*models.Post, error) {
	db := r.db.WithContext(ctx)
	ok, err := rowExists(db, "users", userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", userID)
	}

	var posts []*models.Post
	err = withDetails(db).
		Joins("JOIN post_bookmarks ON post_bookmarks.post_id = posts.id").
		Where("post_bookmarks.user_id = ?", userID).
		Order("post_bookmarks.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	return toggle(ctx, r.db, postLikes, postID, userID)
}

func (r *postRepository) ToggleBookmark(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	return toggle(ctx, r.db, postBookmarks, postID, userID)
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return isMember(ctx, r.db, postLikes, postID, userID)
}

func (r *postRepository) IsBookmarked(ctx context.Context, userID, postID uint) (bool, error) {
	return isMember(ctx, r.db, postBookmarks, postID, userID)
}
