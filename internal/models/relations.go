package models

import "time"

// The relation tables below are explicit entities with composite primary keys,
// so every edge of the graph can be created and deleted on its own.

// PostTag links a post to one of its tags.
type PostTag struct {
	PostID uint  `gorm:"primaryKey"`
	TagID  uint  `gorm:"primaryKey;index"`
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Tag    *Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

func (PostTag) TableName() string { return "post_tags" }

// PostLike records that a user likes a post.
type PostLike struct {
	PostID    uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"primaryKey;index"`
	Post      *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }

// PostBookmark records that a user bookmarked a post.
type PostBookmark struct {
	PostID    uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"primaryKey;index"`
	Post      *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (PostBookmark) TableName() string { return "post_bookmarks" }

// PostCommentor records that a user has at least one comment on a post.
type PostCommentor struct {
	PostID    uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"primaryKey;index"`
	Post      *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (PostCommentor) TableName() string { return "post_commentors" }

// CommentLike records that a user likes a comment.
type CommentLike struct {
	CommentID uint     `gorm:"primaryKey"`
	UserID    uint     `gorm:"primaryKey;index"`
	Comment   *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	User      *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (CommentLike) TableName() string { return "comment_likes" }

// ToggleResult is the state of a relation after a toggle and the recomputed count.
type ToggleResult struct {
	Active bool
	Count  int64
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Tag{},
		&Comment{},
		&PostTag{},
		&PostLike{},
		&PostBookmark{},
		&PostCommentor{},
		&CommentLike{},
	}
}
