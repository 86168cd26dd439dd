package models

import "time"

// Post is an article written by a host user.
type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	HostID *uint  `gorm:"index" json:"host_id"`
	Host   *User  `gorm:"foreignKey:HostID;constraint:OnDelete:SET NULL" json:"-"`
	Title  string `gorm:"size:200;not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
	// Counts are never persisted; they are computed by the query that loads the post.
	LikesCount     int       `gorm:"->;-:migration" json:"likes"`
	BookmarksCount int       `gorm:"->;-:migration" json:"bookmarks"`
	CommentsCount  int       `gorm:"->;-:migration" json:"comments_count"`
	Tags           []string  `gorm:"-" json:"tags"`
	CreatedAt      time.Time `gorm:"index" json:"created"`
	UpdatedAt      time.Time `json:"updated"`
}

// Tag is a topic label shared between posts.
type Tag struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"uniqueIndex;size:200;not null" json:"name"`
	UsageCount int    `gorm:"->;-:migration" json:"count"`
}
