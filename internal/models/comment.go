package models

import "time"

// Comment is a reply left on a post.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Post       *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Body       string    `gorm:"type:text;not null" json:"content"`
	LikesCount int       `gorm:"->;-:migration" json:"likes"`
	CreatedAt  time.Time `gorm:"index" json:"created"`
	UpdatedAt  time.Time `json:"updated"`
}
