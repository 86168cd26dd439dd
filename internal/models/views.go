package models

import (
	"time"
	"unicode/utf8"
)

// SearchExcerptLength is the number of body characters shown in a search hit.
const SearchExcerptLength = 200

// UserSummary is the public projection of a user embedded in other responses.
type UserSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	ProfilePic string `json:"profile_pic"`
}

// NewUserSummary projects u.
func NewUserSummary(u *User) UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ProfilePic: u.ProfilePic,
	}
}

// PostSummary is a post as it appears in listings.
type PostSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
	HostID       *uint     `json:"host_id"`
	HostUsername string    `json:"host_username"`
	HostAvatar   string    `json:"host_avatar"`
	Likes        int       `json:"likes"`
	Bookmarks    int       `json:"bookmarks"`
	Comments     int       `json:"comments_count"`
	Tags         []string  `json:"tags"`
}

// NewPostSummary projects a post loaded with its host and counts.
func NewPostSummary(p *Post) PostSummary {
	s := PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Created:   p.CreatedAt,
		Updated:   p.UpdatedAt,
		HostID:    p.HostID,
		Likes:     p.LikesCount,
		Bookmarks: p.BookmarksCount,
		Comments:  p.CommentsCount,
		Tags:      p.Tags,
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if p.Host != nil {
		s.HostUsername = p.Host.Username
		s.HostAvatar = p.Host.ProfilePic
	}
	return s
}

// PostPage is one page of the post listing.
type PostPage struct {
	Posts       []PostSummary `json:"posts"`
	Total       int64         `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

// CommentAuthor is the author block attached to a comment.
type CommentAuthor struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommentView is a comment as returned to clients.
type CommentView struct {
	ID      uint           `json:"id"`
	PostID  uint           `json:"post_id"`
	Content string         `json:"content"`
	Created time.Time      `json:"created"`
	Author  *CommentAuthor `json:"author"`
	Likes   int            `json:"likes"`
	IsLiked bool           `json:"isLiked"`
}

// NewCommentView projects a comment; the author block is nil once the author is gone.
func NewCommentView(c *Comment) CommentView {
	v := CommentView{
		ID:      c.ID,
		PostID:  c.PostID,
		Content: c.Body,
		Created: c.CreatedAt,
		Likes:   c.LikesCount,
	}
	if c.User != nil {
		v.Author = &CommentAuthor{
			ID:     c.User.ID,
			Name:   c.User.FullName(),
			Avatar: c.User.ProfilePic,
		}
	}
	return v
}

// PostDetail is a single post with its comments.
type PostDetail struct {
	PostSummary
	Comments []CommentView `json:"comments"`
}

// BookmarkView is an entry of the caller's bookmark list.
type BookmarkView struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	HostUsername string    `json:"host_username"`
	Created      time.Time `json:"created"`
}

// SearchPost is a post hit with its body cut down to an excerpt.
type SearchPost struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	HostUsername string    `json:"host_username"`
	Created      time.Time `json:"created"`
}

// NewSearchPost projects a post hit.
func NewSearchPost(p *Post) SearchPost {
	s := SearchPost{
		ID:      p.ID,
		Title:   p.Title,
		Excerpt: Excerpt(p.Body, SearchExcerptLength),
		Created: p.CreatedAt,
	}
	if p.Host != nil {
		s.HostUsername = p.Host.Username
	}
	return s
}

// SearchUser is a user hit.
type SearchUser struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	ProfilePic string `json:"profile_pic"`
}

// SearchResult holds both hit lists; each is paginated on its own by the same page index.
type SearchResult struct {
	Posts       []SearchPost `json:"posts"`
	Users       []SearchUser `json:"users"`
	TotalPosts  int64        `json:"total_posts"`
	TotalUsers  int64        `json:"total_users"`
	CurrentPage int          `json:"current_page"`
	PostsPages  int          `json:"posts_pages"`
	UsersPages  int          `json:"users_pages"`
}

// TrendingPost is an entry of the trending list.
type TrendingPost struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	HostUsername string    `json:"host_username"`
	HostAvatar   string    `json:"host_avatar"`
	Likes        int       `json:"likes"`
	Created      time.Time `json:"created"`
}

// ActivityPost identifies the post an activity happened on.
type ActivityPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID        uint         `json:"id"`
	User      UserSummary  `json:"user"`
	Post      ActivityPost `json:"post"`
	Action    string       `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
}

// TagUsage is a tag with the number of posts carrying it.
type TagUsage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Excerpt truncates s to max characters and appends "..." when something was cut.
func Excerpt(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// PageCount returns how many pages of size perPage are needed for total items.
func PageCount(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
