package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Stats counts what a run created.
type Stats struct {
	Users     int
	Posts     int
	Comments  int
	Likes     int
	Bookmarks int
}

// Seeder generates demo content through the service layer, so seeded data
// passes the same validation and cache invalidation as API writes.
type Seeder struct {
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	faker    *gofakeit.Faker
}

// NewSeeder creates a seeder. A zero seed picks a time-based one.
func NewSeeder(users *service.UserService, posts *service.PostService, comments *service.CommentService, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		users:    users,
		posts:    posts,
		comments: comments,
		faker:    gofakeit.New(seed),
	}
}

// Run creates users, then posts, then engagement on those posts.
func (s *Seeder) Run(ctx context.Context, p Preset) (Stats, error) {
	var stats Stats
	if err := p.Validate(); err != nil {
		return stats, err
	}

	users := make([]*models.User, 0, p.Users)
	for i := 0; i < p.Users; i++ {
		u, err := s.createUser(ctx, i, p.Password)
		if err != nil {
			return stats, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, u)
	}
	stats.Users = len(users)

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < p.PostsPerUser; i++ {
			post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
				HostID: u.ID,
				Title:  strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
				Body:   s.faker.Paragraph(s.faker.Number(1, 3), s.faker.Number(2, 5), 12, "\n\n"),
				Tags:   s.pickTags(p.Tags),
			})
			if err != nil {
				return stats, fmt.Errorf("seed post for %s: %w", u.Username, err)
			}
			posts = append(posts, post)
		}
	}
	stats.Posts = len(posts)

	for _, post := range posts {
		for i := 0; i < p.CommentsPerPost; i++ {
			author := users[s.faker.Number(0, len(users)-1)]
			if _, err := s.comments.AddComment(ctx, service.AddCommentInput{
				UserID: author.ID,
				PostID: post.ID,
				Body:   s.faker.Sentence(s.faker.Number(4, 16)),
			}); err != nil {
				return stats, fmt.Errorf("seed comment on post %d: %w", post.ID, err)
			}
			stats.Comments++
		}

		for _, u := range users {
			if s.faker.Float64Range(0, 1) < p.LikeRatio {
				if _, err := s.posts.ToggleLike(ctx, u.ID, post.ID); err != nil {
					return stats, fmt.Errorf("seed like on post %d: %w", post.ID, err)
				}
				stats.Likes++
			}
			if s.faker.Float64Range(0, 1) < p.BookmarkRatio {
				if _, err := s.posts.ToggleBookmark(ctx, u.ID, post.ID); err != nil {
					return stats, fmt.Errorf("seed bookmark on post %d: %w", post.ID, err)
				}
				stats.Bookmarks++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.String("preset", p.Name),
		slog.Int("users", stats.Users),
		slog.Int("posts", stats.Posts),
		slog.Int("comments", stats.Comments),
		slog.Int("likes", stats.Likes),
		slog.Int("bookmarks", stats.Bookmarks),
	)
	return stats, nil
}

func (s *Seeder) createUser(ctx context.Context, i int, password string) (*models.User, error) {
	first, last := s.faker.FirstName(), s.faker.LastName()
	// the index suffix keeps generated usernames unique
	username := fmt.Sprintf("%s%d", strings.ToLower(s.faker.Username()), i)
	res, err := s.users.Register(ctx, service.RegisterInput{
		Username:  username,
		Email:     username + "@devhub.test",
		Password:  password,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return nil, err
	}
	return res.User, nil
}

// pickTags returns up to three distinct tags from the catalog.
func (s *Seeder) pickTags(catalog []string) []string {
	if len(catalog) == 0 {
		return nil
	}
	n := s.faker.Number(0, min(3, len(catalog)))
	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(picked) < n {
		t := catalog[s.faker.Number(0, len(catalog)-1)]
		if !seen[t] {
			seen[t] = true
			picked = append(picked, t)
		}
	}
	return picked
}

// Clear deletes every row of the content graph, children first.
func Clear(ctx context.Context, db *gorm.DB) error {
	all := models.AllModels()
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	return nil
}
