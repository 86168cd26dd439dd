package service

import (
	"context"
	"strings"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// AllTags is the tag value clients send to mean "no tag filter".
	AllTags = "All"

	trendingLimit       = 10
	recentActivityLimit = 10
	activityCommented   = "commented on"
)

// QueryService answers the read-side queries, serving them through the cache.
type QueryService struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	tagRepo     repository.TagRepository
	cache       *cache.Coordinator
	pageSize    int
}

type ListPostsInput struct {
	Page     int
	PageSize int
	Tag      string
}

type SearchInput struct {
	Query   string
	Page    int
	PerPage int
}

func NewQueryService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	tagRepo repository.TagRepository,
	coordinator *cache.Coordinator,
	pageSize int,
) *QueryService {
	if coordinator == nil {
		coordinator = cache.NewCoordinator(nil)
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &QueryService{
		postRepo:    postRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
		cache:       coordinator,
		pageSize:    pageSize,
	}
}

func (s *QueryService) paging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// ListPosts returns one page of posts, newest first, optionally narrowed to a tag.
func (s *QueryService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	page, size := s.paging(in.Page, in.PageSize)
	tag := strings.TrimSpace(in.Tag)
	if tag == AllTags {
		tag = ""
	}

	var result models.PostPage
	err := s.cache.Aside(ctx, cache.FamilyPosts, cache.PostsPageKey(page, size, tag), cache.PostsPageTTL, &result,
		func(ctx context.Context) error {
			posts, total, err := s.postRepo.List(ctx, repository.ListFilter{
				Tag:    tag,
				Limit:  size,
				Offset: (page - 1) * size,
			})
			if err != nil {
				return storeError(err)
			}
			result = models.PostPage{
				Posts:       make([]models.PostSummary, len(posts)),
				Total:       total,
				Pages:       models.PageCount(total, size),
				CurrentPage: page,
			}
			for i, p := range posts {
				result.Posts[i] = models.NewPostSummary(p)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPost returns the post with its comments. The viewer's likes are per-user
// so the result is never cached.
func (s *QueryService) GetPost(ctx context.Context, postID, viewerID uint) (*models.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err)
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeError(err)
	}
	views, err := commentViews(ctx, s.commentRepo, comments, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.PostDetail{PostSummary: models.NewPostSummary(post), Comments: views}, nil
}

// Search matches post titles and user names case-insensitively. Both result
// sets are paged by the same page index.
func (s *QueryService) Search(ctx context.Context, in SearchInput) (*models.SearchResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page, size := s.paging(in.Page, in.PerPage)
	offset := (page - 1) * size

	var result models.SearchResult
	key := cache.SearchKey(strings.ToLower(query), page, size)
	err := s.cache.Aside(ctx, cache.FamilySearch, key, cache.SearchTTL, &result, func(ctx context.Context) error {
		posts, totalPosts, err := s.postRepo.Search(ctx, query, size, offset)
		if err != nil {
			return storeError(err)
		}
		users, totalUsers, err := s.userRepo.Search(ctx, query, size, offset)
		if err != nil {
			return storeError(err)
		}

		result = models.SearchResult{
			Posts:       make([]models.SearchPost, len(posts)),
			Users:       make([]models.SearchUser, len(users)),
			TotalPosts:  totalPosts,
			TotalUsers:  totalUsers,
			CurrentPage: page,
			PostsPages:  models.PageCount(totalPosts, size),
			UsersPages:  models.PageCount(totalUsers, size),
		}
		for i, p := range posts {
			result.Posts[i] = models.NewSearchPost(p)
		}
		for i, u := range users {
			result.Users[i] = models.SearchUser{
				ID:         u.ID,
				Username:   u.Username,
				FullName:   u.FullName(),
				ProfilePic: u.ProfilePic,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Trending returns the most liked posts. Posts nobody liked are left out.
func (s *QueryService) Trending(ctx context.Context) ([]models.TrendingPost, error) {
	var result []models.TrendingPost
	err := s.cache.Aside(ctx, cache.FamilyTrending, cache.TrendingKey, cache.TrendingTTL, &result, func(ctx context.Context) error {
		posts, err := s.postRepo.Trending(ctx, trendingLimit)
		if err != nil {
			return storeError(err)
		}
		result = make([]models.TrendingPost, len(posts))
		for i, p := range posts {
			result[i] = models.TrendingPost{
				ID:      p.ID,
				Title:   p.Title,
				Likes:   p.LikesCount,
				Created: p.CreatedAt,
			}
			if p.Host != nil {
				result[i].HostUsername = p.Host.Username
				result[i].HostAvatar = p.Host.ProfilePic
			}
		}
		return nil
	})
	return result, err
}

// RecentActivity returns the newest comments as activity entries.
func (s *QueryService) RecentActivity(ctx context.Context) ([]models.Activity, error) {
	var result []models.Activity
	err := s.cache.Aside(ctx, cache.FamilyActivity, cache.RecentActivityKey, cache.RecentActivityTTL, &result,
		func(ctx context.Context) error {
			comments, err := s.commentRepo.Recent(ctx, recentActivityLimit)
			if err != nil {
				return storeError(err)
			}
			result = make([]models.Activity, 0, len(comments))
			for _, c := range comments {
				if c.User == nil || c.Post == nil {
					continue
				}
				result = append(result, models.Activity{
					ID:        c.ID,
					User:      models.NewUserSummary(c.User),
					Post:      models.ActivityPost{ID: c.Post.ID, Title: c.Post.Title},
					Action:    activityCommented,
					Timestamp: c.CreatedAt,
				})
			}
			return nil
		})
	return result, err
}

// ListTags returns every tag with its usage count, most used first.
func (s *QueryService) ListTags(ctx context.Context) ([]models.TagUsage, error) {
	var result []models.TagUsage
	err := s.cache.Aside(ctx, cache.FamilyTags, cache.TagsKey, cache.TagsTTL, &result, func(ctx context.Context) error {
		tags, err := s.tagRepo.ListWithUsage(ctx)
		if err != nil {
			return storeError(err)
		}
		result = tags
		return nil
	})
	return result, err
}
