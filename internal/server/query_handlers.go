package server

import (
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /search
// @Summary Search
// @Description Case-insensitive search over post titles and user names. Posts and users are paged independently by the same page index.
// @Tags discovery
// @Produce json
// @Param q query string true "Search text"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(10)
// @Success 200 {object} object{results=object{posts=[]models.SearchPost,users=[]models.SearchUser},total_posts=int,total_users=int,current_page=int,posts_pages=int,users_pages=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /search [get]
func (s *Server) Search(c *fiber.Ctx) error {
	page := parsePage(c)
	result, err := s.queryService.Search(c.UserContext(), service.SearchInput{
		Query:   c.Query("q"),
		Page:    page.Number,
		PerPage: page.PerPage,
	})
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(fiber.Map{
		"results": fiber.Map{
			"posts": result.Posts,
			"users": result.Users,
		},
		"total_posts":  result.TotalPosts,
		"total_users":  result.TotalUsers,
		"current_page": result.CurrentPage,
		"posts_pages":  result.PostsPages,
		"users_pages":  result.UsersPages,
	})
}

// TrendingStories handles GET /trending_stories
// @Summary Trending stories
// @Description The most liked posts
// @Tags discovery
// @Produce json
// @Success 200 {array} models.TrendingPost
// @Router /trending_stories [get]
func (s *Server) TrendingStories(c *fiber.Ctx) error {
	posts, err := s.queryService.Trending(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetTags handles GET /get_tags
// @Summary Tag catalog
// @Description Every tag with the number of posts carrying it, most used first
// @Tags discovery
// @Produce json
// @Success 200 {array} models.TagUsage
// @Router /get_tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.queryService.ListTags(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tags)
}

// RecentActivities handles GET /recent_activities
// @Summary Recent activity
// @Description The latest comments across all posts, newest first
// @Tags discovery
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Activity
// @Failure 401 {object} models.ErrorResponse
// @Router /recent_activities [get]
func (s *Server) RecentActivities(c *fiber.Ctx) error {
	activity, err := s.queryService.RecentActivity(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(activity)
}
