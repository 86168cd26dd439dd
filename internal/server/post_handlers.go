package server

import (
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /create_post
// @Summary Create post
// @Description Create a new post; unknown tags are added to the catalog
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,body=string,tags=[]string} true "Post data"
// @Success 201 {object} object{message=string,post=models.PostSummary}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /create_post [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title string   `json:"title"`
		Body  string   `json:"body"`
		Tags  []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		HostID: currentUserID(c),
		Title:  req.Title,
		Body:   req.Body,
		Tags:   req.Tags,
	})
	if err != nil {
		return respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    models.NewPostSummary(post),
	})
}

// GetPost handles GET /get_post/:id
// @Summary Get post
// @Description Get a post with its comments; comment isLiked reflects the caller
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostDetail
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /get_post/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.queryService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(detail)
}

// GetPosts handles GET /get_posts
// @Summary List posts
// @Description Newest first, optionally filtered by tag ("All" means no filter)
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(10)
// @Param tag query string false "Tag filter"
// @Success 200 {object} models.PostPage
// @Router /get_posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	result, err := s.queryService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:     page.Number,
		PageSize: page.PerPage,
		Tag:      c.Query("tag"),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// EditPost handles PUT /edit_post/:id
// @Summary Edit post
// @Description Update title and/or body of the caller's own post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{title=string,body=string} true "Fields to update"
// @Success 200 {object} object{message=string,post=object{id=int,title=string,body=string}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /edit_post/{id} [put]
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	post, err := s.postService.EditPost(c.UserContext(), service.EditPostInput{
		UserID: currentUserID(c),
		PostID: postID,
		Patch:  repository.PostPatch{Title: req.Title, Body: req.Body},
	})
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post": fiber.Map{
			"id":    post.ID,
			"title": post.Title,
			"body":  post.Body,
		},
	})
}

// DeletePost handles DELETE /delete_post/:id
// @Summary Delete post
// @Description Delete the caller's own post with its comments, likes and bookmarks
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /delete_post/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: postID,
	}); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// LikePost handles POST /like_post/:id
// @Summary Toggle like
// @Description Like the post, or unlike it when already liked
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,isLiked=bool,likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /like_post/{id} [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respond(c, err)
	}

	message := "Post unliked successfully"
	if res.Active {
		message = "Post liked successfully"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"isLiked": res.Active,
		"likes":   res.Count,
	})
}

// IsLiked handles GET /is_liked/:id
// @Summary Is liked
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{isLiked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /is_liked/{id} [get]
func (s *Server) IsLiked(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.IsLiked(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"isLiked": liked})
}

// BookmarkPost handles POST /bookmark_post/:id
// @Summary Toggle bookmark
// @Description Bookmark the post, or remove the bookmark when present
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,isBookmarked=bool,bookmarks=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /bookmark_post/{id} [post]
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.postService.ToggleBookmark(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respond(c, err)
	}

	message := "Post unbookmarked successfully"
	if res.Active {
		message = "Post bookmarked successfully"
	}
	return c.JSON(fiber.Map{
		"message":      message,
		"isBookmarked": res.Active,
		"bookmarks":    res.Count,
	})
}

// IsBookmarked handles GET /is_bookmarked/:id
// @Summary Is bookmarked
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{isBookmarked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /is_bookmarked/{id} [get]
func (s *Server) IsBookmarked(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	bookmarked, err := s.postService.IsBookmarked(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"isBookmarked": bookmarked})
}

// Bookmarks handles GET /bookmarks
// @Summary List bookmarks
// @Description The caller's bookmarked posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.BookmarkView
// @Failure 401 {object} models.ErrorResponse
// @Router /bookmarks [get]
func (s *Server) Bookmarks(c *fiber.Ctx) error {
	bookmarks, err := s.postService.ListBookmarks(c.UserContext(), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(bookmarks)
}
