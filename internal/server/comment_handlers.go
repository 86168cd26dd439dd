package server

import (
	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /add_comment/:id
// @Summary Add comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment content"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /add_comment/{id} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID: currentUserID(c),
		PostID: postID,
		Body:   req.Content,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /get_comments/:id
// @Summary List comments
// @Description Comments of a post, oldest first. isLiked is set when a valid bearer token is sent.
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.CommentView
// @Router /get_comments/{id} [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)
	comments, err := s.commentService.ListComments(c.UserContext(), postID, viewerID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comments)
}

// LikeComment handles POST /like_comment/:id
// @Summary Toggle comment like
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string,isLiked=bool,likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /like_comment/{id} [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.commentService.ToggleCommentLike(c.UserContext(), currentUserID(c), commentID)
	if err != nil {
		return respond(c, err)
	}

	message := "Comment unliked successfully"
	if res.Active {
		message = "Comment liked successfully"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"isLiked": res.Active,
		"likes":   res.Count,
	})
}

// IsCommentLiked handles GET /is_comment_liked/:id
// @Summary Is comment liked
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{isLiked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /is_comment_liked/{id} [get]
func (s *Server) IsCommentLiked(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.commentService.IsCommentLiked(c.UserContext(), currentUserID(c), commentID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"isLiked": liked})
}

// DeleteComment handles DELETE /delete_comment/:id
// @Summary Delete comment
// @Description Only the author may delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /delete_comment/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
	}); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
