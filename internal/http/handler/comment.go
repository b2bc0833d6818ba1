package handler

import (
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/service"
)

type commentRequest struct {
	Content string `json:"content" form:"content" validate:"required,max=1000"`
}

func bindComment(c *fiber.Ctx) (commentRequest, map[string]string) {
	var req commentRequest
	if fields := bindBody(c, &req); fields != nil {
		return req, fields
	}
	return req, validateStruct(req)
}

// ListComments returns a post's comments, newest first.
//
// @Summary List a post's comments, newest first
// @Tags comments
// @Produce json
// @Param post path int true "Post ID"
// @Success 200 {object} map[string]any
// @Router /posts/{post}/comments [get]
func ListComments(svc service.CommentService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, ok := parseID(c, "post")
		if !ok {
			return invalidID(c)
		}
		list, err := svc.ListByPost(c.UserContext(), postID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": m.comments(list)})
	}
}

// @Summary Comment on a post
// @Tags comments
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param post path int true "Post ID"
// @Param content formData string true "Up to 1000 characters"
// @Success 201 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /posts/{post}/comments [post]
func CreateComment(svc service.CommentService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, ok := parseID(c, "post")
		if !ok {
			return invalidID(c)
		}
		req, fields := bindComment(c)
		if len(fields) > 0 {
			return writeValidation(c, fields)
		}

		cm, err := svc.Create(c.UserContext(), middleware.CurrentUser(c), postID, req.Content)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": m.comment(cm)})
	}
}

// @Summary Edit own comment
// @Tags comments
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param comment path int true "Comment ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /comments/{comment} [put]
func UpdateComment(svc service.CommentService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "comment")
		if !ok {
			return invalidID(c)
		}
		req, fields := bindComment(c)
		if len(fields) > 0 {
			return writeValidation(c, fields)
		}

		cm, err := svc.Update(c.UserContext(), middleware.CurrentUser(c), id, req.Content)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": m.comment(cm), "message": "Comment updated successfully"})
	}
}

// DeleteComment is allowed for the comment's author and the post's owner.
//
// @Summary Delete a comment as its author or the post owner
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param comment path int true "Comment ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /comments/{comment} [delete]
func DeleteComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "comment")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
	}
}
