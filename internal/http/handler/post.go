package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/media"
	"blogapi/internal/service"
)

// readPostImages enforces the per-post image cap before reading any file.
func readPostImages(c *fiber.Ctx, m Media) ([]*media.Upload, map[string]string) {
	if m.MaxPostImages > 0 && len(multipartFiles(c, "images")) > m.MaxPostImages {
		return nil, map[string]string{"images": fmt.Sprintf("The images field must not have more than %d items.", m.MaxPostImages)}
	}
	return readImages(c, "images", m.MaxImageBytes)
}

type createPostRequest struct {
	UserID     *int64  `json:"user_id" form:"user_id" validate:"omitempty,gt=0"`
	CategoryID *int64  `json:"category_id" form:"category_id" validate:"omitempty,gt=0"`
	Title      string  `json:"title" form:"title" validate:"required,max=255"`
	Content    string  `json:"content" form:"content" validate:"required"`
	TagIDs     []int64 `json:"tag_ids" form:"-"`
}

type updatePostRequest struct {
	Title      *string `json:"title" form:"title" validate:"omitempty,max=255"`
	Content    *string `json:"content" form:"content"`
	CategoryID *int64  `json:"category_id" form:"category_id" validate:"omitempty,gt=0"`
	TagIDs     []int64 `json:"tag_ids" form:"-"`
}

// bindTagIDs fills tag ids from form fields; JSON bodies carry them already.
func bindTagIDs(c *fiber.Ctx, dst *[]int64) map[string]string {
	if isJSON(c) {
		return nil
	}
	ids, ok := formInt64s(c, "tag_ids")
	if !ok {
		return map[string]string{"tag_ids": "The selected tag ids is invalid."}
	}
	*dst = ids
	return nil
}

// ListPosts godoc
// @Summary List posts with author, category, tags and comments
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Router /posts [get]
func ListPosts(svc service.PostService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    m.posts(res.Items),
			"meta":    res.Meta,
		})
	}
}

// GetPost godoc
// @Summary Get a post with its relations
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Router /posts/{id} [get]
func GetPost(svc service.PostService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": m.post(p)})
	}
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Security BearerAuth
// @Accept json,mpfd
// @Param title formData string true "Title"
// @Param content formData string true "Body"
// @Param category_id formData int false "Category"
// @Param tag_ids[] formData []int false "Tags"
// @Param images[] formData file false "Images, kept in upload order"
// @Router /posts [post]
func CreatePost(svc service.PostService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createPostRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		fields := validateStruct(req)
		fields = merge(fields, bindTagIDs(c, &req.TagIDs))
		images, imgFields := readPostImages(c, m)
		if fields = merge(fields, imgFields); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		p, err := svc.Create(c.UserContext(), middleware.CurrentUser(c), service.CreatePostInput{
			UserID:     req.UserID,
			CategoryID: req.CategoryID,
			Title:      req.Title,
			Content:    req.Content,
			TagIDs:     req.TagIDs,
			Images:     images,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Post created successfully.",
			"data": createdPostResource{
				ID:      p.ID,
				Title:   p.Title,
				Content: p.Content,
				Images:  m.URLs.URLs(p.Images),
			},
		})
	}
}

// UpdatePost applies only the fields present in the request. New images replace the whole set.
// @Summary Update a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Router /posts/{id} [put]
func UpdatePost(svc service.PostService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req updatePostRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		req.Title = presentString(req.Title)
		req.Content = presentString(req.Content)

		fields := validateStruct(req)
		fields = merge(fields, bindTagIDs(c, &req.TagIDs))
		images, imgFields := readPostImages(c, m)
		if fields = merge(fields, imgFields); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		p, err := svc.Update(c.UserContext(), id, service.UpdatePostInput{
			Title:      req.Title,
			Content:    req.Content,
			CategoryID: req.CategoryID,
			TagIDs:     req.TagIDs,
			Images:     images,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"data":    m.flatPost(p),
			"message": "Updated successfully",
		})
	}
}

// DeletePost godoc
// @Summary Delete a post and its images
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Router /posts/{id} [delete]
func DeletePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Post deleted successfully."})
	}
}
