package handler

import (
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/service"
)

type tagRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=255"`
}

// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {object} map[string]any
// @Router /tags [get]
func ListTags(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": tags, "message": "Tags retrieved successfully"})
	}
}

// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]any
// @Router /tags/{id} [get]
func GetTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Tag retrieved successfully", "data": t})
	}
}

// @Summary Create a tag
// @Tags tags
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param name formData string true "Unique tag name"
// @Success 201 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /tags [post]
func CreateTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tagRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		if fields := validateStruct(req); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		t, err := svc.Create(c.UserContext(), req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tag created successfully", "data": t})
	}
}

// UpdateTag renames a tag; the name stays unique across other tags.
//
// @Summary Rename a tag
// @Tags tags
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /tags/{id} [put]
func UpdateTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req tagRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		if fields := validateStruct(req); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		t, err := svc.Update(c.UserContext(), id, &req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Tag updated successfully", "data": t})
	}
}

// @Summary Delete a tag
// @Tags tags
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload "Unauthenticated"
// @Router /tags/{id} [delete]
func DeleteTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Tag deleted successfully"})
	}
}
