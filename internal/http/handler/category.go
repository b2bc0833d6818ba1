package handler

import (
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/service"
)

type createCategoryRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=255"`
}

type updateCategoryRequest struct {
	Name *string `json:"name" form:"name" validate:"omitempty,max=255"`
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Router /categories [get]
func ListCategories(svc service.CategoryService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": m.categories(list)})
	}
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Param id path int true "Category ID"
// @Router /categories/{id} [get]
func GetCategory(svc service.CategoryService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		cat, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": m.category(cat)})
	}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Security BearerAuth
// @Accept json,mpfd
// @Param name formData string true "Category name"
// @Param image formData file false "Category image"
// @Router /categories [post]
func CreateCategory(svc service.CategoryService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCategoryRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		fields := validateStruct(req)
		image, imgFields := readImage(c, "image", m.MaxImageBytes)
		if fields = merge(fields, imgFields); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		cat, err := svc.Create(c.UserContext(), req.Name, image)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Category created successfully",
			"data":    m.category(cat),
		})
	}
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Router /categories/{id} [put]
func UpdateCategory(svc service.CategoryService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req updateCategoryRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		req.Name = presentString(req.Name)
		fields := validateStruct(req)
		image, imgFields := readImage(c, "image", m.MaxImageBytes)
		if fields = merge(fields, imgFields); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		cat, err := svc.Update(c.UserContext(), id, service.CategoryInput{Name: req.Name, Image: image})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Category updated successfully",
			"data":    m.category(cat),
		})
	}
}

// DeleteCategory godoc
// @Summary Delete a category and its image
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Router /categories/{id} [delete]
func DeleteCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Category deleted successfully"})
	}
}
