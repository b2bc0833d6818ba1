package handler

import (
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/service"
)

type updateProfileRequest struct {
	Name                 *string `json:"name" form:"name" validate:"omitempty,max=50"`
	Email                *string `json:"email" form:"email" validate:"omitempty,email,max=100"`
	Bio                  *string `json:"bio" form:"bio" validate:"omitempty,max=255"`
	Password             *string `json:"password" form:"password" validate:"omitempty,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" form:"password_confirmation"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Router /users [get]
func ListUsers(svc service.UserService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": m.users(users)})
	}
}

// Profile returns the caller's public projection.
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Router /profile [get]
func Profile(m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(m.user(middleware.CurrentUser(c)))
	}
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Security BearerAuth
// @Accept json,mpfd
// @Param profile_image formData file false "Avatar image"
// @Router /profile/update [put]
func UpdateProfile(svc service.UserService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateProfileRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		req.Name = presentString(req.Name)
		req.Email = presentString(req.Email)
		req.Bio = presentString(req.Bio)
		req.Password = presentString(req.Password)

		fields := validateStruct(req)
		if _, bad := fields["password"]; !bad && req.Password != nil {
			fields = merge(fields, checkConfirmation("password", *req.Password, req.PasswordConfirmation))
		}
		avatar, imgFields := readImage(c, "profile_image", m.MaxImageBytes)
		fields = merge(fields, imgFields)
		if len(fields) > 0 {
			return writeValidation(c, fields)
		}

		u, err := svc.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), service.UpdateProfileInput{
			Name:         req.Name,
			Email:        req.Email,
			Bio:          req.Bio,
			Password:     req.Password,
			ProfileImage: avatar,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": "Profile updated successfully",
			"user":    m.updatedUser(u),
		})
	}
}

// DeleteUser godoc
// @Summary Delete a user (admin only)
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Router /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "User deleted successfully"})
	}
}
