package handler

import (
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/service"
)

type registerRequest struct {
	Name                 string  `json:"name" form:"name" validate:"required,max=50"`
	Email                string  `json:"email" form:"email" validate:"required,email,max=100"`
	Password             string  `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" form:"password_confirmation"`
	Bio                  *string `json:"bio" form:"bio" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param name formData string true "Display name"
// @Param email formData string true "Unique email"
// @Param password formData string true "At least 8 characters"
// @Param password_confirmation formData string true "Repeat password"
// @Param bio formData string false "Short bio"
// @Param profile_image formData file false "Avatar image"
// @Success 201 {object} map[string]any
// @Failure 422 {object} errorPayload
// @Router /register [post]
func Register(svc service.AuthService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		req.Bio = presentString(req.Bio)

		fields := validateStruct(req)
		if _, bad := fields["password"]; !bad {
			fields = merge(fields, checkConfirmation("password", req.Password, req.PasswordConfirmation))
		}
		avatar, imgFields := readImage(c, "profile_image", m.MaxImageBytes)
		fields = merge(fields, imgFields)
		if len(fields) > 0 {
			return writeValidation(c, fields)
		}

		u, err := svc.Register(c.UserContext(), service.RegisterInput{
			Name:         req.Name,
			Email:        req.Email,
			Password:     req.Password,
			Bio:          req.Bio,
			ProfileImage: avatar,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Registration successful",
			"user":    m.user(u),
		})
	}
}

// Login godoc
// @Summary Issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload
// @Router /login [post]
func Login(svc service.AuthService, m Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if fields := bindBody(c, &req); fields != nil {
			return writeValidation(c, fields)
		}
		if fields := validateStruct(req); len(fields) > 0 {
			return writeValidation(c, fields)
		}

		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": "Login successful",
			"user":    m.user(res.User),
			"token":   res.Token,
		})
	}
}

// Logout revokes every token of the caller.
// @Summary Revoke the caller's tokens
// @Tags auth
// @Security BearerAuth
// @Router /logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Logout successful"})
	}
}
