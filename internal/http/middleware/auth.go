package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/model"
)

// UserLocalKey holds the authenticated *model.User.
const UserLocalKey = "user"

// TokenAuthenticator resolves a plain bearer token to its user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, plain string) (*model.User, error)
}

// Authenticate rejects requests without a valid "Authorization: Bearer <token>" header.
// isUnauthenticated decides which authenticator errors mean 401; anything else is a 500.
func Authenticate(auth TokenAuthenticator, isUnauthenticated func(error) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
		}

		u, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if isUnauthenticated(err) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
			}
			return err
		}

		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
