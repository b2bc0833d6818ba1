package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/storage"
)

// ServeStorage streams stored images so public URLs work for every storage driver.
func ServeStorage(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimLeft(c.Params("*"), "/")
		if key == "" || strings.Contains(key, "..") {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}

		rc, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeInternal(c, err)
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(info.Size))
	}
}
