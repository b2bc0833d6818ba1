package handler

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/service"
	"blogapi/internal/storage"
)

// Services groups the application services the routes dispatch to.
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Category service.CategoryService
	Tag      service.TagService
	Post     service.PostService
	Comment  service.CommentService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, store storage.Storage, svc Services, m Media) {
	auth := middleware.Authenticate(svc.Auth, func(err error) bool {
		return errors.Is(err, service.ErrUnauthenticated)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/storage/*", ServeStorage(store))

	app.Post("/register", Register(svc.Auth, m))
	app.Post("/login", Login(svc.Auth, m))
	app.Post("/logout", auth, Logout(svc.Auth))

	app.Get("/profile", auth, Profile(m))
	app.Put("/profile/update", auth, UpdateProfile(svc.User, m))
	app.Get("/users", auth, ListUsers(svc.User, m))
	app.Delete("/users/:id", auth, DeleteUser(svc.User))

	app.Get("/categories", ListCategories(svc.Category, m))
	app.Get("/categories/:id", GetCategory(svc.Category, m))
	app.Post("/categories", auth, CreateCategory(svc.Category, m))
	app.Put("/categories/:id", auth, UpdateCategory(svc.Category, m))
	app.Delete("/categories/:id", auth, DeleteCategory(svc.Category))

	app.Get("/tags", ListTags(svc.Tag))
	app.Get("/tags/:id", GetTag(svc.Tag))
	app.Post("/tags", auth, CreateTag(svc.Tag))
	app.Put("/tags/:id", auth, UpdateTag(svc.Tag))
	app.Delete("/tags/:id", auth, DeleteTag(svc.Tag))

	app.Get("/posts/:post/comments", ListComments(svc.Comment, m))
	app.Post("/posts/:post/comments", auth, CreateComment(svc.Comment, m))
	app.Put("/comments/:comment", auth, UpdateComment(svc.Comment, m))
	app.Delete("/comments/:comment", auth, DeleteComment(svc.Comment))

	app.Get("/posts", auth, ListPosts(svc.Post, m))
	app.Get("/posts/:id", auth, GetPost(svc.Post, m))
	app.Post("/posts", auth, CreatePost(svc.Post, m))
	app.Put("/posts/:id", auth, UpdatePost(svc.Post, m))
	app.Delete("/posts/:id", auth, DeletePost(svc.Post))
}
