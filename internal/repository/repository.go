// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and return sql.ErrNoRows for missing rows.
package repository

import (
	"context"
	"errors"
	"time"

	"blogapi/internal/model"
)

// ErrDuplicate is returned when a write collides with a unique index.
var ErrDuplicate = errors.New("duplicate key")

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// EmailTaken reports whether another user (not exceptID) already owns the email.
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	// Update writes name, email, password, bio and profile_image and returns the stored row.
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// TokenRepository persists personal access tokens.
type TokenRepository interface {
	Create(ctx context.Context, t *model.PersonalAccessToken) (*model.PersonalAccessToken, error)
	FindByID(ctx context.Context, id int64) (*model.PersonalAccessToken, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

// TagRepository persists tags.
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) (*model.Tag, error)
	FindByID(ctx context.Context, id int64) (*model.Tag, error)
	// FindByIDs returns the subset of ids that exist.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	Update(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// PostRepository persists posts and their tag links.
type PostRepository interface {
	// Create inserts the post and links tagIDs in one transaction.
	Create(ctx context.Context, p *model.Post, tagIDs []int64) (*model.Post, error)
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	// FindDetailed returns the post with user, category, tags and comments loaded.
	FindDetailed(ctx context.Context, id int64) (*model.Post, error)
	// ListDetailed returns every post with its relations loaded.
	ListDetailed(ctx context.Context) ([]model.Post, error)
	// Update writes category_id, title, content and images and returns the stored row.
	Update(ctx context.Context, p *model.Post) (*model.Post, error)
	// SyncTags replaces the post's tag links with tagIDs.
	SyncTags(ctx context.Context, postID int64, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository persists comments. Reads always load the author.
type CommentRepository interface {
	// ListByPost returns the post's comments newest first.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}
