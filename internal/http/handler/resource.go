package handler

import (
	"time"

	"blogapi/internal/media"
	"blogapi/internal/model"
)

// dateTimeLayout is used by the nested post projections.
const dateTimeLayout = "2006-01-02 15:04:05"

// Media carries what handlers need to read uploads and render stored paths.
type Media struct {
	URLs          *media.URLBuilder
	DefaultAvatar string
	MaxImageBytes int64
	// MaxPostImages caps images per post; 0 means no cap.
	MaxPostImages int
}

func (m Media) avatarURL(stored *string) string {
	if stored != nil && *stored != "" {
		return m.URLs.URL(*stored)
	}
	return m.URLs.URL(m.DefaultAvatar)
}

type userResource struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Bio             *string    `json:"bio"`
	ProfileImageURL string     `json:"profile_image_url"`
	IsAdmin         bool       `json:"is_admin"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

func (m Media) user(u *model.User) userResource {
	return userResource{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Bio:             u.Bio,
		ProfileImageURL: m.avatarURL(u.ProfileImage),
		IsAdmin:         u.IsAdmin,
		CreatedAt:       &u.CreatedAt,
	}
}

// updatedUser is the projection returned after a profile update.
func (m Media) updatedUser(u *model.User) userResource {
	r := m.user(u)
	r.CreatedAt = nil
	r.UpdatedAt = &u.UpdatedAt
	return r
}

func (m Media) users(list []model.User) []userResource {
	out := make([]userResource, 0, len(list))
	for i := range list {
		out = append(out, m.user(&list[i]))
	}
	return out
}

type categoryResource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Media) category(c *model.Category) categoryResource {
	return categoryResource{
		ID:        c.ID,
		Name:      c.Name,
		ImageURL:  m.URLs.URLPtr(c.Image),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m Media) categories(list []model.Category) []categoryResource {
	out := make([]categoryResource, 0, len(list))
	for i := range list {
		out = append(out, m.category(&list[i]))
	}
	return out
}

type imageResource struct {
	URL string `json:"url"`
}

type postUserResource struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          *string `json:"bio"`
	ProfileImage string  `json:"profile_image"`
	IsAdmin      bool    `json:"is_admin"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type postCategoryResource struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type postTagResource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type commentAuthorResource struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image"`
}

type postCommentResource struct {
	ID        int64                  `json:"id"`
	Content   string                 `json:"content"`
	User      *commentAuthorResource `json:"user"`
	CreatedAt string                 `json:"created_at"`
}

// postResource is the nested shape of the post index and show endpoints.
type postResource struct {
	ID        int64                 `json:"id"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	Images    []imageResource       `json:"images"`
	User      *postUserResource     `json:"user"`
	Category  *postCategoryResource `json:"category"`
	Tags      []postTagResource     `json:"tags"`
	Comments  []postCommentResource `json:"comments"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
}

func (m Media) post(p *model.Post) postResource {
	r := postResource{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Images:    make([]imageResource, 0, len(p.Images)),
		Tags:      make([]postTagResource, 0, len(p.Tags)),
		Comments:  make([]postCommentResource, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt.Format(dateTimeLayout),
		UpdatedAt: p.UpdatedAt.Format(dateTimeLayout),
	}
	for _, img := range m.URLs.URLs(p.Images) {
		r.Images = append(r.Images, imageResource{URL: img})
	}
	if u := p.User; u != nil {
		r.User = &postUserResource{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Bio:          u.Bio,
			ProfileImage: m.avatarURL(u.ProfileImage),
			IsAdmin:      u.IsAdmin,
			CreatedAt:    u.CreatedAt.Format(dateTimeLayout),
			UpdatedAt:    u.UpdatedAt.Format(dateTimeLayout),
		}
	}
	if c := p.Category; c != nil {
		r.Category = &postCategoryResource{ID: c.ID, Name: c.Name, Image: m.URLs.URLPtr(c.Image)}
	}
	for _, t := range p.Tags {
		r.Tags = append(r.Tags, postTagResource{ID: t.ID, Name: t.Name})
	}
	for _, c := range p.Comments {
		pc := postCommentResource{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.Format(dateTimeLayout),
		}
		if c.User != nil {
			pc.User = &commentAuthorResource{
				ID:           c.User.ID,
				Name:         c.User.Name,
				ProfileImage: m.URLs.URLPtr(c.User.ProfileImage),
			}
		}
		r.Comments = append(r.Comments, pc)
	}
	return r
}

func (m Media) posts(list []model.Post) []postResource {
	out := make([]postResource, 0, len(list))
	for i := range list {
		out = append(out, m.post(&list[i]))
	}
	return out
}

// createdPostResource is returned by the store endpoint.
type createdPostResource struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// flatPostResource is the post row with image URLs, returned by update.
type flatPostResource struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CategoryID *int64    `json:"category_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Images     []string  `json:"images"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m Media) flatPost(p *model.Post) flatPostResource {
	return flatPostResource{
		ID:         p.ID,
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Title:      p.Title,
		Content:    p.Content,
		Images:     m.URLs.URLs(p.Images),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type commentResource struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	PostID    int64         `json:"post_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	User      *userResource `json:"user"`
}

func (m Media) comment(c *model.Comment) commentResource {
	r := commentResource{
		ID:        c.ID,
		UserID:    c.UserID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User != nil {
		u := m.user(c.User)
		r.User = &u
	}
	return r
}

func (m Media) comments(list []model.Comment) []commentResource {
	out := make([]commentResource, 0, len(list))
	for i := range list {
		out = append(out, m.comment(&list[i]))
	}
	return out
}
