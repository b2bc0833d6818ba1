package model

import "time"

// Post is a user's article. Images holds relative storage paths in upload order.
// The relation fields are only populated by the detailed repository reads.
type Post struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CategoryID *int64    `json:"category_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Images     []string  `json:"images"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User     *User     `json:"user,omitempty"`
	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
}

// Comment belongs to one post and one author. User is filled by repository reads.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
