package model

import "time"

// User is a registered account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	Bio          *string   `json:"bio"`
	ProfileImage *string   `json:"profile_image"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PersonalAccessToken is an issued bearer token. Token is the SHA-256 hex digest of the secret.
type PersonalAccessToken struct {
	ID         int64
	UserID     int64
	Name       string
	Token      string
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token has an expiry in the past.
func (t *PersonalAccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
