package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const uniqueViolation = "23505"

// duplicateOr reports unique index violations as repository.ErrDuplicate.
func duplicateOr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, name, email, password, bio, profile_image, is_admin, created_at, updated_at`

// userFields returns scan destinations in userColumns order.
func userFields(u *model.User) []any {
	return []any{&u.ID, &u.Name, &u.Email, &u.Password, &u.Bio, &u.ProfileImage, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt}
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(userFields(&u)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

func decodeImages(raw []byte) ([]string, error) {
	images := []string{}
	if len(raw) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if images == nil {
		images = []string{}
	}
	return images, nil
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
