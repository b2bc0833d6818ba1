package postgres

import (
	"context"
	"database/sql"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CommentPostgres is a PostgreSQL implementation of repository.CommentRepository.
// Every read joins the author so callers never issue a second query per comment.
type CommentPostgres struct {
	db *sql.DB
}

func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

const commentWithAuthorColumns = `c.id, c.user_id, c.post_id, c.content, c.created_at, c.updated_at,
		u.id, u.name, u.email, u.password, u.bio, u.profile_image, u.is_admin, u.created_at, u.updated_at`

func scanCommentWithAuthor(s rowScanner) (*model.Comment, error) {
	var (
		c model.Comment
		u model.User
	)
	dest := append([]any{&c.ID, &c.UserID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt}, userFields(&u)...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	c.User = &u
	return &c, nil
}

func collectComments(rows *sql.Rows) ([]model.Comment, error) {
	defer rows.Close()
	items := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanCommentWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByPost returns the post's comments newest first.
func (r *CommentPostgres) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	const q = `
		SELECT ` + commentWithAuthorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// Create inserts the comment and returns it with the author loaded.
func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		WITH c AS (
			INSERT INTO comments (user_id, post_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, post_id, content, created_at, updated_at
		)
		SELECT ` + commentWithAuthorColumns + `
		FROM c
		JOIN users u ON u.id = c.user_id`
	return scanCommentWithAuthor(r.db.QueryRowContext(ctx, q, c.UserID, c.PostID, c.Content))
}

func (r *CommentPostgres) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	const q = `
		SELECT ` + commentWithAuthorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`
	return scanCommentWithAuthor(r.db.QueryRowContext(ctx, q, id))
}

func (r *CommentPostgres) UpdateContent(ctx context.Context, id int64, content string) error {
	const q = `UPDATE comments SET content = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, content)
	return err
}

func (r *CommentPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM comments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
