package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// Relations are eager loaded with one ANY($1) query per relation, never per post.
type PostPostgres struct {
	db *sql.DB
}

func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

const postColumns = `id, user_id, category_id, title, content, images, created_at, updated_at`

func scanPost(s rowScanner) (*model.Post, error) {
	var (
		p      model.Post
		images []byte
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Title, &p.Content, &images, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeImages(images)
	if err != nil {
		return nil, err
	}
	p.Images = decoded
	return &p, nil
}

// Create inserts the post and its tag links atomically.
func (r *PostPostgres) Create(ctx context.Context, p *model.Post, tagIDs []int64) (*model.Post, error) {
	images, err := encodeImages(p.Images)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO posts (user_id, category_id, title, content, images)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns
	out, err := scanPost(tx.QueryRowContext(ctx, q, p.UserID, p.CategoryID, p.Title, p.Content, images))
	if err != nil {
		return nil, err
	}
	if err := insertPostTags(ctx, tx, out.ID, tagIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertPostTags(ctx context.Context, tx *sql.Tx, postID int64, tagIDs []int64) error {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO post_tag (post_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, q, postID, tagIDs); err != nil {
		return fmt.Errorf("attach tags: %w", err)
	}
	return nil
}

func (r *PostPostgres) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostPostgres) FindDetailed(ctx context.Context, id int64) (*model.Post, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts := []model.Post{*p}
	if err := r.loadRelations(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostPostgres) ListDetailed(ctx context.Context) ([]model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadRelations fills User, Category, Tags and Comments on every post in place.
// Queries run in that order; categories are skipped when no post has one.
func (r *PostPostgres) loadRelations(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	userIDs := make([]int64, 0, len(posts))
	categoryIDs := make([]int64, 0, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		userIDs = append(userIDs, p.UserID)
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
	}

	users, err := r.usersByID(ctx, uniqueIDs(userIDs))
	if err != nil {
		return fmt.Errorf("load post authors: %w", err)
	}
	categories, err := r.categoriesByID(ctx, uniqueIDs(categoryIDs))
	if err != nil {
		return fmt.Errorf("load post categories: %w", err)
	}
	tags, err := r.tagsByPost(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	comments, err := r.commentsByPost(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load post comments: %w", err)
	}

	for i := range posts {
		p := &posts[i]
		p.User = users[p.UserID]
		if p.CategoryID != nil {
			p.Category = categories[*p.CategoryID]
		}
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []model.Tag{}
		}
		p.Comments = comments[p.ID]
		if p.Comments == nil {
			p.Comments = []model.Comment{}
		}
	}
	return nil
}

func (r *PostPostgres) usersByID(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	out := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *PostPostgres) categoriesByID(ctx context.Context, ids []int64) (map[int64]*model.Category, error) {
	out := make(map[int64]*model.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (r *PostPostgres) tagsByPost(ctx context.Context, postIDs []int64) (map[int64][]model.Tag, error) {
	const q = `
		SELECT pt.post_id, t.id, t.name, t.created_at, t.updated_at
		FROM post_tag pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.Tag, len(postIDs))
	for rows.Next() {
		var (
			postID int64
			t      model.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], t)
	}
	return out, rows.Err()
}

func (r *PostPostgres) commentsByPost(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	const q = `
		SELECT ` + commentWithAuthorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, postIDs)
	if err != nil {
		return nil, err
	}
	items, err := collectComments(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]model.Comment, len(postIDs))
	for _, c := range items {
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, nil
}

func (r *PostPostgres) Update(ctx context.Context, p *model.Post) (*model.Post, error) {
	images, err := encodeImages(p.Images)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE posts
		SET category_id = $2, title = $3, content = $4, images = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRowContext(ctx, q, p.ID, p.CategoryID, p.Title, p.Content, images))
}

// SyncTags replaces the post's tag links in one transaction.
func (r *PostPostgres) SyncTags(ctx context.Context, postID int64, tagIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tag WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("detach tags: %w", err)
	}
	if err := insertPostTags(ctx, tx, postID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a post. Tag links and comments cascade.
func (r *PostPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
