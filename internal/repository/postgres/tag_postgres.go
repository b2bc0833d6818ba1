package postgres

import (
	"context"
	"database/sql"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

const tagColumns = `id, name, created_at, updated_at`

func scanTag(s rowScanner) (*model.Tag, error) {
	var t model.Tag
	if err := s.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTags(rows *sql.Rows) ([]model.Tag, error) {
	defer rows.Close()
	items := make([]model.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TagPostgres) Create(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	const q = `INSERT INTO tags (name) VALUES ($1) RETURNING ` + tagColumns
	out, err := scanTag(r.db.QueryRowContext(ctx, q, t.Name))
	if err != nil {
		return nil, duplicateOr(err)
	}
	return out, nil
}

func (r *TagPostgres) FindByID(ctx context.Context, id int64) (*model.Tag, error) {
	const q = `SELECT ` + tagColumns + ` FROM tags WHERE id = $1`
	return scanTag(r.db.QueryRowContext(ctx, q, id))
}

func (r *TagPostgres) FindByIDs(ctx context.Context, ids []int64) ([]model.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	const q = `SELECT ` + tagColumns + ` FROM tags WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (r *TagPostgres) List(ctx context.Context) ([]model.Tag, error) {
	const q = `SELECT ` + tagColumns + ` FROM tags ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// NameTaken checks uniqueness ignoring the row with exceptID (0 checks every row).
func (r *TagPostgres) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1 AND id <> $2)`
	var taken bool
	if err := r.db.QueryRowContext(ctx, q, name, exceptID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *TagPostgres) Update(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	const q = `
		UPDATE tags SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + tagColumns
	out, err := scanTag(r.db.QueryRowContext(ctx, q, t.ID, t.Name))
	if err != nil {
		return nil, duplicateOr(err)
	}
	return out, nil
}

// Delete removes a tag and, through the foreign key, its post links.
func (r *TagPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM tags WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
