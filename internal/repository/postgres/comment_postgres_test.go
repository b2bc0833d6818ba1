package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/model"
)

func TestCommentPostgres_ListByPost(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentPostgres(db)

	later := time.Now()
	earlier := later.Add(-time.Minute)
	mock.ExpectQuery("FROM comments c JOIN users u ON u.id = c.user_id WHERE c.post_id = (.+) ORDER BY c.created_at DESC").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow(2, 1, 3, "second", later, later, 1, "Ada", "ada@example.com", "h", nil, nil, false, later, later).
			AddRow(1, 1, 3, "first", earlier, earlier, 1, "Ada", "ada@example.com", "h", nil, nil, false, later, later))

	comments, err := repo.ListByPost(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "Ada", comments[0].User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentPostgres(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO comments").
		WithArgs(int64(1), int64(3), "hi").
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow(9, 1, 3, "hi", now, now, 1, "Ada", "ada@example.com", "h", nil, nil, false, now, now))

	c, err := repo.Create(context.Background(), &model.Comment{UserID: 1, PostID: 3, Content: "hi"})

	require.NoError(t, err)
	assert.Equal(t, int64(9), c.ID)
	assert.Equal(t, int64(1), c.User.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentPostgres_UpdateAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE comments SET content").
		WithArgs(int64(9), "edited").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM comments WHERE id = ?").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateContent(ctx, 9, "edited"))
	assert.NoError(t, repo.Delete(ctx, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
