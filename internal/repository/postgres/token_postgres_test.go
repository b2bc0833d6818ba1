package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"blogapi/internal/model"
)

var tokenRowColumns = []string{"id", "user_id", "name", "token", "last_used_at", "expires_at", "created_at"}

func TestTokenPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenPostgres(db)

	in := &model.PersonalAccessToken{UserID: 2, Name: "auth_token", Token: "abc"}
	mock.ExpectQuery("INSERT INTO personal_access_tokens").
		WithArgs(int64(2), "auth_token", "abc", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(11, 2, "auth_token", "abc", nil, nil, time.Now()))

	got, err := repo.Create(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Nil(t, got.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenPostgres(db)

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM personal_access_tokens WHERE id = ?").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(11, 2, "auth_token", "abc", nil, exp, time.Now()))

	got, err := repo.FindByID(context.Background(), 11)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), got.UserID)
	assert.False(t, got.Expired(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenPostgres_TouchAndDeleteByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenPostgres(db)
	ctx := context.Background()

	at := time.Now()
	mock.ExpectExec("UPDATE personal_access_tokens SET last_used_at").
		WithArgs(int64(11), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM personal_access_tokens WHERE user_id = ?").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.Touch(ctx, 11, at))
	assert.NoError(t, repo.DeleteByUser(ctx, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
