package postgres

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userRowColumns = []string{"id", "name", "email", "password", "bio", "profile_image", "is_admin", "created_at", "updated_at"}

// arrayConverter lets []int64 reach the driver untouched, as pgx accepts it for bigint[] parameters.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if ids, ok := v.([]int64); ok {
		return ids, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows(userRowColumns)
}

func addUser(rows *sqlmock.Rows, id int64, name, email string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, email, "$2a$10$hash", nil, nil, false, now, now)
}

func IsNoRowsError(err error) bool {
	return err == sql.ErrNoRows
}
