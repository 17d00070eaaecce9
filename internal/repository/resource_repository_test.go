package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

func newResourceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestResourceRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Class](db, models.ClassResource)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
		AddRow("c1", "Class 5", "primary", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, created_at, updated_at FROM classes WHERE 1=1 AND (LOWER(name) LIKE $1 ESCAPE '\\' OR LOWER(description) LIKE $1 ESCAPE '\\') ORDER BY name ASC LIMIT 5 OFFSET 5")).
		WithArgs("%cla%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1 AND (LOWER(name) LIKE $1 ESCAPE '\\' OR LOWER(description) LIKE $1 ESCAPE '\\')")).
		WithArgs("%cla%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	classes, total, err := repo.List(context.Background(), models.ResourceFilter{Search: " Cla ", Page: 2, PageSize: 5, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "c1", classes[0].ID)
	assert.Equal(t, 6, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Class](db, models.ClassResource)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM classes WHERE 1=1 AND (LOWER(name) LIKE $1 ESCAPE '\' OR LOWER(description) LIKE $1 ESCAPE '\')`)).
		WithArgs(`%10\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes")).
		WithArgs(`%10\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	classes, total, err := repo.List(context.Background(), models.ResourceFilter{Search: `10%_A\b`})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Role](db, models.RoleResource)

	mock.ExpectQuery(regexp.QuoteMeta("FROM roles WHERE 1=1 ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	roles, total, err := repo.List(context.Background(), models.ResourceFilter{SortBy: "name; DROP TABLE roles"})
	require.NoError(t, err)
	assert.Empty(t, roles)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Batch](db, models.BatchResource)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO batches (id, name, passing_year, school_open_date, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)")).
		WithArgs(sqlmock.AnyArg(), "2024", 2024, "01/06/2020", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	batch := &models.Batch{Name: "2024", PassingYear: 2024, SchoolOpenDate: "01/06/2020"}
	require.NoError(t, repo.Create(context.Background(), batch))
	assert.NotEmpty(t, batch.ID)
	assert.NotNil(t, batch.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Class](db, models.ClassResource)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET name = $1, description = $2, updated_at = $3 WHERE id = $4")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Class{Base: models.Base{ID: "missing"}, Name: "X"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newResourceMock(t)
	defer cleanup()
	repo := NewResourceRepository[models.Class](db, models.ClassResource)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
