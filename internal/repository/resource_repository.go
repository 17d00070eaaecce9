package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ResourceRepository persists one resource table. T is the record struct and
// P its pointer, which carries the Entity methods.
type ResourceRepository[T any, P interface {
	*T
	models.Entity
}] struct {
	db  *sqlx.DB
	res models.Resource
}

// NewResourceRepository constructs a repository for res.Table.
func NewResourceRepository[T any, P interface {
	*T
	models.Entity
}](db *sqlx.DB, res models.Resource) *ResourceRepository[T, P] {
	return &ResourceRepository[T, P]{db: db, res: res}
}

func (r *ResourceRepository[T, P]) selectColumns() string {
	cols := append([]string{"id"}, r.res.Columns...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func (r *ResourceRepository[T, P]) where(search string) (string, []interface{}) {
	base := fmt.Sprintf("FROM %s WHERE 1=1", r.res.Table)
	search = strings.TrimSpace(search)
	if search == "" || len(r.res.SearchColumns) == 0 {
		return base, nil
	}
	likes := make([]string, 0, len(r.res.SearchColumns))
	for _, col := range r.res.SearchColumns {
		likes = append(likes, fmt.Sprintf(`LOWER(%s) LIKE $1 ESCAPE '\'`, col))
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	return base + " AND (" + strings.Join(likes, " OR ") + ")", []interface{}{pattern}
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *ResourceRepository[T, P]) orderBy(filter models.ResourceFilter) string {
	sortBy := filter.SortBy
	allowed := sortBy == "created_at" || sortBy == "updated_at"
	for _, col := range r.res.SortColumns {
		if col == sortBy {
			allowed = true
		}
	}
	if !allowed {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return sortBy + " " + order
}

// List returns one page of records matching filter and the total count.
func (r *ResourceRepository[T, P]) List(ctx context.Context, filter models.ResourceFilter) ([]T, int, error) {
	base, args := r.where(filter.Search)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", r.selectColumns(), base, r.orderBy(filter), size, offset)
	records := []T{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.res.Table, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.res.Table, err)
	}
	return records, total, nil
}

// ListAll returns every matching record, for endpoints that answer with a
// bare array.
func (r *ResourceRepository[T, P]) ListAll(ctx context.Context, search string) ([]T, error) {
	base, args := r.where(search)
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s", r.selectColumns(), base, r.orderBy(models.ResourceFilter{}))
	records := []T{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.res.Table, err)
	}
	return records, nil
}

// FindByID returns sql.ErrNoRows when the record does not exist.
func (r *ResourceRepository[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.selectColumns(), r.res.Table)
	var record T
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts the record, assigning an id when missing.
func (r *ResourceRepository[T, P]) Create(ctx context.Context, record P) error {
	if record.RecordID() == "" {
		record.SetRecordID(uuid.NewString())
	}
	record.Touch(time.Now().UTC())

	cols := append([]string{"id"}, r.res.Columns...)
	cols = append(cols, "created_at", "updated_at")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.res.Table, strings.Join(cols, ", "), namedParams(cols))
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create %s: %w", r.res.Table, err)
	}
	return nil
}

// Update replaces the editable columns. It returns sql.ErrNoRows when no
// record has the id.
func (r *ResourceRepository[T, P]) Update(ctx context.Context, record P) error {
	record.Touch(time.Now().UTC())

	sets := make([]string, 0, len(r.res.Columns)+1)
	for _, col := range r.res.Columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}
	sets = append(sets, "updated_at = :updated_at")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", r.res.Table, strings.Join(sets, ", "))
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.res.Table, err)
	}
	return expectRow(result)
}

// Delete removes the record. It returns sql.ErrNoRows when nothing matched.
func (r *ResourceRepository[T, P]) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.res.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.res.Table, err)
	}
	return expectRow(result)
}

// Ping checks the connection for readiness probes.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func namedParams(cols []string) string {
	params := make([]string, len(cols))
	for i, col := range cols {
		params[i] = ":" + col
	}
	return strings.Join(params, ", ")
}
