// Package resource implements the list screen controller shared by every
// entity: query state, last-request-wins fetching, serialized mutations and
// transient feedback.
package resource

import (
	"fmt"
	"sync"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// DefaultLimit is used when no page size is configured.
const DefaultLimit = 10

// QueryState owns the page/limit/search triple of one screen.
type QueryState struct {
	mu     sync.Mutex
	params models.QueryParams
}

// NewQueryState starts on page 1 with an empty search.
func NewQueryState(limit int) *QueryState {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &QueryState{params: models.QueryParams{Page: 1, Limit: limit}}
}

// Params returns the current fetch parameters.
func (q *QueryState) Params() models.QueryParams {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params
}

// SetSearch replaces the search text and goes back to page 1.
func (q *QueryState) SetSearch(text string) models.QueryParams {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.params.Search = text
	q.params.Page = 1
	return q.params
}

// SetLimit changes the page size and goes back to page 1. Non positive sizes
// are ignored.
func (q *QueryState) SetLimit(n int) models.QueryParams {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > 0 {
		q.params.Limit = n
		q.params.Page = 1
	}
	return q.params
}

// SetPage moves to page n given the last known total. Pages below 1 are
// ignored and pages past the end are clamped to the last page. It reports
// whether the page changed.
func (q *QueryState) SetPage(n, total int) (models.QueryParams, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n < 1 {
		return q.params, false
	}
	if last := TotalPages(total, q.params.Limit); n > last {
		n = last
	}
	if n < 1 || n == q.params.Page {
		return q.params, false
	}
	q.params.Page = n
	return q.params, true
}

// Clamp pulls the page back inside 1..TotalPages(total). It reports whether
// the page changed.
func (q *QueryState) Clamp(total int) (models.QueryParams, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	last := TotalPages(total, q.params.Limit)
	if last < 1 {
		last = 1
	}
	if q.params.Page <= last {
		return q.params, false
	}
	q.params.Page = last
	return q.params, true
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Pages lists the page numbers shown by the pagination control.
func Pages(total, limit int) []int {
	n := TotalPages(total, limit)
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Range is the "Showing X to Y of Z" summary under a table.
type Range struct {
	From  int
	To    int
	Total int
}

// PageRange derives the summary from the params and the rendered row count.
func PageRange(params models.QueryParams, rows, total int) Range {
	if rows == 0 || total == 0 {
		return Range{Total: total}
	}
	from := params.Offset() + 1
	return Range{From: from, To: from + rows - 1, Total: total}
}

func (r Range) String() string {
	return fmt.Sprintf("Showing %d to %d of %d", r.From, r.To, r.Total)
}
