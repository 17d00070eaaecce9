package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

func TestQueryStateSearchAndLimitResetPage(t *testing.T) {
	q := NewQueryState(5)
	_, changed := q.SetPage(3, 12)
	assert.True(t, changed)

	p := q.SetSearch("ali")
	assert.Equal(t, models.QueryParams{Page: 1, Limit: 5, Search: "ali"}, p)

	q.SetPage(2, 12)
	p = q.SetLimit(10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)

	p = q.SetLimit(0)
	assert.Equal(t, 10, p.Limit)
}

func TestQueryStateSetPageBounds(t *testing.T) {
	q := NewQueryState(5)

	_, changed := q.SetPage(0, 12)
	assert.False(t, changed)

	p, changed := q.SetPage(9, 12)
	assert.True(t, changed)
	assert.Equal(t, 3, p.Page)

	_, changed = q.SetPage(3, 12)
	assert.False(t, changed)

	_, changed = NewQueryState(5).SetPage(2, 0)
	assert.False(t, changed)
}

func TestTotalPagesAndRange(t *testing.T) {
	assert.Equal(t, 3, TotalPages(12, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, []int{1, 2, 3}, Pages(12, 5))
	assert.Empty(t, Pages(0, 10))

	params := models.QueryParams{Page: 1, Limit: 5}
	assert.Equal(t, "Showing 1 to 5 of 12", PageRange(params, 5, 12).String())

	params.Page = 3
	assert.Equal(t, "Showing 11 to 12 of 12", PageRange(params, 2, 12).String())
	assert.Equal(t, "Showing 0 to 0 of 0", PageRange(params, 0, 0).String())
}

func TestQueryStateClamp(t *testing.T) {
	q := NewQueryState(5)
	_, changed := q.SetPage(3, 11)
	require.True(t, changed)

	_, changed = q.Clamp(11)
	assert.False(t, changed)

	p, changed := q.Clamp(10)
	assert.True(t, changed)
	assert.Equal(t, 2, p.Page)

	p, changed = q.Clamp(0)
	assert.True(t, changed)
	assert.Equal(t, 1, p.Page)

	_, changed = q.Clamp(0)
	assert.False(t, changed)
}
