package export

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

type pageSource struct {
	items []models.Class
	calls atomic.Int32
	fail  int
}

func (p *pageSource) FetchPage(_ context.Context, params models.QueryParams) (models.PageResult[models.Class], error) {
	p.calls.Add(1)
	if params.Page == p.fail {
		return models.PageResult[models.Class]{}, errors.New("boom")
	}
	start := params.Offset()
	if start > len(p.items) {
		start = len(p.items)
	}
	end := start + params.Limit
	if end > len(p.items) {
		end = len(p.items)
	}
	return models.PageResult[models.Class]{Items: p.items[start:end], Total: len(p.items)}, nil
}

func classes(n int) []models.Class {
	out := make([]models.Class, n)
	for i := range out {
		out[i] = models.Class{Name: "Class " + string(rune('A'+i))}
		out[i].ID = string(rune('a' + i))
	}
	return out
}

func TestFetchAllKeepsPageOrder(t *testing.T) {
	src := &pageSource{items: classes(7)}

	all, err := FetchAll[models.Class](context.Background(), src, "", 2, 3)
	require.NoError(t, err)
	require.Len(t, all, 7)
	for i, c := range all {
		assert.Equal(t, src.items[i].ID, c.ID)
	}
	assert.Equal(t, int32(4), src.calls.Load())
}

func TestFetchAllSinglePage(t *testing.T) {
	src := &pageSource{items: classes(3)}
	all, err := FetchAll[models.Class](context.Background(), src, "", 10, 2)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFetchAllFailsOnAnyPage(t *testing.T) {
	src := &pageSource{items: classes(6), fail: 2}
	_, err := FetchAll[models.Class](context.Background(), src, "", 2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch page 2")
}

func TestFromRecordsUsesDisplayColumns(t *testing.T) {
	data, err := FromRecords(models.ClassResource, classes(2))
	require.NoError(t, err)

	assert.Equal(t, "Class list", data.Title)
	assert.Equal(t, []string{"id", "name", "description"}, data.Headers)
	assert.Equal(t, []string{"ID", "Class name", "Description"}, data.Labels)
	assert.Equal(t, map[string]string{"id": "a", "name": "Class A", "description": ""}, data.Rows[0])
}

func TestRenderCSVWritesLabels(t *testing.T) {
	data, err := FromRecords(models.ClassResource, classes(1))
	require.NoError(t, err)

	out, err := Render(FormatCSV, data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{"ID,Class name,Description", "a,Class A,"}, lines)
}

func TestRenderPDF(t *testing.T) {
	data := Dataset{Title: "Students", Headers: []string{"a", "b", "c", "d", "e", "f"}}
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, map[string]string{"a": strings.Repeat("long value ", 10)})
	}
	out, err := Render(FormatPDF, data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
