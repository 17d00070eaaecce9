// Package export renders resource lists to CSV and PDF.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// Format is an output file type.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q: use csv or pdf", s)
}

// Dataset defines tabular export content. Headers are row keys; Labels, when
// set, are printed in their place.
type Dataset struct {
	Title   string
	Headers []string
	Labels  []string
	Rows    []map[string]string
}

func (d Dataset) labels() []string {
	if len(d.Labels) == len(d.Headers) {
		return d.Labels
	}
	return d.Headers
}

// Render encodes the dataset in the requested format.
func Render(format Format, data Dataset) ([]byte, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter().Render(data)
	case FormatPDF:
		return NewPDFExporter().Render(data)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// Pager reads one page of a collection.
type Pager[T any] interface {
	FetchPage(ctx context.Context, params models.QueryParams) (models.PageResult[T], error)
}

// FetchAll reads every page matching search. The first page sizes the run;
// remaining pages are fetched with at most parallel requests in flight and
// returned in page order.
func FetchAll[T any](ctx context.Context, pager Pager[T], search string, limit, parallel int) ([]T, error) {
	if limit <= 0 {
		limit = 100
	}
	if parallel <= 0 {
		parallel = 4
	}
	first, err := pager.FetchPage(ctx, models.QueryParams{Page: 1, Limit: limit, Search: search})
	if err != nil {
		return nil, err
	}
	pages := (first.Total + limit - 1) / limit
	if pages <= 1 || len(first.Items) >= first.Total {
		return first.Items, nil
	}

	results := make([][]T, pages)
	results[0] = first.Items

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for page := 2; page <= pages; page++ {
		page := page
		g.Go(func() error {
			res, err := pager.FetchPage(gCtx, models.QueryParams{Page: page, Limit: limit, Search: search})
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			results[page-1] = res.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]T, 0, first.Total)
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

// FromRecords flattens records into a dataset over the resource's display
// columns. Nested values are rendered as compact JSON.
func FromRecords[T any](res models.Resource, records []T) (Dataset, error) {
	data := Dataset{Title: res.Title + " list", Headers: res.Display}
	if len(data.Headers) == 0 {
		data.Headers = []string{"id"}
	}
	data.Labels = make([]string, len(data.Headers))
	for i, key := range data.Headers {
		data.Labels[i] = label(res, key)
	}

	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			return Dataset{}, fmt.Errorf("encode record: %w", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Dataset{}, fmt.Errorf("decode record: %w", err)
		}
		row := make(map[string]string, len(data.Headers))
		for _, key := range data.Headers {
			row[key] = cell(fields[key])
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func cell(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// label uses the required field label when one exists, otherwise splits the
// camelCase key into words.
func label(res models.Resource, key string) string {
	for _, f := range res.Required {
		if f.Key == key {
			return f.Label
		}
	}
	if key == "id" {
		return "ID"
	}
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
