// Package importer loads records from spreadsheets and creates them through
// the API, one queued job per row.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-dashboard/internal/form"
	"github.com/noah-isme/sma-dashboard/internal/models"
)

// ErrEmptySheet is returned when a file has no header row.
var ErrEmptySheet = errors.New("spreadsheet has no header row")

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadFile loads .xlsx or .csv by extension.
func ReadFile(path string) (Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer fh.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(fh)
	case ".csv":
		return ReadCSV(fh)
	default:
		return Table{}, fmt.Errorf("unsupported import file %q: use .xlsx or .csv", filepath.Base(path))
	}
}

// ReadExcel reads the first sheet of a workbook.
func ReadExcel(r io.Reader) (Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptySheet
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return newTable(rows)
}

// ReadCSV reads comma separated rows; ragged rows are allowed.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (Table, error) {
	if len(rows) == 0 || blank(rows[0]) {
		return Table{}, ErrEmptySheet
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	}
	return Table{Header: header, Rows: rows[1:]}, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Columns maps each header cell to a form key. Headers match a field key or
// its label ignoring case, spaces, dashes and underscores; anything else is
// taken as a literal key so nested paths like "permanentAddress.city" work.
// Empty headers map to "".
func Columns(res models.Resource, header []string) []string {
	known := make(map[string]string)
	add := func(key string) {
		if key != "" && key != "id" {
			known[normalize(key)] = key
		}
	}
	for _, f := range res.Required {
		add(f.Key)
		known[normalize(f.Label)] = f.Key
	}
	for _, group := range [][]string{res.DateFields, res.NumberFields, res.BoolFields, res.Display} {
		for _, key := range group {
			add(key)
		}
	}
	for _, p := range res.Projections {
		add(p.Flag)
	}

	keys := make([]string, len(header))
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if key, ok := known[normalize(cell)]; ok {
			keys[i] = key
			continue
		}
		keys[i] = cell
	}
	return keys
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// RowForm fills a form from one data row.
func RowForm(res models.Resource, keys, row []string) (*form.Form, error) {
	f := form.New(res)
	for i, key := range keys {
		if key == "" || i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		if res.IsDateField(key) {
			converted, err := inputDate(value)
			if err != nil {
				return nil, &form.FieldError{Field: key, Err: err}
			}
			value = converted
		}
		f.Set(key, value)
	}
	return f, nil
}

// inputDate accepts YYYY-MM-DD, DD/MM/YYYY or an Excel serial day number.
func inputDate(value string) (string, error) {
	if form.IsAPIDate(value) {
		return form.ToInputDate(value)
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", err
		}
		return t.Format(form.InputDateLayout), nil
	}
	if _, err := form.ToAPIDate(value); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD or DD/MM/YYYY", value)
	}
	return value, nil
}
