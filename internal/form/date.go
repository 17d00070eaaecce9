package form

import (
	"fmt"
	"strings"
	"time"
)

const (
	// InputDateLayout is the date input control format.
	InputDateLayout = "2006-01-02"
	// APIDateLayout is the format the backend stores for documented date fields.
	APIDateLayout = "02/01/2006"
)

// ToAPIDate converts YYYY-MM-DD into DD/MM/YYYY. Empty input stays empty.
func ToAPIDate(input string) (string, error) {
	return convertDate(input, InputDateLayout, APIDateLayout)
}

// ToInputDate converts DD/MM/YYYY into YYYY-MM-DD. Empty input stays empty.
func ToInputDate(api string) (string, error) {
	return convertDate(api, APIDateLayout, InputDateLayout)
}

// IsAPIDate reports whether value is a valid DD/MM/YYYY date.
func IsAPIDate(value string) bool {
	_, err := time.Parse(APIDateLayout, value)
	return err == nil
}

func convertDate(value, from, to string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(from, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected %s", value, humanLayout(from))
	}
	return t.Format(to), nil
}

func humanLayout(layout string) string {
	switch layout {
	case InputDateLayout:
		return "YYYY-MM-DD"
	case APIDateLayout:
		return "DD/MM/YYYY"
	}
	return layout
}
