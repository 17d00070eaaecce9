package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"
)

// Address is a postal address stored as JSON.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Type    string `json:"type,omitempty"`
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	return jsonValue(a)
}

// Scan implements sql.Scanner. NULL leaves the address unchanged.
func (a *Address) Scan(src interface{}) error {
	return scanJSON(src, a, "{}")
}

// Addresses is a JSON encoded address list.
type Addresses []Address

// Value implements driver.Valuer. A nil list is stored as [].
func (a Addresses) Value() (driver.Value, error) {
	if a == nil {
		return types.JSONText("[]").Value()
	}
	return jsonValue([]Address(a))
}

// Scan implements sql.Scanner. NULL scans as an empty list.
func (a *Addresses) Scan(src interface{}) error {
	return scanJSON(src, a, "[]")
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b).Value()
}

func scanJSON(src interface{}, dest interface{}, empty string) error {
	var raw types.JSONText
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("unsupported json column type %T: %w", src, err)
	}
	switch v := src.(type) {
	case nil:
		raw = types.JSONText(empty)
	case []byte:
		if len(v) == 0 {
			raw = types.JSONText(empty)
		}
	case string:
		if v == "" {
			raw = types.JSONText(empty)
		}
	}
	return raw.Unmarshal(dest)
}
