package models

import "time"

// Entity is implemented by every record the backend persists. The id is the
// list key and the mutation target.
type Entity interface {
	RecordID() string
	SetRecordID(id string)
	Touch(now time.Time)
}

// Base carries the identifier and audit timestamps shared by all records.
type Base struct {
	ID        string     `db:"id" json:"id,omitempty"`
	CreatedAt *time.Time `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// RecordID returns the stable identifier.
func (b *Base) RecordID() string { return b.ID }

// SetRecordID assigns the identifier.
func (b *Base) SetRecordID(id string) { b.ID = id }

// Touch stamps creation once and the update time on every call.
func (b *Base) Touch(now time.Time) {
	if b.CreatedAt == nil {
		created := now
		b.CreatedAt = &created
	}
	updated := now
	b.UpdatedAt = &updated
}
