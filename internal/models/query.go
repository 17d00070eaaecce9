package models

// QueryParams drives one list fetch.
type QueryParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

// Offset returns the number of records before the requested page.
func (q QueryParams) Offset() int {
	if q.Page < 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// PageResult is one normalized page. Total is the server side count and does
// not depend on len(Items).
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// ListEnvelope is the wire shape of a paginated list response.
type ListEnvelope[T any] struct {
	Data       []T    `json:"data"`
	Total      int    `json:"total"`
	Page       string `json:"page"`
	Limit      string `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// ResourceFilter is the server side list filter.
type ResourceFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// FeedbackKind classifies a user notification.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// UiFeedback is a transient notification.
type UiFeedback struct {
	Kind    FeedbackKind `json:"kind"`
	Message string       `json:"message"`
	Visible bool         `json:"visible"`
}
