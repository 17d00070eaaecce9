package apiclient

import (
	"bytes"
	"encoding/json"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

// normalizer turns one endpoint's list body into a page.
type normalizer[T any] func(body []byte, params models.QueryParams) (models.PageResult[T], error)

// adapterFor picks the list adapter for a resource. Both shapes are still
// accepted so a backend change does not break the screen.
func adapterFor[T any](res models.Resource) normalizer[T] {
	if res.BareList {
		return func(body []byte, params models.QueryParams) (models.PageResult[T], error) {
			if looksLikeObject(body) {
				return decodePaged[T](body, params)
			}
			return decodeBare[T](body, params)
		}
	}
	return func(body []byte, params models.QueryParams) (models.PageResult[T], error) {
		if looksLikeArray(body) {
			return decodeBare[T](body, params)
		}
		return decodePaged[T](body, params)
	}
}

// NormalizeList accepts either {data, total, ...} or a bare array.
func NormalizeList[T any](body []byte, params models.QueryParams) (models.PageResult[T], error) {
	if looksLikeArray(body) {
		return decodeBare[T](body, params)
	}
	return decodePaged[T](body, params)
}

func decodePaged[T any](body []byte, params models.QueryParams) (models.PageResult[T], error) {
	var env struct {
		Data  json.RawMessage `json:"data"`
		Total *int            `json:"total"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "invalid json", Err: err}
	}
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "missing data"}
	}
	if env.Total == nil {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "missing total"}
	}
	if *env.Total < 0 {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "negative total"}
	}
	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "data is not a record list", Err: err}
	}
	if params.Limit > 0 && len(items) > params.Limit {
		items = items[:params.Limit]
	}
	if items == nil {
		items = []T{}
	}
	return models.PageResult[T]{Items: items, Total: *env.Total}, nil
}

// decodeBare pages an unpaginated array locally so the page never exceeds
// the requested limit.
func decodeBare[T any](body []byte, params models.QueryParams) (models.PageResult[T], error) {
	var all []T
	if err := json.Unmarshal(body, &all); err != nil {
		return models.PageResult[T]{}, &appErrors.ParseError{Reason: "invalid record list", Err: err}
	}
	total := len(all)
	items := []T{}
	if params.Limit <= 0 {
		items = append(items, all...)
	} else if start := params.Offset(); start < total {
		end := start + params.Limit
		if end > total {
			end = total
		}
		items = append(items, all[start:end]...)
	}
	return models.PageResult[T]{Items: items, Total: total}, nil
}

// decodeRecord reads a single record, unwrapping {data: {...}} when present.
func decodeRecord[T any](body []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		body = wrapped.Data
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &appErrors.ParseError{Reason: "invalid record", Err: err}
	}
	return out, nil
}

func looksLikeArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func looksLikeObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
