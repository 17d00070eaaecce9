package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// Endpoint is the typed client of one resource collection.
type Endpoint[T any] struct {
	client    *Client
	res       models.Resource
	normalize normalizer[T]
}

// NewEndpoint binds a resource to a client.
func NewEndpoint[T any](client *Client, res models.Resource) *Endpoint[T] {
	return &Endpoint[T]{client: client, res: res, normalize: adapterFor[T](res)}
}

// Resource returns the bound resource.
func (e *Endpoint[T]) Resource() models.Resource { return e.res }

// FetchPage issues GET <path>?page&limit&search and normalizes the envelope.
func (e *Endpoint[T]) FetchPage(ctx context.Context, params models.QueryParams) (models.PageResult[T], error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	resp, err := e.client.Do(ctx, http.MethodGet, e.res.Path, query, nil)
	if err != nil {
		return models.PageResult[T]{}, err
	}
	return e.normalize(resp.Body, params)
}

// Get reads one record.
func (e *Endpoint[T]) Get(ctx context.Context, id string) (T, error) {
	resp, err := e.client.Do(ctx, http.MethodGet, e.itemPath(id), nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](resp.Body)
}

// Create posts a new record.
func (e *Endpoint[T]) Create(ctx context.Context, payload T) (T, error) {
	resp, err := e.client.Do(ctx, http.MethodPost, e.res.Path, nil, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](resp.Body)
}

// Update replaces a record.
func (e *Endpoint[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	resp, err := e.client.Do(ctx, http.MethodPut, e.itemPath(id), nil, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](resp.Body)
}

// Delete removes a record.
func (e *Endpoint[T]) Delete(ctx context.Context, id string) error {
	_, err := e.client.Do(ctx, http.MethodDelete, e.itemPath(id), nil, nil)
	return err
}

func (e *Endpoint[T]) itemPath(id string) string {
	return e.res.Path + "/" + url.PathEscape(id)
}
