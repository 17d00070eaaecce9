package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// fakeEndpoint records calls and answers from a fixed table of classes.
type fakeEndpoint struct {
	mu       sync.Mutex
	rows     []models.Class
	fetches  []models.QueryParams
	fetchErr error
	// gate, when set, blocks the next FetchPage until it is closed.
	gate chan struct{}

	creates   []models.Class
	updates   map[string]models.Class
	deletes   []string
	writeErr  error
	writeGate chan struct{}
}

func newFakeEndpoint(n int) *fakeEndpoint {
	rows := make([]models.Class, n)
	for i := range rows {
		rows[i] = models.Class{Base: models.Base{ID: fmt.Sprint(i + 1)}, Name: fmt.Sprintf("Class %d", i+1)}
	}
	return &fakeEndpoint{rows: rows, updates: map[string]models.Class{}}
}

func (f *fakeEndpoint) FetchPage(ctx context.Context, params models.QueryParams) (models.PageResult[models.Class], error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, params)
	gate := f.gate
	f.gate = nil
	err := f.fetchErr
	rows := f.rows
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.PageResult[models.Class]{}, ctx.Err()
		}
	}
	if err != nil {
		return models.PageResult[models.Class]{}, err
	}
	start := params.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + params.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return models.PageResult[models.Class]{Items: append([]models.Class(nil), rows[start:end]...), Total: len(rows)}, nil
}

func (f *fakeEndpoint) Create(_ context.Context, payload models.Class) (models.Class, error) {
	f.waitWrite()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return models.Class{}, f.writeErr
	}
	payload.ID = fmt.Sprint(len(f.rows) + 1)
	f.creates = append(f.creates, payload)
	f.rows = append(f.rows, payload)
	return payload, nil
}

func (f *fakeEndpoint) Update(_ context.Context, id string, payload models.Class) (models.Class, error) {
	f.waitWrite()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return models.Class{}, f.writeErr
	}
	payload.ID = id
	f.updates[id] = payload
	return payload, nil
}

func (f *fakeEndpoint) Delete(_ context.Context, id string) error {
	f.waitWrite()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.writeErr != nil {
		return f.writeErr
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeEndpoint) waitWrite() {
	f.mu.Lock()
	gate := f.writeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeEndpoint) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeEndpoint) lastFetch() models.QueryParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[len(f.fetches)-1]
}

func (f *fakeEndpoint) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

type confirmAnswer bool

func (a confirmAnswer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }
