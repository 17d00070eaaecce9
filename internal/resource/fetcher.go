package resource

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

var (
	// ErrStale is returned to a fetch superseded by a newer one; its result
	// was discarded.
	ErrStale = errors.New("fetch superseded by a newer request")
	// ErrClosed is returned once the owning screen has been closed.
	ErrClosed = errors.New("resource screen closed")
)

// PageSource loads one page of records.
type PageSource[T any] interface {
	FetchPage(ctx context.Context, params models.QueryParams) (models.PageResult[T], error)
}

// LoadingFunc is told when request seq starts and settles, once each. A
// request that settles after Close is not reported.
type LoadingFunc func(seq uint64, loading bool)

// FetchState is what the table renders.
type FetchState[T any] struct {
	// Params produced Result.
	Params  models.QueryParams
	Result  models.PageResult[T]
	Err     error
	Loading bool
}

// Fetcher applies last-request-wins: a new fetch cancels the previous one and
// only the newest request may update the state.
type Fetcher[T any] struct {
	source    PageSource[T]
	logger    *zap.Logger
	onLoading LoadingFunc

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  FetchState[T]
	closed bool
}

// NewFetcher wraps a page source.
func NewFetcher[T any](source PageSource[T], onLoading LoadingFunc, logger *zap.Logger) *Fetcher[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onLoading == nil {
		onLoading = func(uint64, bool) {}
	}
	return &Fetcher[T]{source: source, logger: logger, onLoading: onLoading}
}

// Fetch loads params. It returns ErrStale when a newer fetch started before
// this one settled and ErrClosed after Close; in both cases state is left
// untouched.
func (f *Fetcher[T]) Fetch(ctx context.Context, params models.QueryParams) (models.PageResult[T], error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return models.PageResult[T]{}, ErrClosed
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state.Loading = true
	f.mu.Unlock()

	f.onLoading(seq, true)
	result, err := f.source.FetchPage(reqCtx, params)
	cancel()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return models.PageResult[T]{}, ErrClosed
	}
	defer f.onLoading(seq, false)
	defer f.mu.Unlock()
	if seq != f.seq {
		f.logger.Debug("discarding stale page", zap.Uint64("seq", seq), zap.Uint64("latest", f.seq))
		return models.PageResult[T]{}, ErrStale
	}
	f.cancel = nil
	f.state.Loading = false
	if err != nil {
		f.state.Err = err
		return models.PageResult[T]{}, err
	}
	f.state.Params = params
	f.state.Result = result
	f.state.Err = nil
	return result, nil
}

// State returns a copy of the rendered state.
func (f *Fetcher[T]) State() FetchState[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	st.Result.Items = append([]T(nil), f.state.Result.Items...)
	return st
}

// Loading reports whether the newest request is still in flight.
func (f *Fetcher[T]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Loading
}

// Close cancels any in-flight request and stops applying results.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.state.Loading = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
