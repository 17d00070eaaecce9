package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/form"
	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

// DefaultSearchDebounce is the quiet period before a search is sent.
const DefaultSearchDebounce = 500 * time.Millisecond

// Endpoint is everything a screen needs from the remote collection.
type Endpoint[T any] interface {
	PageSource[T]
	Writer[T]
}

// Options configures a Controller.
type Options struct {
	Resource    models.Resource
	Limit       int
	Debounce    time.Duration
	FeedbackTTL time.Duration
	Confirmer   Confirmer
	Session     SessionHandler
	// OnChange is called whenever rendered state may have changed.
	OnChange func()
	Logger   *zap.Logger
}

// View is a consistent snapshot of one screen.
type View[T any] struct {
	Params   models.QueryParams
	Items    []T
	Total    int
	Loading  bool
	Err      error
	Feedback models.UiFeedback
	Range    Range
	Pages    []int
}

// Controller drives the list/add/edit/delete screen of one resource.
type Controller[T any] struct {
	res       models.Resource
	query     *QueryState
	fetcher   *Fetcher[T]
	mutations *Coordinator[T]
	feedback  *Notifier
	debouncer *Debouncer
	session   SessionHandler
	onChange  func()
	logger    *zap.Logger

	mu       sync.Mutex
	lifetime context.Context
	cancel   context.CancelFunc
}

// NewController wires the screen state for endpoint.
func NewController[T any](endpoint Endpoint[T], opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("resource", opts.Resource.Name))
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	onChange := opts.OnChange
	if onChange == nil {
		onChange = func() {}
	}

	lifetime, cancel := context.WithCancel(context.Background())
	c := &Controller[T]{
		res:       opts.Resource,
		query:     NewQueryState(opts.Limit),
		feedback:  NewNotifier(opts.FeedbackTTL),
		debouncer: NewDebouncer(opts.Debounce),
		session:   opts.Session,
		onChange:  onChange,
		logger:    logger,
		lifetime:  lifetime,
		cancel:    cancel,
	}
	c.fetcher = NewFetcher[T](endpoint, func(uint64, bool) { c.onChange() }, logger)
	c.feedback.Subscribe(func(models.UiFeedback) { c.onChange() })
	c.mutations = NewCoordinator[T](endpoint, CoordinatorOptions{
		Title:         opts.Resource.Title,
		Confirmer:     opts.Confirmer,
		Feedback:      c.feedback,
		OnDeleted:     c.shrink,
		Refetch:       c.Refresh,
		OnAuthFailure: c.expire,
		Logger:        logger,
	})
	return c
}

// Resource returns the resource the screen manages.
func (c *Controller[T]) Resource() models.Resource { return c.res }

// Mount loads the first page. Requests made later by debounced searches are
// bound to ctx as well.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.cancel()
	c.lifetime, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// shrink accounts for one removed row so the refetch does not land past the
// last page.
func (c *Controller[T]) shrink() {
	total := c.fetcher.State().Result.Total - 1
	if params, moved := c.query.Clamp(total); moved {
		c.logger.Debug("page clamped after delete", zap.Int("page", params.Page), zap.Int("total", total))
	}
}

// Refresh fetches the current params. Superseded fetches return nil.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	_, err := c.fetcher.Fetch(ctx, c.query.Params())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, ErrClosed):
		return nil
	}

	mutErr := appErrors.Classify(err)
	c.logger.Warn("list fetch failed", zap.String("kind", string(mutErr.Kind)), zap.Error(err))
	if mutErr.Kind == appErrors.KindAuth {
		c.feedback.Error(mutErr.Message)
		c.expire(ctx, mutErr)
	} else {
		c.feedback.Error(fmt.Sprintf("Failed to load %s list: %s", strings.ToLower(c.res.Title), mutErr.Message))
	}
	c.onChange()
	return mutErr
}

// Search updates the search text immediately and fetches page 1 once typing
// has paused.
func (c *Controller[T]) Search(text string) {
	c.query.SetSearch(text)
	c.onChange()
	c.debouncer.Trigger(func() {
		c.mu.Lock()
		ctx := c.lifetime
		c.mu.Unlock()
		if err := c.Refresh(ctx); err != nil {
			c.logger.Debug("debounced search failed", zap.Error(err))
		}
	})
}

// SearchNow applies text without debouncing.
func (c *Controller[T]) SearchNow(ctx context.Context, text string) error {
	c.debouncer.Stop()
	c.query.SetSearch(text)
	return c.Refresh(ctx)
}

// SetPage moves to page n of the last loaded result and fetches it.
func (c *Controller[T]) SetPage(ctx context.Context, n int) error {
	total := c.fetcher.State().Result.Total
	if _, changed := c.query.SetPage(n, total); !changed {
		return nil
	}
	return c.Refresh(ctx)
}

// SetLimit changes the page size and fetches page 1.
func (c *Controller[T]) SetLimit(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	c.query.SetLimit(n)
	return c.Refresh(ctx)
}

// Submit validates f and creates the record, or updates record id when id
// is set.
func (c *Controller[T]) Submit(ctx context.Context, f *form.Form, id string) (Settlement[T], error) {
	kind := IntentCreate
	if id != "" {
		kind = IntentUpdate
	}
	if err := f.Validate(); err != nil {
		return Settlement[T]{Kind: kind}, c.invalid(err)
	}
	payload, err := form.Decode[T](f)
	if err != nil {
		return Settlement[T]{Kind: kind}, c.invalid(err)
	}
	if kind == IntentCreate {
		return c.mutations.Execute(ctx, CreateIntent(payload))
	}
	return c.mutations.Execute(ctx, UpdateIntent(id, payload))
}

// Delete removes record id after confirmation.
func (c *Controller[T]) Delete(ctx context.Context, id string) (Settlement[T], error) {
	return c.mutations.Execute(ctx, DeleteIntent[T](id))
}

// Submitting reports whether the record (or a create, for "") is in flight.
func (c *Controller[T]) Submitting(id string) bool {
	return c.mutations.Submitting(id)
}

// Feedback exposes the notifier, e.g. for dismissing.
func (c *Controller[T]) Feedback() *Notifier { return c.feedback }

// Snapshot returns what the screen should render now.
func (c *Controller[T]) Snapshot() View[T] {
	st := c.fetcher.State()
	params := c.query.Params()
	return View[T]{
		Params:   params,
		Items:    st.Result.Items,
		Total:    st.Result.Total,
		Loading:  st.Loading,
		Err:      st.Err,
		Feedback: c.feedback.Current(),
		Range:    PageRange(st.Params, len(st.Result.Items), st.Result.Total),
		Pages:    Pages(st.Result.Total, params.Limit),
	}
}

// Close stops pending searches and timers and discards in-flight results.
func (c *Controller[T]) Close() {
	c.debouncer.Stop()
	c.fetcher.Close()
	c.feedback.Stop()
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
}

func (c *Controller[T]) invalid(err error) error {
	mutErr := &appErrors.MutationError{Kind: appErrors.KindValidation, Message: err.Error(), Err: err}
	c.feedback.Error(mutErr.Message)
	return mutErr
}

func (c *Controller[T]) expire(ctx context.Context, err error) {
	if c.session != nil {
		c.session.Expired(ctx, err)
	}
}
