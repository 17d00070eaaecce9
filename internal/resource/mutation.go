package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

// ErrBusy rejects a mutation on a record that is already being submitted.
var ErrBusy = errors.New("a submission for this record is already in progress")

// IntentKind is the kind of write a user asked for.
type IntentKind int

const (
	IntentCreate IntentKind = iota
	IntentUpdate
	IntentDelete
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreate:
		return "create"
	case IntentUpdate:
		return "update"
	case IntentDelete:
		return "delete"
	default:
		return "unknown"
	}
}

func (k IntentKind) pastTense() string {
	switch k {
	case IntentCreate:
		return "created"
	case IntentUpdate:
		return "updated"
	default:
		return "deleted"
	}
}

// SuccessMessage is the notification shown after a write of kind settles.
func SuccessMessage(title string, kind IntentKind) string {
	return fmt.Sprintf("%s %s successfully", title, kind.pastTense())
}

// Intent is one requested write.
type Intent[T any] struct {
	Kind    IntentKind
	ID      string
	Payload T
}

// CreateIntent asks for a new record.
func CreateIntent[T any](payload T) Intent[T] {
	return Intent[T]{Kind: IntentCreate, Payload: payload}
}

// UpdateIntent asks to replace record id.
func UpdateIntent[T any](id string, payload T) Intent[T] {
	return Intent[T]{Kind: IntentUpdate, ID: id, Payload: payload}
}

// DeleteIntent asks to remove record id.
func DeleteIntent[T any](id string) Intent[T] {
	return Intent[T]{Kind: IntentDelete, ID: id}
}

// key identifies the record a submission is tracked under. All creates share
// one key since the dialog can only hold one new record.
func (i Intent[T]) key() string {
	if i.Kind == IntentCreate {
		return "new"
	}
	return "id:" + i.ID
}

// Writer performs the remote writes.
type Writer[T any] interface {
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id string, payload T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) { return f(ctx, message) }

// Settlement describes how a mutation ended when it did not fail.
type Settlement[T any] struct {
	Kind   IntentKind
	Record T
	// Declined is set when the user rejected the confirmation; nothing was sent.
	Declined bool
	// AlreadyGone is set when a delete hit a record the server no longer had.
	AlreadyGone bool
}

// CoordinatorOptions wires a Coordinator into its screen.
type CoordinatorOptions struct {
	Title     string
	Confirmer Confirmer
	Feedback  *Notifier
	// OnDeleted runs after a successful delete, before the refetch.
	OnDeleted func()
	// Refetch reloads the list; called once after each successful mutation.
	Refetch func(ctx context.Context) error
	// OnAuthFailure runs when the server rejected the credential.
	OnAuthFailure func(ctx context.Context, err error)
	Logger        *zap.Logger
}

// Coordinator serializes writes per record and turns their outcome into
// feedback and a list refresh.
type Coordinator[T any] struct {
	writer Writer[T]
	opts   CoordinatorOptions
	logger *zap.Logger

	mu         sync.Mutex
	submitting map[string]struct{}
}

// NewCoordinator builds a coordinator over writer.
func NewCoordinator[T any](writer Writer[T], opts CoordinatorOptions) *Coordinator[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Feedback == nil {
		opts.Feedback = NewNotifier(DefaultFeedbackTTL)
	}
	if opts.Title == "" {
		opts.Title = "Record"
	}
	return &Coordinator[T]{
		writer:     writer,
		opts:       opts,
		logger:     logger,
		submitting: make(map[string]struct{}),
	}
}

// Submitting reports whether a create (id "") or the given record is in
// flight.
func (c *Coordinator[T]) Submitting(id string) bool {
	key := "new"
	if id != "" {
		key = "id:" + id
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.submitting[key]
	return ok
}

// Execute runs intent. Deletes are confirmed first, with the record already
// marked as submitting. On success it shows
// success feedback and refetches once; on failure it shows the classified
// error and does not refetch.
func (c *Coordinator[T]) Execute(ctx context.Context, intent Intent[T]) (Settlement[T], error) {
	settlement := Settlement[T]{Kind: intent.Kind}
	if intent.Kind != IntentCreate && intent.ID == "" {
		return settlement, &appErrors.MutationError{
			Kind:    appErrors.KindValidation,
			Message: fmt.Sprintf("cannot %s a %s without an id", intent.Kind, c.opts.Title),
		}
	}

	key := intent.key()
	if !c.acquire(key) {
		return settlement, ErrBusy
	}

	if intent.Kind == IntentDelete {
		ok, err := c.confirm(ctx, intent.ID)
		if err != nil || !ok {
			c.release(key)
			settlement.Declined = err == nil
			return settlement, err
		}
	}

	record, err := c.perform(ctx, intent)
	c.release(key)

	if err != nil {
		if intent.Kind == IntentDelete && appErrors.IsNotFound(err) {
			c.logger.Info("record already deleted", zap.String("resource", c.opts.Title), zap.String("id", intent.ID))
			settlement.AlreadyGone = true
		} else {
			return settlement, c.fail(ctx, intent, err)
		}
	}

	settlement.Record = record
	c.opts.Feedback.Success(SuccessMessage(c.opts.Title, intent.Kind))
	if intent.Kind == IntentDelete && c.opts.OnDeleted != nil {
		c.opts.OnDeleted()
	}
	if c.opts.Refetch != nil {
		if err := c.opts.Refetch(ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrClosed) {
			c.logger.Warn("refetch after mutation failed", zap.String("resource", c.opts.Title), zap.Error(err))
		}
	}
	return settlement, nil
}

func (c *Coordinator[T]) perform(ctx context.Context, intent Intent[T]) (T, error) {
	switch intent.Kind {
	case IntentCreate:
		return c.writer.Create(ctx, intent.Payload)
	case IntentUpdate:
		return c.writer.Update(ctx, intent.ID, intent.Payload)
	default:
		var zero T
		return zero, c.writer.Delete(ctx, intent.ID)
	}
}

func (c *Coordinator[T]) fail(ctx context.Context, intent Intent[T], err error) error {
	mutErr := appErrors.Classify(err)
	c.logger.Warn("mutation failed",
		zap.String("resource", c.opts.Title),
		zap.Stringer("intent", intent.Kind),
		zap.String("id", intent.ID),
		zap.String("kind", string(mutErr.Kind)),
		zap.Error(err),
	)
	c.opts.Feedback.Error(mutErr.Message)
	if mutErr.Kind == appErrors.KindAuth && c.opts.OnAuthFailure != nil {
		c.opts.OnAuthFailure(ctx, mutErr)
	}
	return mutErr
}

func (c *Coordinator[T]) confirm(ctx context.Context, id string) (bool, error) {
	if c.opts.Confirmer == nil {
		return false, errors.New("delete requires a confirmer")
	}
	msg := fmt.Sprintf("Are you sure you want to delete this %s (%s)?", c.opts.Title, id)
	return c.opts.Confirmer.Confirm(ctx, msg)
}

func (c *Coordinator[T]) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.submitting[key]; ok {
		return false
	}
	c.submitting[key] = struct{}{}
	return true
}

func (c *Coordinator[T]) release(key string) {
	c.mu.Lock()
	delete(c.submitting, key)
	c.mu.Unlock()
}
