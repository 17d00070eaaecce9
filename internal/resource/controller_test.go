package resource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/internal/form"
	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/pkg/credential"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

func newTestController(ep *fakeEndpoint, opts Options) *Controller[models.Class] {
	opts.Resource = models.ClassResource
	if opts.Limit == 0 {
		opts.Limit = 5
	}
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}
	return NewController[models.Class](ep, opts)
}

func TestControllerMountAndPaginate(t *testing.T) {
	ep := newFakeEndpoint(12)
	c := newTestController(ep, Options{})
	defer c.Close()

	require.NoError(t, c.Mount(context.Background()))
	view := c.Snapshot()
	assert.Len(t, view.Items, 5)
	assert.Equal(t, "Showing 1 to 5 of 12", view.Range.String())
	assert.Equal(t, []int{1, 2, 3}, view.Pages)

	require.NoError(t, c.SetPage(context.Background(), 3))
	view = c.Snapshot()
	assert.Equal(t, "Showing 11 to 12 of 12", view.Range.String())
	assert.Equal(t, 3, ep.lastFetch().Page)

	// out of range pages clamp to the last page, which is already shown
	require.NoError(t, c.SetPage(context.Background(), 7))
	assert.Equal(t, 2, ep.fetchCount())

	require.NoError(t, c.SetLimit(context.Background(), 10))
	assert.Equal(t, models.QueryParams{Page: 1, Limit: 10}, ep.lastFetch())
}

func TestControllerSearchIsDebounced(t *testing.T) {
	ep := newFakeEndpoint(12)
	c := newTestController(ep, Options{})
	defer c.Close()
	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.SetPage(context.Background(), 2))

	c.Search("c")
	c.Search("cl")
	c.Search("cla")
	assert.Equal(t, "cla", c.Snapshot().Params.Search)
	assert.Equal(t, 1, c.Snapshot().Params.Page)

	require.Eventually(t, func() bool { return ep.fetchCount() == 3 }, time.Second, 2*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, ep.fetchCount())
	assert.Equal(t, models.QueryParams{Page: 1, Limit: 5, Search: "cla"}, ep.lastFetch())
}

func TestControllerCloseDropsPendingSearch(t *testing.T) {
	ep := newFakeEndpoint(3)
	c := newTestController(ep, Options{})
	require.NoError(t, c.Mount(context.Background()))

	c.Search("x")
	c.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, ep.fetchCount())
}

func TestControllerSubmitValidatesBeforeSending(t *testing.T) {
	ep := newFakeEndpoint(2)
	c := newTestController(ep, Options{})
	defer c.Close()
	require.NoError(t, c.Mount(context.Background()))

	f := form.New(models.ClassResource)
	f.Set("name", "   ")
	_, err := c.Submit(context.Background(), f, "")
	var mutErr *appErrors.MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, appErrors.KindValidation, mutErr.Kind)
	assert.Equal(t, "Class name is required", c.Snapshot().Feedback.Message)
	assert.Empty(t, ep.creates)
	assert.Equal(t, 1, ep.fetchCount())
}

func TestControllerSubmitCreatesAndRefetches(t *testing.T) {
	ep := newFakeEndpoint(2)
	c := newTestController(ep, Options{})
	defer c.Close()
	require.NoError(t, c.Mount(context.Background()))

	f := form.New(models.ClassResource)
	f.Set("name", "Class 10")
	f.Set("description", "senior")
	s, err := c.Submit(context.Background(), f, "")
	require.NoError(t, err)
	assert.Equal(t, IntentCreate, s.Kind)
	require.Len(t, ep.creates, 1)
	assert.Equal(t, "senior", ep.creates[0].Description)

	assert.Equal(t, 2, ep.fetchCount())
	view := c.Snapshot()
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, "Class created successfully", view.Feedback.Message)
}

func TestControllerAuthFailureEndsSession(t *testing.T) {
	ep := newFakeEndpoint(2)
	ep.fetchErr = &appErrors.HTTPError{Status: 401}

	creds := credential.NewManager(credential.NewMemoryStore(), nil)
	require.NoError(t, creds.SetToken(context.Background(), "stale-token"))
	var redirects atomic.Int32
	session := NewSession(creds, NavigatorFunc(func() { redirects.Add(1) }), nil)

	c := newTestController(ep, Options{Session: session})
	defer c.Close()

	err := c.Mount(context.Background())
	assert.True(t, appErrors.IsAuthFailure(err))
	_, err = creds.Token(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoCredential)
	assert.Equal(t, int32(1), redirects.Load())

	// a second failure does not redirect again
	_ = c.Refresh(context.Background())
	assert.Equal(t, int32(1), redirects.Load())
	assert.Equal(t, appErrors.MessageSessionExpired, c.Snapshot().Feedback.Message)
}

func TestControllerFetchFailureShowsListError(t *testing.T) {
	ep := newFakeEndpoint(2)
	ep.fetchErr = &appErrors.NetworkError{Method: "GET", URL: "http://x/v1/class", Timeout: true}
	c := newTestController(ep, Options{})
	defer c.Close()

	err := c.Mount(context.Background())
	require.Error(t, err)
	view := c.Snapshot()
	assert.False(t, view.Loading)
	assert.Equal(t, models.FeedbackError, view.Feedback.Kind)
	assert.Equal(t, "Failed to load class list: "+appErrors.MessageTryAgain, view.Feedback.Message)
}

func TestControllerDeleteLastRowStepsBackAPage(t *testing.T) {
	ep := newFakeEndpoint(11)
	c := newTestController(ep, Options{Confirmer: confirmAnswer(true)})
	defer c.Close()
	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.SetPage(context.Background(), 3))
	require.Len(t, c.Snapshot().Items, 1)

	s, err := c.Delete(context.Background(), "11")
	require.NoError(t, err)
	assert.False(t, s.AlreadyGone)

	view := c.Snapshot()
	assert.Equal(t, 2, view.Params.Page)
	assert.Len(t, view.Items, 5)
	assert.Equal(t, "Showing 6 to 10 of 10", view.Range.String())
	assert.Equal(t, []int{1, 2}, view.Pages)
	// mount, page 3, and a single refetch
	assert.Equal(t, 3, ep.fetchCount())
	assert.Equal(t, 2, ep.lastFetch().Page)
}

func TestControllerDeleteKeepsPageWhenRowsRemain(t *testing.T) {
	ep := newFakeEndpoint(12)
	c := newTestController(ep, Options{Confirmer: confirmAnswer(true)})
	defer c.Close()
	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.SetPage(context.Background(), 3))

	_, err := c.Delete(context.Background(), "12")
	require.NoError(t, err)

	view := c.Snapshot()
	assert.Equal(t, 3, view.Params.Page)
	assert.Equal(t, "Showing 11 to 11 of 11", view.Range.String())
	assert.Equal(t, 3, ep.fetchCount())
}

func TestControllerCloseSilencesInFlightFetch(t *testing.T) {
	ep := newFakeEndpoint(3)
	var changes atomic.Int32
	c := newTestController(ep, Options{OnChange: func() { changes.Add(1) }})

	gate := make(chan struct{})
	ep.gate = gate
	done := make(chan error, 1)
	go func() { done <- c.Mount(context.Background()) }()
	require.Eventually(t, func() bool { return ep.fetchCount() == 1 }, time.Second, time.Millisecond)

	c.Close()
	seen := changes.Load()
	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, seen, changes.Load())
	assert.False(t, c.Snapshot().Loading)
}
