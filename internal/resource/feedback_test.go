package resource

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

func TestNotifierAutoDismiss(t *testing.T) {
	n := NewNotifier(30 * time.Millisecond)
	n.Success("Class created successfully")

	cur := n.Current()
	assert.True(t, cur.Visible)
	assert.Equal(t, models.FeedbackSuccess, cur.Kind)

	assert.Eventually(t, func() bool { return !n.Current().Visible }, time.Second, 5*time.Millisecond)
}

func TestNotifierReplaceRestartsTimer(t *testing.T) {
	n := NewNotifier(50 * time.Millisecond)
	var mu sync.Mutex
	var events []models.UiFeedback
	n.Subscribe(func(fb models.UiFeedback) {
		mu.Lock()
		events = append(events, fb)
		mu.Unlock()
	})

	n.Success("first")
	time.Sleep(30 * time.Millisecond)
	n.Error("second")
	time.Sleep(30 * time.Millisecond)

	cur := n.Current()
	assert.True(t, cur.Visible)
	assert.Equal(t, "second", cur.Message)
	assert.Equal(t, models.FeedbackError, cur.Kind)

	assert.Eventually(t, func() bool { return !n.Current().Visible }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, events, 3)
}

func TestNotifierDismiss(t *testing.T) {
	n := NewNotifier(time.Minute)
	n.Error("boom")
	n.Dismiss()
	assert.False(t, n.Current().Visible)
	n.Dismiss()
}
