package resource

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// DefaultFeedbackTTL is how long a notification stays visible.
const DefaultFeedbackTTL = 3 * time.Second

// Notifier shows one transient notification at a time.
type Notifier struct {
	mu          sync.Mutex
	ttl         time.Duration
	current     models.UiFeedback
	timer       *time.Timer
	gen         uint64
	subscribers []func(models.UiFeedback)
}

// NewNotifier returns a notifier that auto-dismisses after ttl.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultFeedbackTTL
	}
	return &Notifier{ttl: ttl}
}

// Subscribe registers fn for show and dismiss events.
func (n *Notifier) Subscribe(fn func(models.UiFeedback)) {
	n.mu.Lock()
	n.subscribers = append(n.subscribers, fn)
	n.mu.Unlock()
}

// Success shows a success message.
func (n *Notifier) Success(message string) { n.Show(models.FeedbackSuccess, message) }

// Error shows an error message.
func (n *Notifier) Error(message string) { n.Show(models.FeedbackError, message) }

// Show replaces the visible notification and restarts the dismiss timer.
func (n *Notifier) Show(kind models.FeedbackKind, message string) {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = models.UiFeedback{Kind: kind, Message: message, Visible: true}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	event := n.current
	subs := n.subscribers
	n.mu.Unlock()

	notify(subs, event)
}

// Dismiss hides the current notification.
func (n *Notifier) Dismiss() {
	n.expire(0)
}

// Current returns the visible notification; Visible is false when none.
func (n *Notifier) Current() models.UiFeedback {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stop cancels the pending dismiss timer without notifying.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// expire hides the notification shown as generation gen; 0 hides any.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if (gen != 0 && gen != n.gen) || !n.current.Visible {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current.Visible = false
	event := n.current
	subs := n.subscribers
	n.mu.Unlock()

	notify(subs, event)
}

func notify(subs []func(models.UiFeedback), event models.UiFeedback) {
	for _, fn := range subs {
		fn(event)
	}
}
