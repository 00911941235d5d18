package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// AlertParams holds the user-provided configuration of an alert
type AlertParams struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         string
	Periodicity  Periodicity
	Category     *Category // nil means every category
	Strategy     AlertStrategy
	HistoryLimit int // 0 keeps every notification
}

// Alert watches a person's spend over a period and records a notification
// each time its strategy fires. History is a bounded FIFO: when HistoryLimit
// is reached the oldest notification is evicted first.
//
// Listeners run synchronously on the caller's goroutine. An Alert is not
// safe for concurrent use.
type Alert struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         string
	Periodicity  Periodicity
	Category     *Category
	Strategy     AlertStrategy
	HistoryLimit int

	history         []Notification
	listeners       []registeredListener
	now             func() time.Time
	onListenerError func(error)
}

type registeredListener struct {
	id       string
	listener NotificationListener
}

// AlertOption customizes an Alert
type AlertOption func(*Alert)

// WithClock overrides the time source used to stamp notifications
func WithClock(now func() time.Time) AlertOption {
	return func(a *Alert) {
		if now != nil {
			a.now = now
		}
	}
}

// WithListenerErrorHandler receives the combined listener failures of one evaluation.
// Without one, failures are dropped.
func WithListenerErrorHandler(handler func(error)) AlertOption {
	return func(a *Alert) {
		if handler != nil {
			a.onListenerError = handler
		}
	}
}

// NewAlert creates an alert with an empty history
func NewAlert(params AlertParams, opts ...AlertOption) (*Alert, error) {
	if params.ID == uuid.Nil {
		params.ID = uuid.New()
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}
	if params.Periodicity != PeriodicityWeekly && params.Periodicity != PeriodicityMonthly {
		return nil, NewValidationError("periodicity", "must be WEEKLY or MONTHLY")
	}
	if params.Strategy == nil {
		return nil, NewValidationError("strategy", "cannot be nil")
	}
	if params.HistoryLimit < 0 {
		return nil, NewValidationError("history_limit", "cannot be negative")
	}

	a := &Alert{
		ID:              params.ID,
		OwnerID:         params.OwnerID,
		Name:            strings.TrimSpace(params.Name),
		Periodicity:     params.Periodicity,
		Category:        params.Category,
		Strategy:        params.Strategy,
		HistoryLimit:    params.HistoryLimit,
		now:             time.Now,
		onListenerError: func(error) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// RestoreAlert rebuilds a persisted alert with its notification history.
// When the history exceeds the limit only the newest entries are kept.
func RestoreAlert(params AlertParams, history []Notification, opts ...AlertOption) (*Alert, error) {
	a, err := NewAlert(params, opts...)
	if err != nil {
		return nil, err
	}
	if a.HistoryLimit > 0 && len(history) > a.HistoryLimit {
		history = history[len(history)-a.HistoryLimit:]
	}
	a.history = append([]Notification(nil), history...)
	return a, nil
}

// Evaluate feeds the accumulated amount to the strategy. On trigger a
// notification is appended to the history and every listener is invoked
// with it. Listener failures (errors or panics) are isolated, reported to
// the error handler and never change the result.
func (a *Alert) Evaluate(total decimal.Decimal) bool {
	if !a.Strategy.ShouldTrigger(total, a.Periodicity, a.Category) {
		return false
	}

	n := Notification{
		ID:        uuid.New(),
		AlertID:   a.ID,
		Timestamp: a.now(),
		Message:   a.message(total),
	}
	a.record(n)

	// Listeners may unregister themselves while running
	listeners := append([]registeredListener(nil), a.listeners...)

	var errs error
	for _, l := range listeners {
		errs = multierr.Append(errs, a.notify(l, n))
	}
	if errs != nil {
		a.onListenerError(errs)
	}

	return true
}

// notify runs a single listener and converts its failure into a ListenerError
func (a *Alert) notify(l registeredListener, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ListenerError{ListenerID: l.id, AlertID: a.ID, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if lerr := l.listener.OnNotification(n, a); lerr != nil {
		return &ListenerError{ListenerID: l.id, AlertID: a.ID, Cause: lerr}
	}
	return nil
}

func (a *Alert) record(n Notification) {
	if a.HistoryLimit > 0 && len(a.history) >= a.HistoryLimit {
		a.history = a.history[len(a.history)-a.HistoryLimit+1:]
	}
	a.history = append(a.history, n)
}

func (a *Alert) message(total decimal.Decimal) string {
	if s, ok := a.Strategy.(fmt.Stringer); ok {
		return fmt.Sprintf("Alert '%s' triggered: %s spent (%s)", a.Name, total.StringFixed(2), s.String())
	}
	return fmt.Sprintf("Alert '%s' triggered: %s spent", a.Name, total.StringFixed(2))
}

// Configure applies options to an existing alert, e.g. one reloaded from storage
func (a *Alert) Configure(opts ...AlertOption) {
	for _, opt := range opts {
		opt(a)
	}
}

// RegisterListener adds a listener under id. Registering an id twice is a
// no-op and returns false.
func (a *Alert) RegisterListener(id string, listener NotificationListener) bool {
	if listener == nil {
		return false
	}
	for _, l := range a.listeners {
		if l.id == id {
			return false
		}
	}
	a.listeners = append(a.listeners, registeredListener{id: id, listener: listener})
	return true
}

// UnregisterListener removes the listener registered under id
func (a *Alert) UnregisterListener(id string) bool {
	for i, l := range a.listeners {
		if l.id == id {
			a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of registered listeners
func (a *Alert) ListenerCount() int {
	return len(a.listeners)
}

// History returns a copy of every retained notification, oldest first
func (a *Alert) History() []Notification {
	return append([]Notification(nil), a.history...)
}

// RecentNotifications returns the last n notifications, oldest first
func (a *Alert) RecentNotifications(n int) []Notification {
	if n <= 0 || len(a.history) == 0 {
		return []Notification{}
	}
	if n > len(a.history) {
		n = len(a.history)
	}
	return append([]Notification(nil), a.history[len(a.history)-n:]...)
}

// ClearHistory empties the history; listeners stay registered
func (a *Alert) ClearHistory() {
	a.history = nil
}

func (a *Alert) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Periodicity)
}
