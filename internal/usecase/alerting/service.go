package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/metrics"
	"github.com/gestiongastos/backend/internal/validation"
)

// CategoryResolver turns a user-supplied category name into a stored category
type CategoryResolver interface {
	GetOrCreateCategory(ctx context.Context, name string) (domain.Category, error)
}

// CreateAlertInput represents the input for creating a threshold alert.
// Category "" or "All" watches every category. A nil HistoryLimit uses the
// service default.
type CreateAlertInput struct {
	OwnerID      uuid.UUID       `json:"owner_id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Periodicity  string          `json:"periodicity" validate:"required"`
	Category     string          `json:"category"`
	Threshold    decimal.Decimal `json:"threshold"`
	HistoryLimit *int            `json:"history_limit" validate:"omitempty,gte=0"`
}

type subscriber struct {
	id       string
	listener domain.NotificationListener
}

// AlertingService owns alert lifecycle and periodic spend evaluation
type AlertingService struct {
	AlertRepo    domain.AlertRepository
	LedgerRepo   domain.LedgerRepository
	Categories   CategoryResolver
	Weeks        domain.WeekNumbering
	HistoryLimit int
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger

	now         func() time.Time
	mu          sync.RWMutex
	subscribers []subscriber
}

// Option customizes an AlertingService
type Option func(*AlertingService)

// WithClock overrides the time source deciding the current period
func WithClock(now func() time.Time) Option {
	return func(s *AlertingService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHistoryLimit sets the history capacity of alerts created without one
func WithHistoryLimit(limit int) Option {
	return func(s *AlertingService) {
		if limit >= 0 {
			s.HistoryLimit = limit
		}
	}
}

// NewAlertingService creates a new AlertingService instance
func NewAlertingService(
	alertRepo domain.AlertRepository,
	ledgerRepo domain.LedgerRepository,
	categories CategoryResolver,
	weeks domain.WeekNumbering,
	m *metrics.Metrics,
	logger zerolog.Logger,
	opts ...Option,
) *AlertingService {
	s := &AlertingService{
		AlertRepo:  alertRepo,
		LedgerRepo: ledgerRepo,
		Categories: categories,
		Weeks:      weeks,
		Metrics:    m,
		Logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAlert creates a threshold alert for a person
func (s *AlertingService) CreateAlert(ctx context.Context, input CreateAlertInput) (*domain.Alert, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	periodicity, err := domain.ParsePeriodicity(input.Periodicity)
	if err != nil {
		return nil, err
	}

	strategy, err := domain.NewThresholdStrategy(input.Threshold)
	if err != nil {
		return nil, err
	}

	var category *domain.Category
	if !domain.IsNoFilterCategory(input.Category) {
		c, err := s.Categories.GetOrCreateCategory(ctx, input.Category)
		if err != nil {
			return nil, err
		}
		category = &c
	}

	limit := s.HistoryLimit
	if input.HistoryLimit != nil {
		limit = *input.HistoryLimit
	}

	alert, err := domain.NewAlert(domain.AlertParams{
		OwnerID:      input.OwnerID,
		Name:         input.Name,
		Periodicity:  periodicity,
		Category:     category,
		Strategy:     strategy,
		HistoryLimit: limit,
	}, s.alertOptions()...)
	if err != nil {
		return nil, err
	}

	if err := s.AlertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.Logger.Info().
		Str("alert_id", alert.ID.String()).
		Str("owner_id", alert.OwnerID.String()).
		Str("periodicity", string(alert.Periodicity)).
		Str("threshold", input.Threshold.StringFixed(2)).
		Msg("alert created")

	return alert, nil
}

// DeleteAlert removes an alert and its history
func (s *AlertingService) DeleteAlert(ctx context.Context, alertID uuid.UUID) error {
	if err := s.AlertRepo.Delete(ctx, alertID); err != nil {
		return err
	}
	s.Logger.Info().Str("alert_id", alertID.String()).Msg("alert deleted")
	return nil
}

// ListAlerts retrieves every alert owned by the person
func (s *AlertingService) ListAlerts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Alert, error) {
	return s.AlertRepo.ListByOwner(ctx, ownerID)
}

// ClearHistory empties the notification history of an alert
func (s *AlertingService) ClearHistory(ctx context.Context, alertID uuid.UUID) error {
	alert, err := s.AlertRepo.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	alert.ClearHistory()
	return s.AlertRepo.Save(ctx, alert)
}

// RecentNotifications returns the last n notifications of an alert, oldest first
func (s *AlertingService) RecentNotifications(ctx context.Context, alertID uuid.UUID, n int) ([]domain.Notification, error) {
	alert, err := s.AlertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	return alert.RecentNotifications(n), nil
}

// Subscribe registers a listener on every alert the service evaluates.
// Subscribing an id twice is a no-op and returns false.
func (s *AlertingService) Subscribe(id string, listener domain.NotificationListener) bool {
	if listener == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscribers {
		if sub.id == id {
			return false
		}
	}
	s.subscribers = append(s.subscribers, subscriber{id: id, listener: listener})
	return true
}

// Unsubscribe removes a service-wide listener
func (s *AlertingService) Unsubscribe(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// CheckAlerts evaluates every alert owned by the person against their spend
// in the current period and returns the notifications produced.
// Logic:
//  1. Load the person's alerts and the ledgers they take part in
//  2. For each alert, sum the person's cost of matching expenses (Spend)
//  3. Evaluate the alert; on trigger persist its history
func (s *AlertingService) CheckAlerts(ctx context.Context, personID uuid.UUID) ([]domain.Notification, error) {
	// 1. Load alerts and ledgers
	alerts, err := s.AlertRepo.ListByOwner(ctx, personID)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	ledgers, err := s.LedgerRepo.ListByParticipant(ctx, personID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var fired []domain.Notification

	for _, alert := range alerts {
		// 2. Aggregate
		total := Spend(ledgers, personID, alert.Periodicity, alert.Category, today, s.Weeks)

		// 3. Evaluate and persist
		if !s.evaluate(alert, total) {
			continue
		}

		fired = append(fired, alert.RecentNotifications(1)...)
		s.Metrics.IncAlertTriggered(string(alert.Periodicity))
		s.Logger.Info().
			Str("alert_id", alert.ID.String()).
			Str("owner_id", personID.String()).
			Str("total", total.StringFixed(2)).
			Msg("alert triggered")

		if err := s.AlertRepo.Save(ctx, alert); err != nil {
			return fired, err
		}
	}

	return fired, nil
}

// evaluate runs one alert with the current subscribers attached. Subscribers
// are detached afterwards so stored alerts only keep their own listeners.
func (s *AlertingService) evaluate(alert *domain.Alert, total decimal.Decimal) bool {
	alert.Configure(s.alertOptions()...)

	attached := s.attach(alert)
	defer func() {
		for _, id := range attached {
			alert.UnregisterListener(id)
		}
	}()

	return alert.Evaluate(total)
}

// attach registers every subscriber on the alert and returns the ids it added
func (s *AlertingService) attach(alert *domain.Alert) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var attached []string
	for _, sub := range s.subscribers {
		if alert.RegisterListener(sub.id, sub.listener) {
			attached = append(attached, sub.id)
		}
	}
	return attached
}

func (s *AlertingService) alertOptions() []domain.AlertOption {
	return []domain.AlertOption{
		domain.WithClock(s.now),
		domain.WithListenerErrorHandler(s.handleListenerErrors),
	}
}

func (s *AlertingService) handleListenerErrors(err error) {
	errs := multierr.Errors(err)
	s.Metrics.AddListenerFailures(len(errs))
	for _, e := range errs {
		s.Logger.Warn().Err(e).Msg("alert listener failed")
	}
}
