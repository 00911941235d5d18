package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gestiongastos/backend/internal/domain"
)

// MockChannel is a mock implementation of Channel for testing
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func newTestAlert(t *testing.T) *domain.Alert {
	t.Helper()
	alert, err := domain.NewAlert(domain.AlertParams{
		OwnerID:     uuid.New(),
		Name:        "Groceries",
		Periodicity: domain.PeriodicityWeekly,
		Strategy:    domain.ThresholdStrategy{Threshold: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	return alert
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "gastos", "topic", true, false, false, false, amqp091.Table(nil)).Return(nil)

	p, err := NewPublisher(ch, "gastos", "alerts.notification", zerolog.Nop())

	require.NoError(t, err)
	assert.NotNil(t, p)
	ch.AssertExpectations(t)
}

func TestNewPublisher_DeclareFails(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "gastos", "topic", true, false, false, false, amqp091.Table(nil)).Return(errors.New("access refused"))
	ch.On("Close").Return(nil)

	p, err := NewPublisher(ch, "gastos", "alerts.notification", zerolog.Nop())

	assert.Nil(t, p)
	assert.ErrorContains(t, err, "declare exchange")
	ch.AssertCalled(t, "Close")
}

func TestPublisher_OnNotification(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	alert := newTestAlert(t)
	n := domain.Notification{
		ID:        uuid.New(),
		AlertID:   alert.ID,
		Timestamp: time.Date(2025, time.March, 12, 18, 0, 0, 0, time.UTC),
		Message:   "Alert 'Groceries' triggered: 61.20 spent",
	}

	var published amqp091.Publishing
	ch.On("PublishWithContext", mock.Anything, "gastos", "alerts.notification", false, false, mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) {
			published = args.Get(5).(amqp091.Publishing)
		}).
		Return(nil)

	p, err := NewPublisher(ch, "gastos", "alerts.notification", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, p.OnNotification(n, alert))

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp091.Persistent, published.DeliveryMode)
	assert.Equal(t, n.ID.String(), published.MessageId)

	msg, err := NotificationMessageFromJSON(published.Body)
	require.NoError(t, err)
	assert.Equal(t, alert.ID.String(), msg.AlertID)
	assert.Equal(t, "Groceries", msg.AlertName)
	assert.Equal(t, alert.OwnerID.String(), msg.OwnerID)
	assert.Equal(t, "WEEKLY", msg.Periodicity)
	assert.Equal(t, n.Message, msg.Message)
	assert.True(t, n.Timestamp.Equal(msg.Timestamp))
}

func TestPublisher_PublishErrorIsIsolatedByAlert(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	p, err := NewPublisher(ch, "gastos", "alerts.notification", zerolog.Nop())
	require.NoError(t, err)

	var reported error
	alert := newTestAlert(t)
	alert.Configure(domain.WithListenerErrorHandler(func(err error) { reported = err }))
	alert.RegisterListener(ListenerID, p)

	assert.True(t, alert.Evaluate(decimal.NewFromInt(80)))
	assert.Len(t, alert.History(), 1)

	var lerr *domain.ListenerError
	require.ErrorAs(t, reported, &lerr)
	assert.Equal(t, ListenerID, lerr.ListenerID)
	assert.ErrorContains(t, lerr, "publish message")
}

func TestPublisher_Close(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("Close").Return(nil)

	p, err := NewPublisher(ch, "gastos", "alerts.notification", zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, p.Close())
	ch.AssertCalled(t, "Close")
}
