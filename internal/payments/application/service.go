package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hardware-backoffice/internal/changefeed"
	"hardware-backoffice/internal/money"
	"hardware-backoffice/internal/observability/metrics"
	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
	"hardware-backoffice/internal/phtime"
)

// PaymentStore is the persistence surface the service needs.
type PaymentStore interface {
	Insert(ctx context.Context, p payments.Payment) (payments.Payment, error)
	GetByID(ctx context.Context, id string) (payments.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]payments.Payment, error)
	SetStatus(ctx context.Context, id, status string, receivedAt time.Time) error
}

// OrderReader verifies the target order exists before a payment is
// recorded against it.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (orders.Order, error)
}

// Allocator applies a received amount to the order's installment terms.
type Allocator interface {
	Allocate(ctx context.Context, orderID string, amount float64) error
}

// Notifier is told about settled payments. Implementations must not
// block; failures are logged by the implementation, not surfaced here.
type Notifier interface {
	PaymentReceived(ctx context.Context, p payments.Payment)
}

// Service records and settles payments.
type Service struct {
	store    PaymentStore
	orders   OrderReader
	terms    Allocator
	feed     changefeed.Publisher
	notifier Notifier
	clock    phtime.Clock
}

// Option configures optional collaborators.
type Option func(*Service)

// WithNotifier attaches a notifier for settled payments.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the clock, mainly for tests.
func WithClock(c phtime.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService constructs a payment service.
func NewService(store PaymentStore, orderReader OrderReader, allocator Allocator, feed changefeed.Publisher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("payment service: nil store")
	}
	if orderReader == nil {
		return nil, errors.New("payment service: nil order reader")
	}
	if allocator == nil {
		return nil, errors.New("payment service: nil allocator")
	}
	if feed == nil {
		return nil, errors.New("payment service: nil feed")
	}
	s := &Service{store: store, orders: orderReader, terms: allocator, feed: feed, clock: phtime.SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Record validates and stores a new pending payment.
func (s *Service) Record(ctx context.Context, p payments.Payment) (payments.Payment, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.IncPaymentEvent("record", result)
	}()

	p.Amount = money.Round2(p.Amount)
	if p.Amount <= 0 {
		result = metrics.ResultError
		return payments.Payment{}, payments.ErrBadAmount
	}
	if !payments.ValidMethod(p.Method) {
		result = metrics.ResultError
		return payments.Payment{}, payments.ErrBadMethod
	}
	order, err := s.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		result = metrics.ResultError
		return payments.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	if p.CustomerID == "" {
		p.CustomerID = order.CustomerID
	}
	p.Status = payments.StatusPending
	p.CreatedAt = s.clock.Now().UTC()

	stored, err := s.store.Insert(ctx, p)
	if err != nil {
		result = metrics.ResultError
		return payments.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	s.feed.Publish(ctx, changefeed.Event{
		Table:   changefeed.TablePayments,
		Op:      changefeed.OpInsert,
		OrderID: stored.OrderID,
	})
	return stored, nil
}

// MarkReceived settles a pending payment. The amount is allocated to
// the order's installment terms and both payment and installment
// consumers are nudged to refetch.
func (s *Service) MarkReceived(ctx context.Context, id string) (payments.Payment, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.IncPaymentEvent("receive", result)
	}()

	receivedAt := s.clock.Now().UTC()
	if err := s.store.SetStatus(ctx, id, payments.StatusReceived, receivedAt); err != nil {
		result = metrics.ResultError
		return payments.Payment{}, err
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return payments.Payment{}, err
	}
	if err := s.terms.Allocate(ctx, p.OrderID, p.Amount); err != nil {
		result = metrics.ResultError
		return payments.Payment{}, fmt.Errorf("allocate payment %s: %w", id, err)
	}
	s.feed.Publish(ctx, changefeed.Event{
		Table:   changefeed.TablePayments,
		Op:      changefeed.OpUpdate,
		OrderID: p.OrderID,
	})
	s.feed.Publish(ctx, changefeed.Event{
		Table:   changefeed.TableInstallments,
		Op:      changefeed.OpUpdate,
		OrderID: p.OrderID,
	})
	if s.notifier != nil {
		s.notifier.PaymentReceived(ctx, p)
	}
	return p, nil
}

// Reject marks a pending payment as rejected. Rejected payments stay
// visible in the ledger but never count toward the balance.
func (s *Service) Reject(ctx context.Context, id string) (payments.Payment, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.IncPaymentEvent("reject", result)
	}()

	if err := s.store.SetStatus(ctx, id, payments.StatusRejected, time.Time{}); err != nil {
		result = metrics.ResultError
		return payments.Payment{}, err
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return payments.Payment{}, err
	}
	s.feed.Publish(ctx, changefeed.Event{
		Table:   changefeed.TablePayments,
		Op:      changefeed.OpUpdate,
		OrderID: p.OrderID,
	})
	return p, nil
}

// ListByOrder returns an order's payments.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]payments.Payment, error) {
	return s.store.ListByOrder(ctx, orderID)
}
