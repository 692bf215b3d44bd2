package application

import (
	"context"
	"errors"
	"time"

	billing "hardware-backoffice/internal/billing/domain"
	"hardware-backoffice/internal/observability/metrics"
	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
	"hardware-backoffice/internal/phtime"
)

// OrderReader loads orders.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (orders.Order, error)
}

// PaymentReader loads an order's payments.
type PaymentReader interface {
	ListByOrder(ctx context.Context, orderID string) ([]payments.Payment, error)
}

// InstallmentReader loads an order's installment rows.
type InstallmentReader interface {
	ListByOrder(ctx context.Context, orderID string) ([]billing.Installment, error)
}

// Service computes derived billing views. The computation itself lives
// in the domain package as pure functions; this service only fetches
// the latest snapshot and applies them, which is also what change-feed
// consumers do on every notification.
type Service struct {
	orders       OrderReader
	payments     PaymentReader
	installments InstallmentReader
	clock        phtime.Clock
}

// NewService constructs a billing service.
func NewService(orderReader OrderReader, paymentReader PaymentReader, installmentReader InstallmentReader, clock phtime.Clock) (*Service, error) {
	if orderReader == nil {
		return nil, errors.New("billing service: nil order reader")
	}
	if paymentReader == nil {
		return nil, errors.New("billing service: nil payment reader")
	}
	if installmentReader == nil {
		return nil, errors.New("billing service: nil installment reader")
	}
	if clock == nil {
		clock = phtime.SystemClock{}
	}
	return &Service{orders: orderReader, payments: paymentReader, installments: installmentReader, clock: clock}, nil
}

// Ledger fetches the order and its payments and folds them into a
// ledger view.
func (s *Service) Ledger(ctx context.Context, orderID string) (billing.Ledger, orders.Order, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveLedgerBuild(result, time.Since(start))
	}()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		result = metrics.ResultError
		return billing.Ledger{}, orders.Order{}, err
	}
	pays, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		result = metrics.ResultError
		return billing.Ledger{}, orders.Order{}, err
	}
	return billing.BuildLedger(order, pays), order, nil
}

// Schedule fetches installment rows and classifies them against today.
func (s *Service) Schedule(ctx context.Context, orderID string) (billing.Schedule, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveScheduleBuild(result, time.Since(start))
	}()

	rows, err := s.installments.ListByOrder(ctx, orderID)
	if err != nil {
		result = metrics.ResultError
		return billing.Schedule{}, err
	}
	return billing.BuildSchedule(rows, s.clock.Now()), nil
}
