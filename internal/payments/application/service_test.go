package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"hardware-backoffice/internal/changefeed"
	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
)

type stubStore struct {
	byID     map[string]payments.Payment
	inserted []payments.Payment
	setCalls []string
}

func (s *stubStore) Insert(_ context.Context, p payments.Payment) (payments.Payment, error) {
	if p.ID == "" {
		p.ID = "pay-new"
	}
	s.inserted = append(s.inserted, p)
	if s.byID == nil {
		s.byID = map[string]payments.Payment{}
	}
	s.byID[p.ID] = p
	return p, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (payments.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return payments.Payment{}, payments.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) ListByOrder(_ context.Context, orderID string) ([]payments.Payment, error) {
	var result []payments.Payment
	for _, p := range s.byID {
		if p.OrderID == orderID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *stubStore) SetStatus(_ context.Context, id, status string, receivedAt time.Time) error {
	p, ok := s.byID[id]
	if !ok {
		return payments.ErrNotFound
	}
	if p.Status != payments.StatusPending {
		return payments.ErrAlreadySettled
	}
	p.Status = status
	if status == payments.StatusReceived {
		p.ReceivedAt = receivedAt
	}
	s.byID[id] = p
	s.setCalls = append(s.setCalls, id+":"+status)
	return nil
}

type stubOrderReader struct {
	order orders.Order
	err   error
}

func (s stubOrderReader) GetByID(context.Context, string) (orders.Order, error) {
	return s.order, s.err
}

type stubAllocator struct {
	calls []float64
	err   error
}

func (s *stubAllocator) Allocate(_ context.Context, _ string, amount float64) error {
	s.calls = append(s.calls, amount)
	return s.err
}

type stubNotifier struct {
	received []payments.Payment
}

func (s *stubNotifier) PaymentReceived(_ context.Context, p payments.Payment) {
	s.received = append(s.received, p)
}

func newTestService(t *testing.T, store *stubStore, reader stubOrderReader, alloc *stubAllocator, feed *changefeed.Feed, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(store, reader, alloc, feed, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(t, &stubStore{}, stubOrderReader{}, &stubAllocator{}, changefeed.NewFeed())

	_, err := svc.Record(context.Background(), payments.Payment{OrderID: "ord-1", Amount: 0, Method: payments.MethodCash})
	if !errors.Is(err, payments.ErrBadAmount) {
		t.Fatalf("expected ErrBadAmount, got %v", err)
	}
	_, err = svc.Record(context.Background(), payments.Payment{OrderID: "ord-1", Amount: -50, Method: payments.MethodCash})
	if !errors.Is(err, payments.ErrBadAmount) {
		t.Fatalf("expected ErrBadAmount for negative, got %v", err)
	}
}

func TestRecordRejectsUnknownMethod(t *testing.T) {
	svc := newTestService(t, &stubStore{}, stubOrderReader{}, &stubAllocator{}, changefeed.NewFeed())

	_, err := svc.Record(context.Background(), payments.Payment{OrderID: "ord-1", Amount: 100, Method: "wire"})
	if !errors.Is(err, payments.ErrBadMethod) {
		t.Fatalf("expected ErrBadMethod, got %v", err)
	}
}

func TestRecordStoresPendingAndPublishes(t *testing.T) {
	store := &stubStore{}
	feed := changefeed.NewFeed()
	var events []changefeed.Event
	feed.Subscribe(changefeed.Filter{Table: changefeed.TablePayments}, func(_ context.Context, e changefeed.Event) {
		events = append(events, e)
	})
	svc := newTestService(t, store, stubOrderReader{order: orders.Order{ID: "ord-1", CustomerID: "cust-1"}}, &stubAllocator{}, feed)

	p, err := svc.Record(context.Background(), payments.Payment{OrderID: "ord-1", Amount: 2500.005, Method: payments.MethodDepositSlip, Bank: "BDO", Reference: "DS-77"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if p.Status != payments.StatusPending {
		t.Fatalf("expected pending, got %q", p.Status)
	}
	if p.Amount != 2500.01 {
		t.Fatalf("expected rounded amount 2500.01, got %v", p.Amount)
	}
	if p.CustomerID != "cust-1" {
		t.Fatalf("expected customer id filled from order, got %q", p.CustomerID)
	}
	if len(events) != 1 || events[0].Op != changefeed.OpInsert || events[0].OrderID != "ord-1" {
		t.Fatalf("unexpected feed events: %+v", events)
	}
}

func TestMarkReceivedAllocatesAndNotifies(t *testing.T) {
	store := &stubStore{byID: map[string]payments.Payment{
		"pay-1": {ID: "pay-1", OrderID: "ord-1", Amount: 3000, Status: payments.StatusPending},
	}}
	alloc := &stubAllocator{}
	notifier := &stubNotifier{}
	feed := changefeed.NewFeed()
	var tables []string
	feed.Subscribe(changefeed.Filter{}, func(_ context.Context, e changefeed.Event) {
		tables = append(tables, e.Table)
	})
	svc := newTestService(t, store, stubOrderReader{}, alloc, feed, WithNotifier(notifier))

	p, err := svc.MarkReceived(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("MarkReceived: %v", err)
	}
	if p.Status != payments.StatusReceived {
		t.Fatalf("expected received, got %q", p.Status)
	}
	if p.ReceivedAt.IsZero() {
		t.Fatal("expected received_at to be set")
	}
	if len(alloc.calls) != 1 || alloc.calls[0] != 3000 {
		t.Fatalf("expected one allocation of 3000, got %v", alloc.calls)
	}
	if len(notifier.received) != 1 || notifier.received[0].ID != "pay-1" {
		t.Fatalf("expected notifier call for pay-1, got %+v", notifier.received)
	}
	if len(tables) != 2 || tables[0] != changefeed.TablePayments || tables[1] != changefeed.TableInstallments {
		t.Fatalf("expected payments then installments events, got %v", tables)
	}
}

func TestMarkReceivedTwiceFails(t *testing.T) {
	store := &stubStore{byID: map[string]payments.Payment{
		"pay-1": {ID: "pay-1", OrderID: "ord-1", Amount: 3000, Status: payments.StatusPending},
	}}
	svc := newTestService(t, store, stubOrderReader{}, &stubAllocator{}, changefeed.NewFeed())

	if _, err := svc.MarkReceived(context.Background(), "pay-1"); err != nil {
		t.Fatalf("first MarkReceived: %v", err)
	}
	_, err := svc.MarkReceived(context.Background(), "pay-1")
	if !errors.Is(err, payments.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestRejectSkipsAllocation(t *testing.T) {
	store := &stubStore{byID: map[string]payments.Payment{
		"pay-1": {ID: "pay-1", OrderID: "ord-1", Amount: 3000, Status: payments.StatusPending},
	}}
	alloc := &stubAllocator{}
	svc := newTestService(t, store, stubOrderReader{}, alloc, changefeed.NewFeed())

	p, err := svc.Reject(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if p.Status != payments.StatusRejected {
		t.Fatalf("expected rejected, got %q", p.Status)
	}
	if len(alloc.calls) != 0 {
		t.Fatalf("expected no allocation on reject, got %v", alloc.calls)
	}
}
