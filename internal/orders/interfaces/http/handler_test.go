package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hardware-backoffice/internal/changefeed"
	orders "hardware-backoffice/internal/orders/domain"
)

type stubOrderStore struct {
	byID    map[string]orders.Order
	listed  []orders.Order
	updates []string
}

func (s *stubOrderStore) GetByID(_ context.Context, id string) (orders.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderStore) ListCompletedBetween(context.Context, time.Time, time.Time) ([]orders.Order, error) {
	return s.listed, nil
}

func (s *stubOrderStore) UpdateStatus(_ context.Context, id, to string) error {
	o, ok := s.byID[id]
	if !ok {
		return orders.ErrNotFound
	}
	if !orders.ValidTransition(o.Status, to) {
		return orders.ErrBadTransition
	}
	o.Status = to
	s.byID[id] = o
	s.updates = append(s.updates, id+":"+to)
	return nil
}

func TestStatusTransitionPublishesChangeEvent(t *testing.T) {
	store := &stubOrderStore{byID: map[string]orders.Order{
		"ord-1": {ID: "ord-1", Status: orders.StatusPending},
	}}
	feed := changefeed.NewFeed()
	var events []changefeed.Event
	feed.Subscribe(changefeed.Filter{Table: changefeed.TableOrders}, func(_ context.Context, e changefeed.Event) {
		events = append(events, e)
	})
	handler, err := NewHandler(store, feed, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ord-1/status", strings.NewReader(`{"status":"completed"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(store.updates) != 1 || store.updates[0] != "ord-1:completed" {
		t.Fatalf("unexpected updates %v", store.updates)
	}
	if len(events) != 1 || events[0].OrderID != "ord-1" || events[0].Op != changefeed.OpUpdate {
		t.Fatalf("unexpected feed events %+v", events)
	}
}

func TestStatusBadTransitionReturns422(t *testing.T) {
	store := &stubOrderStore{byID: map[string]orders.Order{
		"ord-1": {ID: "ord-1", Status: orders.StatusCompleted},
	}}
	handler, err := NewHandler(store, changefeed.NewFeed(), nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ord-1/status", strings.NewReader(`{"status":"pending"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestGetOrderIncludesChargeTotal(t *testing.T) {
	store := &stubOrderStore{byID: map[string]orders.Order{
		"ord-1": {ID: "ord-1", Status: orders.StatusCompleted, Total: 10000, SalesTax: 1200, ShippingFee: 0},
	}}
	handler, err := NewHandler(store, changefeed.NewFeed(), nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var view struct {
		ChargeTotal float64 `json:"charge_total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.ChargeTotal != 11200 {
		t.Fatalf("charge total = %v, want 11200", view.ChargeTotal)
	}
}

func TestListRejectsMalformedDates(t *testing.T) {
	handler, err := NewHandler(&stubOrderStore{}, changefeed.NewFeed(), nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?from=15-03-2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
