package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
)

type stubOrderReader struct {
	order orders.Order
	err   error
}

func (s stubOrderReader) GetByID(context.Context, string) (orders.Order, error) {
	return s.order, s.err
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestPaymentReceivedPostsWebhook(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reader := stubOrderReader{order: orders.Order{ID: "ord-1", InvoiceCode: "INV-1001", CustomerName: "Acme Hardware"}}
	notifier, err := NewNotifier(reader, NewWebhookChannel(server.URL, time.Second), nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}

	notifier.PaymentReceived(context.Background(), payments.Payment{
		ID:         "pay-1",
		OrderID:    "ord-1",
		Amount:     5000,
		Status:     payments.StatusReceived,
		ReceivedAt: time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC),
	})

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected one webhook post, got %d", len(bodies))
	}
	var payload struct {
		MsgType string `json:"msgtype"`
		Text    struct {
			Content string `json:"content"`
		} `json:"text"`
	}
	if err := json.Unmarshal([]byte(bodies[0]), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.MsgType != "text" {
		t.Fatalf("expected text msgtype, got %q", payload.MsgType)
	}
	content := payload.Text.Content
	for _, want := range []string{"Payment Received", "INV-1001", "Acme Hardware", "5,000.00"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}

func TestCooldownSuppressesRepeat(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reader := stubOrderReader{order: orders.Order{ID: "ord-1", InvoiceCode: "INV-1001"}}
	clock := fixedClock{now: time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC)}
	notifier, err := NewNotifier(reader, NewWebhookChannel(server.URL, time.Second), nil, log.New(io.Discard, "", 0),
		WithCooldown(time.Minute), WithClock(clock))
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}

	p := payments.Payment{ID: "pay-1", OrderID: "ord-1", Amount: 100, Status: payments.StatusReceived}
	notifier.PaymentReceived(context.Background(), p)
	notifier.PaymentReceived(context.Background(), p)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("expected one post within cooldown, got %d", count)
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reader := stubOrderReader{order: orders.Order{ID: "ord-1"}}
	notifier, err := NewNotifier(reader, NewWebhookChannel(server.URL, time.Second), nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}

	notifier.OrderStatusChanged(context.Background(), "ord-1", "completed")
}
