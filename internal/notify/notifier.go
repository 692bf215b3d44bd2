// Package notify sends back-office notifications for payment and order
// events over a webhook channel.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hardware-backoffice/internal/money"
	"hardware-backoffice/internal/observability/metrics"
	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
	"hardware-backoffice/internal/phtime"
)

// OrderReader loads order details for the notification body.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (orders.Order, error)
}

// Notifier renders and sends event notifications. Send failures are
// logged and swallowed; notifications never fail the triggering write.
type Notifier struct {
	orders   OrderReader
	channel  Channel
	template *Template
	cooldown time.Duration
	clock    phtime.Clock
	logger   *log.Logger

	mu   sync.Mutex
	sent map[string]time.Time
}

// Option configures the notifier.
type Option func(*Notifier)

// WithCooldown sets a minimum interval between notifications for the
// same order and event.
func WithCooldown(interval time.Duration) Option {
	return func(n *Notifier) {
		if interval > 0 {
			n.cooldown = interval
		}
	}
}

// WithClock overrides the default clock.
func WithClock(clock phtime.Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewNotifier constructs a notifier.
func NewNotifier(orderReader OrderReader, channel Channel, template *Template, logger *log.Logger, opts ...Option) (*Notifier, error) {
	if orderReader == nil {
		return nil, errors.New("notifier: nil order reader")
	}
	if channel == nil {
		return nil, errors.New("notifier: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	if logger == nil {
		logger = log.Default()
	}
	n := &Notifier{
		orders:   orderReader,
		channel:  channel,
		template: template,
		clock:    phtime.SystemClock{},
		logger:   logger,
		sent:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// PaymentReceived announces a settled payment.
func (n *Notifier) PaymentReceived(ctx context.Context, p payments.Payment) {
	if n == nil {
		return
	}
	order, err := n.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		n.logger.Printf("notify: load order %s: %v", p.OrderID, err)
		return
	}
	when := p.ReceivedAt
	if when.IsZero() {
		when = n.clock.Now()
	}
	n.dispatch(ctx, p.OrderID, "payment.received", TemplateData{
		Event:       "payment.received",
		EventLabel:  "Payment Received",
		InvoiceCode: order.InvoiceCode,
		Customer:    order.CustomerName,
		Amount:      money.FormatPHP(p.Amount),
		Status:      p.Status,
		When:        phtime.FormatDateTime(when),
	})
}

// OrderStatusChanged announces an order transition.
func (n *Notifier) OrderStatusChanged(ctx context.Context, orderID, status string) {
	if n == nil {
		return
	}
	order, err := n.orders.GetByID(ctx, orderID)
	if err != nil {
		n.logger.Printf("notify: load order %s: %v", orderID, err)
		return
	}
	n.dispatch(ctx, orderID, "order."+status, TemplateData{
		Event:       "order." + status,
		EventLabel:  "Order " + status,
		InvoiceCode: order.InvoiceCode,
		Customer:    order.CustomerName,
		Status:      status,
		When:        phtime.FormatDateTime(n.clock.Now()),
	})
}

func (n *Notifier) dispatch(ctx context.Context, orderID, event string, data TemplateData) {
	if !n.shouldSend(orderID, event) {
		return
	}
	content, err := n.template.Render(data)
	if err != nil {
		n.logger.Printf("notify: render %s: %v", event, err)
		return
	}
	if err := n.channel.Send(ctx, content); err != nil {
		metrics.IncNotify(metrics.ResultError)
		n.logger.Printf("notify: send %s: %v", event, err)
		return
	}
	metrics.IncNotify(metrics.ResultSuccess)
	n.markSent(orderID, event)
}

func (n *Notifier) shouldSend(orderID, event string) bool {
	if n.cooldown <= 0 {
		return true
	}
	key := orderID + "|" + event
	now := n.clock.Now().UTC()
	n.mu.Lock()
	last, ok := n.sent[key]
	n.mu.Unlock()
	return !ok || now.Sub(last) >= n.cooldown
}

func (n *Notifier) markSent(orderID, event string) {
	if n.cooldown <= 0 {
		return
	}
	n.mu.Lock()
	n.sent[orderID+"|"+event] = n.clock.Now().UTC()
	n.mu.Unlock()
}
