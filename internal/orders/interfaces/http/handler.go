package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"hardware-backoffice/internal/audit"
	"hardware-backoffice/internal/auth"
	"hardware-backoffice/internal/changefeed"
	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
)

// OrderStore is the persistence surface the handler needs.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (orders.Order, error)
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id, to string) error
}

// StatusNotifier is told about order transitions.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, orderID, status string)
}

// Handler provides order HTTP endpoints.
type Handler struct {
	store       OrderStore
	feed        changefeed.Publisher
	auditLogger audit.Logger
	notifier    StatusNotifier
}

// Option configures optional collaborators.
type Option func(*Handler)

// WithStatusNotifier attaches a notifier for order transitions.
func WithStatusNotifier(n StatusNotifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// NewHandler constructs a handler.
func NewHandler(store OrderStore, feed changefeed.Publisher, auditLogger audit.Logger, opts ...Option) (*Handler, error) {
	if store == nil {
		return nil, errors.New("orders handler: nil store")
	}
	if feed == nil {
		return nil, errors.New("orders handler: nil feed")
	}
	h := &Handler{store: store, feed: feed, auditLogger: auditLogger}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP dispatches order routes:
//
//	GET  /api/v1/orders?from=YYYY-MM-DD&to=YYYY-MM-DD
//	GET  /api/v1/orders/{id}
//	POST /api/v1/orders/{id}/status
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/orders")
	rest = strings.Trim(rest, "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPost:
		h.handleStatus(w, r, strings.TrimSuffix(rest, "/status"))
	case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodGet:
		h.handleGet(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := phtime.StartOfDateString(from)
		if err != nil {
			http.Error(w, "invalid from date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := phtime.EndOfDateString(to)
		if err != nil {
			http.Error(w, "invalid to date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = t
	}

	list, err := h.store.ListCompletedBetween(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]orderView, 0, len(list))
	for _, o := range list {
		views = append(views, toOrderView(o))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Orders []orderView `json:"orders"`
	}{Orders: views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderView(order))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req statusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	to := strings.ToLower(strings.TrimSpace(req.Status))
	if to == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateStatus(r.Context(), id, to); err != nil {
		respondOrderError(w, err)
		return
	}
	h.feed.Publish(r.Context(), changefeed.Event{
		Table:   changefeed.TableOrders,
		Op:      changefeed.OpUpdate,
		OrderID: id,
	})
	if h.notifier != nil {
		h.notifier.OrderStatusChanged(r.Context(), id, to)
	}
	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderView(order))
	h.logAudit(r, id, "order.status."+to)
}

type orderView struct {
	ID                     string  `json:"id"`
	CustomerID             string  `json:"customer_id"`
	CustomerName           string  `json:"customer_name"`
	InvoiceCode            string  `json:"invoice_code"`
	Status                 string  `json:"status"`
	CreatedAt              string  `json:"created_at"`
	Total                  float64 `json:"total"`
	GrandTotalWithInterest float64 `json:"grand_total_with_interest,omitempty"`
	ShippingFee            float64 `json:"shipping_fee"`
	SalesTax               float64 `json:"sales_tax"`
	PaymentTerms           int     `json:"payment_terms,omitempty"`
	TermAmount             float64 `json:"term_amount,omitempty"`
	ChargeTotal            float64 `json:"charge_total"`
}

func toOrderView(o orders.Order) orderView {
	return orderView{
		ID:                     o.ID,
		CustomerID:             o.CustomerID,
		CustomerName:           o.CustomerName,
		InvoiceCode:            o.InvoiceCode,
		Status:                 o.Status,
		CreatedAt:              phtime.FormatDateTime(o.CreatedAt),
		Total:                  o.Total,
		GrandTotalWithInterest: o.GrandTotalWithInterest,
		ShippingFee:            o.ShippingFee,
		SalesTax:               o.SalesTax,
		PaymentTerms:           o.PaymentTerms,
		TermAmount:             o.TermAmount,
		ChargeTotal:            o.ChargeTotal(),
	}
}

func (h *Handler) logAudit(r *http.Request, orderID, action string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "order",
		ResourceID:   orderID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, orders.ErrBadTransition):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, orders.ErrCompletedImmutable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
