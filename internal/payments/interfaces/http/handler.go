package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"hardware-backoffice/internal/audit"
	"hardware-backoffice/internal/auth"
	orders "hardware-backoffice/internal/orders/domain"
	paymentsapp "hardware-backoffice/internal/payments/application"
	payments "hardware-backoffice/internal/payments/domain"
	"hardware-backoffice/internal/phtime"
)

// Handler provides payment HTTP endpoints.
type Handler struct {
	service     *paymentsapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *paymentsapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("payments handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches payment routes:
//
//	POST /api/v1/payments
//	GET  /api/v1/payments?order_id=...
//	POST /api/v1/payments/{id}/receive
//	POST /api/v1/payments/{id}/reject
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/payments")
	rest = strings.Trim(rest, "/")
	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.handleRecord(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(rest, "/receive") && r.Method == http.MethodPost:
		h.handleReceive(w, r, strings.TrimSuffix(rest, "/receive"))
	case strings.HasSuffix(rest, "/reject") && r.Method == http.MethodPost:
		h.handleReject(w, r, strings.TrimSuffix(rest, "/reject"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type recordRequest struct {
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Bank      string  `json:"bank"`
	Reference string  `json:"reference"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req recordRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	p, err := h.service.Record(r.Context(), payments.Payment{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Method:    req.Method,
		Bank:      req.Bank,
		Reference: req.Reference,
	})
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toPaymentView(p))
	h.logAudit(r, p.ID, "payment.record")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}
	list, err := h.service.ListByOrder(r.Context(), orderID)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	views := make([]paymentView, 0, len(list))
	for _, p := range list {
		views = append(views, toPaymentView(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Payments []paymentView `json:"payments"`
	}{Payments: views})
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.MarkReceived(r.Context(), id)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPaymentView(p))
	h.logAudit(r, p.ID, "payment.receive")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.Reject(r.Context(), id)
	if err != nil {
		respondPaymentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPaymentView(p))
	h.logAudit(r, p.ID, "payment.reject")
}

type paymentView struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	Bank       string  `json:"bank,omitempty"`
	Reference  string  `json:"reference,omitempty"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	ReceivedAt string  `json:"received_at,omitempty"`
}

func toPaymentView(p payments.Payment) paymentView {
	v := paymentView{
		ID:         p.ID,
		OrderID:    p.OrderID,
		CustomerID: p.CustomerID,
		Amount:     p.Amount,
		Method:     p.Method,
		Bank:       p.Bank,
		Reference:  p.Reference,
		Status:     p.Status,
		CreatedAt:  phtime.FormatDateTime(p.CreatedAt),
	}
	if !p.ReceivedAt.IsZero() {
		v.ReceivedAt = phtime.FormatDateTime(p.ReceivedAt)
	}
	return v
}

func (h *Handler) logAudit(r *http.Request, paymentID, action string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "payment",
		ResourceID:   paymentID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondPaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payments.ErrNotFound), errors.Is(err, orders.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, payments.ErrAlreadySettled):
		http.Error(w, "payment already settled", http.StatusConflict)
	case errors.Is(err, payments.ErrBadAmount), errors.Is(err, payments.ErrBadMethod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
