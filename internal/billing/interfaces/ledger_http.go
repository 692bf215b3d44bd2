package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"hardware-backoffice/internal/audit"
	"hardware-backoffice/internal/auth"
	billingapp "hardware-backoffice/internal/billing/application"
	billing "hardware-backoffice/internal/billing/domain"
	"hardware-backoffice/internal/observability/metrics"
	orders "hardware-backoffice/internal/orders/domain"
)

// BillingHandler serves derived ledger and schedule views under
// /api/v1/billing/{orderID}/...
type BillingHandler struct {
	service     *billingapp.Service
	auditLogger audit.Logger
}

// NewBillingHandler constructs a handler.
func NewBillingHandler(service *billingapp.Service, auditLogger audit.Logger) (*BillingHandler, error) {
	if service == nil {
		return nil, errors.New("billing handler: nil service")
	}
	return &BillingHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches billing routes.
func (h *BillingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/billing/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	orderID := parts[0]
	switch {
	case len(parts) == 2 && parts[1] == "ledger":
		h.handleLedger(w, r, orderID)
	case len(parts) == 2 && parts[1] == "schedule":
		h.handleSchedule(w, r, orderID)
	case len(parts) == 3 && parts[1] == "ledger" && parts[2] == "export.pdf":
		h.handleLedgerPDF(w, r, orderID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BillingHandler) handleLedger(w http.ResponseWriter, r *http.Request, orderID string) {
	ledger, order, err := h.service.Ledger(r.Context(), orderID)
	if err != nil {
		respondBillingError(w, err)
		return
	}
	resp := struct {
		Order  orderSummary   `json:"order"`
		Ledger billing.Ledger `json:"ledger"`
	}{Order: summarize(order), Ledger: ledger}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *BillingHandler) handleSchedule(w http.ResponseWriter, r *http.Request, orderID string) {
	schedule, err := h.service.Schedule(r.Context(), orderID)
	if err != nil {
		respondBillingError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(schedule)
}

func (h *BillingHandler) handleLedgerPDF(w http.ResponseWriter, r *http.Request, orderID string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	ledger, order, err := h.service.Ledger(r.Context(), orderID)
	if err != nil {
		result = metrics.ResultError
		respondBillingError(w, err)
		return
	}
	data, err := BuildLedgerPDF(order, ledger)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, order.ID, "ledger.export", map[string]any{"format": "pdf"})
}

type orderSummary struct {
	ID          string  `json:"id"`
	InvoiceCode string  `json:"invoice_code"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	ChargeTotal float64 `json:"charge_total"`
}

func summarize(order orders.Order) orderSummary {
	return orderSummary{
		ID:          order.ID,
		InvoiceCode: order.InvoiceCode,
		Customer:    order.CustomerName,
		Status:      order.Status,
		ChargeTotal: order.ChargeTotal(),
	}
}

func (h *BillingHandler) logAudit(r *http.Request, orderID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "order",
		ResourceID:   orderID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondBillingError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, orders.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
