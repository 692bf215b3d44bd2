package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hardware-backoffice/internal/audit"
	"hardware-backoffice/internal/auth"
	"hardware-backoffice/internal/observability/metrics"
	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
	"hardware-backoffice/internal/reports"
)

// CompletedOrderLister feeds the export with pre-filtered rows.
type CompletedOrderLister interface {
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]orders.Order, error)
}

// Handler serves GET /api/v1/reports/transactions.xlsx.
type Handler struct {
	lister      CompletedOrderLister
	clock       phtime.Clock
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(lister CompletedOrderLister, clock phtime.Clock, auditLogger audit.Logger) (*Handler, error) {
	if lister == nil {
		return nil, errors.New("reports handler: nil lister")
	}
	if clock == nil {
		clock = phtime.SystemClock{}
	}
	return &Handler{lister: lister, clock: clock, auditLogger: auditLogger}, nil
}

// ServeHTTP resolves the requested range, fetches matching completed
// orders and streams the workbook.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	q := r.URL.Query()
	now := h.clock.Now()
	rng, err := reports.ResolveRange(q.Get("range"), q.Get("start"), q.Get("end"), now)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.lister.ListCompletedBetween(r.Context(), rng.Start, rng.End)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := reports.BuildTransactionXLSX(list)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export build error", http.StatusInternalServerError)
		return
	}

	filename := reports.Filename(rng, now)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	h.logAudit(r, rng.Label())
}

func (h *Handler) logAudit(r *http.Request, label string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "report",
		ResourceID:   label,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
