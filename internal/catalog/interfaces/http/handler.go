package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	catalog "hardware-backoffice/internal/catalog/domain"
	"hardware-backoffice/internal/phtime"
)

// ProductStore is the persistence surface the handler needs.
type ProductStore interface {
	List(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id string) (catalog.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) error
}

// Handler provides product HTTP endpoints.
type Handler struct {
	store ProductStore
}

// NewHandler constructs a handler.
func NewHandler(store ProductStore) (*Handler, error) {
	if store == nil {
		return nil, errors.New("catalog handler: nil store")
	}
	return &Handler{store: store}, nil
}

// ServeHTTP dispatches product routes:
//
//	GET  /api/v1/products
//	GET  /api/v1/products/{id}
//	POST /api/v1/products/{id}/stock
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/products")
	rest = strings.Trim(rest, "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(rest, "/stock") && r.Method == http.MethodPost:
		h.handleStock(w, r, strings.TrimSuffix(rest, "/stock"))
	case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodGet:
		h.handleGet(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, toProductView(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Products []productView `json:"products"`
	}{Products: views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toProductView(p))
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req stockRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, "delta must be non-zero", http.StatusBadRequest)
		return
	}

	if err := h.store.AdjustStock(r.Context(), id, req.Delta); err != nil {
		respondCatalogError(w, err)
		return
	}
	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toProductView(p))
}

type productView struct {
	ID        string  `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	StockQty  int     `json:"stock_qty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

func toProductView(p catalog.Product) productView {
	v := productView{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		StockQty:  p.StockQty,
	}
	if !p.UpdatedAt.IsZero() {
		v.UpdatedAt = phtime.FormatDateTime(p.UpdatedAt)
	}
	return v
}

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrInsufficientStock):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
