// Package catalog holds the thin inventory model. Products are plain
// rows; the interesting math lives in billing.
package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a product does not exist.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInsufficientStock is returned when an adjustment would drive
	// stock below zero.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Product is one sellable inventory item.
type Product struct {
	ID        string
	SKU       string
	Name      string
	UnitPrice float64
	StockQty  int
	UpdatedAt time.Time
}
