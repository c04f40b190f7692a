package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// InsufficientStockError is the only domain error the stock ledger raises:
// an adjustment would have taken a product's quantity below zero. It carries
// enough structure for the UI to render the exact shortfall and offer a
// top-up purchase for that many units.
type InsufficientStockError struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf(
			"insufficient stock for %s: available %d, requested %d",
			e.ProductName, e.Available, e.Requested,
		)
	}
	return fmt.Sprintf(
		"insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested,
	)
}

// Shortfall is the number of units missing to satisfy the request.
func (e *InsufficientStockError) Shortfall() int {
	short := e.Requested - e.Available
	if short < 0 {
		return 0
	}
	return short
}

// AsInsufficientStock unwraps err into an InsufficientStockError if one is
// anywhere in its chain.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
