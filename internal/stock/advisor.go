package stock

import "backend/internal/domain"

// Availability answers "how many more units of this product can the
// in-progress invoice still add". It is recomputed from current inputs on
// every line change; nothing is cached or clamped.
type Availability struct {
	// Available is the product's committed on-hand quantity.
	Available int
	// Pending is what the invoice being composed already stages for the
	// product, not yet persisted.
	Pending int
	// OriginalCommitted is, when editing an existing invoice, the quantity
	// that invoice's last persisted item set already holds for the product.
	// Available already reflects it being spent, so it is added back in.
	// Zero when composing a new invoice.
	OriginalCommitted int
}

// Effective is the quantity still addable: available + originalCommitted -
// pending. The result can be negative, meaning the staged items already
// overdraw the product.
func (a Availability) Effective() int {
	return a.Available + a.OriginalCommitted - a.Pending
}

// CheckAddition validates adding requested more units of a product to an
// invoice composition. Purchase invoices are never bounded by stock. A
// sales addition that exceeds the effective available fails with the exact
// shortfall; it is never silently clamped.
func CheckAddition(invoiceType domain.InvoiceType, productID int64, a Availability, requested int) error {
	if invoiceType == domain.InvoiceTypePurchase {
		return nil
	}
	effective := a.Effective()
	if requested > effective {
		available := effective
		if available < 0 {
			available = 0
		}
		return &domain.InsufficientStockError{
			ProductID: productID,
			Available: available,
			Requested: requested,
		}
	}
	return nil
}

// ValidateItems checks a whole candidate item set for a sales invoice
// against current stock, adding back what the invoice being edited already
// holds. original is nil when validating a new invoice. Returns the first
// violation found, in item order.
func ValidateItems(invoiceType domain.InvoiceType, items, original []domain.InvoiceItem, available map[int64]int) error {
	if invoiceType == domain.InvoiceTypePurchase {
		return nil
	}
	held := QuantityByProduct(original)
	staged := QuantityByProduct(items)
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		id := *item.ProductID
		need := staged[id]
		have := available[id] + held[id]
		if need > have {
			if have < 0 {
				have = 0
			}
			return &domain.InsufficientStockError{
				ProductID:   id,
				ProductName: item.ProductName,
				Available:   have,
				Requested:   need,
			}
		}
	}
	return nil
}
