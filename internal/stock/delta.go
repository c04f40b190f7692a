// Package stock holds the pure stock-reconciliation core: per-product
// delta computation between two item sets of an invoice, and the
// availability advisor used while composing one. Nothing here touches
// storage.
package stock

import (
	"sort"

	"backend/internal/domain"
)

// Delta is a signed change to apply to one product's on-hand quantity.
// Change = originalQty - newQty: positive restores stock (the invoice now
// holds less of the product), negative consumes more. The same convention
// is applied to both sales and purchase invoices when editing; the sign
// does not flip by invoice type the way it does on create.
type Delta struct {
	ProductID int64
	Change    int
}

// QuantityByProduct sums item quantities per linked product. Items without
// a product link have no stock effect and are ignored.
func QuantityByProduct(items []domain.InvoiceItem) map[int64]int {
	totals := make(map[int64]int, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		totals[*item.ProductID] += item.Quantity
	}
	return totals
}

// Deltas diffs an invoice's original (last persisted) item set against the
// edited one and returns the stock adjustment per product, in ascending
// product-id order. Products whose quantity is unchanged are omitted.
func Deltas(original, updated []domain.InvoiceItem) []Delta {
	oldQty := QuantityByProduct(original)
	newQty := QuantityByProduct(updated)

	ids := make(map[int64]struct{}, len(oldQty)+len(newQty))
	for id := range oldQty {
		ids[id] = struct{}{}
	}
	for id := range newQty {
		ids[id] = struct{}{}
	}

	deltas := make([]Delta, 0, len(ids))
	for id := range ids {
		change := oldQty[id] - newQty[id]
		if change == 0 {
			continue
		}
		deltas = append(deltas, Delta{ProductID: id, Change: change})
	}
	sortDeltas(deltas)
	return deltas
}

// CreationDeltas returns the stock effect of committing a new invoice:
// purchases add stock, sales consume it.
func CreationDeltas(invoiceType domain.InvoiceType, items []domain.InvoiceItem) []Delta {
	sign := -1
	if invoiceType == domain.InvoiceTypePurchase {
		sign = 1
	}
	totals := QuantityByProduct(items)
	deltas := make([]Delta, 0, len(totals))
	for id, qty := range totals {
		if qty == 0 {
			continue
		}
		deltas = append(deltas, Delta{ProductID: id, Change: sign * qty})
	}
	sortDeltas(deltas)
	return deltas
}

// DeletionDeltas returns the inverse of CreationDeltas: deleting an invoice
// must fully undo its stock effect. Note the purchase case decreases stock
// and can therefore fail if later sales already drew the units down.
func DeletionDeltas(invoiceType domain.InvoiceType, items []domain.InvoiceItem) []Delta {
	deltas := CreationDeltas(invoiceType, items)
	for i := range deltas {
		deltas[i].Change = -deltas[i].Change
	}
	return deltas
}

func sortDeltas(deltas []Delta) {
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].ProductID < deltas[j].ProductID
	})
}
