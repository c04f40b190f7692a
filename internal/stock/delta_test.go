package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backend/internal/domain"
)

func item(productID int64, qty int) domain.InvoiceItem {
	id := productID
	return domain.InvoiceItem{ProductID: &id, Quantity: qty}
}

func unlinkedItem(qty int) domain.InvoiceItem {
	return domain.InvoiceItem{ProductName: "imported row", Quantity: qty}
}

func TestDeltasGrowingSalesLineConsumesStock(t *testing.T) {
	original := []domain.InvoiceItem{item(1, 3)}
	updated := []domain.InvoiceItem{item(1, 5)}

	assert.Equal(t, []Delta{{ProductID: 1, Change: -2}}, Deltas(original, updated))
}

func TestDeltasShrinkingLineRestoresStock(t *testing.T) {
	original := []domain.InvoiceItem{item(1, 5)}
	updated := []domain.InvoiceItem{item(1, 1)}

	assert.Equal(t, []Delta{{ProductID: 1, Change: 4}}, Deltas(original, updated))
}

func TestDeltasUnchangedItemsProduceNoAdjustments(t *testing.T) {
	items := []domain.InvoiceItem{item(1, 3), item(2, 7)}

	assert.Empty(t, Deltas(items, items))
}

func TestDeltasRemovedAndAddedProducts(t *testing.T) {
	original := []domain.InvoiceItem{item(1, 4), item(2, 2)}
	updated := []domain.InvoiceItem{item(2, 2), item(3, 6)}

	assert.Equal(t, []Delta{
		{ProductID: 1, Change: 4},
		{ProductID: 3, Change: -6},
	}, Deltas(original, updated))
}

func TestDeltasAggregateRepeatedLinesPerProduct(t *testing.T) {
	original := []domain.InvoiceItem{item(1, 2), item(1, 3)}
	updated := []domain.InvoiceItem{item(1, 4)}

	assert.Equal(t, []Delta{{ProductID: 1, Change: 1}}, Deltas(original, updated))
}

func TestDeltasIgnoreItemsWithoutProductLink(t *testing.T) {
	original := []domain.InvoiceItem{unlinkedItem(10)}
	updated := []domain.InvoiceItem{unlinkedItem(2), item(1, 1)}

	assert.Equal(t, []Delta{{ProductID: 1, Change: -1}}, Deltas(original, updated))
}

func TestCreationDeltasSignByInvoiceType(t *testing.T) {
	items := []domain.InvoiceItem{item(1, 4), item(2, 2)}

	assert.Equal(t, []Delta{
		{ProductID: 1, Change: -4},
		{ProductID: 2, Change: -2},
	}, CreationDeltas(domain.InvoiceTypeSales, items))

	assert.Equal(t, []Delta{
		{ProductID: 1, Change: 4},
		{ProductID: 2, Change: 2},
	}, CreationDeltas(domain.InvoiceTypePurchase, items))
}

func TestDeletionDeltasInvertCreation(t *testing.T) {
	items := []domain.InvoiceItem{item(1, 4)}

	assert.Equal(t, []Delta{{ProductID: 1, Change: 4}}, DeletionDeltas(domain.InvoiceTypeSales, items))
	assert.Equal(t, []Delta{{ProductID: 1, Change: -4}}, DeletionDeltas(domain.InvoiceTypePurchase, items))
}
