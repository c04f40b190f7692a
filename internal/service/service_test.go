package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/domain"
)

func lineItem(productID int64, qty int, unitPrice float64) domain.InvoiceItem {
	id := productID
	return domain.InvoiceItem{
		ProductID:   &id,
		ProductName: "item",
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice * float64(qty),
	}
}

var invoiceSeq int

func draftInvoice(invoiceType domain.InvoiceType, items ...domain.InvoiceItem) domain.Invoice {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	invoiceSeq++
	return domain.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%04d", invoiceSeq),
		InvoiceType:   invoiceType,
		Template:      "nfb-trading",
		Items:         items,
		Subtotal:      subtotal,
		Total:         subtotal,
		Status:        domain.StatusDraft,
		DueDate:       time.Now().Add(14 * 24 * time.Hour),
	}
}

func totalsFor(items []domain.InvoiceItem) InvoiceTotals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	return InvoiceTotals{Subtotal: subtotal, Total: subtotal}
}

func TestCreateSalesInvoiceDeductsStock(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)

	created, err := svc.CreateInvoice(context.Background(), draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 4, 100)))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	qty, err := store.ProductQuantity(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 6, qty)
}

func TestCreateSalesInvoiceFailsOnInsufficientStock(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 4, 100)))
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 7, 100)))
	require.Error(t, err)

	stockErr, ok := domain.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, 6, stockErr.Available)
	assert.Equal(t, 7, stockErr.Requested)

	// Nothing committed: stock unchanged, only the first invoice exists.
	qty, err := store.ProductQuantity(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 6, qty)
	assert.Len(t, store.invoices, 1)
}

func TestDeleteSalesInvoiceRestoresStock(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 4, 100)))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvoice(ctx, created.ID))

	qty, err := store.ProductQuantity(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
	assert.Empty(t, store.invoices)
}

func TestCreatePurchaseInvoiceAddsStockUnconditionally(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 5)
	svc := New(store)

	_, err := svc.CreateInvoice(context.Background(), draftInvoice(domain.InvoiceTypePurchase, lineItem(productID, 20, 80)))
	require.NoError(t, err)

	qty, err := store.ProductQuantity(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 25, qty)
}

func TestUpdateInvoiceAppliesOriginalMinusNewDeltas(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 3, 100)))
	require.NoError(t, err)
	qty, _ := store.ProductQuantity(ctx, productID)
	require.Equal(t, 7, qty)

	// Growing the line consumes more: delta = 3 - 5 = -2.
	items := []domain.InvoiceItem{lineItem(productID, 5, 100)}
	_, err = svc.UpdateInvoice(ctx, created.ID, items, totalsFor(items))
	require.NoError(t, err)
	qty, _ = store.ProductQuantity(ctx, productID)
	assert.Equal(t, 5, qty)

	// Shrinking restores: delta = 5 - 1 = 4.
	items = []domain.InvoiceItem{lineItem(productID, 1, 100)}
	_, err = svc.UpdateInvoice(ctx, created.ID, items, totalsFor(items))
	require.NoError(t, err)
	qty, _ = store.ProductQuantity(ctx, productID)
	assert.Equal(t, 9, qty)
}

func TestUpdatePurchaseInvoiceUsesSameSignConvention(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 0)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypePurchase, lineItem(productID, 10, 80)))
	require.NoError(t, err)
	qty, _ := store.ProductQuantity(ctx, productID)
	require.Equal(t, 10, qty)

	// The edit delta does not flip sign for purchases: original 10, new 4,
	// adjustment = +6.
	items := []domain.InvoiceItem{lineItem(productID, 4, 80)}
	_, err = svc.UpdateInvoice(ctx, created.ID, items, totalsFor(items))
	require.NoError(t, err)
	qty, _ = store.ProductQuantity(ctx, productID)
	assert.Equal(t, 16, qty)
}

func TestUpdateInvoiceWithUnchangedItemsMakesNoAdjustments(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 3, 100)))
	require.NoError(t, err)

	store.adjustCalls = nil
	items := []domain.InvoiceItem{lineItem(productID, 3, 100)}
	_, err = svc.UpdateInvoice(ctx, created.ID, items, totalsFor(items))
	require.NoError(t, err)

	assert.Empty(t, store.adjustCalls)
	qty, _ := store.ProductQuantity(ctx, productID)
	assert.Equal(t, 7, qty)
}

func TestDeletePurchaseInvoiceFailsWhenUnitsAlreadySold(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 0)
	svc := New(store)
	ctx := context.Background()

	purchase, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypePurchase, lineItem(productID, 20, 80)))
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 15, 100)))
	require.NoError(t, err)
	qty, _ := store.ProductQuantity(ctx, productID)
	require.Equal(t, 5, qty)

	// Undoing the purchase would need 20 units back but only 5 remain.
	err = svc.DeleteInvoice(ctx, purchase.ID)
	require.Error(t, err)
	_, ok := domain.AsInsufficientStock(err)
	assert.True(t, ok)

	// The rollback keeps the invoice and the balance.
	_, err = store.GetInvoice(ctx, purchase.ID)
	assert.NoError(t, err)
	qty, _ = store.ProductQuantity(ctx, productID)
	assert.Equal(t, 5, qty)
}

func TestCreateInvoiceSkipsItemsWithoutProductLink(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)

	unlinked := domain.InvoiceItem{ProductName: "Imported accessory", Quantity: 3, UnitPrice: 10, LineTotal: 30}
	_, err := svc.CreateInvoice(context.Background(), draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 2, 100), unlinked))
	require.NoError(t, err)

	qty, _ := store.ProductQuantity(context.Background(), productID)
	assert.Equal(t, 8, qty)
}

func TestCreateInvoiceRejectsInconsistentTotals(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)

	invoice := draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 2, 100))
	invoice.Total = invoice.Subtotal + 1

	_, err := svc.CreateInvoice(context.Background(), invoice)
	assert.Error(t, err)
}

func TestAvailabilityWhileEditingCountsHeldQuantity(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 3, 100)))
	require.NoError(t, err)

	result, err := svc.Availability(ctx, AvailabilityRequest{
		ProductID:        productID,
		InvoiceType:      domain.InvoiceTypeSales,
		Pending:          5,
		EditingInvoiceID: &created.ID,
	})
	require.NoError(t, err)
	// 7 on hand + 3 held by this invoice - 5 staged.
	assert.Equal(t, 5, result.EffectiveAvailable)
	assert.True(t, result.Allowed)
}

func TestAvailabilityReportsExactShortfall(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 6)
	svc := New(store)

	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		ProductID:   productID,
		InvoiceType: domain.InvoiceTypeSales,
		Pending:     4,
		Requested:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.EffectiveAvailable)
	assert.False(t, result.Allowed)
	assert.Equal(t, 1, result.Shortfall)
}

func TestAvailabilityUnknownProductReadsAsZero(t *testing.T) {
	store := newMemStore()
	svc := New(store)

	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		ProductID:   99,
		InvoiceType: domain.InvoiceTypeSales,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.EffectiveAvailable)
}

func TestAvailabilityPurchaseAlwaysAllowed(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 0)
	svc := New(store)

	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		ProductID:   productID,
		InvoiceType: domain.InvoiceTypePurchase,
		Requested:   100000,
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Zero(t, result.Shortfall)
}

func TestCreateProductFoldsDuplicatesThroughLedger(t *testing.T) {
	store := newMemStore()
	svc := New(store)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, ProductInput{Name: "iPhone 15", Specs: "128GB", Color: "Black", Quantity: 5})
	require.NoError(t, err)

	second, err := svc.CreateProduct(ctx, ProductInput{Name: "iphone 15", Specs: "128gb", Color: "black", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8, second.Quantity)
	assert.Len(t, store.products, 1)
}

func TestPatchProductQuantityRoutesThroughAdjust(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)

	target := 4
	updated, err := svc.PatchProduct(context.Background(), productID, ProductPatch{Quantity: &target})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	require.Len(t, store.adjustCalls, 1)
	assert.Equal(t, adjustCall{productID: productID, delta: -6}, store.adjustCalls[0])
}

func TestUpdateInvoiceStatusStampsPaidAt(t *testing.T) {
	store := newMemStore()
	productID := store.addProduct("iPhone 15", 10)
	svc := New(store)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, draftInvoice(domain.InvoiceTypeSales, lineItem(productID, 1, 100)))
	require.NoError(t, err)

	store.adjustCalls = nil
	require.NoError(t, svc.UpdateInvoiceStatus(ctx, created.ID, domain.StatusPaid))

	invoice, err := store.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, invoice.Status)
	require.NotNil(t, invoice.PaidAt)
	assert.WithinDuration(t, time.Now(), *invoice.PaidAt, time.Minute)
	// Status changes never touch stock.
	assert.Empty(t, store.adjustCalls)
}
