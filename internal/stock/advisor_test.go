package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/domain"
)

func TestEffectiveForNewInvoice(t *testing.T) {
	a := Availability{Available: 6, Pending: 4}
	assert.Equal(t, 2, a.Effective())
}

func TestEffectiveWhileEditingAddsBackHeldQuantity(t *testing.T) {
	// Invoice being edited already holds 3 units, which the committed
	// stock of 7 no longer contains.
	a := Availability{Available: 7, Pending: 5, OriginalCommitted: 3}
	assert.Equal(t, 5, a.Effective())
}

func TestEffectiveCanGoNegative(t *testing.T) {
	a := Availability{Available: 2, Pending: 5}
	assert.Equal(t, -3, a.Effective())
}

func TestCheckAdditionRejectsOverdraw(t *testing.T) {
	// Composing against 6 on hand with 4 already staged: adding 3 more
	// exceeds the 2 effectively available by exactly 1.
	err := CheckAddition(domain.InvoiceTypeSales, 9, Availability{Available: 6, Pending: 4}, 3)
	require.Error(t, err)

	stockErr, ok := domain.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, int64(9), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Shortfall())
}

func TestCheckAdditionAllowsExactFit(t *testing.T) {
	err := CheckAddition(domain.InvoiceTypeSales, 9, Availability{Available: 6, Pending: 4}, 2)
	assert.NoError(t, err)
}

func TestCheckAdditionPurchaseIsUnbounded(t *testing.T) {
	err := CheckAddition(domain.InvoiceTypePurchase, 9, Availability{Available: 0}, 100000)
	assert.NoError(t, err)
}

func TestValidateItemsReportsFirstViolation(t *testing.T) {
	items := []domain.InvoiceItem{item(1, 4), item(2, 9)}
	available := map[int64]int{1: 10, 2: 6}

	err := ValidateItems(domain.InvoiceTypeSales, items, nil, available)
	require.Error(t, err)

	stockErr, ok := domain.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 6, stockErr.Available)
	assert.Equal(t, 9, stockErr.Requested)
}

func TestValidateItemsCountsQuantityHeldByEditedInvoice(t *testing.T) {
	// 7 on hand, but the invoice being edited already committed 3, so an
	// edit up to 10 total still fits.
	items := []domain.InvoiceItem{item(1, 10)}
	original := []domain.InvoiceItem{item(1, 3)}
	available := map[int64]int{1: 7}

	assert.NoError(t, ValidateItems(domain.InvoiceTypeSales, items, original, available))

	items = []domain.InvoiceItem{item(1, 11)}
	assert.Error(t, ValidateItems(domain.InvoiceTypeSales, items, original, available))
}

func TestValidateItemsPurchaseNeverBounded(t *testing.T) {
	items := []domain.InvoiceItem{item(1, 500)}
	assert.NoError(t, ValidateItems(domain.InvoiceTypePurchase, items, nil, map[int64]int{1: 0}))
}

func TestValidateItemsSkipsUnlinkedRows(t *testing.T) {
	items := []domain.InvoiceItem{unlinkedItem(9999)}
	assert.NoError(t, ValidateItems(domain.InvoiceTypeSales, items, nil, map[int64]int{}))
}
