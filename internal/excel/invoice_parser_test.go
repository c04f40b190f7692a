package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetName("Sheet1", "Invoice"))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow("Invoice", cell, &row))
	}
	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func templateRows() [][]interface{} {
	return [][]interface{}{
		{"NFB INVOICE TEMPLATE"},
		{""},
		{"HEADER INFORMATION"},
		{"Invoice No", "NFB-2024-001"},
		{"Invoice Date", "2024-03-15"},
		{"Customer Name", "Acme Trading GmbH"},
		{"Billing Address", "Hauptstr. 1, Berlin"},
		{"Shipping Address", "Lagerweg 9, Hamburg"},
		{"VAT", "DE123456789"},
		{"Email", "orders@acme.example"},
		{"Phone", "+49 30 1234567"},
		{"Shipping Terms", "DAP"},
		{"Currency", "EUR"},
		{""},
		{"LINE ITEMS"},
		{"Phone Model", "Color", "Qty", "Unit Price", "Line Total"},
		{"iPhone 15 Pro", "Black", 4, 899.5, 3598},
		{"Galaxy S24", "Gray", 2, 650, 1300},
		{"", "", "", "", ""},
		{""},
		{"TOTALS"},
		{"Sub Total", 4898},
		{"Shipping", 50},
		{"Total", 4948},
	}
}

func TestParseInvoiceWorkbook(t *testing.T) {
	imported, err := ParseInvoiceWorkbook(buildWorkbook(t, templateRows()))
	require.NoError(t, err)

	assert.Equal(t, "NFB-2024-001", imported.InvoiceNumber)
	assert.Equal(t, "Acme Trading GmbH", imported.CustomerName)
	assert.Equal(t, "Hauptstr. 1, Berlin", imported.BillingAddress)
	assert.Equal(t, "Lagerweg 9, Hamburg", imported.ShippingAddress)
	assert.Equal(t, "DE123456789", imported.VATNumber)
	assert.Equal(t, "orders@acme.example", imported.Email)
	assert.Equal(t, "+49 30 1234567", imported.Phone)
	assert.Equal(t, "EUR", imported.Currency)
	require.NotNil(t, imported.InvoiceDate)
	assert.Equal(t, "2024-03-15", imported.InvoiceDate.Format("2006-01-02"))

	require.Len(t, imported.Items, 2)
	assert.Equal(t, "iPhone 15 Pro", imported.Items[0].ProductName)
	assert.Equal(t, "Black", imported.Items[0].Color)
	assert.Equal(t, 4, imported.Items[0].Quantity)
	assert.InDelta(t, 899.5, imported.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 3598, imported.Items[0].LineTotal, 0.001)
	assert.Equal(t, "Galaxy S24", imported.Items[1].ProductName)

	assert.InDelta(t, 4898, imported.Subtotal, 0.001)
	assert.InDelta(t, 50, imported.Shipping, 0.001)
	assert.InDelta(t, 4948, imported.Total, 0.001)
}

func TestParseInvoiceWorkbookDerivesMissingTotals(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "NFB-2024-002"},
		{"LINE ITEMS"},
		{"Phone Model", "Color", "Qty", "Unit Price", "Line Total"},
		{"Pixel 9", "Obsidian", 3, 500, ""},
	}

	imported, err := ParseInvoiceWorkbook(buildWorkbook(t, rows))
	require.NoError(t, err)

	require.Len(t, imported.Items, 1)
	assert.InDelta(t, 1500, imported.Items[0].LineTotal, 0.001)
	assert.InDelta(t, 1500, imported.Subtotal, 0.001)
	assert.InDelta(t, 1500, imported.Total, 0.001)
	// Currency falls back to the template default.
	assert.Equal(t, "EUR", imported.Currency)
}

func TestParseInvoiceWorkbookRequiresInvoiceNumber(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", ""},
		{"LINE ITEMS"},
		{"Phone Model", "Color", "Qty", "Unit Price", "Line Total"},
		{"Pixel 9", "Obsidian", 1, 500, 500},
	}

	_, err := ParseInvoiceWorkbook(buildWorkbook(t, rows))
	assert.Error(t, err)
}

func TestParseInvoiceWorkbookRequiresItems(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "NFB-2024-003"},
		{"LINE ITEMS"},
		{"Phone Model", "Color", "Qty", "Unit Price", "Line Total"},
		{"", "", "", "", ""},
		{"TOTALS"},
		{"Sub Total", 0},
	}

	_, err := ParseInvoiceWorkbook(buildWorkbook(t, rows))
	assert.Error(t, err)
}

func TestParseInvoiceWorkbookSkipsRowsWithoutQuantity(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "NFB-2024-004"},
		{"LINE ITEMS"},
		{"Phone Model", "Color", "Qty", "Unit Price", "Line Total"},
		{"Pixel 9", "Obsidian", "", "", ""},
		{"iPhone 15", "Blue", 2, 700, 1400},
	}

	imported, err := ParseInvoiceWorkbook(buildWorkbook(t, rows))
	require.NoError(t, err)
	require.Len(t, imported.Items, 1)
	assert.Equal(t, "iPhone 15", imported.Items[0].ProductName)
}
