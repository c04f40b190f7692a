// Package excel parses uploaded invoice workbooks. The expected layout is
// the distributed invoice template: a header block of label/value rows, a
// LINE ITEMS section, then a TOTALS block.
package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ParseInvoiceWorkbook reads an invoice workbook into its domain form.
// Rows identify products by name and color only; linking them to the
// catalog is the caller's job.
func ParseInvoiceWorkbook(reader io.Reader) (*domain.ImportedInvoice, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheet := invoiceSheet(file)
	if sheet == "" {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	imported := &domain.ImportedInvoice{
		InvoiceNumber:   labelValue(rows, "Invoice No"),
		CustomerName:    labelValue(rows, "Customer Name"),
		BillingAddress:  labelValue(rows, "Billing Address"),
		ShippingAddress: labelValue(rows, "Shipping Address"),
		VATNumber:       labelValue(rows, "VAT"),
		Email:           labelValue(rows, "Email"),
		Phone:           labelValue(rows, "Phone"),
		Currency:        labelValue(rows, "Currency"),
	}
	if imported.InvoiceNumber == "" {
		return nil, fmt.Errorf("missing invoice number")
	}
	if imported.Currency == "" {
		imported.Currency = "EUR"
	}
	if raw := labelValue(rows, "Invoice Date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid invoice date: %w", err)
		}
		imported.InvoiceDate = &date
	}

	start, end := itemBounds(rows)
	if start < 0 {
		return nil, fmt.Errorf("missing line items section")
	}
	for index := start; index < end; index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, 0))
		if name == "" {
			continue
		}
		qtyRaw := strings.TrimSpace(readCell(cells, 2))
		if qtyRaw == "" {
			continue
		}
		qty, err := parseInt(qtyRaw)
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", index+1, err)
		}
		if qty <= 0 {
			continue
		}
		unitPrice := 0.0
		if raw := strings.TrimSpace(readCell(cells, 3)); raw != "" {
			unitPrice, err = parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid unit price: %w", index+1, err)
			}
		}
		lineTotal := unitPrice * float64(qty)
		if raw := strings.TrimSpace(readCell(cells, 4)); raw != "" {
			if parsed, err := parseFloat(raw); err == nil {
				lineTotal = parsed
			}
		}
		imported.Items = append(imported.Items, domain.InvoiceItem{
			ProductName: name,
			Color:       strings.TrimSpace(readCell(cells, 1)),
			Quantity:    qty,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		})
	}
	if len(imported.Items) == 0 {
		return nil, fmt.Errorf("workbook has no line items")
	}

	imported.Subtotal = totalValue(rows, "Sub Total")
	if imported.Subtotal == 0 {
		for _, item := range imported.Items {
			imported.Subtotal += item.LineTotal
		}
	}
	imported.Shipping = totalValue(rows, "Shipping")
	imported.Total = totalValue(rows, "Total")
	if imported.Total == 0 {
		imported.Total = imported.Subtotal + imported.Shipping
	}

	return imported, nil
}

// invoiceSheet prefers a sheet named "Invoice" and falls back to the first.
func invoiceSheet(file *excelize.File) string {
	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, sheet := range sheets {
		if strings.EqualFold(sheet, "Invoice") {
			return sheet
		}
	}
	return sheets[0]
}

// itemBounds locates the item rows: after the LINE ITEMS label and its
// column header row, up to the TOTALS section (or end of sheet).
func itemBounds(rows [][]string) (int, int) {
	start := -1
	for index, cells := range rows {
		label := normalizeLabel(readCell(cells, 0))
		if label == "lineitems" {
			start = index + 2
			break
		}
		if strings.Contains(label, "phonemodel") {
			start = index + 1
			break
		}
	}
	if start < 0 {
		return -1, -1
	}

	end := len(rows)
	for index := start; index < len(rows); index++ {
		label := normalizeLabel(readCell(rows[index], 0))
		if label == "totals" || strings.Contains(label, "subtotal") {
			end = index
			break
		}
	}
	return start, end
}

func labelValue(rows [][]string, label string) string {
	want := normalizeLabel(label)
	for _, cells := range rows {
		if normalizeLabel(readCell(cells, 0)) == want {
			return strings.TrimSpace(readCell(cells, 1))
		}
	}
	return ""
}

func totalValue(rows [][]string, label string) float64 {
	raw := labelValue(rows, label)
	if raw == "" {
		return 0
	}
	value, err := parseFloat(raw)
	if err != nil {
		return 0
	}
	return value
}

func normalizeLabel(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	return strings.Join(strings.Fields(value), "")
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/06", "01/02/2006", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	asFloat, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(asFloat), nil
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
