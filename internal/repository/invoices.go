package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"backend/internal/domain"
	"backend/internal/service"
)

const invoiceColumns = `
	id,
	invoice_number,
	invoice_type,
	template,
	seller_id,
	customer_id,
	bank_account_id,
	billing_address,
	shipping_address,
	subtotal::double precision,
	discount::double precision,
	shipping::double precision,
	total::double precision,
	status,
	due_date,
	created_at,
	paid_at
`

const invoiceItemColumns = `
	id,
	invoice_id,
	product_id,
	product_name,
	specs,
	color,
	quantity,
	unit_price::double precision,
	line_total::double precision,
	buying_currency,
	exchange_rate::double precision,
	buying_price_original::double precision
`

// InsertInvoice writes the invoice row and its items. Stock adjustments are
// the caller's concern; run this inside InTx alongside them.
func (s *Store) InsertInvoice(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO invoices (
			invoice_number,
			invoice_type,
			template,
			seller_id,
			customer_id,
			bank_account_id,
			billing_address,
			shipping_address,
			subtotal,
			discount,
			shipping,
			total,
			status,
			due_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+invoiceColumns,
		invoice.InvoiceNumber,
		invoice.InvoiceType,
		invoice.Template,
		invoice.SellerID,
		invoice.CustomerID,
		invoice.BankAccountID,
		invoice.BillingAddress,
		invoice.ShippingAddress,
		invoice.Subtotal,
		invoice.Discount,
		invoice.Shipping,
		invoice.Total,
		invoice.Status,
		invoice.DueDate,
	)
	created, err := scanInvoice(row)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}

	created.Items, err = s.insertItems(ctx, created.ID, invoice.Items)
	if err != nil {
		return domain.Invoice{}, err
	}
	return created, nil
}

func (s *Store) insertItems(ctx context.Context, invoiceID int64, items []domain.InvoiceItem) ([]domain.InvoiceItem, error) {
	inserted := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		row := s.db.QueryRow(ctx, `
			INSERT INTO invoice_items (
				invoice_id,
				product_id,
				product_name,
				specs,
				color,
				quantity,
				unit_price,
				line_total,
				buying_currency,
				exchange_rate,
				buying_price_original
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+invoiceItemColumns,
			invoiceID,
			item.ProductID,
			item.ProductName,
			item.Specs,
			item.Color,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
			item.BuyingCurrency,
			item.ExchangeRate,
			item.BuyingPriceOriginal,
		)
		line, err := scanInvoiceItem(row)
		if err != nil {
			return nil, fmt.Errorf("insert invoice item: %w", err)
		}
		inserted = append(inserted, line)
	}
	return inserted, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := s.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}

	invoice.Items, err = s.GetInvoiceItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) GetInvoiceItems(ctx context.Context, invoiceID int64) ([]domain.InvoiceItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+invoiceItemColumns+`
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id ASC
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items %d: %w", invoiceID, err)
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0)
	for rows.Next() {
		item, err := scanInvoiceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}
	return items, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter service.InvoiceListFilter) ([]domain.Invoice, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE ($1 = '' OR invoice_type = $1)
		  AND ($2 = '' OR status = $2)
	`
	args := []any{strings.TrimSpace(filter.InvoiceType), strings.TrimSpace(filter.Status)}
	idx := 3
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filter.From)
		idx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filter.To)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	for i := range invoices {
		items, err := s.GetInvoiceItems(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

// ReplaceInvoiceItems swaps the full item set and totals of an invoice.
// Stock deltas are the caller's concern; run this inside InTx.
func (s *Store) ReplaceInvoiceItems(ctx context.Context, invoiceID int64, items []domain.InvoiceItem, totals service.InvoiceTotals) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE invoices
		SET subtotal = $2, discount = $3, shipping = $4, total = $5
		WHERE id = $1
	`, invoiceID, totals.Subtotal, totals.Discount, totals.Shipping, totals.Total)
	if err != nil {
		return fmt.Errorf("update invoice totals %d: %w", invoiceID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := s.db.Exec(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("clear invoice items %d: %w", invoiceID, err)
	}
	if _, err := s.insertItems(ctx, invoiceID, items); err != nil {
		return err
	}
	return nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE invoices
		SET status = $2, paid_at = $3
		WHERE id = $1
	`, id, status, paidAt)
	if err != nil {
		return fmt.Errorf("update invoice status %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteInvoice removes the invoice row; items go with it via ON DELETE
// CASCADE. Stock restoration is the caller's concern; run this inside InTx.
func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete invoice %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var invoice domain.Invoice
	if err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.InvoiceType,
		&invoice.Template,
		&invoice.SellerID,
		&invoice.CustomerID,
		&invoice.BankAccountID,
		&invoice.BillingAddress,
		&invoice.ShippingAddress,
		&invoice.Subtotal,
		&invoice.Discount,
		&invoice.Shipping,
		&invoice.Total,
		&invoice.Status,
		&invoice.DueDate,
		&invoice.CreatedAt,
		&invoice.PaidAt,
	); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func scanInvoiceItem(row pgx.Row) (domain.InvoiceItem, error) {
	var item domain.InvoiceItem
	if err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&item.ProductID,
		&item.ProductName,
		&item.Specs,
		&item.Color,
		&item.Quantity,
		&item.UnitPrice,
		&item.LineTotal,
		&item.BuyingCurrency,
		&item.ExchangeRate,
		&item.BuyingPriceOriginal,
	); err != nil {
		return domain.InvoiceItem{}, err
	}
	return item, nil
}
