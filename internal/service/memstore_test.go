package service

import (
	"context"
	"strings"
	"time"

	"backend/internal/domain"
)

// memStore is an in-memory Store used to exercise the invoice lifecycle
// against the persistence contract without a database. InTx snapshots the
// state and restores it when fn fails, mirroring transaction rollback.
type memStore struct {
	Store // unimplemented methods panic; tests only reach what they need

	products      map[int64]*domain.Product
	invoices      map[int64]*domain.Invoice
	nextProductID int64
	nextInvoiceID int64
	nextItemID    int64

	adjustCalls []adjustCall
}

type adjustCall struct {
	productID int64
	delta     int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]*domain.Product),
		invoices: make(map[int64]*domain.Invoice),
	}
}

func (m *memStore) addProduct(name string, quantity int) int64 {
	m.nextProductID++
	m.products[m.nextProductID] = &domain.Product{
		ID:       m.nextProductID,
		Name:     name,
		Quantity: quantity,
	}
	return m.nextProductID
}

func (m *memStore) snapshot() (map[int64]*domain.Product, map[int64]*domain.Invoice) {
	products := make(map[int64]*domain.Product, len(m.products))
	for id, p := range m.products {
		cp := *p
		products[id] = &cp
	}
	invoices := make(map[int64]*domain.Invoice, len(m.invoices))
	for id, inv := range m.invoices {
		cp := *inv
		cp.Items = append([]domain.InvoiceItem(nil), inv.Items...)
		invoices[id] = &cp
	}
	return products, invoices
}

func (m *memStore) InTx(_ context.Context, fn func(Store) error) error {
	products, invoices := m.snapshot()
	if err := fn(m); err != nil {
		m.products = products
		m.invoices = invoices
		return err
	}
	return nil
}

func (m *memStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *product
	return &cp, nil
}

func (m *memStore) FindProduct(_ context.Context, name, specs, color string) (*domain.Product, error) {
	for _, product := range m.products {
		if strings.EqualFold(product.Name, name) && strings.EqualFold(product.Specs, specs) && strings.EqualFold(product.Color, color) {
			cp := *product
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) InsertProduct(_ context.Context, input ProductInput) (domain.Product, error) {
	m.nextProductID++
	product := domain.Product{
		ID:        m.nextProductID,
		Name:      input.Name,
		Specs:     input.Specs,
		Color:     input.Color,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		MinStock:  input.MinStock,
		Category:  input.Category,
	}
	m.products[product.ID] = &product
	cp := product
	return cp, nil
}

func (m *memStore) UpdateProduct(_ context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Specs != nil {
		product.Specs = *patch.Specs
	}
	if patch.Color != nil {
		product.Color = *patch.Color
	}
	if patch.UnitPrice != nil {
		product.UnitPrice = *patch.UnitPrice
	}
	if patch.MinStock != nil {
		product.MinStock = *patch.MinStock
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	cp := *product
	return &cp, nil
}

func (m *memStore) ProductQuantity(_ context.Context, id int64) (int, error) {
	product, ok := m.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return product.Quantity, nil
}

func (m *memStore) ProductQuantities(_ context.Context, ids []int64) (map[int64]int, error) {
	quantities := make(map[int64]int, len(ids))
	for _, id := range ids {
		if product, ok := m.products[id]; ok {
			quantities[id] = product.Quantity
		}
	}
	return quantities, nil
}

func (m *memStore) AdjustQuantity(_ context.Context, id int64, delta int) (int, error) {
	product, ok := m.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	m.adjustCalls = append(m.adjustCalls, adjustCall{productID: id, delta: delta})
	next := product.Quantity + delta
	if next < 0 {
		return 0, &domain.InsufficientStockError{
			ProductID:   id,
			ProductName: product.Name,
			Available:   product.Quantity,
			Requested:   -delta,
		}
	}
	product.Quantity = next
	return next, nil
}

func (m *memStore) InsertInvoice(_ context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	m.nextInvoiceID++
	invoice.ID = m.nextInvoiceID
	invoice.CreatedAt = time.Now().UTC()
	items := make([]domain.InvoiceItem, len(invoice.Items))
	for i, item := range invoice.Items {
		m.nextItemID++
		item.ID = m.nextItemID
		item.InvoiceID = invoice.ID
		items[i] = item
	}
	invoice.Items = items
	cp := invoice
	cp.Items = append([]domain.InvoiceItem(nil), items...)
	m.invoices[invoice.ID] = &cp
	return invoice, nil
}

func (m *memStore) GetInvoice(_ context.Context, id int64) (*domain.Invoice, error) {
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *invoice
	cp.Items = append([]domain.InvoiceItem(nil), invoice.Items...)
	return &cp, nil
}

func (m *memStore) GetInvoiceItems(_ context.Context, invoiceID int64) ([]domain.InvoiceItem, error) {
	invoice, ok := m.invoices[invoiceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.InvoiceItem(nil), invoice.Items...), nil
}

func (m *memStore) ReplaceInvoiceItems(_ context.Context, invoiceID int64, items []domain.InvoiceItem, totals InvoiceTotals) error {
	invoice, ok := m.invoices[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	replaced := make([]domain.InvoiceItem, len(items))
	for i, item := range items {
		m.nextItemID++
		item.ID = m.nextItemID
		item.InvoiceID = invoiceID
		replaced[i] = item
	}
	invoice.Items = replaced
	invoice.Subtotal = totals.Subtotal
	invoice.Discount = totals.Discount
	invoice.Shipping = totals.Shipping
	invoice.Total = totals.Total
	return nil
}

func (m *memStore) UpdateInvoiceStatus(_ context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) error {
	invoice, ok := m.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	invoice.Status = status
	invoice.PaidAt = paidAt
	return nil
}

func (m *memStore) DeleteInvoice(_ context.Context, id int64) error {
	if _, ok := m.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

