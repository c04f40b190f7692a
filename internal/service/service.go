// Package service holds the invoice lifecycle manager: the orchestration
// that keeps invoice records and product stock consistent across create,
// update and delete, plus the surrounding CRUD operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/internal/domain"
	"backend/internal/stock"
)

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// CreateProduct folds duplicates: a product with the same name, specs and
// color gets its quantity topped up through the ledger instead of a second
// catalog row.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Product{}, fmt.Errorf("name is required")
	}
	if input.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("quantity cannot be negative")
	}
	if input.UnitPrice < 0 {
		return domain.Product{}, fmt.Errorf("unit_price cannot be negative")
	}
	if input.MinStock < 0 {
		return domain.Product{}, fmt.Errorf("min_stock cannot be negative")
	}

	existing, err := s.store.FindProduct(ctx, input.Name, input.Specs, input.Color)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, err
	}
	if existing != nil {
		if input.Quantity > 0 {
			if _, err := s.store.AdjustQuantity(ctx, existing.ID, input.Quantity); err != nil {
				return domain.Product{}, err
			}
		}
		refreshed, err := s.store.GetProduct(ctx, existing.ID)
		if err != nil {
			return domain.Product{}, err
		}
		return *refreshed, nil
	}
	return s.store.InsertProduct(ctx, input)
}

// PatchProduct edits a product. A quantity change is translated to a delta
// and routed through the ledger adjust, never written as an absolute value.
func (s *Service) PatchProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	var updated *domain.Product
	err := s.store.InTx(ctx, func(tx Store) error {
		if patch.Quantity != nil {
			current, err := tx.ProductQuantity(ctx, id)
			if err != nil {
				return err
			}
			if delta := *patch.Quantity - current; delta != 0 {
				if _, err := tx.AdjustQuantity(ctx, id, delta); err != nil {
					return err
				}
			}
		}
		var err error
		updated, err = tx.UpdateProduct(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) LowStock(ctx context.Context) ([]domain.LowStockRow, error) {
	return s.store.LowStock(ctx)
}

// AdjustStock applies a signed delta to a product's on-hand quantity.
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	return s.store.AdjustQuantity(ctx, productID, delta)
}

type AvailabilityRequest struct {
	ProductID int64
	// InvoiceType of the composition; purchase compositions are unbounded.
	InvoiceType domain.InvoiceType
	// Pending is the quantity of the product already staged in the
	// composition, not yet persisted.
	Pending int
	// Requested is the candidate addition to check; zero asks only for the
	// effective availability.
	Requested int
	// EditingInvoiceID is set when the composition edits an existing
	// invoice, whose committed quantities count as still available.
	EditingInvoiceID *int64
}

type AvailabilityResult struct {
	ProductID          int64 `json:"product_id"`
	EffectiveAvailable int   `json:"effective_available"`
	Allowed            bool  `json:"allowed"`
	Shortfall          int   `json:"shortfall"`
}

// Availability answers how many more units of a product the in-progress
// composition can still add, and whether a candidate addition fits.
func (s *Service) Availability(ctx context.Context, req AvailabilityRequest) (AvailabilityResult, error) {
	if !req.InvoiceType.Valid() {
		return AvailabilityResult{}, fmt.Errorf("invalid invoice_type: %q", req.InvoiceType)
	}

	available, err := s.store.ProductQuantity(ctx, req.ProductID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return AvailabilityResult{}, err
	}

	a := stock.Availability{Available: available, Pending: req.Pending}
	if req.EditingInvoiceID != nil {
		items, err := s.store.GetInvoiceItems(ctx, *req.EditingInvoiceID)
		if err != nil {
			return AvailabilityResult{}, err
		}
		a.OriginalCommitted = stock.QuantityByProduct(items)[req.ProductID]
	}

	result := AvailabilityResult{
		ProductID:          req.ProductID,
		EffectiveAvailable: a.Effective(),
		Allowed:            true,
	}
	if req.Requested > 0 {
		if err := stock.CheckAddition(req.InvoiceType, req.ProductID, a, req.Requested); err != nil {
			stockErr, ok := domain.AsInsufficientStock(err)
			if !ok {
				return AvailabilityResult{}, err
			}
			result.Allowed = false
			result.Shortfall = stockErr.Shortfall()
		}
	}
	return result, nil
}

// CreateInvoice persists a new invoice and applies its stock effect in one
// transaction: purchases add stock, sales consume it, items with no product
// link are skipped. Insufficient stock rolls the whole operation back.
func (s *Service) CreateInvoice(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	if err := normalizeInvoice(&invoice); err != nil {
		return domain.Invoice{}, err
	}

	var created domain.Invoice
	err := s.store.InTx(ctx, func(tx Store) error {
		available, err := tx.ProductQuantities(ctx, linkedProductIDs(invoice.Items, nil))
		if err != nil {
			return err
		}
		if err := stock.ValidateItems(invoice.InvoiceType, invoice.Items, nil, available); err != nil {
			return err
		}

		created, err = tx.InsertInvoice(ctx, invoice)
		if err != nil {
			return err
		}
		for _, delta := range stock.CreationDeltas(invoice.InvoiceType, invoice.Items) {
			if _, err := tx.AdjustQuantity(ctx, delta.ProductID, delta.Change); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return created, nil
}

// UpdateInvoice replaces an invoice's items and totals and reconciles stock
// against the last persisted item set. The adjustment per product is
// originalQty - newQty for both invoice types: restore what is no longer
// used, consume what is newly used, relative to the previous committed
// state.
func (s *Service) UpdateInvoice(ctx context.Context, id int64, items []domain.InvoiceItem, totals InvoiceTotals) (*domain.Invoice, error) {
	if err := normalizeItems(items); err != nil {
		return nil, err
	}
	if err := checkTotals(items, totals.Subtotal, totals.Discount, totals.Shipping, totals.Total); err != nil {
		return nil, err
	}

	var updated *domain.Invoice
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}

		available, err := tx.ProductQuantities(ctx, linkedProductIDs(items, current.Items))
		if err != nil {
			return err
		}
		if err := stock.ValidateItems(current.InvoiceType, items, current.Items, available); err != nil {
			return err
		}

		if err := tx.ReplaceInvoiceItems(ctx, id, items, totals); err != nil {
			return err
		}
		for _, delta := range stock.Deltas(current.Items, items) {
			if _, err := tx.AdjustQuantity(ctx, delta.ProductID, delta.Change); err != nil {
				return err
			}
		}

		updated, err = tx.GetInvoice(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteInvoice removes an invoice and fully reverses its stock effect.
// Deleting a purchase invoice whose units later sales already consumed
// would overdraw stock; that deletion fails and the invoice is kept.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx Store) error {
		invoice, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteInvoice(ctx, id); err != nil {
			return err
		}
		for _, delta := range stock.DeletionDeltas(invoice.InvoiceType, invoice.Items) {
			if _, err := tx.AdjustQuantity(ctx, delta.ProductID, delta.Change); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]domain.Invoice, error) {
	return s.store.ListInvoices(ctx, filter)
}

// UpdateInvoiceStatus is billing-only and never touches stock.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id int64, status domain.InvoiceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status: %q", status)
	}
	var paidAt *time.Time
	if status == domain.StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	return s.store.UpdateInvoiceStatus(ctx, id, status, paidAt)
}

// ResolveImportedItems links parsed workbook rows to catalog products by
// name, specs and color. Rows with no match stay unlinked and will have no
// stock effect when the invoice is committed.
func (s *Service) ResolveImportedItems(ctx context.Context, items []domain.InvoiceItem) ([]domain.InvoiceItem, error) {
	resolved := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		product, err := s.store.FindProduct(ctx, item.ProductName, item.Specs, item.Color)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				resolved = append(resolved, item)
				continue
			}
			return nil, err
		}
		item.ProductID = &product.ID
		if item.Specs == "" {
			item.Specs = product.Specs
		}
		resolved = append(resolved, item)
	}
	return resolved, nil
}

func (s *Service) ListSellers(ctx context.Context) ([]domain.Seller, error) {
	return s.store.ListSellers(ctx)
}

func (s *Service) GetSeller(ctx context.Context, id int64) (*domain.Seller, error) {
	return s.store.GetSeller(ctx, id)
}

func (s *Service) CreateSeller(ctx context.Context, input SellerInput) (domain.Seller, error) {
	if strings.TrimSpace(input.Name) == "" {
		return domain.Seller{}, fmt.Errorf("name is required")
	}
	return s.store.InsertSeller(ctx, input)
}

func (s *Service) UpdateSeller(ctx context.Context, id int64, input SellerInput) (*domain.Seller, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.store.UpdateSeller(ctx, id, input)
}

func (s *Service) DeleteSeller(ctx context.Context, id int64) error {
	return s.store.DeleteSeller(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return domain.Customer{}, fmt.Errorf("name is required")
	}
	return s.store.InsertCustomer(ctx, input)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.store.UpdateCustomer(ctx, id, input)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

func (s *Service) ListBankAccounts(ctx context.Context, sellerID *int64) ([]domain.BankAccount, error) {
	return s.store.ListBankAccounts(ctx, sellerID)
}

// CreateBankAccount inserts an account; marking it default clears the
// previous default in the same seller scope transactionally.
func (s *Service) CreateBankAccount(ctx context.Context, input BankAccountInput) (domain.BankAccount, error) {
	if strings.TrimSpace(input.AccountTitle) == "" {
		return domain.BankAccount{}, fmt.Errorf("account_title is required")
	}
	var created domain.BankAccount
	err := s.store.InTx(ctx, func(tx Store) error {
		if input.IsDefault {
			if err := tx.ClearDefaultBankAccount(ctx, input.SellerID); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.InsertBankAccount(ctx, input)
		return err
	})
	if err != nil {
		return domain.BankAccount{}, err
	}
	return created, nil
}

func (s *Service) UpdateBankAccount(ctx context.Context, id int64, input BankAccountInput) (*domain.BankAccount, error) {
	if strings.TrimSpace(input.AccountTitle) == "" {
		return nil, fmt.Errorf("account_title is required")
	}
	var updated *domain.BankAccount
	err := s.store.InTx(ctx, func(tx Store) error {
		if input.IsDefault {
			if err := tx.ClearDefaultBankAccount(ctx, input.SellerID); err != nil {
				return err
			}
		}
		var err error
		updated, err = tx.UpdateBankAccount(ctx, id, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteBankAccount(ctx context.Context, id int64) error {
	return s.store.DeleteBankAccount(ctx, id)
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return s.store.DashboardStats(ctx)
}

func (s *Service) SalesReport(ctx context.Context, recentLimit int) (domain.SalesReport, error) {
	return s.store.SalesReport(ctx, recentLimit)
}

func normalizeInvoice(invoice *domain.Invoice) error {
	invoice.InvoiceNumber = strings.TrimSpace(invoice.InvoiceNumber)
	if invoice.InvoiceNumber == "" {
		return fmt.Errorf("invoice_number is required")
	}
	if !invoice.InvoiceType.Valid() {
		return fmt.Errorf("invalid invoice_type: %q", invoice.InvoiceType)
	}
	if invoice.Status == "" {
		invoice.Status = domain.StatusDraft
	}
	if !invoice.Status.Valid() {
		return fmt.Errorf("invalid status: %q", invoice.Status)
	}
	if len(invoice.Items) == 0 {
		return fmt.Errorf("invoice needs at least one item")
	}
	if err := normalizeItems(invoice.Items); err != nil {
		return err
	}
	return checkTotals(invoice.Items, invoice.Subtotal, invoice.Discount, invoice.Shipping, invoice.Total)
}

func normalizeItems(items []domain.InvoiceItem) error {
	for i := range items {
		items[i].ProductName = strings.TrimSpace(items[i].ProductName)
		if items[i].ProductName == "" {
			return fmt.Errorf("item %d: product_name is required", i+1)
		}
		if items[i].Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i+1)
		}
		if items[i].UnitPrice < 0 {
			return fmt.Errorf("item %d: unit_price cannot be negative", i+1)
		}
		items[i].LineTotal = items[i].UnitPrice * float64(items[i].Quantity)
	}
	return nil
}

// checkTotals enforces total = subtotal - discount + shipping and that the
// subtotal matches the line totals.
func checkTotals(items []domain.InvoiceItem, subtotal, discount, shipping, total float64) error {
	lineSum := 0.0
	for _, item := range items {
		lineSum += item.LineTotal
	}
	if !moneyEqual(lineSum, subtotal) {
		return fmt.Errorf("subtotal %.2f does not match line totals %.2f", subtotal, lineSum)
	}
	if !moneyEqual(subtotal-discount+shipping, total) {
		return fmt.Errorf("total %.2f does not match subtotal - discount + shipping", total)
	}
	return nil
}

func moneyEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func linkedProductIDs(items, more []domain.InvoiceItem) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(items)+len(more))
	for _, item := range append(append([]domain.InvoiceItem(nil), items...), more...) {
		if item.ProductID == nil {
			continue
		}
		if _, ok := seen[*item.ProductID]; ok {
			continue
		}
		seen[*item.ProductID] = struct{}{}
		ids = append(ids, *item.ProductID)
	}
	return ids
}
