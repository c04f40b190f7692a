package service

import (
	"context"
	"time"

	"backend/internal/domain"
)

type ProductListFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
	LowStock bool
}

type ProductInput struct {
	Name      string
	Specs     string
	Color     string
	Quantity  int
	UnitPrice float64
	MinStock  int
	Category  string
}

type ProductPatch struct {
	Name      *string
	Specs     *string
	Color     *string
	Quantity  *int
	UnitPrice *float64
	MinStock  *int
	Category  *string
}

type InvoiceListFilter struct {
	InvoiceType string
	Status      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type InvoiceTotals struct {
	Subtotal float64
	Discount float64
	Shipping float64
	Total    float64
}

type SellerInput struct {
	Name        string
	Email       *string
	Phone       *string
	Address     *string
	CompanyName *string
	VATNumber   *string
}

type CustomerInput struct {
	Name            string
	Email           *string
	Phone           *string
	BillingAddress  *string
	ShippingAddress *string
	CompanyName     *string
	VATNumber       *string
}

type BankAccountInput struct {
	SellerID     *int64
	AccountTitle string
	IBAN         *string
	SWIFT        *string
	BankName     *string
	IsDefault    bool
}

// Store is the persistence contract the service drives. The pgx
// implementation lives in internal/repository; tests exercise the invoice
// lifecycle against an in-memory double. Methods return domain.ErrNotFound
// for missing rows and never interpret infrastructure errors.
type Store interface {
	// InTx runs fn against a store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise,
	// so an invoice mutation and its stock adjustments are observed
	// together or not at all.
	InTx(ctx context.Context, fn func(Store) error) error

	ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FindProduct(ctx context.Context, name, specs, color string) (*domain.Product, error)
	InsertProduct(ctx context.Context, input ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	LowStock(ctx context.Context) ([]domain.LowStockRow, error)

	// ProductQuantity returns the committed on-hand quantity, or
	// domain.ErrNotFound for an unknown product.
	ProductQuantity(ctx context.Context, id int64) (int, error)
	ProductQuantities(ctx context.Context, ids []int64) (map[int64]int, error)
	// AdjustQuantity atomically applies a signed delta, failing with
	// *domain.InsufficientStockError (and changing nothing) when the result
	// would be negative. Returns the new quantity.
	AdjustQuantity(ctx context.Context, id int64, delta int) (int, error)

	InsertInvoice(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	GetInvoiceItems(ctx context.Context, invoiceID int64) ([]domain.InvoiceItem, error)
	ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]domain.Invoice, error)
	ReplaceInvoiceItems(ctx context.Context, invoiceID int64, items []domain.InvoiceItem, totals InvoiceTotals) error
	UpdateInvoiceStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) error
	DeleteInvoice(ctx context.Context, id int64) error

	ListSellers(ctx context.Context) ([]domain.Seller, error)
	GetSeller(ctx context.Context, id int64) (*domain.Seller, error)
	InsertSeller(ctx context.Context, input SellerInput) (domain.Seller, error)
	UpdateSeller(ctx context.Context, id int64, input SellerInput) (*domain.Seller, error)
	DeleteSeller(ctx context.Context, id int64) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	InsertCustomer(ctx context.Context, input CustomerInput) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	ListBankAccounts(ctx context.Context, sellerID *int64) ([]domain.BankAccount, error)
	InsertBankAccount(ctx context.Context, input BankAccountInput) (domain.BankAccount, error)
	UpdateBankAccount(ctx context.Context, id int64, input BankAccountInput) (*domain.BankAccount, error)
	DeleteBankAccount(ctx context.Context, id int64) error
	// ClearDefaultBankAccount drops the default flag from every account of
	// the given seller scope, ahead of marking a new default.
	ClearDefaultBankAccount(ctx context.Context, sellerID *int64) error

	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	SalesReport(ctx context.Context, recentLimit int) (domain.SalesReport, error)
}
