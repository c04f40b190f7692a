package domain

import "time"

type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "sales"
	InvoiceTypePurchase InvoiceType = "purchase"
)

func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeSales || t == InvoiceTypePurchase
}

type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "draft"
	StatusSent    InvoiceStatus = "sent"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Specs     string    `json:"specs"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	MinStock  int       `json:"min_stock"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Invoice struct {
	ID              int64         `json:"id"`
	InvoiceNumber   string        `json:"invoice_number"`
	InvoiceType     InvoiceType   `json:"invoice_type"`
	Template        string        `json:"template"`
	SellerID        *int64        `json:"seller_id,omitempty"`
	CustomerID      *int64        `json:"customer_id,omitempty"`
	BankAccountID   *int64        `json:"bank_account_id,omitempty"`
	BillingAddress  *string       `json:"billing_address,omitempty"`
	ShippingAddress *string       `json:"shipping_address,omitempty"`
	Items           []InvoiceItem `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	Shipping        float64       `json:"shipping"`
	Total           float64       `json:"total"`
	Status          InvoiceStatus `json:"status"`
	DueDate         time.Time     `json:"due_date"`
	CreatedAt       time.Time     `json:"created_at"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
}

// InvoiceItem carries a denormalized snapshot of the product at invoicing
// time. ProductID is nil for rows with no catalog match (e.g. imported
// lines); those rows never touch stock.
type InvoiceItem struct {
	ID                  int64    `json:"id"`
	InvoiceID           int64    `json:"invoice_id"`
	ProductID           *int64   `json:"product_id,omitempty"`
	ProductName         string   `json:"product_name"`
	Specs               string   `json:"specs"`
	Color               string   `json:"color"`
	Quantity            int      `json:"quantity"`
	UnitPrice           float64  `json:"unit_price"`
	LineTotal           float64  `json:"line_total"`
	BuyingCurrency      *string  `json:"buying_currency,omitempty"`
	ExchangeRate        *float64 `json:"exchange_rate,omitempty"`
	BuyingPriceOriginal *float64 `json:"buying_price_original,omitempty"`
}

type Seller struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	VATNumber   *string   `json:"vat_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Customer struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	BillingAddress  *string   `json:"billing_address,omitempty"`
	ShippingAddress *string   `json:"shipping_address,omitempty"`
	CompanyName     *string   `json:"company_name,omitempty"`
	VATNumber       *string   `json:"vat_number,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BankAccount struct {
	ID           int64     `json:"id"`
	SellerID     *int64    `json:"seller_id,omitempty"`
	AccountTitle string    `json:"account_title"`
	IBAN         *string   `json:"iban,omitempty"`
	SWIFT        *string   `json:"swift,omitempty"`
	BankName     *string   `json:"bank_name,omitempty"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LowStockRow struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Specs     string `json:"specs"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	MinStock  int    `json:"min_stock"`
	Needed    int    `json:"needed"`
}

type DashboardStats struct {
	TotalProducts   int     `json:"total_products"`
	LowStockItems   int     `json:"low_stock_items"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingInvoices int     `json:"pending_invoices"`
	TodaySales      float64 `json:"today_sales"`
}

type SalesReport struct {
	TotalRevenue  float64   `json:"total_revenue"`
	TotalInvoices int       `json:"total_invoices"`
	PaidInvoices  int       `json:"paid_invoices"`
	PendingAmount float64   `json:"pending_amount"`
	RecentSales   []Invoice `json:"recent_sales"`
}

// ImportedInvoice is the parsed form of an uploaded invoice workbook.
// Items matched against the catalog carry a ProductID; unmatched rows
// import without one.
type ImportedInvoice struct {
	InvoiceNumber   string        `json:"invoice_number"`
	InvoiceDate     *time.Time    `json:"invoice_date,omitempty"`
	CustomerName    string        `json:"customer_name"`
	BillingAddress  string        `json:"billing_address"`
	ShippingAddress string        `json:"shipping_address"`
	VATNumber       string        `json:"vat_number"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Currency        string        `json:"currency"`
	Items           []InvoiceItem `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Shipping        float64       `json:"shipping"`
	Total           float64       `json:"total"`
}
