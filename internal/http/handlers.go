package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backend/internal/domain"
	"backend/internal/excel"
	"backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := service.ProductListFilter{
		Search:   strings.TrimSpace(query.Get("search")),
		Category: strings.TrimSpace(query.Get("category")),
		Limit:    limit,
		Offset:   offset,
	}
	if lowStockRaw := strings.TrimSpace(query.Get("low_stock")); lowStockRaw != "" {
		lowStock, err := strconv.ParseBool(lowStockRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "low_stock must be true or false")
			return
		}
		filter.LowStock = lowStock
	}

	items, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type createProductRequest struct {
	Name      string  `json:"name"`
	Specs     string  `json:"specs"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	MinStock  int     `json:"min_stock"`
	Category  string  `json:"category"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), service.ProductInput{
		Name:      req.Name,
		Specs:     req.Specs,
		Color:     req.Color,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		MinStock:  req.MinStock,
		Category:  req.Category,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchProductRequest struct {
	Name      *string  `json:"name"`
	Specs     *string  `json:"specs"`
	Color     *string  `json:"color"`
	Quantity  *int     `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
	MinStock  *int     `json:"min_stock"`
	Category  *string  `json:"category"`
}

func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req patchProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.PatchProduct(r.Context(), id, service.ProductPatch{
		Name:      req.Name,
		Specs:     req.Specs,
		Color:     req.Color,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		MinStock:  req.MinStock,
		Category:  req.Category,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		if stockErr, ok := domain.AsInsufficientStock(err); ok {
			writeInsufficientStock(w, stockErr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta cannot be zero")
		return
	}

	quantity, err := h.svc.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		if stockErr, ok := domain.AsInsufficientStock(err); ok {
			writeInsufficientStock(w, stockErr)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": id, "quantity": quantity})
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.LowStock(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

type availabilityRequest struct {
	ProductID        int64  `json:"product_id"`
	InvoiceType      string `json:"invoice_type"`
	Pending          int    `json:"pending"`
	Requested        int    `json:"requested"`
	EditingInvoiceID *int64 `json:"editing_invoice_id"`
}

func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Pending < 0 || req.Requested < 0 {
		writeError(w, http.StatusBadRequest, "pending and requested cannot be negative")
		return
	}

	result, err := h.svc.Availability(r.Context(), service.AvailabilityRequest{
		ProductID:        req.ProductID,
		InvoiceType:      domain.InvoiceType(req.InvoiceType),
		Pending:          req.Pending,
		Requested:        req.Requested,
		EditingInvoiceID: req.EditingInvoiceID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseOptionalTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	invoices, err := h.svc.ListInvoices(r.Context(), service.InvoiceListFilter{
		InvoiceType: strings.TrimSpace(query.Get("type")),
		Status:      strings.TrimSpace(query.Get("status")),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": invoices, "count": len(invoices)})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

type invoiceItemRequest struct {
	ProductID           *int64   `json:"product_id"`
	ProductName         string   `json:"product_name"`
	Specs               string   `json:"specs"`
	Color               string   `json:"color"`
	Quantity            int      `json:"quantity"`
	UnitPrice           float64  `json:"unit_price"`
	BuyingCurrency      *string  `json:"buying_currency"`
	ExchangeRate        *float64 `json:"exchange_rate"`
	BuyingPriceOriginal *float64 `json:"buying_price_original"`
}

func (r invoiceItemRequest) toDomain() domain.InvoiceItem {
	return domain.InvoiceItem{
		ProductID:           r.ProductID,
		ProductName:         r.ProductName,
		Specs:               r.Specs,
		Color:               r.Color,
		Quantity:            r.Quantity,
		UnitPrice:           r.UnitPrice,
		LineTotal:           r.UnitPrice * float64(r.Quantity),
		BuyingCurrency:      r.BuyingCurrency,
		ExchangeRate:        r.ExchangeRate,
		BuyingPriceOriginal: r.BuyingPriceOriginal,
	}
}

type createInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number"`
	InvoiceType     string               `json:"invoice_type"`
	Template        string               `json:"template"`
	SellerID        *int64               `json:"seller_id"`
	CustomerID      *int64               `json:"customer_id"`
	BankAccountID   *int64               `json:"bank_account_id"`
	BillingAddress  *string              `json:"billing_address"`
	ShippingAddress *string              `json:"shipping_address"`
	Items           []invoiceItemRequest `json:"items"`
	Subtotal        float64              `json:"subtotal"`
	Discount        float64              `json:"discount"`
	Shipping        float64              `json:"shipping"`
	Total           float64              `json:"total"`
	Status          string               `json:"status"`
	DueDate         string               `json:"due_date"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date")
		return
	}

	invoice := domain.Invoice{
		InvoiceNumber:   req.InvoiceNumber,
		InvoiceType:     domain.InvoiceType(req.InvoiceType),
		Template:        req.Template,
		SellerID:        req.SellerID,
		CustomerID:      req.CustomerID,
		BankAccountID:   req.BankAccountID,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		Shipping:        req.Shipping,
		Total:           req.Total,
		Status:          domain.InvoiceStatus(req.Status),
	}
	if dueDate != nil {
		invoice.DueDate = *dueDate
	}
	for _, item := range req.Items {
		invoice.Items = append(invoice.Items, item.toDomain())
	}

	created, err := h.svc.CreateInvoice(r.Context(), invoice)
	if err != nil {
		if stockErr, ok := domain.AsInsufficientStock(err); ok {
			writeInsufficientStock(w, stockErr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateInvoiceItemsRequest struct {
	Items    []invoiceItemRequest `json:"items"`
	Subtotal float64              `json:"subtotal"`
	Discount float64              `json:"discount"`
	Shipping float64              `json:"shipping"`
	Total    float64              `json:"total"`
}

func (h *Handler) UpdateInvoiceItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateInvoiceItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invoice needs at least one item")
		return
	}
	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.toDomain())
	}

	updated, err := h.svc.UpdateInvoice(r.Context(), id, items, service.InvoiceTotals{
		Subtotal: req.Subtotal,
		Discount: req.Discount,
		Shipping: req.Shipping,
		Total:    req.Total,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		if stockErr, ok := domain.AsInsufficientStock(err); ok {
			writeInsufficientStock(w, stockErr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateInvoiceStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateInvoiceStatus(r.Context(), id, domain.InvoiceStatus(req.Status)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		if stockErr, ok := domain.AsInsufficientStock(err); ok {
			writeInsufficientStock(w, stockErr)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportInvoiceExcel parses an uploaded invoice workbook and returns the
// extracted header and items, with item rows resolved against the catalog.
// Nothing is persisted; the caller reviews the draft and submits it through
// the regular create endpoint.
func (h *Handler) ImportInvoiceExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	imported, err := excel.ParseInvoiceWorkbook(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported.Items, err = h.svc.ResolveImportedItems(r.Context(), imported.Items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	linked := 0
	for _, item := range imported.Items {
		if item.ProductID != nil {
			linked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":    header.Filename,
		"invoice":      imported,
		"total_items":  len(imported.Items),
		"linked_items": linked,
	})
}

func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.ListSellers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": sellers, "count": len(sellers)})
}

func (h *Handler) GetSeller(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	seller, err := h.svc.GetSeller(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seller)
}

type sellerRequest struct {
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	CompanyName *string `json:"company_name"`
	VATNumber   *string `json:"vat_number"`
}

func (r sellerRequest) toInput() service.SellerInput {
	return service.SellerInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		CompanyName: r.CompanyName,
		VATNumber:   r.VATNumber,
	}
}

func (h *Handler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req sellerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateSeller(r.Context(), req.toInput())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req sellerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateSeller(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteSeller(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": customers, "count": len(customers)})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

type customerRequest struct {
	Name            string  `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	BillingAddress  *string `json:"billing_address"`
	ShippingAddress *string `json:"shipping_address"`
	CompanyName     *string `json:"company_name"`
	VATNumber       *string `json:"vat_number"`
}

func (r customerRequest) toInput() service.CustomerInput {
	return service.CustomerInput{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		CompanyName:     r.CompanyName,
		VATNumber:       r.VATNumber,
	}
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateCustomer(r.Context(), req.toInput())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateCustomer(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	sellerID, err := parseOptionalInt64(r.URL.Query().Get("seller_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accounts, err := h.svc.ListBankAccounts(r.Context(), sellerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": accounts, "count": len(accounts)})
}

type bankAccountRequest struct {
	SellerID     *int64  `json:"seller_id"`
	AccountTitle string  `json:"account_title"`
	IBAN         *string `json:"iban"`
	SWIFT        *string `json:"swift"`
	BankName     *string `json:"bank_name"`
	IsDefault    bool    `json:"is_default"`
}

func (r bankAccountRequest) toInput() service.BankAccountInput {
	return service.BankAccountInput{
		SellerID:     r.SellerID,
		AccountTitle: r.AccountTitle,
		IBAN:         r.IBAN,
		SWIFT:        r.SWIFT,
		BankName:     r.BankName,
		IsDefault:    r.IsDefault,
	}
}

func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req bankAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateBankAccount(r.Context(), req.toInput())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateBankAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req bankAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateBankAccount(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bank account not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteBankAccount(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bank account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get("recent_limit"), 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.SalesReport(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func parseOptionalInt64(raw string) (*int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("invalid id value: %s", raw)
	}
	return &parsed, nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("invalid time")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeInsufficientStock reports a rejected stock movement with the exact
// numbers the caller needs to correct the request.
func writeInsufficientStock(w http.ResponseWriter, stockErr *domain.InsufficientStockError) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":        stockErr.Error(),
		"product_id":   stockErr.ProductID,
		"product_name": stockErr.ProductName,
		"available":    stockErr.Available,
		"requested":    stockErr.Requested,
		"shortfall":    stockErr.Shortfall(),
	})
}
