package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Post("/products", handler.CreateProduct)
		r.Get("/products/{id}", handler.GetProduct)
		r.Patch("/products/{id}", handler.PatchProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)
		r.Post("/products/{id}/adjust", handler.AdjustStock)

		r.Post("/stock/availability", handler.CheckAvailability)
		r.Get("/stock/low", handler.LowStock)

		r.Get("/invoices", handler.ListInvoices)
		r.Post("/invoices", handler.CreateInvoice)
		r.Post("/invoices/import", handler.ImportInvoiceExcel)
		r.Get("/invoices/{id}", handler.GetInvoice)
		r.Put("/invoices/{id}/items", handler.UpdateInvoiceItems)
		r.Patch("/invoices/{id}/status", handler.UpdateInvoiceStatus)
		r.Delete("/invoices/{id}", handler.DeleteInvoice)

		r.Get("/sellers", handler.ListSellers)
		r.Post("/sellers", handler.CreateSeller)
		r.Get("/sellers/{id}", handler.GetSeller)
		r.Put("/sellers/{id}", handler.UpdateSeller)
		r.Delete("/sellers/{id}", handler.DeleteSeller)

		r.Get("/customers", handler.ListCustomers)
		r.Post("/customers", handler.CreateCustomer)
		r.Get("/customers/{id}", handler.GetCustomer)
		r.Put("/customers/{id}", handler.UpdateCustomer)
		r.Delete("/customers/{id}", handler.DeleteCustomer)

		r.Get("/bank-accounts", handler.ListBankAccounts)
		r.Post("/bank-accounts", handler.CreateBankAccount)
		r.Put("/bank-accounts/{id}", handler.UpdateBankAccount)
		r.Delete("/bank-accounts/{id}", handler.DeleteBankAccount)

		r.Get("/reports/dashboard", handler.DashboardStats)
		r.Get("/reports/sales", handler.SalesReport)
	})

	return r
}
