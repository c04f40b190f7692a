package repository

import (
	"context"
	"fmt"

	"backend/internal/domain"
	"backend/internal/service"
)

func (s *Store) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products)::int,
			(SELECT COUNT(*) FROM products WHERE quantity <= min_stock)::int,
			COALESCE((SELECT SUM(total) FROM invoices WHERE invoice_type = 'sales' AND status = 'paid'), 0)::double precision,
			(SELECT COUNT(*) FROM invoices WHERE status IN ('draft', 'sent', 'overdue'))::int,
			COALESCE((
				SELECT SUM(total)
				FROM invoices
				WHERE invoice_type = 'sales' AND created_at >= DATE_TRUNC('day', NOW())
			), 0)::double precision
	`).Scan(
		&stats.TotalProducts,
		&stats.LowStockItems,
		&stats.TotalRevenue,
		&stats.PendingInvoices,
		&stats.TodaySales,
	); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *Store) SalesReport(ctx context.Context, recentLimit int) (domain.SalesReport, error) {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	if recentLimit > 50 {
		recentLimit = 50
	}

	var report domain.SalesReport
	if err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'paid' THEN total ELSE 0 END), 0)::double precision,
			COUNT(*)::int,
			COUNT(CASE WHEN status = 'paid' THEN 1 END)::int,
			COALESCE(SUM(CASE WHEN status IN ('sent', 'overdue') THEN total ELSE 0 END), 0)::double precision
		FROM invoices
		WHERE invoice_type = 'sales'
	`).Scan(
		&report.TotalRevenue,
		&report.TotalInvoices,
		&report.PaidInvoices,
		&report.PendingAmount,
	); err != nil {
		return domain.SalesReport{}, fmt.Errorf("sales report: %w", err)
	}

	recent, err := s.ListInvoices(ctx, service.InvoiceListFilter{
		InvoiceType: string(domain.InvoiceTypeSales),
		Limit:       recentLimit,
	})
	if err != nil {
		return domain.SalesReport{}, err
	}
	report.RecentSales = recent
	return report, nil
}
