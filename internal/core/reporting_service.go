package core

import (
	"context"
	"fmt"
	"time"

	"gestorcloud/internal/db"
)

// TopCustomer is one entry of the top-5 ranking by cumulative purchases.
type TopCustomer struct {
	Name           string  `json:"name"`
	TotalPurchases float64 `json:"total_purchases"`
}

// GeneralStats summarises customers and the current month's sales.
type GeneralStats struct {
	ActiveCustomers int           `json:"active_customers"`
	VIPCustomers    int           `json:"vip_customers"`
	MonthSales      int           `json:"month_sales"`
	MonthRevenue    float64       `json:"month_revenue"`
	TopCustomers    []TopCustomer `json:"top_customers"`
}

// SalesStats summarises all sales and the current month's.
type SalesStats struct {
	TotalSales   int     `json:"total_sales"`
	MonthSales   int     `json:"month_sales"`
	MonthRevenue float64 `json:"month_revenue"`
	AverageSale  float64 `json:"average_sale"`
}

// GeneralStatistics counts active and VIP customers, this month's sales and
// revenue, and ranks the five active customers with the highest purchases.
func (r *repository) GeneralStatistics(ctx context.Context) (stats *GeneralStats, err error) {
	defer func(start time.Time) { r.observe("general_statistics", start, err) }(time.Now())

	stats = &GeneralStats{TopCustomers: []TopCustomer{}}

	if stats.ActiveCustomers, err = countRows(ctx, r.backend, r.stmts.CountCustomersByStatus, db.P("status", string(StatusActive))); err != nil {
		return nil, fmt.Errorf("failed to count active customers: %w", err)
	}
	if stats.VIPCustomers, err = countRows(ctx, r.backend, r.stmts.CountCustomersByCategory, db.P("category", string(CategoryVIP))); err != nil {
		return nil, fmt.Errorf("failed to count VIP customers: %w", err)
	}

	month, err := r.monthSummary(ctx)
	if err != nil {
		return nil, err
	}
	stats.MonthSales = month.Int("n")
	stats.MonthRevenue = month.Float64("revenue")

	rows, err := r.backend.Query(ctx, r.stmts.TopCustomers, db.P("status", string(StatusActive)))
	if err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}
	for _, row := range rows {
		stats.TopCustomers = append(stats.TopCustomers, TopCustomer{
			Name:           row.String("full_name"),
			TotalPurchases: row.Float64("total_purchases"),
		})
	}
	return stats, nil
}

// SalesStatistics returns total and monthly sale counts, monthly revenue and the
// average sale value.
func (r *repository) SalesStatistics(ctx context.Context) (stats *SalesStats, err error) {
	defer func(start time.Time) { r.observe("sales_statistics", start, err) }(time.Now())

	rows, err := r.backend.Query(ctx, r.stmts.SalesSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise sales: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sales summary returned no rows")
	}

	month, err := r.monthSummary(ctx)
	if err != nil {
		return nil, err
	}

	return &SalesStats{
		TotalSales:   rows[0].Int("n"),
		MonthSales:   month.Int("n"),
		MonthRevenue: month.Float64("revenue"),
		AverageSale:  rows[0].Float64("average"),
	}, nil
}

// CustomerCountsByCategory counts active customers per category.
func (r *repository) CustomerCountsByCategory(ctx context.Context) (counts map[Category]int, err error) {
	defer func(start time.Time) { r.observe("customer_counts_by_category", start, err) }(time.Now())

	rows, err := r.backend.Query(ctx, r.stmts.CategoryBreakdown, db.P("status", string(StatusActive)))
	if err != nil {
		return nil, fmt.Errorf("failed to count customers by category: %w", err)
	}
	counts = make(map[Category]int, len(rows))
	for _, row := range rows {
		counts[Category(row.String("category"))] = row.Int("n")
	}
	return counts, nil
}

func (r *repository) monthSummary(ctx context.Context) (db.Row, error) {
	month := r.now().Format("2006-01")
	rows, err := r.backend.Query(ctx, r.stmts.MonthSalesSummary, db.P("month", month))
	if err != nil {
		return nil, fmt.Errorf("failed to summarise sales of %s: %w", month, err)
	}
	if len(rows) == 0 {
		return db.Row{}, nil
	}
	return rows[0], nil
}
