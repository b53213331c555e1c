package core

import (
	"context"
	"fmt"
	"time"

	"gestorcloud/internal/db"

	"go.uber.org/zap"
)

// AddSale records s and updates the owning customer's aggregates atomically.
func (r *repository) AddSale(ctx context.Context, s *Sale) (id int64, err error) {
	defer func(start time.Time) { r.observe("add_sale", start, err) }(time.Now())

	now := r.now()
	if s.SaleDate == "" {
		s.SaleDate = now.Format(DateLayout)
	}
	if s.SaleTime == "" {
		s.SaleTime = now.Format(ClockLayout)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.backend.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	customer, err := r.getCustomer(ctx, tx, s.CustomerID)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, &CustomerNotFoundError{CustomerID: s.CustomerID}
	}

	res, err := tx.Exec(ctx, r.stmts.InsertSale, saleInsertParams(s)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale for customer %d: %w", s.CustomerID, err)
	}
	id = res.LastInsertID

	promoted := customer.RecordPurchase(s.TotalValue, now)
	if _, err := r.updateCustomer(ctx, tx, customer); err != nil {
		return 0, fmt.Errorf("failed to update aggregates of customer %d: %w", customer.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	s.ID = id

	r.logger.Debug("sale added",
		zap.Int64("sale_id", id),
		zap.Int64("customer_id", s.CustomerID),
		zap.String("total_value", s.TotalValue.String()),
	)
	if promoted {
		r.metrics.VIPPromoted()
		r.logger.Info("customer promoted to VIP",
			zap.Int64("customer_id", customer.ID),
			zap.String("total_purchases", customer.TotalPurchases.String()),
		)
	}
	return id, nil
}

// ListSalesForCustomer returns a customer's sales by date and time, newest first.
func (r *repository) ListSalesForCustomer(ctx context.Context, customerID int64) (sales []Sale, err error) {
	defer func(start time.Time) { r.observe("list_sales_for_customer", start, err) }(time.Now())

	rows, err := r.backend.Query(ctx, r.stmts.ListSalesForCustomer, db.P("customer_id", customerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list sales of customer %d: %w", customerID, err)
	}
	sales = make([]Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, saleFromRow(row))
	}
	return sales, nil
}

// ListAllSales returns every sale joined with its owner.
func (r *repository) ListAllSales(ctx context.Context) (listings []SaleListing, err error) {
	defer func(start time.Time) { r.observe("list_all_sales", start, err) }(time.Now())

	rows, err := r.backend.Query(ctx, r.stmts.ListAllSales)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return listingsFromRows(rows), nil
}

// ListSalesForDay returns the sales of one day.
func (r *repository) ListSalesForDay(ctx context.Context, day string) (listings []SaleListing, err error) {
	defer func(start time.Time) { r.observe("list_sales_for_day", start, err) }(time.Now())

	if day == "" {
		day = r.now().Format(DateLayout)
	} else if _, perr := time.Parse(DateLayout, day); perr != nil {
		return nil, &ValidationError{Field: "day", Message: "must be YYYY-MM-DD"}
	}

	rows, err := r.backend.Query(ctx, r.stmts.ListSalesForDay, db.P("day", day))
	if err != nil {
		return nil, fmt.Errorf("failed to list sales of %s: %w", day, err)
	}
	return listingsFromRows(rows), nil
}

func listingsFromRows(rows []db.Row) []SaleListing {
	listings := make([]SaleListing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, listingFromRow(row))
	}
	return listings
}
