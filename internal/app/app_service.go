package app

import (
	"context"
	"time"

	"gestorcloud/internal/core"
	"gestorcloud/internal/db"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type appService struct {
	repo   core.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(repo core.Repository, logger *zap.Logger) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *appService) BackendKind() db.Kind {
	return s.repo.BackendKind()
}

// ── Customers ────────────────────────────────────────────────────────────────

// RegisterCustomer validates and stores a new customer.
func (s *appService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*CustomerResult, error) {
	c, err := core.NewCustomer(core.CustomerInput{
		FullName: req.FullName,
		Age:      req.Age,
		Address:  req.Address,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Category: core.Category(req.Category),
		Status:   core.Status(req.Status),
		Notes:    req.Notes,
	}, s.now())
	if err != nil {
		return nil, err
	}

	// Let the repository stamp dates with its own clock.
	c.RegisteredOn, c.UpdatedAt = "", ""
	if _, err := s.repo.AddCustomer(ctx, c); err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

// GetCustomerDetail returns a customer with its sales.
func (s *appService) GetCustomerDetail(ctx context.Context, id int64) (*CustomerDetailResult, error) {
	c, err := s.requireCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSalesForCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerDetailResult{
		Customer:              c,
		Sales:                 sales,
		DaysSinceLastPurchase: c.DaysSinceLastPurchase(s.now()),
	}, nil
}

// ListCustomers returns every customer ordered by name.
func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers, Total: len(customers)}, nil
}

// SearchCustomers matches term against name, email and company.
func (s *appService) SearchCustomers(ctx context.Context, term string) (*CustomerListResult, error) {
	customers, err := s.repo.SearchCustomers(ctx, term)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers, Total: len(customers)}, nil
}

// EditCustomer merges the set fields of req into the stored customer.
func (s *appService) EditCustomer(ctx context.Context, req EditCustomerRequest) (*CustomerResult, error) {
	c, err := s.requireCustomer(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	setString(&c.FullName, req.FullName)
	setString(&c.Address, req.Address)
	setString(&c.Email, req.Email)
	setString(&c.Phone, req.Phone)
	setString(&c.Company, req.Company)
	setString(&c.Notes, req.Notes)
	if req.Age != nil {
		c.Age = *req.Age
	}
	if req.Category != nil {
		c.Category = core.Category(*req.Category)
	}
	if req.Status != nil {
		c.Status = core.Status(*req.Status)
	}

	ok, err := s.repo.UpdateCustomer(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &core.CustomerNotFoundError{CustomerID: req.ID}
	}
	return &CustomerResult{Customer: c}, nil
}

// RemoveCustomer deletes a customer that owns no sales.
func (s *appService) RemoveCustomer(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &core.CustomerNotFoundError{CustomerID: id}
	}
	s.logger.Info("customer removed", zap.Int64("customer_id", id))
	return nil
}

func (s *appService) requireCustomer(ctx context.Context, id int64) (*core.Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &core.CustomerNotFoundError{CustomerID: id}
	}
	return c, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ── Sales ────────────────────────────────────────────────────────────────────

// RecordSale stores a sale and reports whether the owner was promoted to VIP.
func (s *appService) RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResult, error) {
	before, err := s.requireCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	sale := &core.Sale{
		CustomerID:    req.CustomerID,
		SaleDate:      req.SaleDate,
		SaleTime:      req.SaleTime,
		Products:      req.Products,
		TotalValue:    req.TotalValue,
		Discount:      req.Discount,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
		Seller:        req.Seller,
		Notes:         req.Notes,
	}
	if _, err := s.repo.AddSale(ctx, sale); err != nil {
		return nil, err
	}

	after, err := s.requireCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{
		Sale:          sale,
		Customer:      after,
		PromotedToVIP: !before.IsVIP() && after.IsVIP(),
	}, nil
}

// ListSales returns every sale with its owner.
func (s *appService) ListSales(ctx context.Context) (*SaleListResult, error) {
	sales, err := s.repo.ListAllSales(ctx)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales, Total: len(sales)}, nil
}

// ListCustomerSales returns one customer's sales.
func (s *appService) ListCustomerSales(ctx context.Context, customerID int64) (*CustomerSalesResult, error) {
	if _, err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSalesForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &CustomerSalesResult{CustomerID: customerID, Sales: sales, Total: len(sales)}, nil
}

// DaySales returns the sales of one day with count, revenue and average.
func (s *appService) DaySales(ctx context.Context, day string) (*DaySalesResult, error) {
	sales, err := s.repo.ListSalesForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if day == "" {
		day = s.now().Format(core.DateLayout)
	}

	result := &DaySalesResult{
		Day:     day,
		Sales:   sales,
		Count:   len(sales),
		Revenue: decimal.Zero,
		Average: decimal.Zero,
	}
	for _, l := range sales {
		result.Revenue = result.Revenue.Add(l.Sale.TotalValue)
	}
	if result.Count > 0 {
		result.Average = result.Revenue.DivRound(decimal.NewFromInt(int64(result.Count)), 2)
	}
	return result, nil
}

// ── Statistics ───────────────────────────────────────────────────────────────

// Dashboard gathers the general statistics and the active customers per category.
func (s *appService) Dashboard(ctx context.Context) (*DashboardResult, error) {
	general, err := s.repo.GeneralStatistics(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CustomerCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{
		Backend:    s.repo.BackendKind(),
		General:    general,
		Categories: categories,
	}, nil
}

// SalesOverview returns the sales statistics.
func (s *appService) SalesOverview(ctx context.Context) (*core.SalesStats, error) {
	return s.repo.SalesStatistics(ctx)
}

// ── Migration ────────────────────────────────────────────────────────────────

// Migrate copies the SQLite file at sqlitePath into the postgres store.
func (s *appService) Migrate(ctx context.Context, sqlitePath string) (*core.MigrationReport, error) {
	start := time.Now()
	report, err := s.repo.MigrateFrom(ctx, sqlitePath)
	if err != nil {
		return report, err
	}
	s.logger.Info("migration finished",
		zap.String("source", sqlitePath),
		zap.Bool("verified", report.Verification.Passed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}
