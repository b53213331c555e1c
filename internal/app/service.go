package app

import (
	"context"

	"gestorcloud/internal/core"
	"gestorcloud/internal/db"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// RegisterCustomer validates and stores a new customer.
	RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*CustomerResult, error)

	// GetCustomerDetail returns a customer with its sales, newest first.
	// A missing id yields *core.CustomerNotFoundError.
	GetCustomerDetail(ctx context.Context, id int64) (*CustomerDetailResult, error)

	// ListCustomers returns every customer ordered by name.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// SearchCustomers matches term against name, email and company.
	SearchCustomers(ctx context.Context, term string) (*CustomerListResult, error)

	// EditCustomer applies the fields set in req on top of the stored customer.
	EditCustomer(ctx context.Context, req EditCustomerRequest) (*CustomerResult, error)

	// RemoveCustomer deletes a customer that owns no sales.
	RemoveCustomer(ctx context.Context, id int64) error

	// RecordSale stores a sale and reports whether it promoted the owner to VIP.
	RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResult, error)

	// ListSales returns every sale with its owner, newest first.
	ListSales(ctx context.Context) (*SaleListResult, error)

	// ListCustomerSales returns one customer's sales, newest first.
	ListCustomerSales(ctx context.Context, customerID int64) (*CustomerSalesResult, error)

	// DaySales returns the sales of day (YYYY-MM-DD, empty for today) with totals.
	DaySales(ctx context.Context, day string) (*DaySalesResult, error)

	// Dashboard gathers the general statistics and the active customers per category.
	Dashboard(ctx context.Context) (*DashboardResult, error)

	// SalesOverview returns the sales statistics.
	SalesOverview(ctx context.Context) (*core.SalesStats, error)

	// Migrate copies the SQLite file at sqlitePath into the postgres store.
	Migrate(ctx context.Context, sqlitePath string) (*core.MigrationReport, error)

	// BackendKind names the store in use.
	BackendKind() db.Kind
}
