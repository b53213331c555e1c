package core

import (
	"context"
	"time"

	"gestorcloud/internal/db"
	"gestorcloud/internal/observability"

	"go.uber.org/zap"
)

// Repository is the single entry point to customers and sales. It behaves the
// same on either backend; the SQL dialect comes from the backend it is bound to.
// Nothing is cached between calls.
type Repository interface {
	// ── Customers ────────────────────────────────────────────────────────────

	// AddCustomer validates and inserts c, sets c.ID and returns it.
	// A taken email yields *DuplicateEmailError.
	AddCustomer(ctx context.Context, c *Customer) (int64, error)

	// GetCustomer returns nil, nil when no customer has the id.
	GetCustomer(ctx context.Context, id int64) (*Customer, error)

	// ListCustomers returns every customer ordered by full name.
	ListCustomers(ctx context.Context) ([]Customer, error)

	// SearchCustomers matches term case-insensitively against name, email and company.
	SearchCustomers(ctx context.Context, term string) ([]Customer, error)

	// UpdateCustomer refreshes c.UpdatedAt and writes c. It returns false when no
	// row has c.ID.
	UpdateCustomer(ctx context.Context, c *Customer) (bool, error)

	// DeleteCustomer removes a customer that owns no sales. A customer with sales
	// yields *CustomerHasSalesError; a missing one returns false.
	DeleteCustomer(ctx context.Context, id int64) (bool, error)

	// ── Sales ────────────────────────────────────────────────────────────────

	// AddSale inserts s and folds its value into the owner's aggregates in one
	// transaction, promoting the owner to VIP when the threshold is reached.
	AddSale(ctx context.Context, s *Sale) (int64, error)

	// ListSalesForCustomer returns the customer's sales, newest first.
	ListSalesForCustomer(ctx context.Context, customerID int64) ([]Sale, error)

	// ListAllSales returns every sale with its owner snapshot, newest first.
	ListAllSales(ctx context.Context) ([]SaleListing, error)

	// ListSalesForDay returns the sales of day (YYYY-MM-DD, empty for today),
	// latest time first.
	ListSalesForDay(ctx context.Context, day string) ([]SaleListing, error)

	// ── Statistics ───────────────────────────────────────────────────────────

	GeneralStatistics(ctx context.Context) (*GeneralStats, error)
	SalesStatistics(ctx context.Context) (*SalesStats, error)
	CustomerCountsByCategory(ctx context.Context) (map[Category]int, error)

	// ── Migration ────────────────────────────────────────────────────────────

	// MigrateFrom copies every record of the SQLite file at path into the
	// postgres store this repository is bound to.
	MigrateFrom(ctx context.Context, path string) (*MigrationReport, error)

	// BackendKind names the active backend.
	BackendKind() db.Kind
}

type repository struct {
	backend db.Backend
	stmts   *db.Statements
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option customises a repository.
type Option func(*repository)

func WithLogger(logger *zap.Logger) Option {
	return func(r *repository) { r.logger = logger }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *repository) { r.metrics = metrics }
}

// WithClock replaces time.Now, which decides "today" and "this month".
func WithClock(now func() time.Time) Option {
	return func(r *repository) { r.now = now }
}

// NewRepository binds a Repository to a connected backend.
func NewRepository(backend db.Backend, opts ...Option) Repository {
	r := &repository{
		backend: backend,
		stmts:   backend.Statements(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) BackendKind() db.Kind {
	return r.backend.Kind()
}

func (r *repository) observe(operation string, start time.Time, err error) {
	r.metrics.ObserveOperation(operation, string(r.backend.Kind()), start, err)
}
