package core_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gestorcloud/internal/core"
	"gestorcloud/internal/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepository opens a fresh SQLite store in a temp dir with the clock fixed
// at fixedNow.
func setupRepository(t *testing.T) (core.Repository, db.Backend) {
	t.Helper()
	ctx := context.Background()

	backend, err := db.Open(ctx, db.Options{
		Kind:       db.KindEmbedded,
		SQLitePath: filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo := core.NewRepository(backend, core.WithClock(func() time.Time { return fixedNow }))
	return repo, backend
}

func addCustomer(t *testing.T, repo core.Repository, name, email string) int64 {
	t.Helper()
	c, err := core.NewCustomer(core.CustomerInput{
		FullName: name,
		Age:      30,
		Address:  "Calle 1",
		Email:    email,
		Phone:    "3001234567",
	}, fixedNow)
	require.NoError(t, err)

	id, err := repo.AddCustomer(context.Background(), c)
	require.NoError(t, err)
	return id
}

func addSale(t *testing.T, repo core.Repository, customerID int64, date, clock string, total int64) int64 {
	t.Helper()
	id, err := repo.AddSale(context.Background(), &core.Sale{
		CustomerID: customerID,
		SaleDate:   date,
		SaleTime:   clock,
		Products:   "Widget",
		TotalValue: decimal.NewFromInt(total),
	})
	require.NoError(t, err)
	return id
}

// ── Customers ────────────────────────────────────────────────────────────────

func TestAddCustomer_RoundTrip(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	c := &core.Customer{
		FullName: "Ana Ruiz",
		Age:      34,
		Address:  "Calle 1",
		Email:    "Ana@X.com",
		Phone:    "(300) 123-4567",
		Company:  "Acme",
		Notes:    "prefers email",
	}
	id, err := repo.AddCustomer(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, c.ID)

	got, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana Ruiz", got.FullName)
	assert.Equal(t, "ana@x.com", got.Email)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, core.CategoryRegular, got.Category)
	assert.Equal(t, core.StatusActive, got.Status)
	assert.Equal(t, "2024-05-15", got.RegisteredOn)
	assert.Equal(t, "2024-05-15 10:30", got.UpdatedAt)
	assert.True(t, got.TotalPurchases.IsZero())
	assert.Nil(t, got.LastPurchase)
}

func TestGetCustomer_MissingReturnsNil(t *testing.T) {
	repo, _ := setupRepository(t)

	got, err := repo.GetCustomer(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddCustomer_DuplicateEmail(t *testing.T) {
	repo, _ := setupRepository(t)
	addCustomer(t, repo, "Ana Ruiz", "ana@x.com")

	_, err := repo.AddCustomer(context.Background(), &core.Customer{
		FullName: "Ana Otra",
		Age:      40,
		Address:  "Calle 2",
		Email:    "ANA@x.com",
		Phone:    "3009999999",
	})
	require.Error(t, err)
	assert.True(t, core.IsDuplicateEmail(err))

	customers, err := repo.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestAddCustomer_RejectsInvalid(t *testing.T) {
	repo, _ := setupRepository(t)

	_, err := repo.AddCustomer(context.Background(), &core.Customer{
		FullName: "Ana Ruiz",
		Age:      0,
		Address:  "Calle 1",
		Email:    "ana@x.com",
		Phone:    "3001234567",
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestListCustomers_OrderedByName(t *testing.T) {
	repo, _ := setupRepository(t)
	addCustomer(t, repo, "Carlos Mejia", "carlos@x.com")
	addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addCustomer(t, repo, "Beatriz Gomez", "bea@x.com")

	customers, err := repo.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, "Ana Ruiz", customers[0].FullName)
	assert.Equal(t, "Beatriz Gomez", customers[1].FullName)
	assert.Equal(t, "Carlos Mejia", customers[2].FullName)
}

func TestSearchCustomers_CaseInsensitive(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addCustomer(t, repo, "Luis Diaz", "luis@x.com")

	c := &core.Customer{
		FullName: "Pedro Paz",
		Age:      50,
		Address:  "Calle 3",
		Email:    "pedro@x.com",
		Phone:    "3001112222",
		Company:  "Mariana Imports",
	}
	_, err := repo.AddCustomer(ctx, c)
	require.NoError(t, err)

	found, err := repo.SearchCustomers(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Ana Ruiz", found[0].FullName)
	assert.Equal(t, "Pedro Paz", found[1].FullName)

	found, err = repo.SearchCustomers(ctx, "LUIS@")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Luis Diaz", found[0].FullName)

	found, err = repo.SearchCustomers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearchCustomers_WildcardsMatchLiterally(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addCustomer(t, repo, "Luis Diaz", "luis_d@x.com")

	c := &core.Customer{
		FullName: "Pedro Paz",
		Age:      50,
		Address:  "Calle 3",
		Email:    "pedro@x.com",
		Phone:    "3001112222",
		Company:  "100% Natural",
	}
	_, err := repo.AddCustomer(ctx, c)
	require.NoError(t, err)

	tests := []struct {
		term string
		want []string
	}{
		{"%", []string{"Pedro Paz"}},
		{"_", []string{"Luis Diaz"}},
		{"s_d", []string{"Luis Diaz"}},
		{`\`, nil},
		{"a%z", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			found, err := repo.SearchCustomers(ctx, tt.term)
			require.NoError(t, err)
			var names []string
			for _, f := range found {
				names = append(names, f.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	backend, err := db.Open(ctx, db.Options{
		Kind:       db.KindEmbedded,
		SQLitePath: filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	now := fixedNow
	repo := core.NewRepository(backend, core.WithClock(func() time.Time { return now }))
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")

	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	c.Phone = "3107654321"
	c.Status = core.StatusInactive

	now = fixedNow.Add(2 * time.Hour)
	ok, err := repo.UpdateCustomer(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "3107654321", got.Phone)
	assert.Equal(t, core.StatusInactive, got.Status)
	assert.Equal(t, "2024-05-15 12:30", got.UpdatedAt)
	assert.Equal(t, "2024-05-15", got.RegisteredOn)
}

func TestUpdateCustomer_MissingReturnsFalse(t *testing.T) {
	repo, _ := setupRepository(t)

	c, err := core.NewCustomer(validInput(), fixedNow)
	require.NoError(t, err)
	c.ID = 99

	ok, err := repo.UpdateCustomer(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateCustomer_EmailTakenByAnother(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	id := addCustomer(t, repo, "Luis Diaz", "luis@x.com")

	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	c.Email = "ana@x.com"

	_, err = repo.UpdateCustomer(ctx, c)
	assert.True(t, core.IsDuplicateEmail(err))
}

func TestDeleteCustomer(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")

	ok, err := repo.DeleteCustomer(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = repo.DeleteCustomer(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCustomer_WithSalesIsRefused(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addSale(t, repo, id, "2024-05-15", "09:00", 100)
	addSale(t, repo, id, "2024-05-15", "09:30", 200)

	ok, err := repo.DeleteCustomer(ctx, id)
	assert.False(t, ok)
	var hasSales *core.CustomerHasSalesError
	require.ErrorAs(t, err, &hasSales)
	assert.Equal(t, 2, hasSales.Sales)

	got, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// ── Sales ────────────────────────────────────────────────────────────────────

func TestAddSale_UpdatesAggregates(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	require.Equal(t, int64(1), id)

	saleID, err := repo.AddSale(ctx, &core.Sale{
		CustomerID: id,
		Products:   "Laptop",
		TotalValue: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saleID)

	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(c.TotalPurchases))
	assert.Equal(t, 1, c.PurchaseCount)
	require.NotNil(t, c.LastPurchase)
	assert.Equal(t, "2024-05-15", *c.LastPurchase)
	assert.Equal(t, core.CategoryRegular, c.Category)

	sales, err := repo.ListSalesForCustomer(ctx, id)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "2024-05-15", sales[0].SaleDate)
	assert.Equal(t, "10:30", sales[0].SaleTime)
	assert.Equal(t, core.PaymentCash, sales[0].PaymentMethod)
}

func TestAddSale_PromotesToVIPOnce(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")

	addSale(t, repo, id, "2024-05-10", "09:00", 600_000)
	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryRegular, c.Category)

	addSale(t, repo, id, "2024-05-11", "09:00", 400_000)
	c, err = repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryVIP, c.Category)
	assert.True(t, core.VIPDiscount.Equal(c.VIPDiscount))

	c.Category = core.CategoryRegular
	_, err = repo.UpdateCustomer(ctx, c)
	require.NoError(t, err)

	addSale(t, repo, id, "2024-05-12", "09:00", 1)
	c, err = repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryVIP, c.Category, "threshold still met")
	assert.Equal(t, 3, c.PurchaseCount)
}

func TestAddSale_VIPNeverDemoted(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addSale(t, repo, id, "2024-05-10", "09:00", 1_000_000)

	addSale(t, repo, id, "2024-05-11", "09:00", 5)
	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryVIP, c.Category)
}

func TestAddSale_UnknownCustomer(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	_, err := repo.AddSale(ctx, &core.Sale{
		CustomerID: 7,
		Products:   "Widget",
		TotalValue: decimal.NewFromInt(10),
	})
	var notFound *core.CustomerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(7), notFound.CustomerID)

	sales, err := repo.ListAllSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestAddSale_InvalidLeavesCustomerUntouched(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")

	_, err := repo.AddSale(ctx, &core.Sale{
		CustomerID: id,
		Products:   "Widget",
		TotalValue: decimal.NewFromInt(10),
		Discount:   decimal.NewFromInt(20),
	})
	assert.True(t, core.IsValidation(err))

	c, err := repo.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, c.PurchaseCount)
	assert.True(t, c.TotalPurchases.IsZero())
}

func TestListSalesForCustomer_NewestFirst(t *testing.T) {
	repo, _ := setupRepository(t)
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addSale(t, repo, id, "2024-05-01", "09:00", 10)
	addSale(t, repo, id, "2024-05-03", "08:00", 30)
	addSale(t, repo, id, "2024-05-03", "17:45", 40)
	addSale(t, repo, id, "2024-05-02", "12:00", 20)

	sales, err := repo.ListSalesForCustomer(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, sales, 4)

	var totals []int64
	for _, s := range sales {
		totals = append(totals, s.TotalValue.IntPart())
	}
	assert.Equal(t, []int64{40, 30, 20, 10}, totals)
}

func TestListAllSales_LabelsDeletedCustomer(t *testing.T) {
	repo, backend := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addSale(t, repo, id, "2024-05-14", "09:00", 10)

	_, err := backend.Exec(ctx, backend.Statements().InsertSale,
		db.P("customer_id", int64(99)),
		db.P("sale_date", "2024-05-15"),
		db.P("sale_time", "11:00"),
		db.P("products", "Orphan"),
		db.P("total_value", 25.0),
		db.P("discount", 0.0),
		db.P("payment_method", "Cash"),
		db.P("seller", ""),
		db.P("notes", ""),
	)
	require.NoError(t, err)

	listings, err := repo.ListAllSales(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Orphan", listings[0].Sale.Products)
	assert.Equal(t, core.DeletedCustomerLabel, listings[0].Customer.Name)
	assert.Empty(t, listings[0].Customer.Email)

	assert.Equal(t, "Ana Ruiz", listings[1].Customer.Name)
	assert.Equal(t, "ana@x.com", listings[1].Customer.Email)
	assert.Equal(t, core.CategoryRegular, listings[1].Customer.Category)
}

func TestListSalesForDay(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	id := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	addSale(t, repo, id, "2024-05-14", "09:00", 10)
	addSale(t, repo, id, "2024-05-15", "08:15", 20)
	addSale(t, repo, id, "2024-05-15", "16:40", 30)

	today, err := repo.ListSalesForDay(ctx, "")
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "16:40", today[0].Sale.SaleTime)
	assert.Equal(t, "08:15", today[1].Sale.SaleTime)

	yesterday, err := repo.ListSalesForDay(ctx, "2024-05-14")
	require.NoError(t, err)
	assert.Len(t, yesterday, 1)

	_, err = repo.ListSalesForDay(ctx, "14/05/2024")
	assert.True(t, core.IsValidation(err))
}

// ── Statistics ───────────────────────────────────────────────────────────────

func TestStatistics(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	ana := addCustomer(t, repo, "Ana Ruiz", "ana@x.com")
	luis := addCustomer(t, repo, "Luis Diaz", "luis@x.com")
	idle := addCustomer(t, repo, "Marta Paz", "marta@x.com")

	addSale(t, repo, ana, "2024-05-02", "10:00", 1_200_000)
	addSale(t, repo, luis, "2024-05-03", "10:00", 300)
	addSale(t, repo, luis, "2024-04-28", "10:00", 500)

	c, err := repo.GetCustomer(ctx, idle)
	require.NoError(t, err)
	c.Status = core.StatusInactive
	_, err = repo.UpdateCustomer(ctx, c)
	require.NoError(t, err)

	general, err := repo.GeneralStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, general.ActiveCustomers)
	assert.Equal(t, 1, general.VIPCustomers)
	assert.Equal(t, 2, general.MonthSales)
	assert.InDelta(t, 1_200_300, general.MonthRevenue, 0.001)
	require.Len(t, general.TopCustomers, 2)
	assert.Equal(t, "Ana Ruiz", general.TopCustomers[0].Name)
	assert.InDelta(t, 1_200_000, general.TopCustomers[0].TotalPurchases, 0.001)
	assert.Equal(t, "Luis Diaz", general.TopCustomers[1].Name)

	sales, err := repo.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sales.TotalSales)
	assert.Equal(t, 2, sales.MonthSales)
	assert.InDelta(t, 1_200_300, sales.MonthRevenue, 0.001)
	assert.InDelta(t, 1_200_800.0/3, sales.AverageSale, 0.001)

	counts, err := repo.CustomerCountsByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[core.Category]int{core.CategoryVIP: 1, core.CategoryRegular: 1}, counts)
}

func TestStatistics_EmptyStore(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	general, err := repo.GeneralStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, general.ActiveCustomers)
	assert.Zero(t, general.MonthRevenue)
	assert.Empty(t, general.TopCustomers)

	sales, err := repo.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, sales.TotalSales)
	assert.Zero(t, sales.AverageSale)
}

// ── Migration ────────────────────────────────────────────────────────────────

func TestMigrateFrom_RequiresServerBackend(t *testing.T) {
	repo, _ := setupRepository(t)
	assert.Equal(t, db.KindEmbedded, repo.BackendKind())

	_, err := repo.MigrateFrom(context.Background(), "whatever.db")
	assert.ErrorIs(t, err, core.ErrMigrationTarget)
}
