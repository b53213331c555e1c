package cli_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/app"
	"gestorcloud/internal/core"
	"gestorcloud/internal/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) app.ApplicationService {
	t.Helper()
	backend, err := db.Open(context.Background(), db.Options{
		Kind:       db.KindEmbedded,
		SQLitePath: filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return app.NewAppService(core.NewRepository(backend), nil)
}

func run(t *testing.T, svc app.ApplicationService, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cli.Run(context.Background(), svc, args, &out)
	return out.String(), err
}

func seed(t *testing.T, svc app.ApplicationService) int64 {
	t.Helper()
	ctx := context.Background()
	res, err := svc.RegisterCustomer(ctx, app.RegisterCustomerRequest{
		FullName: "Ana Ruiz",
		Age:      34,
		Address:  "Calle 1",
		Email:    "ana@x.com",
		Phone:    "3001234567",
		Company:  "Acme",
	})
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, app.RecordSaleRequest{
		CustomerID: res.Customer.ID,
		SaleDate:   "2024-05-15",
		SaleTime:   "09:00",
		Products:   "Laptop",
		TotalValue: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	return res.Customer.ID
}

func TestRun_ListAndSearch(t *testing.T) {
	svc := setupService(t)
	seed(t, svc)

	out, err := run(t, svc, "customers")
	require.NoError(t, err)
	assert.Contains(t, out, "CUSTOMERS (1)")
	assert.Contains(t, out, "ana@x.com")

	out, err = run(t, svc, "find", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Ruiz")

	out, err = run(t, svc, "search", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No customers found.")
}

func TestRun_CustomerDetailAndSales(t *testing.T) {
	svc := setupService(t)
	id := seed(t, svc)

	out, err := run(t, svc, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "CUSTOMER #1")
	assert.Contains(t, out, "2500.00 in 1 sales")
	assert.Contains(t, out, "Laptop")

	out, err = run(t, svc, "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "ALL SALES (1)")

	out, err = run(t, svc, "v", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SALES OF CUSTOMER #1 (1)")

	out, err = run(t, svc, "today", "2024-05-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue: 2500.00")

	_, err = run(t, svc, "customer", "99")
	var notFound *core.CustomerNotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = run(t, svc, "delete", "1")
	var hasSales *core.CustomerHasSalesError
	require.ErrorAs(t, err, &hasSales)
	assert.Equal(t, id, hasSales.CustomerID)
}

func TestRun_Statistics(t *testing.T) {
	svc := setupService(t)
	seed(t, svc)

	out, err := run(t, svc, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "GENERAL STATISTICS")
	assert.Contains(t, out, "Backend:             sqlite")

	out, err = run(t, svc, "ss")
	require.NoError(t, err)
	assert.Contains(t, out, "Total sales:         1")
}

func TestRun_Delete(t *testing.T) {
	svc := setupService(t)
	_, err := svc.RegisterCustomer(context.Background(), app.RegisterCustomerRequest{
		FullName: "Luis Gomez", Age: 40, Address: "Calle 2", Email: "luis@x.com", Phone: "3007654321",
	})
	require.NoError(t, err)

	out, err := run(t, svc, "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Customer 1 deleted.")
}

func TestRun_UsageErrors(t *testing.T) {
	svc := setupService(t)

	cases := [][]string{
		nil,
		{"bogus"},
		{"search"},
		{"show"},
		{"show", "abc"},
		{"delete", "-3"},
		{"migrate"},
	}
	for _, args := range cases {
		_, err := run(t, svc, args...)
		assert.True(t, errors.Is(err, cli.ErrUsage), "args %v: %v", args, err)
	}
}

func TestRun_MigrateRequiresPostgres(t *testing.T) {
	svc := setupService(t)

	_, err := run(t, svc, "migrate", "/tmp/source.db")
	assert.ErrorIs(t, err, core.ErrMigrationTarget)
}
