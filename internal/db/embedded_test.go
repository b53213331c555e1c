package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEmbedded(t *testing.T) *EmbeddedBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "crm.db")
	b := NewEmbedded(path)
	require.NoError(t, b.Connect(context.Background()))
	require.NoError(t, b.CreateSchema(context.Background()))
	t.Cleanup(func() { b.Close() })
	return b
}

func insertCustomer(t *testing.T, q Querier, email string) Result {
	t.Helper()
	res, err := q.Exec(context.Background(), embeddedStatements().InsertCustomer,
		P("full_name", "Ana Ruiz"), P("age", 34), P("address", "Calle 1"), P("email", email),
		P("phone", "3001234567"), P("company", ""), P("category", "Regular"), P("status", "Active"),
		P("registered_on", "2024-05-01"), P("updated_at", "2024-05-01 09:30"), P("notes", ""),
		P("total_purchases", 0), P("purchase_count", 0), P("last_purchase", nil), P("vip_discount", 0),
	)
	require.NoError(t, err)
	return res
}

func TestEmbedded_ConnectCreatesDirectoryAndReuses(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()

	assert.Equal(t, KindEmbedded, b.Kind())
	assert.FileExists(t, b.Path())
	require.NoError(t, b.Connect(ctx))
	require.NoError(t, b.CreateSchema(ctx), "schema creation must be repeatable")
}

func TestEmbedded_InsertTracksLastID(t *testing.T) {
	b := setupEmbedded(t)

	first := insertCustomer(t, b, "ana@x.com")
	second := insertCustomer(t, b, "luis@x.com")

	assert.Equal(t, int64(1), first.LastInsertID)
	assert.Equal(t, int64(2), second.LastInsertID)
	assert.Equal(t, int64(1), second.RowsAffected)
	assert.Equal(t, int64(2), b.LastInsertID())
}

func TestEmbedded_QueryReturnsRowsByColumn(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()
	insertCustomer(t, b, "ana@x.com")

	rows, err := b.Query(ctx, b.Statements().GetCustomer, P("id", int64(1)))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(1), row.Int64("id"))
	assert.Equal(t, "Ana Ruiz", row.String("full_name"))
	assert.Equal(t, 34, row.Int("age"))
	assert.Equal(t, "2024-05-01", row.Date("registered_on"))
	assert.Equal(t, "2024-05-01 09:30", row.Timestamp("updated_at"))
	assert.Nil(t, row.NullDate("last_purchase"))
	assert.True(t, row.Decimal("total_purchases").IsZero())
}

func TestEmbedded_DuplicateEmailIsUniqueViolation(t *testing.T) {
	b := setupEmbedded(t)
	insertCustomer(t, b, "ana@x.com")

	_, err := b.Exec(context.Background(), b.Statements().InsertCustomer,
		P("full_name", "Other"), P("age", 40), P("address", "Calle 2"), P("email", "ana@x.com"),
		P("phone", "3000000000"), P("company", ""), P("category", "Regular"), P("status", "Active"),
		P("registered_on", "2024-05-01"), P("updated_at", "2024-05-01 09:30"), P("notes", ""),
		P("total_purchases", 0), P("purchase_count", 0), P("last_purchase", nil), P("vip_discount", 0),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUniqueViolation), "got %v", err)
}

func TestEmbedded_RollbackDiscardsWrites(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()

	tx, err := b.Begin(ctx)
	require.NoError(t, err)
	insertCustomer(t, tx, "ana@x.com")
	require.NoError(t, tx.Rollback(ctx))

	rows, err := b.Query(ctx, b.Statements().CountCustomers)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows[0].Int64("n"))
}

func TestEmbedded_CommitPersistsWrites(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()

	tx, err := b.Begin(ctx)
	require.NoError(t, err)
	insertCustomer(t, tx, "ana@x.com")
	require.NoError(t, tx.Commit(ctx))

	rows, err := b.Query(ctx, b.Statements().CountCustomers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0].Int64("n"))
}

func TestEmbedded_MonthFilterUsesPrefix(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()
	insertCustomer(t, b, "ana@x.com")

	for _, date := range []string{"2024-05-02", "2024-05-30", "2024-06-01"} {
		_, err := b.Exec(ctx, b.Statements().InsertSale,
			P("customer_id", int64(1)), P("sale_date", date), P("sale_time", "10:00"),
			P("products", "Widget"), P("total_value", 100.5), P("discount", 0),
			P("payment_method", "Cash"), P("seller", ""), P("notes", ""),
		)
		require.NoError(t, err)
	}

	rows, err := b.Query(ctx, b.Statements().MonthSalesSummary, P("month", "2024-05"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].Int64("n"))
	assert.Equal(t, 201.0, rows[0].Float64("revenue"))
}

func TestEmbedded_ClosedBackendRejectsCalls(t *testing.T) {
	b := setupEmbedded(t)
	ctx := context.Background()
	require.NoError(t, b.Close())

	_, err := b.Query(ctx, b.Statements().CountCustomers)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Exec(ctx, b.Statements().DeleteCustomer, P("id", int64(1)))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Connect(ctx), ErrClosed)
	assert.NoError(t, b.Close())
}

func TestEmbedded_QueryHonoursCancelledContext(t *testing.T) {
	b := setupEmbedded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Query(ctx, b.Statements().CountCustomers)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedded_SearchEscapedWildcardsMatchLiterally(t *testing.T) {
	b := setupEmbedded(t)
	insertCustomer(t, b, "ana@x.com")
	insertCustomer(t, b, "a_b@x.com")

	rows, err := b.Query(context.Background(), b.Statements().SearchCustomers, P("pattern", `%\_%`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a_b@x.com", rows[0].String("email"))
}

// Sales may reference a missing customer id; the repository guards inserts
// and listings label such sales as belonging to a deleted customer.
func TestEmbedded_ForeignKeysNotEnforced(t *testing.T) {
	b := setupEmbedded(t)

	_, err := b.Exec(context.Background(), b.Statements().InsertSale,
		P("customer_id", int64(999)), P("sale_date", "2024-05-01"), P("sale_time", "10:00"),
		P("products", "Widget"), P("total_value", "10.00"), P("discount", "0"),
		P("payment_method", "Cash"), P("seller", ""), P("notes", ""),
	)
	require.NoError(t, err)

	rows, err := b.Query(context.Background(), b.Statements().CountSales)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0].Int64("n"))
}
