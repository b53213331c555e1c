package db

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *ServerBackend {
	t.Helper()
	_ = godotenv.Load("../../.env")

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	b := NewServer(url, DefaultPoolLimits)
	require.NoError(t, b.Connect(ctx))
	require.NoError(t, b.CreateSchema(ctx))
	_, err := b.Exec(ctx, "TRUNCATE TABLE sales, customers RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	t.Cleanup(func() { b.Close() })
	return b
}

func serverCustomerParams(email string) []Param {
	return []Param{
		P("full_name", "Ana Ruiz"), P("age", 34), P("address", "Calle 1"), P("email", email),
		P("phone", "3001234567"), P("company", "Acme"), P("category", "Regular"), P("status", "Active"),
		P("registered_on", "2024-05-01"), P("updated_at", "2024-05-01 09:30"), P("notes", ""),
		P("total_purchases", "0"), P("purchase_count", 0), P("last_purchase", nil), P("vip_discount", "0"),
	}
}

func TestServer_InsertReturnsGeneratedID(t *testing.T) {
	b := setupServer(t)
	ctx := context.Background()

	res, err := b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("ana@x.com")...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LastInsertID)
	assert.Equal(t, int64(1), b.LastInsertID())

	rows, err := b.Query(ctx, b.Statements().GetCustomer, P("id", int64(1)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-05-01", rows[0].Date("registered_on"))
	assert.Equal(t, "2024-05-01 09:30", rows[0].Timestamp("updated_at"))
}

func TestServer_DuplicateEmailIsUniqueViolation(t *testing.T) {
	b := setupServer(t)
	ctx := context.Background()

	_, err := b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("ana@x.com")...)
	require.NoError(t, err)
	_, err = b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("ana@x.com")...)
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestServer_SearchIsCaseInsensitive(t *testing.T) {
	b := setupServer(t)
	ctx := context.Background()

	_, err := b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("ana@x.com")...)
	require.NoError(t, err)

	rows, err := b.Query(ctx, b.Statements().SearchCustomers, P("pattern", "%ANA%"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestServer_SearchEscapedWildcardsMatchLiterally(t *testing.T) {
	b := setupServer(t)
	ctx := context.Background()

	_, err := b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("ana@x.com")...)
	require.NoError(t, err)
	_, err = b.Exec(ctx, b.Statements().InsertCustomer, serverCustomerParams("a_b@x.com")...)
	require.NoError(t, err)

	rows, err := b.Query(ctx, b.Statements().SearchCustomers, P("pattern", `%\_%`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a_b@x.com", rows[0].String("email"))
}

func TestServer_AdvisoryLockIsExclusive(t *testing.T) {
	b := setupServer(t)
	ctx := context.Background()

	unlock, ok, err := b.TryLock(ctx, 4242)
	require.NoError(t, err)
	require.True(t, ok)

	_, again, err := b.TryLock(ctx, 4242)
	require.NoError(t, err)
	assert.False(t, again, "second session must not get the lock")

	require.NoError(t, unlock(ctx))

	unlock, ok, err = b.TryLock(ctx, 4242)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, unlock(ctx))
}
