package core_test

import (
	"testing"
	"time"

	"gestorcloud/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func validInput() core.CustomerInput {
	return core.CustomerInput{
		FullName: "Ana Ruiz",
		Age:      34,
		Address:  "Calle 1",
		Email:    "ana@x.com",
		Phone:    "3001234567",
	}
}

func TestNewCustomer_Defaults(t *testing.T) {
	c, err := core.NewCustomer(validInput(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, core.CategoryRegular, c.Category)
	assert.Equal(t, core.StatusActive, c.Status)
	assert.Equal(t, "2024-05-15", c.RegisteredOn)
	assert.Equal(t, "2024-05-15 10:30", c.UpdatedAt)
	assert.True(t, c.TotalPurchases.IsZero())
	assert.True(t, c.VIPDiscount.IsZero())
	assert.Zero(t, c.PurchaseCount)
	assert.Nil(t, c.LastPurchase)
}

func TestNewCustomer_NormalisesEmail(t *testing.T) {
	in := validInput()
	in.Email = "  Ana.Ruiz@Example.COM "
	in.FullName = "  Ana Ruiz  "

	c, err := core.NewCustomer(in, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "ana.ruiz@example.com", c.Email)
	assert.Equal(t, "Ana Ruiz", c.FullName)
}

func TestNewCustomer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.CustomerInput)
		field  string
	}{
		{"empty name", func(in *core.CustomerInput) { in.FullName = " " }, "full_name"},
		{"age zero", func(in *core.CustomerInput) { in.Age = 0 }, "age"},
		{"age too high", func(in *core.CustomerInput) { in.Age = 120 }, "age"},
		{"empty address", func(in *core.CustomerInput) { in.Address = "" }, "address"},
		{"email without at", func(in *core.CustomerInput) { in.Email = "ana.x.com" }, "email"},
		{"email without tld", func(in *core.CustomerInput) { in.Email = "ana@x" }, "email"},
		{"phone too short", func(in *core.CustomerInput) { in.Phone = "12345" }, "phone"},
		{"phone too long", func(in *core.CustomerInput) { in.Phone = "1234567890123456" }, "phone"},
		{"phone with letters", func(in *core.CustomerInput) { in.Phone = "300-ABC-4567" }, "phone"},
		{"unknown category", func(in *core.CustomerInput) { in.Category = "Gold" }, "category"},
		{"unknown status", func(in *core.CustomerInput) { in.Status = "Dormant" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := core.NewCustomer(in, fixedNow)
			require.Error(t, err)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.True(t, core.IsValidation(err))
		})
	}
}

func TestValidPhone_AcceptsSeparators(t *testing.T) {
	for _, phone := range []string{"3001234567", "(300) 123-4567", "300 123 4567", "1234567", "123456789012345"} {
		assert.True(t, core.ValidPhone(phone), phone)
	}
	for _, phone := range []string{"", "123456", "+57 300 123 4567", "300.123.4567"} {
		assert.False(t, core.ValidPhone(phone), phone)
	}
}

func TestRecordPurchase_AccumulatesAndPromotes(t *testing.T) {
	c, err := core.NewCustomer(validInput(), fixedNow)
	require.NoError(t, err)

	later := fixedNow.Add(48 * time.Hour)
	promoted := c.RecordPurchase(decimal.NewFromInt(999_999), later)
	assert.False(t, promoted)
	assert.Equal(t, core.CategoryRegular, c.Category)
	assert.Equal(t, 1, c.PurchaseCount)
	require.NotNil(t, c.LastPurchase)
	assert.Equal(t, "2024-05-17", *c.LastPurchase)
	assert.Equal(t, "2024-05-17 10:30", c.UpdatedAt)

	promoted = c.RecordPurchase(decimal.NewFromInt(1), later)
	assert.True(t, promoted)
	assert.True(t, c.IsVIP())
	assert.True(t, core.VIPDiscount.Equal(c.VIPDiscount))

	promoted = c.RecordPurchase(decimal.NewFromInt(10), later)
	assert.False(t, promoted, "already VIP")
	assert.Equal(t, core.CategoryVIP, c.Category)
	assert.Equal(t, 3, c.PurchaseCount)
	assert.True(t, decimal.NewFromInt(1_000_010).Equal(c.TotalPurchases))
}

func TestRecordPurchase_ManualVIPKeepsDiscount(t *testing.T) {
	in := validInput()
	in.Category = core.CategoryVIP
	c, err := core.NewCustomer(in, fixedNow)
	require.NoError(t, err)

	assert.False(t, c.RecordPurchase(decimal.NewFromInt(2_000_000), fixedNow))
	assert.True(t, c.VIPDiscount.IsZero())
}

func TestDaysSinceLastPurchase(t *testing.T) {
	c, err := core.NewCustomer(validInput(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, -1, c.DaysSinceLastPurchase(fixedNow))

	c.RecordPurchase(decimal.NewFromInt(10), fixedNow)
	assert.Equal(t, 0, c.DaysSinceLastPurchase(fixedNow))
	assert.Equal(t, 10, c.DaysSinceLastPurchase(fixedNow.AddDate(0, 0, 10)))
}

func TestNewSale_DefaultsAndValidation(t *testing.T) {
	s, err := core.NewSale(core.SaleInput{
		CustomerID: 1,
		Products:   "Widget",
		TotalValue: decimal.NewFromInt(50000),
	}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-15", s.SaleDate)
	assert.Equal(t, "10:30", s.SaleTime)
	assert.Equal(t, core.PaymentCash, s.PaymentMethod)
	assert.True(t, decimal.NewFromInt(50000).Equal(s.Net()))

	tests := []struct {
		name  string
		in    core.SaleInput
		field string
	}{
		{"no customer", core.SaleInput{Products: "W", TotalValue: decimal.NewFromInt(1)}, "customer_id"},
		{"zero total", core.SaleInput{CustomerID: 1, Products: "W"}, "total_value"},
		{"negative total", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(-5)}, "total_value"},
		{"discount above total", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(10), Discount: decimal.NewFromInt(11)}, "discount"},
		{"negative discount", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(10), Discount: decimal.NewFromInt(-1)}, "discount"},
		{"no products", core.SaleInput{CustomerID: 1, TotalValue: decimal.NewFromInt(10)}, "products"},
		{"bad method", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(10), PaymentMethod: "Cheque"}, "payment_method"},
		{"bad date", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(10), SaleDate: "15/05/2024"}, "sale_date"},
		{"bad time", core.SaleInput{CustomerID: 1, Products: "W", TotalValue: decimal.NewFromInt(10), SaleTime: "25:99"}, "sale_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.NewSale(tt.in, fixedNow)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewSale_DiscountEqualToTotalIsAllowed(t *testing.T) {
	s, err := core.NewSale(core.SaleInput{
		CustomerID: 1,
		Products:   "Gift",
		TotalValue: decimal.NewFromInt(100),
		Discount:   decimal.NewFromInt(100),
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, s.Net().IsZero())
}
