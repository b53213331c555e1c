package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a customer.
type Category string

const (
	CategoryProspect Category = "Prospect"
	CategoryRegular  Category = "Regular"
	CategoryVIP      Category = "VIP"
	CategoryInactive Category = "Inactive"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryProspect, CategoryRegular, CategoryVIP, CategoryInactive}

// Status is a customer's lifecycle state.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusProspect Status = "Prospect"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusProspect}

// PaymentMethod is how a sale was paid.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "Cash"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentTransfer   PaymentMethod = "Transfer"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentTransfer}

const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
	TimestampLayout = "2006-01-02 15:04"

	MinAge = 1
	MaxAge = 119
)

var (
	// VIPThreshold is the cumulative purchase total that triggers VIP promotion.
	VIPThreshold = decimal.NewFromInt(1_000_000)
	// VIPDiscount is the discount fraction granted on promotion.
	VIPDiscount = decimal.RequireFromString("0.05")
)

// Customer is a client of the business together with its purchase aggregates.
type Customer struct {
	ID             int64           `json:"id"`
	FullName       string          `json:"full_name"`
	Age            int             `json:"age"`
	Address        string          `json:"address"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Company        string          `json:"company"`
	Category       Category        `json:"category"`
	Status         Status          `json:"status"`
	RegisteredOn   string          `json:"registered_on"` // YYYY-MM-DD, immutable
	UpdatedAt      string          `json:"updated_at"`    // YYYY-MM-DD HH:MM
	Notes          string          `json:"notes"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	PurchaseCount  int             `json:"purchase_count"`
	LastPurchase   *string         `json:"last_purchase,omitempty"` // YYYY-MM-DD
	VIPDiscount    decimal.Decimal `json:"vip_discount"`
}

// CustomerInput holds the caller-supplied fields of a new customer.
type CustomerInput struct {
	FullName string
	Age      int
	Address  string
	Email    string
	Phone    string
	Company  string
	Category Category
	Status   Status
	Notes    string
}

// NewCustomer normalises and validates input and stamps the registration
// date and update time from now.
func NewCustomer(input CustomerInput, now time.Time) (*Customer, error) {
	c := &Customer{
		FullName:       input.FullName,
		Age:            input.Age,
		Address:        input.Address,
		Email:          input.Email,
		Phone:          input.Phone,
		Company:        input.Company,
		Category:       input.Category,
		Status:         input.Status,
		Notes:          input.Notes,
		RegisteredOn:   now.Format(DateLayout),
		UpdatedAt:      now.Format(TimestampLayout),
		TotalPurchases: decimal.Zero,
		VIPDiscount:    decimal.Zero,
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Touch refreshes the last-updated timestamp.
func (c *Customer) Touch(now time.Time) {
	c.UpdatedAt = now.Format(TimestampLayout)
}

// RecordPurchase adds a sale amount to the aggregates and promotes the customer
// to VIP when the cumulative total reaches VIPThreshold. It reports whether a
// promotion happened. Promotion is never reversed here.
func (c *Customer) RecordPurchase(amount decimal.Decimal, now time.Time) bool {
	c.TotalPurchases = c.TotalPurchases.Add(amount)
	c.PurchaseCount++
	day := now.Format(DateLayout)
	c.LastPurchase = &day
	c.Touch(now)

	if c.TotalPurchases.GreaterThanOrEqual(VIPThreshold) && c.Category != CategoryVIP {
		c.Category = CategoryVIP
		c.VIPDiscount = VIPDiscount
		return true
	}
	return false
}

func (c *Customer) IsVIP() bool {
	return c.Category == CategoryVIP
}

// DaysSinceLastPurchase returns whole days between the last purchase and now,
// or -1 when the customer has never purchased.
func (c *Customer) DaysSinceLastPurchase(now time.Time) int {
	if c.LastPurchase == nil {
		return -1
	}
	last, err := time.ParseInLocation(DateLayout, *c.LastPurchase, now.Location())
	if err != nil {
		return -1
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(today.Sub(last).Hours() / 24)
}

// Sale is one transaction linked to a customer.
type Sale struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customer_id"`
	SaleDate      string          `json:"sale_date"` // YYYY-MM-DD
	SaleTime      string          `json:"sale_time"` // HH:MM
	Products      string          `json:"products"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Seller        string          `json:"seller"`
	Notes         string          `json:"notes"`
}

// SaleInput holds the caller-supplied fields of a new sale. Empty date and time
// default to now.
type SaleInput struct {
	CustomerID    int64
	SaleDate      string
	SaleTime      string
	Products      string
	TotalValue    decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod PaymentMethod
	Seller        string
	Notes         string
}

// NewSale applies defaults and validates input.
func NewSale(input SaleInput, now time.Time) (*Sale, error) {
	s := &Sale{
		CustomerID:    input.CustomerID,
		SaleDate:      input.SaleDate,
		SaleTime:      input.SaleTime,
		Products:      input.Products,
		TotalValue:    input.TotalValue,
		Discount:      input.Discount,
		PaymentMethod: input.PaymentMethod,
		Seller:        input.Seller,
		Notes:         input.Notes,
	}
	if s.SaleDate == "" {
		s.SaleDate = now.Format(DateLayout)
	}
	if s.SaleTime == "" {
		s.SaleTime = now.Format(ClockLayout)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Net is the amount actually paid.
func (s Sale) Net() decimal.Decimal {
	return s.TotalValue.Sub(s.Discount)
}

// DeletedCustomerLabel names the owner of a sale whose customer row is gone.
const DeletedCustomerLabel = "Deleted customer"

// CustomerSnapshot is the display-only view of a sale's owner, read through a join.
type CustomerSnapshot struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Category Category `json:"category"`
}

// SaleListing pairs a persisted sale with its owner's snapshot.
type SaleListing struct {
	Sale     Sale             `json:"sale"`
	Customer CustomerSnapshot `json:"customer"`
}
