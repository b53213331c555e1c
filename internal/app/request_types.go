package app

import (
	"github.com/shopspring/decimal"
)

// RegisterCustomerRequest is the input for creating a new customer.
// Empty Category and Status take the defaults (Regular, Active).
type RegisterCustomerRequest struct {
	FullName string
	Age      int
	Address  string
	Email    string
	Phone    string
	Company  string
	Category string
	Status   string
	Notes    string
}

// EditCustomerRequest carries the fields to change; nil fields keep their
// stored value.
type EditCustomerRequest struct {
	ID       int64
	FullName *string
	Age      *int
	Address  *string
	Email    *string
	Phone    *string
	Company  *string
	Category *string
	Status   *string
	Notes    *string
}

// RecordSaleRequest is the input for recording a sale. Empty SaleDate and
// SaleTime default to now; empty PaymentMethod defaults to Cash.
type RecordSaleRequest struct {
	CustomerID    int64
	SaleDate      string // YYYY-MM-DD
	SaleTime      string // HH:MM
	Products      string
	TotalValue    decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod string
	Seller        string
	Notes         string
}
