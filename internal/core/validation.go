package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	emailPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s holds 7 to 15 digits once spaces, dashes and
// parentheses are removed.
func ValidPhone(s string) bool {
	digits := phoneSeparators.ReplaceAllString(s, "")
	return len(digits) >= 7 && len(digits) <= 15 && digitsOnly.MatchString(digits)
}

func validCategory(c Category) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func validPaymentMethod(m PaymentMethod) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Normalize trims text fields, lowercases the email and fills enum defaults.
func (c *Customer) Normalize() {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Company = strings.TrimSpace(c.Company)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Category == "" {
		c.Category = CategoryRegular
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
}

// Validate checks every customer invariant that does not need the store.
func (c *Customer) Validate() error {
	if c.FullName == "" {
		return &ValidationError{Field: "full_name", Message: "is required"}
	}
	if c.Age < MinAge || c.Age > MaxAge {
		return &ValidationError{Field: "age", Message: "must be between 1 and 119"}
	}
	if c.Address == "" {
		return &ValidationError{Field: "address", Message: "is required"}
	}
	if !ValidEmail(c.Email) {
		return &ValidationError{Field: "email", Message: "malformed email address " + c.Email}
	}
	if !ValidPhone(c.Phone) {
		return &ValidationError{Field: "phone", Message: "must contain 7 to 15 digits"}
	}
	if !validCategory(c.Category) {
		return &ValidationError{Field: "category", Message: "unknown category " + string(c.Category)}
	}
	if !validStatus(c.Status) {
		return &ValidationError{Field: "status", Message: "unknown status " + string(c.Status)}
	}
	if c.TotalPurchases.IsNegative() {
		return &ValidationError{Field: "total_purchases", Message: "cannot be negative"}
	}
	if c.PurchaseCount < 0 {
		return &ValidationError{Field: "purchase_count", Message: "cannot be negative"}
	}
	if c.VIPDiscount.IsNegative() || c.VIPDiscount.GreaterThan(decimal.NewFromInt(1)) {
		return &ValidationError{Field: "vip_discount", Message: "must be a fraction between 0 and 1"}
	}
	return nil
}

// Normalize trims text fields and fills the payment method default.
func (s *Sale) Normalize() {
	s.SaleDate = strings.TrimSpace(s.SaleDate)
	s.SaleTime = strings.TrimSpace(s.SaleTime)
	s.Products = strings.TrimSpace(s.Products)
	s.Seller = strings.TrimSpace(s.Seller)
	s.Notes = strings.TrimSpace(s.Notes)
	if s.PaymentMethod == "" {
		s.PaymentMethod = PaymentCash
	}
}

// Validate checks every sale invariant that does not need the store.
func (s *Sale) Validate() error {
	if s.CustomerID <= 0 {
		return &ValidationError{Field: "customer_id", Message: "is required"}
	}
	if _, err := time.Parse(DateLayout, s.SaleDate); err != nil {
		return &ValidationError{Field: "sale_date", Message: "must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(ClockLayout, s.SaleTime); err != nil {
		return &ValidationError{Field: "sale_time", Message: "must be HH:MM"}
	}
	if s.Products == "" {
		return &ValidationError{Field: "products", Message: "is required"}
	}
	if !s.TotalValue.IsPositive() {
		return &ValidationError{Field: "total_value", Message: "must be greater than 0"}
	}
	if s.Discount.IsNegative() || s.Discount.GreaterThan(s.TotalValue) {
		return &ValidationError{Field: "discount", Message: "must be between 0 and the total value"}
	}
	if !validPaymentMethod(s.PaymentMethod) {
		return &ValidationError{Field: "payment_method", Message: "unknown payment method " + string(s.PaymentMethod)}
	}
	return nil
}
