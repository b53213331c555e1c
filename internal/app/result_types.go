package app

import (
	"gestorcloud/internal/core"
	"gestorcloud/internal/db"

	"github.com/shopspring/decimal"
)

// CustomerResult is returned by RegisterCustomer and EditCustomer.
type CustomerResult struct {
	Customer *core.Customer `json:"customer"`
}

// CustomerDetailResult is returned by GetCustomerDetail.
type CustomerDetailResult struct {
	Customer              *core.Customer `json:"customer"`
	Sales                 []core.Sale    `json:"sales"`
	DaysSinceLastPurchase int            `json:"days_since_last_purchase"` // -1 when none
}

// CustomerListResult is returned by ListCustomers and SearchCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
	Total     int             `json:"total"`
}

// SaleResult is returned by RecordSale.
type SaleResult struct {
	Sale          *core.Sale     `json:"sale"`
	Customer      *core.Customer `json:"customer"`
	PromotedToVIP bool           `json:"promoted_to_vip"`
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.SaleListing `json:"sales"`
	Total int                `json:"total"`
}

// CustomerSalesResult is returned by ListCustomerSales.
type CustomerSalesResult struct {
	CustomerID int64       `json:"customer_id"`
	Sales      []core.Sale `json:"sales"`
	Total      int         `json:"total"`
}

// DaySalesResult is returned by DaySales.
type DaySalesResult struct {
	Day     string             `json:"day"`
	Sales   []core.SaleListing `json:"sales"`
	Count   int                `json:"count"`
	Revenue decimal.Decimal    `json:"revenue"`
	Average decimal.Decimal    `json:"average"`
}

// DashboardResult is returned by Dashboard.
type DashboardResult struct {
	Backend    db.Kind               `json:"backend"`
	General    *core.GeneralStats    `json:"general"`
	Categories map[core.Category]int `json:"categories"`
}
