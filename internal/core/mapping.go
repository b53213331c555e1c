package core

import (
	"context"
	"fmt"

	"gestorcloud/internal/db"
)

func customerFromRow(row db.Row) Customer {
	return Customer{
		ID:             row.Int64("id"),
		FullName:       row.String("full_name"),
		Age:            row.Int("age"),
		Address:        row.String("address"),
		Email:          row.String("email"),
		Phone:          row.String("phone"),
		Company:        row.String("company"),
		Category:       Category(row.String("category")),
		Status:         Status(row.String("status")),
		RegisteredOn:   row.Date("registered_on"),
		UpdatedAt:      row.Timestamp("updated_at"),
		Notes:          row.String("notes"),
		TotalPurchases: row.Decimal("total_purchases"),
		PurchaseCount:  row.Int("purchase_count"),
		LastPurchase:   row.NullDate("last_purchase"),
		VIPDiscount:    row.Decimal("vip_discount"),
	}
}

func customersFromRows(rows []db.Row) []Customer {
	customers := make([]Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, customerFromRow(row))
	}
	return customers
}

func saleFromRow(row db.Row) Sale {
	return Sale{
		ID:            row.Int64("id"),
		CustomerID:    row.Int64("customer_id"),
		SaleDate:      row.Date("sale_date"),
		SaleTime:      row.Clock("sale_time"),
		Products:      row.String("products"),
		TotalValue:    row.Decimal("total_value"),
		Discount:      row.Decimal("discount"),
		PaymentMethod: PaymentMethod(row.String("payment_method")),
		Seller:        row.String("seller"),
		Notes:         row.String("notes"),
	}
}

func listingFromRow(row db.Row) SaleListing {
	l := SaleListing{Sale: saleFromRow(row)}
	if row["customer_name"] == nil {
		l.Customer = CustomerSnapshot{Name: DeletedCustomerLabel}
		return l
	}
	l.Customer = CustomerSnapshot{
		Name:     row.String("customer_name"),
		Email:    row.String("customer_email"),
		Category: Category(row.String("customer_category")),
	}
	return l
}

// customerInsertParams follows the order of Statements.InsertCustomer.
func customerInsertParams(c *Customer) []db.Param {
	return []db.Param{
		db.P("full_name", c.FullName),
		db.P("age", c.Age),
		db.P("address", c.Address),
		db.P("email", c.Email),
		db.P("phone", c.Phone),
		db.P("company", c.Company),
		db.P("category", string(c.Category)),
		db.P("status", string(c.Status)),
		db.P("registered_on", c.RegisteredOn),
		db.P("updated_at", c.UpdatedAt),
		db.P("notes", c.Notes),
		db.P("total_purchases", c.TotalPurchases),
		db.P("purchase_count", c.PurchaseCount),
		db.P("last_purchase", nullable(c.LastPurchase)),
		db.P("vip_discount", c.VIPDiscount),
	}
}

// customerUpdateParams follows the order of Statements.UpdateCustomer.
func customerUpdateParams(c *Customer) []db.Param {
	return []db.Param{
		db.P("full_name", c.FullName),
		db.P("age", c.Age),
		db.P("address", c.Address),
		db.P("email", c.Email),
		db.P("phone", c.Phone),
		db.P("company", c.Company),
		db.P("category", string(c.Category)),
		db.P("status", string(c.Status)),
		db.P("updated_at", c.UpdatedAt),
		db.P("notes", c.Notes),
		db.P("total_purchases", c.TotalPurchases),
		db.P("purchase_count", c.PurchaseCount),
		db.P("last_purchase", nullable(c.LastPurchase)),
		db.P("vip_discount", c.VIPDiscount),
		db.P("id", c.ID),
	}
}

// saleInsertParams follows the order of Statements.InsertSale.
func saleInsertParams(s *Sale) []db.Param {
	return []db.Param{
		db.P("customer_id", s.CustomerID),
		db.P("sale_date", s.SaleDate),
		db.P("sale_time", s.SaleTime),
		db.P("products", s.Products),
		db.P("total_value", s.TotalValue),
		db.P("discount", s.Discount),
		db.P("payment_method", string(s.PaymentMethod)),
		db.P("seller", s.Seller),
		db.P("notes", s.Notes),
	}
}

func countRows(ctx context.Context, q db.Querier, query string, params ...db.Param) (int, error) {
	rows, err := q.Query(ctx, query, params...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	return rows[0].Int("n"), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
