package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gestorcloud/internal/app"
	"gestorcloud/internal/core"

	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	vipMark = color.New(color.FgYellow, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed, color.Bold)
)

const rule = 78

func banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", rule))
	heading.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintSuccess writes a green confirmation line.
func PrintSuccess(w io.Writer, format string, args ...any) {
	success.Fprintf(w, format+"\n", args...)
}

// PrintError writes err as a red line.
func PrintError(w io.Writer, err error) {
	failure.Fprintf(w, "Error: %v\n", err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// PrintCustomers writes a customer table.
func PrintCustomers(w io.Writer, title string, result *app.CustomerListResult) {
	banner(w, fmt.Sprintf("%s (%d)", title, result.Total))
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		fmt.Fprintln(w, strings.Repeat("=", rule))
		return
	}
	fmt.Fprintf(w, "  %-5s %-24s %-26s %-9s %15s\n", "ID", "NAME", "EMAIL", "CATEGORY", "PURCHASES")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, c := range result.Customers {
		category := fmt.Sprintf("%-9s", c.Category)
		if c.IsVIP() {
			category = vipMark.Sprint(category)
		}
		fmt.Fprintf(w, "  %-5d %-24s %-26s %s %15s\n",
			c.ID, truncate(c.FullName, 24), truncate(c.Email, 26), category, c.TotalPurchases.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintCustomerDetail writes one customer with its sales history.
func PrintCustomerDetail(w io.Writer, d *app.CustomerDetailResult) {
	c := d.Customer
	banner(w, fmt.Sprintf("CUSTOMER #%d", c.ID))
	fmt.Fprintf(w, "  Name:           %s\n", c.FullName)
	fmt.Fprintf(w, "  Age:            %d\n", c.Age)
	fmt.Fprintf(w, "  Email:          %s\n", c.Email)
	fmt.Fprintf(w, "  Phone:          %s\n", c.Phone)
	fmt.Fprintf(w, "  Address:        %s\n", c.Address)
	if c.Company != "" {
		fmt.Fprintf(w, "  Company:        %s\n", c.Company)
	}
	fmt.Fprintf(w, "  Category:       %s\n", c.Category)
	fmt.Fprintf(w, "  Status:         %s\n", c.Status)
	fmt.Fprintf(w, "  Registered:     %s\n", c.RegisteredOn)
	fmt.Fprintf(w, "  Updated:        %s\n", c.UpdatedAt)
	fmt.Fprintf(w, "  Purchases:      %s in %d sales\n", c.TotalPurchases.StringFixed(2), c.PurchaseCount)
	if c.IsVIP() {
		vipMark.Fprintf(w, "  VIP discount:   %s%%\n", c.VIPDiscount.Shift(2).StringFixed(0))
	}
	if d.DaysSinceLastPurchase >= 0 {
		fmt.Fprintf(w, "  Last purchase:  %s (%d days ago)\n", *c.LastPurchase, d.DaysSinceLastPurchase)
	} else {
		fmt.Fprintln(w, "  Last purchase:  never")
	}
	if c.Notes != "" {
		fmt.Fprintf(w, "  Notes:          %s\n", c.Notes)
	}
	PrintSales(w, "SALES HISTORY", d.Sales)
}

// PrintSales writes a table of one customer's sales.
func PrintSales(w io.Writer, title string, sales []core.Sale) {
	banner(w, fmt.Sprintf("%s (%d)", title, len(sales)))
	if len(sales) == 0 {
		fmt.Fprintln(w, "  No sales found.")
		fmt.Fprintln(w, strings.Repeat("=", rule))
		return
	}
	fmt.Fprintf(w, "  %-5s %-10s %-5s %-26s %12s %12s\n", "ID", "DATE", "TIME", "PRODUCTS", "TOTAL", "NET")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, s := range sales {
		fmt.Fprintf(w, "  %-5d %-10s %-5s %-26s %12s %12s\n",
			s.ID, s.SaleDate, s.SaleTime, truncate(s.Products, 26), s.TotalValue.StringFixed(2), s.Net().StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintSaleListings writes a table of sales with their owners.
func PrintSaleListings(w io.Writer, title string, listings []core.SaleListing) {
	banner(w, fmt.Sprintf("%s (%d)", title, len(listings)))
	if len(listings) == 0 {
		fmt.Fprintln(w, "  No sales found.")
		fmt.Fprintln(w, strings.Repeat("=", rule))
		return
	}
	fmt.Fprintf(w, "  %-5s %-10s %-5s %-22s %-14s %12s\n", "ID", "DATE", "TIME", "CUSTOMER", "PAYMENT", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, l := range listings {
		fmt.Fprintf(w, "  %-5d %-10s %-5s %-22s %-14s %12s\n",
			l.Sale.ID, l.Sale.SaleDate, l.Sale.SaleTime, truncate(l.Customer.Name, 22),
			l.Sale.PaymentMethod, l.Sale.TotalValue.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintDaySales writes the sales of one day followed by its totals.
func PrintDaySales(w io.Writer, d *app.DaySalesResult) {
	PrintSaleListings(w, "SALES OF "+d.Day, d.Sales)
	fmt.Fprintf(w, "  Count: %d   Revenue: %s   Average: %s\n", d.Count, d.Revenue.StringFixed(2), d.Average.StringFixed(2))
}

// PrintDashboard writes the general statistics and category breakdown.
func PrintDashboard(w io.Writer, d *app.DashboardResult) {
	g := d.General
	banner(w, "GENERAL STATISTICS")
	fmt.Fprintf(w, "  Backend:             %s\n", d.Backend)
	fmt.Fprintf(w, "  Active customers:    %d\n", g.ActiveCustomers)
	fmt.Fprintf(w, "  VIP customers:       %d\n", g.VIPCustomers)
	fmt.Fprintf(w, "  Sales this month:    %d\n", g.MonthSales)
	fmt.Fprintf(w, "  Revenue this month:  %.2f\n", g.MonthRevenue)
	fmt.Fprintln(w, strings.Repeat("-", rule))
	fmt.Fprintln(w, "  TOP CUSTOMERS")
	if len(g.TopCustomers) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, t := range g.TopCustomers {
		fmt.Fprintf(w, "  %d. %-40s %15.2f\n", i+1, truncate(t.Name, 40), t.TotalPurchases)
	}
	fmt.Fprintln(w, strings.Repeat("-", rule))
	fmt.Fprintln(w, "  ACTIVE CUSTOMERS BY CATEGORY")
	categories := make([]string, 0, len(d.Categories))
	for c := range d.Categories {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "  %-12s %5d\n", c, d.Categories[core.Category(c)])
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintSalesStats writes the sales statistics.
func PrintSalesStats(w io.Writer, s *core.SalesStats) {
	banner(w, "SALES STATISTICS")
	fmt.Fprintf(w, "  Total sales:         %d\n", s.TotalSales)
	fmt.Fprintf(w, "  Sales this month:    %d\n", s.MonthSales)
	fmt.Fprintf(w, "  Revenue this month:  %.2f\n", s.MonthRevenue)
	fmt.Fprintf(w, "  Average sale:        %.2f\n", s.AverageSale)
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// PrintMigrationReport writes the per-phase counts and the verification block.
func PrintMigrationReport(w io.Writer, r *core.MigrationReport) {
	banner(w, "MIGRATION REPORT")
	fmt.Fprintf(w, "  Source: %s\n", r.Source)
	fmt.Fprintf(w, "  %-10s %9s %9s %9s %9s\n", "PHASE", "MIGRATED", "UPDATED", "SKIPPED", "ERRORS")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, p := range []struct {
		name  string
		phase core.PhaseReport
	}{{"customers", r.Customers}, {"sales", r.Sales}} {
		fmt.Fprintf(w, "  %-10s %9d %9d %9d %9d\n", p.name, p.phase.Migrated, p.phase.Updated, p.phase.Skipped, p.phase.Errors)
	}
	fmt.Fprintln(w, strings.Repeat("-", rule))
	v := r.Verification
	fmt.Fprintf(w, "  Customers: %d of %d (%.1f%%)\n", v.TargetCustomers, v.SourceCustomers, v.CustomerPercent)
	fmt.Fprintf(w, "  Sales:     %d of %d (%.1f%%)\n", v.TargetSales, v.SourceSales, v.SalePercent)
	if v.Passed {
		success.Fprintln(w, "  Verification passed")
	} else {
		failure.Fprintln(w, "  Verification FAILED")
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}
