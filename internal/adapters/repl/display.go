package repl

import (
	"fmt"
	"io"
	"strings"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/app"
	"gestorcloud/internal/core"

	"github.com/fatih/color"
)

var promoted = color.New(color.FgYellow, color.Bold)

// printCandidates lists the customers matched by an ambiguous search.
func printCandidates(w io.Writer, customers []core.Customer) {
	fmt.Fprintf(w, "%d customers match; enter one of the ids below.\n", len(customers))
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, c := range customers {
		fmt.Fprintf(w, "  %-5d %-30s %s\n", c.ID, c.FullName, c.Email)
	}
	fmt.Fprintln(w, strings.Repeat("-", 70))
}

// printReceipt confirms a recorded sale and announces a VIP promotion.
func printReceipt(w io.Writer, r *app.SaleResult) {
	s := r.Sale
	cli.PrintSuccess(w, "Sale %d recorded for %s.", s.ID, r.Customer.FullName)
	fmt.Fprintf(w, "  %s %s  %s\n", s.SaleDate, s.SaleTime, s.Products)
	fmt.Fprintf(w, "  Total %s  Discount %s  Net %s  (%s)\n",
		s.TotalValue.StringFixed(2), s.Discount.StringFixed(2), s.Net().StringFixed(2), s.PaymentMethod)
	fmt.Fprintf(w, "  Customer purchases: %s\n", r.Customer.TotalPurchases.StringFixed(2))
	if r.PromotedToVIP {
		promoted.Fprintf(w, "  %s is now a VIP customer with a %s%% discount.\n",
			r.Customer.FullName, r.Customer.VIPDiscount.Shift(2).StringFixed(0))
	}
}
