package repl

import (
	"fmt"
	"strconv"
	"strings"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/app"
	"gestorcloud/internal/core"
	"gestorcloud/internal/db"

	"github.com/shopspring/decimal"
)

// registerCustomer prompts for every customer field and stores the result.
func (c *console) registerCustomer() error {
	fmt.Fprintln(c.out, "\nNew customer (type 'cancel' at any prompt to abort)")

	req := app.RegisterCustomerRequest{}
	var err error
	if req.FullName, err = c.required("Full name"); err != nil {
		return err
	}
	if req.Age, err = c.integer("Age", 0, core.MinAge, core.MaxAge); err != nil {
		return err
	}
	if req.Address, err = c.required("Address"); err != nil {
		return err
	}
	if req.Email, err = c.required("Email"); err != nil {
		return err
	}
	if req.Phone, err = c.required("Phone"); err != nil {
		return err
	}
	if req.Company, err = c.optional("Company", ""); err != nil {
		return err
	}
	if req.Category, err = c.choice("Category", enumNames(core.Categories), string(core.CategoryRegular)); err != nil {
		return err
	}
	if req.Status, err = c.choice("Status", enumNames(core.Statuses), string(core.StatusActive)); err != nil {
		return err
	}
	if req.Notes, err = c.optional("Notes", ""); err != nil {
		return err
	}

	result, err := c.svc.RegisterCustomer(c.ctx, req)
	if err != nil {
		return err
	}
	cli.PrintSuccess(c.out, "Customer registered with ID %d.", result.Customer.ID)
	return nil
}

// editCustomer shows each stored value as the default; a blank reply keeps it.
func (c *console) editCustomer() error {
	customer, err := c.pickCustomer()
	if err != nil || customer == nil {
		return err
	}
	fmt.Fprintf(c.out, "\nEditing %s (blank keeps the current value)\n", customer.FullName)

	req := app.EditCustomerRequest{ID: customer.ID}
	edit := func(label, current string, target **string) error {
		v, err := c.optional(label, current)
		if err != nil {
			return err
		}
		if v != current {
			*target = &v
		}
		return nil
	}

	if err := edit("Full name", customer.FullName, &req.FullName); err != nil {
		return err
	}
	age, err := c.integer("Age", customer.Age, core.MinAge, core.MaxAge)
	if err != nil {
		return err
	}
	if age != customer.Age {
		req.Age = &age
	}
	for _, f := range []struct {
		label   string
		current string
		target  **string
	}{
		{"Address", customer.Address, &req.Address},
		{"Email", customer.Email, &req.Email},
		{"Phone", customer.Phone, &req.Phone},
		{"Company", customer.Company, &req.Company},
	} {
		if err := edit(f.label, f.current, f.target); err != nil {
			return err
		}
	}
	category, err := c.choice("Category", enumNames(core.Categories), string(customer.Category))
	if err != nil {
		return err
	}
	if category != string(customer.Category) {
		req.Category = &category
	}
	status, err := c.choice("Status", enumNames(core.Statuses), string(customer.Status))
	if err != nil {
		return err
	}
	if status != string(customer.Status) {
		req.Status = &status
	}
	if err := edit("Notes", customer.Notes, &req.Notes); err != nil {
		return err
	}

	if _, err := c.svc.EditCustomer(c.ctx, req); err != nil {
		return err
	}
	cli.PrintSuccess(c.out, "Customer %d updated.", customer.ID)
	return nil
}

// deleteCustomer asks for confirmation before removing a customer.
func (c *console) deleteCustomer() error {
	customer, err := c.pickCustomer()
	if err != nil || customer == nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Delete %s <%s>?", customer.FullName, customer.Email))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "Deletion cancelled.")
		return nil
	}
	if err := c.svc.RemoveCustomer(c.ctx, customer.ID); err != nil {
		return err
	}
	cli.PrintSuccess(c.out, "Customer %d deleted.", customer.ID)
	return nil
}

// recordSale looks up the buyer, offers the VIP discount when it applies and
// records the sale.
func (c *console) recordSale() error {
	customer, err := c.pickCustomer()
	if err != nil || customer == nil {
		return err
	}
	fmt.Fprintf(c.out, "\nSale for %s (%s)\n", customer.FullName, customer.Category)

	req := app.RecordSaleRequest{CustomerID: customer.ID}
	if req.Products, err = c.required("Products"); err != nil {
		return err
	}
	if req.TotalValue, err = c.amount("Total value", decimal.Zero); err != nil {
		return err
	}

	req.Discount = decimal.Zero
	if customer.IsVIP() && customer.VIPDiscount.IsPositive() {
		offer := req.TotalValue.Mul(customer.VIPDiscount).Round(2)
		ok, err := c.confirm(fmt.Sprintf("Apply VIP discount of %s?", offer.StringFixed(2)))
		if err != nil {
			return err
		}
		if ok {
			req.Discount = offer
		}
	} else if req.Discount, err = c.amount("Discount", decimal.Zero); err != nil {
		return err
	}

	if req.PaymentMethod, err = c.choice("Payment method", enumNames(core.PaymentMethods), string(core.PaymentCash)); err != nil {
		return err
	}
	if req.Seller, err = c.optional("Seller", ""); err != nil {
		return err
	}
	if req.SaleDate, err = c.optional("Date YYYY-MM-DD", ""); err != nil {
		return err
	}
	if req.SaleTime, err = c.optional("Time HH:MM", ""); err != nil {
		return err
	}
	if req.Notes, err = c.optional("Notes", ""); err != nil {
		return err
	}

	result, err := c.svc.RecordSale(c.ctx, req)
	if err != nil {
		return err
	}
	printReceipt(c.out, result)
	return nil
}

func (c *console) migrate() error {
	if c.svc.BackendKind() != db.KindServer {
		fmt.Fprintln(c.out, "Migration needs the postgres backend. Set DB_TYPE=postgres and restart.")
		return nil
	}
	path, err := c.required("SQLite file")
	if err != nil {
		return err
	}
	report, err := c.svc.Migrate(c.ctx, path)
	if err != nil {
		return err
	}
	cli.PrintMigrationReport(c.out, report)
	return nil
}

// pickCustomer resolves a customer from an id or a search term. It returns
// nil when nothing matched or the user cancelled.
func (c *console) pickCustomer() (*core.Customer, error) {
	for {
		input, err := c.required("Customer ID or search term")
		if err != nil {
			return nil, err
		}
		if id, convErr := strconv.ParseInt(input, 10, 64); convErr == nil {
			detail, err := c.svc.GetCustomerDetail(c.ctx, id)
			if err != nil {
				return nil, err
			}
			return detail.Customer, nil
		}

		found, err := c.svc.SearchCustomers(c.ctx, input)
		if err != nil {
			return nil, err
		}
		switch len(found.Customers) {
		case 0:
			fmt.Fprintf(c.out, "No customer matches %q.\n", input)
			return nil, nil
		case 1:
			customer := found.Customers[0]
			fmt.Fprintf(c.out, "Found %s <%s>.\n", customer.FullName, customer.Email)
			return &customer, nil
		}
		printCandidates(c.out, found.Customers)
	}
}

// ── Prompts ──────────────────────────────────────────────────────────────────

func (c *console) input(label string) (string, error) {
	v, err := c.ask(label)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(v, "cancel") {
		return "", errCancelled
	}
	return v, nil
}

func (c *console) required(label string) (string, error) {
	for {
		v, err := c.input(label + ": ")
		if err != nil || v != "" {
			return v, err
		}
		fmt.Fprintln(c.out, "  A value is required.")
	}
}

func (c *console) optional(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	v, err := c.input(prompt)
	if err != nil || v == "" {
		return current, err
	}
	return v, nil
}

// integer reads a whole number in [lo, hi]; current > 0 is the blank default.
func (c *console) integer(label string, current, lo, hi int) (int, error) {
	for {
		v, err := c.optional(label, defaultText(current))
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(v)
		if convErr == nil && n >= lo && n <= hi {
			return n, nil
		}
		fmt.Fprintf(c.out, "  Enter a whole number between %d and %d.\n", lo, hi)
	}
}

// amount reads a non-negative decimal; a blank reply returns def.
func (c *console) amount(label string, def decimal.Decimal) (decimal.Decimal, error) {
	for {
		v, err := c.optional(label, def.String())
		if err != nil {
			return decimal.Zero, err
		}
		d, convErr := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
		if convErr == nil && !d.IsNegative() {
			return d, nil
		}
		fmt.Fprintln(c.out, "  Enter a non-negative amount, e.g. 1500.50.")
	}
}

// choice lists options by number; the reply may be the number or the name.
func (c *console) choice(label string, options []string, current string) (string, error) {
	for i, o := range options {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, o)
	}
	for {
		v, err := c.optional(label, current)
		if err != nil {
			return "", err
		}
		if n, convErr := strconv.Atoi(v); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(o, v) {
				return o, nil
			}
		}
		fmt.Fprintf(c.out, "  Choose 1-%d.\n", len(options))
	}
}

func (c *console) confirm(question string) (bool, error) {
	v, err := c.input(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "y", "yes", "s", "si":
		return true, nil
	}
	return false, nil
}

func defaultText(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func enumNames[T ~string](values []T) []string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return names
}
