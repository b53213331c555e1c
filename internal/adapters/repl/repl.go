package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/app"
)

var (
	// errQuit ends the session: the user chose Exit or the input ran out.
	errQuit = errors.New("quit")
	// errCancelled aborts a wizard when the user types "cancel".
	errCancelled = errors.New("cancelled")
)

type menuItem struct {
	label  string
	action func() error
}

// console holds the state of one interactive session.
type console struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

// Run starts the interactive menu loop. It reads choices from reader and
// returns when the user exits or the input is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) error {
	c := &console{ctx: ctx, svc: svc, reader: reader, out: out}

	fmt.Fprintln(out, "GestorCloud CRM")
	fmt.Fprintf(out, "Backend: %s\n", svc.BackendKind())
	fmt.Fprintln(out, strings.Repeat("-", 70))

	err := c.menu("MAIN MENU", "Exit", []menuItem{
		{"Customers", c.customersMenu},
		{"Sales", c.salesMenu},
		{"Reports", c.reportsMenu},
		{"Configuration", c.configurationMenu},
	})
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, "Goodbye.")
		return nil
	}
	return err
}

func (c *console) customersMenu() error {
	return c.menu("CUSTOMERS", "Back", []menuItem{
		{"Register customer", c.registerCustomer},
		{"List customers", c.listCustomers},
		{"Search customers", c.searchCustomers},
		{"Customer detail", c.customerDetail},
		{"Edit customer", c.editCustomer},
		{"Delete customer", c.deleteCustomer},
	})
}

func (c *console) salesMenu() error {
	return c.menu("SALES", "Back", []menuItem{
		{"Record sale", c.recordSale},
		{"Sales by customer", c.customerSales},
		{"Sales of a day", c.daySales},
		{"All sales", c.allSales},
	})
}

func (c *console) reportsMenu() error {
	return c.menu("REPORTS", "Back", []menuItem{
		{"General statistics", c.dashboard},
		{"Sales statistics", c.salesStatistics},
	})
}

func (c *console) configurationMenu() error {
	return c.menu("CONFIGURATION", "Back", []menuItem{
		{"Active backend", c.showBackend},
		{"Migrate SQLite file to postgres", c.migrate},
	})
}

// menu prints items numbered from 1 with 0 as the leave option and runs the
// chosen action until 0 is picked. Action errors are reported and the menu
// is shown again; only errQuit propagates.
func (c *console) menu(title, leave string, items []menuItem) error {
	for {
		fmt.Fprintln(c.out)
		fmt.Fprintf(c.out, "── %s ──\n", title)
		for i, item := range items {
			fmt.Fprintf(c.out, "  %d. %s\n", i+1, item.label)
		}
		fmt.Fprintf(c.out, "  0. %s\n", leave)

		line, err := c.ask("> ")
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		choice, convErr := strconv.Atoi(line)
		switch {
		case convErr != nil || choice < 0 || choice > len(items):
			fmt.Fprintf(c.out, "Unknown option %q.\n", line)
		case choice == 0:
			if leave == "Exit" {
				return errQuit
			}
			return nil
		default:
			if err := items[choice-1].action(); err != nil {
				switch {
				case errors.Is(err, errQuit):
					return err
				case errors.Is(err, errCancelled):
					fmt.Fprintln(c.out, "Cancelled.")
				default:
					cli.PrintError(c.out, err)
				}
			}
		}
	}
}

// ask prints prompt and returns the trimmed reply. A closed input yields errQuit.
func (c *console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errQuit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ── Listings ─────────────────────────────────────────────────────────────────

func (c *console) listCustomers() error {
	result, err := c.svc.ListCustomers(c.ctx)
	if err != nil {
		return err
	}
	cli.PrintCustomers(c.out, "CUSTOMERS", result)
	return nil
}

func (c *console) searchCustomers() error {
	term, err := c.required("Search term")
	if err != nil {
		return err
	}
	result, err := c.svc.SearchCustomers(c.ctx, term)
	if err != nil {
		return err
	}
	cli.PrintCustomers(c.out, fmt.Sprintf("RESULTS FOR %q", term), result)
	return nil
}

func (c *console) customerDetail() error {
	customer, err := c.pickCustomer()
	if err != nil || customer == nil {
		return err
	}
	detail, err := c.svc.GetCustomerDetail(c.ctx, customer.ID)
	if err != nil {
		return err
	}
	cli.PrintCustomerDetail(c.out, detail)
	return nil
}

func (c *console) customerSales() error {
	customer, err := c.pickCustomer()
	if err != nil || customer == nil {
		return err
	}
	result, err := c.svc.ListCustomerSales(c.ctx, customer.ID)
	if err != nil {
		return err
	}
	cli.PrintSales(c.out, "SALES OF "+strings.ToUpper(customer.FullName), result.Sales)
	return nil
}

func (c *console) daySales() error {
	day, err := c.ask("Date YYYY-MM-DD [today]: ")
	if err != nil {
		return err
	}
	result, err := c.svc.DaySales(c.ctx, day)
	if err != nil {
		return err
	}
	cli.PrintDaySales(c.out, result)
	return nil
}

func (c *console) allSales() error {
	result, err := c.svc.ListSales(c.ctx)
	if err != nil {
		return err
	}
	cli.PrintSaleListings(c.out, "ALL SALES", result.Sales)
	return nil
}

func (c *console) dashboard() error {
	result, err := c.svc.Dashboard(c.ctx)
	if err != nil {
		return err
	}
	cli.PrintDashboard(c.out, result)
	return nil
}

func (c *console) salesStatistics() error {
	result, err := c.svc.SalesOverview(c.ctx)
	if err != nil {
		return err
	}
	cli.PrintSalesStats(c.out, result)
	return nil
}

func (c *console) showBackend() error {
	fmt.Fprintf(c.out, "Active backend: %s\n", c.svc.BackendKind())
	return nil
}
