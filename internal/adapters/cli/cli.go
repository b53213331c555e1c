package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gestorcloud/internal/app"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

const usage = `Available commands:
  customers | ls               list every customer
  search    | find <term>      search customers by name, email or company
  customer  | show <id>        customer detail with sales history
  sales     | v [customer-id]  list all sales, or one customer's
  today     | hoy [YYYY-MM-DD] sales of a day (default today)
  stats     | st               general statistics
  sales-stats | ss             sales statistics
  delete    | rm <id>          delete a customer without sales
  migrate   <sqlite-path>      copy a SQLite store into postgres`

// Run executes a one-shot CLI command, writing its output to out.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "customers", "ls":
		result, err := svc.ListCustomers(ctx)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		PrintCustomers(out, "CUSTOMERS", result)

	case "search", "find":
		if len(args) < 2 {
			return fmt.Errorf("%w: search <term>", ErrUsage)
		}
		term := strings.Join(args[1:], " ")
		result, err := svc.SearchCustomers(ctx, term)
		if err != nil {
			return fmt.Errorf("search customers: %w", err)
		}
		PrintCustomers(out, fmt.Sprintf("RESULTS FOR %q", term), result)

	case "customer", "show":
		id, err := idArg(args, "customer <id>")
		if err != nil {
			return err
		}
		detail, err := svc.GetCustomerDetail(ctx, id)
		if err != nil {
			return err
		}
		PrintCustomerDetail(out, detail)

	case "sales", "v":
		if len(args) > 1 {
			id, err := idArg(args, "sales [customer-id]")
			if err != nil {
				return err
			}
			result, err := svc.ListCustomerSales(ctx, id)
			if err != nil {
				return err
			}
			PrintSales(out, fmt.Sprintf("SALES OF CUSTOMER #%d", id), result.Sales)
			return nil
		}
		result, err := svc.ListSales(ctx)
		if err != nil {
			return fmt.Errorf("list sales: %w", err)
		}
		PrintSaleListings(out, "ALL SALES", result.Sales)

	case "today", "hoy":
		day := ""
		if len(args) > 1 {
			day = args[1]
		}
		result, err := svc.DaySales(ctx, day)
		if err != nil {
			return err
		}
		PrintDaySales(out, result)

	case "stats", "st":
		result, err := svc.Dashboard(ctx)
		if err != nil {
			return fmt.Errorf("statistics: %w", err)
		}
		PrintDashboard(out, result)

	case "sales-stats", "ss":
		result, err := svc.SalesOverview(ctx)
		if err != nil {
			return fmt.Errorf("sales statistics: %w", err)
		}
		PrintSalesStats(out, result)

	case "delete", "rm":
		id, err := idArg(args, "delete <id>")
		if err != nil {
			return err
		}
		if err := svc.RemoveCustomer(ctx, id); err != nil {
			return err
		}
		PrintSuccess(out, "Customer %d deleted.", id)

	case "migrate":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate <sqlite-path>", ErrUsage)
		}
		report, err := svc.Migrate(ctx, args[1])
		if err != nil {
			return err
		}
		PrintMigrationReport(out, report)
		if !report.Verification.Passed {
			return errors.New("migration verification failed")
		}

	case "help", "h":
		fmt.Fprintln(out, usage)

	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], usage)
	}
	return nil
}

func idArg(args []string, form string) (int64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: %s", ErrUsage, form)
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s (id must be a positive number)", ErrUsage, form)
	}
	return id, nil
}
