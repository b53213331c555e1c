package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gestorcloud/internal/db"

	"go.uber.org/zap"
)

// AddCustomer inserts a new customer and returns its generated id.
func (r *repository) AddCustomer(ctx context.Context, c *Customer) (id int64, err error) {
	defer func(start time.Time) { r.observe("add_customer", start, err) }(time.Now())

	now := r.now()
	if c.RegisteredOn == "" {
		c.RegisteredOn = now.Format(DateLayout)
	}
	if c.UpdatedAt == "" {
		c.UpdatedAt = now.Format(TimestampLayout)
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return 0, err
	}

	id, err = r.insertCustomer(ctx, r.backend, c)
	if err != nil {
		return 0, err
	}
	c.ID = id

	r.logger.Debug("customer added", zap.Int64("customer_id", id), zap.String("email", c.Email))
	return id, nil
}

func (r *repository) insertCustomer(ctx context.Context, q db.Querier, c *Customer) (int64, error) {
	res, err := q.Exec(ctx, r.stmts.InsertCustomer, customerInsertParams(c)...)
	if err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return 0, &DuplicateEmailError{Email: c.Email}
		}
		return 0, fmt.Errorf("failed to insert customer %s: %w", c.Email, err)
	}
	return res.LastInsertID, nil
}

// GetCustomer returns the customer with id, or nil when absent.
func (r *repository) GetCustomer(ctx context.Context, id int64) (c *Customer, err error) {
	defer func(start time.Time) { r.observe("get_customer", start, err) }(time.Now())
	return r.getCustomer(ctx, r.backend, id)
}

func (r *repository) getCustomer(ctx context.Context, q db.Querier, id int64) (*Customer, error) {
	rows, err := q.Query(ctx, r.stmts.GetCustomer, db.P("id", id))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := customerFromRow(rows[0])
	return &c, nil
}

func (r *repository) customerByEmail(ctx context.Context, q db.Querier, email string) (*Customer, error) {
	rows, err := q.Query(ctx, r.stmts.GetCustomerByEmail, db.P("email", email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer %s: %w", email, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := customerFromRow(rows[0])
	return &c, nil
}

// ListCustomers returns all customers ordered by full name.
func (r *repository) ListCustomers(ctx context.Context) (customers []Customer, err error) {
	defer func(start time.Time) { r.observe("list_customers", start, err) }(time.Now())

	rows, err := r.backend.Query(ctx, r.stmts.ListCustomers)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customersFromRows(rows), nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchCustomers returns customers whose name, email or company contains term.
func (r *repository) SearchCustomers(ctx context.Context, term string) (customers []Customer, err error) {
	defer func(start time.Time) { r.observe("search_customers", start, err) }(time.Now())

	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	rows, err := r.backend.Query(ctx, r.stmts.SearchCustomers, db.P("pattern", pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to search customers for %q: %w", term, err)
	}
	return customersFromRows(rows), nil
}

// UpdateCustomer writes every mutable field of c.
func (r *repository) UpdateCustomer(ctx context.Context, c *Customer) (ok bool, err error) {
	defer func(start time.Time) { r.observe("update_customer", start, err) }(time.Now())

	c.Touch(r.now())
	c.Normalize()
	if err := c.Validate(); err != nil {
		return false, err
	}

	ok, err = r.updateCustomer(ctx, r.backend, c)
	if err != nil {
		return false, err
	}
	r.logger.Debug("customer updated", zap.Int64("customer_id", c.ID), zap.Bool("matched", ok))
	return ok, nil
}

func (r *repository) updateCustomer(ctx context.Context, q db.Querier, c *Customer) (bool, error) {
	res, err := q.Exec(ctx, r.stmts.UpdateCustomer, customerUpdateParams(c)...)
	if err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return false, &DuplicateEmailError{Email: c.Email}
		}
		return false, fmt.Errorf("failed to update customer %d: %w", c.ID, err)
	}
	return res.RowsAffected > 0, nil
}

// DeleteCustomer deletes a customer with no sales.
func (r *repository) DeleteCustomer(ctx context.Context, id int64) (ok bool, err error) {
	defer func(start time.Time) { r.observe("delete_customer", start, err) }(time.Now())

	sales, err := countRows(ctx, r.backend, r.stmts.CountSalesForCustomer, db.P("id", id))
	if err != nil {
		return false, fmt.Errorf("failed to count sales of customer %d: %w", id, err)
	}
	if sales > 0 {
		return false, &CustomerHasSalesError{CustomerID: id, Sales: sales}
	}

	res, err := r.backend.Exec(ctx, r.stmts.DeleteCustomer, db.P("id", id))
	if err != nil {
		return false, fmt.Errorf("failed to delete customer %d: %w", id, err)
	}

	r.logger.Debug("customer deleted", zap.Int64("customer_id", id), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected > 0, nil
}
