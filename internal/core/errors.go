package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationTarget is returned when a migration is requested on a repository
	// that is not bound to the server backend.
	ErrMigrationTarget = errors.New("migration requires the postgres backend")
	// ErrMigrationLocked is returned when another migration holds the server lock.
	ErrMigrationLocked = errors.New("another migration is currently running")
)

// ValidationError reports a malformed or missing field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DuplicateEmailError reports that a customer with the email already exists.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("a customer with email %s already exists", e.Email)
}

// CustomerHasSalesError blocks deletion of a customer that owns sales.
type CustomerHasSalesError struct {
	CustomerID int64
	Sales      int
}

func (e *CustomerHasSalesError) Error() string {
	return fmt.Sprintf("customer %d has %d associated sales and cannot be deleted", e.CustomerID, e.Sales)
}

// CustomerNotFoundError reports an operation on a customer id that does not exist.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsDuplicateEmail reports whether err carries a *DuplicateEmailError.
func IsDuplicateEmail(err error) bool {
	var d *DuplicateEmailError
	return errors.As(err, &d)
}
