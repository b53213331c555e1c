package db

import (
	"context"
	"errors"
)

// Kind names a storage backend implementation.
type Kind string

const (
	KindEmbedded Kind = "sqlite"
	KindServer   Kind = "postgres"
)

var (
	// ErrUniqueViolation is returned when a write collides with a unique constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrClosed is returned by every operation on a closed backend.
	ErrClosed = errors.New("backend is closed")
)

// Param is one statement parameter. Embedded statements bind params by position
// (?1, ?2, ...) in slice order; server statements bind them by name (@name).
type Param struct {
	Name  string
	Value any
}

// P builds a Param.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Result is the outcome of an Exec.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Querier runs statements. Backends and their transactions both implement it.
type Querier interface {
	// Query runs a read statement and returns every row keyed by column name.
	Query(ctx context.Context, sql string, params ...Param) ([]Row, error)
	// Exec runs an insert, update or delete.
	Exec(ctx context.Context, sql string, params ...Param) (Result, error)
}

// Tx is a backend transaction.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Backend is the storage contract shared by the embedded and server stores.
type Backend interface {
	Querier

	Kind() Kind
	// Connect establishes the connection, or reuses it when already open.
	Connect(ctx context.Context) error
	// CreateSchema creates tables and indexes. It is safe to call repeatedly.
	CreateSchema(ctx context.Context) error
	// LastInsertID returns the identifier generated by the most recent insert.
	LastInsertID() int64
	Begin(ctx context.Context) (Tx, error)
	// Statements returns the SQL text set written in this backend's dialect.
	Statements() *Statements
	Close() error
}

// Locker is implemented by backends that can hold a cross-process exclusive lock.
type Locker interface {
	// TryLock attempts to take the lock identified by key without waiting.
	// When ok is true the returned unlock func must be called to release it.
	TryLock(ctx context.Context, key int64) (unlock func(context.Context) error, ok bool, err error)
}
