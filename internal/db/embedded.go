package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// EmbeddedBackend stores customers and sales in a single SQLite file.
type EmbeddedBackend struct {
	path  string
	stmts *Statements

	mu     sync.RWMutex
	db     *sql.DB
	closed bool

	lastID atomic.Int64
}

// NewEmbedded returns a backend for the SQLite file at path. Nothing is opened
// until Connect.
func NewEmbedded(path string) *EmbeddedBackend {
	return &EmbeddedBackend{path: path, stmts: embeddedStatements()}
}

func (b *EmbeddedBackend) Kind() Kind               { return KindEmbedded }
func (b *EmbeddedBackend) Statements() *Statements { return b.stmts }
func (b *EmbeddedBackend) LastInsertID() int64     { return b.lastID.Load() }

// Path returns the database file location.
func (b *EmbeddedBackend) Path() string { return b.path }

// Connect opens the database file, creating its directory when missing.
func (b *EmbeddedBackend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.db != nil {
		return nil
	}

	if dir := filepath.Dir(b.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", b.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("unable to open sqlite database: %w", err)
	}
	// One writer per file; a single connection also keeps last_insert_rowid meaningful.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("unable to ping sqlite database: %w", err)
	}

	b.db = conn
	return nil
}

func (b *EmbeddedBackend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.db == nil {
		return nil, fmt.Errorf("sqlite backend not connected")
	}
	return b.db, nil
}

// CreateSchema creates the customers and sales tables.
func (b *EmbeddedBackend) CreateSchema(ctx context.Context) error {
	conn, err := b.handle()
	if err != nil {
		return err
	}
	for _, stmt := range embeddedSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create sqlite schema: %w", err)
		}
	}
	return nil
}

func (b *EmbeddedBackend) Query(ctx context.Context, query string, params ...Param) ([]Row, error) {
	conn, err := b.handle()
	if err != nil {
		return nil, err
	}
	return sqliteQuery(ctx, conn, query, params)
}

func (b *EmbeddedBackend) Exec(ctx context.Context, query string, params ...Param) (Result, error) {
	conn, err := b.handle()
	if err != nil {
		return Result{}, err
	}
	res, err := sqliteExec(ctx, conn, query, params)
	if err != nil {
		return Result{}, err
	}
	if res.LastInsertID > 0 {
		b.lastID.Store(res.LastInsertID)
	}
	return res, nil
}

// Begin starts a transaction on the single underlying connection. Until it is
// committed or rolled back every other call on the backend waits.
func (b *EmbeddedBackend) Begin(ctx context.Context) (Tx, error) {
	conn, err := b.handle()
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sqlite transaction: %w", err)
	}
	return &embeddedTx{tx: tx, backend: b}, nil
}

// Close releases the file handle. Further calls return ErrClosed.
func (b *EmbeddedBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

type embeddedTx struct {
	tx      *sql.Tx
	backend *EmbeddedBackend
}

func (t *embeddedTx) Query(ctx context.Context, query string, params ...Param) ([]Row, error) {
	return sqliteQuery(ctx, t.tx, query, params)
}

func (t *embeddedTx) Exec(ctx context.Context, query string, params ...Param) (Result, error) {
	res, err := sqliteExec(ctx, t.tx, query, params)
	if err != nil {
		return Result{}, err
	}
	if res.LastInsertID > 0 {
		t.backend.lastID.Store(res.LastInsertID)
	}
	return res, nil
}

func (t *embeddedTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to commit sqlite transaction: %w", err)
	}
	return nil
}

func (t *embeddedTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// sqlRunner is satisfied by *sql.DB and *sql.Tx.
type sqlRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func positional(params []Param) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Value
	}
	return args
}

func sqliteQuery(ctx context.Context, r sqlRunner, query string, params []Param) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.QueryContext(ctx, query, positional(params)...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return out, nil
}

func sqliteExec(ctx context.Context, r sqlRunner, query string, params []Param) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res, err := r.ExecContext(ctx, query, positional(params)...)
	if err != nil {
		return Result{}, mapSQLiteError(err)
	}

	var out Result
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT") {
		if out.LastInsertID, err = res.LastInsertId(); err != nil {
			return Result{}, fmt.Errorf("failed to read inserted id: %w", err)
		}
	}
	return out, nil
}

func mapSQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")) {
			return fmt.Errorf("%w: %s", ErrUniqueViolation, sqliteErr.Error())
		}
	}
	return err
}
