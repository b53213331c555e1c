package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolLimits bounds the server backend's connection pool.
type PoolLimits struct {
	MinConns int32
	MaxConns int32
}

// DefaultPoolLimits keeps one idle connection and allows ten concurrent ones.
var DefaultPoolLimits = PoolLimits{MinConns: 1, MaxConns: 10}

// ServerBackend stores customers and sales in PostgreSQL through a pgx pool.
type ServerBackend struct {
	url    string
	limits PoolLimits
	stmts  *Statements

	mu     sync.RWMutex
	pool   *pgxpool.Pool
	closed bool

	lastID atomic.Int64
}

// NewServer returns a backend for the PostgreSQL database at url. The pool is
// created on Connect.
func NewServer(url string, limits PoolLimits) *ServerBackend {
	if limits.MaxConns <= 0 {
		limits.MaxConns = DefaultPoolLimits.MaxConns
	}
	if limits.MinConns <= 0 || limits.MinConns > limits.MaxConns {
		limits.MinConns = DefaultPoolLimits.MinConns
	}
	return &ServerBackend{url: url, limits: limits, stmts: serverStatements()}
}

func (b *ServerBackend) Kind() Kind               { return KindServer }
func (b *ServerBackend) Statements() *Statements { return b.stmts }
func (b *ServerBackend) LastInsertID() int64     { return b.lastID.Load() }

// Connect creates and pings the pool. Calling it again reuses the pool.
func (b *ServerBackend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.pool != nil {
		return nil
	}
	if b.url == "" {
		return fmt.Errorf("postgres connection URL not set")
	}

	config, err := pgxpool.ParseConfig(b.url)
	if err != nil {
		return fmt.Errorf("unable to parse postgres URL: %w", err)
	}
	config.MinConns = b.limits.MinConns
	config.MaxConns = b.limits.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	b.pool = pool
	return nil
}

func (b *ServerBackend) handle() (*pgxpool.Pool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.pool == nil {
		return nil, fmt.Errorf("postgres backend not connected")
	}
	return b.pool, nil
}

// Pool exposes the underlying pool for callers that need pgx directly.
func (b *ServerBackend) Pool() (*pgxpool.Pool, error) {
	return b.handle()
}

// CreateSchema creates both tables and the five secondary indexes.
func (b *ServerBackend) CreateSchema(ctx context.Context) error {
	pool, err := b.handle()
	if err != nil {
		return err
	}
	for _, stmt := range serverSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create postgres schema: %w", err)
		}
	}
	return nil
}

func (b *ServerBackend) Query(ctx context.Context, sql string, params ...Param) ([]Row, error) {
	pool, err := b.handle()
	if err != nil {
		return nil, err
	}
	return pgQuery(ctx, pool, sql, params)
}

func (b *ServerBackend) Exec(ctx context.Context, sql string, params ...Param) (Result, error) {
	pool, err := b.handle()
	if err != nil {
		return Result{}, err
	}
	res, err := pgExec(ctx, pool, sql, params)
	if err != nil {
		return Result{}, err
	}
	if res.LastInsertID > 0 {
		b.lastID.Store(res.LastInsertID)
	}
	return res, nil
}

func (b *ServerBackend) Begin(ctx context.Context) (Tx, error) {
	pool, err := b.handle()
	if err != nil {
		return nil, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &serverTx{tx: tx, backend: b}, nil
}

// TryLock takes a session-level advisory lock on a dedicated pooled connection.
// The connection is held until unlock is called.
func (b *ServerBackend) TryLock(ctx context.Context, key int64) (func(context.Context) error, bool, error) {
	pool, err := b.handle()
	if err != nil {
		return nil, false, err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to query advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", key); err != nil {
			return fmt.Errorf("failed to release advisory lock: %w", err)
		}
		return nil
	}
	return unlock, true, nil
}

// Close returns every connection and shuts the pool down.
func (b *ServerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}

type serverTx struct {
	tx      pgx.Tx
	backend *ServerBackend
}

func (t *serverTx) Query(ctx context.Context, sql string, params ...Param) ([]Row, error) {
	return pgQuery(ctx, t.tx, sql, params)
}

func (t *serverTx) Exec(ctx context.Context, sql string, params ...Param) (Result, error) {
	res, err := pgExec(ctx, t.tx, sql, params)
	if err != nil {
		return Result{}, err
	}
	if res.LastInsertID > 0 {
		t.backend.lastID.Store(res.LastInsertID)
	}
	return res, nil
}

func (t *serverTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *serverTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func named(params []Param) []any {
	if len(params) == 0 {
		return nil
	}
	args := pgx.NamedArgs{}
	for _, p := range params {
		args[p.Name] = p.Value
	}
	return []any{args}
}

func pgQuery(ctx context.Context, q pgxQuerier, sql string, params []Param) ([]Row, error) {
	rows, err := q.Query(ctx, sql, named(params)...)
	if err != nil {
		return nil, mapPgError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(err)
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func pgExec(ctx context.Context, q pgxQuerier, sql string, params []Param) (Result, error) {
	if strings.Contains(strings.ToUpper(sql), "RETURNING") {
		var id int64
		if err := q.QueryRow(ctx, sql, named(params)...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Result{}, nil
			}
			return Result{}, mapPgError(err)
		}
		return Result{RowsAffected: 1, LastInsertID: id}, nil
	}

	tag, err := q.Exec(ctx, sql, named(params)...)
	if err != nil {
		return Result{}, mapPgError(err)
	}
	return Result{RowsAffected: tag.RowsAffected()}, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Detail)
	}
	return err
}
