package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gestorcloud/internal/db"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	customerBatchSize = 10
	saleBatchSize     = 20

	// CustomerCompleteness and SaleCompleteness are the minimum percentages of
	// source records that must be present in the target for a run to pass.
	CustomerCompleteness = 95.0
	SaleCompleteness     = 90.0

	migrationLockKey int64 = 0x6765_7374_6f72 // "gestor"
)

// PhaseReport counts what happened to the records of one migration phase.
type PhaseReport struct {
	Migrated int `json:"migrated"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Verification compares record counts between the two stores after a run.
type Verification struct {
	SourceCustomers int     `json:"source_customers"`
	TargetCustomers int     `json:"target_customers"`
	SourceSales     int     `json:"source_sales"`
	TargetSales     int     `json:"target_sales"`
	CustomerPercent float64 `json:"customer_percent"`
	SalePercent     float64 `json:"sale_percent"`
	Passed          bool    `json:"passed"`
}

// MigrationReport is the outcome of MigrateFrom.
type MigrationReport struct {
	Source       string       `json:"source"`
	Customers    PhaseReport  `json:"customers"`
	Sales        PhaseReport  `json:"sales"`
	Verification Verification `json:"verification"`
}

// MigrateFrom copies customers then sales from the SQLite file at path into the
// postgres store. Customers are matched by email, so re-running the migration
// updates instead of duplicating; sales are remapped to the postgres customer
// ids through the same email join and skipped when an equivalent sale exists.
// Per-record failures are counted and logged without stopping the run.
func (r *repository) MigrateFrom(ctx context.Context, path string) (*MigrationReport, error) {
	if r.backend.Kind() != db.KindServer {
		return nil, ErrMigrationTarget
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite database %s not readable: %w", path, err)
	}

	if locker, ok := r.backend.(db.Locker); ok {
		unlock, locked, err := locker.TryLock(ctx, migrationLockKey)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrMigrationLocked
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release migration lock", zap.Error(err))
			}
		}()
	}

	source := db.NewEmbedded(path)
	if err := source.Connect(ctx); err != nil {
		return nil, err
	}
	defer source.Close()

	report := &MigrationReport{Source: path}
	r.logger.Info("migration started", zap.String("source", path))

	if err := r.migrateCustomers(ctx, source, &report.Customers); err != nil {
		return report, err
	}
	r.logPhase("customers", report.Customers)

	mapping, err := r.customerIDMapping(ctx, source)
	if err != nil {
		return report, err
	}

	if err := r.migrateSales(ctx, source, mapping, &report.Sales); err != nil {
		return report, err
	}
	r.logPhase("sales", report.Sales)

	if report.Verification, err = r.verifyMigration(ctx, source); err != nil {
		return report, err
	}
	v := report.Verification
	r.logger.Info("migration verified",
		zap.Int("source_customers", v.SourceCustomers),
		zap.Int("target_customers", v.TargetCustomers),
		zap.Float64("customer_percent", v.CustomerPercent),
		zap.Int("source_sales", v.SourceSales),
		zap.Int("target_sales", v.TargetSales),
		zap.Float64("sale_percent", v.SalePercent),
		zap.Bool("passed", v.Passed),
	)
	return report, nil
}

func (r *repository) migrateCustomers(ctx context.Context, source db.Backend, phase *PhaseReport) error {
	rows, err := source.Query(ctx, source.Statements().ListCustomers)
	if err != nil {
		return fmt.Errorf("failed to read sqlite customers: %w", err)
	}

	batch := &batchWriter{backend: r.backend, size: customerBatchSize}
	defer batch.abort(ctx)

	for _, row := range rows {
		c := customerFromRow(row)
		sourceID := c.ID
		c.Normalize()
		if err := c.Validate(); err != nil {
			r.recordFailure("customers", phase, zap.Int64("sqlite_id", sourceID), err)
			continue
		}

		tx, err := batch.tx(ctx)
		if err != nil {
			return err
		}

		var updated bool
		recordErr, err := withSavepoint(ctx, tx, func() error {
			existing, err := r.customerByEmail(ctx, tx, c.Email)
			if err != nil {
				return err
			}
			if existing == nil {
				_, err := r.insertCustomer(ctx, tx, &c)
				return err
			}
			c.ID = existing.ID
			c.RegisteredOn = existing.RegisteredOn
			c.Touch(r.now())
			updated = true
			_, err = r.updateCustomer(ctx, tx, &c)
			return err
		})
		if err != nil {
			return err
		}
		if recordErr != nil {
			r.recordFailure("customers", phase, zap.String("email", c.Email), recordErr)
			continue
		}

		if updated {
			phase.Updated++
			r.metrics.MigrationRecord("customers", "updated")
		} else {
			phase.Migrated++
			r.metrics.MigrationRecord("customers", "migrated")
		}
		if err := batch.done(ctx); err != nil {
			return err
		}
	}
	return batch.flush(ctx)
}

// customerIDMapping maps sqlite customer ids to postgres customer ids by email.
func (r *repository) customerIDMapping(ctx context.Context, source db.Backend) (map[int64]int64, error) {
	sourceRows, err := source.Query(ctx, source.Statements().CustomerEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to read sqlite customer emails: %w", err)
	}
	targetRows, err := r.backend.Query(ctx, r.stmts.CustomerEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to read postgres customer emails: %w", err)
	}
	return joinByEmail(sourceRows, targetRows), nil
}

func joinByEmail(sourceRows, targetRows []db.Row) map[int64]int64 {
	byEmail := make(map[string]int64, len(targetRows))
	for _, row := range targetRows {
		byEmail[normalizeEmail(row.String("email"))] = row.Int64("id")
	}
	mapping := make(map[int64]int64, len(sourceRows))
	for _, row := range sourceRows {
		if id, ok := byEmail[normalizeEmail(row.String("email"))]; ok {
			mapping[row.Int64("id")] = id
		}
	}
	return mapping
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *repository) migrateSales(ctx context.Context, source db.Backend, mapping map[int64]int64, phase *PhaseReport) error {
	rows, err := source.Query(ctx, source.Statements().ListSales)
	if err != nil {
		return fmt.Errorf("failed to read sqlite sales: %w", err)
	}

	batch := &batchWriter{backend: r.backend, size: saleBatchSize}
	defer batch.abort(ctx)

	for _, row := range rows {
		s := saleFromRow(row)
		sourceID := s.ID

		targetCustomer, ok := mapping[s.CustomerID]
		if !ok {
			phase.Skipped++
			r.metrics.MigrationRecord("sales", "skipped")
			r.logger.Warn("sale skipped: customer not migrated",
				zap.Int64("sqlite_id", sourceID), zap.Int64("sqlite_customer_id", s.CustomerID))
			continue
		}
		s.CustomerID = targetCustomer
		s.Normalize()
		if err := s.Validate(); err != nil {
			r.recordFailure("sales", phase, zap.Int64("sqlite_id", sourceID), err)
			continue
		}

		tx, err := batch.tx(ctx)
		if err != nil {
			return err
		}

		var duplicate bool
		recordErr, err := withSavepoint(ctx, tx, func() error {
			n, err := countRows(ctx, tx, r.stmts.CountEquivalentSales,
				db.P("customer_id", s.CustomerID),
				db.P("sale_date", s.SaleDate),
				db.P("sale_time", s.SaleTime),
				db.P("total_value", s.TotalValue),
			)
			if err != nil {
				return err
			}
			if n > 0 {
				duplicate = true
				return nil
			}
			_, err = tx.Exec(ctx, r.stmts.InsertSale, saleInsertParams(&s)...)
			return err
		})
		if err != nil {
			return err
		}
		if recordErr != nil {
			r.recordFailure("sales", phase, zap.Int64("sqlite_id", sourceID), recordErr)
			continue
		}

		if duplicate {
			phase.Skipped++
			r.metrics.MigrationRecord("sales", "skipped")
			r.logger.Debug("sale skipped: already migrated", zap.Int64("sqlite_id", sourceID))
			continue
		}
		phase.Migrated++
		r.metrics.MigrationRecord("sales", "migrated")
		if err := batch.done(ctx); err != nil {
			return err
		}
	}
	return batch.flush(ctx)
}

func (r *repository) verifyMigration(ctx context.Context, source db.Backend) (Verification, error) {
	var v Verification
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		v.SourceCustomers, err = countRows(gctx, source, source.Statements().CountCustomers)
		return err
	})
	g.Go(func() (err error) {
		v.SourceSales, err = countRows(gctx, source, source.Statements().CountSales)
		return err
	})
	g.Go(func() (err error) {
		v.TargetCustomers, err = countRows(gctx, r.backend, r.stmts.CountCustomers)
		return err
	})
	g.Go(func() (err error) {
		v.TargetSales, err = countRows(gctx, r.backend, r.stmts.CountSales)
		return err
	})
	if err := g.Wait(); err != nil {
		return v, fmt.Errorf("failed to verify migration: %w", err)
	}

	v.CustomerPercent = completeness(v.TargetCustomers, v.SourceCustomers)
	v.SalePercent = completeness(v.TargetSales, v.SourceSales)
	v.Passed = v.CustomerPercent >= CustomerCompleteness && v.SalePercent >= SaleCompleteness
	return v, nil
}

// completeness is target as a percentage of source, 0 when source is empty.
func completeness(target, source int) float64 {
	if source == 0 {
		return 0
	}
	return float64(target) / float64(source) * 100
}

func (r *repository) recordFailure(phaseName string, phase *PhaseReport, field zap.Field, err error) {
	phase.Errors++
	r.metrics.MigrationRecord(phaseName, "errored")
	r.logger.Error("migration record failed", zap.String("phase", phaseName), field, zap.Error(err))
}

func (r *repository) logPhase(name string, phase PhaseReport) {
	r.logger.Info("migration phase finished",
		zap.String("phase", name),
		zap.Int("migrated", phase.Migrated),
		zap.Int("updated", phase.Updated),
		zap.Int("skipped", phase.Skipped),
		zap.Int("errors", phase.Errors),
	)
}

// batchWriter groups writes into transactions of at most size records.
type batchWriter struct {
	backend db.Backend
	size    int
	current db.Tx
	pending int
}

func (b *batchWriter) tx(ctx context.Context) (db.Tx, error) {
	if b.current != nil {
		return b.current, nil
	}
	tx, err := b.backend.Begin(ctx)
	if err != nil {
		return nil, err
	}
	b.current = tx
	return tx, nil
}

// done counts one written record and commits once the batch is full.
func (b *batchWriter) done(ctx context.Context) error {
	b.pending++
	if b.pending < b.size {
		return nil
	}
	return b.flush(ctx)
}

func (b *batchWriter) flush(ctx context.Context) error {
	if b.current == nil {
		return nil
	}
	err := b.current.Commit(ctx)
	b.current = nil
	b.pending = 0
	return err
}

func (b *batchWriter) abort(ctx context.Context) {
	if b.current != nil {
		_ = b.current.Rollback(ctx)
		b.current = nil
	}
}

// withSavepoint runs fn inside a savepoint of tx. A failure of fn is rolled back
// to the savepoint and returned as recordErr; err is set only when the
// transaction itself can no longer be used.
func withSavepoint(ctx context.Context, tx db.Tx, fn func() error) (recordErr, err error) {
	if _, err := tx.Exec(ctx, "SAVEPOINT migrate_record"); err != nil {
		return nil, fmt.Errorf("failed to open savepoint: %w", err)
	}
	if recordErr = fn(); recordErr != nil {
		if _, err := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT migrate_record"); err != nil {
			return recordErr, errors.Join(recordErr, fmt.Errorf("failed to roll back savepoint: %w", err))
		}
	}
	if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT migrate_record"); err != nil {
		return recordErr, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return recordErr, nil
}
