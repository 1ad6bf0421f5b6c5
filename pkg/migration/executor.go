package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// lockID is the advisory lock key guarding migration runs.
const lockID int64 = 7_401_220_318

// Executor applies and rolls back migrations, tracking them in
// schema_migrations.
type Executor struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewExecutor creates an executor over pool.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{pool: pool, log: zap.NewNop()}
}

// WithLogger sets the logger used to report applied and rolled back migrations.
func (e *Executor) WithLogger(log *zap.Logger) *Executor {
	if log != nil {
		e.log = log.Named("migration")
	}
	return e
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMP,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_schema_migrations_status ON schema_migrations(status);
	`
	if _, err := e.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create schema_migrations: %w", runtime.Classify(err))
	}
	return nil
}

// Lock blocks until this process holds the migration advisory lock.
func (e *Executor) Lock(ctx context.Context) error {
	if _, err := e.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", lockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", runtime.Classify(err))
	}
	return nil
}

// Unlock releases the migration advisory lock.
func (e *Executor) Unlock(ctx context.Context) error {
	var released bool
	if err := e.pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", lockID).Scan(&released); err != nil {
		return fmt.Errorf("release migration lock: %w", runtime.Classify(err))
	}
	if !released {
		return fmt.Errorf("release migration lock: lock was not held")
	}
	return nil
}

// GetAppliedMigrations returns the applied migrations, oldest first.
func (e *Executor) GetAppliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	return e.records(ctx, "WHERE status = 'applied'")
}

// GetStatus pairs every known migration with its tracked record; untracked
// ones are reported pending.
func (e *Executor) GetStatus(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	tracked, err := e.records(ctx, "")
	if err != nil {
		return nil, err
	}
	byVersion := make(map[string]MigrationRecord, len(tracked))
	for _, r := range tracked {
		byVersion[r.Version] = r
	}

	out := make([]MigrationRecord, 0, len(migrations))
	for _, m := range migrations {
		r, ok := byVersion[m.Version]
		if !ok {
			r = MigrationRecord{Version: m.Version, Name: m.Name, Status: StatusPending}
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Executor) records(ctx context.Context, where string) ([]MigrationRecord, error) {
	rows, err := e.pool.Query(ctx,
		"SELECT version, name, status, applied_at, error FROM schema_migrations "+where+" ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", runtime.Classify(err))
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MigrationRecord, error) {
		var r MigrationRecord
		err := row.Scan(&r.Version, &r.Name, &r.Status, &r.AppliedAt, &r.Error)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan schema_migrations: %w", err)
	}
	return records, nil
}

func (e *Executor) isApplied(ctx context.Context, version string) (bool, error) {
	var applied bool
	err := e.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1 AND status = 'applied')",
		version,
	).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, runtime.Classify(err))
	}
	return applied, nil
}

// Apply runs m's up SQL in one transaction. A failing statement marks the
// migration failed and returns a *runtime.MigrationError.
func (e *Executor) Apply(ctx context.Context, m Migration, dryRun bool) error {
	applied, err := e.isApplied(ctx, m.Version)
	if err != nil {
		return err
	}
	if applied {
		return fmt.Errorf("migration %s is already applied", m.Version)
	}
	if dryRun {
		e.log.Info("would apply migration", zap.String("version", m.Version), zap.String("name", m.Name))
		return nil
	}

	err = pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, name, status) VALUES ($1, $2, 'pending') ON CONFLICT (version) DO UPDATE SET status = 'pending'",
			m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		if err := execScript(ctx, tx, m.Version, "statement", m.UpSQL); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			"UPDATE schema_migrations SET status = 'applied', applied_at = $1, error = NULL WHERE version = $2",
			time.Now(), m.Version,
		)
		return err
	})
	if err != nil {
		var merr *runtime.MigrationError
		if errors.As(err, &merr) {
			e.recordFailure(ctx, m, merr.Error())
		}
		return err
	}

	e.log.Info("applied migration", zap.String("version", m.Version), zap.String("name", m.Name))
	return nil
}

// recordFailure marks m failed outside the aborted transaction.
func (e *Executor) recordFailure(ctx context.Context, m Migration, msg string) {
	_, err := e.pool.Exec(ctx,
		`INSERT INTO schema_migrations (version, name, status, error, applied_at)
		 VALUES ($1, $2, 'failed', $3, $4)
		 ON CONFLICT (version) DO UPDATE SET status = 'failed', error = EXCLUDED.error, applied_at = EXCLUDED.applied_at`,
		m.Version, m.Name, msg, time.Now(),
	)
	if err != nil {
		e.log.Warn("could not record migration failure", zap.String("version", m.Version), zap.Error(err))
	}
	e.log.Error("migration failed", zap.String("version", m.Version), zap.String("error", msg))
}

// Rollback runs m's down SQL and forgets it in one transaction.
func (e *Executor) Rollback(ctx context.Context, m Migration, dryRun bool) error {
	applied, err := e.isApplied(ctx, m.Version)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("migration %s is not applied", m.Version)
	}
	if dryRun {
		e.log.Info("would roll back migration", zap.String("version", m.Version), zap.String("name", m.Name))
		return nil
	}

	err = pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		if err := execScript(ctx, tx, m.Version, "rollback statement", m.DownSQL); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", m.Version)
		return err
	})
	if err != nil {
		return err
	}

	e.log.Info("rolled back migration", zap.String("version", m.Version), zap.String("name", m.Name))
	return nil
}

func execScript(ctx context.Context, tx pgx.Tx, version, what, script string) error {
	for i, stmt := range splitSQL(script) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &runtime.MigrationError{
				Version: version,
				Message: fmt.Sprintf("%s %d failed", what, i+1),
				Err:     err,
			}
		}
	}
	return nil
}

// ApplyAll applies every pending migration in version order.
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration, dryRun bool) error {
	applied, err := e.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range Pending(migrations, applied) {
		if err := e.Apply(ctx, m, dryRun); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackSteps rolls back the steps most recently applied migrations.
func (e *Executor) RollbackSteps(ctx context.Context, steps int, migrations []Migration, dryRun bool) error {
	return e.rollbackWhile(ctx, migrations, dryRun, func(n int, _ MigrationRecord) bool {
		return n < steps
	})
}

// RollbackTo rolls back every applied migration newer than target.
func (e *Executor) RollbackTo(ctx context.Context, target string, migrations []Migration, dryRun bool) error {
	return e.rollbackWhile(ctx, migrations, dryRun, func(_ int, r MigrationRecord) bool {
		return r.Version > target
	})
}

func (e *Executor) rollbackWhile(ctx context.Context, migrations []Migration, dryRun bool, more func(n int, r MigrationRecord) bool) error {
	applied, err := e.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	plan, err := rollbackPlan(applied, migrations, more)
	if err != nil {
		return err
	}
	for _, m := range plan {
		if err := e.Rollback(ctx, m, dryRun); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// rollbackPlan walks applied newest first while more holds and returns the
// matching migrations in that order.
func rollbackPlan(applied []MigrationRecord, migrations []Migration, more func(n int, r MigrationRecord) bool) ([]Migration, error) {
	byVersion := make(map[string]Migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}
	var plan []Migration
	for i := len(applied) - 1; i >= 0 && more(len(plan), applied[i]); i-- {
		m, ok := byVersion[applied[i].Version]
		if !ok {
			return nil, fmt.Errorf("migration file not found for version %s", applied[i].Version)
		}
		plan = append(plan, m)
	}
	return plan, nil
}

// splitSQL splits a SQL script into statements on semicolons that sit outside
// quotes, dollar-quoted bodies and comments. Comment-only statements are dropped.
func splitSQL(sql string) []string {
	var (
		result  []string
		current strings.Builder
		dollar  string
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			result = append(result, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case dollar != "":
			if strings.HasPrefix(sql[i:], dollar) {
				current.WriteString(dollar)
				i += len(dollar) - 1
				dollar = ""
				continue
			}
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				i = len(sql)
			} else {
				i += end - 1
			}
			continue
		case c == '\'' || c == '"':
			end := strings.IndexByte(sql[i+1:], c)
			if end < 0 {
				current.WriteString(sql[i:])
				i = len(sql)
				continue
			}
			current.WriteString(sql[i : i+end+2])
			i += end + 1
			continue
		case c == '$':
			if tag := dollarTag(sql[i:]); tag != "" {
				dollar = tag
				current.WriteString(tag)
				i += len(tag) - 1
				continue
			}
		case c == ';':
			flush()
			continue
		}
		current.WriteByte(c)
	}
	flush()

	return result
}

// dollarTag returns the $tag$ opening s, or "" when s does not start one.
func dollarTag(s string) string {
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1]
		}
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || j > 1 && c >= '0' && c <= '9') {
			return ""
		}
	}
	return ""
}
