package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/agroexport/cmd/agroexport/output"
	"github.com/marshallshelly/agroexport/cmd/agroexport/tui"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/migration"
	"github.com/marshallshelly/agroexport/pkg/registry"
	"github.com/marshallshelly/agroexport/pkg/schema"
)

var (
	// Migrate flags
	dryRun        bool
	all           bool
	steps         int
	target        string
	interactive   bool
	migrationName string
	empty         bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Create and apply the catalog schema migrations.

Subcommands:
  up        - Apply pending migrations
  down      - Rollback migrations
  status    - Show migration status
  generate  - Write a migration for the catalog models`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations to update the database schema.

Examples:
  agroexport migrate up --all              # Apply all pending migrations
  agroexport migrate up --steps 1          # Apply next migration
  agroexport migrate up --dry-run --all    # Preview migrations without applying
  agroexport migrate up -i                 # Pick migrations interactively`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long: `Rollback applied migrations to revert database schema changes.

Examples:
  agroexport migrate down --steps 1        # Rollback last migration
  agroexport migrate down --target VERSION # Rollback to specific version
  agroexport migrate down --dry-run        # Preview rollback without executing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Show the status of all migrations (pending, applied, failed).

Examples:
  agroexport migrate status                # Show migration status
  agroexport migrate status --json         # Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

// migrateGenerateCmd writes migration files
var migrateGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate migration files",
	Long: `Generate timestamped up/down SQL files that create every catalog table from
the model definitions, or an empty pair for hand-written changes.

Examples:
  agroexport migrate generate --name create_catalog --migrations-dir ./migrations
  agroexport migrate generate --name backfill_slugs --empty`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateGenerate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateGenerateCmd)

	// Flags for migrate up
	migrateUpCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview migrations without applying")
	migrateUpCmd.Flags().BoolVar(&all, "all", false, "Apply all pending migrations")
	migrateUpCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply")

	// Flags for migrate down
	migrateDownCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview rollback without executing")
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to rollback")
	migrateDownCmd.Flags().StringVar(&target, "target", "", "Rollback to specific version")

	// Flags for migrate generate
	migrateGenerateCmd.Flags().StringVarP(&migrationName, "name", "n", "", "Migration name (required)")
	migrateGenerateCmd.Flags().BoolVar(&empty, "empty", false, "Generate empty migration for manual editing")
	_ = migrateGenerateCmd.MarkFlagRequired("name")
}

// withExecutor connects, prepares the tracking table and hands fn an
// executor together with the known migrations.
func withExecutor(ctx context.Context, fn func(*migration.Executor, []migration.Migration) error) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := migration.NewExecutor(db.Pool()).WithLogger(logger)
	if err := executor.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	return fn(executor, migrations)
}

// locked runs fn holding the migration lock unless this is a dry run.
func locked(ctx context.Context, executor *migration.Executor, fn func() error) error {
	if dryRun {
		return fn()
	}
	if err := executor.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() { _ = executor.Unlock(context.WithoutCancel(ctx)) }()
	return fn()
}

func runMigrateUp(ctx context.Context) error {
	return withExecutor(ctx, func(executor *migration.Executor, migrations []migration.Migration) error {
		if interactive {
			return tui.RunMigrateUI(ctx, "up", executor, migrations)
		}
		if len(migrations) == 0 {
			output.Warning("No migrations found")
			return nil
		}
		if !all && steps <= 0 {
			return fmt.Errorf("must specify --all or --steps")
		}

		return locked(ctx, executor, func() error {
			applied, err := executor.GetAppliedMigrations(ctx)
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %w", err)
			}
			toApply := migration.Pending(migrations, applied)
			if !all && len(toApply) > steps {
				toApply = toApply[:steps]
			}

			if len(toApply) == 0 {
				output.Info("No pending migrations")
				return nil
			}

			if dryRun {
				output.Section("DRY RUN - Preview")
				output.Info("The following migrations would be applied:")
				for _, mig := range toApply {
					output.Muted("  %s %s - %s", output.StatusIcon("pending"), mig.Version, mig.Name)
				}
				return nil
			}

			output.Section("Applying Migrations")
			for _, mig := range toApply {
				output.Info("Applying %s - %s...", mig.Version, mig.Name)
				if err := executor.Apply(ctx, mig, false); err != nil {
					output.Error("Failed to apply migration %s", mig.Version)
					return fmt.Errorf("failed to apply migration %s: %w", mig.Version, err)
				}
				output.Success("Applied %s", mig.Version)
			}
			output.Success("Successfully applied %d migration(s)", len(toApply))
			return nil
		})
	})
}

func runMigrateDown(ctx context.Context) error {
	return withExecutor(ctx, func(executor *migration.Executor, migrations []migration.Migration) error {
		if interactive {
			return tui.RunMigrateUI(ctx, "down", executor, migrations)
		}

		return locked(ctx, executor, func() error {
			if target != "" {
				if dryRun {
					output.Info("DRY RUN - Would rollback to version %s", target)
					return nil
				}
				output.Section("Rolling Back to Target Version")
				if err := executor.RollbackTo(ctx, target, migrations, false); err != nil {
					return fmt.Errorf("failed to rollback to %s: %w", target, err)
				}
				output.Success("Rolled back to version %s", target)
				return nil
			}

			applied, err := executor.GetAppliedMigrations(ctx)
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %w", err)
			}
			if len(applied) == 0 {
				output.Info("No migrations to rollback")
				return nil
			}

			n := min(steps, len(applied))
			if dryRun {
				output.Section("DRY RUN - Preview")
				output.Info("The following migrations would be rolled back:")
				for i := len(applied) - 1; i >= len(applied)-n; i-- {
					output.Muted("  %s %s - %s", output.StatusIcon("applied"), applied[i].Version, applied[i].Name)
				}
				return nil
			}

			output.Section("Rolling Back Migrations")
			if err := executor.RollbackSteps(ctx, n, migrations, false); err != nil {
				return err
			}
			output.Success("Successfully rolled back %d migration(s)", n)
			return nil
		})
	})
}

func runMigrateStatus(ctx context.Context) error {
	return withExecutor(ctx, func(executor *migration.Executor, migrations []migration.Migration) error {
		if len(migrations) == 0 {
			output.Warning("No migrations found")
			return nil
		}

		status, err := executor.GetStatus(ctx, migrations)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		if jsonOutput {
			return printJSON(status)
		}
		printStatus(status)
		return nil
	})
}

func printStatus(status []migration.MigrationRecord) {
	w := tabwriter.NewWriter(output.Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t----------")

	var pending, applied, failed int
	for _, record := range status {
		appliedAt := "N/A"
		if record.AppliedAt != nil {
			appliedAt = record.AppliedAt.Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			record.Version,
			record.Name,
			output.StatusIcon(string(record.Status)),
			record.Status,
			appliedAt,
		)

		switch record.Status {
		case migration.StatusPending:
			pending++
		case migration.StatusApplied:
			applied++
		case migration.StatusFailed:
			failed++
		}
	}
	_ = w.Flush()

	summary := fmt.Sprintf("\nSummary: %d applied, %d pending", applied, pending)
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	_, _ = fmt.Fprintln(output.Writer, summary)
}

// catalogTables parses the catalog models in declaration order.
func catalogTables() ([]*schema.TableMetadata, error) {
	reg := registry.NewRegistry()
	tables := make([]*schema.TableMetadata, 0, len(catalog.Models()))
	for _, m := range catalog.Models() {
		table, err := reg.GetOrRegister(m)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func runMigrateGenerate() error {
	dir := migrationsDir
	if dir == "" {
		dir = "./migrations"
	}
	generator := migration.NewGenerator(dir)

	var (
		file *migration.MigrationFile
		err  error
	)
	if empty {
		file, err = generator.GenerateEmpty(migrationName)
	} else {
		var tables []*schema.TableMetadata
		tables, err = catalogTables()
		if err != nil {
			return fmt.Errorf("failed to parse models: %w", err)
		}
		file, err = generator.Generate(migrationName, tables)
	}
	if err != nil {
		return fmt.Errorf("failed to generate migration: %w", err)
	}

	output.Success("Created migration: %s", file.Version)
	output.Muted("  Up:   %s", file.UpPath)
	output.Muted("  Down: %s", file.DownPath)
	if empty {
		output.Info("Edit the SQL files manually to add your migration logic.")
	}
	return nil
}
