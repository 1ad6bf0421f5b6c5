// Package commands implements the agroexport command line.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/cmd/agroexport/output"
	"github.com/marshallshelly/agroexport/migrations"
	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/config"
	"github.com/marshallshelly/agroexport/pkg/logging"
	"github.com/marshallshelly/agroexport/pkg/migration"
	"github.com/marshallshelly/agroexport/pkg/runtime"
	"github.com/marshallshelly/agroexport/pkg/store"
)

var (
	// Global flags
	cfgFile       string
	dbURL         string
	migrationsDir string
	verbose       bool
	jsonOutput    bool

	// Set up by PersistentPreRunE.
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agroexport",
	Short: "AgroExport - agricultural export catalog service",
	Long: `AgroExport serves a public catalog of agricultural export products and a
company blog, collects quote requests and contact messages, and gives
administrators an API and terminal tools to curate the storefront.

Commands:
  serve      - Run the HTTP API
  migrate    - Manage the database schema
  dashboard  - Show quotes and messages in the terminal
  related    - Preview related products or posts
  config     - Write or show the configuration file`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dbURL != "" {
			loaded.Database.URL = dbURL
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides the configuration)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory of migration files (default: the embedded migrations)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// connect opens the configured database.
func connect(ctx context.Context) (*runtime.DB, error) {
	db, err := runtime.Connect(ctx, cfg.RuntimeConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("connected to database")
	return db, nil
}

// openStore connects and wires the data-access layer.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	db, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(builder.New(db), logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db.Close, nil
}

// loadMigrations reads --migrations-dir, or the embedded set when it is empty.
func loadMigrations() ([]migration.Migration, error) {
	if migrationsDir == "" {
		return migrations.All()
	}
	return migration.NewGenerator(migrationsDir).LoadAll()
}

func printJSON(v any) error {
	enc := json.NewEncoder(output.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
