package main

import (
	"encoding/json"
	"os"

	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

// openDB is swapped out by tests.
var openDB = func(cfg *config.Config) (*gorm.DB, error) {
	return database.NewConnection(cfg.DSN(), database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
}

type app struct {
	cfg *config.Config
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Operate the invoicer database from the command line",
		Long: `invoicectl runs maintenance tasks against the invoicer database:
schema migration, invoice number allocation and analytics reports.

Configuration is read from the environment (and configs/.env when present),
using the same variables as the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load("configs/.env")

			cfg := config.Load()
			if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newNextNumberCmd(a),
		newAnalyticsCmd(a),
	)
	return rootCmd
}

// connect opens the database once per invocation.
func (a *app) connect() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := openDB(a.cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
