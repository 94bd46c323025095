package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkeller/policyvault/internal/logger"
	"github.com/pkeller/policyvault/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the engine's schema to the configured Postgres database.

The DDL is idempotent, so running migrate repeatedly is safe.

Example:
  DATABASE_URL=postgres://localhost/policyvault ./policyvault migrate`,
	Run: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	log := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
	})

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	log.Info().Msg("connecting to database")
	db, err := store.NewDB(dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := store.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("schema applied")
}
