// Command dronewatch-migrate applies the Incident Store's SQL migrations
// against the configured Postgres database. Structured as a small cobra
// CLI (up / status), following the teacher's apisix-go-runner cobra-root
// convention.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dronewatch/dronewatch/internal/config"
	"github.com/dronewatch/dronewatch/internal/store/migrations"
)

const schemaHistoryTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrations(cmd.Context())
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printStatus(cmd.Context())
		},
	}
}

func connectPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaHistoryTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	return pool, nil
}

func runMigrations(ctx context.Context) error {
	pool, err := connectPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := migrations.Load()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	for _, f := range files {
		var alreadyApplied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, f.Name,
		).Scan(&alreadyApplied); err != nil {
			return fmt.Errorf("check %s: %w", f.Name, err)
		}
		if alreadyApplied {
			fmt.Printf("skip  %s (already applied)\n", f.Name)
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f.Name, err)
		}
		if _, err := tx.Exec(ctx, f.SQL); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("apply %s: %w", f.Name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, f.Name); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("record %s: %w", f.Name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s: %w", f.Name, err)
		}
		fmt.Printf("apply %s\n", f.Name)
	}
	return nil
}

func printStatus(ctx context.Context) error {
	pool, err := connectPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := migrations.Load()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	for _, f := range files {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, f.Name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check %s: %w", f.Name, err)
		}
		status := "pending"
		if applied {
			status = "applied"
		}
		fmt.Printf("%-30s %s\n", f.Name, status)
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:  "dronewatch-migrate [command]",
		Long: "Applies and reports on the DroneWatch Incident Store's SQL migrations.",
	}
	root.AddCommand(newUpCommand(), newStatusCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
