// Command shieldctl is the operator CLI for Listing Shield. It imports
// compliance rules, runs migrations and maintains the verdict cache.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/listingshield/internal/config"
	"github.com/kiranshivaraju/listingshield/internal/store"
)

// openStoreFunc connects to the data store and returns a release function.
type openStoreFunc func(ctx context.Context) (store.Store, func(), error)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := newRootCmd(openPostgres).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openStoreFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "shieldctl",
		Short:         "Operate a Listing Shield deployment",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newRulesCmd(open),
		newCacheCmd(open),
		newMigrateCmd(),
	)
	return root
}

func openPostgres(ctx context.Context) (store.Store, func(), error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := store.RunMigrations(cfg.Database.URL, dir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding migration files")
	return cmd
}
