// Command kinerja-admin runs one-off maintenance tasks against the database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/geocoder89/kinerjahub/internal/config"
	"github.com/geocoder89/kinerjahub/internal/db"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/geocoder89/kinerjahub/internal/repo/postgres"
	"github.com/geocoder89/kinerjahub/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:          "kinerja-admin",
		Short:        "Maintenance commands for the kinerja database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "database url (defaults to DATABASE_URL)")

	withPool := func(run func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dbURL != "" {
				cfg.DBURL = dbURL
			}

			pool, err := db.NewPool(cmd.Context(), cfg.DBURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			return run(cmd.Context(), cfg, pool)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: withPool(func(ctx context.Context, _ config.Config, pool *pgxpool.Pool) error {
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Println("schema applied")
			return nil
		}),
	})

	var migrateFirst bool
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert starter units, accounts and categories",
		Args:  cobra.NoArgs,
		RunE: withPool(func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
			if migrateFirst {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
			}
			log := observability.NewLogger(cfg.Env)
			stores := postgres.NewStores(pool, nil)
			return db.Seed(ctx, stores, security.NewBcryptHasher(cfg.BcryptCost), log)
		}),
	}
	seed.Flags().BoolVar(&migrateFirst, "migrate", false, "apply the schema before seeding")
	root.AddCommand(seed)

	return root
}
