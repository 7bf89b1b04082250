package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/config"
	"github.com/Raymond9734/storefront-backend/internal/db"
	"github.com/Raymond9734/storefront-backend/internal/observability/logger"
)

func main() {
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and inspect storefront schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit for the command")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), timeout, func(ctx context.Context, database *db.DB) error {
				applied, err := database.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), timeout, func(ctx context.Context, database *db.DB) error {
				migrations, err := database.MigrationStatus(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tAPPLIED AT")
				for _, m := range migrations {
					applied := "pending"
					if m.AppliedAt != nil {
						applied = m.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\n", m.Version, applied)
				}
				return tw.Flush()
			})
		},
	}

	root.AddCommand(upCmd, statusCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func withDatabase(ctx context.Context, timeout time.Duration, fn func(context.Context, *db.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "storefront-migrate"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	database, err := db.New(ctx, db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	return fn(ctx, database)
}
