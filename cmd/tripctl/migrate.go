package main

import (
	"database/sql"
	"fmt"

	"github.com/caarlos0/env/v11"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripshare/migrations"
)

type dbConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

// withProvider opens DATABASE_URL and hands fn a goose provider over the
// embedded migrations.
func withProvider(fn func(*goose.Provider) error) error {
	cfg, err := env.ParseAs[dbConfig]()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	p, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(p)
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(func(p *goose.Provider) error {
				results, err := p.Up(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
				}
				return nil
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(func(p *goose.Provider) error {
				r, err := p.Down(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d %s\n", r.Source.Version, r.Source.Path)
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(func(p *goose.Provider) error {
				states, err := p.Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range states {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d %s\n", s.State, s.Source.Version, s.Source.Path)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
