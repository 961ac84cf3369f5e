package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/repo"
	"github.com/pkordes/tripshare/internal/tripcode"
)

// withTripRepo connects to DATABASE_URL for the duration of fn.
func withTripRepo(ctx context.Context, fn func(repo.TripRepo) error) error {
	cfg, err := env.ParseAs[dbConfig]()
	if err != nil {
		return fmt.Errorf("trip: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("trip: connect: %w", err)
	}
	defer pool.Close()
	return fn(repo.NewTripRepo(pool))
}

// parseCode normalizes a code typed by an operator.
func parseCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !tripcode.Valid(code) {
		return "", fmt.Errorf("trip: %q is not a trip code", raw)
	}
	return code, nil
}

// describe shortens domain errors to their message and leaves anything
// else, such as driver or network failures, intact.
func describe(err error) string {
	if msg := domain.Message(err); msg != "internal error" {
		return msg
	}
	return err.Error()
}

func newTripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Inspect and moderate published trips",
	}

	show := &cobra.Command{
		Use:   "show <code>",
		Short: "Print an active trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			return withTripRepo(cmd.Context(), func(r repo.TripRepo) error {
				t, err := r.FindByCode(cmd.Context(), code)
				if err != nil {
					return fmt.Errorf("trip show: %s", describe(err))
				}
				return printJSON(cmd.OutOrStdout(), t)
			})
		},
	}

	setStatus := &cobra.Command{
		Use:   "set-status <code> <pending|approved|rejected|cancelled>",
		Short: "Move a trip to a new moderation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			to := domain.TripStatus(strings.ToLower(args[1]))
			if !to.Valid() {
				return fmt.Errorf("trip set-status: unknown status %q", args[1])
			}
			return withTripRepo(cmd.Context(), func(r repo.TripRepo) error {
				t, err := r.FindByCode(cmd.Context(), code)
				if err != nil {
					return fmt.Errorf("trip set-status: %s", describe(err))
				}
				updated, err := r.UpdateStatus(cmd.Context(), t.ID, to)
				if err != nil {
					return fmt.Errorf("trip set-status: %s", describe(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", updated.TripCode, t.Status, updated.Status)
				return nil
			})
		},
	}

	cmd.AddCommand(show, setStatus)
	return cmd
}
