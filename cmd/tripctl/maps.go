package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/tripshare/internal/config"
	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/geocode"
)

func newGateway() (*geocode.Gateway, error) {
	m, err := config.LoadMaps()
	if err != nil {
		return nil, err
	}
	return geocode.New(m.Geocode(), nil, slog.Default()), nil
}

func newGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address the way trip creation does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGateway()
			if err != nil {
				return err
			}
			res, err := g.Geocode(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("geocode: %s", domain.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newDirectionsCmd() *cobra.Command {
	var vehicle string
	cmd := &cobra.Command{
		Use:   "directions <origin> <destination>",
		Short: "Fetch routes from the configured provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseVehicleMode(vehicle)
			if err != nil {
				return fmt.Errorf("directions: %s", domain.Message(err))
			}
			g, err := newGateway()
			if err != nil {
				return err
			}
			routes, err := g.Directions(cmd.Context(), args[0], args[1], mode)
			if err != nil {
				return fmt.Errorf("directions: %s", domain.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), routes)
		},
	}
	cmd.Flags().StringVar(&vehicle, "vehicle", "car", "Travel mode: car, bike or foot")
	return cmd
}

func newAutocompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autocomplete <input>",
		Short: "List place suggestions for partial input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGateway()
			if err != nil {
				return err
			}
			out, err := g.Autocomplete(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("autocomplete: %s", domain.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
