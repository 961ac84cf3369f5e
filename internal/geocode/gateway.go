// Package geocode wraps the third-party map providers (Goong and GoMaps)
// behind a single gateway. Provider failures never leave this package with
// their original detail: they are logged and collapsed to domain.ErrNotFound.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/tripshare/internal/address"
	"github.com/pkordes/tripshare/internal/domain"
)

// Provider names a directions backend.
type Provider string

const (
	ProviderGoMaps Provider = "gomaps"
	ProviderGoong  Provider = "goong"
)

// Default endpoints, overridable through Config for tests.
const (
	DefaultGoongBaseURL  = "https://rsapi.goong.io"
	DefaultGoMapsBaseURL = "https://maps.gomaps.pro/maps/api"
	DefaultTimeout       = 8 * time.Second
)

// maxResponseBytes caps how much of a provider body is decoded.
const maxResponseBytes = 1 << 20

// Messages returned to callers. Provider detail only goes to the log.
const (
	msgGeocodeNotFound      = "geocode not found"
	msgNoGeocodeResults     = "no geocode results"
	msgDirectionsNotFound   = "search not found"
	msgAutocompleteNotFound = "autocomplete suggestions not found"
)

// Config selects the directions provider and carries provider credentials.
// Provider is read on every Directions call; geocode and autocomplete always
// go to Goong.
type Config struct {
	Provider      Provider
	GoongAPIKey   string
	GoMapsAPIKey  string
	GoongBaseURL  string
	GoMapsBaseURL string
	Timeout       time.Duration
}

// Gateway is the single entry point to the map providers.
// It holds no mutable state and is safe for concurrent use.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// New constructs a Gateway. A nil client uses a fresh http.Client; a nil
// logger uses slog.Default(). Empty base URLs and timeout take the defaults.
func New(cfg Config, client *http.Client, log *slog.Logger) *Gateway {
	if cfg.GoongBaseURL == "" {
		cfg.GoongBaseURL = DefaultGoongBaseURL
	}
	if cfg.GoMapsBaseURL == "" {
		cfg.GoMapsBaseURL = DefaultGoMapsBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{cfg: cfg, client: client, log: log.With("component", "geocode")}
}

// Geocode resolves a free-text address. Among the provider's results it
// prefers one whose formatted address equals the input after normalization,
// and otherwise falls back to the first result.
func (g *Gateway) Geocode(ctx context.Context, addr string) (domain.GeocodeResult, error) {
	var resp goongGeocodeResponse
	params := url.Values{"address": {addr}, "api_key": {g.cfg.GoongAPIKey}}
	if err := g.getJSON(ctx, g.cfg.GoongBaseURL+"/geocode", params, &resp); err != nil {
		return domain.GeocodeResult{}, g.fail(ctx, "geocode", ProviderGoong, err, msgGeocodeNotFound)
	}
	if resp.Status != "" && resp.Status != statusOK && resp.Status != statusZeroResults {
		return domain.GeocodeResult{}, g.fail(ctx, "geocode", ProviderGoong, statusError(resp.Status, resp.ErrorMessage), msgGeocodeNotFound)
	}

	match, exact, ok := address.SelectExact(resp.Results, addr, func(r goongGeocodeResult) string {
		return r.FormattedAddress
	})
	if !ok {
		return domain.GeocodeResult{}, domain.NotFound(msgNoGeocodeResults)
	}
	if !exact {
		g.log.DebugContext(ctx, "no exact geocode match, using first result",
			"input", addr, "picked", match.FormattedAddress, "candidates", len(resp.Results))
	}
	return match.toDomain(), nil
}

// Directions returns routes between origin and destination using the
// configured provider.
func (g *Gateway) Directions(ctx context.Context, origin, destination string, mode domain.VehicleMode) (domain.RouteDescription, error) {
	var (
		resp     directionsResponse
		err      error
		provider = g.cfg.Provider
	)
	switch provider {
	case ProviderGoMaps:
		err = g.getJSON(ctx, g.cfg.GoMapsBaseURL+"/directions/json", url.Values{
			"origin":      {origin},
			"destination": {destination},
			"mode":        {goMapsMode(mode)},
			"key":         {g.cfg.GoMapsAPIKey},
		}, &resp)
		if err == nil && resp.Status != statusOK {
			err = statusError(resp.Status, resp.ErrorMessage)
		}
	case ProviderGoong:
		err = g.getJSON(ctx, g.cfg.GoongBaseURL+"/Direction", url.Values{
			"origin":      {origin},
			"destination": {destination},
			"vehicle":     {string(mode)},
			"api_key":     {g.cfg.GoongAPIKey},
		}, &resp)
		if err == nil && resp.Status != "" && resp.Status != statusOK {
			err = statusError(resp.Status, resp.ErrorMessage)
		}
	default:
		err = fmt.Errorf("unknown map provider %q", provider)
	}
	if err != nil {
		return domain.RouteDescription{}, g.fail(ctx, "directions", provider, err, msgDirectionsNotFound)
	}
	return resp.toDomain(), nil
}

// Autocomplete returns place suggestions for a partial input.
func (g *Gateway) Autocomplete(ctx context.Context, input string) ([]domain.Suggestion, error) {
	var resp goongAutocompleteResponse
	params := url.Values{"input": {input}, "api_key": {g.cfg.GoongAPIKey}}
	if err := g.getJSON(ctx, g.cfg.GoongBaseURL+"/Place/AutoComplete", params, &resp); err != nil {
		return nil, g.fail(ctx, "autocomplete", ProviderGoong, err, msgAutocompleteNotFound)
	}
	if resp.Status != "" && resp.Status != statusOK && resp.Status != statusZeroResults {
		return nil, g.fail(ctx, "autocomplete", ProviderGoong, statusError(resp.Status, resp.ErrorMessage), msgAutocompleteNotFound)
	}
	return resp.toDomain(), nil
}

// getJSON performs a bounded GET and decodes a 2xx JSON body of at most
// maxResponseBytes into out.
func (g *Gateway) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, api key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("%s %s: %w", uerr.Op, endpoint, uerr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected HTTP status %d from %s", resp.StatusCode, endpoint)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// fail logs the provider detail and returns the caller-safe NotFound error.
func (g *Gateway) fail(ctx context.Context, op string, provider Provider, err error, msg string) error {
	g.log.WarnContext(ctx, "map provider call failed",
		"op", op,
		"provider", string(provider),
		"error", err,
	)
	return domain.NotFound("%s", msg)
}
