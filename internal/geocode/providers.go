package geocode

import (
	"fmt"

	"github.com/pkordes/tripshare/internal/domain"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

func statusError(status, message string) error {
	if message != "" {
		return fmt.Errorf("provider status %s: %s", status, message)
	}
	return fmt.Errorf("provider status %s", status)
}

// goMapsMode translates a vehicle mode into the Google-style travel mode
// GoMaps expects.
func goMapsMode(m domain.VehicleMode) string {
	switch m {
	case domain.VehicleBike:
		return "bicycling"
	case domain.VehicleFoot:
		return "walking"
	default:
		return "driving"
	}
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p latLng) point() domain.GeoPoint { return domain.GeoPoint{Lat: p.Lat, Lng: p.Lng} }

// --- Goong geocode -----------------------------------------------------------

type goongGeocodeResponse struct {
	Results      []goongGeocodeResult `json:"results"`
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message"`
}

type goongGeocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
	Geometry         struct {
		Location *latLng `json:"location"`
	} `json:"geometry"`
}

func (r goongGeocodeResult) toDomain() domain.GeocodeResult {
	out := domain.GeocodeResult{
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
	}
	if r.Geometry.Location != nil {
		p := r.Geometry.Location.point()
		out.Coordinates = &p
	}
	return out
}

// --- Goong autocomplete ------------------------------------------------------

type goongAutocompleteResponse struct {
	Predictions []struct {
		Description          string `json:"description"`
		PlaceID              string `json:"place_id"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (r goongAutocompleteResponse) toDomain() []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(r.Predictions))
	for _, p := range r.Predictions {
		out = append(out, domain.Suggestion{
			Description:   p.Description,
			PlaceID:       p.PlaceID,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out
}

// --- Directions (Goong and GoMaps share the Google response shape) ----------

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type directionsResponse struct {
	Routes []struct {
		Summary          string `json:"summary"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance      textValue `json:"distance"`
			Duration      textValue `json:"duration"`
			StartAddress  string    `json:"start_address"`
			EndAddress    string    `json:"end_address"`
			StartLocation latLng    `json:"start_location"`
			EndLocation   latLng    `json:"end_location"`
		} `json:"legs"`
	} `json:"routes"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (r directionsResponse) toDomain() domain.RouteDescription {
	out := domain.RouteDescription{Routes: make([]domain.Route, 0, len(r.Routes))}
	for _, rt := range r.Routes {
		route := domain.Route{
			Summary:  rt.Summary,
			Polyline: rt.OverviewPolyline.Points,
			Legs:     make([]domain.RouteLeg, 0, len(rt.Legs)),
		}
		for _, l := range rt.Legs {
			route.DistanceMeters += l.Distance.Value
			route.DurationSeconds += l.Duration.Value
			route.Legs = append(route.Legs, domain.RouteLeg{
				StartAddress:    l.StartAddress,
				EndAddress:      l.EndAddress,
				Start:           l.StartLocation.point(),
				End:             l.EndLocation.point(),
				DistanceMeters:  l.Distance.Value,
				DurationSeconds: l.Duration.Value,
				DistanceText:    l.Distance.Text,
				DurationText:    l.Duration.Text,
			})
		}
		out.Routes = append(out.Routes, route)
	}
	return out
}
