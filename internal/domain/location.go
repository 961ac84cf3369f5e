package domain

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within lat [-90,90] and lng [-180,180].
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Location is a geocoded place. Address is the provider's formatted address,
// never raw user input; PlaceID is the provider's opaque identifier.
type Location struct {
	Address     string   `json:"address"`
	PlaceID     string   `json:"place_id"`
	Coordinates GeoPoint `json:"coordinates"`
	Geohash     string   `json:"geohash,omitempty"`
}

// GeocodeResult is a single geocoder answer. Coordinates is nil when the
// provider returned a result without a usable geometry.
type GeocodeResult struct {
	FormattedAddress string    `json:"formatted_address"`
	PlaceID          string    `json:"place_id"`
	Coordinates      *GeoPoint `json:"coordinates,omitempty"`
}

// Suggestion is one place-autocomplete prediction.
type Suggestion struct {
	Description   string `json:"description"`
	PlaceID       string `json:"place_id"`
	MainText      string `json:"main_text,omitempty"`
	SecondaryText string `json:"secondary_text,omitempty"`
}

// VehicleMode is the travel mode requested for directions.
type VehicleMode string

const (
	VehicleCar  VehicleMode = "car"
	VehicleBike VehicleMode = "bike"
	VehicleFoot VehicleMode = "foot"
)

// ParseVehicleMode maps an optional query value to a VehicleMode.
// An empty value defaults to car.
func ParseVehicleMode(s string) (VehicleMode, error) {
	switch VehicleMode(s) {
	case "":
		return VehicleCar, nil
	case VehicleCar, VehicleBike, VehicleFoot:
		return VehicleMode(s), nil
	}
	return "", InvalidArgument("vehicle must be one of car, bike, foot")
}

// RouteDescription is a provider-neutral directions answer.
type RouteDescription struct {
	Routes []Route `json:"routes"`
}

// Route is one alternative returned by the directions provider.
type Route struct {
	Summary         string     `json:"summary,omitempty"`
	DistanceMeters  int        `json:"distance_meters"`
	DurationSeconds int        `json:"duration_seconds"`
	Polyline        string     `json:"polyline,omitempty"`
	Legs            []RouteLeg `json:"legs"`
}

// RouteLeg is the segment between two consecutive stops of a route.
type RouteLeg struct {
	StartAddress    string   `json:"start_address,omitempty"`
	EndAddress      string   `json:"end_address,omitempty"`
	Start           GeoPoint `json:"start_location"`
	End             GeoPoint `json:"end_location"`
	DistanceMeters  int      `json:"distance_meters"`
	DurationSeconds int      `json:"duration_seconds"`
	DistanceText    string   `json:"distance_text,omitempty"`
	DurationText    string   `json:"duration_text,omitempty"`
}
