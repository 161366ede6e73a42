package models

// TimeLayout is the timestamp format used everywhere in API responses:
// ISO-8601 without timezone, minute precision. The upstream page only
// renders local clock times, so carrying a zone would be an invention.
const TimeLayout = "2006-01-02T15:04"

// Travel modes for a route leg.
const (
	ModeBus   = "bus"
	ModeTrain = "train"
	ModeWalk  = "walk"
)

// Stop kinds in the reference tables.
const (
	KindBusStop      = "bus_stop"
	KindTrainStation = "train_station"
)

// Coordinate represents a geographic coordinate in WGS84.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteLeg is one contiguous single-mode segment of an itinerary.
// Field order matters: it is the wire order of the JSON document.
// Optional fields are omitted when the source did not provide them;
// DurationMin is always present (defaulted to 0, never left out).
type RouteLeg struct {
	Mode       string  `json:"mode"`
	Line       string  `json:"line,omitempty"`
	From       string  `json:"from,omitempty"`
	To         string  `json:"to,omitempty"`
	FromLat    float64 `json:"from_lat,omitempty"`
	FromLng    float64 `json:"from_lng,omitempty"`
	ToLat      float64 `json:"to_lat,omitempty"`
	ToLng      float64 `json:"to_lng,omitempty"`
	DepartTime string  `json:"depart_time,omitempty"`
	ArriveTime string  `json:"arrive_time,omitempty"`
	DurationMin int    `json:"duration_min"`
	Stops      int     `json:"stops,omitempty"`
	FareJPY    int     `json:"fare_jpy,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}

// RouteSummary carries the panel-level totals. Summary values are
// authoritative over any leg-level sum; the upstream rounds per-leg
// figures independently, so the sums rarely agree to the minute.
type RouteSummary struct {
	Depart      string `json:"depart"`
	Arrive      string `json:"arrive"`
	DurationMin int    `json:"duration_min"`
	Transfers   int    `json:"transfers"`
	FareJPY     int    `json:"fare_jpy"`
}

// Route is one candidate itinerary: summary plus ordered legs.
// Built once per candidate found in a fetch result, never mutated after.
type Route struct {
	Summary RouteSummary `json:"summary"`
	Legs    []RouteLeg   `json:"legs"`
}

// RoutesResponse is the caller-facing document, post-budgeting.
type RoutesResponse struct {
	Routes    []Route `json:"routes"`
	Truncated bool    `json:"truncated"`
}

// CandidateStopHint seeds the upstream search with a stop near the
// requested place. Ephemeral: produced per query, never cached.
type CandidateStopHint struct {
	Name    string `json:"name"`
	WalkMin int    `json:"walk_min"`
	// Squared anisotropic degree distance used for ranking. Not part of
	// the API contract, only meaningful within a single resolve call.
	Dist2 float64 `json:"-"`
}

// TransitSearchRequest is the payload accepted by the route-search endpoint.
type TransitSearchRequest struct {
	From      string `json:"from" validate:"required,min=1"`
	To        string `json:"to" validate:"required,min=1"`
	Date      string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time      string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Language  string `json:"language,omitempty" validate:"omitempty,oneof=ja en"`
	MaxTokens int    `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
}

// NearbyStopsRequest is the query shape for the stop-hint endpoint.
type NearbyStopsRequest struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng  float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// ErrorResponse is the uniform error body for API handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}
