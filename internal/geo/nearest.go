package geo

import (
	"errors"
	"math"

	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

// ErrTablesNotLoaded is the configuration error returned when stop
// resolution is attempted before the reference tables are loaded.
var ErrTablesNotLoaded = errors.New("geo: reference tables not loaded")

const (
	// Ratio of meters-per-degree-longitude to meters-per-degree-latitude
	// around 35°N (the Kyoto basin). Scaling the longitude delta by this
	// keeps squared-degree distances order-correct without paying for
	// real geodesic math on every stop.
	lngScale = 0.8192

	// 1 degree of latitude ≈ 111km.
	metersPerDegree = 111000.0

	// Walking speed used for hint estimates, meters per minute.
	walkSpeedMPerMin = 80.0

	// Hints above this are not useful as search seeds.
	maxWalkMin = 15

	defaultHintCount = 10
)

// NearestStopResolver ranks reference-table stops by distance to a
// coordinate and converts the ranking into upstream search hints.
type NearestStopResolver struct {
	provider *refdata.Provider
	coords   *CoordinateResolver
}

// NewNearestStopResolver builds a resolver over the given provider.
func NewNearestStopResolver(provider *refdata.Provider) *NearestStopResolver {
	return &NearestStopResolver{
		provider: provider,
		coords:   NewCoordinateResolver(provider),
	}
}

type rankedStop struct {
	stop refdata.StopRecord
	d2   float64
}

// Nearby returns up to N candidate stops ordered by ascending distance
// from coord. originName/originKind identify the place being searched
// from: a stop whose normalized name and kind both match is forced to
// distance zero so it always ranks first. If no rail stop makes the cut
// the single nearest one is appended, because the upstream search plans
// by rail even where city buses dominate proximity.
func (r *NearestStopResolver) Nearby(coord models.Coordinate, originName, originKind, lang string) ([]models.CandidateStopHint, error) {
	tables, ok := r.provider.Tables()
	if !ok {
		return nil, ErrTablesNotLoaded
	}

	n := tables.CoefficientInt("hint_count", lang, defaultHintCount)
	ranking := make([]rankedStop, 0, n)
	normalizedOrigin := refdata.StripSpaces(originName)

	var nearestRail *rankedStop
	for _, stop := range tables.Stops() {
		dLat := stop.Lat - coord.Lat
		dLng := (stop.Lng - coord.Lng) * lngScale
		d2 := dLat*dLat + dLng*dLng

		// Self-match: searching from a known stop must rank that stop first.
		if normalizedOrigin != "" && stop.Kind == originKind &&
			(refdata.StripSpaces(stop.NameJa) == normalizedOrigin || refdata.StripSpaces(stop.NameEn) == normalizedOrigin) {
			d2 = 0
		}

		if stop.Kind == models.KindTrainStation {
			if nearestRail == nil || d2 < nearestRail.d2 {
				nearestRail = &rankedStop{stop: stop, d2: d2}
			}
		}

		ranking = insertRanked(ranking, rankedStop{stop: stop, d2: d2}, n)
	}

	hasRail := false
	for _, rs := range ranking {
		if rs.stop.Kind == models.KindTrainStation {
			hasRail = true
			break
		}
	}
	if !hasRail && nearestRail != nil {
		ranking = append(ranking, *nearestRail)
	}

	hints := make([]models.CandidateStopHint, 0, len(ranking))
	for _, rs := range ranking {
		hints = append(hints, models.CandidateStopHint{
			Name:    rs.stop.Key(lang),
			WalkMin: walkMinutes(rs.d2),
			Dist2:   rs.d2,
		})
	}
	return hints, nil
}

// HintsForPlace resolves a named place to a coordinate plus stop hints.
// Curated landmark overrides are consulted before the geometric search;
// see overrides.go. found is false when the name resolves to nothing,
// which is not an error: the upstream search still accepts the raw name.
func (r *NearestStopResolver) HintsForPlace(name, lang string) (coord models.Coordinate, hints []models.CandidateStopHint, found bool, err error) {
	if _, ok := r.provider.Tables(); !ok {
		return models.Coordinate{}, nil, false, ErrTablesNotLoaded
	}
	if ov, ok := lookupOverride(name); ok {
		return ov.Coord, append([]models.CandidateStopHint(nil), ov.Hints...), true, nil
	}
	coord, ok := r.coords.Resolve(name, lang)
	if !ok {
		return models.Coordinate{}, nil, false, nil
	}
	hints, err = r.Nearby(coord, name, originKindFor(name, r.provider, lang), lang)
	if err != nil {
		return models.Coordinate{}, nil, false, err
	}
	return coord, hints, true, nil
}

// insertRanked keeps ranking sorted ascending by d2 with at most n
// entries, using insert-and-shift rather than a full sort: n is small
// and the loop runs once per reference stop.
func insertRanked(ranking []rankedStop, candidate rankedStop, n int) []rankedStop {
	pos := len(ranking)
	for i, rs := range ranking {
		if candidate.d2 < rs.d2 {
			pos = i
			break
		}
	}
	if pos >= n {
		return ranking
	}
	if len(ranking) < n {
		ranking = append(ranking, rankedStop{})
	}
	copy(ranking[pos+1:], ranking[pos:])
	ranking[pos] = candidate
	return ranking
}

// walkMinutes converts a squared degree distance to a clamped walking
// estimate. Degrees → meters with the latitude constant, then the
// standard 80 m/min walking speed.
func walkMinutes(d2 float64) int {
	meters := math.Sqrt(d2) * metersPerDegree
	min := int(math.Ceil(meters / walkSpeedMPerMin))
	if min < 1 {
		min = 1
	}
	if min > maxWalkMin {
		min = maxWalkMin
	}
	return min
}

// originKindFor guesses the kind of the searched place so the self-match
// rule can apply when the query names a stop directly.
func originKindFor(name string, provider *refdata.Provider, lang string) string {
	tables, ok := provider.Tables()
	if !ok {
		return ""
	}
	normalized := refdata.StripSpaces(name)
	for _, stop := range tables.Stops() {
		if refdata.StripSpaces(stop.NameJa) == normalized || (stop.NameEn != "" && refdata.StripSpaces(stop.NameEn) == normalized) {
			return stop.Kind
		}
	}
	return ""
}
