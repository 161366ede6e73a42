package arukumachi

import (
	"strings"

	"github.com/yourorg/kyotransit/internal/models"
)

// Phrases the upstream renders when a search matched nothing. Checked
// against the whole body text because the phrase placement moves around
// between page revisions.
var noResultPhrases = []string{
	"該当する結果が見つかりませんでした",
	"条件に合う経路が見つかりませんでした",
	"No results found",
	"no matching routes were found",
}

// ContainsNoResults reports whether the page says the search was empty.
func ContainsNoResults(html string) bool {
	lower := strings.ToLower(html)
	for _, phrase := range noResultPhrases {
		if strings.Contains(html, phrase) || strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Merge reconciles the two decoders' outputs. Both lists are produced in
// the page's left-to-right panel order, which is the only reliable
// correspondence key, so pairing is positional. The timetable summary is
// authoritative (better timing and fares); packed legs are preferred for
// granularity and coordinates. Either side may be partial or empty and
// the other passes through unchanged. An empty result is the documented
// not-found condition, not an error.
func Merge(timetable, packed []models.Route) []models.Route {
	if len(timetable) == 0 {
		return packed
	}
	if len(packed) == 0 {
		return timetable
	}

	merged := make([]models.Route, 0, len(timetable))
	for i, tt := range timetable {
		if i < len(packed) {
			merged = append(merged, mergePair(tt, packed[i]))
		} else {
			merged = append(merged, tt)
		}
	}
	// Upstream occasionally embeds more packed payloads than rendered
	// panels; the extras have no summary but are still itineraries.
	if len(packed) > len(timetable) {
		merged = append(merged, packed[len(timetable):]...)
	}
	return merged
}

func mergePair(tt, pk models.Route) models.Route {
	route := models.Route{Summary: tt.Summary}

	// A single synthetic leg means the panel had no detail table; the
	// packed payload's per-leg granularity is strictly better then.
	if len(tt.Legs) <= 1 && len(pk.Legs) > 1 {
		route.Legs = pk.Legs
		if len(tt.Legs) == 1 {
			// Keep the fare the HTML layer knew about; the packed
			// payload's fares were discarded as unreliable.
			spreadFare(route.Legs, tt.Legs[0].FareJPY)
		}
		return route
	}

	// Per-index merge: the HTML leg's fields win, packed backfills
	// whatever the HTML layer could not see (mostly coordinates).
	legs := make([]models.RouteLeg, len(tt.Legs))
	for i, leg := range tt.Legs {
		if i < len(pk.Legs) {
			backfill(&leg, pk.Legs[i])
		}
		legs[i] = leg
	}
	route.Legs = legs
	return route
}

// spreadFare assigns the panel-level fare to the first vehicle leg.
// Splitting it across operators would be a guess; one attributed fare
// keeps leg sums advisory but non-fabricated.
func spreadFare(legs []models.RouteLeg, fare int) {
	if fare <= 0 {
		return
	}
	for i := range legs {
		if legs[i].Mode != models.ModeWalk {
			legs[i].FareJPY = fare
			return
		}
	}
}

func backfill(dst *models.RouteLeg, src models.RouteLeg) {
	if dst.FromLat == 0 && dst.FromLng == 0 {
		dst.FromLat, dst.FromLng = src.FromLat, src.FromLng
	}
	if dst.ToLat == 0 && dst.ToLng == 0 {
		dst.ToLat, dst.ToLng = src.ToLat, src.ToLng
	}
	if dst.From == "" {
		dst.From = src.From
	}
	if dst.To == "" {
		dst.To = src.To
	}
	if dst.Line == "" {
		dst.Line = src.Line
	}
	if dst.Stops == 0 {
		dst.Stops = src.Stops
	}
	if dst.DistanceKm == 0 {
		dst.DistanceKm = src.DistanceKm
	}
}
