package arukumachi

import (
	"strconv"
	"strings"

	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/geo"
	"github.com/yourorg/kyotransit/internal/models"
)

// Below this the payload cannot contain even one place/transit pair.
const minPackedTokens = 10

// Place markers introduce a stop or landmark name; transit markers carry
// the leg data. The vocabulary is what the upstream has been observed to
// emit; unknown markers are skipped, never fatal.
var placeMarkers = map[string]bool{
	"busstop":  true,
	"station":  true,
	"spot":     true,
	"landmark": true,
}

// PackedDecoder parses the $-delimited machine-readable itinerary
// payloads embedded in the page as hidden form values.
type PackedDecoder struct {
	coords *geo.CoordinateResolver
	sink   debug.Sink
}

// NewPackedDecoder builds a decoder; sink may be nil.
func NewPackedDecoder(coords *geo.CoordinateResolver, sink debug.Sink) *PackedDecoder {
	return &PackedDecoder{coords: coords, sink: sink}
}

// Decode parses one packed payload into a Route. Depart/arrive are
// unknown at this layer and left empty; fares in the payload are
// unreliable and ignored (they come from the timetable fragment).
// Returns ok=false for anything it cannot make legs from — malformed
// input is a soft failure, never a panic.
//
// Layout, reverse-engineered from captured payloads
// (offsets relative to a bus/train marker):
//
//	bus $ <line> $ _ $ <fare> $ <sec> $ <sec> $ h $ 0 $ <stops> $ id
//
// A place marker is followed by its name; it is the "from" of the next
// transit marker and the implicit "to" of the previous one. Walk
// markers are looser: the first two numeric fields after the marker are
// distance (meters) and duration (seconds).
func (d *PackedDecoder) Decode(packed, lang string) (models.Route, bool) {
	tokens := strings.Split(packed, "$")
	if len(tokens) < minPackedTokens {
		return models.Route{}, false
	}

	var legs []models.RouteLeg
	currentFrom := ""

	i := 0
	for i < len(tokens) {
		tok := strings.TrimSpace(tokens[i])
		switch {
		case placeMarkers[tok]:
			if i+1 < len(tokens) {
				if name := strings.TrimSpace(tokens[i+1]); name != "" {
					currentFrom = name
				}
				i += 2
				continue
			}
			i++

		case tok == "bus" || tok == "train":
			leg := models.RouteLeg{
				Mode:        tok,
				Line:        fieldAt(tokens, i+1),
				DurationMin: intAt(tokens, i+4) / 60, // primary duration is in-vehicle seconds
				Stops:       intAt(tokens, i+8),
				From:        currentFrom,
				To:          d.nextPlaceName(tokens, i+1),
			}
			d.attachCoordinates(&leg, lang)
			legs = append(legs, leg)
			i += 9

		case tok == "walk":
			distM, durSec := firstTwoNumbers(tokens, i+1, i+7)
			leg := models.RouteLeg{
				Mode:        models.ModeWalk,
				DurationMin: durSec / 60,
				From:        currentFrom,
				To:          d.nextPlaceName(tokens, i+1),
			}
			if distM > 0 {
				leg.DistanceKm = float64(distM) / 1000.0
			}
			d.attachCoordinates(&leg, lang)
			legs = append(legs, leg)
			i++

		default:
			i++
		}
	}

	if len(legs) == 0 {
		if d.sink != nil {
			d.sink.Event("debug", "packed payload yielded no legs", map[string]interface{}{
				"tokens": len(tokens),
			})
		}
		return models.Route{}, false
	}

	total := 0
	for _, leg := range legs {
		total += leg.DurationMin
	}
	return models.Route{
		Summary: models.RouteSummary{
			DurationMin: total,
			Transfers:   transfersFromLegs(legs),
		},
		Legs: legs,
	}, true
}

// nextPlaceName scans forward for the next place marker's name. Markers
// are not perfectly paired, so a bounded lookahead is the only reliable
// way to find a transit marker's destination.
func (d *PackedDecoder) nextPlaceName(tokens []string, from int) string {
	for j := from; j < len(tokens)-1; j++ {
		if placeMarkers[strings.TrimSpace(tokens[j])] {
			return strings.TrimSpace(tokens[j+1])
		}
	}
	return ""
}

func (d *PackedDecoder) attachCoordinates(leg *models.RouteLeg, lang string) {
	if d.coords == nil {
		return
	}
	if leg.From != "" {
		if c, ok := d.coords.Resolve(leg.From, lang); ok {
			leg.FromLat, leg.FromLng = c.Lat, c.Lng
		}
	}
	if leg.To != "" {
		if c, ok := d.coords.Resolve(leg.To, lang); ok {
			leg.ToLat, leg.ToLng = c.Lat, c.Lng
		}
	}
}

// transfersFromLegs counts boarding changes: one transfer per extra
// vehicle leg beyond the first. Walk legs separate vehicles but are not
// transfers by themselves.
func transfersFromLegs(legs []models.RouteLeg) int {
	vehicles := 0
	for _, leg := range legs {
		if leg.Mode != models.ModeWalk {
			vehicles++
		}
	}
	if vehicles <= 1 {
		return 0
	}
	return vehicles - 1
}

func fieldAt(tokens []string, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	return strings.TrimSpace(tokens[i])
}

func intAt(tokens []string, i int) int {
	n, err := strconv.Atoi(fieldAt(tokens, i))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// firstTwoNumbers returns the first two non-negative integers found in
// tokens[from:to], zero-filling what is missing.
func firstTwoNumbers(tokens []string, from, to int) (int, int) {
	found := make([]int, 0, 2)
	for i := from; i < to && i < len(tokens) && len(found) < 2; i++ {
		if n, err := strconv.Atoi(fieldAt(tokens, i)); err == nil && n >= 0 {
			found = append(found, n)
		}
	}
	for len(found) < 2 {
		found = append(found, 0)
	}
	return found[0], found[1]
}
