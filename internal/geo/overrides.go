package geo

import (
	"strings"

	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

// Override pins the hint list for a well-known ambiguous place. The
// generic nearest-stop search gives technically-correct answers for
// these names that the upstream planner then refuses to match against
// its own stop inventory, so the curated list wins.
//
// Maintenance note: new landmarks need a code change here; there is no
// data-driven path for overrides on purpose (each entry was tuned by
// hand against upstream behavior).
type Override struct {
	Coord models.Coordinate
	Hints []models.CandidateStopHint
}

var overrides = map[string]Override{
	// Scenic bridge district on the west edge; three operators run
	// stops named 嵐山 and the planner only accepts its own trio.
	"嵐山": {
		Coord: models.Coordinate{Lat: 35.0094, Lng: 135.6668},
		Hints: []models.CandidateStopHint{
			{Name: "嵐山(京福電鉄)", WalkMin: 3},
			{Name: "嵐山天龍寺前(市バス)", WalkMin: 4},
			{Name: "嵐山(阪急)", WalkMin: 8},
		},
	},
	// The temple gate is uphill from every stop; the two below are the
	// ones the planner itself suggests.
	"清水寺": {
		Coord: models.Coordinate{Lat: 34.9949, Lng: 135.7850},
		Hints: []models.CandidateStopHint{
			{Name: "清水道(市バス)", WalkMin: 11},
			{Name: "五条坂(市バス)", WalkMin: 11},
		},
	},
	"銀閣寺": {
		Coord: models.Coordinate{Lat: 35.0270, Lng: 135.7982},
		Hints: []models.CandidateStopHint{
			{Name: "銀閣寺前(市バス)", WalkMin: 5},
			{Name: "銀閣寺道(市バス)", WalkMin: 7},
		},
	},
}

// English aliases map onto the same entries.
var overrideAliases = map[string]string{
	"arashiyama":  "嵐山",
	"kiyomizudera": "清水寺",
	"kiyomizu-dera": "清水寺",
	"ginkakuji":   "銀閣寺",
	"ginkaku-ji":  "銀閣寺",
}

func lookupOverride(name string) (Override, bool) {
	key := refdata.StripSpaces(name)
	if canonical, ok := overrideAliases[strings.ToLower(key)]; ok {
		key = canonical
	}
	ov, ok := overrides[key]
	return ov, ok
}
