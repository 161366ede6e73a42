package geo

import (
	"strings"

	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

// CoordinateResolver maps a stop or landmark name to a coordinate using
// the reference tables. Lookup order: exact key, whitespace-stripped key,
// then substring containment in the table's load order. It never errors;
// an unloaded table or unknown name is simply not-found.
type CoordinateResolver struct {
	provider *refdata.Provider
}

// NewCoordinateResolver wraps a reference-data provider.
func NewCoordinateResolver(provider *refdata.Provider) *CoordinateResolver {
	return &CoordinateResolver{provider: provider}
}

// Resolve returns the coordinate registered under name, trying exact,
// space-stripped and substring matches in that order. The substring pass
// walks entries in load order, so "first match" is deterministic for a
// fixed table.
func (r *CoordinateResolver) Resolve(name, lang string) (models.Coordinate, bool) {
	tables, ok := r.provider.Tables()
	if !ok {
		return models.Coordinate{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Coordinate{}, false
	}

	if coord, ok := tables.LookupExact(name, lang); ok {
		return coord, true
	}
	// The upstream rendering sometimes inserts a space before the
	// parenthesized operator suffix: "浄土寺 (市バス)" vs "浄土寺(市バス)".
	if coord, ok := tables.LookupStripped(name, lang); ok {
		return coord, true
	}

	// Partial or abbreviated references embedded in packed segment data,
	// e.g. "出町柳" for "出町柳駅前(京都バス)".
	normalized := refdata.StripSpaces(name)
	for _, e := range tables.Entries(lang) {
		key := refdata.StripSpaces(e.Key)
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			return e.Coord, true
		}
	}
	return models.Coordinate{}, false
}
