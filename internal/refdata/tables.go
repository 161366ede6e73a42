package refdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourorg/kyotransit/internal/models"
)

// StopRecord is one row of the static stop table. Immutable for the
// process lifetime once loaded.
type StopRecord struct {
	ID       int64
	NameJa   string
	NameEn   string
	Kind     string // models.KindBusStop or models.KindTrainStation
	Operator string
	Lat      float64
	Lng      float64
}

// Key returns the composite lookup key for a language. Same-name stops
// run by different operators are disambiguated as "name(operator)".
func (s StopRecord) Key(lang string) string {
	name := s.NameJa
	if lang == "en" && s.NameEn != "" {
		name = s.NameEn
	}
	if s.Operator == "" {
		return name
	}
	return fmt.Sprintf("%s(%s)", name, s.Operator)
}

// LandmarkRecord is one row of the static landmark table.
type LandmarkRecord struct {
	ID       int64
	NameJa   string
	NameEn   string
	Category string
	Lat      float64
	Lng      float64
}

func (l LandmarkRecord) key(lang string) string {
	if lang == "en" && l.NameEn != "" {
		return l.NameEn
	}
	return l.NameJa
}

// Entry is one name→coordinate row in the per-language lookup index.
type Entry struct {
	Key   string
	Coord models.Coordinate
}

// Tables holds the loaded reference data. Read-only after construction;
// the ordered entry slices give the stable iteration order the substring
// lookup depends on (Go map iteration is randomized).
type Tables struct {
	stops        []StopRecord
	landmarks    []LandmarkRecord
	entries      map[string][]Entry          // lang -> ordered entries (stops then landmarks)
	byKey        map[string]map[string]int   // lang -> key -> entry index
	byStripped   map[string]map[string]int   // lang -> whitespace-stripped key -> entry index
	coefficients map[string]string           // "name/lang" -> value
}

// NewTables builds the lookup indexes from raw records. The entry order
// is the record order: stops first, then landmarks.
func NewTables(stops []StopRecord, landmarks []LandmarkRecord, coefficients map[string]string) *Tables {
	t := &Tables{
		stops:        stops,
		landmarks:    landmarks,
		entries:      make(map[string][]Entry),
		byKey:        make(map[string]map[string]int),
		byStripped:   make(map[string]map[string]int),
		coefficients: coefficients,
	}
	if t.coefficients == nil {
		t.coefficients = map[string]string{}
	}
	for _, lang := range []string{"ja", "en"} {
		t.byKey[lang] = make(map[string]int)
		t.byStripped[lang] = make(map[string]int)
		for _, s := range stops {
			t.addEntry(lang, s.Key(lang), models.Coordinate{Lat: s.Lat, Lng: s.Lng})
		}
		for _, l := range landmarks {
			t.addEntry(lang, l.key(lang), models.Coordinate{Lat: l.Lat, Lng: l.Lng})
		}
	}
	return t
}

func (t *Tables) addEntry(lang, key string, coord models.Coordinate) {
	if key == "" {
		return
	}
	if _, dup := t.byKey[lang][key]; dup {
		return
	}
	idx := len(t.entries[lang])
	t.entries[lang] = append(t.entries[lang], Entry{Key: key, Coord: coord})
	t.byKey[lang][key] = idx
	stripped := StripSpaces(key)
	if _, dup := t.byStripped[lang][stripped]; !dup {
		t.byStripped[lang][stripped] = idx
	}
}

// Stops returns the stop records in load order.
func (t *Tables) Stops() []StopRecord { return t.stops }

// Landmarks returns the landmark records in load order.
func (t *Tables) Landmarks() []LandmarkRecord { return t.landmarks }

// Entries returns the ordered name→coordinate index for a language.
// Unknown languages fall back to Japanese, the upstream's native keys.
func (t *Tables) Entries(lang string) []Entry {
	if e, ok := t.entries[normLang(lang)]; ok {
		return e
	}
	return t.entries["ja"]
}

// LookupExact finds an entry by its exact composite key.
func (t *Tables) LookupExact(name, lang string) (models.Coordinate, bool) {
	lang = normLang(lang)
	if idx, ok := t.byKey[lang][name]; ok {
		return t.entries[lang][idx].Coord, true
	}
	return models.Coordinate{}, false
}

// LookupStripped finds an entry after removing all whitespace from both
// sides. The upstream rendering sometimes inserts a space before the
// parenthesized operator suffix.
func (t *Tables) LookupStripped(name, lang string) (models.Coordinate, bool) {
	lang = normLang(lang)
	if idx, ok := t.byStripped[lang][StripSpaces(name)]; ok {
		return t.entries[lang][idx].Coord, true
	}
	return models.Coordinate{}, false
}

// Coefficient returns a named tuning value for a language, falling back
// to the Japanese row when the requested language has none.
func (t *Tables) Coefficient(name, lang string) (string, bool) {
	if v, ok := t.coefficients[name+"/"+normLang(lang)]; ok {
		return v, true
	}
	v, ok := t.coefficients[name+"/ja"]
	return v, ok
}

// CoefficientInt parses a named integer coefficient, returning fallback
// when the row is missing or malformed.
func (t *Tables) CoefficientInt(name, lang string, fallback int) int {
	v, ok := t.Coefficient(name, lang)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// StripSpaces removes every ASCII and ideographic space from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '　':
			return -1
		}
		return r
	}, s)
}

func normLang(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return "en"
	}
	return "ja"
}
