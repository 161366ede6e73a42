package arukumachi

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/models"
)

// Headline and summary patterns. The page renders both Japanese and
// English variants depending on the requested language; everything else
// about the layout is identical.
var (
	departPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(?:発|dep)`)
	arrivePattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(?:着|arr)`)
	durationPattern  = regexp.MustCompile(`(?:所要時間|Duration)[：:]\s*(\d+)\s*(?:分|min)`)
	transfersPattern = regexp.MustCompile(`(?:乗換|Transfers?)[：:]\s*(\d+)\s*(?:回)?`)
	farePattern      = regexp.MustCompile(`(?:運賃|Fare)[：:]\s*(\d+)\s*(?:円|yen)`)

	legTimePattern     = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	legDurationPattern = regexp.MustCompile(`(\d+)\s*(?:分|min)`)
	legStopsPattern    = regexp.MustCompile(`(\d+)\s*(?:駅|停留所|stops?)`)
	legFarePattern     = regexp.MustCompile(`(\d+)\s*(?:円|yen)`)
	walkDistPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(km|m)\b`)

	// Platform / ticket-gate / direction annotations glued onto stop
	// names in place rows. The operator parenthetical must survive, so
	// only the bracketed annotation forms are stripped.
	annotationPattern = regexp.MustCompile(`〔[^〕]*〕|【[^】]*】|［[^］]*］|（[^）]*(?:のりば|番線|方面|改札|口)[^）]*）|\([^)]*(?:のりば|番線|方面|改札|platform|gate)[^)]*\)`)

	baseDateLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}
)

// TimetableDecoder parses the human-oriented timetable fragments: one
// Route per rendered result panel.
type TimetableDecoder struct {
	sink debug.Sink
}

// NewTimetableDecoder builds a decoder; sink may be nil.
func NewTimetableDecoder(sink debug.Sink) *TimetableDecoder {
	return &TimetableDecoder{sink: sink}
}

// Decode extracts every decodable result panel. Panels with malformed
// or missing headline times are skipped; a document with no decodable
// panel yields zero routes, which the reconciler treats as "this source
// was empty", not as an error.
func (d *TimetableDecoder) Decode(html string) []models.Route {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		d.event("warn", "timetable fragment is not parseable html", map[string]interface{}{"error": err.Error()})
		return nil
	}

	base := d.baseDate(doc)

	panels := doc.Find("div.route, li.route, div.result")
	var routes []models.Route
	if panels.Length() == 0 {
		// Some renderings put a single result straight into the body.
		if route, ok := d.decodePanel(doc.Selection, base); ok {
			routes = append(routes, route)
		}
		return routes
	}

	panels.Each(func(_ int, panel *goquery.Selection) {
		if route, ok := d.decodePanel(panel, base); ok {
			routes = append(routes, route)
		}
	})
	return routes
}

// baseDate reads the hidden form field carrying the date the query was
// issued against. Every raw clock time on the page anchors to this date
// unless rollover is detected.
func (d *TimetableDecoder) baseDate(doc *goquery.Document) time.Time {
	raw, _ := doc.Find(`input[type="hidden"][name="date"]`).Attr("value")
	raw = strings.TrimSpace(raw)
	for _, layout := range baseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	d.event("warn", "base date field missing, falling back to today", map[string]interface{}{"raw": raw})
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (d *TimetableDecoder) decodePanel(panel *goquery.Selection, base time.Time) (models.Route, bool) {
	text := panel.Text()

	dep := departPattern.FindStringSubmatch(text)
	arr := arrivePattern.FindStringSubmatch(text)
	if dep == nil || arr == nil {
		d.event("debug", "panel skipped: headline time pattern missing", nil)
		return models.Route{}, false
	}

	depart := anchorToDate(base, atoi(dep[1]), atoi(dep[2]))
	arrive := anchorClock(depart, atoi(arr[1]), atoi(arr[2]))

	summary := models.RouteSummary{
		Depart: depart.Format(models.TimeLayout),
		Arrive: arrive.Format(models.TimeLayout),
	}
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		summary.DurationMin = atoi(m[1])
	} else {
		summary.DurationMin = int(arrive.Sub(depart) / time.Minute)
	}
	if m := transfersPattern.FindStringSubmatch(text); m != nil {
		summary.Transfers = atoi(m[1])
	}
	if m := farePattern.FindStringSubmatch(text); m != nil {
		summary.FareJPY = atoi(m[1])
	}

	legs := d.decodeLegs(panel, depart)
	if len(legs) == 0 {
		// Coarse panels without a detail table still beat returning
		// nothing: synthesize one leg from the panel-level figures.
		legs = []models.RouteLeg{{
			Mode:        models.ModeBus,
			DurationMin: summary.DurationMin,
			FareJPY:     summary.FareJPY,
			DepartTime:  summary.Depart,
			ArriveTime:  summary.Arrive,
		}}
	}

	return models.Route{Summary: summary, Legs: legs}, true
}

// decodeLegs walks the panel's nested detail table. Place rows carry a
// stop name (annotations stripped) plus the fare posted at that boarding
// stop; transit rows carry the actual movement. A transit row's fare is
// the fare of the place row immediately preceding it, except for walks,
// which are always zero.
func (d *TimetableDecoder) decodeLegs(panel *goquery.Selection, depart time.Time) []models.RouteLeg {
	var legs []models.RouteLeg
	var pendingName string
	var pendingFare int
	prev := depart

	panel.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		switch {
		case row.HasClass("place"):
			pendingName = stripAnnotations(row.Find("td").First().Text())
			pendingFare = 0
			if m := legFarePattern.FindStringSubmatch(row.Text()); m != nil {
				pendingFare = atoi(m[1])
			}
			if len(legs) > 0 && legs[len(legs)-1].To == "" {
				legs[len(legs)-1].To = pendingName
			}

		case row.HasClass("transit"):
			text := row.Text()
			leg := models.RouteLeg{
				Mode: classifyMode(text),
				From: pendingName,
			}
			if m := legDurationPattern.FindStringSubmatch(text); m != nil {
				leg.DurationMin = atoi(m[1])
			}
			if m := legStopsPattern.FindStringSubmatch(text); m != nil {
				leg.Stops = atoi(m[1])
			}
			if leg.Mode != models.ModeWalk {
				leg.Line = lineName(text)
				leg.FareJPY = pendingFare
			}
			if leg.Mode == models.ModeWalk {
				if m := walkDistPattern.FindStringSubmatch(text); m != nil {
					dist, _ := strconv.ParseFloat(m[1], 64)
					if m[2] == "m" {
						dist /= 1000.0
					}
					leg.DistanceKm = dist
				}
			}
			if m := legTimePattern.FindStringSubmatch(text); m != nil {
				t := anchorClock(prev, atoi(m[1]), atoi(m[2]))
				leg.DepartTime = t.Format(models.TimeLayout)
				prev = t
			}
			legs = append(legs, leg)
		}
	})

	return legs
}

// classifyMode maps a transit-row description to a leg mode. The walk
// marker wins over everything; bus and train are keyword guesses with
// bus as the conservative default (the city network is bus-dominated).
func classifyMode(text string) string {
	switch {
	case strings.Contains(text, "徒歩") || strings.Contains(strings.ToLower(text), "walk"):
		return models.ModeWalk
	case strings.Contains(text, "バス") || strings.Contains(text, "系統") || strings.Contains(strings.ToLower(text), "bus"):
		return models.ModeBus
	case strings.Contains(text, "電車") || strings.Contains(text, "鉄道") || strings.Contains(text, "地下鉄") ||
		strings.Contains(text, "線") || strings.Contains(strings.ToLower(text), "train") || strings.Contains(strings.ToLower(text), "line"):
		return models.ModeTrain
	default:
		return models.ModeBus
	}
}

// lineName pulls the service description out of a transit row, dropping
// clock times, durations and counters that share the cell.
func lineName(text string) string {
	text = legTimePattern.ReplaceAllString(text, "")
	text = legDurationPattern.ReplaceAllString(text, "")
	text = legStopsPattern.ReplaceAllString(text, "")
	text = strings.NewReplacer("発", "", "着", "", "dep", "", "arr", "").Replace(text)
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

func stripAnnotations(s string) string {
	s = annotationPattern.ReplaceAllString(s, "")
	s = legFarePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func (d *TimetableDecoder) event(level, msg string, metadata map[string]interface{}) {
	if d.sink != nil {
		d.sink.Event(level, msg, metadata)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
