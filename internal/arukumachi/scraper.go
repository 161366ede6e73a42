package arukumachi

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourorg/kyotransit/internal/cache"
	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/geo"
	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

// Scraper runs the full upstream pipeline: hint resolution, fetch, both
// decoders, reconciliation. All the decoding is pure; the only state is
// the fetch cache.
type Scraper struct {
	baseURL   string
	fetcher   Fetcher
	provider  *refdata.Provider
	resolver  *geo.NearestStopResolver
	packed    *PackedDecoder
	timetable *TimetableDecoder
	htmlCache *cache.Cache
	sink      debug.Sink
}

// NewScraper wires the pipeline. fetcher and htmlCache may be nil (no
// cache, or injected fake fetcher in tests); sink may be nil.
func NewScraper(baseURL string, fetcher Fetcher, provider *refdata.Provider, htmlCache *cache.Cache, sink debug.Sink) *Scraper {
	coords := geo.NewCoordinateResolver(provider)
	return &Scraper{
		baseURL:   strings.TrimSpace(baseURL),
		fetcher:   fetcher,
		provider:  provider,
		resolver:  geo.NewNearestStopResolver(provider),
		packed:    NewPackedDecoder(coords, sink),
		timetable: NewTimetableDecoder(sink),
		htmlCache: htmlCache,
		sink:      sink,
	}
}

// Resolver exposes the stop resolver for the hint endpoint.
func (s *Scraper) Resolver() *geo.NearestStopResolver { return s.resolver }

// Search runs one route search end to end. An empty result list is the
// not-found condition (the orchestrating handler turns it into a 404);
// the only errors are configuration (tables not loaded) and transport.
func (s *Scraper) Search(ctx context.Context, req models.TransitSearchRequest) ([]models.Route, error) {
	tables, err := s.provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	_, fromHints, _, err := s.resolver.HintsForPlace(req.From, req.Language)
	if err != nil {
		return nil, err
	}
	_, toHints, _, err := s.resolver.HintsForPlace(req.To, req.Language)
	if err != nil {
		return nil, err
	}

	searchTime := req.Time
	if searchTime == "" {
		searchTime, _ = tables.Coefficient("first_departure", req.Language)
	}

	url := BuildSearchURL(s.baseURL, SearchQuery{
		From:      req.From,
		To:        req.To,
		FromHints: fromHints,
		ToHints:   toHints,
		Date:      req.Date,
		Time:      searchTime,
		Language:  req.Language,
	})

	html, err := s.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	return s.DecodeDocument(html, req.Language), nil
}

// DecodeDocument runs both decoders over one fetched page and reconciles
// their outputs. Exposed separately so replayed documents can be decoded
// without a fetcher.
func (s *Scraper) DecodeDocument(html, lang string) []models.Route {
	if ContainsNoResults(html) {
		s.event("info", "upstream reported no results", nil)
		return []models.Route{}
	}

	timetableRoutes := s.timetable.Decode(html)

	var packedRoutes []models.Route
	for _, payload := range ExtractPackedPayloads(html) {
		if route, ok := s.packed.Decode(payload, lang); ok {
			packedRoutes = append(packedRoutes, route)
		}
	}

	routes := Merge(timetableRoutes, packedRoutes)
	s.event("info", "document decoded", map[string]interface{}{
		"panels": len(timetableRoutes),
		"packed": len(packedRoutes),
		"routes": len(routes),
	})
	debug.SendScrapeStatus("ok", time.Now(), len(timetableRoutes), len(packedRoutes), 0)
	return routes
}

// ExtractPackedPayloads pulls the $-delimited machine payloads out of
// the page's hidden form values. There is no stable field name across
// page revisions, so any hidden value dense in delimiters qualifies; the
// packed decoder rejects false positives softly.
func ExtractPackedPayloads(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var payloads []string
	doc.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		value, ok := input.Attr("value")
		if !ok {
			return
		}
		if strings.Count(value, "$") >= minPackedTokens-1 {
			payloads = append(payloads, value)
		}
	})
	return payloads
}

func (s *Scraper) fetchPage(ctx context.Context, url string) (string, error) {
	if s.htmlCache != nil {
		if cached, found := s.htmlCache.Get(url); found {
			if html, ok := cached.(string); ok {
				s.event("debug", "upstream page served from cache", map[string]interface{}{"url": url})
				return html, nil
			}
		}
	}
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		debug.SendScrapeStatus("error", time.Now(), 0, 0, 1)
		return "", err
	}
	if s.htmlCache != nil {
		s.htmlCache.Set(url, html)
	}
	return html, nil
}

func (s *Scraper) event(level, msg string, metadata map[string]interface{}) {
	if s.sink != nil {
		s.sink.Event(level, msg, metadata)
	}
}
