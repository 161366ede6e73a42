package arukumachi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yourorg/kyotransit/internal/models"
)

// SearchQuery carries everything needed to build one upstream search URL.
type SearchQuery struct {
	From      string
	To        string
	FromHints []models.CandidateStopHint
	ToHints   []models.CandidateStopHint
	Date      string // 2006-01-02; empty means "today" upstream
	Time      string // 15:04; empty falls back to the first-departure coefficient
	Language  string
}

// BuildSearchURL assembles the upstream search URL. Stop hints are
// passed as comma-joined seed lists; the planner matches them against
// its own inventory, which is why the hint names must use the
// composite "name(operator)" form.
func BuildSearchURL(baseURL string, q SearchQuery) string {
	v := url.Values{}
	v.Set("from", q.From)
	v.Set("to", q.To)
	if names := hintNames(q.FromHints); names != "" {
		v.Set("fromhint", names)
	}
	if names := hintNames(q.ToHints); names != "" {
		v.Set("tohint", names)
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.Time != "" {
		v.Set("time", q.Time)
	}
	lang := "ja"
	if strings.HasPrefix(strings.ToLower(q.Language), "en") {
		lang = "en"
	}
	v.Set("lang", lang)

	return fmt.Sprintf("%s/route?%s", strings.TrimRight(baseURL, "/"), v.Encode())
}

func hintNames(hints []models.CandidateStopHint) string {
	names := make([]string, 0, len(hints))
	for _, h := range hints {
		if h.Name != "" {
			names = append(names, h.Name)
		}
	}
	return strings.Join(names, ",")
}
