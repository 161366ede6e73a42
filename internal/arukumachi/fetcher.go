// Package arukumachi turns the Kyoto route-planner results page into
// structured itineraries. The upstream is third-party, unversioned and
// loosely structured: everything in here is best-effort and
// partial-result-preferring by design of the error model.
package arukumachi

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/yourorg/kyotransit/internal/debug"
)

// Fetcher retrieves one rendered search-result page. The pipeline only
// depends on this interface so decoding is testable without a browser.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ChromeFetcher drives headless Chrome. The upstream page builds its
// result panels with JavaScript, so a plain HTTP GET returns an empty
// shell; rendering is the only way to get the timetable fragments.
type ChromeFetcher struct {
	timeout   time.Duration
	userAgent string
}

// NewChromeFetcher returns a fetcher with the default 30s page budget.
func NewChromeFetcher() *ChromeFetcher {
	return &ChromeFetcher{
		timeout:   30 * time.Second,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Fetch navigates to url and returns the rendered document.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	debug.LogDebug("fetching upstream page", map[string]interface{}{"url": url})

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // result panels are injected after load
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("arukumachi: fetch %s: %w", url, err)
	}
	if htmlContent == "" {
		return "", fmt.Errorf("arukumachi: fetch %s: empty document", url)
	}

	debug.LogDebug("upstream page fetched", map[string]interface{}{"bytes": len(htmlContent)})
	return htmlContent, nil
}
