package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (compatible; GrantAgent/1.0)"

var contentSelectors = []string{"main", "article", ".content", "#content"}

// fetcher downloads pages politely: one shared client, one shared rate limit.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newFetcher(client *http.Client, requestsPerSecond float64) *fetcher {
	return &fetcher{client: client, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

func (f *fetcher) do(ctx context.Context, method string, url string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return f.client.Do(req)
}

// pageText returns the readable main content of the page at url.
func (f *fetcher) pageText(ctx context.Context, url string) (string, error) {
	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	return extractMainContent(doc), nil
}

func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer").Remove()

	var content string
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}
	if strings.TrimSpace(content) == "" {
		content = doc.Find("body").Text()
	}
	return strings.Join(strings.Fields(content), " ")
}

type urlStatus int

const (
	urlOK urlStatus = iota
	urlMissing
	urlUnchecked
)

// checkURL reports urlMissing only for a definite 404. HEAD is tried first and
// GET is used when HEAD answers with an error status. Timeouts and network
// errors leave the URL unchecked.
func (f *fetcher) checkURL(ctx context.Context, url string) (urlStatus, error) {
	resp, err := f.do(ctx, http.MethodHead, url)
	if err != nil {
		return urlUnchecked, err
	}
	resp.Body.Close()
	status := resp.StatusCode

	if status >= http.StatusBadRequest {
		resp, err = f.do(ctx, http.MethodGet, url)
		if err != nil {
			return urlUnchecked, err
		}
		resp.Body.Close()
		status = resp.StatusCode
	}

	if status == http.StatusNotFound {
		return urlMissing, nil
	}
	return urlOK, nil
}
