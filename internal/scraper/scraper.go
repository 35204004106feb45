package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var logger = logger_i.NewLogger("Scraper")

const extractionPrompt = `Analyze this webpage content about Indian startup grants and funding schemes.
Extract every grant mentioned and return a JSON array of grant objects.

For each grant extract:
- name: grant or scheme name (required)
- provider: organization providing the grant (required)
- amount_min, amount_max: funding amounts in INR (number or null)
- deadline: application deadline as an ISO date string, or null if ongoing
- description: 2-3 sentence description
- sectors: applicable sectors, e.g. ["healthtech", "fintech", "all"]
- stages: applicable stages, e.g. ["idea", "mvp", "growth"]
- eligibility_criteria: object with min_age_months, max_age_months (number or null),
  incorporation_required, dpiit_required, women_led (booleans),
  states (empty array if all states), entity_types (array)
- application_url: direct application link or null
- contact_email: enquiry email address or null
- is_active: true if currently accepting applications

Return only a valid JSON array. If no grants are found return [].

Webpage content:
%s`

type SourceResult struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	GrantsFound   int    `json:"grants_found"`
	Skipped       int    `json:"skipped"`
	ContentLength int    `json:"content_length"`
	Error         string `json:"error,omitempty"`
}

type FilteredGrant struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Reason   string `json:"reason"`
}

type Report struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Sources    []SourceResult  `json:"sources"`
	TotalFound int             `json:"total_found"`
	Unique     int             `json:"unique"`
	Valid      int             `json:"valid"`
	Filtered   []FilteredGrant `json:"filtered"`
	Inserted   int             `json:"inserted"`
	Updated    int             `json:"updated"`
	Errors     int             `json:"errors"`
}

// Scraper refreshes the grant catalogue from public portals.
type Scraper struct {
	sources  []config.GrantSource
	fetch    *fetcher
	provider llm.Provider
	grants   grantModel.GrantRepository
	minChars int
	maxChars int
	checkFor time.Duration
}

func New(sources []config.GrantSource, provider llm.Provider, grants grantModel.GrantRepository, httpClient *http.Client) *Scraper {
	return &Scraper{
		sources:  sources,
		fetch:    newFetcher(httpClient, config.ScraperRequestsPerSecond),
		provider: provider,
		grants:   grants,
		minChars: config.ScraperMinContentChars,
		maxChars: config.ScraperMaxContentChars,
		checkFor: config.ScraperURLCheckTimeout,
	}
}

// Run scrapes every source, drops duplicates and dead links, and upserts the rest.
// One failing source or grant does not stop the run.
func (s *Scraper) Run(ctx context.Context) (Report, error) {
	report := Report{StartedAt: time.Now().UTC(), Filtered: []FilteredGrant{}}
	log := logger.FromContext(ctx)

	var found []extractedGrant
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		grants, result := s.scrapeSource(ctx, src)
		report.Sources = append(report.Sources, result)
		found = append(found, grants...)
	}
	report.TotalFound = len(found)

	unique := dedupe(found)
	report.Unique = len(unique)

	valid := make([]extractedGrant, 0, len(unique))
	for _, g := range unique {
		if filtered, ok := s.validate(ctx, g); !ok {
			report.Filtered = append(report.Filtered, filtered)
			metrics.CaptureScrapedGrant("filtered")
			continue
		}
		valid = append(valid, g)
	}
	report.Valid = len(valid)

	for _, g := range valid {
		inserted, err := s.grants.UpsertByNameProvider(ctx, g.toGrant())
		switch {
		case err != nil:
			log.Warn("Could not upsert grant", "name", g.Name, "provider", g.Provider, "error", err)
			report.Errors++
			metrics.CaptureScrapedGrant("error")
		case inserted:
			report.Inserted++
			metrics.CaptureScrapedGrant("inserted")
		default:
			report.Updated++
			metrics.CaptureScrapedGrant("updated")
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("Grant scrape finished", "found", report.TotalFound, "unique", report.Unique, "valid", report.Valid,
		"inserted", report.Inserted, "updated", report.Updated, "errors", report.Errors)
	return report, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, src config.GrantSource) ([]extractedGrant, SourceResult) {
	log := logger.FromContext(ctx).With("source", src.Name)
	result := SourceResult{Name: src.Name, URL: src.URL, Status: "success"}
	fail := func(err error) ([]extractedGrant, SourceResult) {
		log.Warn("Source failed", "error", err)
		result.Status = "error"
		result.Error = err.Error()
		return nil, result
	}

	text, err := s.fetch.pageText(ctx, src.URL)
	if err != nil {
		return fail(err)
	}
	text = truncateRunes(text, s.maxChars)
	result.ContentLength = len([]rune(text))
	if result.ContentLength < s.minChars {
		log.Info("No meaningful content", "chars", result.ContentLength)
		result.Status = "empty"
		return nil, result
	}

	start := time.Now()
	reply, err := s.provider.Generate(ctx, llm.Request{
		User:        fmt.Sprintf(extractionPrompt, text),
		MaxTokens:   4096,
		Temperature: config.MetadataTemperature,
	})
	metrics.CaptureExecutionMetrics("grant_extraction", time.Since(start))
	if err != nil {
		return fail(err)
	}

	grants, skipped, err := parseGrants(reply)
	if err != nil {
		return fail(err)
	}
	for i := range grants {
		grants[i].SourceURL = src.URL
		grants[i].SourceType = src.Type
	}
	result.GrantsFound = len(grants)
	result.Skipped = skipped
	log.Info("Extracted grants", "count", len(grants), "skipped", skipped)
	return grants, result
}

func (s *Scraper) validate(ctx context.Context, g extractedGrant) (FilteredGrant, bool) {
	url := g.link()
	if url == "" {
		return FilteredGrant{}, true
	}
	checkCtx, cancel := context.WithTimeout(ctx, s.checkFor)
	defer cancel()

	status, err := s.fetch.checkURL(checkCtx, url)
	if status == urlMissing {
		return FilteredGrant{Name: g.Name, Provider: g.Provider, URL: url, Reason: "404 Not Found"}, false
	}
	if err != nil {
		logger.FromContext(ctx).Debug("URL check inconclusive, keeping grant", "url", url, "error", err)
	}
	return FilteredGrant{}, true
}

func dedupe(grants []extractedGrant) []extractedGrant {
	seen := make(map[string]bool, len(grants))
	out := make([]extractedGrant, 0, len(grants))
	for _, g := range grants {
		if seen[g.ExternalId] {
			continue
		}
		seen[g.ExternalId] = true
		out = append(out, g)
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
