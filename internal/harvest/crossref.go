// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/sci-aggregator/internal/httputil"
	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// Crossref harvests the Crossref REST API.
type Crossref struct {
	client    *http.Client
	limiter   *RateLimiter
	baseURL   string
	userAgent string
	// email joins the Crossref polite pool via the mailto parameter.
	email string
}

// NewCrossref builds the Crossref adapter with its private rate limiter.
func NewCrossref(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *Crossref {
	base := cfg.BaseURL
	if base == "" {
		base = crossrefAPIBase
	}
	return &Crossref{
		client:    client,
		limiter:   NewRateLimiter(cfg.RateLimit),
		baseURL:   base,
		userAgent: httpCfg.UserAgent,
		email:     cfg.Email,
	}
}

// Name returns the source identifier.
func (c *Crossref) Name() string { return "crossref" }

// Search queries Crossref for works matching any of the topics within the
// date window, newest first.
func (c *Crossref) Search(ctx context.Context, topics []string, dateRangeDays, maxResults int) ([]types.Record, error) {
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{
		"query": {buildCrossrefQuery(topics)},
		"rows":  {fmt.Sprintf("%d", maxResults)},
		"sort":  {"published"},
		"order": {"desc"},
	}
	if dateRangeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -dateRangeDays)
		params.Set("filter", "from-pub-date:"+cutoff.Format("2006-01-02"))
	}
	if c.email != "" {
		params.Set("mailto", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.limiter.WaitTurn()
	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var records []types.Record
	for _, item := range cr.Message.Items {
		rec, ok := parseCrossrefItem(item)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildCrossrefQuery OR-joins quoted topics; with no topics it falls back
// to the project's default subject areas.
func buildCrossrefQuery(topics []string) string {
	if len(topics) == 0 {
		return `bioinformatics OR "computational biology"`
	}
	quoted := make([]string, len(topics))
	for i, topic := range topics {
		quoted[i] = `"` + topic + `"`
	}
	return strings.Join(quoted, " OR ")
}

// parseCrossrefItem maps one works item to a Record. Items without a DOI
// are dropped, never failing the batch.
func parseCrossrefItem(item crossrefItem) (types.Record, bool) {
	if item.DOI == "" {
		return types.Record{}, false
	}

	rec := types.Record{
		ID:       recordID("crossref", item.DOI),
		Source:   "crossref",
		DOI:      item.DOI,
		Abstract: cleanText(stripJATS(item.Abstract)),
	}

	if len(item.Title) > 0 {
		rec.Title = cleanText(item.Title[0])
	}
	for _, author := range item.Authors {
		name := strings.TrimSpace(strings.TrimSpace(author.Given) + " " + strings.TrimSpace(author.Family))
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}

	rec.Date = crossrefDate(item.PublishedPrint)
	if rec.Date.IsZero() {
		rec.Date = crossrefDate(item.PublishedOnline)
	}

	rec.URL = item.URL
	if rec.URL == "" {
		rec.URL = "https://doi.org/" + item.DOI
	}

	// Subjects become topics; fall back to the work type so every
	// record carries at least one topic.
	rec.Topics = append(rec.Topics, item.Subject...)
	if len(rec.Topics) == 0 && item.Type != "" {
		rec.Topics = append(rec.Topics, item.Type)
	}

	return rec, true
}

// crossrefDate converts a Crossref date-parts value to a time. Partial
// dates (missing month or day) resolve to the first of the period.
func crossrefDate(d crossrefDateParts) time.Time {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return time.Time{}
	}
	parts := d.DateParts[0]
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}
	if year <= 0 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// stripJATS removes the JATS XML tags Crossref embeds in abstracts.
func stripJATS(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	DOI             string            `json:"DOI"`
	Type            string            `json:"type"`
	Title           []string          `json:"title"`
	Abstract        string            `json:"abstract"`
	URL             string            `json:"URL"`
	Subject         []string          `json:"subject"`
	Authors         []crossrefAuthor  `json:"author"`
	PublishedPrint  crossrefDateParts `json:"published-print"`
	PublishedOnline crossrefDateParts `json:"published-online"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}
