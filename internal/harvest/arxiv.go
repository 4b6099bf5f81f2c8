// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/sci-aggregator/internal/httputil"
	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv harvests the arXiv Atom API.
type Arxiv struct {
	client    *http.Client
	limiter   *RateLimiter
	baseURL   string
	userAgent string
}

// NewArxiv builds the arXiv adapter with its private rate limiter.
func NewArxiv(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *Arxiv {
	base := cfg.BaseURL
	if base == "" {
		base = arxivAPIBase
	}
	return &Arxiv{
		client:    client,
		limiter:   NewRateLimiter(cfg.RateLimit),
		baseURL:   base,
		userAgent: httpCfg.UserAgent,
	}
}

// Name returns the source identifier.
func (a *Arxiv) Name() string { return "arxiv" }

// Search queries arXiv for recent submissions matching any of the topics.
// arXiv has no server-side date filter, so results are sorted by
// submission date and cut to the window client-side.
func (a *Arxiv) Search(ctx context.Context, topics []string, dateRangeDays, maxResults int) ([]types.Record, error) {
	query := buildArxivQuery(topics)
	if query == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		a.baseURL, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	a.limiter.WaitTurn()
	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	cutoff := time.Time{}
	if dateRangeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -dateRangeDays)
	}

	var records []types.Record
	for _, entry := range feed.Entries {
		rec, ok := parseArxivEntry(entry)
		if !ok {
			continue
		}
		if !cutoff.IsZero() && !rec.Date.IsZero() && rec.Date.Before(cutoff) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildArxivQuery OR-joins the topics as all-field terms.
func buildArxivQuery(topics []string) string {
	var parts []string
	for _, topic := range topics {
		terms := strings.Fields(topic)
		if len(terms) == 0 {
			continue
		}
		parts = append(parts, "all:"+strings.Join(terms, "+"))
	}
	return strings.Join(parts, "+OR+")
}

// parseArxivEntry maps one Atom entry to a Record. Entries without a
// recognizable arXiv ID are dropped, never failing the batch.
func parseArxivEntry(entry arxivEntry) (types.Record, bool) {
	arxivID := extractArxivID(entry.ID)
	if arxivID == "" {
		return types.Record{}, false
	}

	rec := types.Record{
		ID:       recordID("arxiv", arxivID),
		Title:    cleanText(entry.Title),
		Abstract: cleanText(entry.Summary),
		Source:   "arxiv",
		URL:      "https://arxiv.org/abs/" + arxivID,
		DOI:      entry.DOI,
	}

	for _, author := range entry.Authors {
		if name := strings.TrimSpace(author.Name); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			rec.Topics = append(rec.Topics, cat.Term)
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		rec.Date = t
	}
	return rec, true
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	DOI        string          `xml:"doi"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
