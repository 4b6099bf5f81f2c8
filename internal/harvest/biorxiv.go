// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/sci-aggregator/internal/httputil"
	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// bioRxivAPIBases holds the default endpoints per preprint server.
// Declared as a var so tests can substitute httptest servers.
var bioRxivAPIBases = map[string]string{
	"biorxiv": "https://api.biorxiv.org",
	"medrxiv": "https://api.medrxiv.org",
}

// BioRxiv harvests the bioRxiv/medRxiv details API. One adapter type
// serves both servers; the server name selects the endpoint and the
// record source.
type BioRxiv struct {
	client    *http.Client
	limiter   *RateLimiter
	server    string
	baseURL   string
	userAgent string
}

// NewBioRxiv builds an adapter for the given preprint server ("biorxiv"
// or "medrxiv") with its private rate limiter.
func NewBioRxiv(server string, cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *BioRxiv {
	base := cfg.BaseURL
	if base == "" {
		base = bioRxivAPIBases[server]
	}
	return &BioRxiv{
		client:    client,
		limiter:   NewRateLimiter(cfg.RateLimit),
		server:    server,
		baseURL:   base,
		userAgent: httpCfg.UserAgent,
	}
}

// Name returns the source identifier.
func (b *BioRxiv) Name() string { return b.server }

// Search lists preprints posted within the date window and filters them
// by topic client-side; the details API is date-based and has no search
// parameter.
func (b *BioRxiv) Search(ctx context.Context, topics []string, dateRangeDays, maxResults int) ([]types.Record, error) {
	if dateRangeDays <= 0 {
		dateRangeDays = 7
	}
	if maxResults <= 0 {
		maxResults = 50
	}

	end := time.Now()
	start := end.AddDate(0, 0, -dateRangeDays)
	reqURL := fmt.Sprintf("%s/details/%s/%s/%s/0",
		b.baseURL, b.server, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)

	b.limiter.WaitTurn()
	resp, err := httputil.DoWithRetry(ctx, b.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s API request: %w", b.server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned HTTP %d", b.server, resp.StatusCode)
	}

	var br bioRxivResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", b.server, err)
	}

	var records []types.Record
	for _, item := range br.Collection {
		if !matchesTopics(item, topics) {
			continue
		}
		rec, ok := b.parseItem(item)
		if !ok {
			continue
		}
		records = append(records, rec)
		if len(records) >= maxResults {
			break
		}
	}
	return records, nil
}

// matchesTopics reports whether any topic appears in the preprint's
// title, abstract, or category. No topics means no filter.
func matchesTopics(item bioRxivItem, topics []string) bool {
	if len(topics) == 0 {
		return true
	}
	title := strings.ToLower(item.Title)
	abstract := strings.ToLower(item.Abstract)
	category := strings.ToLower(item.Category)

	for _, topic := range topics {
		t := strings.ToLower(topic)
		if strings.Contains(title, t) || strings.Contains(abstract, t) || strings.Contains(category, t) {
			return true
		}
	}
	return false
}

// parseItem maps one collection entry to a Record. Entries without a DOI
// are dropped, never failing the batch.
func (b *BioRxiv) parseItem(item bioRxivItem) (types.Record, bool) {
	if item.DOI == "" {
		return types.Record{}, false
	}

	rec := types.Record{
		ID:       recordID(b.server, item.DOI),
		Title:    cleanText(item.Title),
		Abstract: cleanText(item.Abstract),
		Source:   b.server,
		URL:      fmt.Sprintf("https://www.%s.org/content/%s", b.server, item.DOI),
		DOI:      item.DOI,
	}

	// Authors arrive as one string separated by ';' or ','.
	for _, name := range strings.FieldsFunc(item.Authors, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		if name = strings.TrimSpace(name); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}

	if item.Date != "" {
		if t, err := time.Parse("2006-01-02", item.Date); err == nil {
			rec.Date = t
		}
	}

	if item.Category != "" {
		rec.Topics = append(rec.Topics, item.Category)
	}

	return rec, true
}

// bioRxiv API JSON structures.
type bioRxivResponse struct {
	Collection []bioRxivItem `json:"collection"`
}

type bioRxivItem struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Abstract string `json:"abstract"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Version  string `json:"version"`
}
