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

// europePMCAPIBase is the Europe PMC REST search endpoint. Declared as a
// var so tests can substitute an httptest server.
var europePMCAPIBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMC harvests the Europe PMC REST API.
type EuropePMC struct {
	client    *http.Client
	limiter   *RateLimiter
	baseURL   string
	userAgent string
	email     string
}

// NewEuropePMC builds the Europe PMC adapter with its private rate limiter.
func NewEuropePMC(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *EuropePMC {
	base := cfg.BaseURL
	if base == "" {
		base = europePMCAPIBase
	}
	return &EuropePMC{
		client:    client,
		limiter:   NewRateLimiter(cfg.RateLimit),
		baseURL:   base,
		userAgent: httpCfg.UserAgent,
		email:     cfg.Email,
	}
}

// Name returns the source identifier.
func (e *EuropePMC) Name() string { return "europepmc" }

// Search queries Europe PMC for open-access papers whose title or abstract
// matches any of the topics within the date window.
func (e *EuropePMC) Search(ctx context.Context, topics []string, dateRangeDays, maxResults int) ([]types.Record, error) {
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{
		"query":      {buildEuropePMCQuery(topics, dateRangeDays)},
		"format":     {"json"},
		"pageSize":   {fmt.Sprintf("%d", maxResults)},
		"sort":       {"date desc"},
		"resultType": {"core"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	if e.email != "" {
		req.Header.Set("email", e.email)
	}

	e.limiter.WaitTurn()
	resp, err := httputil.DoWithRetry(ctx, e.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Europe PMC API returned HTTP %d", resp.StatusCode)
	}

	var epr europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&epr); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}

	var records []types.Record
	for _, result := range epr.ResultList.Result {
		rec, ok := parseEuropePMCResult(result)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildEuropePMCQuery OR-joins per-topic title/abstract clauses, limits to
// the publication-date window, and restricts to open access.
func buildEuropePMCQuery(topics []string, dateRangeDays int) string {
	var clauses []string
	for _, topic := range topics {
		clauses = append(clauses, fmt.Sprintf(`(TITLE:"%s" OR ABSTRACT:"%s")`, topic, topic))
	}
	query := strings.Join(clauses, " OR ")
	if query == "" {
		query = `bioinformatics OR "computational biology"`
	}

	if dateRangeDays > 0 {
		now := time.Now()
		cutoff := now.AddDate(0, 0, -dateRangeDays)
		query += fmt.Sprintf(" AND FIRST_PDATE:[%s TO %s]",
			cutoff.Format("2006-01-02"), now.Format("2006-01-02"))
	}

	return query + " AND OPEN_ACCESS:Y"
}

// parseEuropePMCResult maps one search result to a Record, preferring the
// PMCID over the PMID as the local identifier. Results without either are
// dropped, never failing the batch.
func parseEuropePMCResult(result europePMCResult) (types.Record, bool) {
	identifier := result.PMCID
	if identifier == "" {
		identifier = result.PMID
	}
	if identifier == "" {
		return types.Record{}, false
	}

	rec := types.Record{
		ID:       recordID("europepmc", identifier),
		Title:    cleanText(result.Title),
		Abstract: cleanText(result.AbstractText),
		Source:   "europepmc",
		DOI:      result.DOI,
	}

	for _, author := range result.AuthorList.Author {
		name := author.FullName
		if name == "" {
			name = strings.TrimSpace(author.FirstName + " " + author.LastName)
		}
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}

	if result.FirstPublicationDate != "" {
		if t, err := time.Parse("2006-01-02", result.FirstPublicationDate); err == nil {
			rec.Date = t
		}
	}

	if result.PMCID != "" {
		rec.URL = "https://europepmc.org/article/PMC/" + strings.TrimPrefix(result.PMCID, "PMC")
	} else {
		rec.URL = "https://europepmc.org/article/MED/" + result.PMID
	}

	// MeSH headings become topics; fall back to the journal title.
	for _, mesh := range result.MeshHeadingList.MeshHeading {
		if mesh.DescriptorName != "" {
			rec.Topics = append(rec.Topics, mesh.DescriptorName)
		}
	}
	if len(rec.Topics) == 0 {
		if journal := result.JournalInfo.Journal.Title; journal != "" {
			rec.Topics = append(rec.Topics, journal)
		}
	}

	return rec, true
}

// Europe PMC API JSON structures.
type europePMCResponse struct {
	ResultList europePMCResultList `json:"resultList"`
}

type europePMCResultList struct {
	Result []europePMCResult `json:"result"`
}

type europePMCResult struct {
	PMID                 string                   `json:"pmid"`
	PMCID                string                   `json:"pmcid"`
	DOI                  string                   `json:"doi"`
	Title                string                   `json:"title"`
	AbstractText         string                   `json:"abstractText"`
	FirstPublicationDate string                   `json:"firstPublicationDate"`
	AuthorList           europePMCAuthorList      `json:"authorList"`
	MeshHeadingList      europePMCMeshHeadingList `json:"meshHeadingList"`
	JournalInfo          europePMCJournalInfo     `json:"journalInfo"`
}

type europePMCAuthorList struct {
	Author []europePMCAuthor `json:"author"`
}

type europePMCAuthor struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type europePMCMeshHeadingList struct {
	MeshHeading []europePMCMeshHeading `json:"meshHeading"`
}

type europePMCMeshHeading struct {
	DescriptorName string `json:"descriptorName"`
}

type europePMCJournalInfo struct {
	Journal europePMCJournal `json:"journal"`
}

type europePMCJournal struct {
	Title string `json:"title"`
}
