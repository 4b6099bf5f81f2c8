// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

const sampleArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Deep Learning for  Genomic
  Variant Calling</title>
    <summary>We apply convolutional networks to variant calling.</summary>
    <published>2026-08-20T17:57:34Z</published>
    <author><name>Jane Smith</name></author>
    <author><name>Wei Chen</name></author>
    <category term="q-bio.GN"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v2</id>
    <title>Protein Folding Revisited</title>
    <summary>A new look at structure prediction.</summary>
    <published>2026-08-22T00:00:00Z</published>
    <author><name>Alice Jones</name></author>
    <category term="q-bio.BM"/>
  </entry>
  <entry>
    <id>http://example.org/not-an-arxiv-entry</id>
    <title>Malformed Entry</title>
  </entry>
</feed>`

func newTestArxiv(ts *httptest.Server) *Arxiv {
	return NewArxiv(types.SourceConfig{BaseURL: ts.URL}, testHTTPCfg(), ts.Client())
}

func TestArxivSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()

	records, err := newTestArxiv(ts).Search(context.Background(), []string{"genomics"}, 0, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Malformed entry without an arXiv ID is dropped, not fatal.
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r0 := records[0]
	if r0.ID != "arxiv:2301.07041" {
		t.Errorf("ID = %q, want %q", r0.ID, "arxiv:2301.07041")
	}
	if r0.Source != "arxiv" {
		t.Errorf("Source = %q, want %q", r0.Source, "arxiv")
	}
	// Whitespace in the feed title collapses to single spaces.
	if r0.Title != "Deep Learning for Genomic Variant Calling" {
		t.Errorf("Title = %q", r0.Title)
	}
	if len(r0.Authors) != 2 || r0.Authors[0] != "Jane Smith" {
		t.Errorf("Authors = %v", r0.Authors)
	}
	if len(r0.Topics) != 2 || r0.Topics[0] != "q-bio.GN" {
		t.Errorf("Topics = %v, want categories", r0.Topics)
	}
	if r0.URL != "https://arxiv.org/abs/2301.07041" {
		t.Errorf("URL = %q", r0.URL)
	}
	if r0.Date.Year() != 2026 || r0.Date.Month() != 8 || r0.Date.Day() != 20 {
		t.Errorf("Date = %v, want 2026-08-20", r0.Date)
	}
}

func TestArxivSearchDateCutoff(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -2).Format(time.RFC3339)
	stale := time.Now().AddDate(0, 0, -400).Format(time.RFC3339)
	feed := fmt.Sprintf(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Recent Paper</title>
    <published>%s</published>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2001.00002v1</id>
    <title>Stale Paper</title>
    <published>%s</published>
  </entry>
</feed>`, recent, stale)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, feed)
	}))
	defer ts.Close()

	records, err := newTestArxiv(ts).Search(context.Background(), []string{"genomics"}, 30, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want only the entry inside the window", len(records))
	}
	if records[0].Title != "Recent Paper" {
		t.Errorf("Title = %q, want the recent entry", records[0].Title)
	}
}

func TestArxivSearchRequestParameters(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	}))
	defer ts.Close()

	_, err := newTestArxiv(ts).Search(context.Background(), []string{"machine learning", "genomics"}, 30, 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(gotQuery, "max_results=25") {
		t.Errorf("query = %q, should cap results at 25", gotQuery)
	}
	if !strings.Contains(gotQuery, "sortBy=submittedDate") {
		t.Errorf("query = %q, should sort by submission date", gotQuery)
	}
}

func TestArxivSearchEmptyTopics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent for an empty query")
	}))
	defer ts.Close()

	_, err := newTestArxiv(ts).Search(context.Background(), nil, 30, 10)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty query error, got: %v", err)
	}
}

func TestArxivSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newTestArxiv(ts).Search(context.Background(), []string{"genomics"}, 30, 10)
	if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
		t.Errorf("expected HTTP 403 error, got: %v", err)
	}
}

func TestArxivSearchMalformedXML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<feed><entry><unclosed`)
	}))
	defer ts.Close()

	_, err := newTestArxiv(ts).Search(context.Background(), []string{"genomics"}, 30, 10)
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name   string
		topics []string
		want   string
	}{
		{"single word", []string{"genomics"}, "all:genomics"},
		{"multi word", []string{"machine learning"}, "all:machine+learning"},
		{"multiple topics", []string{"genomics", "proteomics"}, "all:genomics+OR+all:proteomics"},
		{"blank topic skipped", []string{"genomics", "  "}, "all:genomics"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.topics); got != tt.want {
				t.Errorf("buildArxivQuery(%v) = %q, want %q", tt.topics, got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractArxivID(tt.input); got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
