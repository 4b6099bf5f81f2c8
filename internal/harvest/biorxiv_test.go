// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

const sampleBioRxivJSON = `{
  "collection": [
    {
      "doi": "10.1101/2026.08.01.606001",
      "title": "Genomics of deep-sea microbes",
      "authors": "Park, S.; Novak, L.; Osei, K.",
      "abstract": "We sequence microbial communities from hadal trenches.",
      "category": "microbiology",
      "date": "2026-08-01",
      "version": "1"
    },
    {
      "doi": "10.1101/2026.08.05.606002",
      "title": "A cardiology trial readout",
      "authors": "Meyer, T.",
      "abstract": "Outcomes of a phase II trial.",
      "category": "cardiovascular medicine",
      "date": "2026-08-05",
      "version": "2"
    },
    {
      "doi": "",
      "title": "Genomics paper missing its DOI",
      "category": "genomics"
    }
  ]
}`

func newTestBioRxiv(ts *httptest.Server, server string) *BioRxiv {
	return NewBioRxiv(server, types.SourceConfig{BaseURL: ts.URL}, testHTTPCfg(), ts.Client())
}

func TestBioRxivSearchFiltersByTopic(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleBioRxivJSON)
	}))
	defer ts.Close()

	// "genomics" matches the first item's title and the DOI-less item;
	// the latter is dropped in parsing.
	records, err := newTestBioRxiv(ts, "biorxiv").Search(context.Background(), []string{"genomics"}, 7, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	r0 := records[0]
	if r0.ID != "biorxiv:10.1101/2026.08.01.606001" {
		t.Errorf("ID = %q", r0.ID)
	}
	if r0.Source != "biorxiv" {
		t.Errorf("Source = %q", r0.Source)
	}
	// Semicolon-separated author string splits into individual names.
	if len(r0.Authors) != 3 || r0.Authors[0] != "Park" || r0.Authors[1] != "S." {
		t.Errorf("Authors = %v", r0.Authors)
	}
	if len(r0.Topics) != 1 || r0.Topics[0] != "microbiology" {
		t.Errorf("Topics = %v, want category", r0.Topics)
	}
	if r0.URL != "https://www.biorxiv.org/content/10.1101/2026.08.01.606001" {
		t.Errorf("URL = %q", r0.URL)
	}
	if r0.Date.Year() != 2026 || r0.Date.Month() != 8 || r0.Date.Day() != 1 {
		t.Errorf("Date = %v, want 2026-08-01", r0.Date)
	}
}

func TestBioRxivSearchNoTopicsReturnsAll(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBioRxivJSON)
	}))
	defer ts.Close()

	records, err := newTestBioRxiv(ts, "biorxiv").Search(context.Background(), nil, 7, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Both DOI-bearing items pass with no topic filter.
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}

func TestBioRxivSearchMaxResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBioRxivJSON)
	}))
	defer ts.Close()

	records, err := newTestBioRxiv(ts, "biorxiv").Search(context.Background(), nil, 7, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
}

func TestBioRxivSearchRequestPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"collection":[]}`)
	}))
	defer ts.Close()

	_, err := newTestBioRxiv(ts, "medrxiv").Search(context.Background(), nil, 7, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/details/medrxiv/") || !strings.HasSuffix(gotPath, "/0") {
		t.Errorf("path = %q, want /details/medrxiv/{from}/{to}/0", gotPath)
	}
}

func TestBioRxivMedrxivIdentity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBioRxivJSON)
	}))
	defer ts.Close()

	b := newTestBioRxiv(ts, "medrxiv")
	if b.Name() != "medrxiv" {
		t.Errorf("Name() = %q, want %q", b.Name(), "medrxiv")
	}

	records, err := b.Search(context.Background(), []string{"cardiology"}, 7, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Source != "medrxiv" {
		t.Errorf("Source = %q, want %q", records[0].Source, "medrxiv")
	}
	if !strings.HasPrefix(records[0].ID, "medrxiv:") {
		t.Errorf("ID = %q, want medrxiv prefix", records[0].ID)
	}
}

func TestBioRxivSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	b := NewBioRxiv("biorxiv", types.SourceConfig{BaseURL: ts.URL}, testHTTPCfg(), &http.Client{})
	_, err := b.Search(context.Background(), nil, 7, 10)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("expected HTTP 404 error, got: %v", err)
	}
}

func TestMatchesTopics(t *testing.T) {
	item := bioRxivItem{
		Title:    "Deep learning for variant calling",
		Abstract: "Convolutional networks applied to genomes.",
		Category: "bioinformatics",
	}
	tests := []struct {
		name   string
		topics []string
		want   bool
	}{
		{"title match", []string{"variant calling"}, true},
		{"abstract match", []string{"convolutional"}, true},
		{"category match", []string{"Bioinformatics"}, true},
		{"no match", []string{"astrophysics"}, false},
		{"any topic suffices", []string{"astrophysics", "genomes"}, true},
		{"no topics matches everything", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesTopics(item, tt.topics); got != tt.want {
				t.Errorf("matchesTopics(%v) = %v, want %v", tt.topics, got, tt.want)
			}
		})
	}
}
