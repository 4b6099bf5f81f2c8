package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sci-aggregator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds per-provider settings for one harvest adapter.
type SourceConfig struct {
	// BaseURL overrides the provider's default API endpoint. Empty uses
	// the built-in endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// RateLimit is the maximum request rate in requests per minute.
	// Zero or negative disables throttling for the adapter.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Email is sent to providers that run polite pools (Crossref,
	// Europe PMC).
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional provider credential.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// HarvestConfig holds settings for the harvest stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxWorkers bounds the parallel harvest worker pool. The effective
	// pool size is min(active sources, MaxWorkers). Default 5.
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// SequentialDelay is the politeness pause between adapters when
	// harvesting sequentially (default 1s).
	SequentialDelay time.Duration `json:"sequential_delay" yaml:"sequential_delay"`

	// DateRangeDays is how far back each adapter searches (default 7).
	DateRangeDays int `json:"date_range_days" yaml:"date_range_days"`

	// MaxPerSource caps the number of records fetched per provider
	// (default 50).
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`
}

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	// DataDir is the directory containing the SQLite database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default cap for listing queries (default 100).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GraphConfig holds settings for knowledge-graph construction and export.
type GraphConfig struct {
	// ExportDir, when set, is the directory graph exports default into
	// when no output path is given. Empty exports to stdout.
	ExportDir string `json:"export_dir" yaml:"export_dir"`
}

// AppConfig groups all stage configurations plus the provider registry.
type AppConfig struct {
	Harvest HarvestConfig           `json:"harvest" yaml:"harvest"`
	Store   StoreConfig             `json:"store" yaml:"store"`
	Graph   GraphConfig             `json:"graph" yaml:"graph"`
	Sources map[string]SourceConfig `json:"sources" yaml:"sources"`
}
