// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists harvested records in a local SQLite database.
// The store is the durable side of the pipeline: the knowledge graph is
// rebuilt from it on demand and never persisted itself.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

const (
	dbFile            = "articles.db"
	defaultMaxResults = 100
)

// Store manages the record database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the record database at dataDir/articles.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			summary TEXT,
			authors TEXT,
			topics TEXT,
			source TEXT,
			url TEXT,
			publication_date TEXT,
			doi TEXT,
			harvested_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
		`CREATE INDEX IF NOT EXISTS idx_records_date ON records(publication_date)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put upserts a record. The first harvested_at timestamp is preserved
// across re-harvests of the same record. A record without an id is
// rejected.
func (s *Store) Put(ctx context.Context, rec types.Record) error {
	if rec.ID == "" {
		return errors.New("record has no id")
	}

	authorsJSON, _ := json.Marshal(rec.Authors)
	topicsJSON, _ := json.Marshal(rec.Topics)

	dateStr := ""
	if !rec.Date.IsZero() {
		dateStr = rec.Date.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, title, abstract, summary, authors, topics, source, url, publication_date, doi, harvested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract,
			summary=excluded.summary, authors=excluded.authors,
			topics=excluded.topics, source=excluded.source,
			url=excluded.url, publication_date=excluded.publication_date,
			doi=excluded.doi`,
		rec.ID, rec.Title, rec.Abstract, rec.Summary,
		string(authorsJSON), string(topicsJSON),
		rec.Source, rec.URL, dateStr, rec.DOI,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting record %s: %w", rec.ID, err)
	}
	return nil
}

const recordColumns = `id, title, abstract, summary, authors, topics, source, url, publication_date, doi`

// Get looks a record up by id. The boolean reports whether it exists.
func (s *Store) Get(ctx context.Context, id string) (*types.Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying record %s: %w", id, err)
	}
	return rec, true, nil
}

// RecentSince returns records whose publication date (or, when unknown,
// harvest time) falls within the last `days` days, newest first, capped
// at limit. A non-positive limit uses the store default.
func (s *Store) RecentSince(ctx context.Context, days, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE COALESCE(NULLIF(publication_date, ''), harvested_at) >= ?
		 ORDER BY COALESCE(NULLIF(publication_date, ''), harvested_at) DESC, id
		 LIMIT ?`,
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// SourceSummary returns the number of stored records per source.
func (s *Store) SourceSummary(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, count(*) FROM records GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("querying source summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning source summary: %w", err)
		}
		summary[source] = n
	}
	return summary, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*types.Record, error) {
	var rec types.Record
	var authorsJSON, topicsJSON, dateStr string

	err := sc.Scan(&rec.ID, &rec.Title, &rec.Abstract, &rec.Summary,
		&authorsJSON, &topicsJSON, &rec.Source, &rec.URL, &dateStr, &rec.DOI)
	if err != nil {
		return nil, err
	}

	if authorsJSON != "" {
		json.Unmarshal([]byte(authorsJSON), &rec.Authors)
	}
	if topicsJSON != "" {
		json.Unmarshal([]byte(topicsJSON), &rec.Topics)
	}
	if dateStr != "" {
		if t, parseErr := time.Parse(time.RFC3339, dateStr); parseErr == nil {
			rec.Date = t
		}
	}
	return &rec, nil
}
