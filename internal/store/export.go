// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the records of the last `days` days as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, days, limit int) error {
	records, err := s.RecentSince(ctx, days, limit)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the records of the last `days` days as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, days, limit int) error {
	records, err := s.RecentSince(ctx, days, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
