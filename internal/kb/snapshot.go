// Package kb defines the JSON artifact format for knowledge base snapshots.
// The artifact is the interchange form between the classification pipeline,
// the HTTP API, and object storage; each run overwrites it wholesale.
package kb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
)

// FormatVersion identifies the artifact schema. Bump on breaking changes.
const FormatVersion = 1

type document struct {
	Version     int       `json:"version"`
	Repository  string    `json:"repository"`
	GeneratedAt time.Time `json:"generated_at"`
	Stats       stats     `json:"stats"`
	Files       []entry   `json:"files"`
}

type stats struct {
	FileCount        int     `json:"file_count"`
	AvgSensitivity   float64 `json:"avg_sensitivity"`
	AvgStalenessRisk float64 `json:"avg_staleness_risk"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

type entry struct {
	Path          string    `json:"path"`
	ContentSHA256 string    `json:"content_sha256"`
	Sensitivity   int       `json:"sensitivity"`
	StalenessRisk int       `json:"staleness_risk"`
	Patterns      []string  `json:"patterns,omitempty"`
	Category      string    `json:"category"`
	Confidence    float64   `json:"confidence"`
	KeyIndicators []string  `json:"key_indicators,omitempty"`
	ClassifiedAt  time.Time `json:"classified_at"`
}

// Marshal renders a snapshot as the JSON artifact, indented for diffability
// in version control.
func Marshal(snap *domain.Snapshot) ([]byte, error) {
	if err := domain.ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	doc := document{
		Version:     FormatVersion,
		Repository:  snap.Repository,
		GeneratedAt: snap.GeneratedAt.UTC(),
		Stats: stats{
			FileCount:        snap.Stats.FileCount,
			AvgSensitivity:   snap.Stats.AvgSensitivity,
			AvgStalenessRisk: snap.Stats.AvgStalenessRisk,
			AvgConfidence:    snap.Stats.AvgConfidence,
		},
		Files: make([]entry, 0, len(snap.Entries)),
	}

	for _, e := range snap.Entries {
		doc.Files = append(doc.Files, entry{
			Path:          e.Path,
			ContentSHA256: e.ContentSHA256,
			Sensitivity:   e.Sensitivity,
			StalenessRisk: e.StalenessRisk,
			Patterns:      e.Patterns,
			Category:      string(e.Category),
			Confidence:    e.Confidence,
			KeyIndicators: e.KeyIndicators,
			ClassifiedAt:  e.ClassifiedAt.UTC(),
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses a JSON artifact back into a snapshot, recomputing stats
// from the entries rather than trusting the stored aggregates.
func Unmarshal(data []byte) (*domain.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing knowledge base artifact: %w", err)
	}

	if doc.Version != 0 && doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported knowledge base artifact version %d", doc.Version)
	}

	entries := make([]*domain.FileClassification, 0, len(doc.Files))
	for _, f := range doc.Files {
		entries = append(entries, &domain.FileClassification{
			Path:          f.Path,
			ContentSHA256: f.ContentSHA256,
			Sensitivity:   f.Sensitivity,
			StalenessRisk: f.StalenessRisk,
			Patterns:      f.Patterns,
			Category:      domain.NormalizeDocCategory(f.Category),
			Confidence:    f.Confidence,
			KeyIndicators: f.KeyIndicators,
			ClassifiedAt:  f.ClassifiedAt,
		})
	}

	snap := domain.NewSnapshot("", doc.Repository, doc.GeneratedAt, entries)
	if err := domain.ValidateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}
