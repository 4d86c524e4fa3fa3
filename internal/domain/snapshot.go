package domain

import (
	"time"
)

// SnapshotStats holds aggregate statistics over a snapshot's entries.
type SnapshotStats struct {
	FileCount         int
	AvgSensitivity    float64
	AvgStalenessRisk  float64
	AvgConfidence     float64
	SensitivityCounts map[int]int
	StalenessCounts   map[int]int
	CategoryCounts    map[DocCategory]int
}

// Snapshot is the knowledge base for one repository: a wholesale-overwritten
// record of every classified documentation file plus aggregate statistics.
// There is no incremental update; each classification run replaces the
// previous snapshot entirely.
type Snapshot struct {
	ID          string
	Repository  string
	GeneratedAt time.Time
	Stats       SnapshotStats
	Entries     []*FileClassification
}

// NewSnapshot builds a Snapshot from classifications, computing stats.
// Entry order is preserved.
func NewSnapshot(id, repository string, generatedAt time.Time, entries []*FileClassification) *Snapshot {
	return &Snapshot{
		ID:          id,
		Repository:  repository,
		GeneratedAt: generatedAt,
		Stats:       ComputeStats(entries),
		Entries:     entries,
	}
}

// ComputeStats aggregates averages and level/category histograms over
// the given entries.
func ComputeStats(entries []*FileClassification) SnapshotStats {
	stats := SnapshotStats{
		FileCount:         len(entries),
		SensitivityCounts: make(map[int]int),
		StalenessCounts:   make(map[int]int),
		CategoryCounts:    make(map[DocCategory]int),
	}

	if len(entries) == 0 {
		return stats
	}

	var sensSum, staleSum int
	var confSum float64
	for _, e := range entries {
		sensSum += e.Sensitivity
		staleSum += e.StalenessRisk
		confSum += e.Confidence
		stats.SensitivityCounts[e.Sensitivity]++
		stats.StalenessCounts[e.StalenessRisk]++
		stats.CategoryCounts[e.Category]++
	}

	n := float64(len(entries))
	stats.AvgSensitivity = float64(sensSum) / n
	stats.AvgStalenessRisk = float64(staleSum) / n
	stats.AvgConfidence = confSum / n
	return stats
}

// ValidateSnapshot validates a Snapshot instance
func ValidateSnapshot(s *Snapshot) error {
	if s == nil {
		return NewDomainError(ErrCodeValidation, "snapshot cannot be nil")
	}

	if s.Repository == "" {
		return ErrMissingRepository
	}

	if len(s.Entries) == 0 {
		return ErrEmptySnapshot
	}

	for _, e := range s.Entries {
		if err := ValidateFileClassification(e); err != nil {
			return err
		}
	}

	return nil
}

// SimilarEntry is an entry ranked by embedding similarity against a query.
type SimilarEntry struct {
	Path  string
	Score float64
}

// FindEntry returns the entry with the given path, or nil.
func (s *Snapshot) FindEntry(path string) *FileClassification {
	for _, e := range s.Entries {
		if e.Path == path {
			return e
		}
	}
	return nil
}
