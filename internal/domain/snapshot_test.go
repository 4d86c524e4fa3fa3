package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []*FileClassification {
	now := time.Now().UTC()
	a := NewFileClassification("docs/api.md", "h1", SensitivityHigh, StalenessHigh, DocCategoryAPIReference, 0.9, now)
	b := NewFileClassification("docs/guide.md", "h2", SensitivityLow, StalenessLow, DocCategoryGuide, 0.7, now)
	c := NewFileClassification("README.md", "h3", SensitivityMedium, StalenessMedium, DocCategoryReadme, 0.8, now)
	return []*FileClassification{a, b, c}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleEntries())

	assert.Equal(t, 3, stats.FileCount)
	assert.InDelta(t, 2.0, stats.AvgSensitivity, 0.001)
	assert.InDelta(t, 2.0, stats.AvgStalenessRisk, 0.001)
	assert.InDelta(t, 0.8, stats.AvgConfidence, 0.001)
	assert.Equal(t, 1, stats.SensitivityCounts[SensitivityHigh])
	assert.Equal(t, 1, stats.StalenessCounts[StalenessLow])
	assert.Equal(t, 1, stats.CategoryCounts[DocCategoryReadme])
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.FileCount)
	assert.Zero(t, stats.AvgSensitivity)
	assert.NotNil(t, stats.SensitivityCounts)
	assert.Empty(t, stats.CategoryCounts)
}

func TestNewSnapshot(t *testing.T) {
	now := time.Now().UTC()
	entries := sampleEntries()

	snap := NewSnapshot("s1", "acme/widgets", now, entries)

	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, "acme/widgets", snap.Repository)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 3, snap.Stats.FileCount)
	assert.Len(t, snap.Entries, 3)
}

func TestValidateSnapshot(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Valid", func(t *testing.T) {
		snap := NewSnapshot("s1", "acme/widgets", now, sampleEntries())
		assert.NoError(t, ValidateSnapshot(snap))
	})

	t.Run("MissingRepository", func(t *testing.T) {
		snap := NewSnapshot("s1", "", now, sampleEntries())
		assert.Equal(t, ErrMissingRepository, ValidateSnapshot(snap))
	})

	t.Run("NoEntries", func(t *testing.T) {
		snap := NewSnapshot("s1", "acme/widgets", now, nil)
		assert.Equal(t, ErrEmptySnapshot, ValidateSnapshot(snap))
	})

	t.Run("InvalidEntry", func(t *testing.T) {
		entries := sampleEntries()
		entries[1].Sensitivity = 9
		snap := NewSnapshot("s1", "acme/widgets", now, entries)
		assert.Equal(t, ErrInvalidSensitivity, ValidateSnapshot(snap))
	})
}

func TestFindEntry(t *testing.T) {
	snap := NewSnapshot("s1", "acme/widgets", time.Now().UTC(), sampleEntries())

	entry := snap.FindEntry("docs/guide.md")
	require.NotNil(t, entry)
	assert.Equal(t, DocCategoryGuide, entry.Category)

	assert.Nil(t, snap.FindEntry("docs/missing.md"))
}
