package service

import (
	"path"
	"sort"
	"strings"

	"github.com/docsentry/docsentry/internal/domain"
)

// ChangedFile is one file touched by a change set.
type ChangedFile struct {
	Path      string
	Status    string
	Additions int
	Deletions int
	Patch     string
}

// Candidate is a knowledge base entry selected for drift analysis, with the
// score and the tiers that matched it.
type Candidate struct {
	Entry   *domain.FileClassification
	Score   float64
	Reasons []string
}

// Tier weights. Sensitivity dominates; the semantic tier can promote an
// entry the static tiers missed but cannot outrank a direct path match.
const (
	tagOverlapWeight = 1.5
	pathMatchWeight  = 2.0
	stalenessWeight  = 0.5
	semanticWeight   = 3.0
)

// Path segments too generic to indicate a doc/code relationship.
var genericSegments = map[string]bool{
	"src": true, "lib": true, "pkg": true, "cmd": true, "internal": true,
	"docs": true, "doc": true, "test": true, "tests": true, "main": true,
	"index": true, "readme": true,
}

// SelectCandidates applies the tiered selection heuristic: each entry is
// scored against the change set across the sensitivity, tag-overlap, path,
// staleness, and (optional) semantic tiers, and the top entries up to the
// policy's candidate cap are returned, highest score first.
//
// semanticScores maps entry path to a 0..1 similarity against the change
// description; pass nil when embeddings are unavailable.
func SelectCandidates(snapshot *domain.Snapshot, changed []ChangedFile, policy domain.ScopePolicy, semanticScores map[string]float64) []Candidate {
	if snapshot == nil || len(snapshot.Entries) == 0 {
		return nil
	}

	changeTags := deriveChangeTags(changed)
	changeSegments := collectSegments(changed)

	var candidates []Candidate
	for _, entry := range snapshot.Entries {
		var score float64
		var reasons []string

		if entry.Sensitivity >= policy.MinSensitivity {
			score += float64(entry.Sensitivity)
			reasons = append(reasons, "sensitivity")
		}

		if overlap := tagOverlap(entry.Patterns, changeTags); overlap > 0 {
			score += float64(overlap) * tagOverlapWeight
			reasons = append(reasons, "tag-overlap")
		}

		if entryMatchesPath(entry, changeSegments) {
			score += pathMatchWeight
			reasons = append(reasons, "path-match")
		}

		if entry.StalenessRisk >= policy.MinStaleness {
			score += float64(entry.StalenessRisk) * stalenessWeight
			reasons = append(reasons, "staleness")
		}

		if policy.UseSemanticTier && semanticScores != nil {
			if sim, ok := semanticScores[entry.Path]; ok && sim > 0 {
				score += sim * semanticWeight
				reasons = append(reasons, "semantic")
			}
		}

		if len(reasons) == 0 {
			continue
		}

		candidates = append(candidates, Candidate{Entry: entry, Score: score, Reasons: reasons})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Entry.Path < candidates[j].Entry.Path
	})

	if policy.MaxCandidates > 0 && len(candidates) > policy.MaxCandidates {
		candidates = candidates[:policy.MaxCandidates]
	}
	return candidates
}

// deriveChangeTags turns changed file paths into technical-pattern tags
// comparable with classifier output: file extensions plus meaningful
// path segments.
func deriveChangeTags(changed []ChangedFile) map[string]bool {
	tags := make(map[string]bool)
	for _, f := range changed {
		if ext := strings.TrimPrefix(path.Ext(f.Path), "."); ext != "" {
			tags[strings.ToLower(ext)] = true
		}
		for _, seg := range pathSegments(f.Path) {
			tags[seg] = true
		}
	}
	return tags
}

func tagOverlap(patterns []string, changeTags map[string]bool) int {
	count := 0
	for _, p := range patterns {
		for _, token := range strings.FieldsFunc(strings.ToLower(p), func(r rune) bool {
			return r == '-' || r == '_' || r == ' ' || r == '/'
		}) {
			if changeTags[token] {
				count++
				break
			}
		}
	}
	return count
}

func collectSegments(changed []ChangedFile) map[string]bool {
	segments := make(map[string]bool)
	for _, f := range changed {
		for _, seg := range pathSegments(f.Path) {
			segments[seg] = true
		}
	}
	return segments
}

// entryMatchesPath reports whether the doc's own path or any of its key
// indicators shares a meaningful segment with the change set.
func entryMatchesPath(entry *domain.FileClassification, changeSegments map[string]bool) bool {
	for _, seg := range pathSegments(entry.Path) {
		if changeSegments[seg] {
			return true
		}
	}
	for _, indicator := range entry.KeyIndicators {
		for _, seg := range pathSegments(indicator) {
			if changeSegments[seg] {
				return true
			}
		}
	}
	return false
}

// pathSegments splits a path into lowercase segments, dropping extensions
// and segments too generic to signal a relationship.
func pathSegments(p string) []string {
	var segments []string
	for _, seg := range strings.Split(strings.ToLower(p), "/") {
		seg = strings.TrimSuffix(seg, path.Ext(seg))
		if seg == "" || genericSegments[seg] {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
