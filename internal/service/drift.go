package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/llm"
)

// maxPatchChars caps per-file diff text in the drift prompt.
const maxPatchChars = 3000

const driftSystemPrompt = `You are a documentation drift analyst. You are given a code change set and a list of documentation files that may describe the changed code. Decide which documents the change has made inaccurate.

Only report a document when the change plausibly contradicts what it says. For each drifted document, reply with a JSON object containing:
  "path": the document path, copied exactly from the input
  "severity": one of low, medium, high, critical
  "summary": one sentence describing what drifted
  "sections": the document sections or claims affected
  "confidence": 0.0-1.0
  "recommended": a one-sentence suggested fix

Reply with a JSON array of these objects and nothing else. Reply with [] when no document has drifted.`

// driftVerdict is the analyzer's wire format for one finding.
type driftVerdict struct {
	Path        string   `json:"path"`
	Severity    string   `json:"severity"`
	Summary     string   `json:"summary"`
	Sections    []string `json:"sections"`
	Confidence  float64  `json:"confidence"`
	Recommended string   `json:"recommended"`
}

// AnalyzeDriftInput carries everything one drift analysis run needs.
type AnalyzeDriftInput struct {
	Repository  string
	PullNumber  int
	Scope       domain.AnalysisScope
	Description string
	Snapshot    *domain.Snapshot
	Changed     []ChangedFile

	// SemanticScores maps entry path to similarity against the change
	// description. Nil disables the semantic tier.
	SemanticScores map[string]float64
}

// DriftService runs drift analysis: candidate selection followed by one chat
// call over the selected documents.
type DriftService struct {
	chat ChatCompleter
	now  func() time.Time
}

// NewDriftService creates a DriftService.
func NewDriftService(chat ChatCompleter) *DriftService {
	return &DriftService{chat: chat, now: time.Now}
}

// Analyze selects candidate documents for the change set and asks the model
// which of them the change invalidated. Model and parse failures degrade to
// an empty report with a warning; the caller always gets a usable report.
func (s *DriftService) Analyze(ctx context.Context, input AnalyzeDriftInput) *domain.DriftReport {
	policy := domain.PolicyForScope(input.Scope)
	candidates := SelectCandidates(input.Snapshot, input.Changed, policy, input.SemanticScores)

	report := &domain.DriftReport{
		Repository:  input.Repository,
		PullNumber:  input.PullNumber,
		Scope:       input.Scope,
		Candidates:  len(candidates),
		AnalyzedAt:  s.now().UTC(),
		Description: input.Description,
	}

	if len(candidates) == 0 {
		log.Printf("drift analysis %s#%d: no candidates under scope %s", input.Repository, input.PullNumber, input.Scope)
		return report
	}

	reply, err := s.chat.Complete(ctx, driftSystemPrompt, buildDriftPrompt(input, candidates))
	if err != nil {
		log.Printf("WARN: drift analysis %s#%d chat call failed, reporting no findings: %v", input.Repository, input.PullNumber, err)
		return report
	}

	var verdicts []driftVerdict
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &verdicts); err != nil {
		log.Printf("WARN: drift analysis %s#%d reply unparseable, reporting no findings: %v", input.Repository, input.PullNumber, err)
		return report
	}

	candidatePaths := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		candidatePaths[c.Entry.Path] = true
	}

	for _, v := range verdicts {
		if !candidatePaths[v.Path] {
			log.Printf("WARN: drift finding for non-candidate %s, dropping", v.Path)
			continue
		}
		confidence := v.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		report.Findings = append(report.Findings, domain.DriftFinding{
			Path:        v.Path,
			Severity:    domain.NormalizeDriftSeverity(v.Severity),
			Summary:     v.Summary,
			Sections:    v.Sections,
			Confidence:  confidence,
			Recommended: v.Recommended,
		})
	}

	log.Printf("drift analysis %s#%d: %d candidates, %d findings", input.Repository, input.PullNumber, len(candidates), len(report.Findings))
	return report
}

func buildDriftPrompt(input AnalyzeDriftInput, candidates []Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository: %s\n", input.Repository)
	if input.Description != "" {
		fmt.Fprintf(&b, "Change description: %s\n", input.Description)
	}

	b.WriteString("\n## Changed files\n")
	for _, f := range input.Changed {
		fmt.Fprintf(&b, "\n--- %s (%s, +%d/-%d) ---\n", f.Path, f.Status, f.Additions, f.Deletions)
		patch := f.Patch
		if len(patch) > maxPatchChars {
			patch = truncateUTF8(patch, maxPatchChars) + "\n[truncated]"
		}
		if patch != "" {
			b.WriteString(patch)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Candidate documents\n")
	for _, c := range candidates {
		e := c.Entry
		fmt.Fprintf(&b, "\n- %s (category %s, sensitivity %d, staleness %d, selected for: %s)\n",
			e.Path, e.Category, e.Sensitivity, e.StalenessRisk, strings.Join(c.Reasons, ", "))
		if len(e.Patterns) > 0 {
			fmt.Fprintf(&b, "  patterns: %s\n", strings.Join(e.Patterns, ", "))
		}
		if len(e.KeyIndicators) > 0 {
			fmt.Fprintf(&b, "  references: %s\n", strings.Join(e.KeyIndicators, ", "))
		}
	}

	return b.String()
}
