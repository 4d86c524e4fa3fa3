package domain

import (
	"time"
)

// DriftSeverity ranks how badly a document has diverged from the code.
type DriftSeverity string

const (
	DriftSeverityLow      DriftSeverity = "low"
	DriftSeverityMedium   DriftSeverity = "medium"
	DriftSeverityHigh     DriftSeverity = "high"
	DriftSeverityCritical DriftSeverity = "critical"
)

// DriftFinding is the analyzer's verdict for one candidate document.
type DriftFinding struct {
	Path        string
	Severity    DriftSeverity
	Summary     string
	Sections    []string
	Confidence  float64
	Recommended string
}

// DriftReport is the result of one drift analysis run over a change set.
type DriftReport struct {
	Repository  string
	PullNumber  int
	Scope       AnalysisScope
	Candidates  int
	Findings    []DriftFinding
	AnalyzedAt  time.Time
	Description string
}

// HasDrift reports whether any finding was produced.
func (r *DriftReport) HasDrift() bool {
	return len(r.Findings) > 0
}

// MaxSeverity returns the highest severity across findings, or "" when
// the report is clean.
func (r *DriftReport) MaxSeverity() DriftSeverity {
	rank := map[DriftSeverity]int{
		DriftSeverityLow:      1,
		DriftSeverityMedium:   2,
		DriftSeverityHigh:     3,
		DriftSeverityCritical: 4,
	}
	var max DriftSeverity
	for _, f := range r.Findings {
		if rank[f.Severity] > rank[max] {
			max = f.Severity
		}
	}
	return max
}

// NormalizeDriftSeverity maps a free-text severity label onto a known
// severity, falling back to low.
func NormalizeDriftSeverity(label string) DriftSeverity {
	s := DriftSeverity(label)
	switch s {
	case DriftSeverityLow, DriftSeverityMedium, DriftSeverityHigh, DriftSeverityCritical:
		return s
	}
	return DriftSeverityLow
}

// DriftRun records a completed drift analysis for audit.
type DriftRun struct {
	ID           string
	Repository   string
	PullNumber   int
	Scope        AnalysisScope
	Candidates   int
	FindingCount int
	MaxSeverity  DriftSeverity
	CreatedAt    time.Time
}
