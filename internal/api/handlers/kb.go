package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/docsentry/docsentry/internal/api"
	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/kb"
)

type KnowledgeBaseService interface {
	ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error)
	GetLatest(ctx context.Context, repository string) (*domain.Snapshot, error)
	Search(ctx context.Context, repository, query string, limit int) ([]domain.SimilarEntry, error)
	RecordDriftRun(ctx context.Context, report *domain.DriftReport) (*domain.DriftRun, error)
	ListDriftRuns(ctx context.Context, repository string, limit int) ([]*domain.DriftRun, error)
}

type KBHandler struct {
	svc KnowledgeBaseService
}

func NewKBHandler(svc KnowledgeBaseService) *KBHandler {
	return &KBHandler{svc: svc}
}

type SnapshotStatsResponse struct {
	Repository       string  `json:"repository"`
	GeneratedAt      string  `json:"generated_at"`
	FileCount        int     `json:"file_count"`
	AvgSensitivity   float64 `json:"avg_sensitivity"`
	AvgStalenessRisk float64 `json:"avg_staleness_risk"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

type SearchRequest struct {
	Repository string `json:"repository"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
}

type SearchHitResponse struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

type DriftFindingRequest struct {
	Path     string `json:"path"`
	Severity string `json:"severity"`
}

type RecordDriftRunRequest struct {
	Repository string                `json:"repository"`
	PullNumber int                   `json:"pull_number"`
	Scope      string                `json:"scope"`
	Candidates int                   `json:"candidates"`
	Findings   []DriftFindingRequest `json:"findings"`
}

type DriftRunResponse struct {
	ID           string `json:"id"`
	Repository   string `json:"repository"`
	PullNumber   int    `json:"pull_number"`
	Scope        string `json:"scope"`
	Candidates   int    `json:"candidates"`
	FindingCount int    `json:"finding_count"`
	MaxSeverity  string `json:"max_severity,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func driftRunToResponse(run *domain.DriftRun) *DriftRunResponse {
	return &DriftRunResponse{
		ID:           run.ID,
		Repository:   run.Repository,
		PullNumber:   run.PullNumber,
		Scope:        string(run.Scope),
		Candidates:   run.Candidates,
		FindingCount: run.FindingCount,
		MaxSeverity:  string(run.MaxSeverity),
		CreatedAt:    run.CreatedAt.Format(time.RFC3339),
	}
}

// ReplaceSnapshot accepts a knowledge base artifact and stores it as the
// repository's snapshot, replacing any previous one.
func (h *KBHandler) ReplaceSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	snap, err := kb.Unmarshal(body)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			api.HandleError(w, err)
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid knowledge base artifact")
		return
	}

	stored, err := h.svc.ReplaceSnapshot(r.Context(), snap)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, statsToResponse(stored))
}

// GetSnapshot returns the repository's snapshot as a knowledge base
// artifact.
func (h *KBHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	repository := r.URL.Query().Get("repository")
	if repository == "" {
		api.Error(w, http.StatusBadRequest, "repository is required")
		return
	}

	snap, err := h.svc.GetLatest(r.Context(), repository)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	data, err := kb.Marshal(snap)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetStats returns the snapshot's aggregate statistics.
func (h *KBHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	repository := r.URL.Query().Get("repository")
	if repository == "" {
		api.Error(w, http.StatusBadRequest, "repository is required")
		return
	}

	snap, err := h.svc.GetLatest(r.Context(), repository)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, statsToResponse(snap))
}

// Search runs semantic search over the repository's entries.
func (h *KBHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hits, err := h.svc.Search(r.Context(), req.Repository, req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]SearchHitResponse, 0, len(hits))
	for _, hit := range hits {
		resp = append(resp, SearchHitResponse{Path: hit.Path, Score: hit.Score})
	}

	api.Success(w, http.StatusOK, resp)
}

// RecordDriftRun stores an audit record for a drift analysis run.
func (h *KBHandler) RecordDriftRun(w http.ResponseWriter, r *http.Request) {
	var req RecordDriftRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := domain.ParseAnalysisScope(req.Scope)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	report := &domain.DriftReport{
		Repository: req.Repository,
		PullNumber: req.PullNumber,
		Scope:      scope,
		Candidates: req.Candidates,
	}
	for _, f := range req.Findings {
		report.Findings = append(report.Findings, domain.DriftFinding{
			Path:     f.Path,
			Severity: domain.NormalizeDriftSeverity(f.Severity),
		})
	}

	run, err := h.svc.RecordDriftRun(r.Context(), report)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, driftRunToResponse(run))
}

// ListDriftRuns returns recent drift runs for a repository.
func (h *KBHandler) ListDriftRuns(w http.ResponseWriter, r *http.Request) {
	repository := r.URL.Query().Get("repository")
	if repository == "" {
		api.Error(w, http.StatusBadRequest, "repository is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.svc.ListDriftRuns(r.Context(), repository, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*DriftRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, driftRunToResponse(run))
	}

	api.Success(w, http.StatusOK, resp)
}

func statsToResponse(snap *domain.Snapshot) *SnapshotStatsResponse {
	return &SnapshotStatsResponse{
		Repository:       snap.Repository,
		GeneratedAt:      snap.GeneratedAt.Format(time.RFC3339),
		FileCount:        snap.Stats.FileCount,
		AvgSensitivity:   snap.Stats.AvgSensitivity,
		AvgStalenessRisk: snap.Stats.AvgStalenessRisk,
		AvgConfidence:    snap.Stats.AvgConfidence,
	}
}
