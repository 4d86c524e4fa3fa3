package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/llm"
)

// ChatCompleter is the single-exchange chat interface the pipelines need.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DocFile is one documentation file fetched for classification.
type DocFile struct {
	Path    string
	Content string
}

const (
	// DefaultBatchSize is how many files go into one classification call.
	DefaultBatchSize = 5
	// DefaultBatchDelay is the pause between classification calls.
	DefaultBatchDelay = 2 * time.Second

	// maxContentChars caps per-file content in the prompt to keep batches
	// inside the model's context window.
	maxContentChars = 8000
)

const classifierSystemPrompt = `You are a documentation analyst. For each documentation file you are given, assess how tightly it tracks the code it describes.

For every file, reply with a JSON object containing:
  "path": the file path, copied exactly from the input
  "sensitivity": 0-3, how code-coupled the document is (0 = independent of code, 3 = mirrors signatures, schemas, or wire formats)
  "staleness_risk": 1-3, how likely the document is to rot (1 = low, 3 = high)
  "patterns": short kebab-case tags for the technical patterns the document covers (e.g. "rest-api", "auth-flow", "database-schema")
  "category": one of api_reference, architecture, guide, runbook, changelog, readme, other
  "confidence": 0.0-1.0, your confidence in this assessment
  "key_indicators": code paths, endpoints, or identifiers the document references

Reply with a JSON array of these objects, one per input file, and nothing else.`

// classifiedFile is the classifier's wire format for one file verdict.
type classifiedFile struct {
	Path          string   `json:"path"`
	Sensitivity   int      `json:"sensitivity"`
	StalenessRisk int      `json:"staleness_risk"`
	Patterns      []string `json:"patterns"`
	Category      string   `json:"category"`
	Confidence    float64  `json:"confidence"`
	KeyIndicators []string `json:"key_indicators"`
}

// ClassifierService turns documentation files into knowledge base entries by
// sending them to a chat model in fixed-size batches.
type ClassifierService struct {
	chat       ChatCompleter
	batchSize  int
	batchDelay time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
}

// NewClassifierService creates a ClassifierService with the given batch
// shape. Zero values fall back to the defaults.
func NewClassifierService(chat ChatCompleter, batchSize int, batchDelay time.Duration) *ClassifierService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchDelay < 0 {
		batchDelay = DefaultBatchDelay
	}
	return &ClassifierService{
		chat:       chat,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// ClassifyFiles classifies every file and returns the entries that came back
// well-formed. A failed batch is logged and skipped; the remaining batches
// still run, so a transient model error costs one batch, not the run.
func (s *ClassifierService) ClassifyFiles(ctx context.Context, files []DocFile) []*domain.FileClassification {
	var entries []*domain.FileClassification

	for start := 0; start < len(files); start += s.batchSize {
		end := start + s.batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		if start > 0 && s.batchDelay > 0 {
			s.sleep(s.batchDelay)
		}

		batchEntries, err := s.classifyBatch(ctx, batch)
		if err != nil {
			log.Printf("WARN: classification batch %d-%d failed, skipping: %v", start, end-1, err)
			continue
		}
		entries = append(entries, batchEntries...)
	}

	return entries
}

func (s *ClassifierService) classifyBatch(ctx context.Context, batch []DocFile) ([]*domain.FileClassification, error) {
	reply, err := s.chat.Complete(ctx, classifierSystemPrompt, buildClassifierPrompt(batch))
	if err != nil {
		return nil, err
	}

	var verdicts []classifiedFile
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &verdicts); err != nil {
		return nil, fmt.Errorf("parsing classifier reply: %w", err)
	}

	byPath := make(map[string]classifiedFile, len(verdicts))
	for _, v := range verdicts {
		byPath[v.Path] = v
	}

	classifiedAt := s.now().UTC()
	var entries []*domain.FileClassification
	for _, f := range batch {
		v, ok := byPath[f.Path]
		if !ok {
			log.Printf("WARN: classifier reply missing %s, skipping", f.Path)
			continue
		}

		entry := &domain.FileClassification{
			Path:          f.Path,
			ContentSHA256: hashContent(f.Content),
			Sensitivity:   v.Sensitivity,
			StalenessRisk: v.StalenessRisk,
			Patterns:      v.Patterns,
			Category:      domain.NormalizeDocCategory(v.Category),
			Confidence:    v.Confidence,
			KeyIndicators: v.KeyIndicators,
			ClassifiedAt:  classifiedAt,
		}
		if err := domain.ValidateFileClassification(entry); err != nil {
			log.Printf("WARN: classifier verdict for %s invalid, skipping: %v", f.Path, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func buildClassifierPrompt(batch []DocFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify the following %d documentation files.\n", len(batch))
	for _, f := range batch {
		content := f.Content
		if len(content) > maxContentChars {
			content = truncateUTF8(content, maxContentChars) + "\n[truncated]"
		}
		fmt.Fprintf(&b, "\n--- FILE: %s ---\n%s\n", f.Path, content)
	}
	return b.String()
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
