package domain

import (
	"time"
)

// DocCategory labels the kind of documentation a file contains.
type DocCategory string

const (
	DocCategoryAPIReference DocCategory = "api_reference"
	DocCategoryArchitecture DocCategory = "architecture"
	DocCategoryGuide        DocCategory = "guide"
	DocCategoryRunbook      DocCategory = "runbook"
	DocCategoryChangelog    DocCategory = "changelog"
	DocCategoryReadme       DocCategory = "readme"
	DocCategoryOther        DocCategory = "other"
)

// Sensitivity levels describe how tightly a document tracks the code it
// covers. 0 means the document is independent of code; 3 means it mirrors
// code-level details (signatures, schemas, wire formats).
const (
	SensitivityNone   = 0
	SensitivityLow    = 1
	SensitivityMedium = 2
	SensitivityHigh   = 3
)

// Staleness risk levels. 1 is low, 3 is high.
const (
	StalenessLow    = 1
	StalenessMedium = 2
	StalenessHigh   = 3
)

// FileClassification is the classifier's verdict for a single documentation
// file. It mirrors one entry in the knowledge base snapshot.
type FileClassification struct {
	Path          string
	ContentSHA256 string
	Sensitivity   int
	StalenessRisk int
	Patterns      []string
	Category      DocCategory
	Confidence    float64
	KeyIndicators []string
	ClassifiedAt  time.Time
}

// NewFileClassification creates a FileClassification with the given verdict.
func NewFileClassification(path, sha256 string, sensitivity, staleness int, category DocCategory, confidence float64, classifiedAt time.Time) *FileClassification {
	return &FileClassification{
		Path:          path,
		ContentSHA256: sha256,
		Sensitivity:   sensitivity,
		StalenessRisk: staleness,
		Category:      category,
		Confidence:    confidence,
		ClassifiedAt:  classifiedAt,
	}
}

// ValidateFileClassification validates a FileClassification instance
func ValidateFileClassification(c *FileClassification) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "classification cannot be nil")
	}

	if c.Path == "" {
		return ErrMissingPath
	}

	if c.Sensitivity < SensitivityNone || c.Sensitivity > SensitivityHigh {
		return ErrInvalidSensitivity
	}

	if c.StalenessRisk < StalenessLow || c.StalenessRisk > StalenessHigh {
		return ErrInvalidStaleness
	}

	if c.Confidence < 0 || c.Confidence > 1 {
		return ErrInvalidConfidence
	}

	if !isValidDocCategory(c.Category) {
		return NewDomainError(ErrCodeValidation, "invalid document category: "+string(c.Category))
	}

	return nil
}

// NormalizeDocCategory maps a free-text category label from the classifier
// onto a known category, falling back to "other".
func NormalizeDocCategory(label string) DocCategory {
	c := DocCategory(label)
	if isValidDocCategory(c) {
		return c
	}
	return DocCategoryOther
}

func isValidDocCategory(c DocCategory) bool {
	switch c {
	case DocCategoryAPIReference, DocCategoryArchitecture, DocCategoryGuide,
		DocCategoryRunbook, DocCategoryChangelog, DocCategoryReadme, DocCategoryOther:
		return true
	}
	return false
}
