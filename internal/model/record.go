// Package model defines the domain types shared across the consolidation
// pipeline: sources, the canonical field schema, and the records that flow
// between adapters, resolver, and review.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Source identifies one of the product data sources.
type Source string

const (
	// SourceCatalogue is the manufacturer catalogue extraction directory.
	SourceCatalogue Source = "catalogue"
	// SourceSpreadsheet is the imported supplier price sheet data.
	SourceSpreadsheet Source = "spreadsheet"
	// SourceDatabase is the legacy store database.
	SourceDatabase Source = "database"
)

// AllSources returns every known source in canonical order. The order is
// load-bearing: lookups and sources_checked follow it so output stays
// deterministic.
func AllSources() []Source {
	return []Source{SourceCatalogue, SourceSpreadsheet, SourceDatabase}
}

// ParseSource converts a user-supplied string to a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceCatalogue, SourceSpreadsheet, SourceDatabase:
		return Source(s), nil
	}
	return "", eris.Errorf("model: unknown source %q", s)
}

// SourceRecord is one source's raw answer for one SKU, already normalized to
// canonical field keys by the source adapter.
type SourceRecord struct {
	SKU         string         `json:"sku"`
	Source      Source         `json:"source"`
	Fields      map[string]any `json:"fields"`
	RetrievedAt time.Time      `json:"retrieved_at"`
}

// FieldConflict records that more than one source supplied a materially
// different value for a field, and which value won.
type FieldConflict struct {
	Field        string         `json:"field"`
	ChosenSource Source         `json:"chosen_source"`
	ChosenValue  any            `json:"chosen_value"`
	Alternatives map[Source]any `json:"alternatives"`
}

// Recommendation classifies a consolidated record by confidence.
type Recommendation string

const (
	RecommendationHigh   Recommendation = "HIGH_CONFIDENCE"
	RecommendationMedium Recommendation = "MEDIUM_CONFIDENCE"
	RecommendationLow    Recommendation = "LOW_CONFIDENCE"
)

// ConsolidatedRecord is the pipeline's output for one SKU: the resolved
// fields plus full provenance. Once built it is never mutated; a
// re-consolidation produces a new record.
type ConsolidatedRecord struct {
	SKU               string          `json:"sku"`
	Fields            map[string]any  `json:"fields"`
	SourcesChecked    []Source        `json:"sources_checked"`
	Conflicts         []FieldConflict `json:"conflicts"`
	CompletenessScore float64         `json:"completeness_score"`
	ConfidenceScore   float64         `json:"confidence_score"`
	Recommendation    Recommendation  `json:"recommendation"`
	ConsolidatedAt    time.Time       `json:"consolidated_at"`
}

// CheckedSource reports whether src responded during consolidation.
func (r *ConsolidatedRecord) CheckedSource(src Source) bool {
	for _, s := range r.SourcesChecked {
		if s == src {
			return true
		}
	}
	return false
}
