package consolidate

import "github.com/ridebase/catalog-cli/internal/model"

// Recommendation thresholds. Fixed, documented constants; not tunable per call.
const (
	highConfidenceThreshold   = 0.8
	mediumConfidenceThreshold = 0.6
)

// knownSourceTypes is the total number of source systems the diversity score
// is measured against.
const knownSourceTypes = 3

// CompletenessScore measures weighted field coverage of the resolved output.
// Required fields (name, price, description, and the SKU itself) weigh 2,
// optional fields weigh 1. An empty resolution scores 0.0: a bare SKU with no
// data is not a product record.
func CompletenessScore(fields map[string]any) float64 {
	if len(fields) == 0 {
		return 0.0
	}

	present := model.SKUWeight
	for _, spec := range model.Schema() {
		if v, ok := fields[spec.Key]; ok && !model.IsEmptyValue(v) {
			present += spec.Weight()
		}
	}
	return clamp01(present / model.TotalFieldWeight())
}

// ConfidenceScore blends source diversity (how many of the three source
// systems contributed data) with conflict cleanliness (what share of resolved
// fields were conflict-free), each weighing half.
func ConfidenceScore(sourcesWithData, conflicts, resolvedFields int) float64 {
	diversity := clamp01(float64(sourcesWithData) / knownSourceTypes)

	cleanliness := 0.0
	if resolvedFields > 0 {
		cleanliness = clamp01(1.0 - float64(conflicts)/float64(resolvedFields))
	}

	return clamp01((diversity + cleanliness) / 2)
}

// RecommendationFor maps a confidence score to its tier.
func RecommendationFor(confidence float64) model.Recommendation {
	switch {
	case confidence >= highConfidenceThreshold:
		return model.RecommendationHigh
	case confidence >= mediumConfidenceThreshold:
		return model.RecommendationMedium
	default:
		return model.RecommendationLow
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
