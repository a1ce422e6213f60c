package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridebase/catalog-cli/internal/model"
)

func TestCompletenessScore_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CompletenessScore(nil))
	assert.Equal(t, 0.0, CompletenessScore(map[string]any{}))
}

func TestCompletenessScore_AllFields(t *testing.T) {
	fields := map[string]any{
		"name":           "Fender Tab",
		"description":    "A tab for fenders",
		"price":          89.5,
		"cost":           40.0,
		"stock_quantity": 12.0,
		"manufacturer":   "Acme",
		"specifications": map[string]any{"material": "steel"},
		"category":       "Body Parts",
	}
	assert.Equal(t, 1.0, CompletenessScore(fields))
}

func TestCompletenessScore_RequiredWeighsDouble(t *testing.T) {
	// sku(2) + name(2) = 4 of 13
	assert.InDelta(t, 4.0/13.0, CompletenessScore(map[string]any{"name": "Fender Tab"}), 0.001)
	// sku(2) + category(1) = 3 of 13
	assert.InDelta(t, 3.0/13.0, CompletenessScore(map[string]any{"category": "Body Parts"}), 0.001)
}

func TestCompletenessScore_EmptyValuesDoNotCount(t *testing.T) {
	fields := map[string]any{
		"name":     "Fender Tab",
		"category": "   ",
	}
	// sku(2) + name(2) = 4 of 13; blank category adds nothing
	assert.InDelta(t, 4.0/13.0, CompletenessScore(fields), 0.001)
}

func TestConfidenceScore_ThreeCleanSources(t *testing.T) {
	// diversity 3/3 = 1.0, cleanliness 1.0 → 1.0
	assert.Equal(t, 1.0, ConfidenceScore(3, 0, 8))
}

func TestConfidenceScore_SingleSource(t *testing.T) {
	// diversity 1/3, cleanliness 1.0 → (0.333+1)/2 = 0.667
	assert.InDelta(t, 0.667, ConfidenceScore(1, 0, 5), 0.001)
}

func TestConfidenceScore_ConflictsDragItDown(t *testing.T) {
	// diversity 1.0, cleanliness 1 - 2/8 = 0.75 → 0.875
	assert.InDelta(t, 0.875, ConfidenceScore(3, 2, 8), 0.001)
}

func TestConfidenceScore_NoResolvedFields(t *testing.T) {
	// cleanliness contributes nothing without resolved fields
	assert.InDelta(t, 0.5, ConfidenceScore(3, 0, 0), 0.001)
}

func TestConfidenceScore_Bounds(t *testing.T) {
	assert.GreaterOrEqual(t, ConfidenceScore(0, 10, 1), 0.0)
	assert.LessOrEqual(t, ConfidenceScore(5, 0, 10), 1.0)
}

func TestRecommendationFor_Tiers(t *testing.T) {
	assert.Equal(t, model.RecommendationHigh, RecommendationFor(1.0))
	assert.Equal(t, model.RecommendationHigh, RecommendationFor(0.8))
	assert.Equal(t, model.RecommendationMedium, RecommendationFor(0.79))
	assert.Equal(t, model.RecommendationMedium, RecommendationFor(0.6))
	assert.Equal(t, model.RecommendationLow, RecommendationFor(0.59))
	assert.Equal(t, model.RecommendationLow, RecommendationFor(0.0))
}
