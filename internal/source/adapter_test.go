package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
)

var now = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func TestAdaptRow_NormalizesAndFilters(t *testing.T) {
	rec, err := AdaptRow(model.SourceSpreadsheet, map[string]any{
		"sku":         " fe-tb ",
		"name":        "Fender Tab",
		"price":       "89.50",
		"mystery_col": "ignored",
	}, sku.DefaultPolicy, now)
	require.NoError(t, err)

	assert.Equal(t, "FETB", rec.SKU)
	assert.Equal(t, model.SourceSpreadsheet, rec.Source)
	assert.Equal(t, "Fender Tab", rec.Fields["name"])
	assert.Equal(t, 89.5, rec.Fields["price"])
	assert.NotContains(t, rec.Fields, "mystery_col")
	assert.Equal(t, now, rec.RetrievedAt)
}

func TestAdaptRow_EmptyCellsDropped(t *testing.T) {
	rec, err := AdaptRow(model.SourceSpreadsheet, map[string]any{
		"sku":  "FETB",
		"name": "Fender Tab",
		"cost": "",
	}, sku.DefaultPolicy, now)
	require.NoError(t, err)

	assert.NotContains(t, rec.Fields, "cost")
}

func TestAdaptRow_NonNumericPriceFails(t *testing.T) {
	_, err := AdaptRow(model.SourceSpreadsheet, map[string]any{
		"sku":   "FETB",
		"price": "call us",
	}, sku.DefaultPolicy, now)

	assert.Error(t, err)
}

func TestAdaptRow_SpecificationsKeepNesting(t *testing.T) {
	rec, err := AdaptRow(model.SourceCatalogue, map[string]any{
		"sku":            "FETB",
		"specifications": map[string]any{"material": "steel"},
	}, sku.DefaultPolicy, now)
	require.NoError(t, err)

	specs, ok := rec.Fields["specifications"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "steel", specs["material"])
}

func TestAdaptRows_PerRowContainment(t *testing.T) {
	rows := []map[string]any{
		{"sku": "GOOD1", "name": "First"},
		{"sku": "", "name": "no sku"},             // skipped, not an error
		{"sku": "BAD1", "price": "two fifty"},     // malformed
		{"sku": "GOOD2", "name": "Second", "stock_quantity": 7},
	}

	res := AdaptRows(model.SourceSpreadsheet, rows, sku.DefaultPolicy, now)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "GOOD1", res.Records[0].SKU)
	assert.Equal(t, "GOOD2", res.Records[1].SKU)
	assert.Equal(t, 7.0, res.Records[1].Fields["stock_quantity"])
	assert.Equal(t, 1, res.Skipped)

	require.Len(t, res.Errors, 1)
	var malformed *MalformedRowError
	require.ErrorAs(t, res.Errors[0], &malformed)
	assert.Equal(t, 2, malformed.Row)
	assert.Equal(t, model.SourceSpreadsheet, malformed.Source)
}

func TestAdaptRows_Empty(t *testing.T) {
	res := AdaptRows(model.SourceSpreadsheet, nil, sku.DefaultPolicy, now)

	assert.Empty(t, res.Records)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Errors)
}
