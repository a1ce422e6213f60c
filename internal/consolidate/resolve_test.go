package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridebase/catalog-cli/internal/model"
)

func rec(src model.Source, fields map[string]any) model.SourceRecord {
	return model.SourceRecord{SKU: "FETB", Source: src, Fields: fields}
}

func TestResolve_EditorialFieldPrefersCatalogue(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceSpreadsheet, map[string]any{"name": "Fender Tab"}),
		rec(model.SourceCatalogue, map[string]any{"name": "Fender Tab Kit"}),
		rec(model.SourceDatabase, map[string]any{"name": "FENDER TAB"}),
	})

	assert.Equal(t, "Fender Tab Kit", res.Fields["name"])
}

func TestResolve_CommercialFieldPrefersSpreadsheet(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{"price": 99.0}),
		rec(model.SourceSpreadsheet, map[string]any{"price": 89.5}),
	})

	assert.Equal(t, 89.5, res.Fields["price"])
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "price", res.Conflicts[0].Field)
	assert.Equal(t, model.SourceSpreadsheet, res.Conflicts[0].ChosenSource)
	assert.Equal(t, 99.0, res.Conflicts[0].Alternatives[model.SourceCatalogue])
}

func TestResolve_ManufacturerPrefersDatabase(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{"manufacturer": "Acme Co"}),
		rec(model.SourceDatabase, map[string]any{"manufacturer": "ACME Industries"}),
	})

	assert.Equal(t, "ACME Industries", res.Fields["manufacturer"])
}

func TestResolve_LowerPriorityFillsGaps(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{"name": "Fender Tab"}),
		rec(model.SourceSpreadsheet, map[string]any{"price": 89.5, "stock_quantity": 12.0}),
	})

	assert.Equal(t, "Fender Tab", res.Fields["name"])
	assert.Equal(t, 89.5, res.Fields["price"])
	assert.Equal(t, 12.0, res.Fields["stock_quantity"])
	assert.Empty(t, res.Conflicts)
}

func TestResolve_EmptyValueNeverWins(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{"name": "  "}),
		rec(model.SourceDatabase, map[string]any{"name": "Fender Tab"}),
	})

	assert.Equal(t, "Fender Tab", res.Fields["name"])
	assert.Empty(t, res.Conflicts)
}

func TestResolve_AgreementIsNotAConflict(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{"name": "Fender Tab"}),
		rec(model.SourceDatabase, map[string]any{"name": " fender  tab "}),
	})

	// Same value after folding; still resolved, no conflict entry.
	assert.Equal(t, "Fender Tab", res.Fields["name"])
	assert.Empty(t, res.Conflicts)
}

func TestResolve_PriceWithinToleranceAgrees(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceSpreadsheet, map[string]any{"price": 89.504}),
		rec(model.SourceDatabase, map[string]any{"price": 89.5}),
	})

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 89.504, res.Fields["price"])
}

func TestResolve_PriceBeyondToleranceConflicts(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceSpreadsheet, map[string]any{"price": 89.55}),
		rec(model.SourceDatabase, map[string]any{"price": 89.5}),
	})

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, 89.55, res.Fields["price"])
}

func TestResolve_SpecificationsComparedEntrywise(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{
			"specifications": map[string]any{"material": "Steel", "weight": "2kg"},
		}),
		rec(model.SourceDatabase, map[string]any{
			"specifications": map[string]any{"material": "steel", "weight": "2KG"},
		}),
	})

	assert.Empty(t, res.Conflicts)
}

func TestResolve_SpecificationsMismatchConflicts(t *testing.T) {
	res := Resolve([]model.SourceRecord{
		rec(model.SourceCatalogue, map[string]any{
			"specifications": map[string]any{"material": "Steel"},
		}),
		rec(model.SourceDatabase, map[string]any{
			"specifications": map[string]any{"material": "Aluminium"},
		}),
	})

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.SourceCatalogue, res.Conflicts[0].ChosenSource)
}

func TestResolve_InputOrderNeverMatters(t *testing.T) {
	a := rec(model.SourceCatalogue, map[string]any{"name": "Fender Tab Kit", "price": 99.0})
	b := rec(model.SourceSpreadsheet, map[string]any{"name": "Fender Tab", "price": 89.5})
	c := rec(model.SourceDatabase, map[string]any{"name": "FT Kit", "manufacturer": "Acme"})

	forward := Resolve([]model.SourceRecord{a, b, c})
	reversed := Resolve([]model.SourceRecord{c, b, a})

	assert.Equal(t, forward.Fields, reversed.Fields)
	assert.Equal(t, forward.Conflicts, reversed.Conflicts)
}

func TestResolve_NoRecords(t *testing.T) {
	res := Resolve(nil)

	assert.Empty(t, res.Fields)
	assert.Empty(t, res.Conflicts)
}
