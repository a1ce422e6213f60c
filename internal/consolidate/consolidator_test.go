package consolidate

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/source"
)

// fakeLookup serves canned records per normalized SKU, or fails wholesale.
type fakeLookup struct {
	src     model.Source
	records map[string]map[string]any
	down    bool
	failSKU string
}

func (f *fakeLookup) Source() model.Source { return f.src }

func (f *fakeLookup) Get(ctx context.Context, key string) (*model.SourceRecord, error) {
	if f.down {
		return nil, &source.UnavailableError{Source: f.src, Err: eris.New("connection refused")}
	}
	if key == f.failSKU {
		return nil, eris.Errorf("lookup blew up for %s", key)
	}
	fields, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	return &model.SourceRecord{
		SKU:         key,
		Source:      f.src,
		Fields:      fields,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

func newTestConsolidator(lookups ...*fakeLookup) *Consolidator {
	ls := make([]source.Lookup, len(lookups))
	for i, l := range lookups {
		ls[i] = l
	}
	return New(ls)
}

func TestConsolidate_ThreeSourcesNoConflicts(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
			"FETB": {"name": "Fender Tab", "description": "Tab for fenders", "specifications": map[string]any{"material": "steel"}},
		}},
		&fakeLookup{src: model.SourceSpreadsheet, records: map[string]map[string]any{
			"FETB": {"price": 89.5, "stock_quantity": 12.0},
		}},
		&fakeLookup{src: model.SourceDatabase, records: map[string]map[string]any{
			"FETB": {"manufacturer": "Acme", "category": "Body Parts"},
		}},
	)

	rec, err := c.Consolidate(context.Background(), " fe-tb ", nil)
	require.NoError(t, err)

	assert.Equal(t, "FETB", rec.SKU)
	assert.Equal(t, "Fender Tab", rec.Fields["name"])
	assert.Equal(t, 89.5, rec.Fields["price"])
	assert.Equal(t, "Acme", rec.Fields["manufacturer"])
	assert.Equal(t, model.AllSources(), rec.SourcesChecked)
	assert.Empty(t, rec.Conflicts)
	// diversity 3/3, cleanliness 1.0
	assert.Equal(t, 1.0, rec.ConfidenceScore)
	assert.Equal(t, model.RecommendationHigh, rec.Recommendation)
	assert.False(t, rec.ConsolidatedAt.IsZero())
}

func TestConsolidate_SingleSourceIsMedium(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
			"FETB": {"name": "Fender Tab", "description": "Tab for fenders", "price": 89.5},
		}},
	)

	rec, err := c.Consolidate(context.Background(), "FETB", nil)
	require.NoError(t, err)

	// diversity 1/3, cleanliness 1.0 → 0.667
	assert.InDelta(t, 0.667, rec.ConfidenceScore, 0.001)
	assert.Equal(t, model.RecommendationMedium, rec.Recommendation)
}

func TestConsolidate_UnavailableSourceOmittedFromChecked(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
			"FETB": {"name": "Fender Tab"},
		}},
		&fakeLookup{src: model.SourceSpreadsheet, down: true},
	)

	rec, err := c.Consolidate(context.Background(), "FETB", nil)
	require.NoError(t, err)

	assert.Equal(t, []model.Source{model.SourceCatalogue}, rec.SourcesChecked)
	assert.False(t, rec.CheckedSource(model.SourceSpreadsheet))
}

func TestConsolidate_EmptySourceStillChecked(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
			"FETB": {"name": "Fender Tab"},
		}},
		&fakeLookup{src: model.SourceSpreadsheet}, // responds, has nothing
	)

	rec, err := c.Consolidate(context.Background(), "FETB", nil)
	require.NoError(t, err)

	// An empty answer is an answer: the source was checked.
	assert.Equal(t, []model.Source{model.SourceCatalogue, model.SourceSpreadsheet}, rec.SourcesChecked)
	// But diversity counts only sources that contributed data.
	assert.InDelta(t, 0.667, rec.ConfidenceScore, 0.001)
}

func TestConsolidate_NoDataAnywhere(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue},
		&fakeLookup{src: model.SourceDatabase},
	)

	_, err := c.Consolidate(context.Background(), "GHOST", nil)

	var noData *NoDataFoundError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, "GHOST", noData.SKU)
	assert.Equal(t, []model.Source{model.SourceCatalogue, model.SourceDatabase}, noData.SourcesChecked)
}

func TestConsolidate_InvalidSKU(t *testing.T) {
	c := newTestConsolidator(&fakeLookup{src: model.SourceCatalogue})

	_, err := c.Consolidate(context.Background(), "---", nil)
	assert.Error(t, err)
}

func TestConsolidate_SourceSubset(t *testing.T) {
	catalogue := &fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
		"FETB": {"name": "Fender Tab Kit"},
	}}
	database := &fakeLookup{src: model.SourceDatabase, records: map[string]map[string]any{
		"FETB": {"name": "FT Kit"},
	}}
	c := newTestConsolidator(catalogue, database)

	rec, err := c.Consolidate(context.Background(), "FETB", []model.Source{model.SourceDatabase})
	require.NoError(t, err)

	assert.Equal(t, "FT Kit", rec.Fields["name"])
	assert.Equal(t, []model.Source{model.SourceDatabase}, rec.SourcesChecked)
}

func TestConsolidateBatch_IsolatesFailures(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{
			src: model.SourceCatalogue,
			records: map[string]map[string]any{
				"GOOD1": {"name": "First", "description": "d", "price": 1.0},
				"GOOD2": {"name": "Second", "description": "d", "price": 2.0},
			},
			failSKU: "BAD",
		},
	)

	result := c.ConsolidateBatch(context.Background(), []string{"GOOD1", "BAD", "GOOD2"}, nil)

	assert.Equal(t, 3, result.Summary.Processed)
	assert.Equal(t, 2, result.Summary.Succeeded)
	assert.Equal(t, 1, result.Summary.Failed)

	require.NotNil(t, result.Items["GOOD1"].Record)
	require.NotNil(t, result.Items["GOOD2"].Record)
	assert.Error(t, result.Items["BAD"].Err)
	assert.Nil(t, result.Items["BAD"].Record)
}

func TestConsolidateBatch_SummaryTiers(t *testing.T) {
	c := newTestConsolidator(
		&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
			"FETB": {"name": "Fender Tab"},
		}},
		&fakeLookup{src: model.SourceSpreadsheet, records: map[string]map[string]any{
			"FETB": {"price": 89.5},
		}},
		&fakeLookup{src: model.SourceDatabase, records: map[string]map[string]any{
			"FETB": {"manufacturer": "Acme"},
		}},
	)

	result := c.ConsolidateBatch(context.Background(), []string{"FETB"}, nil)

	assert.Equal(t, 1, result.Summary.HighConfidence)
	assert.Equal(t, 0, result.Summary.NeedsReview)
}

func TestConsolidateBatch_Empty(t *testing.T) {
	c := newTestConsolidator(&fakeLookup{src: model.SourceCatalogue})

	result := c.ConsolidateBatch(context.Background(), nil, nil)

	assert.Equal(t, 0, result.Summary.Processed)
	assert.Empty(t, result.Items)
}

func TestConsolidateBatch_CancelledContextStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestConsolidator(&fakeLookup{src: model.SourceCatalogue, records: map[string]map[string]any{
		"FETB": {"name": "Fender Tab"},
	}})

	result := c.ConsolidateBatch(ctx, []string{"FETB", "FETB", "FETB"}, nil)

	assert.Zero(t, result.Summary.Succeeded)
}
