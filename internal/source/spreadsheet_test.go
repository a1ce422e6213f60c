package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/store"
)

func newSpreadsheetSource(t *testing.T) (*SpreadsheetSource, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return NewSpreadsheet(st), st
}

func TestSpreadsheetGet_ServesLatestImport(t *testing.T) {
	src, st := newSpreadsheetSource(t)
	ctx := context.Background()

	imp, err := st.CreateImport(ctx, "pricelist.xlsx")
	require.NoError(t, err)
	require.NoError(t, st.SaveSheetRecords(ctx, imp.ID, []model.SourceRecord{{
		SKU:         "FETB",
		Source:      model.SourceSpreadsheet,
		Fields:      map[string]any{"price": 89.5},
		RetrievedAt: time.Now().UTC(),
	}}))
	require.NoError(t, st.FinishImport(ctx, imp.ID, 1, 0))

	rec, err := src.Get(ctx, "FETB")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 89.5, rec.Fields["price"])
	assert.Equal(t, model.SourceSpreadsheet, rec.Source)
}

func TestSpreadsheetGet_NoImports(t *testing.T) {
	src, _ := newSpreadsheetSource(t)

	rec, err := src.Get(context.Background(), "FETB")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSpreadsheetGet_ClosedStoreIsUnavailable(t *testing.T) {
	src, st := newSpreadsheetSource(t)
	require.NoError(t, st.Close())

	_, err := src.Get(context.Background(), "FETB")

	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, model.SourceSpreadsheet, unavailable.Source)
}
