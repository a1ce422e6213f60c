package source

import (
	"context"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/store"
)

// SpreadsheetSource serves manually maintained price sheet data from the most
// recent finished import. Column mapping and cell cleaning happen at import
// time, so rows come back already in canonical field shape.
type SpreadsheetSource struct {
	store store.Store
}

// NewSpreadsheet creates a spreadsheet source over the import store.
func NewSpreadsheet(st store.Store) *SpreadsheetSource {
	return &SpreadsheetSource{store: st}
}

func (s *SpreadsheetSource) Source() model.Source { return model.SourceSpreadsheet }

// Get returns the latest imported sheet row for the SKU, or nil when no
// import mentions it.
func (s *SpreadsheetSource) Get(ctx context.Context, sku string) (*model.SourceRecord, error) {
	rec, err := s.store.LatestSheetRecord(ctx, sku)
	if err != nil {
		return nil, &UnavailableError{Source: model.SourceSpreadsheet, Err: err}
	}
	return rec, nil
}

// ListSKUs enumerates every SKU seen across imports.
func (s *SpreadsheetSource) ListSKUs(ctx context.Context, limit int) ([]string, error) {
	skus, err := s.store.ListSheetSKUs(ctx, limit)
	if err != nil {
		return nil, &UnavailableError{Source: model.SourceSpreadsheet, Err: err}
	}
	return skus, nil
}
