// Package store persists the pieces of pipeline state the CLI owns locally:
// price sheet imports, the consolidation audit trail, and the review queue.
package store

import (
	"context"

	"github.com/ridebase/catalog-cli/internal/model"
)

// ReviewFilter specifies criteria for listing review items.
type ReviewFilter struct {
	Status model.ReviewStatus `json:"status,omitempty"`
	Limit  int                `json:"limit,omitempty"`
}

// Store is the persistence interface for the consolidation CLI.
type Store interface {
	// Price sheet imports
	CreateImport(ctx context.Context, filename string) (*model.SheetImport, error)
	SaveSheetRecords(ctx context.Context, importID string, records []model.SourceRecord) error
	FinishImport(ctx context.Context, importID string, rows, skipped int) error
	LatestSheetRecord(ctx context.Context, sku string) (*model.SourceRecord, error)
	ListSheetSKUs(ctx context.Context, limit int) ([]string, error)

	// Consolidation audit trail
	SaveConsolidation(ctx context.Context, rec *model.ConsolidatedRecord) error
	LatestConsolidation(ctx context.Context, sku string) (*model.ConsolidatedRecord, error)

	// Review queue
	CreateReviewItem(ctx context.Context, item *model.ReviewItem) error
	GetReviewItem(ctx context.Context, id string) (*model.ReviewItem, error)
	GetReviewItemBySKU(ctx context.Context, sku string) (*model.ReviewItem, error)
	ListReviewItems(ctx context.Context, filter ReviewFilter) ([]model.ReviewItem, error)
	UpdateReviewItem(ctx context.Context, item *model.ReviewItem) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
