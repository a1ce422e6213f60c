// Package source defines the lookup contract the consolidation pipeline uses
// to query its three data collaborators, plus the adapters that reshape each
// collaborator's raw rows into canonical SourceRecords.
package source

import (
	"context"
	"fmt"

	"github.com/ridebase/catalog-cli/internal/model"
)

// Lookup is the read contract every source collaborator implements. Get
// returns nil (not an error) when the source has no record for the SKU.
type Lookup interface {
	Source() model.Source
	Get(ctx context.Context, sku string) (*model.SourceRecord, error)
}

// Lister is implemented by sources that can enumerate their known SKUs,
// used to discover batch candidates.
type Lister interface {
	ListSKUs(ctx context.Context, limit int) ([]string, error)
}

// UnavailableError reports a collaborator that failed to respond (timeout,
// connection failure). The orchestrator treats the source as not checked for
// that SKU and proceeds with the rest.
type UnavailableError struct {
	Source model.Source
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedRowError reports a single source row that could not be mapped to a
// SourceRecord. Attributed to source and row index; never aborts a batch.
type MalformedRowError struct {
	Source model.Source
	Row    int
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("source %s row %d malformed: %v", e.Source, e.Row, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }
