package consolidate

import (
	"fmt"

	"github.com/ridebase/catalog-cli/internal/model"
)

// NoDataFoundError reports that every requested source came back empty for a
// SKU. It is the consolidation result for that SKU, never a batch-level
// failure.
type NoDataFoundError struct {
	SKU            string
	SourcesChecked []model.Source
}

func (e *NoDataFoundError) Error() string {
	return fmt.Sprintf("consolidate: no data found for SKU %s (checked %d sources)", e.SKU, len(e.SourcesChecked))
}
