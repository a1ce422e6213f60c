package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
)

// CatalogueSource reads product data previously extracted from PDF/scanned
// catalogues. The extraction collaborator drops one JSON file per processed
// catalogue into the document repository; lookups scan newest first so the
// most recent catalogue wins.
type CatalogueSource struct {
	dir    string
	policy sku.Policy
}

// NewCatalogue creates a catalogue source over the given document repository
// directory.
func NewCatalogue(dir string, policy sku.Policy) *CatalogueSource {
	return &CatalogueSource{dir: dir, policy: policy}
}

func (c *CatalogueSource) Source() model.Source { return model.SourceCatalogue }

// extractionFile is the on-disk shape produced by the catalogue extractor.
type extractionFile struct {
	ExtractedAt time.Time                 `json:"extracted_at"`
	Products    map[string]map[string]any `json:"products"`
}

// Get returns the newest catalogue record for the normalized SKU, or nil when
// no catalogue mentions it. A missing repository directory means no data, not
// an error; an unreadable one means the collaborator is unavailable.
func (c *CatalogueSource) Get(ctx context.Context, skuKey string) (*model.SourceRecord, error) {
	paths, err := c.extractionPaths()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &UnavailableError{Source: model.SourceCatalogue, Err: err}
		}

		var file extractionFile
		data, err := os.ReadFile(path)
		if err != nil {
			zap.L().Warn("catalogue: unreadable extraction file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		if err := json.Unmarshal(data, &file); err != nil {
			zap.L().Warn("catalogue: bad extraction file",
				zap.String("path", path), zap.Error(err))
			continue
		}

		for rawSKU, rawFields := range file.Products {
			normalized, err := c.policy.Normalize(rawSKU)
			if err != nil || normalized != skuKey {
				continue
			}
			row := make(map[string]any, len(rawFields)+1)
			for k, v := range rawFields {
				row[k] = v
			}
			row["sku"] = rawSKU

			rec, err := AdaptRow(model.SourceCatalogue, row, c.policy, statTime(path))
			if err != nil {
				zap.L().Warn("catalogue: malformed product entry",
					zap.String("path", path), zap.String("sku", rawSKU), zap.Error(err))
				continue
			}
			return rec, nil
		}
	}
	return nil, nil
}

// extractionPaths lists extraction files newest first.
func (c *CatalogueSource) extractionPaths() ([]string, error) {
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(c.dir, "extracted_*.json"))
	if err != nil {
		return nil, &UnavailableError{Source: model.SourceCatalogue, Err: eris.Wrap(err, "catalogue: glob repository")}
	}

	sort.Slice(paths, func(i, j int) bool {
		return statTime(paths[i]).After(statTime(paths[j]))
	})
	return paths, nil
}

func statTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
