package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
)

// AdaptResult is the outcome of reshaping one source's raw rows. Rows with no
// usable SKU are dropped and counted; rows that cannot be mapped produce a
// MalformedRowError but never abort the rest of the batch.
type AdaptResult struct {
	Records []model.SourceRecord
	Skipped int
	Errors  []error
}

// AdaptRows converts already-column-mapped raw rows into SourceRecords, one
// per row with a resolvable SKU. Unknown columns are dropped here, at the
// boundary, so they never leak into the pipeline.
func AdaptRows(src model.Source, rows []map[string]any, policy sku.Policy, retrievedAt time.Time) AdaptResult {
	var res AdaptResult

	for i, row := range rows {
		rec, err := AdaptRow(src, row, policy, retrievedAt)
		if err != nil {
			var invalid *sku.InvalidSKUError
			if errors.As(err, &invalid) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, &MalformedRowError{Source: src, Row: i, Err: err})
			continue
		}
		res.Records = append(res.Records, *rec)
	}

	if res.Skipped > 0 || len(res.Errors) > 0 {
		zap.L().Debug("adapter: rows dropped",
			zap.String("source", string(src)),
			zap.Int("skipped_no_sku", res.Skipped),
			zap.Int("malformed", len(res.Errors)),
		)
	}
	return res
}

// AdaptRow converts a single raw row. The row must carry a "sku" column;
// schema fields are coerced to their canonical value kind and everything else
// is discarded.
func AdaptRow(src model.Source, row map[string]any, policy sku.Policy, retrievedAt time.Time) (*model.SourceRecord, error) {
	rawSKU, _ := row["sku"].(string)
	normalized, err := policy.Normalize(rawSKU)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	for key, value := range row {
		spec := model.SpecFor(key)
		if spec == nil || model.IsEmptyValue(value) {
			continue
		}
		coerced, err := coerceValue(spec, value)
		if err != nil {
			return nil, eris.Wrapf(err, "field %s", key)
		}
		fields[key] = coerced
	}

	return &model.SourceRecord{
		SKU:         normalized,
		Source:      src,
		Fields:      fields,
		RetrievedAt: retrievedAt,
	}, nil
}

// coerceValue converts a raw cell to the canonical value kind for its field.
func coerceValue(spec *model.FieldSpec, value any) (any, error) {
	if spec.Numeric {
		f, ok := model.AsFloat(value)
		if !ok {
			return nil, eris.Errorf("not numeric: %v", value)
		}
		return f, nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]any:
		if spec.Key != model.FieldSpecifications {
			return nil, eris.Errorf("unexpected nested value for %s", spec.Key)
		}
		return v, nil
	case map[string]string:
		if spec.Key != model.FieldSpecifications {
			return nil, eris.Errorf("unexpected nested value for %s", spec.Key)
		}
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, nil
	case float64, float32, int, int32, int64, bool:
		return fmt.Sprintf("%v", v), nil
	}
	return nil, eris.Errorf("unsupported value type %T", value)
}
