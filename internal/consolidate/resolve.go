package consolidate

import (
	"fmt"
	"math"

	"github.com/ridebase/catalog-cli/internal/model"
)

// priceTolerance is the numeric equality tolerance. Prices that differ by
// less than a cent are the same price, not a conflict.
const priceTolerance = 0.01

// Resolution is the outcome of merging all same-SKU source records.
type Resolution struct {
	Fields    map[string]any        `json:"fields"`
	Conflicts []model.FieldConflict `json:"conflicts"`
}

// Resolve merges the given source records into one resolved field map,
// recording a conflict wherever two or more sources disagree. Pure function
// of the record set and the static priority table: input order never matters
// because fields are walked in schema order and winners are picked by source
// priority.
func Resolve(records []model.SourceRecord) Resolution {
	bySource := make(map[model.Source]map[string]any, len(records))
	for _, rec := range records {
		bySource[rec.Source] = rec.Fields
	}

	res := Resolution{Fields: make(map[string]any)}

	for _, spec := range model.Schema() {
		supplied := make(map[model.Source]any)
		for src, fields := range bySource {
			if v, ok := fields[spec.Key]; ok && !model.IsEmptyValue(v) {
				supplied[src] = v
			}
		}
		if len(supplied) == 0 {
			continue // absent everywhere: field stays out of the output
		}

		winner := winningSource(spec, supplied)
		res.Fields[spec.Key] = supplied[winner]

		if countDistinct(spec, supplied) < 2 {
			continue // all sources agree: no conflict entry
		}

		alternatives := make(map[model.Source]any, len(supplied)-1)
		for src, v := range supplied {
			if src != winner {
				alternatives[src] = v
			}
		}
		res.Conflicts = append(res.Conflicts, model.FieldConflict{
			Field:        spec.Key,
			ChosenSource: winner,
			ChosenValue:  supplied[winner],
			Alternatives: alternatives,
		})
	}

	return res
}

// winningSource picks the highest-priority source among those that supplied
// the field.
func winningSource(spec model.FieldSpec, supplied map[model.Source]any) model.Source {
	for _, src := range spec.Priority {
		if _, ok := supplied[src]; ok {
			return src
		}
	}
	// Unreachable while Priority covers all sources; fall back deterministically.
	for _, src := range model.AllSources() {
		if _, ok := supplied[src]; ok {
			return src
		}
	}
	return ""
}

// countDistinct counts distinct values among suppliers under the field's
// equality rule.
func countDistinct(spec model.FieldSpec, supplied map[model.Source]any) int {
	var distinct []any
	for _, src := range model.AllSources() {
		v, ok := supplied[src]
		if !ok {
			continue
		}
		seen := false
		for _, d := range distinct {
			if valuesEqual(spec, d, v) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, v)
		}
	}
	return len(distinct)
}

// valuesEqual compares two field values for conflict purposes: numeric fields
// within tolerance, strings after whitespace/case folding, specification maps
// entry by entry.
func valuesEqual(spec model.FieldSpec, a, b any) bool {
	if spec.Numeric {
		fa, okA := model.AsFloat(a)
		fb, okB := model.AsFloat(b)
		if okA && okB {
			return math.Abs(fa-fb) < priceTolerance
		}
	}

	ma, aIsMap := a.(map[string]any)
	mb, bIsMap := b.(map[string]any)
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || model.FoldString(fmt.Sprintf("%v", va)) != model.FoldString(fmt.Sprintf("%v", vb)) {
				return false
			}
		}
		return true
	}

	return model.FoldString(fmt.Sprintf("%v", a)) == model.FoldString(fmt.Sprintf("%v", b))
}
