// Package sheet parses supplier price sheets (xlsx) into canonical-keyed raw
// rows: column headers are mapped to the product field schema and cells are
// cleaned per kind before the source adapter takes over.
package sheet

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Options configures price sheet parsing.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SKUColumn  string // header name of the SKU column; empty = auto-detect
}

// ParseResult carries the canonical-keyed raw rows plus what was dropped.
type ParseResult struct {
	Rows      []map[string]any
	Columns   []string // original headers, in sheet order
	SKUColumn string   // header that was used as the SKU column
	Skipped   int      // data rows with no usable SKU cell
}

// headerSynonyms maps lowercased header names to canonical field keys.
// Supplier sheets are wildly inconsistent; this covers the formats seen so far.
var headerSynonyms = map[string]string{
	"sku": "sku", "article": "sku", "article code": "sku", "artikel": "sku",
	"code": "sku", "item": "sku", "item code": "sku", "part number": "sku",

	"name": "name", "product name": "name", "product": "name", "title": "name", "model": "name",

	"description": "description", "product description": "description", "short description": "description",

	"price": "price", "retail price": "price", "retail": "price", "msrp": "price",
	"list price": "price", "rrp": "price",

	"cost": "cost", "cost price": "cost", "wholesale": "cost", "wholesale price": "cost",
	"dealer price": "cost",

	"stock": "stock_quantity", "stock quantity": "stock_quantity", "qty": "stock_quantity",
	"quantity": "stock_quantity", "inventory": "stock_quantity", "available": "stock_quantity",

	"manufacturer": "manufacturer", "brand": "manufacturer", "supplier": "manufacturer", "make": "manufacturer",

	"category": "category", "product category": "category", "type": "category",
}

// Parse reads one worksheet and maps every data row into a canonical-keyed
// raw row. Unknown columns are ignored. Rows whose SKU cell is blank are
// counted as skipped, not errors.
func Parse(path string, opts Options) (*ParseResult, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open file")
	}

	ws, err := pickSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(ws.Rows) == 0 {
		return &ParseResult{}, nil
	}

	headers := rowToStrings(ws.Rows[0])
	mapping, skuCol := mapColumns(headers, opts.SKUColumn)
	if skuCol < 0 {
		skuCol = detectSKUColumn(ws.Rows[1:], headers)
		if skuCol < 0 {
			return nil, eris.Errorf("sheet: no SKU column found among %v", headers)
		}
		mapping[skuCol] = "sku"
	}

	res := &ParseResult{Columns: headers, SKUColumn: headers[skuCol]}

	for _, row := range ws.Rows[1:] {
		cells := rowToStrings(row)
		if skuCol >= len(cells) || strings.TrimSpace(cells[skuCol]) == "" {
			res.Skipped++
			continue
		}

		raw := make(map[string]any)
		for col, key := range mapping {
			if col >= len(cells) {
				continue
			}
			value := cleanCell(key, cells[col])
			if value != nil {
				raw[key] = value
			}
		}
		if len(raw) > 0 {
			res.Rows = append(res.Rows, raw)
		}
	}

	zap.L().Debug("sheet parsed",
		zap.String("path", path),
		zap.String("sku_column", res.SKUColumn),
		zap.Int("rows", len(res.Rows)),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func pickSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		ws, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("sheet: worksheet %q not found", opts.SheetName)
		}
		return ws, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("sheet: index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// mapColumns maps column indexes to canonical keys via header synonyms.
// Returns the SKU column index, or -1 when no header names it.
func mapColumns(headers []string, skuHeader string) (map[int]string, int) {
	mapping := make(map[int]string)
	skuCol := -1
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if skuHeader != "" && strings.EqualFold(h, skuHeader) {
			mapping[i] = "sku"
			skuCol = i
			continue
		}
		key, ok := headerSynonyms[name]
		if !ok {
			continue
		}
		if key == "sku" {
			if skuHeader != "" {
				continue // explicit column wins
			}
			skuCol = i
		}
		mapping[i] = key
	}
	return mapping, skuCol
}

// detectSKUColumn falls back to value-shape detection: the first column whose
// sampled values mostly look like article codes.
func detectSKUColumn(rows []*xlsx.Row, headers []string) int {
	sample := rows
	if len(sample) > 20 {
		sample = sample[:20]
	}

	for col := range headers {
		hits, total := 0, 0
		for _, row := range sample {
			cells := rowToStrings(row)
			if col >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[col])
			if v == "" {
				continue
			}
			total++
			if looksLikeSKU(v) {
				hits++
			}
		}
		if total > 0 && hits*10 >= total*8 { // ≥80% of sampled values
			return col
		}
	}
	return -1
}

// looksLikeSKU reports whether a cell value is shaped like an article code:
// short, no sentence-like spacing, letters and/or digits with separators.
func looksLikeSKU(v string) bool {
	if len(v) < 2 || len(v) > 24 || strings.Count(v, " ") > 1 {
		return false
	}
	hasAlnum := false
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			hasAlnum = true
		case r == '-' || r == '_' || r == '.' || r == '/' || r == ' ':
		default:
			return false
		}
	}
	return hasAlnum
}

// cleanCell normalizes one cell by field kind: prices lose currency noise,
// quantities become numbers, text gets trimmed. Returns nil for unusable
// cells so they stay out of the raw row.
func cleanCell(key, raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	switch key {
	case "price", "cost":
		return cleanPrice(s)
	case "stock_quantity":
		return cleanQuantity(s)
	default:
		return s
	}
}

// cleanPrice strips currency symbols and thousands separators. Returns the
// cleaned numeric string, or nil when nothing numeric remains — the adapter
// does the final numeric coercion.
func cleanPrice(s string) any {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		case r == ',':
			return -1 // thousands separator
		default:
			return -1
		}
	}, s)
	if cleaned == "" || cleaned == "." {
		return nil
	}
	return cleaned
}

func cleanQuantity(s string) any {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return nil
	}
	return cleaned
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
