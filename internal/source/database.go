package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
)

// DatabaseSource reads the store's product database. The schema is fragmented
// across products, product_pricing, and product_inventory tables; a lookup
// joins all three behind one Get so the pipeline never sees the split.
type DatabaseSource struct {
	db     *sql.DB
	policy sku.Policy
}

// NewDatabase opens the product database (SQLite) at the given DSN.
func NewDatabase(dsn string, policy sku.Policy) (*DatabaseSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "database: open")
	}
	return &DatabaseSource{db: db, policy: policy}, nil
}

func (d *DatabaseSource) Source() model.Source { return model.SourceDatabase }

func (d *DatabaseSource) Close() error { return d.db.Close() }

// normalizedSKUSQL normalizes a SKU column in SQL the same way sku.Normalize
// does in Go: uppercase with separators and spaces stripped. Keeping the two
// in agreement is what makes cross-source matching work against legacy rows.
func normalizedSKUSQL(col string) string {
	return `UPPER(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(` + col + `,
		'-', ''), '_', ''), '.', ''), '/', ''), ' ', ''), char(9), ''))`
}

// Get returns the merged product row for the normalized SKU, or nil when no
// table knows it. Query failures mean the collaborator is unavailable.
func (d *DatabaseSource) Get(ctx context.Context, skuKey string) (*model.SourceRecord, error) {
	row := make(map[string]any)
	found := false

	// products: editorial columns.
	var name, description, manufacturer, category, specsJSON sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT name, description, manufacturer, category, specifications
		 FROM products WHERE `+normalizedSKUSQL("sku")+` = ?`,
		skuKey,
	).Scan(&name, &description, &manufacturer, &category, &specsJSON)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "database: query products")}
	default:
		found = true
		putString(row, model.FieldName, name)
		putString(row, model.FieldDescription, description)
		putString(row, model.FieldManufacturer, manufacturer)
		putString(row, model.FieldCategory, category)
		if specsJSON.Valid && specsJSON.String != "" {
			specs := make(map[string]any)
			if err := json.Unmarshal([]byte(specsJSON.String), &specs); err == nil && len(specs) > 0 {
				row[model.FieldSpecifications] = specs
			}
		}
	}

	// product_pricing: price and cost.
	var price, cost sql.NullFloat64
	err = d.db.QueryRowContext(ctx,
		`SELECT price, cost FROM product_pricing WHERE `+normalizedSKUSQL("sku")+` = ?`,
		skuKey,
	).Scan(&price, &cost)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "database: query pricing")}
	default:
		found = true
		if price.Valid {
			row[model.FieldPrice] = price.Float64
		}
		if cost.Valid {
			row[model.FieldCost] = cost.Float64
		}
	}

	// product_inventory: stock.
	var stock sql.NullInt64
	err = d.db.QueryRowContext(ctx,
		`SELECT stock_quantity FROM product_inventory WHERE `+normalizedSKUSQL("sku")+` = ?`,
		skuKey,
	).Scan(&stock)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "database: query inventory")}
	default:
		found = true
		if stock.Valid {
			row[model.FieldStockQuantity] = float64(stock.Int64)
		}
	}

	if !found {
		return nil, nil
	}

	row["sku"] = skuKey
	rec, err := AdaptRow(model.SourceDatabase, row, d.policy, time.Now().UTC())
	if err != nil {
		return nil, eris.Wrapf(err, "database: adapt row %s", skuKey)
	}
	return rec, nil
}

// ListSKUs returns the normalized union of SKUs across the fragmented tables.
func (d *DatabaseSource) ListSKUs(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT DISTINCT ` + normalizedSKUSQL("sku") + ` AS nsku FROM (
		SELECT sku FROM products
		UNION SELECT sku FROM product_pricing
		UNION SELECT sku FROM product_inventory
	) WHERE sku IS NOT NULL AND TRIM(sku) != '' ORDER BY nsku`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "database: list skus")}
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, eris.Wrap(err, "database: scan sku")
		}
		skus = append(skus, s)
	}
	return skus, eris.Wrap(rows.Err(), "database: iterate skus")
}

func putString(row map[string]any, key string, v sql.NullString) {
	if v.Valid && v.String != "" {
		row[key] = v.String
	}
}
