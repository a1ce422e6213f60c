package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
)

// PgxQuerier is the subset of pgxpool.Pool the Postgres source needs.
// pgxmock satisfies it in tests.
type PgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource is the Postgres variant of the product database source, for
// stores whose product data lives in the shop's main database rather than a
// local SQLite file. Same fragmented-table contract as DatabaseSource.
type PostgresSource struct {
	pool   PgxQuerier
	policy sku.Policy
}

// NewPostgres creates a Postgres product database source over an existing pool.
func NewPostgres(pool PgxQuerier, policy sku.Policy) *PostgresSource {
	return &PostgresSource{pool: pool, policy: policy}
}

// NewPostgresPool connects to the given database URL and returns the source
// plus the owned pool for lifecycle management.
func NewPostgresPool(ctx context.Context, databaseURL string, policy sku.Policy) (*PostgresSource, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgres(pool, policy), pool, nil
}

func (p *PostgresSource) Source() model.Source { return model.SourceDatabase }

// pgNormalizedSKUSQL mirrors sku.Normalize for Postgres text columns.
func pgNormalizedSKUSQL(col string) string {
	return `UPPER(REGEXP_REPLACE(` + col + `, '[-_./\s]', '', 'g'))`
}

func (p *PostgresSource) Get(ctx context.Context, skuKey string) (*model.SourceRecord, error) {
	row := make(map[string]any)
	found := false

	var name, description, manufacturer, category, specsJSON sql.NullString
	err := p.pool.QueryRow(ctx,
		`SELECT name, description, manufacturer, category, specifications
		 FROM products WHERE `+pgNormalizedSKUSQL("sku")+` = $1`,
		skuKey,
	).Scan(&name, &description, &manufacturer, &category, &specsJSON)
	switch {
	case err == pgx.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "postgres: query products")}
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

	var price, cost sql.NullFloat64
	err = p.pool.QueryRow(ctx,
		`SELECT price, cost FROM product_pricing WHERE `+pgNormalizedSKUSQL("sku")+` = $1`,
		skuKey,
	).Scan(&price, &cost)
	switch {
	case err == pgx.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "postgres: query pricing")}
	default:
		found = true
		if price.Valid {
			row[model.FieldPrice] = price.Float64
		}
		if cost.Valid {
			row[model.FieldCost] = cost.Float64
		}
	}

	var stock sql.NullInt64
	err = p.pool.QueryRow(ctx,
		`SELECT stock_quantity FROM product_inventory WHERE `+pgNormalizedSKUSQL("sku")+` = $1`,
		skuKey,
	).Scan(&stock)
	switch {
	case err == pgx.ErrNoRows:
	case err != nil:
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "postgres: query inventory")}
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
	rec, err := AdaptRow(model.SourceDatabase, row, p.policy, time.Now().UTC())
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: adapt row %s", skuKey)
	}
	return rec, nil
}

// ListSKUs returns the normalized union of SKUs across the fragmented tables.
func (p *PostgresSource) ListSKUs(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT DISTINCT ` + pgNormalizedSKUSQL("sku") + ` AS nsku FROM (
		SELECT sku FROM products
		UNION SELECT sku FROM product_pricing
		UNION SELECT sku FROM product_inventory
	) AS all_skus WHERE sku IS NOT NULL AND TRIM(sku) != '' ORDER BY nsku`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, &UnavailableError{Source: model.SourceDatabase, Err: eris.Wrap(err, "postgres: list skus")}
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sku")
		}
		skus = append(skus, s)
	}
	return skus, eris.Wrap(rows.Err(), "postgres: iterate skus")
}
