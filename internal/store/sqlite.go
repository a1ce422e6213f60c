package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ridebase/catalog-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sheet_imports (
	id          TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	rows        INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'importing',
	imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sheet_rows (
	import_id    TEXT NOT NULL REFERENCES sheet_imports(id),
	sku          TEXT NOT NULL,
	fields       TEXT NOT NULL,
	retrieved_at DATETIME NOT NULL,
	PRIMARY KEY (import_id, sku)
);

CREATE TABLE IF NOT EXISTS consolidations (
	id              TEXT PRIMARY KEY,
	sku             TEXT NOT NULL,
	record          TEXT NOT NULL,
	consolidated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS review_items (
	id         TEXT PRIMARY KEY,
	sku        TEXT NOT NULL,
	payload    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sheet_rows_sku ON sheet_rows(sku);
CREATE INDEX IF NOT EXISTS idx_consolidations_sku ON consolidations(sku, consolidated_at);
CREATE INDEX IF NOT EXISTS idx_review_items_sku ON review_items(sku);
CREATE INDEX IF NOT EXISTS idx_review_items_status ON review_items(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateImport(ctx context.Context, filename string) (*model.SheetImport, error) {
	imp := &model.SheetImport{
		ID:         uuid.New().String(),
		Filename:   filename,
		ImportedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_imports (id, filename, status, imported_at) VALUES (?, ?, 'importing', ?)`,
		imp.ID, imp.Filename, imp.ImportedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import")
	}
	return imp, nil
}

func (s *SQLiteStore) SaveSheetRecords(ctx context.Context, importID string, records []model.SourceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin sheet tx")
	}
	defer tx.Rollback()

	for _, rec := range records {
		fieldsJSON, err := json.Marshal(rec.Fields)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal fields for %s", rec.SKU)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sheet_rows (import_id, sku, fields, retrieved_at) VALUES (?, ?, ?, ?)`,
			importID, rec.SKU, string(fieldsJSON), rec.RetrievedAt.UTC(),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert sheet row %s", rec.SKU)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit sheet rows")
}

func (s *SQLiteStore) FinishImport(ctx context.Context, importID string, rows, skipped int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sheet_imports SET rows = ?, skipped = ?, status = 'done' WHERE id = ?`,
		rows, skipped, importID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish import %s", importID)
	}
	return checkRowsAffected(res, "import", importID)
}

// LatestSheetRecord returns the sheet row for the SKU from the most recent
// finished import that contains it, or nil when no import mentions the SKU.
func (s *SQLiteStore) LatestSheetRecord(ctx context.Context, sku string) (*model.SourceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT r.fields, r.retrieved_at
		 FROM sheet_rows r
		 JOIN sheet_imports i ON i.id = r.import_id
		 WHERE r.sku = ? AND i.status = 'done'
		 ORDER BY i.imported_at DESC
		 LIMIT 1`,
		sku,
	)

	var fieldsJSON string
	var retrievedAt time.Time
	if err := row.Scan(&fieldsJSON, &retrievedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: sheet row %s", sku)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal sheet fields %s", sku)
	}

	return &model.SourceRecord{
		SKU:         sku,
		Source:      model.SourceSpreadsheet,
		Fields:      fields,
		RetrievedAt: retrievedAt,
	}, nil
}

func (s *SQLiteStore) ListSheetSKUs(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT DISTINCT sku FROM sheet_rows ORDER BY sku`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sheet skus")
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sheet sku")
		}
		skus = append(skus, sku)
	}
	return skus, eris.Wrap(rows.Err(), "sqlite: iterate sheet skus")
}

// SaveConsolidation appends a consolidation to the audit trail. The prior
// record is never rewritten; LatestConsolidation simply picks the newest row.
func (s *SQLiteStore) SaveConsolidation(ctx context.Context, rec *model.ConsolidatedRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal consolidation %s", rec.SKU)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO consolidations (id, sku, record, consolidated_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), rec.SKU, string(payload), rec.ConsolidatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert consolidation %s", rec.SKU)
}

func (s *SQLiteStore) LatestConsolidation(ctx context.Context, sku string) (*model.ConsolidatedRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM consolidations WHERE sku = ? ORDER BY consolidated_at DESC LIMIT 1`,
		sku,
	)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: consolidation %s", sku)
	}

	var rec model.ConsolidatedRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal consolidation %s", sku)
	}
	return &rec, nil
}

func (s *SQLiteStore) CreateReviewItem(ctx context.Context, item *model.ReviewItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal review item %s", item.SKU)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO review_items (id, sku, payload, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.SKU, string(payload), string(item.Status), item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert review item %s", item.SKU)
}

func (s *SQLiteStore) GetReviewItem(ctx context.Context, id string) (*model.ReviewItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM review_items WHERE id = ?`, id)
	return scanReviewItem(row)
}

// GetReviewItemBySKU returns the newest review item for the SKU.
func (s *SQLiteStore) GetReviewItemBySKU(ctx context.Context, sku string) (*model.ReviewItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM review_items WHERE sku = ? ORDER BY created_at DESC LIMIT 1`, sku)
	return scanReviewItem(row)
}

func (s *SQLiteStore) ListReviewItems(ctx context.Context, filter ReviewFilter) ([]model.ReviewItem, error) {
	query := `SELECT payload FROM review_items WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list review items")
	}
	defer rows.Close()

	var items []model.ReviewItem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review item")
		}
		var item model.ReviewItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal review item")
		}
		items = append(items, item)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: iterate review items")
}

func (s *SQLiteStore) UpdateReviewItem(ctx context.Context, item *model.ReviewItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal review item %s", item.ID)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE review_items SET payload = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(payload), string(item.Status), item.UpdatedAt.UTC(), item.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update review item %s", item.ID)
	}
	return checkRowsAffected(res, "review item", item.ID)
}

func scanReviewItem(row *sql.Row) (*model.ReviewItem, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: scan review item")
	}
	var item model.ReviewItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal review item")
	}
	return &item, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
