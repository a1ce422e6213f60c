package model

import "time"

// SheetImport describes one price sheet import batch. The newest finished
// import is what the spreadsheet source serves lookups from.
type SheetImport struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Rows       int       `json:"rows"`
	Skipped    int       `json:"skipped"`
	ImportedAt time.Time `json:"imported_at"`
}
