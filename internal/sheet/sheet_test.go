package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// writeSheet builds a throwaway xlsx file from string rows.
func writeSheet(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	ws, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	for _, cells := range rows {
		row := ws.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "pricelist.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestParse_HeaderSynonyms(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"Article Code", "Product Name", "RRP", "Wholesale Price", "Qty", "Brand"},
		{"FE-TB", "Fender Tab", "€89.50", "40.00", "12 pcs", "Acme"},
	})

	res, err := Parse(path, Options{})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, "FE-TB", row["sku"])
	assert.Equal(t, "Fender Tab", row["name"])
	assert.Equal(t, "89.50", row["price"])
	assert.Equal(t, "40.00", row["cost"])
	assert.Equal(t, "12", row["stock_quantity"])
	assert.Equal(t, "Acme", row["manufacturer"])
	assert.Equal(t, "Article Code", res.SKUColumn)
}

func TestParse_PriceCleaning(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"SKU", "Price"},
		{"A1", "$1,299.00"},
		{"A2", "call us"},
	})

	res, err := Parse(path, Options{})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "1299.00", res.Rows[0]["price"])
	assert.NotContains(t, res.Rows[1], "price") // nothing numeric left
}

func TestParse_BlankSKURowsSkipped(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"SKU", "Name"},
		{"FE-TB", "Fender Tab"},
		{"", "orphan row"},
		{"WS-01", "Windshield"},
	})

	res, err := Parse(path, Options{})
	require.NoError(t, err)

	assert.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Skipped)
}

func TestParse_AutoDetectSKUColumn(t *testing.T) {
	// No recognizable SKU header; the shaped column must be found by value.
	path := writeSheet(t, [][]string{
		{"Referenz", "Name"},
		{"FE-TB", "Fender Tab"},
		{"WS-01", "Windshield"},
		{"AB-99", "Mirror"},
	})

	res, err := Parse(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Referenz", res.SKUColumn)
	assert.Len(t, res.Rows, 3)
}

func TestParse_ExplicitSKUColumnWins(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"Code", "Internal Ref", "Name"},
		{"SUPPLIER-1", "FE-TB", "Fender Tab"},
	})

	res, err := Parse(path, Options{SKUColumn: "Internal Ref"})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "FE-TB", res.Rows[0]["sku"])
	assert.Equal(t, "Internal Ref", res.SKUColumn)
}

func TestParse_NoSKUColumnFails(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"Notes", "Comments"},
		{"a long sentence about nothing in particular", "another long note here"},
	})

	_, err := Parse(path, Options{})
	assert.Error(t, err)
}

func TestParse_UnknownWorksheet(t *testing.T) {
	path := writeSheet(t, [][]string{{"SKU"}, {"A1"}})

	_, err := Parse(path, Options{SheetName: "Prices"})
	assert.Error(t, err)
}

func TestParse_EmptySheet(t *testing.T) {
	path := writeSheet(t, nil)

	res, err := Parse(path, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}
