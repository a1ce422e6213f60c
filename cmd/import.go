package main

import (
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/fetch"
	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sheet"
	"github.com/ridebase/catalog-cli/internal/sku"
	"github.com/ridebase/catalog-cli/internal/source"
)

var (
	importURL       string
	importSheetName string
	importSKUColumn string
)

var importCmd = &cobra.Command{
	Use:   "import [file.xlsx]",
	Short: "Import a supplier price sheet into the local store",
	Long:  "Parses an xlsx price sheet, normalizes SKUs and cleans cells, and records the rows as the spreadsheet source's latest data. Malformed rows are skipped and reported, never fatal.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" && importURL == "" {
			return eris.New("give a file path or --url")
		}

		if importURL != "" {
			downloaded, err := fetch.Download(ctx, importURL, cfg.Documents.Dir, fetch.Options{})
			if err != nil {
				return err
			}
			path = downloaded
		}

		parsed, err := sheet.Parse(path, sheet.Options{
			SheetName: importSheetName,
			SKUColumn: importSKUColumn,
		})
		if err != nil {
			return err
		}

		adapted := source.AdaptRows(model.SourceSpreadsheet, parsed.Rows, sku.DefaultPolicy, time.Now().UTC())
		for _, rowErr := range adapted.Errors {
			var malformed *source.MalformedRowError
			if errors.As(rowErr, &malformed) {
				zap.L().Warn("malformed row skipped",
					zap.Int("row", malformed.Row),
					zap.Error(malformed.Err),
				)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		imp, err := st.CreateImport(ctx, path)
		if err != nil {
			return err
		}
		if err := st.SaveSheetRecords(ctx, imp.ID, adapted.Records); err != nil {
			return err
		}

		skipped := parsed.Skipped + adapted.Skipped + len(adapted.Errors)
		if err := st.FinishImport(ctx, imp.ID, len(adapted.Records), skipped); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("file", path),
			zap.String("import_id", imp.ID),
			zap.String("sku_column", parsed.SKUColumn),
			zap.Int("rows", len(adapted.Records)),
			zap.Int("skipped", skipped),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "download the sheet from this http(s) or ftp URL first")
	importCmd.Flags().StringVar(&importSheetName, "sheet", "", "worksheet name (default first sheet)")
	importCmd.Flags().StringVar(&importSKUColumn, "sku-column", "", "header of the SKU column (default auto-detect)")
	rootCmd.AddCommand(importCmd)
}
