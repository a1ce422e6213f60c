package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/source"
)

var (
	skusSource string
	skusLimit  int
)

var skusCmd = &cobra.Command{
	Use:   "skus",
	Short: "List known SKUs from one source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src, err := model.ParseSource(skusSource)
		if err != nil {
			return err
		}

		var lister source.Lister
		switch src {
		case model.SourceSpreadsheet:
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			lister = source.NewSpreadsheet(st)
		case model.SourceDatabase:
			dbLookup, closeDB, err := initDatabaseSource(ctx)
			if err != nil {
				return err
			}
			if dbLookup == nil {
				return eris.New("database source is not configured")
			}
			defer closeDB()
			var ok bool
			lister, ok = dbLookup.(source.Lister)
			if !ok {
				return eris.Errorf("source %s cannot list SKUs", src)
			}
		default:
			return eris.Errorf("source %s cannot list SKUs", src)
		}

		skus, err := lister.ListSKUs(ctx, skusLimit)
		if err != nil {
			return err
		}
		for _, s := range skus {
			fmt.Println(s)
		}
		return nil
	},
}

func init() {
	skusCmd.Flags().StringVar(&skusSource, "source", string(model.SourceSpreadsheet),
		"source to enumerate (spreadsheet, database)")
	skusCmd.Flags().IntVar(&skusLimit, "limit", 0, "max SKUs to list (0 = all)")
	rootCmd.AddCommand(skusCmd)
}
