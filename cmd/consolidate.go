package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/consolidate"
	"github.com/ridebase/catalog-cli/internal/model"
)

var consolidateSources []string

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <sku>",
	Short: "Consolidate one SKU across the configured sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sources, err := parseSources(consolidateSources)
		if err != nil {
			return err
		}

		rec, err := env.Consolidator.Consolidate(ctx, args[0], sources)
		if err != nil {
			var noData *consolidate.NoDataFoundError
			if errors.As(err, &noData) {
				zap.L().Warn("no data found",
					zap.String("sku", noData.SKU),
					zap.Int("sources_checked", len(noData.SourcesChecked)),
				)
			}
			return eris.Wrap(err, "consolidate")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

// parseSources converts --source flag values to source identifiers.
func parseSources(names []string) ([]model.Source, error) {
	var out []model.Source
	for _, name := range names {
		src, err := model.ParseSource(name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func init() {
	consolidateCmd.Flags().StringSliceVar(&consolidateSources, "source", nil,
		"source to consult (catalogue, spreadsheet, database); repeatable, default all")
	rootCmd.AddCommand(consolidateCmd)
}
