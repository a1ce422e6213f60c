package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/consolidate"
)

var (
	batchFile        string
	batchSources     []string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch [sku...]",
	Short: "Consolidate many SKUs with bounded concurrency",
	Long:  "Consolidates each SKU independently; one SKU's failure never aborts the rest. SKUs come from arguments or, with --file, one per line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		skus := args
		if batchFile != "" {
			fileSKUs, err := readSKUFile(batchFile)
			if err != nil {
				return err
			}
			skus = append(skus, fileSKUs...)
		}
		if len(skus) == 0 {
			return eris.New("no SKUs given (pass arguments or --file)")
		}

		sources, err := parseSources(batchSources)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if batchConcurrency > 0 {
			env.Consolidator = env.Consolidator.WithOptions(consolidate.WithConcurrency(batchConcurrency))
		}

		result := env.Consolidator.ConsolidateBatch(ctx, skus, sources)

		zap.L().Info("batch complete",
			zap.Int("processed", result.Summary.Processed),
			zap.Int("succeeded", result.Summary.Succeeded),
			zap.Int("failed", result.Summary.Failed),
			zap.Int("high_confidence", result.Summary.HighConfidence),
			zap.Int("needs_review", result.Summary.NeedsReview),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batchOutput(result))
	},
}

// batchOutput flattens a BatchResult for JSON: errors become strings.
func batchOutput(result *consolidate.BatchResult) map[string]any {
	items := make(map[string]any, len(result.Items))
	for skuArg, item := range result.Items {
		if item.Err != nil {
			items[skuArg] = map[string]string{"error": item.Err.Error()}
			continue
		}
		items[skuArg] = item.Record
	}
	return map[string]any{
		"items":   items,
		"summary": result.Summary,
	}
}

// readSKUFile reads one SKU per line, skipping blanks and # comments.
func readSKUFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open sku file")
	}
	defer f.Close()

	var skus []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		skus = append(skus, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read sku file")
	}
	return skus, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one SKU per line")
	batchCmd.Flags().StringSliceVar(&batchSources, "source", nil,
		"source to consult (catalogue, spreadsheet, database); repeatable, default all")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent SKUs (default from config)")
	rootCmd.AddCommand(batchCmd)
}
