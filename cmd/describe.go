package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/describe"
	"github.com/ridebase/catalog-cli/internal/review"
	"github.com/ridebase/catalog-cli/pkg/anthropic"
)

var (
	describeTemplate string
	describeNoQueue  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <sku>",
	Short: "Consolidate a SKU and draft its product description",
	Long:  "Consolidates the SKU, drafts a description from the resolved fields, and queues record plus draft for review. Without an API key a deterministic placeholder draft is queued instead.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tt, err := describe.ParseTemplateType(describeTemplate)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Consolidator.Consolidate(ctx, args[0], nil)
		if err != nil {
			return err
		}

		description := describe.Fallback(rec)
		confidence := describe.Confidence(rec, description)
		if cfg.Anthropic.Key != "" {
			gen := describe.NewGenerator(
				anthropic.NewClient(cfg.Anthropic.Key),
				cfg.Anthropic.Model,
				cfg.Anthropic.MaxTokens,
			)
			draft, err := gen.Generate(ctx, rec, tt)
			if err != nil {
				return err
			}
			description = draft.Description
			confidence = draft.Confidence
		} else {
			zap.L().Warn("no anthropic key configured, queuing placeholder draft",
				zap.String("sku", rec.SKU))
		}

		if !describeNoQueue {
			gate := review.NewGate(env.Store)
			item, err := gate.Enqueue(ctx, rec, description, confidence)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"sku":         rec.SKU,
			"description": description,
			"confidence":  confidence,
			"record":      rec,
		})
	},
}

func init() {
	describeCmd.Flags().StringVar(&describeTemplate, "template", string(describe.TemplateAuto),
		"description template (auto, technical, marketing, basic)")
	describeCmd.Flags().BoolVar(&describeNoQueue, "no-queue", false, "print the draft without queuing it for review")
	rootCmd.AddCommand(describeCmd)
}
