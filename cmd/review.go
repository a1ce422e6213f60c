package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the review queue",
}

var reviewListLimit int

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending review items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := review.NewGate(st).Pending(ctx, reviewListLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

var reviewAcceptCmd = &cobra.Command{
	Use:   "accept <id>",
	Short: "Accept a pending item",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewTransition(review.ActionAccept),
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending item",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewTransition(review.ActionReject),
}

var reviewFlagCmd = &cobra.Command{
	Use:   "flag <id>",
	Short: "Flag a pending item for escalation",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewTransition(review.ActionFlag),
}

// reviewTransition builds the RunE for the three plain transitions.
func reviewTransition(action review.Action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		gate := review.NewGate(st)
		var item *model.ReviewItem
		switch action {
		case review.ActionAccept:
			item, err = gate.Accept(ctx, args[0])
		case review.ActionReject:
			item, err = gate.Reject(ctx, args[0])
		default:
			item, err = gate.Flag(ctx, args[0])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	}
}

var reviewEditSets []string

var reviewEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Apply field overrides and mark the item edited",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		overrides, err := parseFieldSets(reviewEditSets)
		if err != nil {
			return err
		}
		if len(overrides) == 0 {
			return eris.New("no overrides given (use --set field=value)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		item, err := review.NewGate(st).Edit(ctx, args[0], overrides)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	},
}

// parseFieldSets converts --set field=value pairs into an override map.
// Numeric fields are coerced by the gate's schema check downstream, so values
// stay strings here.
func parseFieldSets(sets []string) (map[string]any, error) {
	overrides := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, found := strings.Cut(s, "=")
		if !found || key == "" {
			return nil, eris.Errorf("invalid --set %q, want field=value", s)
		}
		overrides[key] = value
	}
	return overrides, nil
}

var reviewBatchAction string

var reviewBatchCmd = &cobra.Command{
	Use:   "batch <sku...>",
	Short: "Apply one action to many SKUs' review items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		action, err := review.ParseAction(reviewBatchAction)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		results := review.NewGate(st).BatchApply(ctx, args, action)

		out := make(map[string]string, len(results))
		failed := 0
		for skuArg, resErr := range results {
			if resErr != nil {
				out[skuArg] = resErr.Error()
				failed++
				continue
			}
			out[skuArg] = string(action)
		}

		zap.L().Info("review batch complete",
			zap.String("action", string(action)),
			zap.Int("applied", len(results)-failed),
			zap.Int("failed", failed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	reviewListCmd.Flags().IntVar(&reviewListLimit, "limit", 50, "max items to list")
	reviewEditCmd.Flags().StringArrayVar(&reviewEditSets, "set", nil, "field override as field=value; repeatable")
	reviewBatchCmd.Flags().StringVar(&reviewBatchAction, "action", string(review.ActionAccept),
		"action to apply (accept, reject, flag)")

	reviewCmd.AddCommand(reviewListCmd, reviewAcceptCmd, reviewRejectCmd, reviewFlagCmd, reviewEditCmd, reviewBatchCmd)
	rootCmd.AddCommand(reviewCmd)
}
