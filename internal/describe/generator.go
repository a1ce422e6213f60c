package describe

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/pkg/anthropic"
)

const systemPrompt = "You are a product copywriter for a powersports parts retailer. " +
	"Write descriptions grounded only in the product data you are given; never invent specifications."

// Draft is a generated description plus a confidence estimate over the
// inputs that produced it.
type Draft struct {
	SKU         string
	Description string
	Confidence  float64
	Template    TemplateType
	Usage       anthropic.TokenUsage
}

// Generator drafts descriptions through the Anthropic API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator wires a Generator.
func NewGenerator(client anthropic.Client, modelID string, maxTokens int64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{client: client, model: modelID, maxTokens: maxTokens}
}

// Generate drafts a description for one consolidated record.
func (g *Generator) Generate(ctx context.Context, rec *model.ConsolidatedRecord, tt TemplateType) (*Draft, error) {
	if tt == TemplateAuto {
		tt = autoSelect(rec)
	}

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Prompt:    Prompt(tt, rec),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "describe: generate for %s", rec.SKU)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, eris.Errorf("describe: empty draft for %s", rec.SKU)
	}

	draft := &Draft{
		SKU:         rec.SKU,
		Description: text,
		Confidence:  Confidence(rec, text),
		Template:    tt,
		Usage:       resp.Usage,
	}

	zap.L().Info("description drafted",
		zap.String("sku", rec.SKU),
		zap.String("template", string(tt)),
		zap.Int("length", len(text)),
		zap.Float64("confidence", draft.Confidence),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return draft, nil
}

// Confidence estimates how well grounded a drafted description is: essential
// fields present in the record carry most of the score, draft length adds the
// rest. Bounded to [0,1].
func Confidence(rec *model.ConsolidatedRecord, description string) float64 {
	score := 0.0

	if !model.IsEmptyValue(rec.Fields[model.FieldName]) {
		score += 0.3
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldCategory]) {
		score += 0.2
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldManufacturer]) {
		score += 0.2
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldSpecifications]) {
		score += 0.1
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldPrice]) {
		score += 0.1
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldDescription]) {
		score += 0.1
	}

	if len(description) > 100 {
		score += 0.1
	}
	if len(description) > 200 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Fallback builds a deterministic one-line description when no API client is
// configured, so the review queue still gets a placeholder draft.
func Fallback(rec *model.ConsolidatedRecord) string {
	name := fieldOr(rec, model.FieldName, "Product")
	manufacturer := fieldOr(rec, model.FieldManufacturer, "trusted manufacturer")
	return fmt.Sprintf("%s (SKU: %s) - %s from %s",
		name, rec.SKU, fieldOr(rec, model.FieldCategory, "General"), manufacturer)
}
