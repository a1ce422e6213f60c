// Package describe drafts product descriptions for consolidated records. The
// draft goes into the review queue next to the record; nothing ships without
// a human accepting it.
package describe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ridebase/catalog-cli/internal/model"
)

// TemplateType selects the register of the drafted description.
type TemplateType string

const (
	// TemplateAuto picks a template from the fields the record actually has.
	TemplateAuto      TemplateType = "auto"
	TemplateTechnical TemplateType = "technical"
	TemplateMarketing TemplateType = "marketing"
	TemplateBasic     TemplateType = "basic"
)

// ParseTemplateType converts a user-supplied string to a TemplateType.
func ParseTemplateType(s string) (TemplateType, error) {
	switch TemplateType(s) {
	case TemplateAuto, TemplateTechnical, TemplateMarketing, TemplateBasic:
		return TemplateType(s), nil
	}
	return "", eris.Errorf("describe: unknown template type %q", s)
}

const technicalTemplate = `Generate a technical product description for %[1]s (SKU: %[2]s).

Key Information:
- Category: %[3]s
- Manufacturer: %[4]s
- Specifications: %[5]s
- Price: %[6]s

Create a detailed technical description focusing on specifications and professional use cases.
Include key technical features and compatibility information.
Keep the tone professional and informative.`

const marketingTemplate = `Create an engaging marketing description for %[1]s (SKU: %[2]s).

Key Information:
- Category: %[3]s
- Manufacturer: %[4]s
- Key Features: %[5]s
- Price: %[6]s

Write a compelling product description that highlights benefits and appeals to customers.
Focus on what makes this product special and why customers should choose it.
Use persuasive but honest language.`

const basicTemplate = `Create a basic product description for %[1]s (SKU: %[2]s).

Product Details:
- Category: %[3]s
- Brand: %[4]s
- Price: %[6]s

Write a clear, concise description covering the essential product information.
Keep it factual and straightforward.`

// Prompt renders the template against a consolidated record.
func Prompt(tt TemplateType, rec *model.ConsolidatedRecord) string {
	if tt == TemplateAuto {
		tt = autoSelect(rec)
	}

	var tmpl string
	switch tt {
	case TemplateTechnical:
		tmpl = technicalTemplate
	case TemplateMarketing:
		tmpl = marketingTemplate
	default:
		tmpl = basicTemplate
	}

	return fmt.Sprintf(tmpl,
		fieldOr(rec, model.FieldName, "Unknown Product"),
		rec.SKU,
		fieldOr(rec, model.FieldCategory, "General"),
		fieldOr(rec, model.FieldManufacturer, ""),
		formatSpecifications(rec.Fields[model.FieldSpecifications]),
		formatPrice(rec.Fields[model.FieldPrice]),
	)
}

// autoSelect chooses the richest template the record's fields can carry:
// specifications enable the technical one, a price alone the marketing one.
func autoSelect(rec *model.ConsolidatedRecord) TemplateType {
	if !model.IsEmptyValue(rec.Fields[model.FieldSpecifications]) {
		return TemplateTechnical
	}
	if !model.IsEmptyValue(rec.Fields[model.FieldPrice]) {
		return TemplateMarketing
	}
	return TemplateBasic
}

func fieldOr(rec *model.ConsolidatedRecord, key, fallback string) string {
	v, ok := rec.Fields[key]
	if !ok || model.IsEmptyValue(v) {
		return fallback
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// formatSpecifications renders a specifications map as "Key: value; ..."
// pairs, keys title-cased and sorted for stable output.
func formatSpecifications(v any) string {
	specs, ok := v.(map[string]any)
	if !ok || len(specs) == 0 {
		return "Specifications available upon request"
	}

	keys := make([]string, 0, len(specs))
	for k := range specs {
		if !model.IsEmptyValue(specs[k]) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "Specifications available upon request"
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", specLabel(k), specs[k]))
	}
	return strings.Join(parts, "; ")
}

// specLabel turns a snake_case spec key into a display label.
func specLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatPrice(v any) string {
	if model.IsEmptyValue(v) {
		return "Contact for pricing"
	}
	if f, ok := model.AsFloat(v); ok {
		return fmt.Sprintf("$%.2f", f)
	}
	return fmt.Sprintf("%v", v)
}
