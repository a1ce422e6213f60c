// Package sku canonicalizes SKU and article-code strings so that records from
// different sources referring to the same physical product collide on the same
// key. Suppliers format the same code inconsistently ("FE-TB", "fe tb",
// "FETB"); normalization maps all of them to one canonical form.
package sku

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// InvalidSKUError reports a raw SKU that cannot be normalized to a usable
// identifier. Always a per-row failure; callers drop the row and count it.
type InvalidSKUError struct {
	Raw string
}

func (e *InvalidSKUError) Error() string {
	return fmt.Sprintf("sku: invalid identifier %q", e.Raw)
}

// Policy controls which characters are considered formatting noise. Source
// data formats vary, so the separator set is configurable per deployment.
type Policy struct {
	// Separators are stripped wherever they appear. Internal whitespace is
	// always stripped regardless of this set.
	Separators string
	// FoldDiacritics maps accented letters to their ASCII base before
	// uppercasing (catalogue OCR output tends to carry stray accents).
	FoldDiacritics bool
}

// DefaultPolicy strips the separator characters seen across the known
// supplier formats.
var DefaultPolicy = Policy{
	Separators:     "-_./",
	FoldDiacritics: true,
}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes raw under the default policy.
func Normalize(raw string) (string, error) {
	return DefaultPolicy.Normalize(raw)
}

// Normalize canonicalizes a raw SKU-like string: trim, optional diacritic
// fold, uppercase, strip internal whitespace and policy separators. The
// result is deterministic and idempotent: Normalize(Normalize(x)) ==
// Normalize(x). Empty or whitespace-only input fails with InvalidSKUError.
func (p Policy) Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &InvalidSKUError{Raw: raw}
	}

	if p.FoldDiacritics {
		if folded, _, err := transform.String(stripMarks, s); err == nil {
			s = folded
		}
	}

	s = strings.ToUpper(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(p.Separators, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	if s == "" {
		return "", &InvalidSKUError{Raw: raw}
	}
	return s, nil
}
