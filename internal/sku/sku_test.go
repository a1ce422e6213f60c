package sku

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ConvergentForms(t *testing.T) {
	forms := []string{" fe-tb ", "FETB", "fe_tb", "fe tb", "FE.TB", "Fe-Tb"}
	for _, raw := range forms {
		got, err := Normalize(raw)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, "FETB", got, "raw %q", raw)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{" fe-tb ", "FETB", "fe_tb", "ABC-123.X", "ско-12", "  a b c  "}
	for _, raw := range inputs {
		once, err := Normalize(raw)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "raw %q", raw)
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n", "---", " - _ . "} {
		_, err := Normalize(raw)
		var invalid *InvalidSKUError
		assert.True(t, errors.As(err, &invalid), "raw %q should be invalid", raw)
	}
}

func TestNormalize_Diacritics(t *testing.T) {
	got, err := Normalize("fé-tb")
	require.NoError(t, err)
	assert.Equal(t, "FETB", got)
}

func TestNormalize_CustomPolicy(t *testing.T) {
	// A policy that keeps dashes as significant.
	p := Policy{Separators: "_.", FoldDiacritics: true}
	got, err := p.Normalize("fe-tb")
	require.NoError(t, err)
	assert.Equal(t, "FE-TB", got)
}

func TestNormalize_PreservesDigitsAndLetters(t *testing.T) {
	got, err := Normalize(" skidoo-2024_EXP.SE ")
	require.NoError(t, err)
	assert.Equal(t, "SKIDOO2024EXPSE", got)
}
