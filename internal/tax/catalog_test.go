package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/tax"
)

func TestResolve(t *testing.T) {
	require.Equal(t, tax.IntraState, tax.Resolve("KA", "KA"))
	require.Equal(t, tax.IntraState, tax.Resolve(" ka ", "KA"))
	require.Equal(t, tax.InterState, tax.Resolve("MH", "KA"))
	require.Equal(t, tax.InterState, tax.Resolve("", "KA"))
}

func TestTreatmentsForIntraState(t *testing.T) {
	treatments := tax.TreatmentsFor(tax.IntraState)
	require.Len(t, treatments, 5)

	for _, tr := range treatments {
		require.True(t, tr.IGST.IsZero(), "%s should carry no IGST", tr.Label)
		require.True(t, tr.CGST.Add(tr.SGST).Equal(tr.Rate), "%s components must sum to rate", tr.Label)
		require.True(t, tr.CGST.Equal(tr.SGST), "%s must split evenly", tr.Label)
	}

	eighteen := treatments[3]
	require.Equal(t, "GST 18%", eighteen.Label)
	require.Equal(t, "9", eighteen.CGST.String())
}

func TestTreatmentsForInterState(t *testing.T) {
	treatments := tax.TreatmentsFor(tax.InterState)
	require.Len(t, treatments, 5)

	for _, tr := range treatments {
		require.True(t, tr.CGST.IsZero())
		require.True(t, tr.SGST.IsZero())
		require.True(t, tr.IGST.Equal(tr.Rate))
	}
	require.Equal(t, "IGST 28%", treatments[4].Label)
}

func TestLookup(t *testing.T) {
	tr, ok := tax.Lookup(tax.InterState, decimal.NewFromInt(12))
	require.True(t, ok)
	require.Equal(t, "12", tr.IGST.String())

	_, ok = tax.Lookup(tax.IntraState, decimal.NewFromInt(7))
	require.False(t, ok)
}

func TestDefault(t *testing.T) {
	require.Equal(t, "GST 18%", tax.Default(tax.IntraState).Label)
	require.Equal(t, "IGST 18%", tax.Default(tax.InterState).Label)
}

func TestParseRelationship(t *testing.T) {
	rel, ok := tax.ParseRelationship("intra")
	require.True(t, ok)
	require.Equal(t, tax.IntraState, rel)

	rel, ok = tax.ParseRelationship("CROSS")
	require.True(t, ok)
	require.Equal(t, tax.InterState, rel)

	_, ok = tax.ParseRelationship("foreign")
	require.False(t, ok)
}
