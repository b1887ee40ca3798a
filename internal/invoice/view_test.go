package invoice_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/invoice"
	"github.com/noah-isme/backend-billing/internal/tax"
)

func TestDetailOfOrdersBreakdownByRate(t *testing.T) {
	inv := invoice.Invoice{
		Items: []invoice.LineItem{
			line(t, tax.IntraState, 18, 1, 100, invoice.FixedCharge(0)),
			line(t, tax.IntraState, 5, 1, 100, invoice.FixedCharge(0)),
			line(t, tax.IntraState, 12, 1, 100, invoice.FixedCharge(0)),
		},
		Discount: invoice.FixedCharge(0),
	}
	view := invoice.DetailOf(invoice.Compute(inv))

	require.Len(t, view.Breakdown, 3)
	require.Equal(t, "5", view.Breakdown[0].Rate)
	require.Equal(t, "12", view.Breakdown[1].Rate)
	require.Equal(t, "18", view.Breakdown[2].Rate)
}

func TestDetailOfFieldNames(t *testing.T) {
	inv := invoice.Invoice{
		Items:    []invoice.LineItem{line(t, tax.InterState, 18, 1, 100, invoice.FixedCharge(0))},
		Discount: invoice.FixedCharge(0),
	}
	raw, err := json.Marshal(invoice.DetailOf(invoice.Compute(inv)))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, field := range []string{
		"sub_total", "service_charge", "taxable_amount", "discount_amount",
		"gst_base", "cgst_amount", "sgst_amount", "igst_amount", "total_tax",
		"total", "breakdown",
	} {
		require.Contains(t, doc, field)
	}
	require.Equal(t, "118.00", doc["total"])
	require.Equal(t, "18.00", doc["igst_amount"])
}

func TestGrandTotal(t *testing.T) {
	inv := invoice.Invoice{
		Items:    []invoice.LineItem{line(t, tax.IntraState, 5, 2, 10.50, invoice.FixedCharge(0))},
		Discount: invoice.FixedCharge(1),
	}
	require.Equal(t, "21.00", invoice.GrandTotal(invoice.Compute(inv)))
}
