package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-billing/internal/money"
)

// Compute derives invoice totals in two passes. The first pass aggregates the
// pre-tax figures and applies the invoice-level discount; the second allocates
// the post-discount base back across lines in proportion to each line's
// pre-discount contribution, so per-line tax at each line's own rate still
// reconciles with the invoice totals.
//
// Compute is pure: it reads only its argument and touches no shared state, so
// it is safe to call concurrently. An empty invoice yields all-zero totals.
func Compute(inv Invoice) Totals {
	totals := Totals{Breakdown: make(map[string]*RateBreakdown)}

	for _, item := range inv.Items {
		totals.SubTotal = totals.SubTotal.Add(item.BaseAmount())
		totals.ServiceCharge = totals.ServiceCharge.Add(item.ServiceChargeAmount())
	}
	totals.TaxableAmount = totals.SubTotal.Add(totals.ServiceCharge)

	// The discount never pushes the base negative; percent discounts > 100
	// are already rejected upstream.
	discount := money.ClampNonNegative(inv.Discount.AmountOn(totals.TaxableAmount))
	totals.DiscountAmount = money.Min(discount, totals.TaxableAmount)
	totals.GSTBase = money.ClampNonNegative(totals.TaxableAmount.Sub(totals.DiscountAmount))

	for _, item := range inv.Items {
		share := decimal.Zero
		if totals.TaxableAmount.IsPositive() {
			// zero taxable amount implies zero base, nothing to allocate
			share = totals.GSTBase.Mul(item.TaxableContribution()).Div(totals.TaxableAmount)
		}
		cgst := money.PercentOf(share, item.Treatment.CGST)
		sgst := money.PercentOf(share, item.Treatment.SGST)
		igst := money.PercentOf(share, item.Treatment.IGST)

		totals.CGST = totals.CGST.Add(cgst)
		totals.SGST = totals.SGST.Add(sgst)
		totals.IGST = totals.IGST.Add(igst)

		key := item.Treatment.Rate.String()
		entry, ok := totals.Breakdown[key]
		if !ok {
			entry = &RateBreakdown{Rate: item.Treatment.Rate}
			totals.Breakdown[key] = entry
		}
		entry.TaxableBase = entry.TaxableBase.Add(share)
		entry.CGST = entry.CGST.Add(cgst)
		entry.SGST = entry.SGST.Add(sgst)
		entry.IGST = entry.IGST.Add(igst)
		entry.Total = entry.Total.Add(cgst).Add(sgst).Add(igst)
	}

	totals.TotalTax = totals.CGST.Add(totals.SGST).Add(totals.IGST)
	totals.GrandTotal = totals.GSTBase.Add(totals.TotalTax)
	return totals
}
