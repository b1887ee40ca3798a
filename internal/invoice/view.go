package invoice

import (
	"sort"

	"github.com/noah-isme/backend-billing/internal/money"
)

// BreakdownView is one rate row of the detail payload, amounts rendered with
// two decimal places.
type BreakdownView struct {
	Rate        string `json:"rate"`
	TaxableBase string `json:"taxable_base"`
	CGSTAmount  string `json:"cgst_amount"`
	SGSTAmount  string `json:"sgst_amount"`
	IGSTAmount  string `json:"igst_amount"`
	Total       string `json:"total"`
}

// DetailView is the full totals payload for detail and preview screens. Field
// names match the persisted invoice document, so exporters can render it
// without recomputation.
type DetailView struct {
	SubTotal       string          `json:"sub_total"`
	ServiceCharge  string          `json:"service_charge"`
	TaxableAmount  string          `json:"taxable_amount"`
	DiscountAmount string          `json:"discount_amount"`
	GSTBase        string          `json:"gst_base"`
	CGSTAmount     string          `json:"cgst_amount"`
	SGSTAmount     string          `json:"sgst_amount"`
	IGSTAmount     string          `json:"igst_amount"`
	TotalTax       string          `json:"total_tax"`
	Total          string          `json:"total"`
	Breakdown      []BreakdownView `json:"breakdown"`
}

// DetailOf projects totals into the detail shape. Breakdown rows are ordered
// by ascending rate for stable display.
func DetailOf(t Totals) DetailView {
	view := DetailView{
		SubTotal:       money.Display(t.SubTotal),
		ServiceCharge:  money.Display(t.ServiceCharge),
		TaxableAmount:  money.Display(t.TaxableAmount),
		DiscountAmount: money.Display(t.DiscountAmount),
		GSTBase:        money.Display(t.GSTBase),
		CGSTAmount:     money.Display(t.CGST),
		SGSTAmount:     money.Display(t.SGST),
		IGSTAmount:     money.Display(t.IGST),
		TotalTax:       money.Display(t.TotalTax),
		Total:          money.Display(t.GrandTotal),
		Breakdown:      make([]BreakdownView, 0, len(t.Breakdown)),
	}
	entries := make([]*RateBreakdown, 0, len(t.Breakdown))
	for _, entry := range t.Breakdown {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rate.LessThan(entries[j].Rate)
	})
	for _, entry := range entries {
		view.Breakdown = append(view.Breakdown, BreakdownView{
			Rate:        entry.Rate.String(),
			TaxableBase: money.Display(entry.TaxableBase),
			CGSTAmount:  money.Display(entry.CGST),
			SGSTAmount:  money.Display(entry.SGST),
			IGSTAmount:  money.Display(entry.IGST),
			Total:       money.Display(entry.Total),
		})
	}
	return view
}

// GrandTotal renders just the invoice total, the shape list rows consume.
func GrandTotal(t Totals) string {
	return money.Display(t.GrandTotal)
}
