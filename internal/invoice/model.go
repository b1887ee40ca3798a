package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-billing/internal/money"
	"github.com/noah-isme/backend-billing/internal/tax"
)

// ChargeMode selects how a Charge value is interpreted.
type ChargeMode string

const (
	// ChargeFixed treats the value as a flat currency amount.
	ChargeFixed ChargeMode = "fixed"
	// ChargePercent treats the value as a percentage of a base amount.
	ChargePercent ChargeMode = "percentage"
)

// Charge is a tagged amount used for per-line service charges and the
// invoice-level discount. The mode decides whether Value is a flat amount or
// a percentage of the base it is applied to.
type Charge struct {
	Mode  ChargeMode      `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// FixedCharge builds a flat-amount charge.
func FixedCharge(v float64) Charge {
	return Charge{Mode: ChargeFixed, Value: money.FromFloat(v)}
}

// PercentCharge builds a percentage charge.
func PercentCharge(v float64) Charge {
	return Charge{Mode: ChargePercent, Value: money.FromFloat(v)}
}

// AmountOn resolves the charge against the given base amount.
func (c Charge) AmountOn(base decimal.Decimal) decimal.Decimal {
	value := money.ClampNonNegative(c.Value)
	if c.Mode == ChargePercent {
		return money.PercentOf(base, value)
	}
	return value
}

// LineItem is one priced row on an invoice. The treatment was chosen under a
// specific jurisdiction relationship at selection time, so it already carries
// the resolved component split.
type LineItem struct {
	Description   string          `json:"description,omitempty"`
	Qty           decimal.Decimal `json:"qty"`
	UnitRate      decimal.Decimal `json:"unit_rate"`
	ServiceCharge Charge          `json:"service_charge"`
	Treatment     tax.Treatment   `json:"treatment"`
}

// BaseAmount is qty times unit rate. Zero qty or rate yields zero, not an error.
func (li LineItem) BaseAmount() decimal.Decimal {
	return money.ClampNonNegative(li.Qty).Mul(money.ClampNonNegative(li.UnitRate))
}

// ServiceChargeAmount resolves the line's service charge against its base amount.
func (li LineItem) ServiceChargeAmount() decimal.Decimal {
	return li.ServiceCharge.AmountOn(li.BaseAmount())
}

// TaxableContribution is the line's pre-discount share of the taxable amount.
func (li LineItem) TaxableContribution() decimal.Decimal {
	return li.BaseAmount().Add(li.ServiceChargeAmount())
}

// Invoice aggregates line items with an invoice-level discount. Item order
// matters for display only; totals are order-independent.
type Invoice struct {
	Items    []LineItem `json:"items"`
	Discount Charge     `json:"discount"`
}

// RateBreakdown accumulates tax for all lines sharing one total rate.
type RateBreakdown struct {
	Rate        decimal.Decimal
	TaxableBase decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	Total       decimal.Decimal
}

// Totals is the derived view of an invoice. It is recomputed on every read
// and never treated as authoritative state.
type Totals struct {
	SubTotal       decimal.Decimal
	ServiceCharge  decimal.Decimal
	TaxableAmount  decimal.Decimal
	DiscountAmount decimal.Decimal
	GSTBase        decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	TotalTax       decimal.Decimal
	GrandTotal     decimal.Decimal
	Breakdown      map[string]*RateBreakdown
}
