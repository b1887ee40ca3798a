// Package tax holds the static catalog of GST treatments selectable on an
// invoice line. Intra-state supplies split the rate evenly into CGST and SGST;
// inter-state supplies carry the full rate as IGST.
package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Relationship describes where the customer sits relative to the business.
type Relationship string

const (
	// IntraState means customer and business share a state code.
	IntraState Relationship = "intra"
	// InterState means customer and business are in different states.
	InterState Relationship = "inter"
)

// Resolve derives the relationship by comparing state codes. The comparison is
// plain string equality on the trimmed codes; jurisdiction semantics beyond
// that belong to the caller.
func Resolve(customerState, businessState string) Relationship {
	if strings.EqualFold(strings.TrimSpace(customerState), strings.TrimSpace(businessState)) {
		return IntraState
	}
	return InterState
}

// ParseRelationship maps a query value onto a Relationship.
func ParseRelationship(value string) (Relationship, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "intra", "intrastate", "same":
		return IntraState, true
	case "inter", "interstate", "cross":
		return InterState, true
	default:
		return "", false
	}
}

// Treatment is one selectable tax option: a total rate plus its component
// decomposition. Exactly one of {CGST+SGST} or {IGST} is non-zero.
type Treatment struct {
	Label string          `json:"label"`
	Rate  decimal.Decimal `json:"rate"`
	CGST  decimal.Decimal `json:"cgst_rate"`
	SGST  decimal.Decimal `json:"sgst_rate"`
	IGST  decimal.Decimal `json:"igst_rate"`
}

// Standard GST slabs, in the order they appear in treatment dropdowns.
var slabs = []int64{0, 5, 12, 18, 28}

// TreatmentsFor returns the ordered treatments available for the relationship.
func TreatmentsFor(rel Relationship) []Treatment {
	out := make([]Treatment, 0, len(slabs))
	for _, slab := range slabs {
		out = append(out, treatmentFor(rel, decimal.NewFromInt(slab)))
	}
	return out
}

// Lookup finds the treatment with the given total rate, if the catalog has it.
func Lookup(rel Relationship, rate decimal.Decimal) (Treatment, bool) {
	for _, slab := range slabs {
		if rate.Equal(decimal.NewFromInt(slab)) {
			return treatmentFor(rel, decimal.NewFromInt(slab)), true
		}
	}
	return Treatment{}, false
}

// Default returns the treatment pre-selected for new lines.
func Default(rel Relationship) Treatment {
	return treatmentFor(rel, decimal.NewFromInt(18))
}

func treatmentFor(rel Relationship, rate decimal.Decimal) Treatment {
	t := Treatment{Rate: rate}
	if rel == IntraState {
		half := rate.Div(decimal.NewFromInt(2))
		t.CGST = half
		t.SGST = half
		t.Label = "GST " + rate.String() + "%"
		return t
	}
	t.IGST = rate
	t.Label = "IGST " + rate.String() + "%"
	return t
}
