package invoice

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/money"
	"github.com/noah-isme/backend-billing/internal/tax"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LineItemInput is the wire form of one invoice line.
type LineItemInput struct {
	Description       string  `json:"description" validate:"max=200"`
	Qty               float64 `json:"qty" validate:"min=0"`
	UnitRate          float64 `json:"unit_rate" validate:"min=0"`
	ServiceCharge     float64 `json:"service_charge" validate:"min=0"`
	ServiceChargeMode string  `json:"service_charge_mode" validate:"omitempty,oneof=fixed percentage"`
	TaxRate           float64 `json:"tax_rate" validate:"min=0"`
}

// ComputeRequest is the payload for preview and create. The jurisdiction
// relationship is resolved here, at the boundary, by comparing state codes;
// the engine only ever sees resolved treatments.
type ComputeRequest struct {
	CustomerName      string          `json:"customer_name" validate:"max=200"`
	CustomerStateCode string          `json:"customer_state_code" validate:"required,max=8"`
	BusinessStateCode string          `json:"business_state_code" validate:"max=8"`
	Items             []LineItemInput `json:"items" validate:"dive"`
	DiscountValue     float64         `json:"discount_value" validate:"min=0"`
	DiscountMode      string          `json:"discount_mode" validate:"omitempty,oneof=fixed percentage"`
}

// Validate applies field rules that must hold before the aggregator runs.
// Negative and over-range values are rejected here so the engine's clamps
// stay a defensive backstop instead of masking user error.
func (r ComputeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fields []map[string]any
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, map[string]any{
					"field": fe.Namespace(),
					"rule":  fe.Tag(),
				})
			}
		}
		return &common.AppError{
			Code:       "INVALID_AMOUNT",
			Message:    "one or more amounts are invalid",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    fields,
		}
	}
	if strings.EqualFold(r.DiscountMode, string(ChargePercent)) && r.DiscountValue > 100 {
		return &common.AppError{
			Code:       "INVALID_AMOUNT",
			Message:    "percentage discount cannot exceed 100",
			HTTPStatus: http.StatusBadRequest,
			Details:    map[string]any{"field": "discount_value"},
		}
	}
	return nil
}

// ToInvoice resolves treatments against the catalog and builds the engine
// input. Unknown tax rates are a validation failure, not a clamp: a rate the
// catalog never offered means the client is out of sync.
func (r ComputeRequest) ToInvoice(rel tax.Relationship) (Invoice, error) {
	inv := Invoice{
		Items:    make([]LineItem, 0, len(r.Items)),
		Discount: chargeOf(r.DiscountMode, r.DiscountValue),
	}
	for i, item := range r.Items {
		treatment, ok := tax.Lookup(rel, money.FromFloat(item.TaxRate))
		if !ok {
			return Invoice{}, &common.AppError{
				Code:       "VALIDATION_ERROR",
				Message:    fmt.Sprintf("unknown tax rate %v on item %d", item.TaxRate, i),
				HTTPStatus: http.StatusBadRequest,
				Details:    map[string]any{"field": fmt.Sprintf("items[%d].tax_rate", i)},
			}
		}
		inv.Items = append(inv.Items, LineItem{
			Description:   strings.TrimSpace(item.Description),
			Qty:           money.FromFloat(item.Qty),
			UnitRate:      money.FromFloat(item.UnitRate),
			ServiceCharge: chargeOf(item.ServiceChargeMode, item.ServiceCharge),
			Treatment:     treatment,
		})
	}
	return inv, nil
}

func chargeOf(mode string, value float64) Charge {
	if strings.EqualFold(strings.TrimSpace(mode), string(ChargePercent)) {
		return PercentCharge(value)
	}
	return FixedCharge(value)
}
