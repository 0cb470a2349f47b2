// Package charge composes the final payable amount from a resolved base:
// tip, tax and service commission layered in a fixed order.
package charge

import (
	"github.com/XquisitoAI/xquisito-backend/internal/errs"
	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/money"
)

const (
	// TaxRate is applied to the tipped subtotal.
	TaxRate = 0.16

	// CommissionRate is the platform fee applied after tax.
	CommissionRate = 0.02
)

// TipPresets are the selectable tip percentages.
var TipPresets = []float64{0, 10, 15, 20}

// Breakdown is the itemized composition of a charge. All intermediate
// amounts are kept unrounded; only Total is rounded, at the very end, so
// the parts always recompose to the whole within a cent.
type Breakdown struct {
	BaseAmount       float64 `json:"base_amount"`
	TipAmount        float64 `json:"tip_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	CommissionAmount float64 `json:"commission_amount"`
	TotalAmount      float64 `json:"total_amount"`
}

// Compose builds the charge breakdown for a base amount.
//
// customTip, when positive, overrides the percentage entirely; otherwise
// the tip is tipPercent of the base. Order matters: tax applies to the
// tipped subtotal and commission applies on top of tax, so
// reordering changes the total.
func Compose(baseAmount, tipPercent, customTip float64) (Breakdown, error) {
	if baseAmount < 0 {
		return Breakdown{}, errs.Validation("base amount cannot be negative")
	}
	if customTip < 0 {
		return Breakdown{}, errs.Validation("tip cannot be negative")
	}
	if customTip == 0 && !validTipPercent(tipPercent) {
		return Breakdown{}, errs.Validation("unsupported tip percentage %.0f", tipPercent)
	}

	tip := customTip
	if tip == 0 {
		tip = money.ApplyPercentage(baseAmount, tipPercent)
	}
	subtotal := baseAmount + tip
	tax := subtotal * TaxRate
	commission := (subtotal + tax) * CommissionRate

	return Breakdown{
		BaseAmount:       baseAmount,
		TipAmount:        tip,
		TaxAmount:        tax,
		CommissionAmount: commission,
		TotalAmount:      money.RoundCurrency(subtotal + tax + commission),
	}, nil
}

// Request converts a breakdown into the charge request handed to the
// payment gateway for the given strategy.
func (b Breakdown) Request(strategy models.Strategy, selectedDishIDs []string) models.ChargeRequest {
	return models.ChargeRequest{
		Strategy:         strategy,
		BaseAmount:       b.BaseAmount,
		TipAmount:        b.TipAmount,
		TaxAmount:        b.TaxAmount,
		CommissionAmount: b.CommissionAmount,
		TotalAmount:      b.TotalAmount,
		SelectedDishIDs:  selectedDishIDs,
	}
}

func validTipPercent(pct float64) bool {
	for _, p := range TipPresets {
		if pct == p {
			return true
		}
	}
	return false
}
