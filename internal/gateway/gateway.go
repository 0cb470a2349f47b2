// Package gateway abstracts the external card-charging provider.
//
// The service layer treats a charge as a black box: hand over a stored
// payment method and a final amount, get back either a confirmation, a
// redirect the payer must complete, or a decline. Ledger mutations only
// ever happen after a confirmed charge.
package gateway

import "context"

// ChargeRequest is what the provider needs to attempt a charge.
type ChargeRequest struct {
	// PaymentMethodID references a card stored with the provider.
	PaymentMethodID string `json:"payment_method_id"`

	// Amount is the final charged amount, already rounded to cents.
	Amount float64 `json:"amount"`

	// Currency is the ISO 4217 code, e.g. "MXN".
	Currency string `json:"currency"`

	// Description appears on the payer's statement.
	Description string `json:"description"`
}

// ChargeResult is the provider's answer to a charge attempt.
type ChargeResult struct {
	// ChargeID is the provider's reference for the attempt.
	ChargeID string `json:"charge_id"`

	// Confirmed means the money moved and ledger mutations may proceed.
	Confirmed bool `json:"confirmed"`

	// RedirectURL is set when the payer must complete an extra step
	// (3-D Secure and the like). The charge is neither confirmed nor
	// declined until the provider reports back.
	RedirectURL string `json:"redirect_url,omitempty"`

	// DeclineReason is the provider's message for a refused charge.
	DeclineReason string `json:"decline_reason,omitempty"`
}

// Gateway is the charging provider seen from the service layer.
type Gateway interface {
	// Charge attempts to charge the payment method. Provider declines
	// come back as gateway-decline errors; transport failures as
	// network errors. A result with a RedirectURL is not yet money.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
