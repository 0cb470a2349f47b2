package models

// Strategy selects how the payer's base amount is derived from the table state.
type Strategy string

const (
	// StrategyFullBill pays the entire remaining balance of the table.
	StrategyFullBill Strategy = "full-bill"

	// StrategyUserItems pays the payer's own unpaid dishes.
	StrategyUserItems Strategy = "user-items"

	// StrategyEqualShares pays one equal share of the remaining balance.
	StrategyEqualShares Strategy = "equal-shares"

	// StrategyChooseAmount pays a caller-chosen amount up to the remainder.
	StrategyChooseAmount Strategy = "choose-amount"

	// StrategySelectItems pays a selected subset of unpaid dishes.
	StrategySelectItems Strategy = "select-items"
)

// ValidStrategy reports whether s is one of the five known strategies.
// Unknown strategy strings are rejected at the boundary rather than
// falling through to a default.
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyFullBill, StrategyUserItems, StrategyEqualShares,
		StrategyChooseAmount, StrategySelectItems:
		return true
	}
	return false
}

// ChargeRequest is the full breakdown of a single charge. It is ephemeral:
// composed just before the gateway call and discarded once the ledger
// mutations for a successful charge have been issued.
//
// TotalAmount = BaseAmount + TipAmount + TaxAmount + CommissionAmount, where
// tax is 16% of (base + tip) and commission is 2% of (base + tip + tax).
type ChargeRequest struct {
	Strategy         Strategy `json:"strategy"`
	BaseAmount       float64  `json:"base_amount"`
	TipAmount        float64  `json:"tip_amount"`
	TaxAmount        float64  `json:"tax_amount"`
	CommissionAmount float64  `json:"commission_amount"`
	TotalAmount      float64  `json:"total_amount"`

	// SelectedDishIDs is populated only for StrategySelectItems.
	SelectedDishIDs []string `json:"selected_dish_ids,omitempty"`
}

// PaymentOptions tells the UI which strategies are currently payable,
// driven purely by whether anything remains owed.
type PaymentOptions struct {
	FullBillEnabled     bool `json:"full_bill_enabled"`
	UserItemsEnabled    bool `json:"user_items_enabled"`
	EqualSharesEnabled  bool `json:"equal_shares_enabled"`
	ChooseAmountEnabled bool `json:"choose_amount_enabled"`
	SelectItemsEnabled  bool `json:"select_items_enabled"`
}
