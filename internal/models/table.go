package models

// TableStatus summarizes how much of a table's bill has been settled.
type TableStatus string

const (
	TableNotPaid TableStatus = "not_paid"
	TablePartial TableStatus = "partial"
	TablePaid    TableStatus = "paid"
)

// TableSummary holds the table-level totals derived from the dish-order
// ledger plus any table-level amount payments.
//
// Invariants: TotalAmount == PaidAmount + RemainingAmount, and
// RemainingAmount >= 0. The summary is derived, never stored; a
// server-computed summary always wins over a locally derived one because
// other devices at the same table mutate the ledger concurrently.
type TableSummary struct {
	TableID         string      `json:"table_id"`
	TotalAmount     float64     `json:"total_amount"`
	PaidAmount      float64     `json:"paid_amount"`
	RemainingAmount float64     `json:"remaining_amount"`
	ItemCount       int         `json:"no_items"`
	Status          TableStatus `json:"status"`
}

// Participant is a guest or authenticated user attached to a table session.
//
// DisplayName is unique within a table only by convention; the identity key
// is UserID when authenticated, else GuestID. A participant is "settled"
// once any of the paid totals is above zero.
type Participant struct {
	TableID string `json:"table_id"`

	// DisplayName is shown on the shared bill. Cosmetic only.
	DisplayName string `json:"guest_name"`

	// UserID is present when the participant is authenticated.
	UserID string `json:"user_id,omitempty"`

	// GuestID is the session-issued key for unauthenticated guests.
	GuestID string `json:"guest_id,omitempty"`

	// TotalPaidIndividual sums payments made for this participant's own dishes.
	TotalPaidIndividual float64 `json:"total_paid_individual"`

	// TotalPaidSplit sums payments made as equal-share contributions.
	TotalPaidSplit float64 `json:"total_paid_split"`

	// TotalPaidAmount sums table-level amount payments made by this participant.
	TotalPaidAmount float64 `json:"total_paid_amount"`

	// UpdatedAt is the Unix timestamp of the last payment activity.
	UpdatedAt int64 `json:"updated_at"`
}

// IdentityKey returns the key participants are deduplicated by within a
// table: the user ID when authenticated, otherwise the guest ID, falling
// back to the display name for legacy rows that predate guest IDs.
func (p Participant) IdentityKey() string {
	if p.UserID != "" {
		return p.UserID
	}
	if p.GuestID != "" {
		return p.GuestID
	}
	return p.DisplayName
}

// Settled reports whether this participant has paid anything at all,
// individually, as a split share, or as a table-level amount. Settled
// participants are excluded from equal-share denominators so nobody is
// charged a recomputed share after already paying.
func (p Participant) Settled() bool {
	return p.TotalPaidIndividual+p.TotalPaidSplit+p.TotalPaidAmount > 0
}
