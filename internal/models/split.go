package models

// ShareStatus tracks one participant's progress inside a split session.
type ShareStatus string

const (
	SharePending ShareStatus = "pending"
	SharePaid    ShareStatus = "paid"
)

// SplitShare is one participant's slice of an active split session.
type SplitShare struct {
	// Participant is the display name of the share's owner.
	Participant string `json:"guest_name"`

	// UserID is set when the share belongs to an authenticated user.
	UserID string `json:"user_id,omitempty"`

	// ExpectedAmount is this participant's equal share of the remaining
	// balance at the time the session was (re)initialized.
	ExpectedAmount float64 `json:"expected_amount"`

	// AmountPaid is what the participant has actually paid against the share.
	AmountPaid float64 `json:"amount_paid"`

	Status ShareStatus `json:"status"`

	// PaidAt is the Unix timestamp of payment, zero while pending.
	PaidAt int64 `json:"paid_at,omitempty"`
}

// SplitSession is the active equal division of a table's remaining balance.
//
// Sessions are replaced wholesale on recalculation rather than patched:
// whenever the participant set or the remaining balance changes materially,
// a fresh session is derived from the ledger. The absence of a session is
// the terminal (closed) state — there is no explicit Closed object.
//
// At creation time sum(ExpectedAmount) equals the table's remaining amount;
// new orders arriving afterwards make it drift until the next recalculation.
type SplitSession struct {
	TableID   string       `json:"table_id"`
	Shares    []SplitShare `json:"split_payments"`
	CreatedAt int64        `json:"created_at"`
}

// PendingShares returns the shares that have not been paid yet.
func (s *SplitSession) PendingShares() []SplitShare {
	var pending []SplitShare
	for _, share := range s.Shares {
		if share.Status == SharePending {
			pending = append(pending, share)
		}
	}
	return pending
}

// FindShare returns the share for the given participant name, or nil.
func (s *SplitSession) FindShare(participant string) *SplitShare {
	for i := range s.Shares {
		if s.Shares[i].Participant == participant {
			return &s.Shares[i]
		}
	}
	return nil
}
