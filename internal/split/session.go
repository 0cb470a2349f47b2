package split

import (
	"time"

	"github.com/XquisitoAI/xquisito-backend/internal/errs"
	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

// BuildSession creates a fresh split session dividing remaining equally
// among the given participants, all shares pending. Expected amounts are
// left unrounded; rounding happens at the charge boundary so the shares
// still sum to the remaining balance.
func BuildSession(tableID string, remaining float64, participants []models.Participant, names []string) (*models.SplitSession, error) {
	if len(names) == 0 {
		return nil, errs.Validation("split requires at least one participant")
	}
	if remaining <= 0 {
		return nil, errs.Validation("nothing left to split")
	}

	byName := make(map[string]models.Participant, len(participants))
	for _, p := range participants {
		byName[p.DisplayName] = p
	}

	share := remaining / float64(len(names))
	session := &models.SplitSession{
		TableID:   tableID,
		CreatedAt: time.Now().Unix(),
	}
	for _, name := range names {
		s := models.SplitShare{
			Participant:    name,
			ExpectedAmount: share,
			Status:         models.SharePending,
		}
		if p, ok := byName[name]; ok {
			s.UserID = p.UserID
		}
		session.Shares = append(session.Shares, s)
	}
	return session, nil
}

// NextSession derives the session that should replace the current one
// after an order or payment event. The participant set is re-derived from
// the currently-unsettled payers on the ledger, and the session is rebuilt
// wholesale (full replace, not merge — simplicity over continuity):
//
//   - more than one unsettled participant → a fresh equal division;
//   - one or none → nil, the implicit closed state.
//
// Given the same ledger snapshot the result is identical on every call,
// so redundant recalculations from concurrent devices are harmless and
// last-write-wins on the stored session is acceptable.
func NextSession(tableID string, summary models.TableSummary, dishes []models.DishOrder, participants []models.Participant) *models.SplitSession {
	names := EligibleParticipants(nil, dishes, participants)
	if len(names) <= 1 || summary.RemainingAmount <= 0 {
		return nil
	}
	session, err := BuildSession(tableID, summary.RemainingAmount, participants, names)
	if err != nil {
		return nil
	}
	return session
}
