// Package split computes per-payer base amounts for the five payment
// strategies and derives equal-share split sessions from the ledger.
//
// Everything here is a stateless function of the current table snapshot;
// callers supply a freshly reconciled summary plus the dish and
// participant lists, and re-resolve after every mutation.
package split

import (
	"slices"

	"github.com/XquisitoAI/xquisito-backend/internal/errs"
	"github.com/XquisitoAI/xquisito-backend/internal/ledger"
	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

// Context carries the table snapshot and caller-supplied parameters a
// strategy resolution needs. Summary must already be reconciled against
// the server-side value.
type Context struct {
	Summary      models.TableSummary
	Dishes       []models.DishOrder
	Participants []models.Participant
	Session      *models.SplitSession

	// CurrentParticipant is the payer's display name (user-items).
	CurrentParticipant string

	// ChosenAmount is set for the choose-amount strategy.
	ChosenAmount float64

	// SelectedDishIDs is set for the select-items strategy.
	SelectedDishIDs []string
}

// ResolveBaseAmount computes the payer's owed base amount under the given
// strategy. It never returns a negative amount. Choose-amount inputs that
// are non-positive or exceed the remaining balance are rejected, not
// silently clamped; an empty select-items selection is likewise rejected,
// and an equal-shares payment from a payer outside the eligible set (a
// participant who already settled, or was never part of the split) is
// rejected so a share sized for the remaining diners is never charged to
// someone else.
func ResolveBaseAmount(strategy models.Strategy, ctx Context) (float64, error) {
	switch strategy {
	case models.StrategyFullBill:
		return ctx.Summary.RemainingAmount, nil

	case models.StrategyUserItems:
		var sum float64
		for _, d := range ledger.UnpaidDishes(ctx.Dishes) {
			if d.PayerName == ctx.CurrentParticipant {
				sum += d.TotalPrice
			}
		}
		return sum, nil

	case models.StrategyEqualShares:
		eligible := EligibleParticipants(ctx.Session, ctx.Dishes, ctx.Participants)
		if len(eligible) == 0 || ctx.Summary.RemainingAmount <= 0 {
			return 0, nil
		}
		if !slices.Contains(eligible, ctx.CurrentParticipant) {
			return 0, errs.Validation("%s is not part of the equal split", ctx.CurrentParticipant)
		}
		return ctx.Summary.RemainingAmount / float64(len(eligible)), nil

	case models.StrategyChooseAmount:
		if ctx.ChosenAmount <= 0 {
			return 0, errs.Validation("enter an amount greater than zero")
		}
		if ctx.ChosenAmount > ctx.Summary.RemainingAmount {
			return 0, errs.Validation("amount exceeds the remaining balance of %.2f", ctx.Summary.RemainingAmount)
		}
		return ctx.ChosenAmount, nil

	case models.StrategySelectItems:
		if len(ctx.SelectedDishIDs) == 0 {
			return 0, errs.Validation("select at least one item")
		}
		selected := make(map[string]bool, len(ctx.SelectedDishIDs))
		for _, id := range ctx.SelectedDishIDs {
			selected[id] = true
		}
		var sum float64
		for _, d := range ledger.UnpaidDishes(ctx.Dishes) {
			if selected[d.ID] {
				sum += d.TotalPrice
				delete(selected, d.ID)
			}
		}
		if len(selected) > 0 {
			return 0, errs.Validation("selection includes items that are already paid or unknown")
		}
		return sum, nil

	default:
		return 0, errs.Validation("unknown payment strategy %q", strategy)
	}
}

// EligibleParticipants derives who still counts toward an equal-shares
// denominator, in priority order:
//
//  1. the pending shares of an active split session, when one exists;
//  2. otherwise the distinct payers of currently-unpaid dishes.
//
// In both cases participants who have already paid anything — their own
// items, a split share, or a table-level amount — are excluded, so a
// recomputed share never double-charges someone who settled earlier.
func EligibleParticipants(session *models.SplitSession, dishes []models.DishOrder, participants []models.Participant) []string {
	settled := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.Settled() {
			settled[p.DisplayName] = true
		}
	}

	var candidates []string
	if session != nil && len(session.Shares) > 0 {
		for _, share := range session.PendingShares() {
			candidates = append(candidates, share.Participant)
		}
	} else {
		candidates = ledger.DistinctPayers(ledger.UnpaidDishes(dishes))
	}

	var eligible []string
	for _, name := range candidates {
		if !settled[name] {
			eligible = append(eligible, name)
		}
	}
	return eligible
}

// Options reports which strategies are currently payable for the given
// payer, driven by what remains owed and by the payer's own standing:
// equal shares is offered only to payers still in the eligible set.
func Options(ctx Context) models.PaymentOptions {
	unpaid := ledger.UnpaidDishes(ctx.Dishes)
	remaining := ctx.Summary.RemainingAmount
	eligible := EligibleParticipants(ctx.Session, ctx.Dishes, ctx.Participants)

	var userOwed float64
	for _, d := range unpaid {
		if d.PayerName == ctx.CurrentParticipant {
			userOwed += d.TotalPrice
		}
	}

	return models.PaymentOptions{
		FullBillEnabled:     remaining > 0,
		UserItemsEnabled:    userOwed > 0,
		EqualSharesEnabled:  remaining > 0 && slices.Contains(eligible, ctx.CurrentParticipant),
		ChooseAmountEnabled: remaining > 0,
		SelectItemsEnabled:  len(unpaid) > 0,
	}
}
