// Package service orchestrates table ordering and payment flows on top of
// the storage, gateway, and events layers.
package service

import (
	"context"
	"log/slog"

	"github.com/XquisitoAI/xquisito-backend/internal/charge"
	"github.com/XquisitoAI/xquisito-backend/internal/errs"
	"github.com/XquisitoAI/xquisito-backend/internal/events"
	"github.com/XquisitoAI/xquisito-backend/internal/gateway"
	"github.com/XquisitoAI/xquisito-backend/internal/ledger"
	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/split"
	"github.com/XquisitoAI/xquisito-backend/internal/storage"
)

// ChargeState tracks a payment submission through its lifecycle. Ledger
// mutations happen only in the confirmed arm; a rejected or redirected
// charge leaves the table untouched and re-attemptable.
type ChargeState string

const (
	ChargeIdle      ChargeState = "idle"
	ChargePending   ChargeState = "pending"
	ChargeConfirmed ChargeState = "confirmed"
	ChargeRejected  ChargeState = "rejected"
)

// TableService implements the table ordering and payment operations.
type TableService struct {
	store    storage.Store
	gateway  gateway.Gateway
	events   events.Publisher
	currency string
}

// NewTableService creates a TableService with the given backends.
func NewTableService(store storage.Store, gw gateway.Gateway, pub events.Publisher, currency string) *TableService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &TableService{store: store, gateway: gw, events: pub, currency: currency}
}

// PaymentRequest is one payer's payment submission.
type PaymentRequest struct {
	TableID  string
	Identity models.Participant
	Strategy models.Strategy

	// TipPercent selects a preset; CustomTip, when positive, overrides it.
	TipPercent float64
	CustomTip  float64

	// ChosenAmount is set for the choose-amount strategy.
	ChosenAmount float64

	// SelectedDishIDs is set for the select-items strategy.
	SelectedDishIDs []string

	// PaymentMethodID references the payer's stored card.
	PaymentMethodID string
}

// PaymentResult reports the outcome of a payment submission.
type PaymentResult struct {
	State       ChargeState         `json:"state"`
	Breakdown   charge.Breakdown    `json:"breakdown"`
	ChargeID    string              `json:"charge_id,omitempty"`
	RedirectURL string              `json:"redirect_url,omitempty"`
	Summary     models.TableSummary `json:"summary"`
}

// tableState is one consistent read of everything payment logic needs.
type tableState struct {
	summary      models.TableSummary
	orders       []models.DishOrder
	participants []models.Participant
	session      *models.SplitSession
}

func (s *TableService) load(ctx context.Context, tableID string) (*tableState, error) {
	orders, err := s.store.ListDishOrders(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load table orders", err)
	}
	amountPaid, err := s.store.TableAmountPaid(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load table payments", err)
	}
	participants, err := s.store.ListParticipants(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load participants", err)
	}
	session, err := s.store.GetSplitSession(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load split session", err)
	}
	return &tableState{
		summary:      ledger.ComputeAggregate(tableID, orders, amountPaid),
		orders:       orders,
		participants: participants,
		session:      session,
	}, nil
}

func (state *tableState) splitContext(identity models.Participant, req *PaymentRequest) split.Context {
	ctx := split.Context{
		Summary:            state.summary,
		Dishes:             state.orders,
		Participants:       state.participants,
		Session:            state.session,
		CurrentParticipant: identity.DisplayName,
	}
	if req != nil {
		ctx.ChosenAmount = req.ChosenAmount
		ctx.SelectedDishIDs = req.SelectedDishIDs
	}
	return ctx
}

// SubmitOrder converts a cart into dish orders on the table's ledger,
// registers the payer as a participant, and recalculates any active split.
func (s *TableService) SubmitOrder(ctx context.Context, tableID string, identity models.Participant, items []models.CartItem) ([]models.DishOrder, error) {
	if len(items) == 0 {
		return nil, errs.Validation("cart is empty")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errs.Validation("quantity must be positive for %q", item.Item)
		}
		if item.UnitPrice < 0 {
			return nil, errs.Validation("price cannot be negative for %q", item.Item)
		}
	}

	orders := make([]*models.DishOrder, len(items))
	for i, item := range items {
		orders[i] = &models.DishOrder{
			TableID:         tableID,
			Item:            item.Item,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.LineTotal(),
			PayerName:       identity.DisplayName,
			UserID:          identity.UserID,
			GuestID:         identity.GuestID,
			SelectedOptions: item.SelectedOptions,
			Images:          item.Images,
		}
	}

	identity.TableID = tableID
	if err := s.store.EnsureParticipant(ctx, identity); err != nil {
		return nil, errs.Network("failed to register participant", err)
	}
	if err := s.store.CreateDishOrders(ctx, orders); err != nil {
		return nil, errs.Network("failed to save orders", err)
	}

	// A new order changes the remaining balance, so an active split is stale.
	if err := s.recalculate(ctx, tableID); err != nil {
		slog.Warn("split recalculation after order failed", "table_id", tableID, "error", err)
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeOrderCreated,
		TableID:     tableID,
		Participant: identity.DisplayName,
		OrderCount:  len(orders),
	})

	created := make([]models.DishOrder, len(orders))
	for i, o := range orders {
		created[i] = *o
	}
	return created, nil
}

// Summary returns the authoritative table aggregate.
func (s *TableService) Summary(ctx context.Context, tableID string) (models.TableSummary, error) {
	state, err := s.load(ctx, tableID)
	if err != nil {
		return models.TableSummary{}, err
	}
	return state.summary, nil
}

// Orders returns the table's full ledger, oldest first.
func (s *TableService) Orders(ctx context.Context, tableID string) ([]models.DishOrder, error) {
	orders, err := s.store.ListDishOrders(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load table orders", err)
	}
	return orders, nil
}

// Participants returns everyone attached to the table with their paid totals.
func (s *TableService) Participants(ctx context.Context, tableID string) ([]models.Participant, error) {
	participants, err := s.store.ListParticipants(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load participants", err)
	}
	return participants, nil
}

// SplitStatus returns the table's active split session, nil when closed.
func (s *TableService) SplitStatus(ctx context.Context, tableID string) (*models.SplitSession, error) {
	session, err := s.store.GetSplitSession(ctx, tableID)
	if err != nil {
		return nil, errs.Network("failed to load split session", err)
	}
	return session, nil
}

// PaymentOptions reports which strategies the participant can use right now.
func (s *TableService) PaymentOptions(ctx context.Context, tableID string, identity models.Participant) (models.PaymentOptions, error) {
	state, err := s.load(ctx, tableID)
	if err != nil {
		return models.PaymentOptions{}, err
	}
	return split.Options(state.splitContext(identity, nil)), nil
}

// TipBreakdown resolves the base amount for the request and composes the
// full charge without touching the gateway or the ledger. This backs the
// tip-selection view.
func (s *TableService) TipBreakdown(ctx context.Context, req PaymentRequest) (charge.Breakdown, error) {
	state, err := s.load(ctx, req.TableID)
	if err != nil {
		return charge.Breakdown{}, err
	}
	base, err := split.ResolveBaseAmount(req.Strategy, state.splitContext(req.Identity, &req))
	if err != nil {
		return charge.Breakdown{}, err
	}
	return charge.Compose(base, req.TipPercent, req.CustomTip)
}

// SubmitPayment runs a full payment: resolve the base amount, compose the
// charge, attempt it with the gateway, and only then mutate the ledger.
//
// A declined or failed charge leaves the table exactly as it was. A
// redirect-required result also persists nothing; the charge is
// re-attemptable from the same request once the payer completes it.
func (s *TableService) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	state, err := s.load(ctx, req.TableID)
	if err != nil {
		return nil, err
	}

	base, err := split.ResolveBaseAmount(req.Strategy, state.splitContext(req.Identity, &req))
	if err != nil {
		return nil, err
	}
	if base <= 0 {
		return nil, errs.Validation("nothing left to pay for this selection")
	}

	breakdown, err := charge.Compose(base, req.TipPercent, req.CustomTip)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{State: ChargePending, Breakdown: breakdown}
	chargeResult, err := s.gateway.Charge(ctx, gateway.ChargeRequest{
		PaymentMethodID: req.PaymentMethodID,
		Amount:          breakdown.TotalAmount,
		Currency:        s.currency,
		Description:     "Table " + req.TableID,
	})
	if err != nil {
		recordCharge(req.Strategy, "rejected")
		result.State = ChargeRejected
		slog.Warn("charge rejected",
			"table_id", req.TableID,
			"strategy", req.Strategy,
			"amount", breakdown.TotalAmount,
			"error", err,
		)
		return result, err
	}

	result.ChargeID = chargeResult.ChargeID
	if !chargeResult.Confirmed {
		// Redirect flows resolve out-of-band; nothing is persisted yet.
		result.RedirectURL = chargeResult.RedirectURL
		recordCharge(req.Strategy, "redirected")
		return result, nil
	}

	if err := s.settle(ctx, state, req, base); err != nil {
		// Money moved but the ledger write failed. Surface loudly; the
		// charge ID is the reconciliation handle.
		slog.Error("ledger update failed after confirmed charge",
			"table_id", req.TableID,
			"charge_id", chargeResult.ChargeID,
			"error", err,
		)
		return nil, err
	}
	recordCharge(req.Strategy, "confirmed")
	result.State = ChargeConfirmed

	if err := s.recalculate(ctx, req.TableID); err != nil {
		slog.Warn("split recalculation after payment failed", "table_id", req.TableID, "error", err)
	}

	summary, err := s.Summary(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	s.publish(ctx, events.Event{
		Type:        events.TypePaymentSettled,
		TableID:     req.TableID,
		Participant: req.Identity.DisplayName,
		Amount:      breakdown.TotalAmount,
	})
	if summary.Status == models.TablePaid {
		s.publish(ctx, events.Event{Type: events.TypeTableSettled, TableID: req.TableID})
	}

	slog.Info("payment confirmed",
		"table_id", req.TableID,
		"strategy", req.Strategy,
		"participant", req.Identity.DisplayName,
		"base", base,
		"total", breakdown.TotalAmount,
		"charge_id", chargeResult.ChargeID,
	)
	return result, nil
}

// settle applies the confirmed charge to the ledger per strategy.
func (s *TableService) settle(ctx context.Context, state *tableState, req PaymentRequest, base float64) error {
	identity := req.Identity
	identity.TableID = req.TableID

	switch req.Strategy {
	case models.StrategyUserItems:
		for _, d := range ledger.UnpaidDishes(state.orders) {
			if d.PayerName == identity.DisplayName {
				if err := s.store.MarkDishPaid(ctx, d.ID); err != nil {
					return errs.Network("failed to mark dish paid", err)
				}
			}
		}
		return s.addPaid(ctx, identity, storage.PaidIndividual, base)

	case models.StrategySelectItems:
		for _, id := range req.SelectedDishIDs {
			if err := s.store.MarkDishPaid(ctx, id); err != nil {
				return errs.Network("failed to mark dish paid", err)
			}
		}
		return s.addPaid(ctx, identity, storage.PaidIndividual, base)

	case models.StrategyEqualShares:
		if state.session != nil {
			if err := s.store.MarkSharePaid(ctx, req.TableID, identity.DisplayName, base); err != nil {
				slog.Warn("no pending share to mark, recording payment anyway",
					"table_id", req.TableID,
					"participant", identity.DisplayName,
					"error", err,
				)
			}
		}
		if err := s.store.PayTableAmount(ctx, req.TableID, base); err != nil {
			return errs.Network("failed to apply share payment", err)
		}
		return s.addPaid(ctx, identity, storage.PaidSplit, base)

	case models.StrategyFullBill, models.StrategyChooseAmount:
		if err := s.store.PayTableAmount(ctx, req.TableID, base); err != nil {
			return errs.Network("failed to apply table payment", err)
		}
		return s.addPaid(ctx, identity, storage.PaidAmount, base)

	default:
		return errs.Validation("unknown payment strategy %q", req.Strategy)
	}
}

func (s *TableService) addPaid(ctx context.Context, identity models.Participant, bucket storage.PaidBucket, amount float64) error {
	if err := s.store.AddParticipantPayment(ctx, identity, bucket, amount); err != nil {
		return errs.Network("failed to update participant totals", err)
	}
	return nil
}

// MarkDishPaid settles one dish directly. Already-paid dishes are a
// no-op so concurrent devices can repeat the call safely.
func (s *TableService) MarkDishPaid(ctx context.Context, tableID, orderID string) error {
	order, err := s.store.GetDishOrder(ctx, orderID)
	if err != nil {
		return errs.NotFound("dish order %s not found", orderID)
	}
	if order.TableID != tableID {
		return errs.NotFound("dish order %s not found on table %s", orderID, tableID)
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil
	}
	if err := s.store.MarkDishPaid(ctx, orderID); err != nil {
		return errs.Network("failed to mark dish paid", err)
	}
	if err := s.recalculate(ctx, tableID); err != nil {
		slog.Warn("split recalculation after dish payment failed", "table_id", tableID, "error", err)
	}
	return nil
}

// UpdateDishStatus moves a dish through the kitchen workflow.
func (s *TableService) UpdateDishStatus(ctx context.Context, tableID, orderID string, status models.DishStatus) error {
	if !models.ValidDishStatus(status) {
		return errs.Validation("unknown dish status %q", status)
	}
	order, err := s.store.GetDishOrder(ctx, orderID)
	if err != nil {
		return errs.NotFound("dish order %s not found", orderID)
	}
	if order.TableID != tableID {
		return errs.NotFound("dish order %s not found on table %s", orderID, tableID)
	}
	if err := s.store.UpdateDishStatus(ctx, orderID, status); err != nil {
		return errs.Network("failed to update dish status", err)
	}
	return nil
}

// InitializeSplit starts an equal split of the remaining balance across
// the named participants, replacing any existing session.
func (s *TableService) InitializeSplit(ctx context.Context, tableID string, names []string) (*models.SplitSession, error) {
	state, err := s.load(ctx, tableID)
	if err != nil {
		return nil, err
	}
	session, err := split.BuildSession(tableID, state.summary.RemainingAmount, state.participants, names)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSplitSession(ctx, tableID, session); err != nil {
		return nil, errs.Network("failed to save split session", err)
	}
	slog.Info("split initialized", "table_id", tableID, "participants", len(names))
	return session, nil
}

// Recalculate re-derives the table's split session from the current
// ledger and replaces it wholesale. With one or zero unsettled
// participants the session closes (is removed). Idempotent on an
// unchanged ledger.
func (s *TableService) Recalculate(ctx context.Context, tableID string) (*models.SplitSession, error) {
	if err := s.recalculate(ctx, tableID); err != nil {
		return nil, err
	}
	return s.SplitStatus(ctx, tableID)
}

func (s *TableService) recalculate(ctx context.Context, tableID string) error {
	orders, err := s.store.ListDishOrders(ctx, tableID)
	if err != nil {
		return errs.Network("failed to load table orders", err)
	}
	amountPaid, err := s.store.TableAmountPaid(ctx, tableID)
	if err != nil {
		return errs.Network("failed to load table payments", err)
	}
	participants, err := s.store.ListParticipants(ctx, tableID)
	if err != nil {
		return errs.Network("failed to load participants", err)
	}

	summary := ledger.ComputeAggregate(tableID, orders, amountPaid)
	next := split.NextSession(tableID, summary, orders, participants)
	if err := s.store.ReplaceSplitSession(ctx, tableID, next); err != nil {
		return errs.Network("failed to replace split session", err)
	}
	return nil
}

// LinkUser attaches a guest's orders and totals to an authenticated user
// after a mid-session login. Returns how many orders moved.
func (s *TableService) LinkUser(ctx context.Context, tableID, guestID, userID string) (int, error) {
	if guestID == "" || userID == "" {
		return 0, errs.Validation("guest and user IDs are required")
	}
	moved, err := s.store.LinkGuestOrders(ctx, tableID, guestID, userID)
	if err != nil {
		return 0, errs.Network("failed to link guest orders", err)
	}
	slog.Info("guest linked to user", "table_id", tableID, "guest_id", guestID, "user_id", userID, "orders", moved)
	return moved, nil
}

func (s *TableService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("event publish failed", "type", event.Type, "table_id", event.TableID, "error", err)
	}
}
