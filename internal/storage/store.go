// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

// PaidBucket names which running total a participant payment lands in.
type PaidBucket string

const (
	// PaidIndividual covers payments for the participant's own dishes
	// (user-items and select-items charges).
	PaidIndividual PaidBucket = "individual"

	// PaidSplit covers equal-share contributions.
	PaidSplit PaidBucket = "split"

	// PaidAmount covers table-level amount payments (full-bill and
	// choose-amount charges).
	PaidAmount PaidBucket = "amount"
)

// Store defines the interface for table ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateDishOrders persists a batch of dish orders atomically.
	// Missing IDs and timestamps are populated by the store.
	CreateDishOrders(ctx context.Context, orders []*models.DishOrder) error

	// GetDishOrder retrieves a single dish order by its ID.
	// Returns nil and an error if the order is not found.
	GetDishOrder(ctx context.Context, orderID string) (*models.DishOrder, error)

	// ListDishOrders returns every dish order on the table's ledger,
	// oldest first.
	ListDishOrders(ctx context.Context, tableID string) ([]models.DishOrder, error)

	// MarkDishPaid transitions a dish order to paid. Marking an
	// already-paid dish is a no-op, not an error.
	MarkDishPaid(ctx context.Context, orderID string) error

	// UpdateDishStatus moves a dish through the kitchen workflow.
	UpdateDishStatus(ctx context.Context, orderID string, status models.DishStatus) error

	// PayTableAmount applies a table-level amount payment: the oldest
	// unpaid dishes whose full price fits within the amount are marked
	// paid, and any residual is recorded as a table payment row that
	// counts toward the table's paid total.
	PayTableAmount(ctx context.Context, tableID string, amount float64) error

	// TableAmountPaid returns the sum of residual table payment rows
	// for the table.
	TableAmountPaid(ctx context.Context, tableID string) (float64, error)

	// EnsureParticipant registers a participant on the table if their
	// identity key is not present yet. Existing paid totals are kept.
	EnsureParticipant(ctx context.Context, p models.Participant) error

	// ListParticipants returns every participant attached to the table.
	ListParticipants(ctx context.Context, tableID string) ([]models.Participant, error)

	// AddParticipantPayment increments one of the participant's running
	// paid totals, registering the participant first if needed.
	AddParticipantPayment(ctx context.Context, p models.Participant, bucket PaidBucket, amount float64) error

	// GetSplitSession returns the table's active split session, or nil
	// when none exists (the implicit closed state).
	GetSplitSession(ctx context.Context, tableID string) (*models.SplitSession, error)

	// ReplaceSplitSession swaps the table's split session wholesale.
	// A nil session deletes the active one.
	ReplaceSplitSession(ctx context.Context, tableID string, session *models.SplitSession) error

	// MarkSharePaid records a payment against the participant's pending
	// share in the table's active session.
	MarkSharePaid(ctx context.Context, tableID, participant string, amount float64) error

	// LinkGuestOrders reassigns a guest's dish orders and participant row
	// to an authenticated user, returning how many orders moved.
	LinkGuestOrders(ctx context.Context, tableID, guestID, userID string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
