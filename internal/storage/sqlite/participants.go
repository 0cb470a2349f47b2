package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/storage"
)

// EnsureParticipant registers a participant if their identity key is new
// for the table. Paid totals on an existing row are never reset.
func (s *SQLiteStore) EnsureParticipant(ctx context.Context, p models.Participant) error {
	if p.UpdatedAt == 0 {
		p.UpdatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (table_id, identity_key, guest_name, user_id, guest_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (table_id, identity_key) DO UPDATE SET guest_name = excluded.guest_name`,
		p.TableID, p.IdentityKey(), p.DisplayName, p.UserID, p.GuestID, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure participant: %w", err)
	}
	return nil
}

// ListParticipants returns every participant attached to the table.
func (s *SQLiteStore) ListParticipants(ctx context.Context, tableID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_id, guest_name, user_id, guest_id, total_paid_individual, total_paid_split, total_paid_amount, updated_at
		 FROM participants WHERE table_id = ? ORDER BY updated_at, guest_name`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		err := rows.Scan(
			&p.TableID, &p.DisplayName, &p.UserID, &p.GuestID,
			&p.TotalPaidIndividual, &p.TotalPaidSplit, &p.TotalPaidAmount, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// AddParticipantPayment increments one of the participant's running paid
// totals, creating the row first if the participant is new to the table.
func (s *SQLiteStore) AddParticipantPayment(ctx context.Context, p models.Participant, bucket storage.PaidBucket, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}

	var column string
	switch bucket {
	case storage.PaidIndividual:
		column = "total_paid_individual"
	case storage.PaidSplit:
		column = "total_paid_split"
	case storage.PaidAmount:
		column = "total_paid_amount"
	default:
		return fmt.Errorf("unknown paid bucket: %s", bucket)
	}

	if err := s.EnsureParticipant(ctx, p); err != nil {
		return err
	}

	// column is one of three fixed names, never user input.
	query := fmt.Sprintf(
		"UPDATE participants SET %s = %s + ?, updated_at = ? WHERE table_id = ? AND identity_key = ?",
		column, column,
	)
	_, err := s.db.ExecContext(ctx, query, amount, time.Now().Unix(), p.TableID, p.IdentityKey())
	if err != nil {
		return fmt.Errorf("failed to add participant payment: %w", err)
	}
	return nil
}

// LinkGuestOrders reassigns a guest's orders and participant row to an
// authenticated user. Returns how many dish orders were moved.
func (s *SQLiteStore) LinkGuestOrders(ctx context.Context, tableID, guestID, userID string) (int, error) {
	if guestID == "" || userID == "" {
		return 0, fmt.Errorf("guest and user IDs are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE dish_orders SET user_id = ? WHERE table_id = ? AND guest_id = ?",
		userID, tableID, guestID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to link dish orders: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count linked orders: %w", err)
	}

	// The participant row is rekeyed from guest ID to user ID. If the user
	// already has a row on this table the guest row is simply dropped; its
	// totals predate authentication and belong to the same person, so merge.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO participants (table_id, identity_key, guest_name, user_id, guest_id, total_paid_individual, total_paid_split, total_paid_amount, updated_at)
		 SELECT table_id, ?, guest_name, ?, guest_id, total_paid_individual, total_paid_split, total_paid_amount, ?
		 FROM participants WHERE table_id = ? AND identity_key = ?
		 ON CONFLICT (table_id, identity_key) DO UPDATE SET
		   total_paid_individual = participants.total_paid_individual + excluded.total_paid_individual,
		   total_paid_split = participants.total_paid_split + excluded.total_paid_split,
		   total_paid_amount = participants.total_paid_amount + excluded.total_paid_amount,
		   updated_at = excluded.updated_at`,
		userID, userID, time.Now().Unix(), tableID, guestID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey participant: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"DELETE FROM participants WHERE table_id = ? AND identity_key = ?",
		tableID, guestID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to drop guest participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(moved), nil
}
