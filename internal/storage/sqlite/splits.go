package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

// GetSplitSession returns the table's active split session with its
// shares, or nil when no session exists.
func (s *SQLiteStore) GetSplitSession(ctx context.Context, tableID string) (*models.SplitSession, error) {
	session := &models.SplitSession{TableID: tableID}
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at FROM split_sessions WHERE table_id = ?",
		tableID,
	).Scan(&session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT participant, user_id, expected_amount, amount_paid, status, paid_at
		 FROM split_shares WHERE table_id = ? ORDER BY rowid`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get split shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.SplitShare
		err := rows.Scan(
			&share.Participant, &share.UserID, &share.ExpectedAmount,
			&share.AmountPaid, &share.Status, &share.PaidAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split share: %w", err)
		}
		session.Shares = append(session.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split shares: %w", err)
	}

	return session, nil
}

// ReplaceSplitSession swaps the table's session wholesale; recalculation
// never patches shares in place. A nil session closes the split.
func (s *SQLiteStore) ReplaceSplitSession(ctx context.Context, tableID string, session *models.SplitSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades to split_shares.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM split_sessions WHERE table_id = ?", tableID,
	); err != nil {
		return fmt.Errorf("failed to clear split session: %w", err)
	}

	if session != nil {
		createdAt := session.CreatedAt
		if createdAt == 0 {
			createdAt = time.Now().Unix()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO split_sessions (table_id, created_at) VALUES (?, ?)",
			tableID, createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert split session: %w", err)
		}
		for _, share := range session.Shares {
			status := share.Status
			if status == "" {
				status = models.SharePending
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO split_shares (table_id, participant, user_id, expected_amount, amount_paid, status, paid_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				tableID, share.Participant, share.UserID, share.ExpectedAmount,
				share.AmountPaid, status, share.PaidAt,
			); err != nil {
				return fmt.Errorf("failed to insert split share: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkSharePaid records a payment against the participant's pending share.
func (s *SQLiteStore) MarkSharePaid(ctx context.Context, tableID, participant string, amount float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE split_shares SET amount_paid = amount_paid + ?, status = ?, paid_at = ?
		 WHERE table_id = ? AND participant = ? AND status = ?`,
		amount, models.SharePaid, time.Now().Unix(),
		tableID, participant, models.SharePending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no pending share for %s on table %s", participant, tableID)
	}
	return nil
}
