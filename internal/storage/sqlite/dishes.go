package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

// CreateDishOrders persists a batch of dish orders in one transaction.
func (s *SQLiteStore) CreateDishOrders(ctx context.Context, orders []*models.DishOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, order := range orders {
		// Generate IDs if not set
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		if order.CreatedAt == 0 {
			order.CreatedAt = now
		}
		if order.Status == "" {
			order.Status = models.DishPending
		}
		if order.PaymentStatus == "" {
			order.PaymentStatus = models.PaymentNotPaid
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO dish_orders
			 (id, table_id, item, quantity, unit_price, total_price, guest_name, user_id, guest_id, status, payment_status, images, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, order.TableID, order.Item, order.Quantity, order.UnitPrice, order.TotalPrice,
			order.PayerName, order.UserID, order.GuestID, order.Status, order.PaymentStatus,
			joinImages(order.Images), order.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dish order: %w", err)
		}

		for i, opt := range order.SelectedOptions {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO dish_options (dish_order_id, position, name, price) VALUES (?, ?, ?, ?)",
				order.ID, i, opt.Name, opt.Price,
			)
			if err != nil {
				return fmt.Errorf("failed to insert dish option: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDishOrder retrieves a dish order by ID, including its options.
func (s *SQLiteStore) GetDishOrder(ctx context.Context, orderID string) (*models.DishOrder, error) {
	order, err := scanDishOrder(s.db.QueryRowContext(ctx,
		`SELECT id, table_id, item, quantity, unit_price, total_price, guest_name, user_id, guest_id, status, payment_status, images, created_at
		 FROM dish_orders WHERE id = ?`,
		orderID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dish order not found: %s", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dish order: %w", err)
	}

	if err := s.loadOptions(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListDishOrders returns the table's full ledger, oldest first.
// Insertion order within a batch breaks created-at ties, so amount
// allocation stays deterministic.
func (s *SQLiteStore) ListDishOrders(ctx context.Context, tableID string) ([]models.DishOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_id, item, quantity, unit_price, total_price, guest_name, user_id, guest_id, status, payment_status, images, created_at
		 FROM dish_orders WHERE table_id = ? ORDER BY created_at, rowid`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dish orders: %w", err)
	}
	defer rows.Close()

	var orders []models.DishOrder
	for rows.Next() {
		order, err := scanDishOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dish order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dish orders: %w", err)
	}

	for i := range orders {
		if err := s.loadOptions(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// MarkDishPaid transitions a dish order to paid. Already-paid orders are
// left untouched so concurrent devices can safely repeat the call.
func (s *SQLiteStore) MarkDishPaid(ctx context.Context, orderID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE dish_orders SET payment_status = ? WHERE id = ?",
		models.PaymentPaid, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark dish paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("dish order not found: %s", orderID)
	}
	return nil
}

// UpdateDishStatus moves a dish through the kitchen workflow.
func (s *SQLiteStore) UpdateDishStatus(ctx context.Context, orderID string, status models.DishStatus) error {
	if !models.ValidDishStatus(status) {
		return fmt.Errorf("invalid dish status: %s", status)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE dish_orders SET status = ? WHERE id = ?",
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dish status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("dish order not found: %s", orderID)
	}
	return nil
}

// PayTableAmount applies a table-level payment: the oldest unpaid dishes
// whose full price fits within the amount are marked paid, and the
// residual becomes a table payment row. Everything happens in one
// transaction so the ledger never shows a half-applied payment.
func (s *SQLiteStore) PayTableAmount(ctx context.Context, tableID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, total_price FROM dish_orders
		 WHERE table_id = ? AND payment_status != ? ORDER BY created_at, rowid`,
		tableID, models.PaymentPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to list unpaid dishes: %w", err)
	}

	type unpaid struct {
		id    string
		price float64
	}
	var dishes []unpaid
	for rows.Next() {
		var d unpaid
		if err := rows.Scan(&d.id, &d.price); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan unpaid dish: %w", err)
		}
		dishes = append(dishes, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate unpaid dishes: %w", err)
	}

	remaining := amount
	for _, d := range dishes {
		// Tolerate float drift when the payment covers the dish exactly.
		if d.price > remaining+0.005 {
			break
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE dish_orders SET payment_status = ? WHERE id = ?",
			models.PaymentPaid, d.id,
		); err != nil {
			return fmt.Errorf("failed to mark dish paid: %w", err)
		}
		remaining -= d.price
	}

	if remaining > 0.005 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO table_payments (id, table_id, amount, created_at) VALUES (?, ?, ?, ?)",
			uuid.New().String(), tableID, remaining, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to record table payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TableAmountPaid sums the residual table payment rows for the table.
func (s *SQLiteStore) TableAmountPaid(ctx context.Context, tableID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM table_payments WHERE table_id = ?",
		tableID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum table payments: %w", err)
	}
	return total, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDishOrder(row scanner) (*models.DishOrder, error) {
	order := &models.DishOrder{}
	var images string
	err := row.Scan(
		&order.ID, &order.TableID, &order.Item, &order.Quantity, &order.UnitPrice,
		&order.TotalPrice, &order.PayerName, &order.UserID, &order.GuestID,
		&order.Status, &order.PaymentStatus, &images, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Images = splitImages(images)
	return order, nil
}

func (s *SQLiteStore) loadOptions(ctx context.Context, order *models.DishOrder) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, price FROM dish_options WHERE dish_order_id = ? ORDER BY position",
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get dish options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.SelectedOption
		if err := rows.Scan(&opt.Name, &opt.Price); err != nil {
			return fmt.Errorf("failed to scan dish option: %w", err)
		}
		order.SelectedOptions = append(order.SelectedOptions, opt)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate dish options: %w", err)
	}
	return nil
}
