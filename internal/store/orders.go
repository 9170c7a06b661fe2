package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

type orderRow struct {
	ID          string         `db:"id"`
	OrderType   string         `db:"order_type"`
	ActorID     string         `db:"actor_id"`
	SubjectID   string         `db:"subject_id"`
	PayloadJSON string         `db:"payload_json"`
	Status      string         `db:"status"`
	ScheduledAt sql.NullString `db:"scheduled_at"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
	SourceTable string         `db:"source_table"`
	SourceID    string         `db:"source_id"`
	Result      string         `db:"result"`
}

func (r orderRow) toModel() (*model.Order, error) {
	o := &model.Order{
		ID:          r.ID,
		OrderType:   r.OrderType,
		ActorID:     r.ActorID,
		SubjectID:   r.SubjectID,
		Status:      r.Status,
		ScheduledAt: parseNullTime(r.ScheduledAt),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
		SourceTable: r.SourceTable,
		SourceID:    r.SourceID,
		Result:      r.Result,
	}
	if err := json.Unmarshal([]byte(r.PayloadJSON), &o.Payload); err != nil {
		return nil, fmt.Errorf("order %s payload: %w", r.ID, err)
	}
	return o, nil
}

// EnqueueOrder adds a pending row to the unified follow-up queue.
// scheduledAt nil means due at the next digest.
func (s *Store) EnqueueOrder(now time.Time, orderType, actorID, subjectID string, payload map[string]any, scheduledAt *time.Time) (*model.Order, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	o := &model.Order{
		ID:          uuid.NewString(),
		OrderType:   orderType,
		ActorID:     actorID,
		SubjectID:   subjectID,
		Payload:     payload,
		Status:      model.OrderPending,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.conn.Exec(`INSERT INTO orders
		(id, order_type, actor_id, subject_id, payload_json, status, scheduled_at, created_at, updated_at, source_table, source_id, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', '')`,
		o.ID, o.OrderType, o.ActorID, o.SubjectID, marshal(o.Payload), o.Status,
		fmtNullTime(o.ScheduledAt), fmtTime(o.CreatedAt), fmtTime(o.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue order %s: %w", orderType, err)
	}
	return o, nil
}

// DueOrders returns pending orders of one type whose scheduled_at is null
// or ≤ now, ordered by created_at (the dispatch ordering guarantee).
func (s *Store) DueOrders(orderType string, now time.Time) ([]*model.Order, error) {
	var rows []orderRow
	err := s.conn.Select(&rows,
		`SELECT * FROM orders
		 WHERE order_type = ? AND status = ? AND (scheduled_at IS NULL OR scheduled_at <= ?)
		 ORDER BY created_at, id`,
		orderType, model.OrderPending, fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("due orders %s: %w", orderType, err)
	}
	return ordersFromRows(rows)
}

// PendingOrders returns every pending order regardless of schedule.
func (s *Store) PendingOrders() ([]*model.Order, error) {
	var rows []orderRow
	err := s.conn.Select(&rows,
		"SELECT * FROM orders WHERE status = ? ORDER BY created_at, id", model.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	return ordersFromRows(rows)
}

// PendingOrdersByType returns pending orders of one kind in created order.
func (s *Store) PendingOrdersByType(orderType string) ([]*model.Order, error) {
	var rows []orderRow
	err := s.conn.Select(&rows,
		"SELECT * FROM orders WHERE order_type = ? AND status = ? ORDER BY created_at, id",
		orderType, model.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("pending orders %s: %w", orderType, err)
	}
	return ordersFromRows(rows)
}

func ordersFromRows(rows []orderRow) ([]*model.Order, error) {
	out := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// GetOrder returns one order by id, or nil.
func (s *Store) GetOrder(id string) (*model.Order, error) {
	var row orderRow
	err := s.conn.Get(&row, "SELECT * FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return row.toModel()
}

// UpdateOrderStatus transitions an order to completed or cancelled,
// recording the result string. Dispatch handlers call this exactly once
// per order so re-runs are no-ops.
func (s *Store) UpdateOrderStatus(id, status, result string, now time.Time) error {
	_, err := s.conn.Exec(
		"UPDATE orders SET status = ?, result = ?, updated_at = ? WHERE id = ?",
		status, result, fmtTime(now), id,
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	return nil
}

// CancelPendingByType cancels every pending order of one kind for a
// subject (used when a counter-offer supersedes its parent's evaluation).
func (s *Store) CancelPendingByType(orderType, subjectID, reason string, now time.Time) (int, error) {
	res, err := s.conn.Exec(
		"UPDATE orders SET status = ?, result = ?, updated_at = ? WHERE order_type = ? AND subject_id = ? AND status = ?",
		model.OrderCancelled, reason, fmtTime(now), orderType, subjectID, model.OrderPending,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel orders %s/%s: %w", orderType, subjectID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
