package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// AppendEvent records one action in the append-only event log and
// returns the assigned id. IDs are strictly monotonically increasing.
func (s *Store) AppendEvent(now time.Time, action string, payload map[string]any) (int64, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	res, err := s.conn.Exec(
		"INSERT INTO events (timestamp, action, payload_json) VALUES (?, ?, ?)",
		fmtTime(now), action, marshal(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("append event %s: %w", action, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event id: %w", err)
	}
	return id, nil
}

// CountEvents returns the number of logged events.
func (s *Store) CountEvents() (int64, error) {
	var n int64
	if err := s.conn.Get(&n, "SELECT COUNT(*) FROM events"); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

type eventRow struct {
	ID          int64  `db:"id"`
	Timestamp   string `db:"timestamp"`
	Action      string `db:"action"`
	PayloadJSON string `db:"payload_json"`
}

func (r eventRow) toModel() (model.Event, error) {
	e := model.Event{
		ID:        r.ID,
		Timestamp: parseTime(r.Timestamp),
		Action:    r.Action,
	}
	if err := json.Unmarshal([]byte(r.PayloadJSON), &e.Payload); err != nil {
		return model.Event{}, fmt.Errorf("event %d payload: %w", r.ID, err)
	}
	return e, nil
}

// Events returns the log in id order, optionally filtered by action.
// Pass action="" for the full stream.
func (s *Store) Events(action string) ([]model.Event, error) {
	var rows []eventRow
	var err error
	if action == "" {
		err = s.conn.Select(&rows, "SELECT * FROM events ORDER BY id")
	} else {
		err = s.conn.Select(&rows, "SELECT * FROM events WHERE action = ? ORDER BY id", action)
	}
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// RecentEvents returns the most recent N events, newest first.
func (s *Store) RecentEvents(limit int) ([]model.Event, error) {
	var rows []eventRow
	if err := s.conn.Select(&rows, "SELECT * FROM events ORDER BY id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
