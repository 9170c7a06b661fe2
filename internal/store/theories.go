package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// RecordTheory persists a theory and returns the record with its id.
func (s *Store) RecordTheory(t model.TheoryRecord) (model.TheoryRecord, error) {
	res, err := s.conn.Exec(
		"INSERT INTO theories (timestamp, player, theory, confidence, supporters_json, deadline) VALUES (?, ?, ?, ?, ?, ?)",
		fmtTime(t.Timestamp), t.Player, t.Theory, string(t.Confidence), marshal(t.Supporters), t.Deadline,
	)
	if err != nil {
		return model.TheoryRecord{}, fmt.Errorf("record theory: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return model.TheoryRecord{}, fmt.Errorf("theory id: %w", err)
	}
	return t, nil
}

type theoryRow struct {
	ID             int64  `db:"id"`
	Timestamp      string `db:"timestamp"`
	Player         string `db:"player"`
	Theory         string `db:"theory"`
	Confidence     string `db:"confidence"`
	SupportersJSON string `db:"supporters_json"`
	Deadline       string `db:"deadline"`
}

func (r theoryRow) toModel() (model.TheoryRecord, error) {
	t := model.TheoryRecord{
		ID:         r.ID,
		Timestamp:  parseTime(r.Timestamp),
		Player:     r.Player,
		Theory:     r.Theory,
		Confidence: model.Confidence(r.Confidence),
		Deadline:   r.Deadline,
	}
	if err := json.Unmarshal([]byte(r.SupportersJSON), &t.Supporters); err != nil {
		return model.TheoryRecord{}, fmt.Errorf("theory %d supporters: %w", r.ID, err)
	}
	return t, nil
}

// GetTheory returns a theory by id, or nil.
func (s *Store) GetTheory(id int64) (*model.TheoryRecord, error) {
	var row theoryRow
	err := s.conn.Get(&row, "SELECT * FROM theories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theory %d: %w", id, err)
	}
	t, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TheoriesByPlayer returns a player's theories in submission order.
func (s *Store) TheoriesByPlayer(player string) ([]model.TheoryRecord, error) {
	var rows []theoryRow
	if err := s.conn.Select(&rows, "SELECT * FROM theories WHERE player = ? ORDER BY id", player); err != nil {
		return nil, fmt.Errorf("theories by player: %w", err)
	}
	out := make([]model.TheoryRecord, 0, len(rows))
	for _, row := range rows {
		t, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
