package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// SaveExpedition writes (or rewrites, on resolution) an expedition record.
func (s *Store) SaveExpedition(e *model.ExpeditionRecord) error {
	_, err := s.conn.Exec(`INSERT INTO expeditions (code, timestamp, player, exp_type, outcome, data_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			outcome = excluded.outcome,
			data_json = excluded.data_json`,
		e.Code, fmtTime(e.Timestamp), e.Player, string(e.Type), string(e.Outcome), marshal(e),
	)
	if err != nil {
		return fmt.Errorf("save expedition %s: %w", e.Code, err)
	}
	return nil
}

// GetExpedition returns an expedition by code, or nil.
func (s *Store) GetExpedition(code string) (*model.ExpeditionRecord, error) {
	var data string
	err := s.conn.Get(&data, "SELECT data_json FROM expeditions WHERE code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expedition %s: %w", code, err)
	}
	e := &model.ExpeditionRecord{}
	if err := json.Unmarshal([]byte(data), e); err != nil {
		return nil, fmt.Errorf("decode expedition %s: %w", code, err)
	}
	return e, nil
}

// PendingExpeditions returns queued expeditions with no outcome yet,
// oldest first.
func (s *Store) PendingExpeditions() ([]*model.ExpeditionRecord, error) {
	var blobs []string
	err := s.conn.Select(&blobs, "SELECT data_json FROM expeditions WHERE outcome = '' ORDER BY timestamp, code")
	if err != nil {
		return nil, fmt.Errorf("pending expeditions: %w", err)
	}
	out := make([]*model.ExpeditionRecord, 0, len(blobs))
	for _, data := range blobs {
		e := &model.ExpeditionRecord{}
		if err := json.Unmarshal([]byte(data), e); err != nil {
			return nil, fmt.Errorf("decode pending expedition: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
