package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// SaveScholar writes a scholar's full state as a JSON document plus the
// indexed columns, and refreshes the cache entry.
func (s *Store) SaveScholar(sc *model.Scholar) error {
	_, err := s.conn.Exec(`INSERT INTO scholars (id, name, employer, data_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			employer = excluded.employer,
			data_json = excluded.data_json`,
		sc.ID, sc.Name, sc.Contract.Employer, marshal(sc),
	)
	if err != nil {
		return fmt.Errorf("save scholar %s: %w", sc.ID, err)
	}

	s.mu.Lock()
	s.scholars[sc.ID] = sc
	s.mu.Unlock()
	return nil
}

// GetScholar returns a scholar by id, or nil when absent.
func (s *Store) GetScholar(id string) (*model.Scholar, error) {
	s.mu.Lock()
	if sc, ok := s.scholars[id]; ok {
		s.mu.Unlock()
		return sc, nil
	}
	s.mu.Unlock()

	var data string
	err := s.conn.Get(&data, "SELECT data_json FROM scholars WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scholar %s: %w", id, err)
	}

	sc := &model.Scholar{}
	if err := json.Unmarshal([]byte(data), sc); err != nil {
		return nil, fmt.Errorf("decode scholar %s: %w", id, err)
	}
	s.mu.Lock()
	s.scholars[id] = sc
	s.mu.Unlock()
	return sc, nil
}

// AllScholars returns the full roster ordered by id.
func (s *Store) AllScholars() ([]*model.Scholar, error) {
	var rows []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := s.conn.Select(&rows, "SELECT id, data_json FROM scholars ORDER BY id"); err != nil {
		return nil, fmt.Errorf("all scholars: %w", err)
	}

	scholars := make([]*model.Scholar, 0, len(rows))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if cached, ok := s.scholars[row.ID]; ok {
			scholars = append(scholars, cached)
			continue
		}
		sc := &model.Scholar{}
		if err := json.Unmarshal([]byte(row.DataJSON), sc); err != nil {
			return nil, fmt.Errorf("decode scholar %s: %w", row.ID, err)
		}
		s.scholars[row.ID] = sc
		scholars = append(scholars, sc)
	}
	return scholars, nil
}

// ScholarsByEmployer returns the scholars contracted to a player.
func (s *Store) ScholarsByEmployer(playerID string) ([]*model.Scholar, error) {
	var ids []string
	if err := s.conn.Select(&ids, "SELECT id FROM scholars WHERE employer = ? ORDER BY id", playerID); err != nil {
		return nil, fmt.Errorf("scholars by employer %s: %w", playerID, err)
	}
	out := make([]*model.Scholar, 0, len(ids))
	for _, id := range ids {
		sc, err := s.GetScholar(id)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			out = append(out, sc)
		}
	}
	return out, nil
}

// DeleteScholar removes a scholar (retirement) and drops the cache entry.
func (s *Store) DeleteScholar(id string) error {
	if _, err := s.conn.Exec("DELETE FROM scholars WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete scholar %s: %w", id, err)
	}
	s.mu.Lock()
	delete(s.scholars, id)
	s.mu.Unlock()
	return nil
}

// CountScholars returns the roster size.
func (s *Store) CountScholars() (int, error) {
	var n int
	if err := s.conn.Get(&n, "SELECT COUNT(*) FROM scholars"); err != nil {
		return 0, fmt.Errorf("count scholars: %w", err)
	}
	return n, nil
}
