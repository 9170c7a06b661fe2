package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

type playerRow struct {
	ID            string `db:"id"`
	DisplayName   string `db:"display_name"`
	Reputation    int    `db:"reputation"`
	InfluenceJSON string `db:"influence_json"`
	CooldownsJSON string `db:"cooldowns_json"`
}

func (r playerRow) toModel() (*model.Player, error) {
	p := &model.Player{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Reputation:  r.Reputation,
		Influence:   make(map[string]int),
		Cooldowns:   make(map[string]int),
	}
	if err := json.Unmarshal([]byte(r.InfluenceJSON), &p.Influence); err != nil {
		return nil, fmt.Errorf("player %s influence: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.CooldownsJSON), &p.Cooldowns); err != nil {
		return nil, fmt.Errorf("player %s cooldowns: %w", r.ID, err)
	}
	if p.Influence == nil {
		p.Influence = make(map[string]int)
	}
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[string]int)
	}
	return p, nil
}

// UpsertPlayer writes a player and refreshes the cache entry.
func (s *Store) UpsertPlayer(p *model.Player) error {
	_, err := s.conn.Exec(`INSERT INTO players (id, display_name, reputation, influence_json, cooldowns_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			reputation = excluded.reputation,
			influence_json = excluded.influence_json,
			cooldowns_json = excluded.cooldowns_json`,
		p.ID, p.DisplayName, p.Reputation, marshal(p.Influence), marshal(p.Cooldowns),
	)
	if err != nil {
		return fmt.Errorf("upsert player %s: %w", p.ID, err)
	}

	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()
	return nil
}

// GetPlayer returns a player by id, or nil when absent.
func (s *Store) GetPlayer(id string) (*model.Player, error) {
	s.mu.Lock()
	if p, ok := s.players[id]; ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	var row playerRow
	err := s.conn.Get(&row, "SELECT * FROM players WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}

	p, err := row.toModel()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.players[id] = p
	s.mu.Unlock()
	return p, nil
}

// AllPlayers returns every player ordered by id.
func (s *Store) AllPlayers() ([]*model.Player, error) {
	var rows []playerRow
	if err := s.conn.Select(&rows, "SELECT * FROM players ORDER BY id"); err != nil {
		return nil, fmt.Errorf("all players: %w", err)
	}

	players := make([]*model.Player, 0, len(rows))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if cached, ok := s.players[row.ID]; ok {
			players = append(players, cached)
			continue
		}
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		s.players[row.ID] = p
		players = append(players, p)
	}
	return players, nil
}
