package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

type debtRow struct {
	ID             int64          `db:"id"`
	Player         string         `db:"player"`
	Faction        string         `db:"faction"`
	Source         string         `db:"source"`
	Amount         int            `db:"amount"`
	ReprisalLevel  int            `db:"reprisal_level"`
	LastReprisalAt sql.NullString `db:"last_reprisal_at"`
	CreatedAt      string         `db:"created_at"`
}

func (r debtRow) toModel() model.InfluenceDebt {
	return model.InfluenceDebt{
		ID:            r.ID,
		Player:        r.Player,
		Faction:       r.Faction,
		Source:        r.Source,
		Amount:        r.Amount,
		ReprisalLevel: r.ReprisalLevel,
		LastReprisal:  parseNullTime(r.LastReprisalAt),
		CreatedAt:     parseTime(r.CreatedAt),
	}
}

// AddDebt accrues owed influence on the (player, faction, source) row,
// creating it when absent.
func (s *Store) AddDebt(now time.Time, player, faction, source string, amount int) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.conn.Exec(`INSERT INTO influence_debts (player, faction, source, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player, faction, source) DO UPDATE SET amount = amount + excluded.amount`,
		player, faction, source, amount, fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("add debt %s/%s/%s: %w", player, faction, source, err)
	}
	return nil
}

// PayDebt reduces a debt by up to amount and returns what was actually
// paid. Fully-paid rows are deleted.
func (s *Store) PayDebt(player, faction, source string, amount int) (int, error) {
	if amount <= 0 {
		return 0, nil
	}
	var row debtRow
	err := s.conn.Get(&row,
		"SELECT * FROM influence_debts WHERE player = ? AND faction = ? AND source = ?",
		player, faction, source)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pay debt lookup: %w", err)
	}

	paid := amount
	if paid > row.Amount {
		paid = row.Amount
	}
	remaining := row.Amount - paid
	if remaining == 0 {
		_, err = s.conn.Exec("DELETE FROM influence_debts WHERE id = ?", row.ID)
	} else {
		_, err = s.conn.Exec("UPDATE influence_debts SET amount = ? WHERE id = ?", remaining, row.ID)
	}
	if err != nil {
		return 0, fmt.Errorf("pay debt update: %w", err)
	}
	return paid, nil
}

// DebtsByPlayer returns a player's debts for one source, oldest first.
func (s *Store) DebtsByPlayer(player, source string) ([]model.InfluenceDebt, error) {
	var rows []debtRow
	err := s.conn.Select(&rows,
		"SELECT * FROM influence_debts WHERE player = ? AND source = ? ORDER BY created_at, id",
		player, source)
	if err != nil {
		return nil, fmt.Errorf("debts by player: %w", err)
	}
	out := make([]model.InfluenceDebt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// AllDebts returns every outstanding debt, oldest first.
func (s *Store) AllDebts() ([]model.InfluenceDebt, error) {
	var rows []debtRow
	if err := s.conn.Select(&rows, "SELECT * FROM influence_debts ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("all debts: %w", err)
	}
	out := make([]model.InfluenceDebt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// MarkReprisal bumps the reprisal level and stamps the reprisal time.
func (s *Store) MarkReprisal(id int64, now time.Time) error {
	_, err := s.conn.Exec(
		"UPDATE influence_debts SET reprisal_level = reprisal_level + 1, last_reprisal_at = ? WHERE id = ?",
		fmtTime(now), id,
	)
	if err != nil {
		return fmt.Errorf("mark reprisal %d: %w", id, err)
	}
	return nil
}

// SaveCommitment upserts a seasonal commitment.
func (s *Store) SaveCommitment(c *model.SeasonalCommitment) error {
	_, err := s.conn.Exec(`INSERT INTO seasonal_commitments
		(id, player, faction, tier, base_cost, start_at, end_at, last_processed_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			base_cost = excluded.base_cost,
			end_at = excluded.end_at,
			last_processed_at = excluded.last_processed_at,
			status = excluded.status`,
		c.ID, c.Player, c.Faction, c.Tier, c.BaseCost,
		fmtTime(c.StartAt), fmtTime(c.EndAt), fmtNullTime(c.LastProcessed), c.Status,
	)
	if err != nil {
		return fmt.Errorf("save commitment %s: %w", c.ID, err)
	}
	return nil
}

type commitmentRow struct {
	ID              string         `db:"id"`
	Player          string         `db:"player"`
	Faction         string         `db:"faction"`
	Tier            string         `db:"tier"`
	BaseCost        int            `db:"base_cost"`
	StartAt         string         `db:"start_at"`
	EndAt           string         `db:"end_at"`
	LastProcessedAt sql.NullString `db:"last_processed_at"`
	Status          string         `db:"status"`
}

func (r commitmentRow) toModel() *model.SeasonalCommitment {
	return &model.SeasonalCommitment{
		ID:            r.ID,
		Player:        r.Player,
		Faction:       r.Faction,
		Tier:          r.Tier,
		BaseCost:      r.BaseCost,
		StartAt:       parseTime(r.StartAt),
		EndAt:         parseTime(r.EndAt),
		LastProcessed: parseNullTime(r.LastProcessedAt),
		Status:        r.Status,
	}
}

// GetCommitment returns a commitment by id, or nil.
func (s *Store) GetCommitment(id string) (*model.SeasonalCommitment, error) {
	var row commitmentRow
	err := s.conn.Get(&row, "SELECT * FROM seasonal_commitments WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get commitment %s: %w", id, err)
	}
	return row.toModel(), nil
}

// ActiveCommitments returns commitments still running, oldest first.
func (s *Store) ActiveCommitments() ([]*model.SeasonalCommitment, error) {
	var rows []commitmentRow
	err := s.conn.Select(&rows,
		"SELECT * FROM seasonal_commitments WHERE status = ? ORDER BY start_at, id", model.CommitmentActive)
	if err != nil {
		return nil, fmt.Errorf("active commitments: %w", err)
	}
	out := make([]*model.SeasonalCommitment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// SaveProject upserts a faction project.
func (s *Store) SaveProject(p *model.FactionProject) error {
	_, err := s.conn.Exec(`INSERT INTO faction_projects
		(id, name, faction, progress, target, status, metadata_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			progress = excluded.progress,
			target = excluded.target,
			status = excluded.status,
			metadata_json = excluded.metadata_json,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Faction, p.Progress, p.Target, p.Status, marshal(p.Metadata), fmtTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

type projectRow struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Faction      string  `db:"faction"`
	Progress     float64 `db:"progress"`
	Target       float64 `db:"target"`
	Status       string  `db:"status"`
	MetadataJSON string  `db:"metadata_json"`
	UpdatedAt    string  `db:"updated_at"`
}

func (r projectRow) toModel() (*model.FactionProject, error) {
	p := &model.FactionProject{
		ID:        r.ID,
		Name:      r.Name,
		Faction:   r.Faction,
		Progress:  r.Progress,
		Target:    r.Target,
		Status:    r.Status,
		UpdatedAt: parseTime(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.MetadataJSON), &p.Metadata); err != nil {
		return nil, fmt.Errorf("project %s metadata: %w", r.ID, err)
	}
	return p, nil
}

// GetProject returns a project by id, or nil.
func (s *Store) GetProject(id string) (*model.FactionProject, error) {
	var row projectRow
	err := s.conn.Get(&row, "SELECT * FROM faction_projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return row.toModel()
}

// ActiveProjects returns projects still accumulating progress.
func (s *Store) ActiveProjects() ([]*model.FactionProject, error) {
	var rows []projectRow
	err := s.conn.Select(&rows,
		"SELECT * FROM faction_projects WHERE status = ? ORDER BY id", model.ProjectActive)
	if err != nil {
		return nil, fmt.Errorf("active projects: %w", err)
	}
	out := make([]*model.FactionProject, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// RecordInvestment persists a faction investment.
func (s *Store) RecordInvestment(inv *model.FactionInvestment) error {
	_, err := s.conn.Exec(
		"INSERT INTO faction_investments (id, player, faction, amount, program, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		inv.ID, inv.Player, inv.Faction, inv.Amount, inv.Program, fmtTime(inv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record investment %s: %w", inv.ID, err)
	}
	return nil
}

// RecordEndowment persists an archive endowment.
func (s *Store) RecordEndowment(e *model.ArchiveEndowment) error {
	_, err := s.conn.Exec(
		"INSERT INTO archive_endowments (id, player, faction, amount, program, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.Player, e.Faction, e.Amount, e.Program, fmtTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record endowment %s: %w", e.ID, err)
	}
	return nil
}
