package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// CreateMentorship inserts a pending mentorship and returns it with its id.
func (s *Store) CreateMentorship(m model.Mentorship) (model.Mentorship, error) {
	res, err := s.conn.Exec(
		"INSERT INTO mentorships (player, scholar, started_at, status, track) VALUES (?, ?, ?, ?, ?)",
		m.Player, m.Scholar, fmtTime(m.StartedAt), m.Status, string(m.Track),
	)
	if err != nil {
		return model.Mentorship{}, fmt.Errorf("create mentorship: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return model.Mentorship{}, fmt.Errorf("mentorship id: %w", err)
	}
	return m, nil
}

type mentorshipRow struct {
	ID        int64  `db:"id"`
	Player    string `db:"player"`
	Scholar   string `db:"scholar"`
	StartedAt string `db:"started_at"`
	Status    string `db:"status"`
	Track     string `db:"track"`
}

func (r mentorshipRow) toModel() model.Mentorship {
	return model.Mentorship{
		ID:        r.ID,
		Player:    r.Player,
		Scholar:   r.Scholar,
		StartedAt: parseTime(r.StartedAt),
		Status:    r.Status,
		Track:     model.CareerTrack(r.Track),
	}
}

// ActiveMentorshipForScholar returns the scholar's live (pending or
// active) mentorship, or nil. At most one exists at a time.
func (s *Store) ActiveMentorshipForScholar(scholarID string) (*model.Mentorship, error) {
	var row mentorshipRow
	err := s.conn.Get(&row,
		"SELECT * FROM mentorships WHERE scholar = ? AND status IN (?, ?) ORDER BY id DESC LIMIT 1",
		scholarID, model.MentorshipPending, model.MentorshipActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active mentorship for %s: %w", scholarID, err)
	}
	m := row.toModel()
	return &m, nil
}

// GetMentorship returns a mentorship by id, or nil.
func (s *Store) GetMentorship(id int64) (*model.Mentorship, error) {
	var row mentorshipRow
	err := s.conn.Get(&row, "SELECT * FROM mentorships WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mentorship %d: %w", id, err)
	}
	m := row.toModel()
	return &m, nil
}

// MentorshipsByStatus returns mentorships in one lifecycle state.
func (s *Store) MentorshipsByStatus(status string) ([]model.Mentorship, error) {
	var rows []mentorshipRow
	if err := s.conn.Select(&rows, "SELECT * FROM mentorships WHERE status = ? ORDER BY id", status); err != nil {
		return nil, fmt.Errorf("mentorships by status: %w", err)
	}
	out := make([]model.Mentorship, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// MentorshipHistoryForScholar returns every mentorship a scholar has had.
func (s *Store) MentorshipHistoryForScholar(scholarID string) ([]model.Mentorship, error) {
	var rows []mentorshipRow
	if err := s.conn.Select(&rows, "SELECT * FROM mentorships WHERE scholar = ? ORDER BY id", scholarID); err != nil {
		return nil, fmt.Errorf("mentorship history for %s: %w", scholarID, err)
	}
	out := make([]model.Mentorship, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// UpdateMentorshipStatus moves a mentorship through its lifecycle.
func (s *Store) UpdateMentorshipStatus(id int64, status string) error {
	if _, err := s.conn.Exec("UPDATE mentorships SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("update mentorship %d: %w", id, err)
	}
	return nil
}

// UpdateMentorshipTrack records a lab reassignment.
func (s *Store) UpdateMentorshipTrack(id int64, track model.CareerTrack) error {
	if _, err := s.conn.Exec("UPDATE mentorships SET track = ? WHERE id = ?", string(track), id); err != nil {
		return fmt.Errorf("update mentorship track %d: %w", id, err)
	}
	return nil
}

// SaveConference upserts a conference row.
func (s *Store) SaveConference(c *model.Conference) error {
	_, err := s.conn.Exec(`INSERT INTO conferences
		(code, player, theory_id, confidence, supporters_json, opposition_json, outcome, reputation_delta, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			outcome = excluded.outcome,
			reputation_delta = excluded.reputation_delta,
			result_json = excluded.result_json`,
		c.Code, c.Player, c.TheoryID, string(c.Confidence),
		marshal(c.Supporters), marshal(c.Opposition),
		string(c.Outcome), c.ReputationDelta, marshal(c.Result), fmtTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save conference %s: %w", c.Code, err)
	}
	return nil
}

type conferenceRow struct {
	Code            string `db:"code"`
	Player          string `db:"player"`
	TheoryID        int64  `db:"theory_id"`
	Confidence      string `db:"confidence"`
	SupportersJSON  string `db:"supporters_json"`
	OppositionJSON  string `db:"opposition_json"`
	Outcome         string `db:"outcome"`
	ReputationDelta int    `db:"reputation_delta"`
	ResultJSON      string `db:"result_json"`
	CreatedAt       string `db:"created_at"`
}

func (r conferenceRow) toModel() (*model.Conference, error) {
	c := &model.Conference{
		Code:            r.Code,
		Player:          r.Player,
		TheoryID:        r.TheoryID,
		Confidence:      model.Confidence(r.Confidence),
		Outcome:         model.ExpeditionOutcome(r.Outcome),
		ReputationDelta: r.ReputationDelta,
		CreatedAt:       parseTime(r.CreatedAt),
	}
	if err := json.Unmarshal([]byte(r.SupportersJSON), &c.Supporters); err != nil {
		return nil, fmt.Errorf("conference %s supporters: %w", r.Code, err)
	}
	if err := json.Unmarshal([]byte(r.OppositionJSON), &c.Opposition); err != nil {
		return nil, fmt.Errorf("conference %s opposition: %w", r.Code, err)
	}
	if err := json.Unmarshal([]byte(r.ResultJSON), &c.Result); err != nil {
		return nil, fmt.Errorf("conference %s result: %w", r.Code, err)
	}
	return c, nil
}

// GetConference returns a conference by code, or nil.
func (s *Store) GetConference(code string) (*model.Conference, error) {
	var row conferenceRow
	err := s.conn.Get(&row, "SELECT * FROM conferences WHERE code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conference %s: %w", code, err)
	}
	return row.toModel()
}
