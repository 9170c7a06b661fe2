package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// CreateTopic opens a symposium topic. The at-most-one-voting invariant
// is the caller's to check via ActiveTopic before creating.
func (s *Store) CreateTopic(t model.SymposiumTopic) (model.SymposiumTopic, error) {
	res, err := s.conn.Exec(
		"INSERT INTO symposium_topics (topic_date, topic, description, status, winner) VALUES (?, ?, ?, ?, 0)",
		fmtTime(t.Date), t.Topic, t.Description, t.Status,
	)
	if err != nil {
		return model.SymposiumTopic{}, fmt.Errorf("create topic: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return model.SymposiumTopic{}, fmt.Errorf("topic id: %w", err)
	}
	return t, nil
}

type topicRow struct {
	ID          int64  `db:"id"`
	TopicDate   string `db:"topic_date"`
	Topic       string `db:"topic"`
	Description string `db:"description"`
	Status      string `db:"status"`
	Winner      int    `db:"winner"`
}

func (r topicRow) toModel() model.SymposiumTopic {
	return model.SymposiumTopic{
		ID:          r.ID,
		Date:        parseTime(r.TopicDate),
		Topic:       r.Topic,
		Description: r.Description,
		Status:      r.Status,
		Winner:      r.Winner,
	}
}

// ActiveTopic returns the topic currently in voting, or nil.
func (s *Store) ActiveTopic() (*model.SymposiumTopic, error) {
	var row topicRow
	err := s.conn.Get(&row, "SELECT * FROM symposium_topics WHERE status = ? ORDER BY id DESC LIMIT 1", model.TopicVoting)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active topic: %w", err)
	}
	t := row.toModel()
	return &t, nil
}

// ResolveTopic stamps the winner and flips the topic to resolved.
func (s *Store) ResolveTopic(id int64, winner int) error {
	_, err := s.conn.Exec(
		"UPDATE symposium_topics SET status = ?, winner = ? WHERE id = ?",
		model.TopicResolved, winner, id,
	)
	if err != nil {
		return fmt.Errorf("resolve topic %d: %w", id, err)
	}
	return nil
}

// SubmitProposal inserts a pending proposal and returns it with its id.
func (s *Store) SubmitProposal(p model.SymposiumProposal) (model.SymposiumProposal, error) {
	res, err := s.conn.Exec(
		"INSERT INTO symposium_proposals (player, topic, description, created_at, expire_at, priority, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Player, p.Topic, p.Description, fmtTime(p.CreatedAt), fmtTime(p.ExpireAt), p.Priority, p.Status,
	)
	if err != nil {
		return model.SymposiumProposal{}, fmt.Errorf("submit proposal: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return model.SymposiumProposal{}, fmt.Errorf("proposal id: %w", err)
	}
	return p, nil
}

type proposalRow struct {
	ID          int64   `db:"id"`
	Player      string  `db:"player"`
	Topic       string  `db:"topic"`
	Description string  `db:"description"`
	CreatedAt   string  `db:"created_at"`
	ExpireAt    string  `db:"expire_at"`
	Priority    float64 `db:"priority"`
	Status      string  `db:"status"`
}

func (r proposalRow) toModel() model.SymposiumProposal {
	return model.SymposiumProposal{
		ID:          r.ID,
		Player:      r.Player,
		Topic:       r.Topic,
		Description: r.Description,
		CreatedAt:   parseTime(r.CreatedAt),
		ExpireAt:    parseTime(r.ExpireAt),
		Priority:    r.Priority,
		Status:      r.Status,
	}
}

// PendingProposals returns the backlog in submission order.
func (s *Store) PendingProposals() ([]model.SymposiumProposal, error) {
	var rows []proposalRow
	if err := s.conn.Select(&rows, "SELECT * FROM symposium_proposals WHERE status = ? ORDER BY created_at, id", model.ProposalPending); err != nil {
		return nil, fmt.Errorf("pending proposals: %w", err)
	}
	out := make([]model.SymposiumProposal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// CountPendingProposalsByPlayer returns a player's live backlog size.
func (s *Store) CountPendingProposalsByPlayer(player string) (int, error) {
	var n int
	err := s.conn.Get(&n,
		"SELECT COUNT(*) FROM symposium_proposals WHERE player = ? AND status = ?",
		player, model.ProposalPending)
	if err != nil {
		return 0, fmt.Errorf("count proposals: %w", err)
	}
	return n, nil
}

// UpdateProposalStatus moves a proposal through its lifecycle.
func (s *Store) UpdateProposalStatus(id int64, status string) error {
	if _, err := s.conn.Exec("UPDATE symposium_proposals SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("update proposal %d: %w", id, err)
	}
	return nil
}

// RecentSelectedProposers returns the players whose proposals were
// selected for the last N resolved topics (the repeat-penalty window).
func (s *Store) RecentSelectedProposers(window int) ([]string, error) {
	var players []string
	err := s.conn.Select(&players,
		`SELECT player FROM symposium_proposals WHERE status IN (?, ?) ORDER BY id DESC LIMIT ?`,
		model.ProposalSelected, model.ProposalResolved, window)
	if err != nil {
		return nil, fmt.Errorf("recent proposers: %w", err)
	}
	return players, nil
}

// RecordVote stores (or replaces) a player's vote on a topic.
func (s *Store) RecordVote(v model.SymposiumVote) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO symposium_votes (topic_id, player, option, voted_at) VALUES (?, ?, ?, ?)",
		v.TopicID, v.Player, v.Option, fmtTime(v.VotedAt),
	)
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	return nil
}

// VotesForTopic returns all votes on a topic.
func (s *Store) VotesForTopic(topicID int64) ([]model.SymposiumVote, error) {
	var rows []struct {
		TopicID int64  `db:"topic_id"`
		Player  string `db:"player"`
		Option  int    `db:"option"`
		VotedAt string `db:"voted_at"`
	}
	if err := s.conn.Select(&rows, "SELECT * FROM symposium_votes WHERE topic_id = ?", topicID); err != nil {
		return nil, fmt.Errorf("votes for topic %d: %w", topicID, err)
	}
	out := make([]model.SymposiumVote, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SymposiumVote{
			TopicID: r.TopicID,
			Player:  r.Player,
			Option:  r.Option,
			VotedAt: parseTime(r.VotedAt),
		})
	}
	return out, nil
}

// CreatePledge inserts a pledge row for a topic/player pair.
func (s *Store) CreatePledge(p model.SymposiumPledge) (model.SymposiumPledge, error) {
	res, err := s.conn.Exec(
		"INSERT INTO symposium_pledges (topic_id, player, amount, faction, status, resolved_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.TopicID, p.Player, p.Amount, p.Faction, p.Status, fmtNullTime(p.ResolvedAt),
	)
	if err != nil {
		return model.SymposiumPledge{}, fmt.Errorf("create pledge: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return model.SymposiumPledge{}, fmt.Errorf("pledge id: %w", err)
	}
	return p, nil
}

type pledgeRow struct {
	ID         int64          `db:"id"`
	TopicID    int64          `db:"topic_id"`
	Player     string         `db:"player"`
	Amount     int            `db:"amount"`
	Faction    string         `db:"faction"`
	Status     string         `db:"status"`
	ResolvedAt sql.NullString `db:"resolved_at"`
}

func (r pledgeRow) toModel() model.SymposiumPledge {
	return model.SymposiumPledge{
		ID:         r.ID,
		TopicID:    r.TopicID,
		Player:     r.Player,
		Amount:     r.Amount,
		Faction:    r.Faction,
		Status:     r.Status,
		ResolvedAt: parseNullTime(r.ResolvedAt),
	}
}

// PledgesForTopic returns every pledge attached to a topic.
func (s *Store) PledgesForTopic(topicID int64) ([]model.SymposiumPledge, error) {
	var rows []pledgeRow
	if err := s.conn.Select(&rows, "SELECT * FROM symposium_pledges WHERE topic_id = ? ORDER BY id", topicID); err != nil {
		return nil, fmt.Errorf("pledges for topic %d: %w", topicID, err)
	}
	out := make([]model.SymposiumPledge, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// UpdatePledgeStatus stamps a pledge's outcome.
func (s *Store) UpdatePledgeStatus(id int64, status string, resolvedAt time.Time) error {
	_, err := s.conn.Exec(
		"UPDATE symposium_pledges SET status = ?, resolved_at = ? WHERE id = ?",
		status, fmtTime(resolvedAt), id,
	)
	if err != nil {
		return fmt.Errorf("update pledge %d: %w", id, err)
	}
	return nil
}

// Participation returns a player's attendance record, creating a zeroed
// row on first touch.
func (s *Store) Participation(player string) (*model.SymposiumParticipation, error) {
	var row struct {
		Player            string         `db:"player"`
		MissStreak        int            `db:"miss_streak"`
		GraceWindowStart  sql.NullString `db:"grace_window_start"`
		GraceMissConsumed int            `db:"grace_miss_consumed"`
		LastVotedAt       sql.NullString `db:"last_voted_at"`
	}
	err := s.conn.Get(&row, "SELECT * FROM symposium_participation WHERE player = ?", player)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.SymposiumParticipation{Player: player}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("participation %s: %w", player, err)
	}
	return &model.SymposiumParticipation{
		Player:            row.Player,
		MissStreak:        row.MissStreak,
		GraceWindowStart:  parseNullTime(row.GraceWindowStart),
		GraceMissConsumed: row.GraceMissConsumed,
		LastVotedAt:       parseNullTime(row.LastVotedAt),
	}, nil
}

// SaveParticipation upserts a player's attendance record.
func (s *Store) SaveParticipation(p *model.SymposiumParticipation) error {
	_, err := s.conn.Exec(`INSERT INTO symposium_participation
		(player, miss_streak, grace_window_start, grace_miss_consumed, last_voted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET
			miss_streak = excluded.miss_streak,
			grace_window_start = excluded.grace_window_start,
			grace_miss_consumed = excluded.grace_miss_consumed,
			last_voted_at = excluded.last_voted_at`,
		p.Player, p.MissStreak, fmtNullTime(p.GraceWindowStart), p.GraceMissConsumed, fmtNullTime(p.LastVotedAt),
	)
	if err != nil {
		return fmt.Errorf("save participation %s: %w", p.Player, err)
	}
	return nil
}
