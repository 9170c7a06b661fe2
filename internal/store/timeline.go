package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// InitTimeline seeds the singleton timeline row if absent.
func (s *Store) InitTimeline(startYear int, now time.Time) error {
	_, err := s.conn.Exec(
		"INSERT OR IGNORE INTO timeline (id, current_year, last_advanced) VALUES (1, ?, ?)",
		startYear, fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("init timeline: %w", err)
	}
	return nil
}

// GetTimeline returns the singleton timeline, or nil before init.
func (s *Store) GetTimeline() (*model.Timeline, error) {
	var row struct {
		CurrentYear  int    `db:"current_year"`
		LastAdvanced string `db:"last_advanced"`
	}
	err := s.conn.Get(&row, "SELECT current_year, last_advanced FROM timeline WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}
	return &model.Timeline{
		CurrentYear:  row.CurrentYear,
		LastAdvanced: parseTime(row.LastAdvanced),
	}, nil
}

// AdvanceTimeline converts elapsed real days into in-fiction years:
// years = floor(days since last_advanced / daysPerYear), and the anchor
// advances by exactly years × daysPerYear days so the remainder carries
// into the next digest. Returns (yearsElapsed, currentYear).
func (s *Store) AdvanceTimeline(now time.Time, daysPerYear int) (int, int, error) {
	tl, err := s.GetTimeline()
	if err != nil {
		return 0, 0, err
	}
	if tl == nil {
		return 0, 0, fmt.Errorf("advance timeline: not initialised")
	}

	days := int(now.Sub(tl.LastAdvanced).Hours() / 24)
	if days < 0 {
		days = 0
	}
	years := days / daysPerYear
	if years == 0 {
		return 0, tl.CurrentYear, nil
	}

	newYear := tl.CurrentYear + years
	newAnchor := tl.LastAdvanced.AddDate(0, 0, years*daysPerYear)
	_, err = s.conn.Exec(
		"UPDATE timeline SET current_year = ?, last_advanced = ? WHERE id = 1",
		newYear, fmtTime(newAnchor),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("advance timeline: %w", err)
	}
	return years, newYear, nil
}
