package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// RecordPress archives a release at the given timestamp and returns its
// monotone archive id.
func (s *Store) RecordPress(now time.Time, release model.PressRelease) (int64, error) {
	res, err := s.conn.Exec(
		"INSERT INTO press_archive (timestamp, press_type, headline, body, metadata_json) VALUES (?, ?, ?, ?, ?)",
		fmtTime(now), release.Type, release.Headline, release.Body, marshal(release.Metadata),
	)
	if err != nil {
		return 0, fmt.Errorf("record press %s: %w", release.Type, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("press id: %w", err)
	}
	return id, nil
}

type pressRow struct {
	ID           int64  `db:"id"`
	Timestamp    string `db:"timestamp"`
	PressType    string `db:"press_type"`
	Headline     string `db:"headline"`
	Body         string `db:"body"`
	MetadataJSON string `db:"metadata_json"`
}

func (r pressRow) toModel() (model.PressRecord, error) {
	rec := model.PressRecord{
		ID:        r.ID,
		Timestamp: parseTime(r.Timestamp),
		Release: model.PressRelease{
			Type:     r.PressType,
			Headline: r.Headline,
			Body:     r.Body,
		},
	}
	if err := json.Unmarshal([]byte(r.MetadataJSON), &rec.Release.Metadata); err != nil {
		return model.PressRecord{}, fmt.Errorf("press %d metadata: %w", r.ID, err)
	}
	return rec, nil
}

// PressArchive returns the full archive in id order.
func (s *Store) PressArchive() ([]model.PressRecord, error) {
	var rows []pressRow
	if err := s.conn.Select(&rows, "SELECT * FROM press_archive ORDER BY id"); err != nil {
		return nil, fmt.Errorf("press archive: %w", err)
	}
	records := make([]model.PressRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountPress returns the archive size.
func (s *Store) CountPress() (int64, error) {
	var n int64
	if err := s.conn.Get(&n, "SELECT COUNT(*) FROM press_archive"); err != nil {
		return 0, fmt.Errorf("count press: %w", err)
	}
	return n, nil
}

// EnqueuePress schedules a release for later. releaseAt must be after now;
// the payload round-trips through JSON untouched.
func (s *Store) EnqueuePress(now time.Time, release model.PressRelease, releaseAt time.Time) (int64, error) {
	if !releaseAt.After(now) {
		return 0, fmt.Errorf("enqueue press: release_at %s not after %s", releaseAt, now)
	}
	res, err := s.conn.Exec(
		"INSERT INTO queued_press (release_at, created_at, payload_json) VALUES (?, ?, ?)",
		fmtTime(releaseAt), fmtTime(now), marshal(release),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue press: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("queued press id: %w", err)
	}
	return id, nil
}

type queuedPressRow struct {
	ID          int64  `db:"id"`
	ReleaseAt   string `db:"release_at"`
	CreatedAt   string `db:"created_at"`
	PayloadJSON string `db:"payload_json"`
}

func (r queuedPressRow) toModel() (model.QueuedPress, error) {
	qp := model.QueuedPress{
		ID:        r.ID,
		ReleaseAt: parseTime(r.ReleaseAt),
		CreatedAt: parseTime(r.CreatedAt),
	}
	if err := json.Unmarshal([]byte(r.PayloadJSON), &qp.Release); err != nil {
		return model.QueuedPress{}, fmt.Errorf("queued press %d payload: %w", r.ID, err)
	}
	return qp, nil
}

// DueQueuedPress returns queued releases whose release_at ≤ now, ordered
// by release time then id.
func (s *Store) DueQueuedPress(now time.Time) ([]model.QueuedPress, error) {
	var rows []queuedPressRow
	err := s.conn.Select(&rows,
		"SELECT * FROM queued_press WHERE release_at <= ? ORDER BY release_at, id",
		fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("due queued press: %w", err)
	}
	out := make([]model.QueuedPress, 0, len(rows))
	for _, row := range rows {
		qp, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, qp)
	}
	return out, nil
}

// ListQueuedPress returns everything still queued, ordered by release time.
func (s *Store) ListQueuedPress() ([]model.QueuedPress, error) {
	var rows []queuedPressRow
	if err := s.conn.Select(&rows, "SELECT * FROM queued_press ORDER BY release_at, id"); err != nil {
		return nil, fmt.Errorf("list queued press: %w", err)
	}
	out := make([]model.QueuedPress, 0, len(rows))
	for _, row := range rows {
		qp, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, qp)
	}
	return out, nil
}

// ClearQueuedPress removes a queued row after release.
func (s *Store) ClearQueuedPress(id int64) error {
	if _, err := s.conn.Exec("DELETE FROM queued_press WHERE id = ?", id); err != nil {
		return fmt.Errorf("clear queued press %d: %w", id, err)
	}
	return nil
}

// CountQueuedPress returns the number of queued releases.
func (s *Store) CountQueuedPress() (int, error) {
	var n int
	if err := s.conn.Get(&n, "SELECT COUNT(*) FROM queued_press"); err != nil {
		return 0, fmt.Errorf("count queued press: %w", err)
	}
	return n, nil
}
