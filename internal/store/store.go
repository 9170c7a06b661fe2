// Package store provides SQLite-backed persistence for the game engine.
// It is the sole durability boundary: every state change lands here before
// any press is returned to a caller.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// Store wraps a SQLite connection plus small read caches for the two
// entities the handlers touch constantly. Caches are invalidated on write.
type Store struct {
	conn *sqlx.DB

	mu       sync.Mutex
	txDepth  int
	players  map[string]*model.Player
	scholars map[string]*model.Scholar
}

// Open opens or creates a SQLite database at the given path.
// Use ":memory:" for throwaway test stores.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// The engine is single-writer; one connection keeps SQLite happy and
	// keeps :memory: databases coherent across calls.
	conn.SetMaxOpenConns(1)

	s := &Store{
		conn:     conn,
		players:  make(map[string]*model.Player),
		scholars: make(map[string]*model.Scholar),
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		reputation INTEGER NOT NULL,
		influence_json TEXT NOT NULL,
		cooldowns_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scholars (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		employer TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS theories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		player TEXT NOT NULL,
		theory TEXT NOT NULL,
		confidence TEXT NOT NULL,
		supporters_json TEXT NOT NULL,
		deadline TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expeditions (
		code TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		player TEXT NOT NULL,
		exp_type TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		action TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS press_archive (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		press_type TEXT NOT NULL,
		headline TEXT NOT NULL,
		body TEXT NOT NULL,
		metadata_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS queued_press (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		release_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS offers (
		id TEXT PRIMARY KEY,
		scholar TEXT NOT NULL,
		target_faction TEXT NOT NULL,
		rival TEXT NOT NULL,
		patron TEXT NOT NULL,
		offer_type TEXT NOT NULL,
		influence_json TEXT NOT NULL,
		terms_json TEXT NOT NULL,
		status TEXT NOT NULL,
		parent_offer_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		resolved_at TEXT
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_type TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		subject_id TEXT NOT NULL DEFAULT '',
		payload_json TEXT NOT NULL,
		status TEXT NOT NULL,
		scheduled_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		source_table TEXT NOT NULL DEFAULT '',
		source_id TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS mentorships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player TEXT NOT NULL,
		scholar TEXT NOT NULL,
		started_at TEXT NOT NULL,
		status TEXT NOT NULL,
		track TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conferences (
		code TEXT PRIMARY KEY,
		player TEXT NOT NULL,
		theory_id INTEGER NOT NULL REFERENCES theories(id),
		confidence TEXT NOT NULL,
		supporters_json TEXT NOT NULL,
		opposition_json TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		reputation_delta INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS symposium_topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_date TEXT NOT NULL,
		topic TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL,
		winner INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS symposium_proposals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player TEXT NOT NULL,
		topic TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expire_at TEXT NOT NULL,
		priority REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS symposium_votes (
		topic_id INTEGER NOT NULL REFERENCES symposium_topics(id),
		player TEXT NOT NULL,
		option INTEGER NOT NULL,
		voted_at TEXT NOT NULL,
		PRIMARY KEY (topic_id, player)
	);

	CREATE TABLE IF NOT EXISTS symposium_pledges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id INTEGER NOT NULL,
		player TEXT NOT NULL,
		amount INTEGER NOT NULL,
		faction TEXT NOT NULL,
		status TEXT NOT NULL,
		resolved_at TEXT
	);

	CREATE TABLE IF NOT EXISTS symposium_participation (
		player TEXT PRIMARY KEY,
		miss_streak INTEGER NOT NULL DEFAULT 0,
		grace_window_start TEXT,
		grace_miss_consumed INTEGER NOT NULL DEFAULT 0,
		last_voted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS influence_debts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player TEXT NOT NULL,
		faction TEXT NOT NULL,
		source TEXT NOT NULL,
		amount INTEGER NOT NULL,
		reprisal_level INTEGER NOT NULL DEFAULT 0,
		last_reprisal_at TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (player, faction, source)
	);

	CREATE TABLE IF NOT EXISTS seasonal_commitments (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL,
		faction TEXT NOT NULL,
		tier TEXT NOT NULL,
		base_cost INTEGER NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		last_processed_at TEXT,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS faction_projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		faction TEXT NOT NULL,
		progress REAL NOT NULL DEFAULT 0,
		target REAL NOT NULL,
		status TEXT NOT NULL,
		metadata_json TEXT NOT NULL DEFAULT '{}',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS faction_investments (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL,
		faction TEXT NOT NULL,
		amount INTEGER NOT NULL,
		program TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_endowments (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL,
		faction TEXT NOT NULL,
		amount INTEGER NOT NULL,
		program TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timeline (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current_year INTEGER NOT NULL,
		last_advanced TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status_sched ON orders(status, scheduled_at);
	CREATE INDEX IF NOT EXISTS idx_orders_type_status ON orders(order_type, status);
	CREATE INDEX IF NOT EXISTS idx_queued_press_release ON queued_press(release_at);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
	CREATE INDEX IF NOT EXISTS idx_press_type ON press_archive(press_type);
	CREATE INDEX IF NOT EXISTS idx_debts_player ON influence_debts(player, source);
	CREATE INDEX IF NOT EXISTS idx_pledges_topic ON symposium_pledges(topic_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// timeFmt is the canonical timestamp encoding for every table.
const timeFmt = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeFmt)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFmt, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func fmtNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func marshal(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// InTx runs fn inside one transaction; the multi-row writes of a single
// game operation go through here so partial state is never persisted.
// Nested calls become savepoints: an inner failure rolls back only its
// own writes while the enclosing transaction continues. Any rollback
// also drops the entity caches, since handlers mutate cached players
// and scholars in place before writing them back.
//
// The store runs on one connection, so plain BEGIN/COMMIT statements on
// the pool address the same transaction fn's writes go through.
func (s *Store) InTx(fn func() error) error {
	s.mu.Lock()
	depth := s.txDepth
	s.txDepth++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.txDepth--
		s.mu.Unlock()
	}()

	if depth > 0 {
		return s.inSavepoint(depth, fn)
	}
	if _, err := s.conn.Exec("BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.conn.Exec("ROLLBACK"); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		s.dropCaches()
		return err
	}
	if _, err := s.conn.Exec("COMMIT"); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) inSavepoint(depth int, fn func() error) error {
	name := fmt.Sprintf("op_%d", depth)
	if _, err := s.conn.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.conn.Exec("ROLLBACK TO " + name); rbErr != nil {
			return fmt.Errorf("rollback to %s after %v: %w", name, err, rbErr)
		}
		if _, relErr := s.conn.Exec("RELEASE " + name); relErr != nil {
			return fmt.Errorf("release %s: %w", name, relErr)
		}
		s.dropCaches()
		return err
	}
	if _, err := s.conn.Exec("RELEASE " + name); err != nil {
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// dropCaches forgets every cached entity so the next read comes from
// disk. Called after a rollback, when cached structs may carry
// mutations the database never saw.
func (s *Store) dropCaches() {
	s.mu.Lock()
	s.players = make(map[string]*model.Player)
	s.scholars = make(map[string]*model.Scholar)
	s.mu.Unlock()
}
