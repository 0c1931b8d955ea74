package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atlekbai/fsm"
)

// SQLiteStore stores machine events in SQLite.
type SQLiteStore struct {
	db   *sql.DB
	owns bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the schema in db and returns a store using it.
// The caller keeps ownership of db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return s, nil
}

// OpenSQLite opens the database at path, creating it if needed. Close
// releases the database. Use ":memory:" for a throwaway journal.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owns = true
	return s, nil
}

// Close closes the database if the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owns {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS machine_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			machine_id TEXT NOT NULL,
			machine TEXT NOT NULL DEFAULT '',
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			from_state TEXT NOT NULL DEFAULT '',
			to_state TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_machine_events_machine_id ON machine_events(machine_id, id);
	`)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, ev fsm.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO machine_events (machine_id, machine, at, type, state, from_state, to_state, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.MachineID,
		ev.Machine,
		at.UnixNano(),
		string(ev.Type),
		ev.State,
		ev.From,
		ev.To,
		ev.Kind,
	)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, machineID string) ([]fsm.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT machine_id, machine, at, type, state, from_state, to_state, kind
		FROM machine_events
		WHERE machine_id = ?
		ORDER BY id ASC`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fsm.Event
	for rows.Next() {
		var (
			ev  fsm.Event
			atN int64
			typ string
		)
		if err := rows.Scan(&ev.MachineID, &ev.Machine, &atN, &typ, &ev.State, &ev.From, &ev.To, &ev.Kind); err != nil {
			return nil, err
		}
		ev.At = time.Unix(0, atN)
		ev.Type = fsm.EventType(typ)
		out = append(out, ev)
	}
	return out, rows.Err()
}
