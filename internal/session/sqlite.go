package session

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "sessions.db"

//go:embed sql/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps sessions and entries in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) <dir>/sessions.db and applies
// pending migrations.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.Join(dir, sqliteFileName))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Create persists a new session.
func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id=?`, sess.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrSessionExists, sess.ID)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions(id,name,leaf,forked_from,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		sess.ID, sess.Name, sess.Leaf, sess.ForkedFrom, formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Load retrieves a session by id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,leaf,forked_from,created_at,updated_at FROM sessions WHERE id=?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// List returns all sessions ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,leaf,forked_from,created_at,updated_at FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Delete removes a session and its entries.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE session_id=?`, id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return tx.Commit()
}

// SetLeaf moves the active branch of a session.
func (s *SQLiteStore) SetLeaf(ctx context.Context, id, leaf string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET leaf=?, updated_at=? WHERE id=?`, leaf, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update leaf: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Append inserts an entry after all existing entries of the session.
func (s *SQLiteStore) Append(ctx context.Context, id string, e Entry) error {
	var msg sql.NullString
	if e.Message != nil {
		data, err := json.Marshal(e.Message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		msg = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries(session_id,id,parent_id,type,ts,message_json) VALUES (?,?,?,?,?,?)`,
		id, e.ID, e.ParentID, e.Type, formatTime(e.Timestamp), msg)
	if err != nil {
		if _, loadErr := s.Load(ctx, id); errors.Is(loadErr, ErrSessionNotFound) {
			return loadErr
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// Entries returns the entries of a session in insertion order.
func (s *SQLiteStore) Entries(ctx context.Context, id string) ([]Entry, error) {
	if _, err := s.Load(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,parent_id,type,ts,message_json FROM entries WHERE session_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			ts  string
			msg sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ParentID, &e.Type, &ts, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if msg.Valid {
			var m Message
			if err := json.Unmarshal([]byte(msg.String), &m); err != nil {
				return nil, fmt.Errorf("failed to parse message of entry %s: %w", e.ID, err)
			}
			e.Message = &m
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess             Session
		created, updated string
	)
	if err := row.Scan(&sess.ID, &sess.Name, &sess.Leaf, &sess.ForkedFrom, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if sess.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &sess, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// migrate applies embedded migrations in version order.
func migrate(db *sql.DB) error {
	files, err := fs.ReadDir(migrationsFS, "sql")
	if err != nil {
		return err
	}

	type migration struct {
		version int
		name    string
		upSQL   string
	}
	var migrations []migration
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := migrationsFS.ReadFile("sql/" + f.Name())
		if err != nil {
			return err
		}
		var v int
		if _, err := fmt.Sscanf(f.Name(), "%d_", &v); err != nil {
			return fmt.Errorf("invalid migration filename %s: %w", f.Name(), err)
		}
		migrations = append(migrations, migration{version: v, name: f.Name(), upSQL: string(data)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL);`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	err = tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}
		current = 0
	} else if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := tx.Exec(m.upSQL); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version=?`, m.version); err != nil {
			return fmt.Errorf("update schema_version: %w", err)
		}
		current = m.version
	}
	return tx.Commit()
}
