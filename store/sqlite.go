// Package store persists agent identity and a journal of closed sessions
// to a local SQLite database, so an agent keeps its public identity across
// restarts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Aganium/agenium-go/session"
)

// ErrNoIdentity is returned when no identity has been saved for the name.
var ErrNoIdentity = errors.New("no stored identity")

// Identity is the persisted key material of an agent.
type Identity struct {
	Name          string
	PublicKeyB64  string
	PrivateKeyPEM string
	CreatedAt     time.Time
}

// SQLiteStore implements local persistence over SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			name TEXT PRIMARY KEY,
			public_key TEXT NOT NULL,
			private_key_pem TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_journal (
			id TEXT PRIMARY KEY,
			local_name TEXT NOT NULL,
			remote_name TEXT NOT NULL,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_local ON session_journal(local_name, updated_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// SaveIdentity stores or replaces the key material for name.
func (s *SQLiteStore) SaveIdentity(ctx context.Context, id Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (name, public_key, private_key_pem, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			public_key = excluded.public_key,
			private_key_pem = excluded.private_key_pem`,
		id.Name, id.PublicKeyB64, id.PrivateKeyPEM, time.Now())
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

// LoadIdentity fetches the key material stored for name.
func (s *SQLiteStore) LoadIdentity(ctx context.Context, name string) (Identity, error) {
	var id Identity
	err := s.db.QueryRowContext(ctx,
		`SELECT name, public_key, private_key_pem, created_at FROM identities WHERE name = ?`,
		name).Scan(&id.Name, &id.PublicKeyB64, &id.PrivateKeyPEM, &id.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, fmt.Errorf("%w: %s", ErrNoIdentity, name)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("loading identity: %w", err)
	}
	return id, nil
}

// JournalSession records a session's final state.
func (s *SQLiteStore) JournalSession(ctx context.Context, sess session.Session) error {
	var metadata []byte
	if len(sess.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(sess.Metadata)
		if err != nil {
			return fmt.Errorf("encoding session metadata: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO session_journal
			(id, local_name, remote_name, state, created_at, updated_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Local.Name, sess.Remote.Name, string(sess.State),
		sess.CreatedAt, sess.UpdatedAt, nullableString(metadata))
	if err != nil {
		return fmt.Errorf("journaling session: %w", err)
	}
	return nil
}

// JournaledSession is one row of the session journal.
type JournaledSession struct {
	ID         string
	LocalName  string
	RemoteName string
	State      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Metadata   map[string]any
}

// Journal lists journaled sessions for a local agent, most recent first.
func (s *SQLiteStore) Journal(ctx context.Context, localName string, limit int) ([]JournaledSession, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, local_name, remote_name, state, created_at, updated_at, metadata
		 FROM session_journal WHERE local_name = ?
		 ORDER BY updated_at DESC LIMIT ?`,
		localName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []JournaledSession
	for rows.Next() {
		var js JournaledSession
		var metadata sql.NullString
		if err := rows.Scan(&js.ID, &js.LocalName, &js.RemoteName, &js.State,
			&js.CreatedAt, &js.UpdatedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &js.Metadata); err != nil {
				return nil, fmt.Errorf("decoding session metadata: %w", err)
			}
		}
		out = append(out, js)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
