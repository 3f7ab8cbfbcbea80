// Package db provides the optional server-side backing for the session
// credential store. It wraps a SQLite database holding a single sessions
// table; the browser only ever sees an opaque session identifier while the
// token triple stays on the server. Nothing besides session credentials is
// persisted. Callers are expected to open a single DB instance using New
// and reuse it for all operations.

package db

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"Moodlist-Go/pkg/session"
)

// DB wraps a sql.DB connection and exposes helper methods for the session
// table.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path. If the file does not exist
// it is created along with the required schema.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		expires_at INTEGER NOT NULL
	)`
	if _, err := d.Exec(stmt); err != nil {
		d.Close()
		return nil, err
	}
	return &DB{d}, nil
}

// GetSession returns the credentials stored for the session id. A missing
// row is reported as session.ErrNoSession.
func (d *DB) GetSession(id string) (session.Credentials, error) {
	row := d.QueryRow(`SELECT access_token, refresh_token, expires_at FROM sessions WHERE id = ?`, id)
	var c session.Credentials
	var expiry int64
	if err := row.Scan(&c.AccessToken, &c.RefreshToken, &expiry); err != nil {
		if err == sql.ErrNoRows {
			return session.Credentials{}, session.ErrNoSession
		}
		return session.Credentials{}, err
	}
	c.ExpiresAt = time.UnixMilli(expiry)
	return c, nil
}

// SaveSession inserts or replaces the credentials for the session id.
func (d *DB) SaveSession(id string, c session.Credentials) error {
	_, err := d.Exec(`INSERT OR REPLACE INTO sessions (id, access_token, refresh_token, expires_at) VALUES (?, ?, ?, ?)`,
		id, c.AccessToken, c.RefreshToken, c.ExpiresAt.UnixMilli())
	return err
}

// DeleteSession removes the session row. Deleting a session that does not
// exist is not an error.
func (d *DB) DeleteSession(id string) error {
	_, err := d.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// SessionStore adapts the sessions table to the session.Store interface.
// The browser carries only a signed session_id cookie; a new identifier is
// minted the first time credentials are stored.
type SessionStore struct {
	DB *DB
	// Key signs the session_id cookie.
	Key []byte
}

const sessionCookie = "session_id"

var _ session.Store = (*SessionStore)(nil)

// Get looks up the credentials referenced by the request's session cookie.
func (s *SessionStore) Get(r *http.Request) (session.Credentials, error) {
	id, ok := s.sessionID(r)
	if !ok {
		return session.Credentials{}, session.ErrNoSession
	}
	return s.DB.GetSession(id)
}

// Set stores the credentials server-side, minting a session identifier and
// setting its cookie when the request does not already carry one.
func (s *SessionStore) Set(w http.ResponseWriter, r *http.Request, c session.Credentials) error {
	id, ok := s.sessionID(r)
	if !ok {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.SignValue(id, s.Key),
			Path:     "/",
			MaxAge:   3600,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.DB.SaveSession(id, c)
}

// Clear deletes the server-side row and expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.sessionID(r); ok {
		s.DB.DeleteSession(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionStore) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	return session.VerifyValue(c.Value, s.Key)
}
