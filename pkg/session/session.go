// Package session defines the credential store used to carry one user's
// Spotify tokens across requests. The store is deliberately an interface so
// the rest of the application never assumes a particular storage medium;
// the default implementation keeps the tokens in signed cookies while
// pkg/db provides a server-side table keyed by a session cookie.
package session

import (
	"errors"
	"net/http"
	"time"
)

// ErrNoSession is returned by Store.Get when the request carries no usable
// credentials, either because the user never logged in or because the
// session was cleared.
var ErrNoSession = errors.New("no session credentials")

// Credentials is the token triple obtained from the Spotify authorization
// flow. If AccessToken is set ExpiresAt must be set as well so callers can
// compare it against the clock.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// HasAccessToken reports whether an access token is present at all. A
// credential without an access token means the user must log in again.
func (c Credentials) HasAccessToken() bool {
	return c.AccessToken != ""
}

// Expired reports whether the access token has passed its expiry at the
// supplied instant.
func (c Credentials) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Store persists one session's credential triple. Implementations read the
// session identity from the request and write updates to the response so
// the transport mechanism (cookies, server-side table) stays encapsulated.
type Store interface {
	// Get returns the credentials for the request's session. ErrNoSession
	// is returned when none exist.
	Get(r *http.Request) (Credentials, error)

	// Set replaces the session's credentials with c.
	Set(w http.ResponseWriter, r *http.Request, c Credentials) error

	// Clear removes the session's credentials, logging the user out.
	Clear(w http.ResponseWriter, r *http.Request)
}
