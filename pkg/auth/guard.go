// This file implements the token lifecycle guard. It classifies a session's
// credentials as unauthenticated, valid or expired and performs the silent
// refresh transition in front of user-scoped API calls. The guard fails
// closed: whenever no usable token can be produced the session is cleared
// and callers are told to send the user back through login.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"Moodlist-Go/pkg/session"
)

// ErrReauthRequired signals that no usable access token exists and the user
// must complete the login flow again before the request can proceed.
var ErrReauthRequired = errors.New("re-authorization required")

// refresher is the subset of Flow the guard depends on, allowing a fake in
// tests.
type refresher interface {
	Refresh(ctx context.Context, refreshToken string) (session.Credentials, error)
}

// Guard verifies token presence and freshness ahead of protected
// operations. The zero value is not usable; construct with NewGuard.
type Guard struct {
	flow  refresher
	store session.Store

	// mu serializes the refresh transition so concurrent requests from one
	// session do not each spend the refresh token.
	mu  sync.Mutex
	now func() time.Time
}

// NewGuard returns a Guard that reads credentials from store and refreshes
// them through flow.
func NewGuard(flow refresher, store session.Store) *Guard {
	return &Guard{flow: flow, store: store, now: time.Now}
}

// Ensure returns credentials that are valid right now, refreshing them if
// the access token expired. On success any renewed triple has already been
// written back to the store (and therefore to the response). When no usable
// token exists the session is cleared and ErrReauthRequired is returned.
func (g *Guard) Ensure(w http.ResponseWriter, r *http.Request) (session.Credentials, error) {
	creds, err := g.store.Get(r)
	if err != nil || !creds.HasAccessToken() {
		return session.Credentials{}, ErrReauthRequired
	}
	if !creds.Expired(g.now()) {
		return creds, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if creds.RefreshToken == "" {
		g.store.Clear(w, r)
		return session.Credentials{}, ErrReauthRequired
	}
	renewed, err := g.flow.Refresh(r.Context(), creds.RefreshToken)
	if err != nil {
		log.WithError(err).Warn("token refresh failed, forcing re-login")
		g.store.Clear(w, r)
		return session.Credentials{}, ErrReauthRequired
	}
	if err := g.store.Set(w, r, renewed); err != nil {
		log.WithError(err).Error("persist refreshed credentials")
		return session.Credentials{}, ErrReauthRequired
	}
	return renewed, nil
}
