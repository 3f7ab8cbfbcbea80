// Package auth implements the Spotify authorization-code flow and the token
// lifecycle guard that sits in front of every user-scoped API call. The flow
// produces and consumes the token triple held by the session store; the
// guard decides whether a request may proceed, needs a silent refresh or
// must be sent back through the login redirect.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Moodlist-Go/pkg/session"
)

var (
	// ErrStateMismatch means the callback's state parameter did not match
	// the nonce issued at login. The authorization attempt is rejected
	// outright; no code exchange is performed.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrNoRefreshToken means a refresh was requested without a refresh
	// token to spend.
	ErrNoRefreshToken = errors.New("no refresh token provided")

	// ErrExchange wraps a failed token-endpoint exchange, either a non-2xx
	// response or an unparseable body.
	ErrExchange = errors.New("provider token exchange failed")
)

// Scopes requested at login. Playlist modification needs the first two;
// resolving the current user's profile needs the rest.
var Scopes = []string{
	"playlist-modify-public",
	"playlist-modify-private",
	"user-read-private",
	"user-read-email",
}

// Flow drives the authorization-code lifecycle against the Spotify accounts
// service: consent URL generation, code exchange and refresh.
type Flow struct {
	conf *oauth2.Config
}

// NewFlow builds a Flow from the application credentials registered in the
// Spotify developer dashboard. redirectURL must match the callback
// configured there.
func NewFlow(clientID, clientSecret, redirectURL string) *Flow {
	return &Flow{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  libspotify.AuthURL,
			TokenURL: libspotify.TokenURL,
		},
	}}
}

// BeginLogin generates a fresh state nonce and returns the consent page URL
// carrying it. The caller is responsible for persisting the nonce and
// issuing the redirect.
func (f *Flow) BeginLogin() (redirectURL, state string, err error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state = base64.RawURLEncoding.EncodeToString(b)
	return f.conf.AuthCodeURL(state), state, nil
}

// CompleteLogin verifies the round-tripped state nonce and exchanges the
// authorization code for a token triple. The state check happens first and
// a mismatch is a hard rejection: the token endpoint is never contacted.
func (f *Flow) CompleteLogin(ctx context.Context, code, returnedState, storedState string) (session.Credentials, error) {
	if storedState == "" || returnedState == "" || returnedState != storedState {
		return session.Credentials{}, ErrStateMismatch
	}
	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return session.Credentials{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return credentialsFromToken(tok), nil
}

// Refresh trades the refresh token for a new access token. Spotify may or
// may not rotate the refresh token; either way the triple returned here
// carries whichever refresh token is now current and should replace the
// stored one wholesale.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	if refreshToken == "" {
		return session.Credentials{}, ErrNoRefreshToken
	}
	tok, err := f.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return session.Credentials{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return credentialsFromToken(tok), nil
}

func credentialsFromToken(tok *oauth2.Token) session.Credentials {
	return session.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}
