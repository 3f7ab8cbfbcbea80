// This file groups the authentication endpoints: the OAuth login redirect,
// the provider callback and logout. The CSRF state nonce is stored in a
// short-lived signed cookie and consumed exactly once by the callback; a
// mismatch rejects the whole authorization attempt rather than continuing.

package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"Moodlist-Go/pkg/auth"
	"Moodlist-Go/pkg/session"
)

// stateCookie holds the login state nonce between the redirect and the
// callback.
const stateCookie = "spotify_auth_state"

// Login begins the Spotify OAuth flow: it generates a state nonce, stores
// it in a signed cookie and redirects the user to the consent page.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	url, state, err := app.Flow.BeginLogin()
	if err != nil {
		log.WithError(err).Error("begin login")
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    session.SignValue(state, app.SignKey),
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback completes the OAuth flow. Missing parameters are a client
// error; a state mismatch redirects to the error page without ever
// contacting the token endpoint; on success the token triple is handed to
// the credential store and the user returns to the application root.
func (app *Application) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	returned := r.URL.Query().Get("state")
	if code == "" || returned == "" {
		respondJSONError(w, http.StatusBadRequest, "missing code or state parameter")
		return
	}
	var stored string
	if c, err := r.Cookie(stateCookie); err == nil {
		if v, ok := session.VerifyValue(c.Value, app.SignKey); ok {
			stored = v
		}
	}
	creds, err := app.Flow.CompleteLogin(r.Context(), code, returned, stored)
	if err != nil {
		if errors.Is(err, auth.ErrStateMismatch) {
			http.Redirect(w, r, "/error?message=state_mismatch", http.StatusFound)
			return
		}
		log.WithError(err).Error("token exchange")
		respondJSONError(w, http.StatusBadGateway, "authentication failed")
		return
	}
	// The nonce is single use; drop it now that the exchange succeeded.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})
	if err := app.Store.Set(w, r, creds); err != nil {
		log.WithError(err).Error("store credentials")
		respondJSONError(w, http.StatusInternalServerError, "failed to store session")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the stored credentials and the state nonce so the user
// must re-authenticate.
func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	app.Store.Clear(w, r)
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}
