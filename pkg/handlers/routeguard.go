// This file defines the route guard middleware applied to page routes. API
// endpoints, the login/callback pair and operational paths are exempt; the
// API enforces authentication itself via Guard.Ensure so it can answer
// with JSON instead of a redirect.

package handlers

import (
	"net/http"
	"strings"
)

// guardExempt lists path prefixes the route guard passes through untouched.
var guardExempt = []string{
	"/api/",
	"/login",
	"/callback",
	"/logout",
	"/error",
	"/metrics",
	"/static/",
}

// RequireAuth wraps next with the token lifecycle guard. Requests with a
// valid access token pass through; an expired token with a refresh token is
// silently refreshed (rewriting the session cookies) before the request
// proceeds; anything else is redirected to the login entry.
func (app *Application) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range guardExempt {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		if _, err := app.Guard.Ensure(w, r); err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
