// Package handlers contains the HTTP handlers for Moodlist-Go. The
// Application struct bundles the injected dependencies (authorization flow,
// token guard, credential store, pipeline and search client) so handlers
// carry no global state and every collaborator can be replaced with a test
// double.

package handlers

import (
	"context"
	"fmt"
	"html"
	"net/http"

	libspotify "github.com/zmb3/spotify"

	"Moodlist-Go/pkg/auth"
	"Moodlist-Go/pkg/playlist"
	"Moodlist-Go/pkg/session"
)

// TrackSearcher is the anonymous catalog search capability used by the
// search endpoint. It is satisfied by spotify.Client.
type TrackSearcher interface {
	SearchTrack(ctx context.Context, track, artist string) (*libspotify.SearchResult, error)
}

// AuthFlow is the slice of the authorization-code flow the login and
// callback handlers need. It is satisfied by auth.Flow.
type AuthFlow interface {
	BeginLogin() (redirectURL, state string, err error)
	CompleteLogin(ctx context.Context, code, returnedState, storedState string) (session.Credentials, error)
}

// Application holds the dependencies shared by the route handlers.
type Application struct {
	Flow     AuthFlow
	Guard    *auth.Guard
	Store    session.Store
	Pipeline *playlist.Pipeline
	Searcher TrackSearcher
	SignKey  []byte
}

// Home serves a minimal page with the playlist request form. The form posts
// to the JSON API from a small inline script so the page itself stays
// static.
func (app *Application) Home(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, `
		<h1>Moodlist</h1>
		<p>Describe a mood and get a Spotify playlist for it.</p>
		<form id="mood">
			<input type="text" name="content" placeholder="e.g. rainy sunday morning">
			<input type="number" name="numberOfSongs" value="10" min="1">
			<input type="text" name="title" placeholder="Playlist title">
			<button type="submit">Create playlist</button>
		</form>
		<p id="result"></p>
		<script>
		document.getElementById('mood').addEventListener('submit', async (e) => {
			e.preventDefault();
			const f = new FormData(e.target);
			const res = await fetch('/api/playlist', {
				method: 'POST',
				headers: {'Content-Type': 'application/json'},
				body: JSON.stringify({content: f.get('content'), numberOfSongs: f.get('numberOfSongs'), title: f.get('title')})
			});
			document.getElementById('result').textContent = res.ok ? 'Playlist created!' : 'Something went wrong.';
		});
		</script>
	`)
}

// ErrorPage renders the message query parameter on a bare page. The login
// callback redirects here on a state mismatch.
func (app *Application) ErrorPage(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("message")
	if msg == "" {
		msg = "something went wrong"
	}
	fmt.Fprintf(w, "<h1>Error</h1><p>%s</p><p><a href=\"/login\">Log in again</a></p>", html.EscapeString(msg))
}
