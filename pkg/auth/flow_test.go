package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// newTestFlow returns a Flow whose token endpoint points at the supplied
// test server so exchanges never leave the process.
func newTestFlow(tokenURL string) *Flow {
	return &Flow{conf: &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://example.com/callback",
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://example.com/authorize",
			TokenURL: tokenURL,
		},
	}}
}

// tokenServer responds to token requests with the given form of JSON body.
func tokenServer(t *testing.T, body string, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestBeginLoginProducesStateAndURL(t *testing.T) {
	f := newTestFlow("http://example.com/token")
	url, state, err := f.BeginLogin()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state) < 16 {
		t.Errorf("state too short: %q", state)
	}
	if !strings.Contains(url, "state="+state) {
		t.Errorf("redirect URL missing state: %s", url)
	}
	if !strings.Contains(url, "playlist-modify-private") {
		t.Errorf("redirect URL missing scopes: %s", url)
	}

	// each login attempt gets its own nonce
	_, state2, err := f.BeginLogin()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state == state2 {
		t.Error("state nonce reused across login attempts")
	}
}

func TestCompleteLoginStateMismatchSkipsExchange(t *testing.T) {
	hits := 0
	srv := tokenServer(t, `{}`, &hits)
	defer srv.Close()
	f := newTestFlow(srv.URL)

	cases := []struct{ returned, stored string }{
		{"abc", "xyz"},
		{"", "xyz"},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		_, err := f.CompleteLogin(context.Background(), "code", c.returned, c.stored)
		if !errors.Is(err, ErrStateMismatch) {
			t.Errorf("state %q/%q: expected ErrStateMismatch, got %v", c.returned, c.stored, err)
		}
	}
	if hits != 0 {
		t.Errorf("token endpoint contacted %d times on mismatch", hits)
	}
}

func TestCompleteLoginExchangesCode(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`, nil)
	defer srv.Close()
	f := newTestFlow(srv.URL)

	creds, err := f.CompleteLogin(context.Background(), "code", "same", "same")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessToken != "at" || creds.RefreshToken != "rt" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if !creds.ExpiresAt.After(time.Now()) {
		t.Errorf("expiry not in the future: %v", creds.ExpiresAt)
	}
}

func TestCompleteLoginProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()
	f := newTestFlow(srv.URL)

	_, err := f.CompleteLogin(context.Background(), "code", "s", "s")
	if !errors.Is(err, ErrExchange) {
		t.Fatalf("expected ErrExchange, got %v", err)
	}
}

func TestRefreshWithoutTokenNeverCallsNetwork(t *testing.T) {
	hits := 0
	srv := tokenServer(t, `{}`, &hits)
	defer srv.Close()
	f := newTestFlow(srv.URL)

	_, err := f.Refresh(context.Background(), "")
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if hits != 0 {
		t.Errorf("token endpoint contacted %d times", hits)
	}
}

func TestRefreshRotatedToken(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"new-at","refresh_token":"new-rt","token_type":"Bearer","expires_in":3600}`, nil)
	defer srv.Close()
	f := newTestFlow(srv.URL)

	creds, err := f.Refresh(context.Background(), "old-rt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessToken != "new-at" || creds.RefreshToken != "new-rt" {
		t.Errorf("rotated token not adopted: %+v", creds)
	}
}

// Spotify does not always rotate the refresh token; the old one must be
// carried forward when the response omits it.
func TestRefreshUnrotatedTokenKeepsOld(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"new-at","token_type":"Bearer","expires_in":3600}`, nil)
	defer srv.Close()
	f := newTestFlow(srv.URL)

	creds, err := f.Refresh(context.Background(), "old-rt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.RefreshToken != "old-rt" {
		t.Errorf("expected old refresh token kept, got %q", creds.RefreshToken)
	}
}
