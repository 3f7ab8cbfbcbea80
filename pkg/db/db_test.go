package db

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Moodlist-Go/pkg/session"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSessionRoundTrip(t *testing.T) {
	d := newTestDB(t)
	want := session.Credentials{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Millisecond),
	}
	if err := d.SaveSession("s1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := d.GetSession("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("unexpected credentials: %+v", got)
	}
}

func TestGetSessionMissing(t *testing.T) {
	d := newTestDB(t)
	if _, err := d.GetSession("nope"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSaveSessionReplaces(t *testing.T) {
	d := newTestDB(t)
	first := session.Credentials{AccessToken: "old", ExpiresAt: time.Now()}
	second := session.Credentials{AccessToken: "new", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour)}
	if err := d.SaveSession("s1", first); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveSession("s1", second); err != nil {
		t.Fatal(err)
	}
	got, err := d.GetSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "new" {
		t.Errorf("session not replaced: %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	d := newTestDB(t)
	if err := d.SaveSession("s1", session.Credentials{AccessToken: "at", ExpiresAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteSession("s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetSession("s1"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after delete, got %v", err)
	}
	if err := d.DeleteSession("s1"); err != nil {
		t.Errorf("double delete should be a no-op, got %v", err)
	}
}

// TestSessionStoreRoundTrip drives the Store interface the way a browser
// would: the first Set mints a session cookie which is replayed on the
// following requests.
func TestSessionStoreRoundTrip(t *testing.T) {
	d := newTestDB(t)
	store := &SessionStore{DB: d, Key: []byte("key")}

	creds := session.Credentials{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour)}
	rr := httptest.NewRecorder()
	if err := store.Set(rr, httptest.NewRequest(http.MethodGet, "/", nil), creds); err != nil {
		t.Fatalf("set: %v", err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session_id" {
		t.Fatalf("expected a single session_id cookie, got %v", cookies)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	got, err := store.Get(next)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "at" {
		t.Errorf("unexpected credentials: %+v", got)
	}

	// clearing removes the row and expires the cookie
	rr2 := httptest.NewRecorder()
	store.Clear(rr2, next)
	if _, err := store.Get(next); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestSessionStoreNoCookie(t *testing.T) {
	d := newTestDB(t)
	store := &SessionStore{DB: d, Key: []byte("key")}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := store.Get(r); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

// Reusing an existing session cookie must update the same row rather than
// minting a second session.
func TestSessionStoreReusesSessionID(t *testing.T) {
	d := newTestDB(t)
	store := &SessionStore{DB: d, Key: []byte("key")}

	rr := httptest.NewRecorder()
	if err := store.Set(rr, httptest.NewRequest(http.MethodGet, "/", nil), session.Credentials{AccessToken: "one", ExpiresAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	cookie := rr.Result().Cookies()[0]

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookie)
	rr2 := httptest.NewRecorder()
	if err := store.Set(rr2, r2, session.Credentials{AccessToken: "two", ExpiresAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if len(rr2.Result().Cookies()) != 0 {
		t.Error("second Set minted a new session cookie")
	}
	got, err := store.Get(r2)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "two" {
		t.Errorf("row not updated in place: %+v", got)
	}
}
