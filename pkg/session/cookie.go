// This file implements the cookie-backed credential store. Each token is
// stored in its own http-only, SameSite=Lax cookie and signed with an HMAC
// so a tampered value is treated the same as a missing one. The expiry is
// stored as epoch milliseconds which keeps the cookie value an opaque
// string the browser never needs to interpret.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	accessCookie  = "spotify_access_token"
	refreshCookie = "spotify_refresh_token"
	expiryCookie  = "spotify_token_expires_at"

	// cookieMaxAge bounds how long the browser keeps the token cookies.
	cookieMaxAge = 3600
)

// SignValue computes an HMAC signature for value and appends it using the
// format value|signature. The signature is base64 URL encoded so it can be
// safely stored in cookies.
func SignValue(value string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)
	return value + "|" + base64.RawURLEncoding.EncodeToString(sig)
}

// VerifyValue checks the HMAC signature appended to signed. It returns the
// original value and true when the signature matches the provided key.
func VerifyValue(signed string, key []byte) (string, bool) {
	parts := strings.Split(signed, "|")
	if len(parts) != 2 {
		return "", false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(parts[0]))
	expected := mac.Sum(nil)
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !hmac.Equal(expected, sig) {
		return "", false
	}
	return parts[0], true
}

// CookieStore keeps the credential triple entirely client-side in signed
// cookies. It holds no server state so any instance can serve any request.
type CookieStore struct {
	// Key signs cookie values so clients cannot forge tokens.
	Key []byte
}

var _ Store = (*CookieStore)(nil)

// Get reassembles the credential triple from the request cookies. A missing
// or tampered access token cookie yields ErrNoSession; a bad refresh or
// expiry cookie degrades to an empty field rather than failing the request.
func (s *CookieStore) Get(r *http.Request) (Credentials, error) {
	access, ok := s.cookieValue(r, accessCookie)
	if !ok {
		return Credentials{}, ErrNoSession
	}
	c := Credentials{AccessToken: access}
	if refresh, ok := s.cookieValue(r, refreshCookie); ok {
		c.RefreshToken = refresh
	}
	if raw, ok := s.cookieValue(r, expiryCookie); ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.ExpiresAt = time.UnixMilli(ms)
		}
	}
	return c, nil
}

// Set writes the triple back as three signed cookies.
func (s *CookieStore) Set(w http.ResponseWriter, r *http.Request, c Credentials) error {
	secure := r.TLS != nil
	s.setCookie(w, accessCookie, c.AccessToken, secure)
	s.setCookie(w, refreshCookie, c.RefreshToken, secure)
	s.setCookie(w, expiryCookie, strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10), secure)
	return nil
}

// Clear expires all three cookies on the client.
func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{accessCookie, refreshCookie, expiryCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (s *CookieStore) cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	return VerifyValue(c.Value, s.Key)
}

func (s *CookieStore) setCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    SignValue(value, s.Key),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
