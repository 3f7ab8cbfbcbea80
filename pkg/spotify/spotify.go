// Package spotify wraps the official Spotify client library with the three
// capabilities this application needs: anonymous catalog search via the
// client credentials flow, concurrent resolution of song suggestions to
// track IDs, and playlist creation on behalf of the logged-in user.
//
// Search uses an application token obtained fresh per call, mirroring the
// stateless search path; playlist operations use the user's access token
// supplied by the caller. The wrapped library does not accept a context so
// cancellation is checked explicitly before each call.

package spotify

import (
	"context"
	"fmt"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// searcher is the subset of the spotify.Client used for catalog search. It
// allows the concrete client to be replaced in tests.
type searcher interface {
	SearchOpt(query string, t libspotify.SearchType, opt *libspotify.Options) (*libspotify.SearchResult, error)
}

// userClient is the subset of the spotify.Client used for operations that
// act on behalf of the logged-in user.
type userClient interface {
	CurrentUser() (*libspotify.PrivateUser, error)
	CreatePlaylistForUser(userID, playlistName, description string, public bool) (*libspotify.FullPlaylist, error)
	AddTracksToPlaylist(playlistID libspotify.ID, trackIDs ...libspotify.ID) (string, error)
}

// Client provides access to the Spotify Web API. Construct with NewClient.
type Client struct {
	clientID     string
	clientSecret string

	// factories so tests can substitute fakes for the real API clients.
	newSearcher   func(ctx context.Context) (searcher, error)
	newUserClient func(accessToken string) userClient

	// limiter paces outbound search calls across a resolution batch.
	limiter *rate.Limiter
}

// NewClient returns a Client authenticating searches with the given
// application credentials from the Spotify developer dashboard.
func NewClient(clientID, clientSecret string) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      rate.NewLimiter(rate.Limit(searchConcurrency), searchConcurrency),
	}
	c.newSearcher = c.appSearcher
	c.newUserClient = defaultUserClient
	return c
}

// appSearcher obtains a fresh client-credentials token and wraps it in an
// API client. The token is user-independent and deliberately not cached.
func (c *Client) appSearcher(ctx context.Context) (searcher, error) {
	conf := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     libspotify.TokenURL,
	}
	token, err := conf.Token(ctx)
	if err != nil {
		return nil, err
	}
	cl := libspotify.Authenticator{}.NewClient(token)
	return &cl, nil
}

func defaultUserClient(accessToken string) userClient {
	cl := libspotify.Authenticator{}.NewClient(&oauth2.Token{AccessToken: accessToken})
	return &cl
}

// SearchTrack queries the catalog for the best match of a track and artist
// pair using Spotify's field query syntax, limited to a single result.
func (c *Client) SearchTrack(ctx context.Context, track, artist string) (*libspotify.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := c.newSearcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain search token: %w", err)
	}
	limit := 1
	query := fmt.Sprintf("track:%s artist:%s", track, artist)
	return s.SearchOpt(query, libspotify.SearchTypeTrack, &libspotify.Options{Limit: &limit})
}
