// This file implements the playlist.Assembler stage: creating a private
// playlist for the current user and adding the resolved tracks to it.
// Creation and population failures are reported through distinct sentinel
// errors so callers can tell a playlist that exists but is empty apart
// from one that was never created.
package spotify

import (
	"context"
	"errors"
	"fmt"

	libspotify "github.com/zmb3/spotify"

	"Moodlist-Go/pkg/playlist"
)

var (
	// ErrNoUser means the current user's identity could not be resolved
	// from the access token, so no playlist owner is known.
	ErrNoUser = errors.New("no user id available")

	// ErrCreatePlaylist means the playlist itself could not be created.
	ErrCreatePlaylist = errors.New("playlist creation failed")

	// ErrPopulatePlaylist means the playlist was created but adding the
	// tracks failed; the error message carries the orphaned playlist ID.
	ErrPopulatePlaylist = errors.New("playlist population failed")
)

var _ playlist.Assembler = (*Client)(nil)

// CreateAndFill creates a non-public playlist named title for the user
// behind accessToken and adds all trackIDs to it in one call. On a
// population failure the created playlist is returned alongside the error;
// it is not rolled back.
func (c *Client) CreateAndFill(ctx context.Context, accessToken, title string, trackIDs []string) (*playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uc := c.newUserClient(accessToken)

	user, err := uc.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoUser, err)
	}
	if user == nil || user.ID == "" {
		return nil, ErrNoUser
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := uc.CreatePlaylistForUser(user.ID, title, "", false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreatePlaylist, err)
	}

	result := &playlist.Playlist{
		ID:       string(created.ID),
		Owner:    user.ID,
		Title:    created.Name,
		TrackIDs: trackIDs,
	}
	if len(trackIDs) == 0 {
		return result, nil
	}

	ids := make([]libspotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = libspotify.ID(id)
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: playlist %s: %v", ErrPopulatePlaylist, created.ID, err)
	}
	if _, err := uc.AddTracksToPlaylist(created.ID, ids...); err != nil {
		return result, fmt.Errorf("%w: playlist %s: %v", ErrPopulatePlaylist, created.ID, err)
	}
	return result, nil
}
