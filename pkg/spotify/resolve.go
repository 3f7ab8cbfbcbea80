// This file implements the playlist.Resolver stage: fanning song
// suggestions out to concurrent catalog searches and collecting whichever
// track IDs come back. Per-song failures are logged and omitted rather
// than aborting the batch, and the output order follows completion order,
// not input order.
package spotify

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"Moodlist-Go/pkg/playlist"
)

// searchConcurrency bounds how many catalog searches run in parallel so a
// large generation batch cannot produce unbounded outbound calls.
const searchConcurrency = 4

var _ playlist.Resolver = (*Client)(nil)

// ResolveTracks maps each song to a track ID via search, running the
// lookups concurrently. Songs whose search fails or matches nothing are
// dropped; the batch always waits for every lookup to settle and never
// returns an error.
func (c *Client) ResolveTracks(ctx context.Context, songs []playlist.Song) []string {
	if len(songs) == 0 {
		return nil
	}
	jobs := make(chan playlist.Song)
	results := make(chan string, len(songs))

	workers := searchConcurrency
	if len(songs) < workers {
		workers = len(songs)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for song := range jobs {
				if id, ok := c.resolveOne(ctx, song); ok {
					results <- id
				}
			}
		}()
	}
	for _, song := range songs {
		jobs <- song
	}
	close(jobs)
	wg.Wait()
	close(results)

	var ids []string
	for id := range results {
		ids = append(ids, id)
	}
	return ids
}

// resolveOne performs a single search and extracts the first track's ID.
func (c *Client) resolveOne(ctx context.Context, song playlist.Song) (string, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", false
	}
	result, err := c.SearchTrack(ctx, song.Track, song.Artist)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"track":  song.Track,
			"artist": song.Artist,
		}).Warn("track search failed, skipping")
		return "", false
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		log.WithFields(log.Fields{
			"track":  song.Track,
			"artist": song.Artist,
		}).Info("no match for suggested track")
		return "", false
	}
	return string(result.Tracks.Tracks[0].ID), true
}
