// This file implements the playlist creation endpoint: the single entry
// point into the generation pipeline. The token lifecycle guard runs first
// so the pipeline always receives a fresh access token, and each pipeline
// error class maps to a distinct response so partial states (playlist
// created but empty) stay diagnosable.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"Moodlist-Go/pkg/gemini"
	"Moodlist-Go/pkg/playlist"
	"Moodlist-Go/pkg/spotify"
)

// CreatePlaylistJSON handles POST /api/playlist. The body carries the mood
// description, the desired number of songs (string or number, matching
// what the form submits) and the playlist title. On success the response
// is an empty 200; the created playlist's ID is not returned.
func (app *Application) CreatePlaylistJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		Content       string `json:"content"`
		NumberOfSongs any    `json:"numberOfSongs"`
		Title         string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	count := parseCount(req.NumberOfSongs)
	if req.Content == "" || req.Title == "" || count <= 0 {
		respondJSONError(w, http.StatusBadRequest, "content, numberOfSongs and title are required")
		return
	}

	creds, err := app.Guard.Ensure(w, r)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	created, err := app.Pipeline.Run(r.Context(), creds.AccessToken, playlist.Request{
		Prompt: req.Content,
		Count:  count,
		Title:  req.Title,
	})
	if err != nil {
		app.respondPipelineError(w, created, err)
		return
	}
	log.WithFields(log.Fields{
		"playlist": created.ID,
		"owner":    created.Owner,
		"tracks":   len(created.TrackIDs),
	}).Info("playlist created")
	pipelineRuns.WithLabelValues("success").Inc()
	w.WriteHeader(http.StatusOK)
}

// respondPipelineError translates a pipeline failure into a status code and
// JSON envelope. Nothing is silently dropped: every branch logs or
// responds with the stage that failed.
func (app *Application) respondPipelineError(w http.ResponseWriter, created *playlist.Playlist, err error) {
	switch {
	case errors.Is(err, playlist.ErrInvalidRequest):
		pipelineRuns.WithLabelValues("invalid").Inc()
		respondJSONError(w, http.StatusBadRequest, "content, numberOfSongs and title are required")
	case errors.Is(err, gemini.ErrMalformedGeneration):
		log.WithError(err).Error("song generation failed")
		pipelineRuns.WithLabelValues("generate_failed").Inc()
		respondJSONError(w, http.StatusBadGateway, "failed to generate song suggestions")
	case errors.Is(err, spotify.ErrNoUser):
		log.WithError(err).Error("current user lookup failed")
		pipelineRuns.WithLabelValues("no_user").Inc()
		respondJSONError(w, http.StatusBadGateway, "failed to resolve the current user")
	case errors.Is(err, spotify.ErrPopulatePlaylist):
		// The playlist exists but is empty; surface that distinctly so the
		// partial state is never hidden.
		fields := log.Fields{}
		if created != nil {
			fields["playlist"] = created.ID
		}
		log.WithError(err).WithFields(fields).Error("playlist populated with no tracks")
		pipelineRuns.WithLabelValues("populate_failed").Inc()
		respondJSONError(w, http.StatusBadGateway, "playlist was created but adding tracks failed")
	default:
		log.WithError(err).Error("playlist creation failed")
		pipelineRuns.WithLabelValues("create_failed").Inc()
		respondJSONError(w, http.StatusBadGateway, "failed to create playlist")
	}
}

// parseCount accepts the numberOfSongs field as either a JSON number or a
// numeric string.
func parseCount(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		c, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return c
	default:
		return 0
	}
}
