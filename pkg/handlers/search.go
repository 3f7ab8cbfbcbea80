// This file implements the anonymous track search endpoint. It uses the
// client-credentials path only, so the token lifecycle guard does not run
// here and no user login is needed.

package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// SearchJSON handles GET /api/search?track=&artist= and returns the raw
// provider search response. Success is reported as 201 and failures are a
// generic 400, matching the contract the frontend expects.
func (app *Application) SearchJSON(w http.ResponseWriter, r *http.Request) {
	track := r.URL.Query().Get("track")
	artist := r.URL.Query().Get("artist")
	if track == "" || artist == "" {
		respondJSONError(w, http.StatusBadRequest, "track and artist are required")
		return
	}
	result, err := app.Searcher.SearchTrack(r.Context(), track, artist)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"track": track, "artist": artist}).Warn("search failed")
		respondJSONError(w, http.StatusBadRequest, "failed to search")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.WithError(err).Error("encode search response")
	}
}
