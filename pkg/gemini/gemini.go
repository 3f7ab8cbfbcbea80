// Package gemini implements the playlist.Generator interface using the
// Google Generative Language API. Only the generateContent endpoint is
// used. An API key must be provided when constructing the client.
//
// Network calls are performed using the provided http.Client allowing
// callers to substitute a test client or endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"Moodlist-Go/pkg/playlist"
)

// ErrMalformedGeneration means the model's reply, after fence stripping,
// was not a JSON array of objects with non-empty track and artist fields.
var ErrMalformedGeneration = errors.New("malformed generation output")

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// songPrompt is the instruction sent to the model. The schema is spelled
// out verbatim so the reply can be parsed without free-text scraping.
const songPrompt = `Suggest %d songs matching the following mood: %s.
Reply using the JSON schema below and do not add any text besides the JSON.

[
    {
        "track": "string",
        "artist": "string"
    }
]`

// Client calls the Generative Language API. Fields may be left zero to use
// the production endpoint and default model.
type Client struct {
	Key     string
	Model   string
	BaseURL string
	Client  *http.Client
}

var _ playlist.Generator = (*Client)(nil)

// request/response shapes for the generateContent endpoint. Only the fields
// this application reads are declared.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for n songs matching the prompt and parses the
// reply into song pairs. The model is not guaranteed to honour n exactly;
// whatever well-formed list comes back is returned as-is.
func (c *Client) Generate(ctx context.Context, prompt string, n int) ([]playlist.Song, error) {
	text, err := c.generateText(ctx, fmt.Sprintf(songPrompt, n, prompt))
	if err != nil {
		return nil, err
	}
	return parseSongs(text)
}

// generateText performs the API call and returns the first candidate's raw
// text.
func (c *Client) generateText(ctx context.Context, instruction string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: instruction}}}}})
	if err != nil {
		return "", err
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, model, c.Key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini generate error: %s", resp.Status)
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", ErrMalformedGeneration)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// stripFences removes the markdown code fence the model often wraps around
// JSON replies, with or without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseSongs validates the cleaned reply into song pairs. Any structural
// problem, including empty track or artist values, is reported as
// ErrMalformedGeneration.
func parseSongs(text string) ([]playlist.Song, error) {
	cleaned := stripFences(text)
	var songs []playlist.Song
	if err := json.Unmarshal([]byte(cleaned), &songs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneration, err)
	}
	for _, s := range songs {
		if s.Track == "" || s.Artist == "" {
			return nil, fmt.Errorf("%w: song entry missing track or artist", ErrMalformedGeneration)
		}
	}
	return songs, nil
}
