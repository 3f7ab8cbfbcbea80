// Package playlist defines the data types and stage interfaces of the
// playlist-generation pipeline and the orchestrator that sequences them.
// Concrete stages live in pkg/gemini and pkg/spotify; by depending only on
// this package the orchestrator stays agnostic about the backing services
// and tests can inject fakes for each stage.
package playlist

import (
	"context"
	"errors"
)

// ErrInvalidRequest is returned by Run when the caller supplied an empty
// prompt or title, or a non-positive song count.
var ErrInvalidRequest = errors.New("invalid playlist request")

// Song is one recommendation produced by the generator: a track name and
// its artist. Songs are ephemeral and never persisted.
type Song struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
}

// Playlist describes the playlist created for the user. TrackIDs holds the
// resolved platform identifiers actually added, which may be fewer than the
// requested song count.
type Playlist struct {
	ID       string
	Owner    string
	Title    string
	TrackIDs []string
}

// Request carries the caller's input for one pipeline run.
type Request struct {
	Prompt string
	Count  int
	Title  string
}

// Generator turns a natural-language prompt into song recommendations. The
// returned list's length is not guaranteed to equal n.
type Generator interface {
	Generate(ctx context.Context, prompt string, n int) ([]Song, error)
}

// Resolver maps songs to platform track identifiers. Songs that cannot be
// resolved are omitted; the result carries no ordering guarantee relative
// to the input and resolution never fails as a whole.
type Resolver interface {
	ResolveTracks(ctx context.Context, songs []Song) []string
}

// Assembler creates a playlist owned by the user behind accessToken and
// fills it with the given track identifiers.
type Assembler interface {
	CreateAndFill(ctx context.Context, accessToken, title string, trackIDs []string) (*Playlist, error)
}

// Pipeline sequences generate, resolve and assemble for one request.
type Pipeline struct {
	Generator Generator
	Resolver  Resolver
	Assembler Assembler
}

// Run executes the three stages in order. Any stage failure aborts the run
// and is surfaced to the caller unchanged; a playlist created before a
// population failure is not rolled back.
func (p *Pipeline) Run(ctx context.Context, accessToken string, req Request) (*Playlist, error) {
	if req.Prompt == "" || req.Title == "" || req.Count <= 0 {
		return nil, ErrInvalidRequest
	}
	songs, err := p.Generator.Generate(ctx, req.Prompt, req.Count)
	if err != nil {
		return nil, err
	}
	ids := p.Resolver.ResolveTracks(ctx, songs)
	return p.Assembler.CreateAndFill(ctx, accessToken, req.Title, ids)
}
