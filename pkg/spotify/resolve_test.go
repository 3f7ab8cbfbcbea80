package spotify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/time/rate"

	"Moodlist-Go/pkg/playlist"
)

// fakeSearcher returns canned results per query and records the queries it
// saw. Safe for concurrent use since the resolver fans out.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string]*libspotify.SearchResult
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) SearchOpt(query string, t libspotify.SearchType, opt *libspotify.Options) (*libspotify.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	if res, ok := f.results[query]; ok {
		return res, nil
	}
	return &libspotify.SearchResult{Tracks: &libspotify.FullTrackPage{}}, nil
}

func searchResult(id string) *libspotify.SearchResult {
	return &libspotify.SearchResult{Tracks: &libspotify.FullTrackPage{
		Tracks: []libspotify.FullTrack{{SimpleTrack: libspotify.SimpleTrack{ID: libspotify.ID(id)}}},
	}}
}

// newFakeClient returns a Client whose searches hit the fake instead of the
// API. The limiter is opened up so tests are not paced.
func newFakeClient(fs *fakeSearcher) *Client {
	c := NewClient("id", "secret")
	c.newSearcher = func(ctx context.Context) (searcher, error) { return fs, nil }
	c.limiter = rate.NewLimiter(rate.Inf, 0)
	return c
}

func TestResolveTracksPartialResults(t *testing.T) {
	fs := &fakeSearcher{
		results: map[string]*libspotify.SearchResult{
			"track:Lithium artist:Nirvana": searchResult("id1"),
			"track:Alive artist:Pearl Jam": searchResult("id2"),
			"track:Unknown artist:Obscure": {Tracks: &libspotify.FullTrackPage{}},
		},
	}
	c := newFakeClient(fs)

	ids := c.ResolveTracks(context.Background(), []playlist.Song{
		{Track: "Lithium", Artist: "Nirvana"},
		{Track: "Alive", Artist: "Pearl Jam"},
		{Track: "Unknown", Artist: "Obscure"},
	})

	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "id1" || ids[1] != "id2" {
		t.Errorf("expected [id1 id2], got %v", ids)
	}
	if len(fs.queries) != 3 {
		t.Errorf("expected 3 searches, got %d", len(fs.queries))
	}
}

func TestResolveTracksAllFailuresYieldEmpty(t *testing.T) {
	fs := &fakeSearcher{errs: map[string]error{
		"track:A artist:B": errors.New("boom"),
		"track:C artist:D": errors.New("boom"),
	}}
	c := newFakeClient(fs)

	ids := c.ResolveTracks(context.Background(), []playlist.Song{
		{Track: "A", Artist: "B"},
		{Track: "C", Artist: "D"},
	})
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestResolveTracksTokenFailureSkipsBatchItems(t *testing.T) {
	c := NewClient("id", "secret")
	c.newSearcher = func(ctx context.Context) (searcher, error) {
		return nil, errors.New("token endpoint down")
	}

	ids := c.ResolveTracks(context.Background(), []playlist.Song{{Track: "A", Artist: "B"}})
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestResolveTracksEmptyInput(t *testing.T) {
	c := newFakeClient(&fakeSearcher{})
	if ids := c.ResolveTracks(context.Background(), nil); ids != nil {
		t.Errorf("expected nil for empty input, got %v", ids)
	}
}

func TestResolveTracksLargeBatch(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*libspotify.SearchResult{}}
	songs := make([]playlist.Song, 20)
	for i := range songs {
		songs[i] = playlist.Song{Track: "T", Artist: "A"}
	}
	fs.results["track:T artist:A"] = searchResult("x")
	c := newFakeClient(fs)

	ids := c.ResolveTracks(context.Background(), songs)
	if len(ids) != 20 {
		t.Errorf("expected 20 ids, got %d", len(ids))
	}
}
