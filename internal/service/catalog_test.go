package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
)

// fakeCatalog serves canned lists per source so tests can tell which
// fetch path produced a candidate.
type fakeCatalog struct {
	popularMovies []model.CandidateItem
	popularTV     []model.CandidateItem
	trending      map[string][]model.CandidateItem
	discover      []model.CandidateItem
	discoverTV    []model.CandidateItem
	similar       map[int][]model.CandidateItem
	recommended   map[int][]model.CandidateItem
	credits       map[int]*tmdb.Credits
	personCredits map[int]*tmdb.PersonCredits
}

func (f *fakeCatalog) PopularMovies(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return f.popularMovies, nil
}

func (f *fakeCatalog) PopularTV(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return f.popularTV, nil
}

func (f *fakeCatalog) Trending(ctx context.Context, mediaType, window string) ([]model.CandidateItem, error) {
	return f.trending[mediaType], nil
}

func (f *fakeCatalog) DiscoverMovies(ctx context.Context, opts tmdb.DiscoverOptions) ([]model.CandidateItem, error) {
	return f.discover, nil
}

func (f *fakeCatalog) DiscoverTV(ctx context.Context, opts tmdb.DiscoverOptions) ([]model.CandidateItem, error) {
	return f.discoverTV, nil
}

func (f *fakeCatalog) SimilarMovies(ctx context.Context, movieID int) ([]model.CandidateItem, error) {
	return f.similar[movieID], nil
}

func (f *fakeCatalog) SimilarTV(ctx context.Context, tvID int) ([]model.CandidateItem, error) {
	return f.similar[tvID], nil
}

func (f *fakeCatalog) MovieRecommendations(ctx context.Context, movieID int) ([]model.CandidateItem, error) {
	return f.recommended[movieID], nil
}

func (f *fakeCatalog) TVRecommendations(ctx context.Context, tvID int) ([]model.CandidateItem, error) {
	return f.recommended[tvID], nil
}

func (f *fakeCatalog) MovieCredits(ctx context.Context, movieID int) (*tmdb.Credits, error) {
	if c, ok := f.credits[movieID]; ok {
		return c, nil
	}
	return &tmdb.Credits{}, nil
}

func (f *fakeCatalog) PersonMovieCredits(ctx context.Context, personID int) (*tmdb.PersonCredits, error) {
	if c, ok := f.personCredits[personID]; ok {
		return c, nil
	}
	return &tmdb.PersonCredits{}, nil
}

func (f *fakeCatalog) ImageURL(path string) string {
	return path
}

func testRatings(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ratings.csv"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func movie(id int, title string, genres ...string) model.CandidateItem {
	return model.CandidateItem{
		ID:          id,
		Title:       title,
		Type:        model.TypeMovie,
		VoteAverage: 7.0,
		Genres:      genres,
	}
}
