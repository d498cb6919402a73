package service

import (
	"context"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/tmdb"
)

// Catalog is what the recommendation core needs from the external
// catalog. *tmdb.Client satisfies it; tests substitute fakes.
type Catalog interface {
	PopularMovies(ctx context.Context, page int) ([]model.CandidateItem, error)
	PopularTV(ctx context.Context, page int) ([]model.CandidateItem, error)
	Trending(ctx context.Context, mediaType, window string) ([]model.CandidateItem, error)
	DiscoverMovies(ctx context.Context, opts tmdb.DiscoverOptions) ([]model.CandidateItem, error)
	DiscoverTV(ctx context.Context, opts tmdb.DiscoverOptions) ([]model.CandidateItem, error)
	SimilarMovies(ctx context.Context, movieID int) ([]model.CandidateItem, error)
	SimilarTV(ctx context.Context, tvID int) ([]model.CandidateItem, error)
	MovieRecommendations(ctx context.Context, movieID int) ([]model.CandidateItem, error)
	TVRecommendations(ctx context.Context, tvID int) ([]model.CandidateItem, error)
	MovieCredits(ctx context.Context, movieID int) (*tmdb.Credits, error)
	PersonMovieCredits(ctx context.Context, personID int) (*tmdb.PersonCredits, error)
	ImageURL(path string) string
}
