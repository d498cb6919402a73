package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
)

// IntelligentEngine learns from the rating history and finds content
// matching actual taste patterns. It combines three sources: genres
// the user loves, content similar to highly rated items, and other
// work by directors/actors the user rates well.
type IntelligentEngine struct {
	catalog Catalog
	ratings *store.Store
}

// NewIntelligentEngine creates the personalized engine.
func NewIntelligentEngine(catalog Catalog, ratings *store.Store) *IntelligentEngine {
	return &IntelligentEngine{
		catalog: catalog,
		ratings: ratings,
	}
}

// PersonalizedRecommendations generates scored, deduplicated
// recommendations. A user with no liked (Good or better) content gets
// an empty result; the generic pools cover that case.
func (e *IntelligentEngine) PersonalizedRecommendations(ctx context.Context, limit int) []model.CandidateItem {
	profile := e.ratings.Profile()
	if len(profile.Liked) == 0 {
		return nil
	}

	var recommendations []model.CandidateItem
	recommendations = append(recommendations, e.genreBased(ctx, profile, limit/2)...)
	recommendations = append(recommendations, e.similarContent(ctx, profile, limit/2)...)
	recommendations = append(recommendations, e.talentBased(ctx, profile, limit/4)...)

	scored := ScoreAndRank(recommendations, profile)
	return Deduplicate(scored, limit)
}

// genreBased finds highly rated content in genres the user loves
// (average rating Good or better).
func (e *IntelligentEngine) genreBased(ctx context.Context, profile *store.Profile, limit int) []model.CandidateItem {
	var recommendations []model.CandidateItem

	loved := make([]store.GenrePreference, 0, 5)
	for _, pref := range profile.GenrePrefs {
		if pref.Average >= model.RatingGood {
			loved = append(loved, pref)
		}
		if len(loved) == 5 {
			break
		}
	}

	for _, pref := range loved {
		if movieGenre := model.MovieGenreID(pref.Genre); movieGenre != 0 {
			movies, err := e.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
				WithGenres:   fmt.Sprintf("%d", movieGenre),
				SortBy:       "vote_average.desc",
				VoteCountGTE: 100,
			})
			if err != nil {
				log.Printf("[Engine] genre discover (movie, %s) failed: %v", pref.Genre, err)
			}
			for _, movie := range top(movies, 3) {
				if e.ratings.IsAlreadyRated(movie.ID, movie.Type) {
					continue
				}
				movie.RecReason = fmt.Sprintf("You love %s movies", pref.Genre)
				movie.RecScore = pref.Average / model.RatingPerfect
				recommendations = append(recommendations, movie)
			}
		}

		if tvGenre := model.TVGenreID(pref.Genre); tvGenre != 0 {
			shows, err := e.catalog.DiscoverTV(ctx, tmdb.DiscoverOptions{
				WithGenres:   fmt.Sprintf("%d", tvGenre),
				SortBy:       "vote_average.desc",
				VoteCountGTE: 50,
			})
			if err != nil {
				log.Printf("[Engine] genre discover (tv, %s) failed: %v", pref.Genre, err)
			}
			for _, show := range top(shows, 3) {
				if e.ratings.IsAlreadyRated(show.ID, show.Type) {
					continue
				}
				show.RecReason = fmt.Sprintf("You love %s shows", pref.Genre)
				show.RecScore = pref.Average / model.RatingPerfect
				recommendations = append(recommendations, show)
			}
		}
	}

	return top(recommendations, limit)
}

// similarContent walks the user's Perfect-then-Good items and pulls
// the catalog's similar and recommended lists for each.
func (e *IntelligentEngine) similarContent(ctx context.Context, profile *store.Profile, limit int) []model.CandidateItem {
	var recommendations []model.CandidateItem

	priority := prioritizeLiked(profile.Liked, 10)
	for _, item := range priority {
		weight := 0.7
		if item.MyRating >= model.RatingPerfect {
			weight = 1.0
		}

		var similar, recommended []model.CandidateItem
		var err error
		if item.Type == model.TypeMovie {
			similar, err = e.catalog.SimilarMovies(ctx, item.TMDBID)
			if err == nil {
				recommended, err = e.catalog.MovieRecommendations(ctx, item.TMDBID)
			}
		} else {
			similar, err = e.catalog.SimilarTV(ctx, item.TMDBID)
			if err == nil {
				recommended, err = e.catalog.TVRecommendations(ctx, item.TMDBID)
			}
		}
		if err != nil {
			log.Printf("[Engine] similar content for %q failed: %v", item.Title, err)
			continue
		}

		sources := []struct {
			items  []model.CandidateItem
			reason string
		}{
			{similar, "Similar to"},
			{recommended, "Recommended because you liked"},
		}
		for _, source := range sources {
			for _, rec := range top(source.items, 2) {
				if e.ratings.IsAlreadyRated(rec.ID, rec.Type) {
					continue
				}
				rec.RecReason = fmt.Sprintf("%s '%s'", source.reason, item.Title)
				rec.RecScore = weight * (rec.VoteAverage / 10.0)
				recommendations = append(recommendations, rec)
			}
		}
	}

	return top(recommendations, limit)
}

// prioritizeLiked orders liked content Perfect first, then Good,
// keeping insertion order within each band.
func prioritizeLiked(liked []model.Rating, limit int) []model.Rating {
	out := make([]model.Rating, len(liked))
	copy(out, liked)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MyRating > out[j].MyRating
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func top(items []model.CandidateItem, n int) []model.CandidateItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}
