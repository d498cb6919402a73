package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
)

// Pool names. Each pool is fed by a different acquisition strategy and
// the blend between them shifts as the rating history grows.
const (
	PoolIntelligent   = "intelligent"
	PoolTrending      = "trending"
	PoolPopular       = "popular"
	PoolDiscovery     = "discovery"
	PoolGenreDeepDive = "genre_deep_dive"
)

// poolFloors are the refill thresholds: a pool that drops below its
// floor gets topped up before the next draw.
var poolFloors = map[string]int{
	PoolIntelligent:   10,
	PoolTrending:      15,
	PoolPopular:       20,
	PoolDiscovery:     25,
	PoolGenreDeepDive: 15,
}

// PoolManager keeps five candidate pools warm and serves mixed batches
// from them. Items handed out are remembered so the stream never
// repeats within a session.
type PoolManager struct {
	catalog Catalog
	ratings *store.Store
	engine  *IntelligentEngine

	mu    sync.Mutex
	pools map[string][]model.CandidateItem
	used  map[model.Key]struct{}
}

// NewPoolManager creates an empty manager. Pools fill lazily on the
// first draw.
func NewPoolManager(catalog Catalog, ratings *store.Store, engine *IntelligentEngine) *PoolManager {
	return &PoolManager{
		catalog: catalog,
		ratings: ratings,
		engine:  engine,
		pools: map[string][]model.CandidateItem{
			PoolIntelligent:   {},
			PoolTrending:      {},
			PoolPopular:       {},
			PoolDiscovery:     {},
			PoolGenreDeepDive: {},
		},
		used: make(map[model.Key]struct{}),
	}
}

// EndlessRecommendations returns the next batch. Pools below their
// floor are refilled first, then each contributes its share of the
// batch in pool order and the result is shuffled. A pool that cannot
// cover its share simply contributes less; the batch may come up short
// when the catalog runs dry.
func (p *PoolManager) EndlessRecommendations(ctx context.Context, count int) []model.CandidateItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refillLocked(ctx)

	mix := recommendationMix(p.ratings.Count(), count)
	batch := make([]model.CandidateItem, 0, count)
	for _, name := range []string{PoolIntelligent, PoolTrending, PoolPopular, PoolDiscovery, PoolGenreDeepDive} {
		want := mix[name]
		if want == 0 {
			continue
		}
		pool := p.pools[name]
		taken := 0
		kept := pool[:0]
		for _, item := range pool {
			if taken < want {
				if _, seen := p.used[item.Key()]; seen {
					continue
				}
				p.used[item.Key()] = struct{}{}
				batch = append(batch, item)
				taken++
				continue
			}
			kept = append(kept, item)
		}
		p.pools[name] = kept
	}

	rand.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	if len(batch) > count {
		batch = batch[:count]
	}
	return batch
}

// recommendationMix splits a batch across the pools. New users lean on
// the generic pools; heavy raters get mostly personalized picks.
// Integer shares may leave a remainder unassigned, which keeps batches
// slightly under count rather than over.
func recommendationMix(totalRatings, count int) map[string]int {
	var weights map[string]float64
	switch {
	case totalRatings < 5:
		weights = map[string]float64{
			PoolPopular:     0.4,
			PoolTrending:    0.3,
			PoolDiscovery:   0.2,
			PoolIntelligent: 0.1,
		}
	case totalRatings < 20:
		weights = map[string]float64{
			PoolIntelligent:   0.3,
			PoolPopular:       0.25,
			PoolDiscovery:     0.25,
			PoolTrending:      0.15,
			PoolGenreDeepDive: 0.05,
		}
	default:
		weights = map[string]float64{
			PoolIntelligent:   0.5,
			PoolGenreDeepDive: 0.2,
			PoolDiscovery:     0.15,
			PoolTrending:      0.1,
			PoolPopular:       0.05,
		}
	}

	mix := make(map[string]int, len(weights))
	for name, w := range weights {
		mix[name] = int(float64(count) * w)
	}
	return mix
}

// ClearUsed forgets the dealt-items history and empties every pool,
// restarting the stream from a cold start. The next draw refills
// against the current rating history.
func (p *PoolManager) ClearUsed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name := range p.pools {
		p.pools[name] = nil
	}
	p.used = make(map[model.Key]struct{})
}

// PoolStats reports current pool depths and how many items have been
// dealt.
func (p *PoolManager) PoolStats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]int, len(p.pools)+1)
	for name, pool := range p.pools {
		stats[name] = len(pool)
	}
	stats["used"] = len(p.used)
	return stats
}

// refillLocked tops up every pool under its floor. Fetch failures are
// logged and leave the pool short; the next draw retries.
func (p *PoolManager) refillLocked(ctx context.Context) {
	fillers := map[string]func(context.Context) []model.CandidateItem{
		PoolIntelligent:   p.fetchIntelligent,
		PoolTrending:      p.fetchTrending,
		PoolPopular:       p.fetchPopular,
		PoolDiscovery:     p.fetchDiscovery,
		PoolGenreDeepDive: p.fetchGenreDeepDive,
	}
	for name, floor := range poolFloors {
		if len(p.pools[name]) >= floor {
			continue
		}
		p.addLocked(name, fillers[name](ctx))
	}
}

// addLocked appends fresh candidates to a pool, dropping anything
// already dealt, already rated, or already waiting in the pool.
func (p *PoolManager) addLocked(name string, items []model.CandidateItem) {
	pool := p.pools[name]
	present := make(map[model.Key]struct{}, len(pool))
	for _, item := range pool {
		present[item.Key()] = struct{}{}
	}
	for _, item := range items {
		key := item.Key()
		if _, ok := present[key]; ok {
			continue
		}
		if _, ok := p.used[key]; ok {
			continue
		}
		if p.ratings.IsAlreadyRated(item.ID, item.Type) {
			continue
		}
		present[key] = struct{}{}
		pool = append(pool, item)
	}
	p.pools[name] = pool
}

func (p *PoolManager) fetchIntelligent(ctx context.Context) []model.CandidateItem {
	return p.engine.PersonalizedRecommendations(ctx, 30)
}

// fetchTrending blends three time-sensitive sources: fresh releases in
// the user's top genre, well-received fresh releases overall, and this
// week's trending lists.
func (p *PoolManager) fetchTrending(ctx context.Context) []model.CandidateItem {
	var out []model.CandidateItem
	now := time.Now()
	monthAgo := now.AddDate(0, 0, -30).Format("2006-01-02")
	today := now.Format("2006-01-02")

	profile := p.ratings.Profile()
	if len(profile.PreferredGenres) > 0 {
		genre := profile.PreferredGenres[0]
		if id := model.MovieGenreID(genre); id != 0 {
			items, err := p.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
				WithGenres:     fmt.Sprintf("%d", id),
				SortBy:         "popularity.desc",
				ReleaseDateGTE: monthAgo,
				ReleaseDateLTE: today,
			})
			if err != nil {
				log.Printf("[Pools] new %s releases: %v", genre, err)
			}
			for _, item := range top(items, 3) {
				item.RecReason = fmt.Sprintf("New %s release", genre)
				item.RecScore = priorNewGenreRelease
				out = append(out, item)
			}
		}
	}

	general, err := p.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
		SortBy:         "popularity.desc",
		ReleaseDateGTE: monthAgo,
		ReleaseDateLTE: today,
		VoteAverageGTE: 7.0,
		VoteCountGTE:   50,
	})
	if err != nil {
		log.Printf("[Pools] new releases: %v", err)
	}
	for _, item := range top(general, 5) {
		item.RecReason = "Highly rated new release"
		item.RecScore = priorNewGeneralRelease
		out = append(out, item)
	}

	for _, mediaType := range []string{model.TypeMovie, model.TypeTV} {
		trending, err := p.catalog.Trending(ctx, mediaType, "week")
		if err != nil {
			log.Printf("[Pools] trending %s: %v", mediaType, err)
			continue
		}
		for _, item := range top(trending, 10) {
			item.RecReason = "Trending this week"
			item.RecScore = priorTrending
			out = append(out, item)
		}
	}
	return out
}

// fetchPopular takes the popular charts, filtered so the pool never
// carries poorly rated crowd-pleasers.
func (p *PoolManager) fetchPopular(ctx context.Context) []model.CandidateItem {
	var out []model.CandidateItem

	movies, err := p.catalog.PopularMovies(ctx, 1)
	if err != nil {
		log.Printf("[Pools] popular movies: %v", err)
	}
	kept := 0
	for _, item := range movies {
		if item.VoteAverage < 6.5 || kept == 20 {
			continue
		}
		item.RecReason = "Popular & highly rated"
		item.RecScore = priorPopular
		out = append(out, item)
		kept++
	}

	shows, err := p.catalog.PopularTV(ctx, 1)
	if err != nil {
		log.Printf("[Pools] popular tv: %v", err)
	}
	kept = 0
	for _, item := range shows {
		if item.VoteAverage < 6.5 || kept == 20 {
			continue
		}
		item.RecReason = "Popular TV series"
		item.RecScore = priorPopular
		out = append(out, item)
		kept++
	}
	return out
}

// fetchDiscovery digs through acclaimed titles from past eras, the
// pool for stepping outside current charts.
func (p *PoolManager) fetchDiscovery(ctx context.Context) []model.CandidateItem {
	eras := []struct {
		from, to, label string
	}{
		{"2020-01-01", "2024-12-31", "Best of the 2020s"},
		{"2015-01-01", "2019-12-31", "2010s gems"},
		{"2010-01-01", "2014-12-31", "Modern classics"},
	}

	var out []model.CandidateItem
	for _, era := range eras {
		items, err := p.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
			SortBy:         "vote_average.desc",
			VoteCountGTE:   100,
			ReleaseDateGTE: era.from,
			ReleaseDateLTE: era.to,
		})
		if err != nil {
			log.Printf("[Pools] discovery %s: %v", era.label, err)
			continue
		}
		for _, item := range top(items, 5) {
			item.RecReason = "Discover: " + era.label
			item.RecScore = priorDiscovery
			out = append(out, item)
		}
	}
	return out
}

// fetchGenreDeepDive goes deeper into the genres the user already
// rates well, surfacing acclaimed titles beyond the obvious picks.
func (p *PoolManager) fetchGenreDeepDive(ctx context.Context) []model.CandidateItem {
	profile := p.ratings.Profile()

	var out []model.CandidateItem
	taken := 0
	for _, pref := range profile.GenrePrefs {
		if taken == 3 {
			break
		}
		id := model.MovieGenreID(pref.Genre)
		if id == 0 {
			continue
		}
		taken++

		items, err := p.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
			WithGenres:     fmt.Sprintf("%d", id),
			SortBy:         "vote_average.desc",
			VoteAverageGTE: 7.0,
			VoteCountGTE:   50,
		})
		if err != nil {
			log.Printf("[Pools] deep dive %s: %v", pref.Genre, err)
			continue
		}
		for _, item := range top(items, 5) {
			item.RecReason = fmt.Sprintf("More %s (you rate it %.1f/4)", pref.Genre, pref.Average)
			item.RecScore = pref.Average / 4
			out = append(out, item)
		}
	}
	return out
}
