package service

import (
	"context"
	"log"
	"math"
	"sort"
	"strconv"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
)

// CoupleAnalyzer measures how aligned the two viewers' tastes are and
// picks a recommendation strategy to match.
type CoupleAnalyzer struct {
	catalog Catalog
	ratings *store.Store
}

// NewCoupleAnalyzer creates the analyzer.
func NewCoupleAnalyzer(catalog Catalog, ratings *store.Store) *CoupleAnalyzer {
	return &CoupleAnalyzer{catalog: catalog, ratings: ratings}
}

// CompatibilityAnalysis is the couple-mode taste report.
type CompatibilityAnalysis struct {
	CompatibilityScore float64               `json:"compatibility_score"`
	JointRatings       int                   `json:"joint_ratings"`
	PerfectAgreements  int                   `json:"perfect_agreements"`
	AverageCoupleScore float64               `json:"average_couple_score"`
	Patterns           store.ViewingPatterns `json:"viewing_patterns"`
	Verdict            string                `json:"verdict"`
}

// Compatibility scores joint taste on a 0-100 scale: the mean couple
// score (0-4 with the agreement bonus pushing past 4) scaled by 25.
func (c *CoupleAnalyzer) Compatibility() CompatibilityAnalysis {
	analysis := CompatibilityAnalysis{
		Patterns: c.ratings.ViewingPatterns(),
	}
	if c.ratings.Count() == 0 {
		analysis.Verdict = "No data yet"
		return analysis
	}

	joint := c.ratings.JointRatings()
	if len(joint) == 0 {
		analysis.Verdict = "No joint ratings yet"
		return analysis
	}

	var sum float64
	for _, rec := range joint {
		sum += rec.CoupleScore
		if rec.TobyRating != 0 && rec.TobyRating == rec.TazRating {
			analysis.PerfectAgreements++
		}
	}
	mean := sum / float64(len(joint))

	analysis.JointRatings = len(joint)
	analysis.AverageCoupleScore = round1(mean)
	analysis.CompatibilityScore = round1(mean * 25)
	analysis.Verdict = verdict(mean)
	return analysis
}

func verdict(meanCoupleScore float64) string {
	switch {
	case meanCoupleScore >= 3.5:
		return "Movie soulmates"
	case meanCoupleScore >= 3.0:
		return "Great taste match"
	case meanCoupleScore >= 2.5:
		return "Mostly compatible"
	case meanCoupleScore >= 2.0:
		return "Room to negotiate"
	default:
		return "Opposites attract"
	}
}

// Recommendations picks the strategy the compatibility score calls
// for: aligned couples get more of what they both loved, middling ones
// get safe shared-genre picks, and divergent ones get broad
// crowd-pleasers.
func (c *CoupleAnalyzer) Recommendations(ctx context.Context, limit int) ([]model.CandidateItem, string) {
	analysis := c.Compatibility()

	var (
		items    []model.CandidateItem
		strategy string
	)
	switch {
	case analysis.CompatibilityScore > 75:
		strategy = "similar_taste"
		items = c.similarTaste(ctx, limit)
	case analysis.CompatibilityScore > 50:
		strategy = "balanced"
		items = c.balanced(ctx, limit)
	default:
		strategy = "compromise"
		items = c.compromise(ctx, limit)
	}

	profile := c.ratings.Profile()
	scored := ScoreAndRank(items, profile)
	return Deduplicate(c.dropRated(scored), limit), strategy
}

// similarTaste leans into agreement: content similar to what both
// viewers scored highest together.
func (c *CoupleAnalyzer) similarTaste(ctx context.Context, limit int) []model.CandidateItem {
	joint := c.ratings.JointRatings()
	sort.SliceStable(joint, func(i, j int) bool {
		return joint[i].CoupleScore > joint[j].CoupleScore
	})
	if len(joint) > 5 {
		joint = joint[:5]
	}

	var out []model.CandidateItem
	for _, rec := range joint {
		var (
			similar []model.CandidateItem
			err     error
		)
		if rec.Type == model.TypeTV {
			similar, err = c.catalog.SimilarTV(ctx, rec.TMDBID)
		} else {
			similar, err = c.catalog.SimilarMovies(ctx, rec.TMDBID)
		}
		if err != nil {
			log.Printf("[Couple] similar to %q: %v", rec.Title, err)
			continue
		}
		for _, item := range top(similar, 3) {
			item.RecReason = "Because you both loved '" + rec.Title + "'"
			item.RecScore = rec.CoupleScore / 4
			out = append(out, item)
		}
		if len(out) >= limit*2 {
			break
		}
	}
	return out
}

// balanced sticks to the genres the couple rates well together,
// digging for acclaimed titles inside them.
func (c *CoupleAnalyzer) balanced(ctx context.Context, limit int) []model.CandidateItem {
	prefs := c.jointGenrePreferences()

	var out []model.CandidateItem
	taken := 0
	for _, pref := range prefs {
		if taken == 3 {
			break
		}
		id := model.MovieGenreID(pref.Genre)
		if id == 0 {
			continue
		}
		taken++

		items, err := c.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
			WithGenres:     strconv.Itoa(id),
			SortBy:         "vote_average.desc",
			VoteAverageGTE: 7.0,
			VoteCountGTE:   100,
		})
		if err != nil {
			log.Printf("[Couple] shared genre %s: %v", pref.Genre, err)
			continue
		}
		for _, item := range top(items, 5) {
			item.RecReason = "A shared favorite genre: " + pref.Genre
			item.RecScore = math.Min(pref.Average/4, 1)
			out = append(out, item)
		}
	}
	return out
}

// compromise goes broad: well-reviewed crowd-pleasers plus a few
// acclaimed picks neither viewer would have reached for.
func (c *CoupleAnalyzer) compromise(ctx context.Context, limit int) []model.CandidateItem {
	var out []model.CandidateItem

	popular, err := c.catalog.PopularMovies(ctx, 1)
	if err != nil {
		log.Printf("[Couple] popular: %v", err)
	}
	for _, item := range popular {
		if item.VoteAverage < 6.5 {
			continue
		}
		item.RecReason = "Crowd-pleaser you can both enjoy"
		item.RecScore = priorPopular
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}

	acclaimed, err := c.catalog.DiscoverMovies(ctx, tmdb.DiscoverOptions{
		SortBy:       "vote_average.desc",
		VoteCountGTE: 200,
	})
	if err != nil {
		log.Printf("[Couple] acclaimed: %v", err)
	}
	for _, item := range top(acclaimed, limit/2) {
		item.RecReason = "Critically acclaimed middle ground"
		item.RecScore = priorDiscovery
		out = append(out, item)
	}
	return out
}

// jointGenrePreferences averages couple scores per genre across joint
// ratings, strongest first.
func (c *CoupleAnalyzer) jointGenrePreferences() []store.GenrePreference {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range c.ratings.JointRatings() {
		for _, genre := range rec.Genres {
			sums[genre] += rec.CoupleScore
			counts[genre]++
		}
	}

	prefs := make([]store.GenrePreference, 0, len(sums))
	for genre, sum := range sums {
		prefs = append(prefs, store.GenrePreference{
			Genre:   genre,
			Average: sum / float64(counts[genre]),
		})
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Average != prefs[j].Average {
			return prefs[i].Average > prefs[j].Average
		}
		return prefs[i].Genre < prefs[j].Genre
	})
	return prefs
}

func (c *CoupleAnalyzer) dropRated(items []model.CandidateItem) []model.CandidateItem {
	out := items[:0]
	for _, item := range items {
		if c.ratings.IsAlreadyRated(item.ID, item.Type) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
