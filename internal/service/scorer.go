package service

import (
	"math"
	"sort"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
)

// Pool priors: the base score a candidate carries before profile
// bonuses, depending on which acquisition strategy sourced it. These
// are hand-tuned policy constants, declared once.
const (
	priorNewGenreRelease   = 0.8
	priorNewGeneralRelease = 0.75
	priorTrending          = 0.7
	priorPopular           = 0.6
	priorDiscovery         = 0.5
	priorDefault           = 0.5
)

// Scoring weights.
const (
	genreBonusWeight   = 0.2
	qualityBonusWeight = 0.3
	popularityBonusCap = 0.1
)

// ScoreCandidate computes the blended final score for one candidate:
// base prior + genre affinity + quality + capped popularity, clamped
// to [0, 1]. A zero-history profile contributes no genre bonus.
func ScoreCandidate(item *model.CandidateItem, profile *store.Profile) {
	base := item.RecScore
	if base == 0 {
		base = priorDefault
	}

	var genreBonus float64
	if profile != nil {
		for _, genre := range item.Genres {
			if avg, ok := profile.GenreAverage(genre); ok {
				genreBonus += (avg / model.RatingPerfect) * genreBonusWeight
			}
		}
	}

	qualityBonus := (item.VoteAverage / 10.0) * qualityBonusWeight
	popularityBonus := math.Min(item.Popularity/1000.0, popularityBonusCap)

	score := base + genreBonus + qualityBonus + popularityBonus
	item.FinalScore = math.Max(0, math.Min(score, 1.0))
}

// ScoreAndRank scores every candidate and sorts descending by final
// score. The sort is stable, so ties keep their insertion order.
func ScoreAndRank(items []model.CandidateItem, profile *store.Profile) []model.CandidateItem {
	for i := range items {
		ScoreCandidate(&items[i], profile)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})
	return items
}

// Deduplicate keeps the first occurrence of each (id, type) pair, up
// to limit items.
func Deduplicate(items []model.CandidateItem, limit int) []model.CandidateItem {
	seen := make(map[model.Key]struct{}, len(items))
	unique := make([]model.CandidateItem, 0, limit)
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
		if len(unique) >= limit {
			break
		}
	}
	return unique
}
