package store

import (
	"fmt"
	"math"
	"time"

	"github.com/user/filmy/internal/model"
)

// CoupleScore blends two ratings of the same item. Agreement is a
// distinct positive signal, not just the average, so identical values
// earn a half-point bonus.
func CoupleScore(a, b int) float64 {
	score := float64(a+b) / 2
	if a == b {
		score += 0.5
	}
	return score
}

// TrackViewing records who has seen an item. An existing record gets
// its seen flags raised; a new record starts in the want-to-see state.
func (s *Store) TrackViewing(item model.CandidateItem, viewer, recommendationType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.Key{TMDBID: item.ID, Type: item.Type}
	if rec, ok := s.records[key]; ok {
		switch viewer {
		case model.ViewerToby:
			rec.TobySeen = true
			rec.BothSeen = rec.TazSeen
		case model.ViewerTaz:
			rec.TazSeen = true
			rec.BothSeen = rec.TobySeen
		case model.ViewerBoth:
			rec.TobySeen = true
			rec.TazSeen = true
			rec.BothSeen = true
		}
		return s.append(rec)
	}

	rec := model.Rating{
		TMDBID:             item.ID,
		Title:              item.Title,
		Type:               item.Type,
		ReleaseDate:        item.ReleaseDate,
		Genres:             item.Genres,
		TMDBRating:         item.VoteAverage,
		MyRating:           model.RatingWantToSee,
		MyRatingLabel:      model.RatingLabel(model.RatingWantToSee),
		DateRated:          time.Now(),
		Overview:           item.Overview,
		PosterURL:          item.PosterURL,
		TobySeen:           viewer == model.ViewerToby || viewer == model.ViewerBoth,
		TazSeen:            viewer == model.ViewerTaz || viewer == model.ViewerBoth,
		BothSeen:           viewer == model.ViewerBoth,
		WhoRated:           viewer,
		RecommendationType: recommendationType,
		DateDiscovered:     time.Now().Format("2006-01-02"),
	}
	s.put(rec)
	return s.append(&rec)
}

// AddCoupleRating stores both viewers' ratings for an already tracked
// item and derives the couple score. Returns false when the item has no
// record yet.
func (s *Store) AddCoupleRating(tmdbID int, contentType string, tobyRating, tazRating int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[model.Key{TMDBID: tmdbID, Type: contentType}]
	if !ok {
		return false, nil
	}

	score := CoupleScore(tobyRating, tazRating)
	rec.MyRating = score
	rec.MyRatingLabel = fmt.Sprintf("Toby:%s, Taz:%s",
		model.RatingLabel(tobyRating), model.RatingLabel(tazRating))
	rec.CoupleScore = score
	rec.TobyRating = tobyRating
	rec.TazRating = tazRating
	rec.WhoRated = model.ViewerBoth
	rec.TobySeen = true
	rec.TazSeen = true
	rec.BothSeen = true
	rec.DateRated = time.Now()

	return true, s.append(rec)
}

// JointRatings returns records both viewers have seen and rated
// positively, the input to the compatibility analysis.
func (s *Store) JointRatings() []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Rating
	for _, key := range s.order {
		rec := s.records[key]
		if rec.BothSeen && rec.MyRating > 0 {
			out = append(out, *rec)
		}
	}
	return out
}

// ViewingPatterns counts solo and joint viewing across the table.
type ViewingPatterns struct {
	TobySolo       int     `json:"toby_solo_viewing"`
	TazSolo        int     `json:"taz_solo_viewing"`
	JointViewing   int     `json:"joint_viewing"`
	SyncPercentage float64 `json:"sync_percentage"`
}

// ViewingPatterns summarizes who watches what alone versus together.
func (s *Store) ViewingPatterns() ViewingPatterns {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p ViewingPatterns
	for _, key := range s.order {
		rec := s.records[key]
		switch {
		case rec.BothSeen:
			p.JointViewing++
		case rec.TobySeen && !rec.TazSeen:
			p.TobySolo++
		case rec.TazSeen && !rec.TobySeen:
			p.TazSolo++
		}
	}
	total := p.TobySolo + p.TazSolo + p.JointViewing
	if total < 1 {
		total = 1
	}
	p.SyncPercentage = round1(float64(p.JointViewing) / float64(total) * 100)
	return p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
