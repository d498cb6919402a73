// Package store implements the rating store: an in-memory table indexed
// by (tmdb_id, type) backed by an append-only CSV journal. It is the
// single source of truth for "has this been rated".
package store

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/filmy/internal/model"
)

// Store holds all rating records. At most one record exists per
// (tmdb_id, type); adding a rating for an existing pair updates it in
// place. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	path    string
	records map[model.Key]*model.Rating
	order   []model.Key
}

// Open loads the store from the CSV journal at path. A missing file
// yields an empty store; malformed rows are skipped with a warning and
// missing columns are backfilled with defaults.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[model.Key]*model.Rating),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) put(r model.Rating) {
	key := r.Key()
	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	rec := r
	s.records[key] = &rec
}

// Add records a rating for a catalog item. A second Add for the same
// (id, type) pair is an update, not an insert. Returns true when an
// existing record was updated.
func (s *Store) Add(item model.CandidateItem, rating int, customLabel string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.Key{TMDBID: item.ID, Type: item.Type}
	if existing, ok := s.records[key]; ok {
		s.applyRating(existing, rating, customLabel)
		return true, s.append(existing)
	}

	rec := model.Rating{
		TMDBID:      item.ID,
		Title:       item.Title,
		Type:        item.Type,
		ReleaseDate: item.ReleaseDate,
		Genres:      item.Genres,
		TMDBRating:  item.VoteAverage,
		Overview:    item.Overview,
		PosterURL:   item.PosterURL,
	}
	s.applyRating(&rec, rating, customLabel)
	s.put(rec)
	return false, s.append(&rec)
}

func (s *Store) applyRating(rec *model.Rating, rating int, customLabel string) {
	rec.MyRating = float64(rating)
	if customLabel != "" {
		rec.MyRatingLabel = customLabel
	} else {
		rec.MyRatingLabel = model.RatingLabel(rating)
	}
	rec.DateRated = time.Now()
}

// Update changes the rating of an existing record. Returns false when
// no record exists for the pair.
func (s *Store) Update(tmdbID int, contentType string, rating int, customLabel string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[model.Key{TMDBID: tmdbID, Type: contentType}]
	if !ok {
		return false, nil
	}
	s.applyRating(rec, rating, customLabel)
	return true, s.append(rec)
}

// Delete removes a record. Deletion rewrites the snapshot; the journal
// stays append-only for the hot add/update path.
func (s *Store) Delete(tmdbID int, contentType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.Key{TMDBID: tmdbID, Type: contentType}
	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, s.rewrite()
}

// IsAlreadyRated reports whether the pair already has a record.
func (s *Store) IsAlreadyRated(tmdbID int, contentType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[model.Key{TMDBID: tmdbID, Type: contentType}]
	return ok
}

// Get returns a copy of one record.
func (s *Store) Get(tmdbID int, contentType string) (model.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[model.Key{TMDBID: tmdbID, Type: contentType}]
	if !ok {
		return model.Rating{}, false
	}
	return *rec, true
}

// All returns copies of every record in insertion order.
func (s *Store) All() []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rating, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.records[key])
	}
	return out
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RatingsByScore returns records with my_rating >= min, optionally
// filtered by type.
func (s *Store) RatingsByScore(min float64, contentType string) []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Rating
	for _, key := range s.order {
		rec := s.records[key]
		if rec.MyRating < min {
			continue
		}
		if contentType != "" && rec.Type != contentType {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// GenrePreference is one genre with the user's average rating for it.
type GenrePreference struct {
	Genre   string  `json:"genre"`
	Average float64 `json:"average"`
}

// GenrePreferences computes genre -> average rating over all records,
// sorted by average descending. Ties keep alphabetical order so the
// result is deterministic.
func (s *Store) GenrePreferences() []GenrePreference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genrePreferencesLocked()
}

func (s *Store) genrePreferencesLocked() []GenrePreference {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, key := range s.order {
		rec := s.records[key]
		for _, genre := range rec.Genres {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				continue
			}
			sums[genre] += rec.MyRating
			counts[genre]++
		}
	}

	prefs := make([]GenrePreference, 0, len(sums))
	for genre, sum := range sums {
		prefs = append(prefs, GenrePreference{Genre: genre, Average: sum / float64(counts[genre])})
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Average != prefs[j].Average {
			return prefs[i].Average > prefs[j].Average
		}
		return prefs[i].Genre < prefs[j].Genre
	})
	return prefs
}

// Profile summarizes the rating history for the recommendation engine.
type Profile struct {
	RatedMovieIDs   []int
	RatedTVIDs      []int
	Liked           []model.Rating
	Disliked        []model.Rating
	GenrePrefs      []GenrePreference
	PreferredGenres []string
	AverageRating   float64
	TotalRatings    int
}

// GenreAverage looks up the average rating for one genre.
func (p *Profile) GenreAverage(genre string) (float64, bool) {
	for _, pref := range p.GenrePrefs {
		if pref.Genre == genre {
			return pref.Average, true
		}
	}
	return 0, false
}

// Profile exports the store in the shape the engine consumes. A user
// with no history gets an empty genre map and the neutral 2.5 average.
func (s *Store) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs := s.genrePreferencesLocked()
	preferred := make([]string, 0, 5)
	for _, pref := range prefs {
		preferred = append(preferred, pref.Genre)
		if len(preferred) == 5 {
			break
		}
	}

	profile := &Profile{
		GenrePrefs:      prefs,
		PreferredGenres: preferred,
		AverageRating:   2.5,
		TotalRatings:    len(s.records),
	}

	var sum float64
	for _, key := range s.order {
		rec := s.records[key]
		sum += rec.MyRating
		if rec.Type == model.TypeMovie {
			profile.RatedMovieIDs = append(profile.RatedMovieIDs, rec.TMDBID)
		} else {
			profile.RatedTVIDs = append(profile.RatedTVIDs, rec.TMDBID)
		}
		if rec.MyRating >= model.RatingGood {
			profile.Liked = append(profile.Liked, *rec)
		}
		if rec.MyRating == model.RatingHate {
			profile.Disliked = append(profile.Disliked, *rec)
		}
	}
	if len(s.records) > 0 {
		profile.AverageRating = sum / float64(len(s.records))
	}
	return profile
}

// Statistics is the dashboard summary of the store.
type Statistics struct {
	TotalRatings       int            `json:"total_ratings"`
	MoviesRated        int            `json:"movies_rated"`
	TVShowsRated       int            `json:"tv_shows_rated"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	TopGenres          []string       `json:"top_genres"`
	RecentRatings      []RecentRating `json:"recent_ratings"`
}

// RecentRating is one line of the recent-activity list.
type RecentRating struct {
	Title     string    `json:"title"`
	Label     string    `json:"my_rating_label"`
	DateRated time.Time `json:"date_rated"`
}

// Statistics computes the dashboard summary.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		RatingDistribution: make(map[string]int),
		TopGenres:          []string{},
		RecentRatings:      []RecentRating{},
	}
	if len(s.records) == 0 {
		return stats
	}

	var sum float64
	all := make([]*model.Rating, 0, len(s.order))
	for _, key := range s.order {
		rec := s.records[key]
		all = append(all, rec)
		sum += rec.MyRating
		if rec.Type == model.TypeMovie {
			stats.MoviesRated++
		} else {
			stats.TVShowsRated++
		}
		stats.RatingDistribution[fmt.Sprintf("%g", rec.MyRating)]++
	}
	stats.TotalRatings = len(all)
	stats.AverageRating = sum / float64(len(all))

	for i, pref := range s.genrePreferencesLocked() {
		if i == 5 {
			break
		}
		stats.TopGenres = append(stats.TopGenres, pref.Genre)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].DateRated.After(all[j].DateRated)
	})
	for i, rec := range all {
		if i == 5 {
			break
		}
		stats.RecentRatings = append(stats.RecentRatings, RecentRating{
			Title:     rec.Title,
			Label:     rec.MyRatingLabel,
			DateRated: rec.DateRated,
		})
	}
	return stats
}

// ReplaceAll swaps the full table, used when the remote mirror takes
// precedence on a pull. Rewrites the snapshot.
func (s *Store) ReplaceAll(ratings []model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[model.Key]*model.Rating, len(ratings))
	s.order = s.order[:0]
	for _, r := range ratings {
		s.put(r)
	}
	return s.rewrite()
}

// Compact rewrites the journal as a clean snapshot, collapsing
// superseded rows.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewrite()
}

func logWarn(format string, args ...interface{}) {
	log.Printf("[Store] "+format, args...)
}
