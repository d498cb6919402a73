package model

import (
	"strings"
	"time"
)

// Content types as used by TMDB and throughout the rating store.
const (
	TypeMovie = "movie"
	TypeTV    = "tv"
)

// Rating scale. Joint ratings store the blended couple score in the
// same slot, which is why MyRating is a float on the record.
const (
	RatingMaybeLater    = -2
	RatingNotInterested = -1
	RatingWantToSee     = 0
	RatingHate          = 1
	RatingOK            = 2
	RatingGood          = 3
	RatingPerfect       = 4
)

var ratingLabels = map[int]string{
	RatingMaybeLater:    "Maybe Later",
	RatingNotInterested: "Don't Want to See",
	RatingWantToSee:     "Want to See",
	RatingHate:          "Hate",
	RatingOK:            "OK",
	RatingGood:          "Good",
	RatingPerfect:       "Perfect",
}

// RatingLabel returns the display label for a rating value.
func RatingLabel(rating int) string {
	if label, ok := ratingLabels[rating]; ok {
		return label
	}
	return "Unknown"
}

// Viewers for couple mode.
const (
	ViewerToby = "Toby"
	ViewerTaz  = "Taz"
	ViewerBoth = "Both"
)

// Key identifies a catalog item. One rating record exists per key.
type Key struct {
	TMDBID int
	Type   string
}

// Rating is the durable record, one per (tmdb_id, type). Couple-mode fields live on
// the same record; a solo record simply leaves them at their zero values.
type Rating struct {
	TMDBID        int       `json:"tmdb_id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	ReleaseDate   string    `json:"release_date"`
	Genres        []string  `json:"genres"`
	TMDBRating    float64   `json:"tmdb_rating"`
	MyRating      float64   `json:"my_rating"`
	MyRatingLabel string    `json:"my_rating_label"`
	DateRated     time.Time `json:"date_rated"`
	Overview      string    `json:"overview"`
	PosterURL     string    `json:"poster_url"`

	TobySeen           bool    `json:"toby_seen"`
	TazSeen            bool    `json:"taz_seen"`
	BothSeen           bool    `json:"both_seen"`
	WhoRated           string  `json:"who_rated"`
	CoupleScore        float64 `json:"couple_score"`
	RecommendationType string  `json:"recommendation_type"`
	DateDiscovered     string  `json:"date_discovered"`
	TobyRating         int     `json:"toby_rating"`
	TazRating          int     `json:"taz_rating"`
}

// Key returns the record's identity.
func (r *Rating) Key() Key {
	return Key{TMDBID: r.TMDBID, Type: r.Type}
}

// MirrorRating is the remote-mirror row: identical column layout to the
// CSV journal, genres flattened to a comma-joined string.
type MirrorRating struct {
	TMDBID             int       `json:"tmdb_id" gorm:"primaryKey;autoIncrement:false;column:tmdb_id"`
	Type               string    `json:"type" gorm:"primaryKey;column:type"`
	Title              string    `json:"title" db:"title"`
	ReleaseDate        string    `json:"release_date" db:"release_date"`
	Genres             string    `json:"genres" db:"genres"`
	TMDBRating         float64   `json:"tmdb_rating" gorm:"column:tmdb_rating"`
	MyRating           float64   `json:"my_rating" db:"my_rating"`
	MyRatingLabel      string    `json:"my_rating_label" db:"my_rating_label"`
	DateRated          time.Time `json:"date_rated" db:"date_rated"`
	Overview           string    `json:"overview" db:"overview"`
	PosterURL          string    `json:"poster_url" db:"poster_url"`
	TobySeen           bool      `json:"toby_seen" db:"toby_seen"`
	TazSeen            bool      `json:"taz_seen" db:"taz_seen"`
	BothSeen           bool      `json:"both_seen" db:"both_seen"`
	WhoRated           string    `json:"who_rated" db:"who_rated"`
	CoupleScore        float64   `json:"couple_score" db:"couple_score"`
	RecommendationType string    `json:"recommendation_type" db:"recommendation_type"`
	DateDiscovered     string    `json:"date_discovered" db:"date_discovered"`
	TobyRating         int       `json:"toby_rating" db:"toby_rating"`
	TazRating          int       `json:"taz_rating" db:"taz_rating"`
}

// TableName keeps the mirror table apart from any other schema users.
func (MirrorRating) TableName() string {
	return "ratings_mirror"
}

// ToMirror flattens a rating for the remote mirror.
func (r *Rating) ToMirror() MirrorRating {
	return MirrorRating{
		TMDBID:             r.TMDBID,
		Type:               r.Type,
		Title:              r.Title,
		ReleaseDate:        r.ReleaseDate,
		Genres:             strings.Join(r.Genres, ", "),
		TMDBRating:         r.TMDBRating,
		MyRating:           r.MyRating,
		MyRatingLabel:      r.MyRatingLabel,
		DateRated:          r.DateRated,
		Overview:           r.Overview,
		PosterURL:          r.PosterURL,
		TobySeen:           r.TobySeen,
		TazSeen:            r.TazSeen,
		BothSeen:           r.BothSeen,
		WhoRated:           r.WhoRated,
		CoupleScore:        r.CoupleScore,
		RecommendationType: r.RecommendationType,
		DateDiscovered:     r.DateDiscovered,
		TobyRating:         r.TobyRating,
		TazRating:          r.TazRating,
	}
}

// ToRating expands a mirror row back into a store record.
func (m *MirrorRating) ToRating() Rating {
	return Rating{
		TMDBID:             m.TMDBID,
		Type:               m.Type,
		Title:              m.Title,
		ReleaseDate:        m.ReleaseDate,
		Genres:             SplitGenres(m.Genres),
		TMDBRating:         m.TMDBRating,
		MyRating:           m.MyRating,
		MyRatingLabel:      m.MyRatingLabel,
		DateRated:          m.DateRated,
		Overview:           m.Overview,
		PosterURL:          m.PosterURL,
		TobySeen:           m.TobySeen,
		TazSeen:            m.TazSeen,
		BothSeen:           m.BothSeen,
		WhoRated:           m.WhoRated,
		CoupleScore:        m.CoupleScore,
		RecommendationType: m.RecommendationType,
		DateDiscovered:     m.DateDiscovered,
		TobyRating:         m.TobyRating,
		TazRating:          m.TazRating,
	}
}

// SplitGenres parses a comma-joined genre string.
func SplitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			genres = append(genres, trimmed)
		}
	}
	return genres
}

// CandidateItem is an unrated catalog entry proposed to the user.
// Ephemeral: carries no identity beyond (ID, Type) and is discarded once
// displayed or rated.
type CandidateItem struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Type          string   `json:"type"`
	ReleaseDate   string   `json:"release_date"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	Popularity    float64  `json:"popularity"`
	Genres        []string `json:"genres"`
	Overview      string   `json:"overview"`
	PosterURL     string   `json:"poster_url"`
	BackdropURL   string   `json:"backdrop_url,omitempty"`

	// Attached during scoring.
	RecReason  string  `json:"rec_reason,omitempty"`
	RecScore   float64 `json:"rec_score,omitempty"`
	FinalScore float64 `json:"final_score,omitempty"`
}

// Key returns the candidate's identity.
func (c *CandidateItem) Key() Key {
	return Key{TMDBID: c.ID, Type: c.Type}
}

// User is an account for one of the two viewers.
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" gorm:"unique"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Viewer       string    `json:"viewer" db:"viewer"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
