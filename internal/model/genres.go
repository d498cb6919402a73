package model

import "strings"

// TMDB genre tables. These are the single source of truth for genre
// name <-> id lookups; nothing else re-declares them.

// MovieGenres maps TMDB movie genre ids to names.
var MovieGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// TVGenres maps TMDB TV genre ids to names.
var TVGenres = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// GenreNames resolves genre ids against a genre table, skipping unknowns.
func GenreNames(ids []int, table map[int]string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := table[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// MovieGenreID looks up a movie genre id by name (case-insensitive).
// Returns 0 when the name is unknown.
func MovieGenreID(name string) int {
	for id, n := range MovieGenres {
		if strings.EqualFold(n, name) {
			return id
		}
	}
	return 0
}

// TVGenreID looks up a TV genre id by name (case-insensitive).
func TVGenreID(name string) int {
	for id, n := range TVGenres {
		if strings.EqualFold(n, name) {
			return id
		}
	}
	return 0
}
