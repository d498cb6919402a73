package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/user/filmy/internal/model"
)

// Journal column layout. Replay is last-writer-wins per (tmdb_id, type),
// so Add and Update only ever append one row.
var csvHeaders = []string{
	"tmdb_id", "title", "type", "release_date", "genres",
	"tmdb_rating", "my_rating", "my_rating_label", "date_rated",
	"overview", "poster_url",
	"toby_seen", "taz_seen", "both_seen", "who_rated",
	"couple_score", "recommendation_type", "date_discovered",
	"toby_rating", "taz_rating",
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open ratings file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logWarn("skipping malformed row %d in %s: %v", line, s.path, err)
			line++
			continue
		}
		line++
		if line == 1 && len(row) > 0 && row[0] == "tmdb_id" {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			logWarn("skipping row %d in %s: %v", line, s.path, err)
			continue
		}
		s.put(rec)
	}
	return nil
}

// parseRow decodes one journal row. Short rows are backfilled with
// type-appropriate defaults so older files stay loadable.
func parseRow(row []string) (model.Rating, error) {
	if len(row) < len(csvHeaders) {
		padded := make([]string, len(csvHeaders))
		copy(padded, row)
		row = padded
	}

	tmdbID, err := strconv.Atoi(row[0])
	if err != nil || tmdbID == 0 {
		return model.Rating{}, fmt.Errorf("bad tmdb_id %q", row[0])
	}
	contentType := row[2]
	if contentType == "" {
		contentType = model.TypeMovie
	}

	return model.Rating{
		TMDBID:             tmdbID,
		Title:              row[1],
		Type:               contentType,
		ReleaseDate:        row[3],
		Genres:             model.SplitGenres(row[4]),
		TMDBRating:         parseFloat(row[5]),
		MyRating:           parseFloat(row[6]),
		MyRatingLabel:      row[7],
		DateRated:          parseTime(row[8]),
		Overview:           row[9],
		PosterURL:          row[10],
		TobySeen:           parseBool(row[11]),
		TazSeen:            parseBool(row[12]),
		BothSeen:           parseBool(row[13]),
		WhoRated:           row[14],
		CoupleScore:        parseFloat(row[15]),
		RecommendationType: row[16],
		DateDiscovered:     row[17],
		TobyRating:         parseInt(row[18]),
		TazRating:          parseInt(row[19]),
	}, nil
}

func formatRow(r *model.Rating) []string {
	mirror := r.ToMirror()
	dateRated := ""
	if !r.DateRated.IsZero() {
		dateRated = r.DateRated.Format(time.RFC3339)
	}
	return []string{
		strconv.Itoa(mirror.TMDBID),
		mirror.Title,
		mirror.Type,
		mirror.ReleaseDate,
		mirror.Genres,
		strconv.FormatFloat(mirror.TMDBRating, 'f', -1, 64),
		strconv.FormatFloat(mirror.MyRating, 'f', -1, 64),
		mirror.MyRatingLabel,
		dateRated,
		mirror.Overview,
		mirror.PosterURL,
		strconv.FormatBool(mirror.TobySeen),
		strconv.FormatBool(mirror.TazSeen),
		strconv.FormatBool(mirror.BothSeen),
		mirror.WhoRated,
		strconv.FormatFloat(mirror.CoupleScore, 'f', -1, 64),
		mirror.RecommendationType,
		mirror.DateDiscovered,
		strconv.Itoa(mirror.TobyRating),
		strconv.Itoa(mirror.TazRating),
	}
}

// append writes one row to the journal, creating the file with a
// header when needed. Callers hold the write lock.
func (s *Store) append(r *model.Rating) error {
	info, err := os.Stat(s.path)
	writeHeader := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeaders); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(formatRow(r)); err != nil {
		return fmt.Errorf("append rating: %w", err)
	}
	w.Flush()
	return w.Error()
}

// rewrite replaces the journal with a snapshot of the current table.
// Callers hold the write lock.
func (s *Store) rewrite() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, key := range s.order {
		if err := w.Write(formatRow(s.records[key])); err != nil {
			f.Close()
			return fmt.Errorf("write rating: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
