package service

import (
	"fmt"
	"log"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
)

// MirrorStore is the remote side of the sync, satisfied by
// repository.MirrorRepository.
type MirrorStore interface {
	Upsert(row *model.MirrorRating) error
	ReplaceAll(rows []model.MirrorRating) error
	FetchAll() ([]model.MirrorRating, error)
	Count() (int, error)
}

// MirrorService syncs the local ratings table against the remote
// mirror. Bulk sync is whole-table in both directions: push overwrites
// the remote with the local state, pull overwrites local with remote.
// Single-row writes are mirrored incrementally as they happen.
type MirrorService struct {
	ratings *store.Store
	mirror  MirrorStore
}

// NewMirrorService creates the sync service.
func NewMirrorService(ratings *store.Store, mirror MirrorStore) *MirrorService {
	return &MirrorService{ratings: ratings, mirror: mirror}
}

// UpsertOne mirrors a single rating, keyed by (tmdb_id, type). Used on
// the hot write path so the remote stays warm between bulk pushes.
func (m *MirrorService) UpsertOne(rec *model.Rating) error {
	row := rec.ToMirror()
	if err := m.mirror.Upsert(&row); err != nil {
		return fmt.Errorf("mirror rating %d/%s: %w", rec.TMDBID, rec.Type, err)
	}
	return nil
}

// Push replaces the remote mirror with the local table. Returns the
// remote row count after the swap.
func (m *MirrorService) Push() (int, error) {
	local := m.ratings.All()
	rows := make([]model.MirrorRating, 0, len(local))
	for i := range local {
		rows = append(rows, local[i].ToMirror())
	}

	if err := m.mirror.ReplaceAll(rows); err != nil {
		return 0, fmt.Errorf("push mirror: %w", err)
	}
	total, err := m.mirror.Count()
	if err != nil {
		return 0, fmt.Errorf("verify mirror: %w", err)
	}
	log.Printf("[Mirror] pushed %d ratings, remote holds %d", len(rows), total)
	return total, nil
}

// Pull replaces the local table with the remote mirror. Remote wins
// wholesale; there is no row-level merge. Returns the number of rows
// pulled.
func (m *MirrorService) Pull() (int, error) {
	rows, err := m.mirror.FetchAll()
	if err != nil {
		return 0, fmt.Errorf("fetch mirror: %w", err)
	}

	ratings := make([]model.Rating, 0, len(rows))
	for i := range rows {
		ratings = append(ratings, rows[i].ToRating())
	}
	if err := m.ratings.ReplaceAll(ratings); err != nil {
		return 0, fmt.Errorf("replace local table: %w", err)
	}
	log.Printf("[Mirror] pulled %d ratings", len(rows))
	return len(rows), nil
}
