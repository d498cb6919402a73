package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/user/filmy/internal/model"
)

type MirrorRepository struct {
	db *gorm.DB
}

func NewMirrorRepository(db *gorm.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// Upsert writes one row, keyed by (tmdb_id, type).
func (r *MirrorRepository) Upsert(row *model.MirrorRating) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}, {Name: "type"}},
		UpdateAll: true,
	}).Create(row).Error
}

// ReplaceAll swaps the whole mirror table for the given snapshot in
// one transaction.
func (r *MirrorRepository) ReplaceAll(rows []model.MirrorRating) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.MirrorRating{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

// FetchAll reads the full mirror table.
func (r *MirrorRepository) FetchAll() ([]model.MirrorRating, error) {
	var rows []model.MirrorRating
	err := r.db.Order("date_rated ASC").Find(&rows).Error
	return rows, err
}

// Count reports the mirror row count.
func (r *MirrorRepository) Count() (int, error) {
	var count int64
	err := r.db.Model(&model.MirrorRating{}).Count(&count).Error
	return int(count), err
}
