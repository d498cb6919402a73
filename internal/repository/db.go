package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/filmy/internal/model"
)

// InitDB connects to the mirror database and migrates the schema. The
// pq connection is opened first so pool limits apply, then handed to
// gorm.
func InitDB(databaseURL string) (*Repositories, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("init orm: %w", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.MirrorRating{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return NewRepositories(sqlDB, db), nil
}

type Repositories struct {
	DB     *sql.DB
	User   *UserRepository
	Mirror *MirrorRepository
}

func NewRepositories(sqlDB *sql.DB, db *gorm.DB) *Repositories {
	return &Repositories{
		DB:     sqlDB,
		User:   NewUserRepository(db),
		Mirror: NewMirrorRepository(db),
	}
}
