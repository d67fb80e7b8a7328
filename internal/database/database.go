package database

import (
	"fmt"

	"github.com/rolo-app/rolo/internal/config"
	"github.com/rolo-app/rolo/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres when DATABASE_URL is set and otherwise falls back
// to the embedded sqlite file, which replaces the legacy JSON file store.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	dsn := fmt.Sprintf("file:%s?_fk=1", cfg.SQLitePath)
	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Contact{},
		&domain.Interaction{},
		&domain.InteractionContact{},
	)
}
