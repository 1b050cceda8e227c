package database

import (
	"fmt"

	"wintoday/config"
	"wintoday/logger"
	"wintoday/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.Database) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	logger.Info("✅ Connected to database", zap.String("host", cfg.Host), zap.String("name", cfg.Name))

	if cfg.AutoMigrate {
		logger.Info("🟡 Starting auto-migration...")
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("✅ Auto migration completed")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Player{},
		&models.GameRound{},
		&models.Bet{},
		&models.BalanceTransaction{},
	); err != nil {
		return errors.Wrap(err, "failed to auto-migrate database")
	}
	return nil
}
