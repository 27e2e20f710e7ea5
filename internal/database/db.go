package database

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nutrivision-go/internal/config"
	"nutrivision-go/internal/models"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode,
	)
}

// Connect opens the pooled connection shared by every store. The handle is
// passed explicitly to constructors; there is no package-level DB.
func Connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "connect to PostgreSQL")
	}

	log.WithFields(logrus.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("connected to PostgreSQL")
	return db, nil
}

// Migrate creates the schema idempotently.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.DietPlan{},
		&models.WorkoutPlan{},
		&models.DietFeedback{},
	)
	return errors.Wrap(err, "auto-migrate")
}
