package Models

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database and runs migrations. The handle is returned to
// the caller and injected into every component; nothing in this package holds
// process-wide connection state.
func Connect(postgresURL, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if postgresURL != "" {
		dialector = postgres.Open(postgresURL)
	} else {
		log.Warn("DATABASE_URL not set, using local SQLite database")
		dialector = sqlite.Open(sqlitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// Migrate creates the schema in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Base entities with no foreign keys
	if err := db.AutoMigrate(&User{}, &Vehicle{}); err != nil {
		return err
	}
	// 2. Documents and tokens hanging off the base entities
	if err := db.AutoMigrate(&Soat{}, &CirculationCertificate{}, &FCMToken{}, &Notification{}); err != nil {
		return err
	}
	// 3. Trip graph
	return db.AutoMigrate(&Trip{}, &Expense{}, &Prediction{})
}
