package db

import (
	"log"

	"threadit/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs migrations. TranslateError lets
// handlers match unique-constraint violations via gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := Migrate(database); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return database, nil
}

// Migrate creates or updates the schema. Exported so tests can run it
// against their own database handle.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Subreddit{},
		&models.Post{},
		&models.Upvote{},
		&models.Downvote{},
	)
}
