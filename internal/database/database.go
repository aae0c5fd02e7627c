package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// Options configures the connection pool.
type Options struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// Open initializes the gorm connection pool over MySQL and verifies it with a ping.
func Open(opts Options) (*gorm.DB, error) {
	// 1. Pick the SQL log level: everything in development, warnings otherwise.
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}

	// 2. Open the pool.
	db, err := gorm.Open(mysql.Open(opts.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// 3. Configure the connection pool settings.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 25
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 4. Ping the database to verify the connection.
	if err := sqlDB.Ping(); err != nil {
		log.Printf("Error connecting to database: %v", err)
		return nil, err
	}

	log.Println("Database connection pool established successfully")
	return db, nil
}

// Models lists every table the service owns, parents before children.
func Models() []any {
	return []any{
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.ProductImage{},
		&models.QuoteRequest{},
		&models.ContactMessage{},
		&models.Event{},
		&models.Customer{},
		&models.Industry{},
		&models.TeamMember{},
		&models.Testimonial{},
		&models.Job{},
		&models.JobApplication{},
		&models.GalleryItem{},
		&models.Setting{},
		&models.AdminUser{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
