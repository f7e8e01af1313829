package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/utils"
)

// NewSQLLogger reports slow queries and real failures to w. A missing row
// is an ordinary 404 or a find-or-create miss, not an error.
func NewSQLLogger(w io.Writer) gormlogger.Interface {
	return gormlogger.New(log.New(w, "\r\n", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// GormConfig is shared by the server and the tests. Unique violations are
// translated to gorm.ErrDuplicatedKey. No foreign keys are created, so
// deleting a post or category leaves dependent rows in place.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   NewSQLLogger(os.Stderr),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; serialize through a single connection.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	slog.Info("Database connection established", "driver", cfg.Driver)

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	slog.Info("Database migration completed")
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Seed inserts the default categories and tags that are missing by name.
func Seed(ctx context.Context, gdb *gorm.DB) error {
	categories := []models.Category{
		{Name: "Lifestyle", Description: "Articles about luxury living and sophisticated lifestyle choices", Image: "/images/category-lifestyle.jpg"},
		{Name: "Travel", Description: "Discover extraordinary destinations and luxury travel experiences", Image: "/images/category-travel.jpg"},
		{Name: "Wellness", Description: "Holistic approaches to health, mindfulness, and wellbeing", Image: "/images/category-wellness.jpg"},
		{Name: "Design", Description: "Timeless aesthetics and sophisticated design principles", Image: "/images/category-design.jpg"},
	}
	tags := []models.Tag{
		{Name: "Luxury", Description: "Premium and high-end content"},
		{Name: "Minimalism", Description: "Simple and refined living"},
		{Name: "Interior Design", Description: "Home and space design"},
		{Name: "Fine Dining", Description: "Culinary experiences and gastronomy"},
		{Name: "Mindfulness", Description: "Mental wellness and meditation"},
		{Name: "Fashion", Description: "Style and fashion trends"},
		{Name: "Art", Description: "Art and cultural experiences"},
	}

	tx := gdb.WithContext(ctx)
	for _, c := range categories {
		c.Slug = utils.Slugify(c.Name)
		res := tx.Where(models.Category{Name: c.Name}).FirstOrCreate(&c)
		if res.Error != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			slog.Info("[Seed] created category", "name", c.Name)
		}
	}
	for _, tag := range tags {
		tag.Slug = utils.Slugify(tag.Name)
		res := tx.Where(models.Tag{Name: tag.Name}).FirstOrCreate(&tag)
		if res.Error != nil {
			return fmt.Errorf("seed tag %s: %w", tag.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			slog.Info("[Seed] created tag", "name", tag.Name)
		}
	}
	return nil
}
