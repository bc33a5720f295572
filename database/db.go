package database

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// ErrDisabled is returned by Open when no driver is configured.
var ErrDisabled = errors.New("database disabled")

// Config selects and locates the lookup cache database.
type Config struct {
	Driver   string `yaml:"driver"` // sqlite, postgres or empty
	Path     string `yaml:"path"`   // sqlite file
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Port     string `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// Open connects and migrates. It returns ErrDisabled when Driver is empty.
func Open(c Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Driver {
	case "":
		return nil, ErrDisabled
	case "postgres":
		dialector = postgres.Open(c.DSN())
	case "sqlite":
		path := c.Path
		if path == "" {
			path = "castleverde.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established", "driver", c.Driver)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	logger.Info("Running migrations...")
	if err := db.AutoMigrate(&models.FoodLookup{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Migrations completed")
	return nil
}

// Ping checks the underlying connection.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
