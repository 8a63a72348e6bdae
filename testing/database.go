// Package testing provides test utilities and database setup for testing the counter service
package testing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/amirphl/counter-api/config"
	"github.com/amirphl/counter-api/database"
	"github.com/amirphl/counter-api/models"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// TestDB represents a test database instance
type TestDB struct {
	DB       *gorm.DB
	Name     string
	Database *database.Database
}

// TestDatabaseConfig returns a config pointing at a private shared-cache in-memory SQLite database
func TestDatabaseConfig() (config.DatabaseConfig, string) {
	name := fmt.Sprintf("countdb_%d_%d", time.Now().UnixNano(), dbSeq.Add(1))
	return config.DatabaseConfig{
		URL:           fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns:  1,
		MaxIdleConns:  1,
		SlowQueryTime: time.Second,
	}, name
}

// SetupTestDB creates a new isolated in-memory database with the schema migrated
func SetupTestDB() (*TestDB, error) {
	cfg, name := TestDatabaseConfig()

	db, err := database.Open(cfg, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to open test database %s: %w", name, err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate test database %s: %w", name, err)
	}

	return &TestDB{
		DB:       db.DB,
		Name:     name,
		Database: db,
	}, nil
}

// TeardownTestDB closes the connection, which discards the in-memory database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.Database == nil {
		return nil
	}
	return tdb.Database.Close()
}

// ClearAllTables removes all rows while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	if err := tdb.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CountRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear count_table: %w", err)
	}
	return nil
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			zlog.Warn().Err(cleanupErr).Str("database", testDB.Name).Msg("failed to cleanup test database")
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
