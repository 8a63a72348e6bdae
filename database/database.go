// Package database opens the GORM handle for the count table from a single DATABASE_URL.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/counter-api/config"
	"github.com/amirphl/counter-api/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported dialects
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var ErrUnsupportedURL = errors.New("unsupported database url")

// Target is a parsed DATABASE_URL
type Target struct {
	Dialect string
	DSN     string
	Memory  bool
}

// ParseURL maps SQLAlchemy-style and plain URLs onto a GORM dialect and DSN.
//
//	sqlite:///./app.db          relative file
//	sqlite:////var/lib/app.db   absolute file
//	sqlite:// or sqlite:///:memory:
//	file:name?mode=memory&cache=shared
//	postgres://, postgresql://, postgresql+psycopg2://
func ParseURL(raw string) (Target, error) {
	url := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" || path == ":memory:" {
			return Target{Dialect: DialectSQLite, DSN: ":memory:", Memory: true}, nil
		}
		return Target{Dialect: DialectSQLite, DSN: path}, nil
	case strings.HasPrefix(url, "file:"):
		memory := strings.Contains(url, "mode=memory") || strings.HasPrefix(url, "file::memory:")
		return Target{Dialect: DialectSQLite, DSN: url, Memory: memory}, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Target{Dialect: DialectPostgres, DSN: url}, nil
	case strings.HasPrefix(url, "postgresql+"):
		idx := strings.Index(url, "://")
		if idx < 0 {
			return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
		}
		return Target{Dialect: DialectPostgres, DSN: "postgresql" + url[idx:]}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
}

// sqliteDSN appends the connection pragmas understood by mattn/go-sqlite3
func sqliteDSN(t Target) string {
	params := []string{"_busy_timeout=5000", "_foreign_keys=on"}
	if !t.Memory {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(t.DSN, "?") {
		sep = "&"
	}
	return t.DSN + sep + strings.Join(params, "&")
}

// Database owns the GORM handle and its connection pool
type Database struct {
	DB      *gorm.DB
	dialect string
	log     zerolog.Logger
}

// Open connects, tunes the pool and verifies connectivity
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*Database, error) {
	target, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch target.Dialect {
	case DialectSQLite:
		dialector = sqlite.Open(sqliteDSN(target))
	case DialectPostgres:
		dialector = postgres.Open(target.DSN)
	}

	gormLevel := gormlogger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		gormLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(gormWriter{log: log.With().Str("component", "gorm").Logger()}, gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if target.Dialect == DialectSQLite {
		// SQLite has a single writer; one connection also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("dialect", target.Dialect).
		Bool("memory", target.Memory).
		Msg("Database connection established")

	return &Database{DB: db, dialect: target.Dialect, log: log}, nil
}

// Migrate creates count_table and its index when missing
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(&models.CountRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks that the store is reachable
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Dialect reports which driver the handle was opened with
func (d *Database) Dialect() string {
	return d.dialect
}

// Close releases the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormWriter routes GORM's logger output into zerolog
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Info().Msgf(format, args...)
}
