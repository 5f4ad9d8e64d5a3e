package dbconfig

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/mcdev12/draftmirror/go/internal/sqlutil"
)

// Config holds identity authority connection settings.
type Config struct {
	Driver   string // sqlite, postgres (lib/pq) or pgx
	Path     string // sqlite only
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() Config {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return Config{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Path:     getEnv("DB_PATH", "data.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "drafts"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// Dialect returns the SQL dialect of the configured driver.
func (c Config) Dialect() (sqlutil.Dialect, error) {
	return sqlutil.DialectForDriver(c.Driver)
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.Driver == "sqlite" {
		if c.Path == ":memory:" || strings.HasPrefix(c.Path, "file:") {
			return c.Path
		}
		return c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Describe returns a loggable identifier without credentials.
func (c Config) Describe() string {
	if c.Driver == "sqlite" {
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Driver, c.User, c.Host, c.Port, c.Database)
}

// Open opens and pings the database.
func Open(ctx context.Context, c Config) (*sql.DB, error) {
	if _, err := c.Dialect(); err != nil {
		return nil, err
	}

	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	// SQLite serializes writers anyway; one connection also keeps :memory:
	// databases from splitting across the pool.
	if c.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
