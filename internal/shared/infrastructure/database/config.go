package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds database configuration.
type Config struct {
	// Driver is detected from URL when empty.
	Driver Driver

	// URL is a PostgreSQL connection string or a SQLite path/URL.
	URL string

	// MaxConns caps the PostgreSQL pool size. Zero keeps the pgx default.
	MaxConns int
}

// ErrUnsupportedDriver is returned for drivers other than postgres and sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Validate rejects configurations whose driver is unknown.
func (c Config) Validate() error {
	if d := c.ResolvedDriver(); !d.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, d)
	}
	return nil
}

// ResolvedDriver returns the configured driver, detecting it from URL if unset.
func (c Config) ResolvedDriver() Driver {
	if c.Driver == "" || c.Driver == "auto" {
		return DetectDriver(c.URL)
	}
	return c.Driver
}

// SQLitePath returns the file path for a SQLite URL, falling back to
// DefaultSQLitePath when the URL is empty.
func (c Config) SQLitePath() string {
	path := c.URL
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		return DefaultSQLitePath()
	}
	return path
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".reelgate", "data.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
