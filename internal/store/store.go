// Package store persists the dataset so later runs only read new files.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/exiftable/internal/dataset"
)

// DefaultTableName is the table holding one row per image
const DefaultTableName = "exif_records"

// ErrUnsupportedScheme is returned for store URLs without a known scheme
var ErrUnsupportedScheme = errors.New("unsupported store URL scheme")

// Store loads and appends dataset rows. Rows are keyed by path; appending a path that is
// already stored is a no-op.
type Store interface {
	// Load returns all rows in insertion order
	Load(ctx context.Context) (*dataset.Table, error)

	// Append stores records whose path is not yet present and returns how many were added
	Append(ctx context.Context, records []dataset.Record) (int, error)

	Close() error
}

// Scheme names returned by ParseURL
const (
	SchemePostgres = "postgres"
	SchemeMySQL    = "mysql"
	SchemeSQLite   = "sqlite"
	SchemeCSV      = "csv"
)

// ParseURL detects the store type and returns its connection string
func ParseURL(url string) (scheme, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("store URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return SchemePostgres, url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return SchemeMySQL, strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		return SchemeSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	}

	if strings.HasPrefix(url, "csv://") {
		return SchemeCSV, strings.TrimPrefix(url, "csv://"), nil
	}

	return "", "", fmt.Errorf("%w (must start with postgres://, mysql://, sqlite:// or csv://): %s", ErrUnsupportedScheme, url)
}

// Open connects to the store named by url
func Open(ctx context.Context, url string) (Store, error) {
	scheme, connStr, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemePostgres:
		return NewPostgresStore(ctx, connStr, DefaultTableName)
	case SchemeMySQL:
		return NewMySQLStore(ctx, connStr, DefaultTableName)
	case SchemeSQLite:
		return NewSQLiteStore(ctx, connStr, DefaultTableName)
	default:
		return NewCSVStore(connStr), nil
	}
}
