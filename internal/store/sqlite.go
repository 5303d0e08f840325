package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/exiftable/internal/dataset"
)

var sqliteDialect = dialect{
	quote:      quoteDouble,
	columnType: sqliteColumnType,
	seqColumn:  `"seq" INTEGER PRIMARY KEY AUTOINCREMENT`,
	pathType:   "TEXT",
	insertVerb: "INSERT OR IGNORE",
	timeAsText: true,

	listColumns: sqliteColumns,
}

func sqliteColumnType(kind dataset.Kind) string {
	switch kind {
	case dataset.KindInt:
		return "INTEGER"
	case dataset.KindFloat:
		return "REAL"
	default:
		// Timestamps are TEXT in dataset.TimeLayout so the driver never reinterprets them
		return "TEXT"
	}
}

// SQLiteStore keeps the dataset in a SQLite file
type SQLiteStore struct {
	sqlTable
}

// NewSQLiteStore opens the database at path and creates table if needed
func NewSQLiteStore(ctx context.Context, path, table string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{sqlTable{db: db, table: table, dialect: sqliteDialect}}
	if err := s.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// GetDB returns the underlying database connection
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
