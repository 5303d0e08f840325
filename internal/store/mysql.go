package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/exiftable/internal/dataset"
)

var mysqlDialect = dialect{
	quote:      quoteBacktick,
	columnType: mysqlColumnType,
	seqColumn:  "`seq` BIGINT AUTO_INCREMENT PRIMARY KEY",
	// 768 characters keeps the unique index under InnoDB's 3072 byte limit with utf8mb4
	pathType:   "VARCHAR(768)",
	insertVerb: "INSERT IGNORE",

	listColumns: mysqlColumns,
}

func mysqlColumnType(kind dataset.Kind) string {
	switch kind {
	case dataset.KindInt:
		return "BIGINT"
	case dataset.KindFloat:
		return "DOUBLE"
	case dataset.KindTime:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// MySQLStore keeps the dataset in a MySQL table. DATETIME(6) truncates timestamps to microseconds.
type MySQLStore struct {
	sqlTable
}

// NewMySQLStore connects using a go-sql-driver DSN (user:pass@tcp(host:port)/db)
func NewMySQLStore(ctx context.Context, dsn, table string) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	// Scan DATETIME columns into time.Time, always in UTC
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &MySQLStore{sqlTable{db: db, table: table, dialect: mysqlDialect}}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// GetDB returns the underlying database connection
func (s *MySQLStore) GetDB() *sql.DB {
	return s.db
}
