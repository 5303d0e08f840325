package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/exiftable/internal/dataset"
)

func postgresColumnType(kind dataset.Kind) string {
	switch kind {
	case dataset.KindInt:
		return "BIGINT"
	case dataset.KindFloat:
		return "DOUBLE PRECISION"
	case dataset.KindTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// PostgresStore keeps the dataset in a PostgreSQL table
type PostgresStore struct {
	conn  *pgx.Conn
	table string
}

// NewPostgresStore connects and creates table if needed
func NewPostgresStore(ctx context.Context, connString, table string) (*PostgresStore, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{conn: conn, table: table}
	if err := s.createTable(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	defs := []string{`"seq" BIGSERIAL PRIMARY KEY`}
	for _, col := range dataset.Columns {
		if col.Name == dataset.ColPath {
			defs = append(defs, fmt.Sprintf("%s TEXT NOT NULL UNIQUE", quoteDouble(col.Name)))
			continue
		}
		defs = append(defs, fmt.Sprintf("%s %s", quoteDouble(col.Name), postgresColumnType(col.Kind)))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteDouble(s.table), strings.Join(defs, ",\n\t"))
	if _, err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return s.migrate(ctx)
}

func (s *PostgresStore) columnList() string {
	names := make([]string, len(dataset.Columns))
	for i, col := range dataset.Columns {
		names[i] = quoteDouble(col.Name)
	}
	return strings.Join(names, ", ")
}

// Load returns all rows ordered by insertion
func (s *PostgresStore) Load(ctx context.Context) (*dataset.Table, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "seq"`, s.columnList(), quoteDouble(s.table))

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	table := &dataset.Table{}
	for rows.Next() {
		var rec dataset.Record
		if err := rows.Scan(rec.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		table.Records = append(table.Records, rec)
	}

	return table, rows.Err()
}

// Append queues one insert per record in a single batch inside a transaction
func (s *PostgresStore) Append(ctx context.Context, records []dataset.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(dataset.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		quoteDouble(s.table), s.columnList(), strings.Join(placeholders, ", "), quoteDouble(dataset.ColPath))

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, rec.Values()...)
	}

	results := tx.SendBatch(ctx, batch)
	added := 0
	for _, rec := range records {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("failed to insert %s: %w", rec.Path, err)
		}
		added += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return added, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.conn.Close(context.Background())
}

// GetConnection returns the underlying connection
func (s *PostgresStore) GetConnection() *pgx.Conn {
	return s.conn
}
