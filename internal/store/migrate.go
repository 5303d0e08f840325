package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/exiftable/internal/dataset"
)

// missingColumns returns the dataset columns absent from existing, in Columns order
func missingColumns(existing []string) []dataset.Column {
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	var missing []dataset.Column
	for _, col := range dataset.Columns {
		if !have[col.Name] {
			missing = append(missing, col)
		}
	}
	return missing
}

// sqliteColumns lists the columns of table using PRAGMA table_info
func sqliteColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteDouble(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// mysqlColumns lists the columns of table in the connection's database
func mysqlColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	query := `
		SELECT c.column_name
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// migrate adds dataset columns that an older table lacks. Added columns are
// missing in existing rows.
func (t *sqlTable) migrate(ctx context.Context) error {
	existing, err := t.dialect.listColumns(ctx, t.db, t.table)
	if err != nil {
		return fmt.Errorf("failed to list columns of %s: %w", t.table, err)
	}

	for _, col := range missingColumns(existing) {
		if col.Name == dataset.ColPath {
			return fmt.Errorf("table %s has no %s column", t.table, dataset.ColPath)
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t.dialect.quote(t.table), t.dialect.quote(col.Name), t.dialect.columnType(col.Kind))
		if _, err := t.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.Name, err)
		}
	}
	return nil
}

// migrate adds dataset columns that an older table lacks
func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
		SELECT c.column_name
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position
	`

	rows, err := s.conn.Query(ctx, query, s.table)
	if err != nil {
		return fmt.Errorf("failed to list columns of %s: %w", s.table, err)
	}

	var existing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range missingColumns(existing) {
		if col.Name == dataset.ColPath {
			return fmt.Errorf("table %s has no %s column", s.table, dataset.ColPath)
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteDouble(s.table), quoteDouble(col.Name), postgresColumnType(col.Kind))
		if _, err := s.conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.Name, err)
		}
	}
	return nil
}
