package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tordrt/exiftable/internal/dataset"
)

// dialect captures the differences between the database/sql backends
type dialect struct {
	quote      func(name string) string
	columnType func(kind dataset.Kind) string
	seqColumn  string // auto-increment column definition used for insertion order
	pathType   string
	insertVerb string // insert that ignores rows violating the unique path
	timeAsText bool   // store timestamps in dataset.TimeLayout text

	listColumns func(ctx context.Context, db *sql.DB, table string) ([]string, error)
}

func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// sqlTable implements Store over database/sql
type sqlTable struct {
	db      *sql.DB
	table   string
	dialect dialect
}

func (t *sqlTable) createTable(ctx context.Context) error {
	defs := []string{t.dialect.seqColumn}
	for _, col := range dataset.Columns {
		if col.Name == dataset.ColPath {
			defs = append(defs, fmt.Sprintf("%s %s NOT NULL UNIQUE", t.dialect.quote(col.Name), t.dialect.pathType))
			continue
		}
		defs = append(defs, fmt.Sprintf("%s %s", t.dialect.quote(col.Name), t.dialect.columnType(col.Kind)))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.dialect.quote(t.table), strings.Join(defs, ",\n\t"))
	if _, err := t.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.table, err)
	}
	return t.migrate(ctx)
}

func (t *sqlTable) columnList() string {
	names := make([]string, len(dataset.Columns))
	for i, col := range dataset.Columns {
		names[i] = t.dialect.quote(col.Name)
	}
	return strings.Join(names, ", ")
}

// Load returns all rows ordered by insertion
func (t *sqlTable) Load(ctx context.Context) (*dataset.Table, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", t.columnList(), t.dialect.quote(t.table), t.dialect.quote("seq"))

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer rows.Close()

	table := &dataset.Table{}
	for rows.Next() {
		rec, err := t.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	return table, rows.Err()
}

func (t *sqlTable) scanRecord(rows *sql.Rows) (dataset.Record, error) {
	var rec dataset.Record
	targets := rec.ScanTargets()

	// Text timestamps are scanned as strings and parsed afterwards
	textTimes := make(map[int]*sql.NullString)
	if t.dialect.timeAsText {
		for i, col := range dataset.Columns {
			if col.Kind == dataset.KindTime {
				holder := &sql.NullString{}
				textTimes[i] = holder
				targets[i] = holder
			}
		}
	}

	if err := rows.Scan(targets...); err != nil {
		return rec, fmt.Errorf("failed to scan row: %w", err)
	}

	for i, holder := range textTimes {
		if !holder.Valid {
			continue
		}
		v, err := dataset.ParseCell(dataset.KindTime, holder.String)
		if err != nil {
			return rec, fmt.Errorf("invalid %s for %s: %w", dataset.Columns[i].Name, rec.Path, err)
		}
		if err := rec.SetValue(dataset.Columns[i].Name, v); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

// Append inserts new rows in one transaction
func (t *sqlTable) Append(ctx context.Context, records []dataset.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dataset.Columns)), ", ")
	query := fmt.Sprintf("%s INTO %s (%s) VALUES (%s)", t.dialect.insertVerb, t.dialect.quote(t.table), t.columnList(), placeholders)

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx, t.args(rec)...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", rec.Path, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return added, nil
}

func (t *sqlTable) args(rec dataset.Record) []any {
	values := rec.Values()
	if t.dialect.timeAsText {
		for i, v := range values {
			if ts, ok := v.(time.Time); ok {
				values[i] = dataset.FormatCell(dataset.KindTime, ts)
			}
		}
	}
	return values
}

func (t *sqlTable) Close() error {
	return t.db.Close()
}
