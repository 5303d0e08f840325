package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tordrt/exiftable/internal/dataset"
)

// CSVStore keeps the dataset in a CSV file with a header row of column names
type CSVStore struct {
	path string
}

// NewCSVStore returns a store for path. The file is created on the first Append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Load reads every row. A missing file is an empty table.
func (s *CSVStore) Load(ctx context.Context) (*dataset.Table, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &dataset.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// ReadCSV parses a table written by WriteCSV. Columns may appear in any order;
// columns absent from the header are missing in every row.
func ReadCSV(ctx context.Context, r io.Reader) (*dataset.Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &dataset.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	positions := make([]int, len(header))
	hasPath := false
	for i, name := range header {
		idx := dataset.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("unknown column in header: %s", name)
		}
		positions[i] = idx
		hasPath = hasPath || name == dataset.ColPath
	}
	if !hasPath {
		return nil, fmt.Errorf("header has no %s column", dataset.ColPath)
	}

	table := &dataset.Table{}
	cells := make([]string, len(dataset.Columns))
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		clear(cells)
		for i, cell := range row {
			cells[positions[i]] = cell
		}
		rec, err := dataset.RecordFromCells(cells)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// WriteCSV writes a header row followed by records
func WriteCSV(w io.Writer, records []dataset.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header()); err != nil {
		return err
	}
	return writeRows(writer, records)
}

func header() []string {
	names := make([]string, len(dataset.Columns))
	for i, col := range dataset.Columns {
		names[i] = col.Name
	}
	return names
}

func writeRows(writer *csv.Writer, records []dataset.Record) error {
	for _, rec := range records {
		if err := writer.Write(rec.Cells()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Append adds records whose path is not in the file yet. The file is rewritten
// through a temporary file in the same directory and renamed into place.
func (s *CSVStore) Append(ctx context.Context, records []dataset.Record) (int, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	added := existing.Append(records...)
	if len(added) == 0 {
		return 0, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := WriteCSV(tmp, existing.Records); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return len(added), nil
}

func (s *CSVStore) Close() error {
	return nil
}
