package formatter

import (
	"io"

	"github.com/tordrt/exiftable/internal/dataset"
	"github.com/tordrt/exiftable/internal/store"
)

// CSVFormatter writes the dataset in the same layout the csv:// store reads
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// Format writes a header row followed by one row per record
func (f *CSVFormatter) Format(t *dataset.Table) error {
	var records []dataset.Record
	if t != nil {
		records = t.Records
	}
	return store.WriteCSV(f.writer, records)
}
