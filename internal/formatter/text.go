package formatter

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tordrt/exiftable/internal/dataset"
)

// missingCell is shown for missing values in human-readable output
const missingCell = "-"

// TextFormatter renders the dataset as a bordered terminal table followed by the
// category distributions
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the table in text format
func (f *TextFormatter) Format(t *dataset.Table) error {
	_, _ = fmt.Fprintf(f.writer, "EXIF DATASET (%d rows)\n", t.Len())
	if t.Len() == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(f.writer, f.renderTable(t.Records))
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "CATEGORIES")
	WriteSummaryText(f.writer, Summarize(t))
	return nil
}

func (f *TextFormatter) renderTable(records []dataset.Record) string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = displayCells(rec)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columnNames()...).
		Rows(rows...).
		String()
}

func columnNames() []string {
	names := make([]string, len(dataset.Columns))
	for i, col := range dataset.Columns {
		names[i] = col.Name
	}
	return names
}

// displayCells renders a record for people, marking missing cells
func displayCells(rec dataset.Record) []string {
	cells := rec.Cells()
	for i, cell := range cells {
		if cell == "" {
			cells[i] = missingCell
		}
	}
	return cells
}
