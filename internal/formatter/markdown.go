package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/exiftable/internal/dataset"
)

// MarkdownFormatter formats the dataset as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the table in markdown format
func (f *MarkdownFormatter) Format(t *dataset.Table) error {
	_, _ = fmt.Fprintln(f.writer, "# EXIF Dataset")
	_, _ = fmt.Fprintln(f.writer)
	return f.FormatRecords(t)
}

// FormatRecords writes the row count, the rows and the category sections without a
// document title (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatRecords(t *dataset.Table) error {
	_, _ = fmt.Fprintf(f.writer, "%d rows\n\n", t.Len())
	if t.Len() == 0 {
		return nil
	}

	f.formatRows(t.Records)

	_, _ = fmt.Fprintln(f.writer, "## Categories")
	_, _ = fmt.Fprintln(f.writer)
	WriteSummaryMarkdown(f.writer, Summarize(t), "###")
	return nil
}

func (f *MarkdownFormatter) formatRows(records []dataset.Record) {
	names := columnNames()
	_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(names, " | "))

	separators := make([]string, len(names))
	for i, col := range dataset.Columns {
		separators[i] = "---"
		if col.Kind == dataset.KindInt || col.Kind == dataset.KindFloat {
			separators[i] = "---:"
		}
	}
	_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(separators, " | "))

	for _, rec := range records {
		cells := displayCells(rec)
		for i, cell := range cells {
			cells[i] = escapeMarkdown(cell)
		}
		_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(cells, " | "))
	}
	_, _ = fmt.Fprintln(f.writer)
}

// escapeMarkdown keeps cell text from breaking table rows
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
