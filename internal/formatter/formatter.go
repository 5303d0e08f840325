// Package formatter renders the dataset for people and for other tools.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/exiftable/internal/dataset"
)

// Output format names
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formatter writes a whole table
type Formatter interface {
	Format(t *dataset.Table) error
}

// New returns the formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText, "":
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'text', 'markdown' or 'csv')", format)
	}
}
