package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/exiftable/internal/dataset"
)

const overviewName = "_overview"

// MultiFileFormatter writes one file per source directory plus an overview
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text", "markdown" or "csv"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the table to multiple files
func (f *MultiFileFormatter) Format(t *dataset.Table) error {
	if _, err := New(f.OutputFormat, io.Discard); err != nil {
		return err
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dirs, groups := t.GroupByDir()
	names := FileNames(dirs)

	// Write overview file
	if err := f.writeOverview(t, dirs, groups, names); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	// Write per-directory files
	for _, dir := range dirs {
		sub := &dataset.Table{Records: groups[dir]}
		if err := f.writeDirFile(names[dir], dir, sub); err != nil {
			return fmt.Errorf("failed to write file for %s: %w", dir, err)
		}
	}

	return nil
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(t *dataset.Table, dirs []string, groups map[string][]dataset.Record, names map[string]string) error {
	ext := f.overviewExtension()
	file, err := os.Create(filepath.Join(f.OutputDir, overviewName+ext))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		f.writeMarkdownOverview(file, t, dirs, groups, names)
	} else {
		f.writeTextOverview(file, t, dirs, groups, names)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, t *dataset.Table, dirs []string, groups map[string][]dataset.Record, names map[string]string) {
	_, _ = fmt.Fprintf(w, "# EXIF Dataset Overview\n\n")
	_, _ = fmt.Fprintf(w, "%d rows. Each source directory has a corresponding file: `<directory>%s`\n\n", t.Len(), f.fileExtension())
	_, _ = fmt.Fprintf(w, "## Directories\n\n")
	for _, dir := range dirs {
		_, _ = fmt.Fprintf(w, "- **%s** (%d rows): `%s`\n", escapeMarkdown(dir), len(groups[dir]), names[dir]+f.fileExtension())
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "## Categories\n\n")
	WriteSummaryMarkdown(w, Summarize(t), "###")
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, t *dataset.Table, dirs []string, groups map[string][]dataset.Record, names map[string]string) {
	_, _ = fmt.Fprintf(w, "EXIF DATASET OVERVIEW (%d rows)\n", t.Len())
	_, _ = fmt.Fprintf(w, "Each directory has a file: <directory>%s\n\n", f.fileExtension())
	for _, dir := range dirs {
		_, _ = fmt.Fprintf(w, "%s (%d rows) -> %s\n", dir, len(groups[dir]), names[dir]+f.fileExtension())
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "CATEGORIES")
	WriteSummaryText(w, Summarize(t))
}

// writeDirFile writes the rows of a single directory to their own file
func (f *MultiFileFormatter) writeDirFile(name, dir string, sub *dataset.Table) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.fileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch f.OutputFormat {
	case FormatMarkdown:
		_, _ = fmt.Fprintf(file, "# %s\n\n", escapeMarkdown(dir))
		return NewMarkdownFormatter(file).FormatRecords(sub)
	case FormatCSV:
		return NewCSVFormatter(file).Format(sub)
	default:
		_, _ = fmt.Fprintf(file, "DIRECTORY %s\n", dir)
		return NewTextFormatter(file).Format(sub)
	}
}

// FileNames maps each directory to a file name made of its path elements. Characters
// outside [A-Za-z0-9-] become underscores; clashes get a numeric suffix.
func FileNames(dirs []string) map[string]string {
	names := make(map[string]string, len(dirs))
	used := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		base := sanitizeName(dir)
		name := base
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		used[name] = true
		names[dir] = name
	}
	return names
}

func sanitizeName(dir string) string {
	var b strings.Builder
	for _, r := range filepath.ToSlash(dir) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "root"
	}
	return name
}

func (f *MultiFileFormatter) fileExtension() string {
	switch f.OutputFormat {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// overviewExtension is the overview's own extension; a CSV run still gets a text overview
func (f *MultiFileFormatter) overviewExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
