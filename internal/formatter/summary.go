package formatter

import (
	"fmt"
	"io"
	"sort"

	"github.com/tordrt/exiftable/internal/dataset"
)

// MissingLabel stands in for missing cells in summaries
const MissingLabel = "(missing)"

// Count is the number of rows holding one value
type Count struct {
	Value string
	N     int
}

// Summary is the value distribution of one categorical column
type Summary struct {
	Column string
	Counts []Count
}

// Summarize counts the values of every categorical column. Counts are ordered by
// frequency, then by value.
func Summarize(table *dataset.Table) []Summary {
	summaries := make([]Summary, 0, len(dataset.CategoryColumns))
	for _, name := range dataset.CategoryColumns {
		idx := dataset.ColumnIndex(name)
		counts := make(map[string]int)
		if table != nil {
			for _, rec := range table.Records {
				value := MissingLabel
				if v, _ := rec.Value(name); v != nil {
					value = dataset.FormatCell(dataset.Columns[idx].Kind, v)
				}
				counts[value]++
			}
		}

		summary := Summary{Column: name}
		for value, n := range counts {
			summary.Counts = append(summary.Counts, Count{Value: value, N: n})
		}
		sort.Slice(summary.Counts, func(i, j int) bool {
			if summary.Counts[i].N != summary.Counts[j].N {
				return summary.Counts[i].N > summary.Counts[j].N
			}
			return summary.Counts[i].Value < summary.Counts[j].Value
		})
		summaries = append(summaries, summary)
	}
	return summaries
}

// WriteSummaryText writes distributions as indented plain text
func WriteSummaryText(w io.Writer, summaries []Summary) {
	for i, s := range summaries {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s\n", s.Column)
		for _, c := range s.Counts {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", c.Value, c.N)
		}
	}
}

// WriteSummaryMarkdown writes one section per column, headed with the given markdown
// heading marker, with a bullet per value
func WriteSummaryMarkdown(w io.Writer, summaries []Summary, heading string) {
	for _, s := range summaries {
		_, _ = fmt.Fprintf(w, "%s %s\n\n", heading, s.Column)
		for _, c := range s.Counts {
			_, _ = fmt.Fprintf(w, "- %s: %d\n", escapeMarkdown(c.Value), c.N)
		}
		_, _ = fmt.Fprintln(w)
	}
}
