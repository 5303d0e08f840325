package dataset

import (
	"path/filepath"
	"sort"
)

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Paths returns the set of keys already present in the table
func (t *Table) Paths() map[string]bool {
	paths := make(map[string]bool, t.Len())
	if t == nil {
		return paths
	}
	for _, rec := range t.Records {
		paths[rec.Path] = true
	}
	return paths
}

// Append adds records whose path is not yet in the table, keeping their order.
// It returns the records that were actually added.
func (t *Table) Append(records ...Record) []Record {
	seen := t.Paths()
	var added []Record
	for _, rec := range records {
		if seen[rec.Path] {
			continue
		}
		seen[rec.Path] = true
		t.Records = append(t.Records, rec)
		added = append(added, rec)
	}
	return added
}

// Clone returns a shallow copy of the table with its own row slice
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	records := make([]Record, len(t.Records))
	copy(records, t.Records)
	return &Table{Records: records}
}

// GroupByDir splits the table by the directory of each path.
// Directory keys are returned sorted; rows keep their table order.
func (t *Table) GroupByDir() ([]string, map[string][]Record) {
	groups := make(map[string][]Record)
	if t == nil {
		return nil, groups
	}
	for _, rec := range t.Records {
		dir := filepath.Dir(rec.Path)
		groups[dir] = append(groups[dir], rec)
	}
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, groups
}

// MissingPaths returns the paths not present in existing, de-duplicated and sorted
func MissingPaths(paths []string, existing *Table) []string {
	known := existing.Paths()
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if !known[p] {
			set[p] = true
		}
	}
	missing := make([]string, 0, len(set))
	for p := range set {
		missing = append(missing, p)
	}
	sort.Strings(missing)
	return missing
}
