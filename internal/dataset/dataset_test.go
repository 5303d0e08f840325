package dataset

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleRecord() Record {
	return Record{
		Path:                  "photos/a.jpg",
		DateTime:              Time(time.Date(2023, 5, 1, 12, 34, 56, 123000000, time.UTC)),
		Model:                 String("X-T4"),
		Orientation:           Int(1),
		FNumber:               Float(2.8),
		ExposureTime:          Float(0.004),
		ISOSpeedRatings:       Int(400),
		FocalLengthIn35mmFilm: Int(35),
		GPSLatitude:           Float(35.681236),
		GPSLatitudeRef:        String("N"),
		ShutterSpeed:          String("1/250"),
		FNumberCategory:       String("～F3.5"),
	}
}

func TestColumnsMatchRecordFields(t *testing.T) {
	var rec Record
	if got, want := len(rec.fields()), len(Columns); got != want {
		t.Fatalf("Record has %d fields, Columns lists %d", got, want)
	}

	for i, f := range rec.fields() {
		var ok bool
		switch Columns[i].Kind {
		case KindString:
			_, ok = f.(**string)
			if i == 0 {
				_, ok = f.(*string)
			}
		case KindInt:
			_, ok = f.(**int)
		case KindFloat:
			_, ok = f.(**float64)
		case KindTime:
			_, ok = f.(**time.Time)
		}
		if !ok {
			t.Errorf("column %s: field type %T does not match kind %s", Columns[i].Name, f, Columns[i].Kind)
		}
	}
}

func TestCellsRoundTrip(t *testing.T) {
	rec := sampleRecord()

	got, err := RecordFromCells(rec.Cells())
	if err != nil {
		t.Fatalf("RecordFromCells failed: %v", err)
	}

	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFromCellsErrors(t *testing.T) {
	cells := make([]string, len(Columns))
	if _, err := RecordFromCells(cells); err == nil {
		t.Error("Expected error for empty path")
	}

	cells[0] = "a.jpg"
	cells[ColumnIndex(ColISOSpeedRatings)] = "fast"
	if _, err := RecordFromCells(cells); err == nil {
		t.Error("Expected error for non-numeric int cell")
	}

	if _, err := RecordFromCells([]string{"a.jpg"}); err == nil {
		t.Error("Expected error for short row")
	}
}

func TestValueAndSetValue(t *testing.T) {
	rec := sampleRecord()

	v, err := rec.Value(ColISOSpeedRatings)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != 400 {
		t.Errorf("Expected 400, got %v", v)
	}

	if err := rec.SetValue(ColISOSpeedRatings, nil); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if rec.ISOSpeedRatings != nil {
		t.Error("Expected ISOSpeedRatings to be cleared")
	}

	if err := rec.SetValue(ColFNumber, "2.8"); err == nil {
		t.Error("Expected type error for string into float column")
	}
	if _, err := rec.Value("Nope"); err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		kind Kind
		v    any
		want string
	}{
		{KindString, nil, ""},
		{KindInt, 42, "42"},
		{KindFloat, 0.004, "0.004"},
		{KindFloat, 35.0, "35"},
		{KindTime, time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC), "2023-05-01 12:00:00"},
		{KindTime, time.Date(2023, 5, 1, 12, 0, 0, 500000000, time.UTC), "2023-05-01 12:00:00.5"},
	}

	for _, tt := range tests {
		if got := FormatCell(tt.kind, tt.v); got != tt.want {
			t.Errorf("FormatCell(%s, %v) = %q, want %q", tt.kind, tt.v, got, tt.want)
		}
	}
}

func TestAppendSkipsDuplicates(t *testing.T) {
	table := &Table{Records: []Record{{Path: "a.jpg"}, {Path: "b.jpg"}}}

	added := table.Append(Record{Path: "b.jpg"}, Record{Path: "c.jpg"}, Record{Path: "c.jpg"})

	if len(added) != 1 || added[0].Path != "c.jpg" {
		t.Errorf("Expected only c.jpg to be added, got %v", added)
	}

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	if table.Len() != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), table.Len())
	}
	for i, rec := range table.Records {
		if rec.Path != want[i] {
			t.Errorf("row %d = %s, want %s", i, rec.Path, want[i])
		}
	}
}

func TestMissingPaths(t *testing.T) {
	existing := &Table{Records: []Record{{Path: "b.jpg"}}}

	tests := []struct {
		name     string
		paths    []string
		existing *Table
		want     []string
	}{
		{
			name:     "sorted and de-duplicated",
			paths:    []string{"c.jpg", "a.jpg", "b.jpg", "a.jpg"},
			existing: existing,
			want:     []string{"a.jpg", "c.jpg"},
		},
		{
			name:     "nil existing table",
			paths:    []string{"b.jpg", "a.jpg"},
			existing: nil,
			want:     []string{"a.jpg", "b.jpg"},
		},
		{
			name:     "nothing new",
			paths:    []string{"b.jpg"},
			existing: existing,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingPaths(tt.paths, tt.existing)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MissingPaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupByDir(t *testing.T) {
	table := &Table{Records: []Record{
		{Path: "trip/b.jpg"},
		{Path: "home/a.jpg"},
		{Path: "trip/a.jpg"},
	}}

	dirs, groups := table.GroupByDir()

	if diff := cmp.Diff([]string{"home", "trip"}, dirs); diff != "" {
		t.Errorf("dirs mismatch (-want +got):\n%s", diff)
	}
	if len(groups["trip"]) != 2 || groups["trip"][0].Path != "trip/b.jpg" {
		t.Errorf("Expected trip group to keep table order, got %v", groups["trip"])
	}
}
