package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the canonical text form of timestamp cells
const TimeLayout = "2006-01-02 15:04:05.999999999"

// fields returns pointers to the record's fields in Columns order
func (r *Record) fields() []any {
	return []any{
		&r.Path,
		&r.DateTime,
		&r.Model,
		&r.Software,
		&r.Orientation,
		&r.DateTimeOriginal,
		&r.DateTimeDigitized,
		&r.SubsecTime,
		&r.SubsecTimeOriginal,
		&r.SubsecTimeDigitized,
		&r.FNumber,
		&r.ExposureTime,
		&r.ISOSpeedRatings,
		&r.FocalLength,
		&r.FocalLengthIn35mmFilm,
		&r.ExposureProgram,
		&r.SceneCaptureType,
		&r.LensModel,
		&r.GPSLatitude,
		&r.GPSLatitudeRef,
		&r.GPSLongitude,
		&r.GPSLongitudeRef,
		&r.ImageWidth,
		&r.ImageHeight,
		&r.ShutterSpeed,
		&r.FocalLengthCategory,
		&r.ExposureTimeCategory,
		&r.FNumberCategory,
	}
}

// ScanTargets returns pointers to the record's fields in Columns order, suitable for
// database Scan calls. Optional fields are pointer-to-pointer so NULL scans to missing.
func (r *Record) ScanTargets() []any {
	return r.fields()
}

// ColumnIndex returns the position of a column in Columns, or -1
func ColumnIndex(name string) int {
	for i, col := range Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Values returns the record's cells in Columns order.
// Missing cells are nil; present cells are string, int, float64 or time.Time.
func (r *Record) Values() []any {
	fields := r.fields()
	values := make([]any, len(fields))
	for i, f := range fields {
		values[i] = deref(f)
	}
	return values
}

// Value returns a single cell by column name
func (r *Record) Value(name string) (any, error) {
	idx := ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column: %s", name)
	}
	return deref(r.fields()[idx]), nil
}

// SetValue assigns a single cell by column name. A nil value clears the cell.
func (r *Record) SetValue(name string, v any) error {
	idx := ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("unknown column: %s", name)
	}
	if err := assign(r.fields()[idx], v); err != nil {
		return fmt.Errorf("column %s: %w", name, err)
	}
	return nil
}

// SetValues assigns every cell from a slice in Columns order
func (r *Record) SetValues(values []any) error {
	if len(values) != len(Columns) {
		return fmt.Errorf("expected %d values, got %d", len(Columns), len(values))
	}
	for i, f := range r.fields() {
		if err := assign(f, values[i]); err != nil {
			return fmt.Errorf("column %s: %w", Columns[i].Name, err)
		}
	}
	return nil
}

func deref(f any) any {
	switch p := f.(type) {
	case *string:
		return *p
	case **string:
		if *p == nil {
			return nil
		}
		return **p
	case **int:
		if *p == nil {
			return nil
		}
		return **p
	case **float64:
		if *p == nil {
			return nil
		}
		return **p
	case **time.Time:
		if *p == nil {
			return nil
		}
		return **p
	}
	return nil
}

func assign(f any, v any) error {
	switch p := f.(type) {
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("path must be a string, got %T", v)
		}
		*p = s
	case **string:
		if v == nil {
			*p = nil
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*p = &s
	case **int:
		if v == nil {
			*p = nil
			return nil
		}
		switch n := v.(type) {
		case int:
			*p = &n
		case int64:
			i := int(n)
			*p = &i
		case int32:
			i := int(n)
			*p = &i
		default:
			return fmt.Errorf("expected int, got %T", v)
		}
	case **float64:
		if v == nil {
			*p = nil
			return nil
		}
		switch n := v.(type) {
		case float64:
			*p = &n
		case float32:
			x := float64(n)
			*p = &x
		default:
			return fmt.Errorf("expected float64, got %T", v)
		}
	case **time.Time:
		if v == nil {
			*p = nil
			return nil
		}
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		t = t.UTC()
		*p = &t
	}
	return nil
}

// FormatCell renders a cell as text. Missing cells render as the empty string.
func FormatCell(kind Kind, v any) string {
	if v == nil {
		return ""
	}
	switch kind {
	case KindInt:
		if n, ok := v.(int); ok {
			return strconv.Itoa(n)
		}
	case KindFloat:
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case KindTime:
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(TimeLayout)
		}
	}
	return fmt.Sprint(v)
}

// ParseCell is the inverse of FormatCell
func ParseCell(kind Kind, s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch kind {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindTime:
		t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.UTC)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return s, nil
	}
}

// Cells returns the record rendered with FormatCell, in Columns order
func (r *Record) Cells() []string {
	values := r.Values()
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = FormatCell(Columns[i].Kind, v)
	}
	return cells
}

// RecordFromCells parses a row rendered by Cells
func RecordFromCells(cells []string) (Record, error) {
	var rec Record
	if len(cells) != len(Columns) {
		return rec, fmt.Errorf("expected %d cells, got %d", len(Columns), len(cells))
	}
	values := make([]any, len(cells))
	for i, cell := range cells {
		v, err := ParseCell(Columns[i].Kind, cell)
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", Columns[i].Name, err)
		}
		values[i] = v
	}
	if values[0] == nil {
		return rec, fmt.Errorf("column %s: empty path", ColPath)
	}
	if err := rec.SetValues(values); err != nil {
		return rec, err
	}
	return rec, nil
}

// String, Int, Float and Time return pointers for building records
func String(s string) *string { return &s }

func Int(n int) *int { return &n }

func Float(f float64) *float64 { return &f }

func Time(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
