package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tordrt/exiftable/internal/dataset"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantScheme string
		wantConn   string
		wantErr    bool
	}{
		{"postgres", "postgres://u:p@localhost:5432/photos", SchemePostgres, "postgres://u:p@localhost:5432/photos", false},
		{"postgresql", "postgresql://localhost/photos", SchemePostgres, "postgresql://localhost/photos", false},
		{"mysql", "mysql://root:pw@tcp(localhost:3306)/photos", SchemeMySQL, "root:pw@tcp(localhost:3306)/photos", false},
		{"sqlite", "sqlite://photos.db", SchemeSQLite, "photos.db", false},
		{"csv", "csv:///data/exif.csv", SchemeCSV, "/data/exif.csv", false},
		{"empty", "", "", "", true},
		{"unknown", "redis://localhost", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, conn, err := ParseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if scheme != tt.wantScheme || conn != tt.wantConn {
				t.Errorf("ParseURL(%q) = (%s, %s), want (%s, %s)", tt.url, scheme, conn, tt.wantScheme, tt.wantConn)
			}
		})
	}
}

func TestOpenUnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "ftp://example.com/exif")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Expected ErrUnsupportedScheme, got %v", err)
	}
}

// sampleRecords returns a fully populated row and a row with only its path
func sampleRecords() []dataset.Record {
	taken := time.Date(2023, 5, 1, 12, 34, 56, 123000000, time.UTC)
	full := dataset.Record{
		Path:                  "/photos/trip/a.jpg",
		DateTime:              dataset.Time(taken),
		Model:                 dataset.String("X100V"),
		Orientation:           dataset.Int(1),
		DateTimeOriginal:      dataset.Time(taken),
		SubsecTime:            dataset.String("123"),
		FNumber:               dataset.Float(2.8),
		ExposureTime:          dataset.Float(0.004),
		ISOSpeedRatings:       dataset.Int(400),
		FocalLength:           dataset.Float(23),
		FocalLengthIn35mmFilm: dataset.Int(35),
		ExposureProgram:       dataset.String("絞り優先"),
		LensModel:             dataset.String("FUJINON 23mm F2"),
		GPSLatitude:           dataset.Float(35.68123611111111),
		GPSLatitudeRef:        dataset.String("N"),
		GPSLongitude:          dataset.Float(139.76666666666668),
		GPSLongitudeRef:       dataset.String("E"),
		ImageWidth:            dataset.Int(6000),
		ImageHeight:           dataset.Int(4000),
		ShutterSpeed:          dataset.String("1/250"),
		FocalLengthCategory:   dataset.String("標準(35～99mm)"),
		ExposureTimeCategory:  dataset.String("1/800～1/10sec"),
		FNumberCategory:       dataset.String("～F3.5"),
	}
	bare := dataset.Record{Path: "/photos/trip/b.png"}
	return []dataset.Record{full, bare}
}

// checkStoreContract exercises load, append, dedup and reload against an empty store
func checkStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	table, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty store failed: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Expected empty table, got %d rows", table.Len())
	}

	records := sampleRecords()
	added, err := s.Append(ctx, records)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if added != len(records) {
		t.Errorf("Expected %d rows added, got %d", len(records), added)
	}

	// Re-appending known paths is a no-op; only the new path is stored
	extra := dataset.Record{Path: "/photos/trip/c.jpg", ISOSpeedRatings: dataset.Int(200)}
	added, err = s.Append(ctx, append(sampleRecords(), extra))
	if err != nil {
		t.Fatalf("Second Append failed: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 row added on second append, got %d", added)
	}

	table, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := append(records, extra)
	if diff := cmp.Diff(want, table.Records); diff != "" {
		t.Errorf("Loaded rows mismatch (-want +got):\n%s", diff)
	}
}
