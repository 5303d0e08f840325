package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCSVStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exif.csv")
	checkStoreContract(t, NewCSVStore(path))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !strings.HasPrefix(string(data), "path,DateTime,Model,") {
		t.Errorf("Expected header row first, got %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	table, err := ReadCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if diff := cmp.Diff(sampleRecords(), table.Records); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVHeaders(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"empty file", "", 0, false},
		{"reordered subset", "Model,path\nX100V,/a.jpg\n,/b.jpg\n", 2, false},
		{"unknown column", "path,Colour\n/a.jpg,red\n", 0, true},
		{"no path column", "Model\nX100V\n", 0, true},
		{"empty path", "path,Model\n,X100V\n", 0, true},
		{"bad integer", "path,ISOSpeedRatings\n/a.jpg,lots\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(context.Background(), strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if table.Len() != tt.wantLen {
				t.Errorf("Expected %d rows, got %d", tt.wantLen, table.Len())
			}
		})
	}
}

func TestCSVStoreMissingFile(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "none.csv"))
	table, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Expected empty table, got %d rows", table.Len())
	}

	added, err := s.Append(context.Background(), nil)
	if err != nil || added != 0 {
		t.Errorf("Append(nil) = (%d, %v), want (0, nil)", added, err)
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("Expected no file to be created for an empty append")
	}
}
