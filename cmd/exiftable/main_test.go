package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/tordrt/exiftable/internal/exifread/exiftest"
	"github.com/tordrt/exiftable/internal/store"
)

// execute runs the CLI with fresh flag state and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, cmd := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags(), watchCmd.Flags(), summaryCmd.Flags()} {
		cmd.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--no-progress"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePhotos(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "photos")
	if err := os.MkdirAll(filepath.Join(dir, "trip"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := exiftest.Camera().WriteJPEG(filepath.Join(dir, "trip", "a.jpg"), 8, 8); err != nil {
		t.Fatal(err)
	}
	if err := exiftest.WritePlainJPEG(filepath.Join(dir, "b.jpg"), 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunCSVOutput(t *testing.T) {
	photos := writePhotos(t)

	out, err := execute(t, photos, "--format", "csv")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	table, err := store.ReadCSV(context.Background(), strings.NewReader(out))
	if err != nil {
		t.Fatalf("Output is not a readable CSV table: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.Len())
	}
	if table.Records[0].Path != filepath.Join(photos, "b.jpg") {
		t.Errorf("Expected rows in sorted path order, first is %s", table.Records[0].Path)
	}
}

func TestRunSaveAndSummary(t *testing.T) {
	photos := writePhotos(t)
	url := "sqlite://" + filepath.Join(t.TempDir(), "exif.db")
	outFile := filepath.Join(t.TempDir(), "report.md")

	if _, err := execute(t, photos, "--existing", url, "--save", "--locale", "en", "-f", "markdown", "-o", outFile); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	report, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if !strings.HasPrefix(string(report), "# EXIF Dataset\n\n2 rows") {
		t.Errorf("Unexpected report:\n%s", report)
	}

	out, err := execute(t, "summary", "--store", url)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	for _, want := range []string{"EXIF SUMMARY (2 rows)", "ExposureProgram", "  Aperture priority: 1", "  (missing): 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q:\n%s", want, out)
		}
	}
}

func TestRunOutputDir(t *testing.T) {
	photos := writePhotos(t)
	outDir := filepath.Join(t.TempDir(), "report")

	if _, err := execute(t, photos, "-d", outDir); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected overview plus 2 directory files, got %d entries", len(entries))
	}
}

func TestConfigFile(t *testing.T) {
	photos := writePhotos(t)
	cfgPath := filepath.Join(t.TempDir(), "exiftable.yaml")
	if err := os.WriteFile(cfgPath, []byte("format: markdown\nlocale: en\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, photos, "--config", cfgPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "# EXIF Dataset") || !strings.Contains(out, "Aperture priority") {
		t.Errorf("Expected markdown output with English labels:\n%s", out)
	}

	// Flags win over the file
	out, err = execute(t, photos, "--config", cfgPath, "-f", "text")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out, "EXIF DATASET (2 rows)") {
		t.Errorf("Expected text output when --format is set:\n%s", out)
	}
}

func TestSummaryWithCSVConfig(t *testing.T) {
	photos := writePhotos(t)
	url := "csv://" + filepath.Join(t.TempDir(), "exif.csv")
	cfgPath := filepath.Join(t.TempDir(), "exiftable.yaml")
	if err := os.WriteFile(cfgPath, []byte("format: csv\nlocale: en\nstore: "+url+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, photos, "--config", cfgPath, "--save")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out, "path,") {
		t.Errorf("Expected csv output from the config format:\n%s", out)
	}

	// The table format from the config file does not apply to summaries
	out, err = execute(t, "summary", "--config", cfgPath)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.HasPrefix(out, "EXIF SUMMARY (2 rows)") {
		t.Errorf("Expected text summary:\n%s", out)
	}

	if _, err := execute(t, "summary", "--config", cfgPath, "-f", "csv"); err == nil {
		t.Error("Expected error for an explicit csv summary format")
	}
}

func TestRunInvalidFlags(t *testing.T) {
	photos := writePhotos(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no paths", nil},
		{"output and output-dir", []string{photos, "-o", "x.txt", "-d", "out"}},
		{"save without store", []string{photos, "--save"}},
		{"invalid format", []string{photos, "-f", "json"}},
		{"invalid locale", []string{photos, "--locale", "fr"}},
		{"unsupported store", []string{photos, "--existing", "redis://localhost"}},
		{"missing input", []string{filepath.Join(photos, "missing.jpg")}},
		{"summary without store", []string{"summary"}},
		{"watch without store", []string{"watch", photos}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}
