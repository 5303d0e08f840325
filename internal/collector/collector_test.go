package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/tordrt/exiftable/internal/exifread"
	"github.com/tordrt/exiftable/internal/exifread/exiftest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeReader struct {
	fail map[string]error
}

func (r *fakeReader) Read(path string) (*exifread.RawTags, error) {
	if err, ok := r.fail[path]; ok {
		return nil, err
	}
	iso := len(path)
	return &exifread.RawTags{Path: path, ISOSpeedRatings: &iso}, nil
}

type countingReporter struct {
	total     int
	increment atomic.Int32
	done      bool
}

func (r *countingReporter) Start(total int) { r.total = total }
func (r *countingReporter) Increment()      { r.increment.Add(1) }
func (r *countingReporter) Done()           { r.done = true }

func TestCollectKeepsInputOrder(t *testing.T) {
	var paths []string
	for i := 0; i < 50; i++ {
		paths = append(paths, fmt.Sprintf("img_%03d.jpg", i))
	}

	reporter := &countingReporter{}
	c := NewWithReader(&fakeReader{}, Options{Workers: 4, Reporter: reporter})

	records, err := c.Collect(context.Background(), paths)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(records) != len(paths) {
		t.Fatalf("Expected %d records, got %d", len(paths), len(records))
	}
	for i, rec := range records {
		if rec.Path != paths[i] {
			t.Errorf("record %d = %s, want %s", i, rec.Path, paths[i])
		}
	}

	if reporter.total != len(paths) || int(reporter.increment.Load()) != len(paths) || !reporter.done {
		t.Errorf("Unexpected progress: total=%d increments=%d done=%v", reporter.total, reporter.increment.Load(), reporter.done)
	}
}

func TestCollectUnreadable(t *testing.T) {
	unreadable := fmt.Errorf("%w: broken.jpg", exifread.ErrUnreadable)
	reader := &fakeReader{fail: map[string]error{"broken.jpg": unreadable}}
	paths := []string{"a.jpg", "broken.jpg", "b.jpg"}

	t.Run("fails by default", func(t *testing.T) {
		c := NewWithReader(reader, Options{Workers: 2})
		_, err := c.Collect(context.Background(), paths)
		if !errors.Is(err, exifread.ErrUnreadable) {
			t.Errorf("Expected ErrUnreadable, got %v", err)
		}
	})

	t.Run("skipped when requested", func(t *testing.T) {
		c := NewWithReader(reader, Options{Workers: 2, SkipUnreadable: true})
		records, err := c.Collect(context.Background(), paths)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		var got []string
		for _, rec := range records {
			got = append(got, rec.Path)
		}
		if diff := cmp.Diff([]string{"a.jpg", "b.jpg"}, got); diff != "" {
			t.Errorf("paths mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("other errors are never skipped", func(t *testing.T) {
		r := &fakeReader{fail: map[string]error{"a.jpg": os.ErrPermission}}
		c := NewWithReader(r, Options{Workers: 2, SkipUnreadable: true})
		if _, err := c.Collect(context.Background(), paths); !errors.Is(err, os.ErrPermission) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewWithReader(&fakeReader{}, Options{Workers: 1})
	if _, err := c.Collect(ctx, []string{"a.jpg", "b.jpg"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestCollectRealFiles(t *testing.T) {
	dir := t.TempDir()
	camera := filepath.Join(dir, "camera.jpg")
	plain := filepath.Join(dir, "plain.jpg")
	if err := exiftest.Camera().WriteJPEG(camera, 8, 8); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if err := exiftest.WritePlainJPEG(plain, 8, 8); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	records, err := New(Options{}).Collect(context.Background(), []string{camera, plain})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].ShutterSpeed == nil || *records[0].ShutterSpeed != "1/250" {
		t.Errorf("Expected shutter speed 1/250, got %v", records[0].ShutterSpeed)
	}
	if records[0].ExposureProgram == nil || *records[0].ExposureProgram != "絞り優先" {
		t.Errorf("Expected aperture priority label, got %v", records[0].ExposureProgram)
	}
	if records[1].FNumber != nil || records[1].FNumberCategory != nil {
		t.Error("Expected plain JPEG to have no exposure data")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.JPG", "b.jpeg", "notes.txt", "sub/c.tif", "sub/deeper/d.png"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "notes.txt")

	got, err := Discover([]string{dir, explicit, filepath.Join(dir, "a.JPG")}, nil)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.jpeg"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "sub", "c.tif"),
		filepath.Join(dir, "sub", "deeper", "d.png"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Discover([]string{filepath.Join(dir, "missing")}, nil); err == nil {
		t.Error("Expected error for missing input")
	}
}
