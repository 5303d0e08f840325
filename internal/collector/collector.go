// Package collector runs the read → normalize → categorize pipeline over a batch of files.
package collector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tordrt/exiftable/internal/dataset"
	"github.com/tordrt/exiftable/internal/exifread"
	"github.com/tordrt/exiftable/internal/transform"
)

// TagReader reads raw tags from a file
type TagReader interface {
	Read(path string) (*exifread.RawTags, error)
}

// Reporter receives progress updates. Implementations must be safe for concurrent use.
type Reporter interface {
	Start(total int)
	Increment()
	Done()
}

type nopReporter struct{}

func (nopReporter) Start(int)  {}
func (nopReporter) Increment() {}
func (nopReporter) Done()      {}

// Options configures a Collector
type Options struct {
	// Workers bounds concurrent file reads. Zero uses GOMAXPROCS.
	Workers int

	// SkipUnreadable logs and omits files that are not images instead of failing the batch
	SkipUnreadable bool

	Labels   transform.Labels
	Logger   *zap.Logger
	Reporter Reporter
}

// Collector turns file paths into dataset records
type Collector struct {
	reader    TagReader
	converter *transform.Converter
	opts      Options
	logger    *zap.Logger
}

// New creates a collector using the goexif-backed reader
func New(opts Options) *Collector {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return NewWithReader(exifread.NewReader(opts.Logger), opts)
}

// NewWithReader creates a collector with a custom tag reader
func NewWithReader(reader TagReader, opts Options) *Collector {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Labels.ExposureProgram == nil {
		opts.Labels = transform.DefaultLabels()
	}
	return &Collector{
		reader:    reader,
		converter: transform.NewConverter(opts.Labels, opts.Logger),
		opts:      opts,
		logger:    opts.Logger,
	}
}

// Collect reads every path and returns one record per readable file, in input order
func (c *Collector) Collect(ctx context.Context, paths []string) ([]dataset.Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	c.opts.Reporter.Start(len(paths))
	defer c.opts.Reporter.Done()

	results := make([]*dataset.Record, len(paths))
	var mu sync.Mutex
	var skipped []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer c.opts.Reporter.Increment()

			raw, err := c.reader.Read(path)
			if err != nil {
				if c.opts.SkipUnreadable && errors.Is(err, exifread.ErrUnreadable) {
					c.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
					mu.Lock()
					skipped = append(skipped, path)
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			rec := c.converter.Convert(raw)
			results[i] = &rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]dataset.Record, 0, len(paths)-len(skipped))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	c.logger.Info("collected exif records",
		zap.Int("files", len(paths)),
		zap.Int("records", len(records)),
		zap.Int("skipped", len(skipped)))
	return records, nil
}
