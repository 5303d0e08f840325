// Package exifread reads the fixed set of EXIF tags used by the dataset.
package exifread

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadable is returned for files that are neither a decodable image nor an EXIF/TIFF block
var ErrUnreadable = errors.New("unreadable image file")

// lensModelID is the Exif IFD tag ID of LensModel
const lensModelID = 0xA434

// tagSource is satisfied by *exif.Exif
type tagSource interface {
	Get(name exif.FieldName) (*tiff.Tag, error)
	Walk(w exif.Walker) error
}

// Reader extracts RawTags from image files
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new reader. A nil logger disables logging.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Read opens path and extracts its tags.
// A decodable image without EXIF data yields tags holding only the path and dimensions.
func (r *Reader) Read(path string) (*RawTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return r.read(path, f)
}

func (r *Reader) read(path string, rs io.ReadSeeker) (*RawTags, error) {
	raw := &RawTags{Path: path}

	cfg, format, imgErr := image.DecodeConfig(rs)
	if imgErr == nil {
		raw.ImageWidth = &cfg.Width
		raw.ImageHeight = &cfg.Height
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	var x *exif.Exif
	var exifErr error
	switch {
	case imgErr == nil && (format == "png" || format == "webp"):
		// EXIF lives in its own chunk rather than a JPEG APP1 segment
		var payload []byte
		payload, exifErr = embeddedExif(format, rs)
		if exifErr == nil {
			x, exifErr = exif.Decode(bytes.NewReader(payload))
		}
	default:
		x, exifErr = exif.Decode(rs)
	}
	if exifErr != nil && exif.IsCriticalError(exifErr) {
		x = nil
	}

	if x == nil {
		if imgErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, exifErr)
		}
		r.logger.Debug("no exif data",
			zap.String("path", path),
			zap.String("format", format),
			zap.NamedError("cause", exifErr))
		return raw, nil
	}

	if exifErr != nil {
		r.logger.Warn("partially decoded exif data",
			zap.String("path", path),
			zap.Error(exifErr))
	}

	r.readTags(x, raw)
	return raw, nil
}

// readTags copies the fixed tag set from src into raw
func (r *Reader) readTags(src tagSource, raw *RawTags) {
	t := tagReader{src: src, logger: r.logger.With(zap.String("path", raw.Path))}

	raw.DateTime = t.str(exif.DateTime)
	raw.Model = t.str(exif.Model)
	raw.Software = t.str(exif.Software)
	raw.Orientation = t.integer(exif.Orientation)

	raw.DateTimeOriginal = t.str(exif.DateTimeOriginal)
	raw.DateTimeDigitized = t.str(exif.DateTimeDigitized)
	raw.SubsecTime = t.str(exif.SubSecTime)
	raw.SubsecTimeOriginal = t.str(exif.SubSecTimeOriginal)
	raw.SubsecTimeDigitized = t.str(exif.SubSecTimeDigitized)
	raw.FNumber = t.rat(exif.FNumber)
	raw.ExposureTime = t.rat(exif.ExposureTime)
	raw.ISOSpeedRatings = t.integer(exif.ISOSpeedRatings)
	raw.FocalLength = t.rat(exif.FocalLength)
	raw.FocalLengthIn35mmFilm = t.integer(exif.FocalLengthIn35mmFilm)
	raw.ExposureProgram = t.integer(exif.ExposureProgram)
	raw.SceneCaptureType = t.integer(exif.SceneCaptureType)
	raw.LensModel = t.str(exif.FieldName("LensModel"))
	if raw.LensModel == nil {
		// Older goexif field maps store 0xA434 under an "unknown" name.
		raw.LensModel = t.strByID(lensModelID)
	}

	raw.GPSLatitude = t.dms(exif.GPSLatitude)
	raw.GPSLatitudeRef = t.str(exif.GPSLatitudeRef)
	raw.GPSLongitude = t.dms(exif.GPSLongitude)
	raw.GPSLongitudeRef = t.str(exif.GPSLongitudeRef)
}

type tagReader struct {
	src    tagSource
	logger *zap.Logger
}

func (t tagReader) get(name exif.FieldName) *tiff.Tag {
	tag, err := t.src.Get(name)
	if err != nil {
		if !exif.IsTagNotPresentError(err) {
			t.logger.Debug("failed to get tag", zap.String("tag", string(name)), zap.Error(err))
		}
		return nil
	}
	return tag
}

func (t tagReader) invalid(name exif.FieldName, err error) {
	t.logger.Debug("ignoring malformed tag", zap.String("tag", string(name)), zap.Error(err))
}

func (t tagReader) str(name exif.FieldName) *string {
	tag := t.get(name)
	if tag == nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		t.invalid(name, err)
		return nil
	}
	return cleanString(s)
}

func (t tagReader) strByID(id uint16) *string {
	var found *tiff.Tag
	_ = t.src.Walk(walkFunc(func(_ exif.FieldName, tag *tiff.Tag) error {
		if tag.Id == id && found == nil {
			found = tag
		}
		return nil
	}))
	if found == nil {
		return nil
	}
	s, err := found.StringVal()
	if err != nil {
		return nil
	}
	return cleanString(s)
}

func cleanString(s string) *string {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return nil
	}
	return &s
}

type walkFunc func(name exif.FieldName, tag *tiff.Tag) error

func (f walkFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return f(name, tag)
}

func (t tagReader) integer(name exif.FieldName) *int {
	tag := t.get(name)
	if tag == nil {
		return nil
	}
	n, err := tag.Int(0)
	if err != nil {
		t.invalid(name, err)
		return nil
	}
	return &n
}

func (t tagReader) rat(name exif.FieldName) *Rational {
	tag := t.get(name)
	if tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		t.invalid(name, err)
		return nil
	}
	return &Rational{Num: num, Den: den}
}

func (t tagReader) dms(name exif.FieldName) *[3]Rational {
	tag := t.get(name)
	if tag == nil {
		return nil
	}
	if tag.Count != 3 {
		t.invalid(name, fmt.Errorf("expected 3 components, got %d", tag.Count))
		return nil
	}
	var out [3]Rational
	for i := range out {
		num, den, err := tag.Rat2(i)
		if err != nil {
			t.invalid(name, err)
			return nil
		}
		out[i] = Rational{Num: num, Den: den}
	}
	return &out
}
