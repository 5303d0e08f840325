// Package transform turns raw EXIF tags into typed dataset records.
package transform

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tordrt/exiftable/internal/dataset"
	"github.com/tordrt/exiftable/internal/exifread"
)

// exifTimeLayout is the EXIF DateTime format, "YYYY:MM:DD HH:MM:SS"
const exifTimeLayout = "2006:01:02 15:04:05"

const maxSubsecDigits = 9

// Converter normalizes RawTags into records
type Converter struct {
	labels Labels
	logger *zap.Logger
}

// NewConverter creates a converter writing the given labels. A nil logger disables logging.
func NewConverter(labels Labels, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{labels: labels, logger: logger}
}

// Convert builds a complete record, derived columns included
func (c *Converter) Convert(raw *exifread.RawTags) dataset.Record {
	log := c.logger.With(zap.String("path", raw.Path))

	rec := dataset.Record{
		Path:                raw.Path,
		Model:               raw.Model,
		Software:            raw.Software,
		Orientation:         raw.Orientation,
		SubsecTime:          raw.SubsecTime,
		SubsecTimeOriginal:  raw.SubsecTimeOriginal,
		SubsecTimeDigitized: raw.SubsecTimeDigitized,
		ISOSpeedRatings:     raw.ISOSpeedRatings,
		LensModel:           raw.LensModel,
		GPSLatitudeRef:      raw.GPSLatitudeRef,
		GPSLongitudeRef:     raw.GPSLongitudeRef,
		ImageWidth:          raw.ImageWidth,
		ImageHeight:         raw.ImageHeight,
	}

	rec.DateTime = c.timestamp(log, dataset.ColDateTime, raw.DateTime, raw.SubsecTime)
	rec.DateTimeOriginal = c.timestamp(log, dataset.ColDateTimeOriginal, raw.DateTimeOriginal, raw.SubsecTimeOriginal)
	rec.DateTimeDigitized = c.timestamp(log, dataset.ColDateTimeDigitized, raw.DateTimeDigitized, raw.SubsecTimeDigitized)

	rec.FocalLength = nonZeroFloat(RationalToFloat(raw.FocalLength))
	rec.FocalLengthIn35mmFilm = nonZeroInt(raw.FocalLengthIn35mmFilm)
	rec.FNumber = nonZeroFloat(RationalToFloat(raw.FNumber))
	rec.ShutterSpeed = ShutterSpeed(raw.ExposureTime)
	rec.ExposureTime = nonZeroFloat(RationalToFloat(raw.ExposureTime))

	rec.ExposureProgram = modeLabel(c.labels.ExposureProgram, raw.ExposureProgram)
	rec.SceneCaptureType = modeLabel(c.labels.SceneCaptureType, raw.SceneCaptureType)

	rec.GPSLatitude = nonZeroFloat(signedDegrees(DMSToDegrees(raw.GPSLatitude), raw.GPSLatitudeRef, "N", "S"))
	rec.GPSLongitude = nonZeroFloat(signedDegrees(DMSToDegrees(raw.GPSLongitude), raw.GPSLongitudeRef, "E", "W"))

	AddCategories(&rec, c.labels)
	return rec
}

func (c *Converter) timestamp(log *zap.Logger, column string, date, subsec *string) *time.Time {
	t, err := ParseTimestamp(date, subsec)
	if err != nil {
		log.Debug("dropping unparseable timestamp", zap.String("column", column), zap.Error(err))
		return nil
	}
	return t
}

// ParseTimestamp combines an EXIF date string with its sub-second tag.
// The sub-second digits are a decimal fraction of a second ("5" is 0.5s).
// A missing date yields nil even when a sub-second value is present.
func ParseTimestamp(date, subsec *string) (*time.Time, error) {
	if date == nil {
		return nil, nil
	}
	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(*date), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *date, err)
	}

	if subsec != nil {
		digits := strings.TrimSpace(*subsec)
		if digits != "" {
			nanos, err := fractionToNanos(digits)
			if err != nil {
				return nil, err
			}
			t = t.Add(time.Duration(nanos))
		}
	}
	return &t, nil
}

func fractionToNanos(digits string) (int64, error) {
	if len(digits) > maxSubsecDigits {
		return 0, fmt.Errorf("invalid subsec %q: more than %d digits", digits, maxSubsecDigits)
	}
	var nanos int64
	for i := 0; i < maxSubsecDigits; i++ {
		nanos *= 10
		if i < len(digits) {
			ch := digits[i]
			if ch < '0' || ch > '9' {
				return 0, fmt.Errorf("invalid subsec %q: non-digit character", digits)
			}
			nanos += int64(ch - '0')
		}
	}
	return nanos, nil
}

// RationalToFloat converts a rational, treating a zero denominator as missing
func RationalToFloat(r *exifread.Rational) *float64 {
	if r == nil || r.Den == 0 {
		return nil
	}
	return dataset.Float(float64(r.Num) / float64(r.Den))
}

// ShutterSpeed renders an exposure time as a reduced fraction, "1/250" or "2"
func ShutterSpeed(r *exifread.Rational) *string {
	if r == nil || r.Den == 0 {
		return nil
	}
	return dataset.String(big.NewRat(r.Num, r.Den).RatString())
}

// DMSToDegrees converts degrees/minutes/seconds to decimal degrees
func DMSToDegrees(dms *[3]exifread.Rational) *float64 {
	if dms == nil {
		return nil
	}
	var parts [3]float64
	for i, r := range dms {
		f := RationalToFloat(&r)
		if f == nil {
			return nil
		}
		parts[i] = *f
	}
	return dataset.Float(parts[0] + parts[1]/60 + parts[2]/3600)
}

// signedDegrees applies the hemisphere reference; any other reference makes the value missing
func signedDegrees(deg *float64, ref *string, positive, negative string) *float64 {
	if deg == nil || ref == nil {
		return nil
	}
	switch strings.TrimSpace(*ref) {
	case positive:
		return deg
	case negative:
		return dataset.Float(-*deg)
	default:
		return nil
	}
}

func modeLabel(labels map[int]string, code *int) *string {
	if code == nil {
		return nil
	}
	label, ok := labels[*code]
	if !ok {
		return nil
	}
	return dataset.String(label)
}

// Cameras write 0 when a value is unknown
func nonZeroFloat(f *float64) *float64 {
	if f == nil || *f == 0 {
		return nil
	}
	return f
}

func nonZeroInt(n *int) *int {
	if n == nil || *n == 0 {
		return nil
	}
	return n
}
