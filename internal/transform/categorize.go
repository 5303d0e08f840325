package transform

import "github.com/tordrt/exiftable/internal/dataset"

// Bucket boundaries. A value falls in the first bucket whose upper bound it is below.
var (
	focalLengthBounds = [4]int{24, 35, 100, 300} // mm, 35mm film equivalent
	fNumberBounds     = [3]float64{4, 8, 13}
)

// shortExposureLimit is the longest exposure still counted as 1/1000s or faster
const shortExposureLimit = 1.0 / 1000

// FocalLengthCategory buckets a 35mm-equivalent focal length
func FocalLengthCategory(mm *int, labels Labels) *string {
	if mm == nil {
		return nil
	}
	for i, bound := range focalLengthBounds {
		if *mm < bound {
			return dataset.String(labels.FocalLength[i])
		}
	}
	return dataset.String(labels.FocalLength[len(focalLengthBounds)])
}

// ExposureTimeCategory buckets an exposure time in seconds
func ExposureTimeCategory(seconds *float64, labels Labels) *string {
	if seconds == nil {
		return nil
	}
	switch {
	case *seconds <= shortExposureLimit:
		return dataset.String(labels.ExposureTime[0])
	case *seconds < 1:
		return dataset.String(labels.ExposureTime[1])
	default:
		return dataset.String(labels.ExposureTime[2])
	}
}

// FNumberCategory buckets an aperture f-number
func FNumberCategory(f *float64, labels Labels) *string {
	if f == nil {
		return nil
	}
	for i, bound := range fNumberBounds {
		if *f < bound {
			return dataset.String(labels.FNumber[i])
		}
	}
	return dataset.String(labels.FNumber[len(fNumberBounds)])
}

// AddCategories fills the derived category columns of rec
func AddCategories(rec *dataset.Record, labels Labels) {
	rec.FocalLengthCategory = FocalLengthCategory(rec.FocalLengthIn35mmFilm, labels)
	rec.ExposureTimeCategory = ExposureTimeCategory(rec.ExposureTime, labels)
	rec.FNumberCategory = FNumberCategory(rec.FNumber, labels)
}
