package exifread

// Rational is an unsigned EXIF rational value
type Rational struct {
	Num int64
	Den int64
}

// RawTags holds the tags read from one file before any normalization.
// A nil field means the tag was absent or unusable.
type RawTags struct {
	Path string

	// 0th IFD
	DateTime    *string
	Model       *string
	Software    *string
	Orientation *int

	// Exif IFD
	DateTimeOriginal      *string
	DateTimeDigitized     *string
	SubsecTime            *string
	SubsecTimeOriginal    *string
	SubsecTimeDigitized   *string
	FNumber               *Rational
	ExposureTime          *Rational
	ISOSpeedRatings       *int
	FocalLength           *Rational
	FocalLengthIn35mmFilm *int
	ExposureProgram       *int
	SceneCaptureType      *int
	LensModel             *string

	// GPS IFD, degrees/minutes/seconds
	GPSLatitude     *[3]Rational
	GPSLatitudeRef  *string
	GPSLongitude    *[3]Rational
	GPSLongitudeRef *string

	// From the image header rather than EXIF
	ImageWidth  *int
	ImageHeight *int
}
