package dataset

import "time"

// Kind is the value type held by a column
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Column describes one column of the dataset
type Column struct {
	Name    string
	Kind    Kind
	Derived bool // computed from other columns rather than read from a tag
}

// Column names
const (
	ColPath                  = "path"
	ColDateTime              = "DateTime"
	ColModel                 = "Model"
	ColSoftware              = "Software"
	ColOrientation           = "Orientation"
	ColDateTimeOriginal      = "DateTimeOriginal"
	ColDateTimeDigitized     = "DateTimeDigitized"
	ColSubsecTime            = "SubsecTime"
	ColSubsecTimeOriginal    = "SubsecTimeOriginal"
	ColSubsecTimeDigitized   = "SubsecTimeDigitized"
	ColFNumber               = "FNumber"
	ColExposureTime          = "ExposureTime"
	ColISOSpeedRatings       = "ISOSpeedRatings"
	ColFocalLength           = "FocalLength"
	ColFocalLengthIn35mmFilm = "FocalLengthIn35mmFilm"
	ColExposureProgram       = "ExposureProgram"
	ColSceneCaptureType      = "SceneCaptureType"
	ColLensModel             = "LensModel"
	ColGPSLatitude           = "GPSLatitude"
	ColGPSLatitudeRef        = "GPSLatitudeRef"
	ColGPSLongitude          = "GPSLongitude"
	ColGPSLongitudeRef       = "GPSLongitudeRef"
	ColImageWidth            = "ImageWidth"
	ColImageHeight           = "ImageHeight"
	ColShutterSpeed          = "ShutterSpeed"
	ColFocalLengthCategory   = "FocalLengthCategory"
	ColExposureTimeCategory  = "ExposureTimeCategory"
	ColFNumberCategory       = "FNumberCategory"
)

// Columns is the fixed column order of every table. The order matches Record.fields.
var Columns = []Column{
	{Name: ColPath, Kind: KindString},
	{Name: ColDateTime, Kind: KindTime},
	{Name: ColModel, Kind: KindString},
	{Name: ColSoftware, Kind: KindString},
	{Name: ColOrientation, Kind: KindInt},
	{Name: ColDateTimeOriginal, Kind: KindTime},
	{Name: ColDateTimeDigitized, Kind: KindTime},
	{Name: ColSubsecTime, Kind: KindString},
	{Name: ColSubsecTimeOriginal, Kind: KindString},
	{Name: ColSubsecTimeDigitized, Kind: KindString},
	{Name: ColFNumber, Kind: KindFloat},
	{Name: ColExposureTime, Kind: KindFloat},
	{Name: ColISOSpeedRatings, Kind: KindInt},
	{Name: ColFocalLength, Kind: KindFloat},
	{Name: ColFocalLengthIn35mmFilm, Kind: KindInt},
	{Name: ColExposureProgram, Kind: KindString},
	{Name: ColSceneCaptureType, Kind: KindString},
	{Name: ColLensModel, Kind: KindString},
	{Name: ColGPSLatitude, Kind: KindFloat},
	{Name: ColGPSLatitudeRef, Kind: KindString},
	{Name: ColGPSLongitude, Kind: KindFloat},
	{Name: ColGPSLongitudeRef, Kind: KindString},
	{Name: ColImageWidth, Kind: KindInt},
	{Name: ColImageHeight, Kind: KindInt},
	{Name: ColShutterSpeed, Kind: KindString, Derived: true},
	{Name: ColFocalLengthCategory, Kind: KindString, Derived: true},
	{Name: ColExposureTimeCategory, Kind: KindString, Derived: true},
	{Name: ColFNumberCategory, Kind: KindString, Derived: true},
}

// CategoryColumns are the human-readable categorical columns summarized in reports
var CategoryColumns = []string{
	ColExposureProgram,
	ColSceneCaptureType,
	ColFocalLengthCategory,
	ColExposureTimeCategory,
	ColFNumberCategory,
}

// Record is one row of the dataset, keyed by Path.
// A nil field is a missing value.
type Record struct {
	Path string

	DateTime    *time.Time
	Model       *string
	Software    *string
	Orientation *int

	DateTimeOriginal      *time.Time
	DateTimeDigitized     *time.Time
	SubsecTime            *string
	SubsecTimeOriginal    *string
	SubsecTimeDigitized   *string
	FNumber               *float64
	ExposureTime          *float64
	ISOSpeedRatings       *int
	FocalLength           *float64
	FocalLengthIn35mmFilm *int
	ExposureProgram       *string
	SceneCaptureType      *string
	LensModel             *string

	GPSLatitude     *float64
	GPSLatitudeRef  *string
	GPSLongitude    *float64
	GPSLongitudeRef *string

	ImageWidth  *int
	ImageHeight *int

	ShutterSpeed         *string
	FocalLengthCategory  *string
	ExposureTimeCategory *string
	FNumberCategory      *string
}

// Table is an ordered collection of records
type Table struct {
	Records []Record
}
