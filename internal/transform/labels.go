package transform

import "fmt"

// Locale names accepted by LabelsFor
const (
	LocaleJA = "ja"
	LocaleEN = "en"
)

// Labels holds the human-readable values written into categorical columns
type Labels struct {
	ExposureProgram  map[int]string
	SceneCaptureType map[int]string

	// Bucket labels, ordered from the lowest bucket to the highest
	FocalLength  [5]string
	ExposureTime [3]string
	FNumber      [4]string
}

var japaneseLabels = Labels{
	ExposureProgram: map[int]string{
		0: "未定義",
		1: "マニュアル",
		2: "ノーマルプログラム",
		3: "絞り優先",
		4: "シャッター優先",
		5: "creativeプログラム", // biased toward depth of field
		6: "actionプログラム",   // biased toward fast shutter speed
		7: "ポートレイトモード",     // close-up, background out of focus
		8: "ランドスケープモード",    // background in focus
	},
	SceneCaptureType: map[int]string{
		0: "標準",
		1: "風景",
		2: "人物",
		3: "夜景",
	},
	FocalLength: [5]string{
		"超広角(～23mm)",
		"広角(24～34mm)",
		"標準(35～99mm)",
		"望遠(100～299mm)",
		"超望遠(300～mm)",
	},
	ExposureTime: [3]string{
		"～1/1000sec",
		"1/800～1/10sec",
		"1/8～sec",
	},
	FNumber: [4]string{
		"～F3.5",
		"F4～F7.1",
		"F8～F11",
		"F13～",
	},
}

var englishLabels = Labels{
	ExposureProgram: map[int]string{
		0: "Not defined",
		1: "Manual",
		2: "Normal program",
		3: "Aperture priority",
		4: "Shutter priority",
		5: "Creative program",
		6: "Action program",
		7: "Portrait mode",
		8: "Landscape mode",
	},
	SceneCaptureType: map[int]string{
		0: "Standard",
		1: "Landscape",
		2: "Portrait",
		3: "Night scene",
	},
	FocalLength: [5]string{
		"Ultra wide (-23mm)",
		"Wide (24-34mm)",
		"Standard (35-99mm)",
		"Telephoto (100-299mm)",
		"Super telephoto (300mm-)",
	},
	ExposureTime: [3]string{
		"-1/1000sec",
		"1/800-1/10sec",
		"1/8-sec",
	},
	FNumber: [4]string{
		"-F3.5",
		"F4-F7.1",
		"F8-F11",
		"F13-",
	},
}

// LabelsFor returns the label set of a locale. An empty locale selects Japanese.
func LabelsFor(locale string) (Labels, error) {
	switch locale {
	case "", LocaleJA:
		return japaneseLabels, nil
	case LocaleEN:
		return englishLabels, nil
	default:
		return Labels{}, fmt.Errorf("unsupported locale: %s (must be 'ja' or 'en')", locale)
	}
}

// DefaultLabels returns the Japanese label set
func DefaultLabels() Labels {
	return japaneseLabels
}
