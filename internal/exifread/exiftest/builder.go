// Package exiftest builds small JPEG, PNG, WebP and TIFF files carrying EXIF data for tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"sort"
)

// IFD selects which directory a tag is written to
type IFD int

const (
	IFD0 IFD = iota
	ExifIFD
	GPSIFD
)

// Tag IDs used by the fixtures
const (
	TagModel       uint16 = 0x0110
	TagOrientation uint16 = 0x0112
	TagSoftware    uint16 = 0x0131
	TagDateTime    uint16 = 0x0132
	tagExifPointer uint16 = 0x8769
	TagGPSPointer  uint16 = 0x8825

	TagExposureTime          uint16 = 0x829A
	TagFNumber               uint16 = 0x829D
	TagExposureProgram       uint16 = 0x8822
	TagISOSpeedRatings       uint16 = 0x8827
	TagDateTimeOriginal      uint16 = 0x9003
	TagDateTimeDigitized     uint16 = 0x9004
	TagFocalLength           uint16 = 0x920A
	TagSubsecTime            uint16 = 0x9290
	TagSubsecTimeOriginal    uint16 = 0x9291
	TagSubsecTimeDigitized   uint16 = 0x9292
	TagFocalLengthIn35mmFilm uint16 = 0xA405
	TagSceneCaptureType      uint16 = 0xA406
	TagLensModel             uint16 = 0xA434

	TagGPSLatitudeRef  uint16 = 0x0001
	TagGPSLatitude     uint16 = 0x0002
	TagGPSLongitudeRef uint16 = 0x0003
	TagGPSLongitude    uint16 = 0x0004
)

const (
	typeASCII    uint16 = 2
	typeShort    uint16 = 3
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// Builder accumulates tags and lays them out as a little-endian TIFF block
type Builder struct {
	dirs map[IFD][]entry
}

// New creates an empty builder
func New() *Builder {
	return &Builder{dirs: make(map[IFD][]entry)}
}

func (b *Builder) add(ifd IFD, e entry) *Builder {
	b.dirs[ifd] = append(b.dirs[ifd], e)
	return b
}

// ASCII adds a NUL-terminated string tag
func (b *Builder) ASCII(ifd IFD, tag uint16, s string) *Builder {
	data := append([]byte(s), 0)
	return b.add(ifd, entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data})
}

// Short adds a single SHORT tag
func (b *Builder) Short(ifd IFD, tag uint16, v uint16) *Builder {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, v)
	return b.add(ifd, entry{tag: tag, typ: typeShort, count: 1, data: data})
}

// Long adds a single LONG tag
func (b *Builder) Long(ifd IFD, tag uint16, v uint32) *Builder {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return b.add(ifd, entry{tag: tag, typ: typeLong, count: 1, data: data})
}

// Rational adds a single RATIONAL tag
func (b *Builder) Rational(ifd IFD, tag uint16, num, den uint32) *Builder {
	return b.Rationals(ifd, tag, [2]uint32{num, den})
}

// Rationals adds a multi-valued RATIONAL tag
func (b *Builder) Rationals(ifd IFD, tag uint16, vals ...[2]uint32) *Builder {
	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[8*i:], v[0])
		binary.LittleEndian.PutUint32(data[8*i+4:], v[1])
	}
	return b.add(ifd, entry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: data})
}

func ifdSize(entries []entry) int {
	size := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			size += len(e.data) + len(e.data)%2
		}
	}
	return size
}

// TIFF returns the tags laid out as a TIFF block (header included)
func (b *Builder) TIFF() []byte {
	ifd0 := append([]entry(nil), b.dirs[IFD0]...)
	exifDir := b.dirs[ExifIFD]
	gpsDir := b.dirs[GPSIFD]

	// Pointer values are patched once offsets are known; their size is fixed.
	if len(exifDir) > 0 {
		ifd0 = append(ifd0, entry{tag: tagExifPointer, typ: typeLong, count: 1, data: make([]byte, 4)})
	}
	if len(gpsDir) > 0 {
		ifd0 = append(ifd0, entry{tag: TagGPSPointer, typ: typeLong, count: 1, data: make([]byte, 4)})
	}

	ifd0Offset := 8
	exifOffset := ifd0Offset + ifdSize(ifd0)
	gpsOffset := exifOffset
	if len(exifDir) > 0 {
		gpsOffset += ifdSize(exifDir)
	}

	for i := range ifd0 {
		switch ifd0[i].tag {
		case tagExifPointer:
			if len(exifDir) > 0 {
				binary.LittleEndian.PutUint32(ifd0[i].data, uint32(exifOffset))
			}
		case TagGPSPointer:
			// A pointer added by hand with no GPS tags keeps its value
			if len(gpsDir) > 0 {
				binary.LittleEndian.PutUint32(ifd0[i].data, uint32(gpsOffset))
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(42))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(ifd0Offset))

	writeIFD(&buf, ifd0, ifd0Offset)
	if len(exifDir) > 0 {
		writeIFD(&buf, exifDir, exifOffset)
	}
	if len(gpsDir) > 0 {
		writeIFD(&buf, gpsDir, gpsOffset)
	}
	return buf.Bytes()
}

func writeIFD(buf *bytes.Buffer, entries []entry, offset int) {
	sorted := append([]entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	dataOffset := offset + 2 + 12*len(sorted) + 4
	var data bytes.Buffer

	_ = binary.Write(buf, binary.LittleEndian, uint16(len(sorted)))
	for _, e := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, e.tag)
		_ = binary.Write(buf, binary.LittleEndian, e.typ)
		_ = binary.Write(buf, binary.LittleEndian, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			buf.Write(inline)
			continue
		}
		_ = binary.Write(buf, binary.LittleEndian, uint32(dataOffset+data.Len()))
		data.Write(e.data)
		if len(e.data)%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(data.Bytes())
}

// JPEG encodes a w×h gray image and inserts the EXIF block as an APP1 segment
func (b *Builder) JPEG(w, h int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	payload := append([]byte("Exif\x00\x00"), b.TIFF()...)
	if len(payload)+2 > 0xFFFF {
		return nil, fmt.Errorf("exif block too large: %d bytes", len(payload))
	}

	raw := encoded.Bytes()
	var out bytes.Buffer
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(raw[2:])
	return out.Bytes(), nil
}

// WriteJPEG writes the JPEG fixture to path
func (b *Builder) WriteJPEG(path string, w, h int) error {
	data, err := b.JPEG(w, h)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PNG encodes a w×h gray image and inserts the EXIF block as an eXIf chunk after IHDR
func (b *Builder) PNG(w, h int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, w, h))

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	// signature (8) + IHDR length, type, data (13) and CRC
	const afterIHDR = 8 + 4 + 4 + 13 + 4
	raw := encoded.Bytes()

	var out bytes.Buffer
	out.Write(raw[:afterIHDR])
	writePNGChunk(&out, "eXIf", b.TIFF())
	out.Write(raw[afterIHDR:])
	return out.Bytes(), nil
}

func writePNGChunk(buf *bytes.Buffer, kind string, data []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte(kind))
	_, _ = crc.Write(data)
	buf.WriteString(kind)
	buf.Write(data)
	_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
}

// WebP lays out an extended RIFF WEBP file holding a VP8X header for a w×h canvas
// and the EXIF block. It carries no bitstream, so only its configuration decodes.
func (b *Builder) WebP(w, h int) []byte {
	vp8x := make([]byte, 10)
	vp8x[0] = 1 << 3 // EXIF metadata present
	putUint24(vp8x[4:], uint32(w-1))
	putUint24(vp8x[7:], uint32(h-1))

	var chunks bytes.Buffer
	writeRIFFChunk(&chunks, "VP8X", vp8x)
	writeRIFFChunk(&chunks, "EXIF", b.TIFF())

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(4+chunks.Len()))
	out.WriteString("WEBP")
	out.Write(chunks.Bytes())
	return out.Bytes()
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func writeRIFFChunk(buf *bytes.Buffer, id string, data []byte) {
	buf.WriteString(id)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}

// WritePlainJPEG writes a JPEG without any EXIF segment
func WritePlainJPEG(path string, w, h int) error {
	img := image.NewGray(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, nil); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Camera returns a builder populated like a typical camera JPEG:
// 1/250s at f/2.8, ISO 400, 23mm lens (35mm in 35mm film terms), aperture priority,
// taken in Tokyo (35°40'52.45"N 139°46'0"E).
func Camera() *Builder {
	return New().
		ASCII(IFD0, TagModel, "X100V").
		ASCII(IFD0, TagSoftware, "Digital Camera X100V Ver1.00").
		Short(IFD0, TagOrientation, 1).
		ASCII(IFD0, TagDateTime, "2023:05:01 12:34:56").
		Rational(ExifIFD, TagExposureTime, 1, 250).
		Rational(ExifIFD, TagFNumber, 28, 10).
		Short(ExifIFD, TagExposureProgram, 3).
		Short(ExifIFD, TagISOSpeedRatings, 400).
		ASCII(ExifIFD, TagDateTimeOriginal, "2023:05:01 12:34:56").
		ASCII(ExifIFD, TagDateTimeDigitized, "2023:05:01 12:34:56").
		ASCII(ExifIFD, TagSubsecTime, "123").
		ASCII(ExifIFD, TagSubsecTimeOriginal, "5").
		Rational(ExifIFD, TagFocalLength, 23, 1).
		Short(ExifIFD, TagFocalLengthIn35mmFilm, 35).
		Short(ExifIFD, TagSceneCaptureType, 0).
		ASCII(ExifIFD, TagLensModel, "FUJINON 23mm F2").
		ASCII(GPSIFD, TagGPSLatitudeRef, "N").
		Rationals(GPSIFD, TagGPSLatitude, [2]uint32{35, 1}, [2]uint32{40, 1}, [2]uint32{5245, 100}).
		ASCII(GPSIFD, TagGPSLongitudeRef, "E").
		Rationals(GPSIFD, TagGPSLongitude, [2]uint32{139, 1}, [2]uint32{46, 1}, [2]uint32{0, 1})
}
