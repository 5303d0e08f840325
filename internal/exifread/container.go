package exifread

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

// errNoExifChunk is reported when a PNG or WebP file carries no EXIF chunk
var errNoExifChunk = errors.New("no exif chunk")

const (
	pngSignature = "\x89PNG\r\n\x1a\n"

	// eXIf payloads larger than this are treated as corrupt
	maxExifChunk = 16 << 20
)

var fccEXIF = riff.FourCC{'E', 'X', 'I', 'F'}

// embeddedExif returns the EXIF payload stored in a PNG or WebP container.
// The payload is a TIFF block, optionally prefixed with "Exif\x00\x00".
func embeddedExif(format string, r io.Reader) ([]byte, error) {
	switch format {
	case "png":
		return pngExif(r)
	case "webp":
		return webpExif(r)
	default:
		return nil, fmt.Errorf("no exif container for %s", format)
	}
}

// pngExif walks the chunk list up to IEND looking for eXIf
func pngExif(r io.Reader) ([]byte, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("failed to read png signature: %w", err)
	}
	if string(sig) != pngSignature {
		return nil, errors.New("invalid png signature")
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errNoExifChunk
			}
			return nil, fmt.Errorf("failed to read png chunk: %w", err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		kind := string(header[4:])

		switch kind {
		case "eXIf":
			if length > maxExifChunk {
				return nil, fmt.Errorf("eXIf chunk too large: %d bytes", length)
			}
			payload := make([]byte, length)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, fmt.Errorf("failed to read eXIf chunk: %w", err)
			}
			return payload, nil
		case "IEND":
			return nil, errNoExifChunk
		}

		// Skip the data and its CRC
		if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
			return nil, fmt.Errorf("failed to skip %s chunk: %w", kind, err)
		}
	}
}

// webpExif looks for the EXIF chunk of a RIFF WEBP file
func webpExif(r io.Reader) ([]byte, error) {
	formType, chunks, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read riff header: %w", err)
	}
	if formType != (riff.FourCC{'W', 'E', 'B', 'P'}) {
		return nil, errors.New("not a webp file")
	}

	for {
		id, length, data, err := chunks.Next()
		if errors.Is(err, io.EOF) {
			return nil, errNoExifChunk
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read webp chunk: %w", err)
		}
		if id != fccEXIF {
			continue
		}
		if length > maxExifChunk {
			return nil, fmt.Errorf("EXIF chunk too large: %d bytes", length)
		}
		var payload bytes.Buffer
		if _, err := io.Copy(&payload, data); err != nil {
			return nil, fmt.Errorf("failed to read EXIF chunk: %w", err)
		}
		return payload.Bytes(), nil
	}
}
