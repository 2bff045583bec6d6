package upload

import (
	"bytes"
	"errors"
	"strings"
)

// ContentType is a detected upload format.
type ContentType string

const (
	TypeJPEG ContentType = "image/jpeg"
	TypePNG  ContentType = "image/png"
	TypeGIF  ContentType = "image/gif"
	TypeWebP ContentType = "image/webp"
	TypePDF  ContentType = "application/pdf"
)

var (
	ErrUnknownContent  = errors.New("upload: unrecognized content")
	ErrContentMismatch = errors.New("upload: content does not match extension")
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Detect sniffs the leading bytes of an upload and returns its actual
// content type, regardless of the claimed filename.
func Detect(data []byte) (ContentType, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return TypeJPEG, nil
	case len(data) >= 8 && bytes.Equal(data[:8], pngMagic):
		return TypePNG, nil
	case len(data) >= 6 && (bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))):
		return TypeGIF, nil
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return TypeWebP, nil
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return TypePDF, nil
	default:
		return "", ErrUnknownContent
	}
}

var extTypes = map[string]ContentType{
	"jpg":  TypeJPEG,
	"jpeg": TypeJPEG,
	"png":  TypePNG,
	"gif":  TypeGIF,
	"webp": TypeWebP,
	"pdf":  TypePDF,
}

// Validate sniffs data and checks the result against the filename's
// extension. A file whose bytes and extension disagree is rejected
// even when both formats are individually allowed.
func Validate(filename string, data []byte) (ContentType, error) {
	detected, err := Detect(data)
	if err != nil {
		return "", err
	}

	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return "", ErrContentMismatch
	}
	ext := strings.ToLower(filename[idx+1:])
	expected, ok := extTypes[ext]
	if !ok || expected != detected {
		return "", ErrContentMismatch
	}
	return detected, nil
}
