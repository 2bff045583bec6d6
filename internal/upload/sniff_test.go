package upload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want ContentType
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, TypePNG},
		{"gif87a", []byte("GIF87a trailing"), TypeGIF},
		{"gif89a", []byte("GIF89a trailing"), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWebP},
		{"pdf", []byte("%PDF-1.7\n"), TypePDF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect(tc.data)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	_, err := Detect([]byte("<script>alert(1)</script>"))
	require.ErrorIs(t, err, ErrUnknownContent)

	_, err = Detect(nil)
	require.ErrorIs(t, err, ErrUnknownContent)
}

func TestValidate(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	got, err := Validate("photo.jpg", jpeg)
	require.NoError(t, err)
	require.Equal(t, TypeJPEG, got)

	got, err = Validate("PHOTO.JPEG", jpeg)
	require.NoError(t, err)
	require.Equal(t, TypeJPEG, got)

	// png bytes hiding behind a jpg extension
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	_, err = Validate("photo.jpg", png)
	require.ErrorIs(t, err, ErrContentMismatch)

	_, err = Validate("noextension", jpeg)
	require.ErrorIs(t, err, ErrContentMismatch)

	_, err = Validate("archive.zip", jpeg)
	require.ErrorIs(t, err, ErrContentMismatch)
}
