// MODUL: formats_test
// ZWECK: Tests fuer Format-Erkennung
// INPUT: Test-Bytes mit verschiedenen Signaturen, Dateinamen
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing
// HINWEISE: Testet Magic-Byte- und Endungs-Erkennung

package vision

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected ImageFormat
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, FormatJPEG},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, FormatPNG},
		{"WebP", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP},
		{"RIFF ohne WEBP", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatUnknown},
		{"zu kurz", []byte{0xFF}, FormatUnknown},
		{"leer", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.expected {
				t.Errorf("DetectFormat() = %v, erwartet %v", got, tt.expected)
			}
		})
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := map[string]ImageFormat{
		"a.jpg":      FormatJPEG,
		"b.JPEG":     FormatJPEG,
		"dir/c.png":  FormatPNG,
		"d.webp":     FormatWebP,
		"e.txt":      FormatUnknown,
		"ohne_punkt": FormatUnknown,
	}

	for name, want := range tests {
		if got := FormatFromExtension(name); got != want {
			t.Errorf("FormatFromExtension(%q) = %v, erwartet %v", name, got, want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []ImageFormat{FormatJPEG, FormatPNG, FormatWebP} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%v) = %v", f, err)
		}
	}

	for _, f := range []ImageFormat{FormatUnknown, FormatRaw} {
		if err := ValidateFormat(f); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ValidateFormat(%v) = %v, erwartet ErrUnknownFormat", f, err)
		}
	}
}
