// MODUL: image
// ZWECK: Frame-Lade- und Skalierungsfunktionen fuer die Backbone-Eingabe
// INPUT: Dateipfad, Verzeichnis, Bytes oder io.Reader
// OUTPUT: Frame Struktur mit dekodiertem RGBA-Bild
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei LoadFrame/LoadFrames
// ABHAENGIGKEITEN: golang.org/x/image/draw (extern), golang.org/x/image/webp, image/jpeg, image/png
// HINWEISE: Frames eines Verzeichnisses werden nach Dateiname sortiert und quadratisch skaliert

package vision

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Frame ist ein einzelnes dekodiertes Bild einer Sequenz
type Frame struct {
	Image  *image.RGBA
	Width  int
	Height int
	Format ImageFormat
}

// LoadFrame laedt einen Frame von einem Dateipfad
func LoadFrame(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datei lesen fehlgeschlagen: %w", err)
	}
	return DecodeFrame(data)
}

// DecodeFrame dekodiert einen Frame aus Byte-Daten
func DecodeFrame(data []byte) (*Frame, error) {
	format := DetectFormat(data)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bild dekodieren fehlgeschlagen: %w", err)
	}

	return newFrame(toRGBA(img), format), nil
}

// ReadFrame dekodiert einen Frame aus einem io.Reader
func ReadFrame(r io.Reader) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("daten lesen fehlgeschlagen: %w", err)
	}
	return DecodeFrame(data)
}

// LoadFrames laedt alle Bilder eines Verzeichnisses als Sequenz.
// Dateien ohne bekannte Bild-Endung werden uebersprungen.
func LoadFrames(dir string, resolution int) ([]*Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("verzeichnis lesen fehlgeschlagen: %w", err)
	}

	var frames []*Frame
	for _, e := range entries {
		if e.IsDir() || FormatFromExtension(e.Name()) == FormatUnknown {
			continue
		}

		f, err := LoadFrame(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}

		if f.Width != resolution || f.Height != resolution {
			if f, err = Resize(f, resolution, resolution); err != nil {
				return nil, err
			}
		}
		frames = append(frames, f)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("keine bilder in %s", dir)
	}

	return frames, nil
}

// Resize skaliert einen Frame bilinear auf die angegebene Groesse
func Resize(f *Frame, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ungueltige Groesse: %dx%d", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), f.Image, f.Image.Bounds(), draw.Src, nil)

	return newFrame(dst, f.Format), nil
}

func newFrame(img *image.RGBA, format ImageFormat) *Frame {
	b := img.Bounds()
	return &Frame{Image: img, Width: b.Dx(), Height: b.Dy(), Format: format}
}

// toRGBA konvertiert ein beliebiges image.Image zu *image.RGBA
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}
