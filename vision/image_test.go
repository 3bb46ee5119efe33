// MODUL: image_test
// ZWECK: Tests fuer Frame-Lade- und Skalierungsfunktionen
// INPUT: Synthetische Bilder und PNG-Bytes
// OUTPUT: Testresultate
// NEBENEFFEKTE: Schreibt temporaere Dateien
// ABHAENGIGKEITEN: testing, image, image/png, bytes
// HINWEISE: Testet Dekodierung, Resize und Verzeichnis-Laden

package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createPNGBytes erzeugt PNG-Bytes aus einem Testbild
func createPNGBytes(w, h int, c color.Color) []byte {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rgba.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, rgba)
	return buf.Bytes()
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame(createPNGBytes(100, 50, color.RGBA{255, 0, 0, 255}))
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}

	if f.Width != 100 || f.Height != 50 {
		t.Errorf("Groesse = %dx%d, erwartet 100x50", f.Width, f.Height)
	}
	if f.Format != FormatPNG {
		t.Errorf("Format = %v, erwartet %v", f.Format, FormatPNG)
	}
}

func TestDecodeFrameInvalid(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x00, 0x00, 0x00, 0x00}); err == nil {
		t.Error("Erwartet Fehler bei ungueltigem Format")
	}
}

func TestReadFrame(t *testing.T) {
	f, err := ReadFrame(bytes.NewReader(createPNGBytes(80, 60, color.White)))
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	if f.Width != 80 || f.Height != 60 {
		t.Errorf("Groesse = %dx%d, erwartet 80x60", f.Width, f.Height)
	}
}

func TestResize(t *testing.T) {
	f, _ := DecodeFrame(createPNGBytes(100, 100, color.White))

	resized, err := Resize(f, 32, 32)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if resized.Width != 32 || resized.Height != 32 {
		t.Errorf("Groesse = %dx%d, erwartet 32x32", resized.Width, resized.Height)
	}
	if px := resized.Image.RGBAAt(10, 10); px.R != 255 || px.A != 255 {
		t.Errorf("Pixel = %v, erwartet weiss", px)
	}

	if _, err := Resize(f, 0, 50); err == nil {
		t.Error("Erwartet Fehler bei Breite 0")
	}
	if _, err := Resize(f, 50, -1); err == nil {
		t.Error("Erwartet Fehler bei negativer Hoehe")
	}
}

func TestLoadFrames(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("frame_001.png", createPNGBytes(64, 48, color.Black))
	write("frame_000.png", createPNGBytes(32, 32, color.White))
	write("notes.txt", []byte("kein bild"))

	frames, err := LoadFrames(dir, 32)
	if err != nil {
		t.Fatalf("LoadFrames() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("%d Frames, erwartet 2", len(frames))
	}

	for i, f := range frames {
		if f.Width != 32 || f.Height != 32 {
			t.Errorf("Frame %d: Groesse = %dx%d, erwartet 32x32", i, f.Width, f.Height)
		}
	}

	// sortiert nach Dateiname: frame_000 (weiss) zuerst
	if px := frames[0].Image.RGBAAt(0, 0); px.R != 255 {
		t.Errorf("erster Frame sollte weiss sein, Pixel = %v", px)
	}
	if px := frames[1].Image.RGBAAt(5, 5); px.R != 0 {
		t.Errorf("zweiter Frame sollte schwarz sein, Pixel = %v", px)
	}
}

func TestLoadFramesEmpty(t *testing.T) {
	if _, err := LoadFrames(t.TempDir(), 32); err == nil {
		t.Error("Erwartet Fehler bei leerem Verzeichnis")
	}
	if _, err := LoadFrames(filepath.Join(t.TempDir(), "fehlt"), 32); err == nil {
		t.Error("Erwartet Fehler bei fehlendem Verzeichnis")
	}
}
