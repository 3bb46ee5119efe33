// MODUL: frames
// ZWECK: Synthetische Frame-Sequenzen mit lokal begrenzter Bewegung
// INPUT: Anzahl Frames, Aufloesung
// OUTPUT: []*Frame
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: math/rand/v2
// HINWEISE: Rauschen im Bereich [40, 80) mit festem Seed, helles Quadrat (200)
//           wandert 20 Pixel pro Frame nach unten (Werte bei 224 Pixel Aufloesung)

package vision

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
)

const (
	// referenceResolution ist die Aufloesung, auf die sich die Quadrat-Geometrie bezieht
	referenceResolution = 224

	noiseLow   = 40
	noiseHigh  = 80
	squareFill = 200
)

// SyntheticFrames erzeugt n Frames gleicher Hintergrund-Textur mit einem
// wandernden Quadrat, so dass nur einige Patches pro Frame dynamisch sind.
func SyntheticFrames(n, resolution int) []*Frame {
	if n <= 0 || resolution <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(0, 0))
	base := image.NewRGBA(image.Rect(0, 0, resolution, resolution))
	for i := 0; i < len(base.Pix); i += 4 {
		base.Pix[i] = uint8(noiseLow + rng.IntN(noiseHigh-noiseLow))
		base.Pix[i+1] = uint8(noiseLow + rng.IntN(noiseHigh-noiseLow))
		base.Pix[i+2] = uint8(noiseLow + rng.IntN(noiseHigh-noiseLow))
		base.Pix[i+3] = 0xff
	}

	scale := func(v int) int {
		return min(resolution, int(math.Round(float64(v*resolution)/referenceResolution)))
	}

	frames := make([]*Frame, n)
	for idx := range frames {
		img := image.NewRGBA(base.Rect)
		copy(img.Pix, base.Pix)

		top := scale(40 + 20*idx)
		square := image.Rect(scale(120), top, scale(160), scale(40+20*idx+40))
		fill := color.RGBA{squareFill, squareFill, squareFill, 0xff}
		for y := square.Min.Y; y < square.Max.Y; y++ {
			for x := square.Min.X; x < square.Max.X; x++ {
				img.SetRGBA(x, y, fill)
			}
		}

		frames[idx] = newFrame(img, FormatRaw)
	}

	return frames
}
