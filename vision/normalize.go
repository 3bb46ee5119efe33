// MODUL: normalize
// ZWECK: Normalisierung von Frames in Pixelwerte fuer die Backbone
// INPUT: Frame, Normalisierungs-Parameter (mean, std)
// OUTPUT: float32-Slice im CHW Layout
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Presets fuer ImageNet und SigLIP-artige Encoder ([-1, 1])

package vision

// Norm beschreibt die kanalweise Normalisierung (x - Mean) / Std
type Norm struct {
	Mean [3]float32
	Std  [3]float32
}

var (
	// ImageNet Default (ResNet, DINOv2)
	ImageNet = Norm{
		Mean: [3]float32{0.485, 0.456, 0.406},
		Std:  [3]float32{0.229, 0.224, 0.225},
	}

	// ImageNetStandard normalisiert auf [-1, 1] (SigLIP)
	ImageNetStandard = Norm{
		Mean: [3]float32{0.5, 0.5, 0.5},
		Std:  [3]float32{0.5, 0.5, 0.5},
	}

	// NoNorm skaliert nur auf [0, 1]
	NoNorm = Norm{
		Std: [3]float32{1, 1, 1},
	}
)

// NormalizeRGB normalisiert einen Frame und gibt CHW Layout zurueck
func NormalizeRGB(f *Frame, n Norm) []float32 {
	bounds := f.Image.Bounds()
	size := bounds.Dx() * bounds.Dy()

	result := make([]float32, size*3)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := f.Image.RGBAAt(x, y)
			result[idx] = (float32(px.R)/255 - n.Mean[0]) / n.Std[0]
			result[size+idx] = (float32(px.G)/255 - n.Mean[1]) / n.Std[1]
			result[2*size+idx] = (float32(px.B)/255 - n.Mean[2]) / n.Std[2]
			idx++
		}
	}

	return result
}

// Shape gibt die Tensor-Form des normalisierten Frames zurueck (C, H, W)
func (f *Frame) Shape() []int {
	return []int{3, f.Height, f.Width}
}
