// MODUL: patch
// ZWECK: Zerlegung eines CHW-Bildes in nicht ueberlappende Patches
// INPUT: CHW float32-Slice, Kanaele, Hoehe, Breite, Patch-Groesse
// OUTPUT: [patches, c*patch*patch] float32-Slice
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine
// HINWEISE: Patch-Reihenfolge zeilenweise, innerhalb eines Patches Kanal, Zeile, Spalte

package vision

import "fmt"

// Patchify zerlegt chw in Patches der Kantenlaenge patch.
// Gibt die Patch-Daten und die Anzahl Patches zurueck.
func Patchify(chw []float32, c, h, w, patch int) ([]float32, int, error) {
	if patch <= 0 || h%patch != 0 || w%patch != 0 {
		return nil, 0, fmt.Errorf("patch-groesse %d teilt %dx%d nicht", patch, h, w)
	}
	if len(chw) != c*h*w {
		return nil, 0, fmt.Errorf("daten laenge %d passt nicht zu %dx%dx%d", len(chw), c, h, w)
	}

	rows, cols := h/patch, w/patch
	dim := c * patch * patch
	out := make([]float32, rows*cols*dim)

	i := 0
	for pr := 0; pr < rows; pr++ {
		for pc := 0; pc < cols; pc++ {
			for ch := 0; ch < c; ch++ {
				for y := 0; y < patch; y++ {
					src := ch*h*w + (pr*patch+y)*w + pc*patch
					i += copy(out[i:i+patch], chw[src:src+patch])
				}
			}
		}
	}

	return out, rows * cols, nil
}
