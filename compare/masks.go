package compare

import (
	"math/rand/v2"

	"github.com/dcvla/vitcache/kvcache"
)

// Masks erzeugt die Reuse-Masken einer Sequenz. Frame 0 hat keine Maske,
// jeder weitere Frame waehlt reuse zufaellige Patches aus.
func Masks(frames, patches, reuse int, seed uint64) []kvcache.ReuseMask {
	rng := rand.New(rand.NewPCG(seed, seed))

	masks := make([]kvcache.ReuseMask, frames)
	for i := 1; i < frames; i++ {
		if reuse == 0 {
			masks[i] = kvcache.NewReuseMask(patches)
			continue
		}
		masks[i] = kvcache.RandomReuseMask(patches, reuse, rng)
	}

	return masks
}

// Fuse baut die akkumulierte Token-Fusion: fuer jeden Frame ab 1 werden die
// maskierten Patch-Zeilen aus dem vorherigen fusionierten Frame uebernommen.
// tokens[i] hat das Layout [patches, dim].
func Fuse(tokens [][]float32, masks []kvcache.ReuseMask, dim int) [][]float32 {
	fused := make([][]float32, len(tokens))
	for i, cur := range tokens {
		out := make([]float32, len(cur))
		copy(out, cur)

		if i > 0 {
			prev := fused[i-1]
			for _, p := range masks[i].Indices() {
				copy(out[p*dim:(p+1)*dim], prev[p*dim:(p+1)*dim])
			}
		}

		fused[i] = out
	}

	return fused
}
