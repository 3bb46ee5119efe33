package backbone

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

type block struct {
	wq, wk, wv, wo *mat.Dense
	w1, w2         *mat.Dense
}

type weights struct {
	patchEmbed *mat.Dense // [patchDim, dim]
	posEmbed   *mat.Dense // [patches, dim]
	blocks     []block
}

// newWeights erzeugt deterministische Gewichte aus cfg.Seed.
func newWeights(cfg Config) *weights {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	dim := cfg.Dim()

	w := &weights{
		patchEmbed: randn(rng, cfg.patchDim(), dim),
		posEmbed:   randn(rng, cfg.Patches(), dim),
		blocks:     make([]block, cfg.Layers),
	}

	for i := range w.blocks {
		w.blocks[i] = block{
			wq: randn(rng, dim, dim),
			wk: randn(rng, dim, dim),
			wv: randn(rng, dim, dim),
			wo: randn(rng, dim, dim),
			w1: randn(rng, dim, 2*dim),
			w2: randn(rng, 2*dim, dim),
		}
	}

	return w
}

// randn fuellt eine Matrix mit N(0, 1/rows).
func randn(rng *rand.Rand, rows, cols int) *mat.Dense {
	scale := 1 / math.Sqrt(float64(rows))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}
