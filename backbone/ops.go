package backbone

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/dcvla/vitcache/ml/backend/cpu"
)

const layerNormEps = 1e-6

// layerNorm normalisiert jede Zeile auf Mittelwert 0 und Varianz 1.
func layerNorm(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, x)
		mean := floats.Sum(row) / float64(c)
		floats.AddConst(-mean, row)
		variance := floats.Dot(row, row) / float64(c)
		floats.Scale(1/math.Sqrt(variance+layerNormEps), row)
		out.SetRow(i, row)
	}
	return out
}

// softmaxRows wendet softmax zeilenweise in-place an.
func softmaxRows(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		floats.AddConst(-floats.Max(row), row)
		for j, v := range row {
			row[j] = math.Exp(v)
		}
		floats.Scale(1/floats.Sum(row), row)
	}
}

// gelu ist die tanh-Approximation.
func gelu(_, _ int, v float64) float64 {
	return 0.5 * v * (1 + math.Tanh(math.Sqrt(2/math.Pi)*(v+0.044715*v*v*v)))
}

// splitHeads ordnet [patches, heads*headDim] nach [1, heads, patches, headDim] um.
func splitHeads(m *mat.Dense, heads, headDim int) ([]float32, error) {
	n, _ := m.Dims()
	data := make([]float32, 0, n*heads*headDim)
	for i := 0; i < n; i++ {
		for _, v := range m.RawRowView(i) {
			data = append(data, float32(v))
		}
	}

	t, err := cpu.FromFloats(data, n, heads, headDim)
	if err != nil {
		return nil, err
	}
	if t, err = t.Permute(1, 0, 2); err != nil {
		return nil, err
	}
	if t, err = t.Reshape(1, heads, n, headDim); err != nil {
		return nil, err
	}
	return t.Floats(), nil
}

// headMatrix liest Head h aus [1, heads, patches, headDim] Daten.
func headMatrix(data []float32, h, n, headDim int) *mat.Dense {
	src := data[h*n*headDim : (h+1)*n*headDim]
	m := make([]float64, len(src))
	for i, v := range src {
		m[i] = float64(v)
	}
	return mat.NewDense(n, headDim, m)
}
