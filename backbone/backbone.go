// Package backbone - Minimaler ViT-Encoder mit K/V-Cache pro Block
//
// Dieses Modul enthaelt den Forward-Pass:
// - Patch-Embedding und Positions-Embedding
// - Pro Block: Q/K/V berechnen, mit dem Cache zusammenfuehren, ablegen
// - Reuse-Maske, Cache-Reset und Geraetewechsel
package backbone

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/dcvla/vitcache/kvcache"
	"github.com/dcvla/vitcache/logutil"
	"github.com/dcvla/vitcache/ml"
	"github.com/dcvla/vitcache/vision"
)

// Backbone ist ein ViT-Encoder, der Keys und Values jedes Blocks cacht.
// Eine Backbone gehoert zu genau einer Sequenz und ist nicht fuer
// gleichzeitige Nutzung gedacht.
type Backbone struct {
	cfg     Config
	w       *weights
	backend ml.Backend
	cache   *kvcache.Cache
	mask    kvcache.ReuseMask
}

// New erstellt eine Backbone auf device.
func New(cfg Config, device ml.Device, opts ...kvcache.Option) (*Backbone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := ml.NewBackend(device)
	if err != nil {
		return nil, err
	}

	opts = append([]kvcache.Option{kvcache.WithLayers(cfg.Layers)}, opts...)
	return &Backbone{
		cfg:     cfg,
		w:       newWeights(cfg),
		backend: backend,
		cache:   kvcache.NewCache(opts...),
	}, nil
}

func (b *Backbone) Config() Config {
	return b.cfg
}

// Cache gibt den K/V-Cache der Backbone zurueck.
func (b *Backbone) Cache() *kvcache.Cache {
	return b.cache
}

// SetReuseMask setzt die Maske fuer den naechsten Forward-Pass.
// nil schaltet die Wiederverwendung ab.
func (b *Backbone) SetReuseMask(mask kvcache.ReuseMask) {
	b.mask = slices.Clone(mask)
}

// ResetCache leert den Cache, z.B. zu Beginn einer neuen Episode.
func (b *Backbone) ResetCache() {
	b.cache.Reset()
}

// To verschiebt Cache und neue Tensoren auf device.
func (b *Backbone) To(device ml.Device) error {
	backend, err := ml.NewBackend(device)
	if err != nil {
		return err
	}

	if _, err := b.cache.To(device); err != nil {
		return err
	}

	b.backend = backend
	return nil
}

// Forward kodiert frame und gibt die Tokens mit Form [patches, dim] zurueck.
func (b *Backbone) Forward(ctx context.Context, frame *vision.Frame) (ml.Tensor, error) {
	if frame == nil || frame.Image == nil {
		return nil, ErrNilFrame
	}
	if frame.Width != b.cfg.Resolution || frame.Height != b.cfg.Resolution {
		var err error
		if frame, err = vision.Resize(frame, b.cfg.Resolution, b.cfg.Resolution); err != nil {
			return nil, err
		}
	}

	pixels := vision.NormalizeRGB(frame, vision.ImageNetStandard)
	patches, n, err := vision.Patchify(pixels, 3, b.cfg.Resolution, b.cfg.Resolution, b.cfg.PatchSize)
	if err != nil {
		return nil, err
	}

	p := make([]float64, len(patches))
	for i, v := range patches {
		p[i] = float64(v)
	}

	var x mat.Dense
	x.Mul(mat.NewDense(n, b.cfg.patchDim(), p), b.w.patchEmbed)
	x.Add(&x, b.w.posEmbed)

	for layer := range b.w.blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.forwardBlock(layer, &x); err != nil {
			return nil, fmt.Errorf("block %d: %w", layer, err)
		}
	}

	y := layerNorm(&x)
	data := make([]float32, 0, n*b.cfg.Dim())
	for i := 0; i < n; i++ {
		for _, v := range y.RawRowView(i) {
			data = append(data, float32(v))
		}
	}

	slog.Debug("backbone forward", "patches", n, "reused", b.mask.Count(), "cache", b.cache)
	out, err := b.backend.FromFloats(data, n, b.cfg.Dim())
	if err != nil {
		return nil, err
	}
	if slog.Default().Enabled(ctx, logutil.LevelTrace) {
		logutil.TraceContext(ctx, "backbone tokens", "tokens", ml.Dump(out, ml.DumpWithEdgeItems(2)))
	}
	return out, nil
}

func (b *Backbone) forwardBlock(layer int, x *mat.Dense) error {
	blk := b.w.blocks[layer]
	n, dim := x.Dims()
	heads, headDim := b.cfg.Heads, b.cfg.HeadDim

	h := layerNorm(x)

	var q, k, v mat.Dense
	q.Mul(h, blk.wq)
	k.Mul(h, blk.wk)
	v.Mul(h, blk.wv)

	kd, err := splitHeads(&k, heads, headDim)
	if err != nil {
		return err
	}
	vd, err := splitHeads(&v, heads, headDim)
	if err != nil {
		return err
	}

	key, err := b.tensor(kd, 1, heads, n, headDim)
	if err != nil {
		return err
	}
	value, err := b.tensor(vd, 1, heads, n, headDim)
	if err != nil {
		return err
	}

	if cached, ok := b.cache.Get(layer); ok && b.mask != nil {
		if key, value, err = kvcache.Merge(key, value, cached.Key, cached.Value, b.mask); err != nil {
			return err
		}
		logutil.Trace("merged cached kv", "layer", layer, "reused", b.mask.Count())
	}

	if _, _, err := b.cache.Update(layer, key, value); err != nil {
		return err
	}

	keys, values := key.Floats(), value.Floats()
	attn := mat.NewDense(n, dim, nil)
	scale := 1 / math.Sqrt(float64(headDim))
	for hd := 0; hd < heads; hd++ {
		kh := headMatrix(keys, hd, n, headDim)
		vh := headMatrix(values, hd, n, headDim)
		qh := q.Slice(0, n, hd*headDim, (hd+1)*headDim)

		var scores mat.Dense
		scores.Mul(qh, kh.T())
		scores.Scale(scale, &scores)
		softmaxRows(&scores)

		attn.Slice(0, n, hd*headDim, (hd+1)*headDim).(*mat.Dense).Mul(&scores, vh)
	}

	var proj mat.Dense
	proj.Mul(attn, blk.wo)
	x.Add(x, &proj)

	var hidden, mlp mat.Dense
	hidden.Mul(layerNorm(x), blk.w1)
	hidden.Apply(gelu, &hidden)
	mlp.Mul(&hidden, blk.w2)
	x.Add(x, &mlp)

	return nil
}

// tensor erstellt einen K/V-Tensor in der Cache-Praezision.
func (b *Backbone) tensor(data []float32, shape ...int) (ml.Tensor, error) {
	t, err := b.backend.FromFloats(data, shape...)
	if err != nil {
		return nil, err
	}
	if b.cfg.DType == ml.DTypeF32 {
		return t, nil
	}
	return b.backend.Cast(t, b.cfg.DType)
}
