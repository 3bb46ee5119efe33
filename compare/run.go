// MODUL: run
// ZWECK: Vergleich zwischen Token-Fusion (TTF) und Cache-Reuse pro Frame
// INPUT: Config
// OUTPUT: Report mit Abweichungs-Statistiken pro Frame
// NEBENEFFEKTE: CPU-Last, Logging
// ABHAENGIGKEITEN: backbone, vision, kvcache, golang.org/x/sync/errgroup,
//                  gonum.org/v1/gonum/floats, github.com/google/uuid
// HINWEISE: Baseline und Cache-Pfad laufen parallel mit je eigener Backbone

package compare

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/dcvla/vitcache/backbone"
	"github.com/dcvla/vitcache/kvcache"
	"github.com/dcvla/vitcache/vision"
)

// FrameResult enthaelt die Abweichungen eines Frames.
type FrameResult struct {
	Index     int     `json:"index"`
	Reused    int     `json:"reused"`
	MaxDiff   float64 `json:"max_diff"`
	MeanDiff  float64 `json:"mean_diff"`
	ReusedMax float64 `json:"reused_max"`
	NewMax    float64 `json:"new_max"`

	// MaskHash identifiziert die Reuse-Maske des Frames (leer fuer Frame 0)
	MaskHash string `json:"mask_hash,omitempty"`
}

// RunOption konfiguriert einen Vergleichslauf.
type RunOption func(*runOptions)

type runOptions struct {
	progress func()
}

// WithProgress ruft fn nach jedem kodierten Frame auf, insgesamt Steps(cfg) mal.
// fn wird aus mehreren Goroutinen aufgerufen.
func WithProgress(fn func()) RunOption {
	return func(o *runOptions) {
		o.progress = fn
	}
}

// Steps gibt die Anzahl Fortschritts-Schritte eines Laufs zurueck.
func Steps(cfg Config) int {
	return 2 * cfg.Frames
}

// Run fuehrt den Vergleich aus.
func Run(ctx context.Context, cfg Config, opts ...RunOption) (*Report, error) {
	o := runOptions{progress: func() {}}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames, err := loadFrames(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	log := slog.With("run", runID, "device", cfg.Device)
	start := time.Now()

	patches, dim := cfg.Backbone.Patches(), cfg.Backbone.Dim()
	masks := Masks(cfg.Frames, patches, cfg.ReuseCount, cfg.Seed)

	var full, cached [][]float32
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		full, err = encode(ctx, cfg, frames, nil, o.progress)
		return err
	})
	g.Go(func() (err error) {
		cached, err = encode(ctx, cfg, frames, masks, o.progress)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := Fuse(full, masks, dim)

	report := &Report{
		RunID:     runID.String(),
		Timestamp: start,
		Config:    cfg,
		Patches:   patches,
		Dim:       dim,
	}

	for i := range frames {
		r := diffFrame(fused[i], cached[i], masks[i], dim)
		r.Index = i
		if masks[i] != nil {
			r.MaskHash = strconv.FormatUint(masks[i].Hash(), 16)
		}
		report.Frames = append(report.Frames, r)
		log.Debug("frame compared", "frame", i, "reused", r.Reused, "max", r.MaxDiff, "mean", r.MeanDiff)
	}

	report.Duration = time.Since(start)
	log.Info("comparison finished", "frames", len(frames), "reuse", cfg.ReuseCount, "duration", report.Duration)
	return report, nil
}

func loadFrames(cfg Config) ([]*vision.Frame, error) {
	if cfg.FramesDir == "" {
		return vision.SyntheticFrames(cfg.Frames, cfg.Backbone.Resolution), nil
	}

	frames, err := vision.LoadFrames(cfg.FramesDir, cfg.Backbone.Resolution)
	if err != nil {
		return nil, err
	}
	if len(frames) < cfg.Frames {
		return nil, fmt.Errorf("%w: %s has %d frames, need %d", ErrInvalidConfig, cfg.FramesDir, len(frames), cfg.Frames)
	}

	return frames[:cfg.Frames], nil
}

// encode kodiert alle Frames mit einer eigenen Backbone. masks[i] wird vor
// Frame i gesetzt; ohne Masken laeuft jeder Frame ohne Reuse.
func encode(ctx context.Context, cfg Config, frames []*vision.Frame, masks []kvcache.ReuseMask, progress func()) ([][]float32, error) {
	bb, err := backbone.New(cfg.Backbone, cfg.Device, kvcache.WithStrictShapes(cfg.StrictShapes))
	if err != nil {
		return nil, err
	}
	defer bb.ResetCache()

	out := make([][]float32, len(frames))
	for i, f := range frames {
		if masks != nil {
			bb.SetReuseMask(masks[i])
		}

		tokens, err := bb.Forward(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out[i] = tokens.Floats()
		progress()
	}

	return out, nil
}

// diffFrame berechnet |want - got| und die Statistiken eines Frames.
func diffFrame(want, got []float32, mask kvcache.ReuseMask, dim int) FrameResult {
	diff := make([]float64, len(want))
	for i := range want {
		diff[i] = math.Abs(float64(want[i]) - float64(got[i]))
	}

	r := FrameResult{Reused: mask.Count()}
	if len(diff) == 0 {
		return r
	}

	r.MaxDiff = floats.Max(diff)
	r.MeanDiff = floats.Sum(diff) / float64(len(diff))

	if mask.Any() {
		for p, reused := range mask {
			rowMax := floats.Max(diff[p*dim : (p+1)*dim])
			if reused {
				r.ReusedMax = max(r.ReusedMax, rowMax)
			} else {
				r.NewMax = max(r.NewMax, rowMax)
			}
		}
	}

	return r
}
