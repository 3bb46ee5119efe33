// Package backbone - Minimaler ViT-Encoder mit K/V-Cache pro Block
//
// Dieses Modul enthaelt die Konfiguration der Backbone:
// - Config: Anzahl Blocks, Heads, Head-Dimension, Patch-Groesse, Aufloesung
// - DefaultConfig: 224er Eingabe mit 14er Patches (256 Patches)
// - Validate: Prueft die Konfiguration
package backbone

import (
	"errors"
	"fmt"

	"github.com/dcvla/vitcache/ml"
)

// ErrInvalidConfig wird bei ungueltiger Backbone-Konfiguration zurueckgegeben
var ErrInvalidConfig = errors.New("backbone: invalid config")

// ErrNilFrame wird von Forward ohne Bilddaten zurueckgegeben
var ErrNilFrame = errors.New("backbone: nil frame")

// Config beschreibt Form und Initialisierung der Backbone
type Config struct {
	Layers     int    `yaml:"layers" json:"layers"`
	Heads      int    `yaml:"heads" json:"heads"`
	HeadDim    int    `yaml:"head_dim" json:"head_dim"`
	PatchSize  int    `yaml:"patch_size" json:"patch_size"`
	Resolution int    `yaml:"resolution" json:"resolution"`
	Seed       uint64 `yaml:"seed" json:"seed"`

	// DType ist die Praezision, in der Keys und Values gecacht werden
	DType ml.DType `yaml:"dtype" json:"dtype"`
}

// DefaultConfig gibt die Standard-Konfiguration zurueck
func DefaultConfig() Config {
	return Config{
		Layers:     4,
		Heads:      4,
		HeadDim:    16,
		PatchSize:  14,
		Resolution: 224,
		Seed:       42,
		DType:      ml.DTypeF32,
	}
}

// Validate prueft die Konfiguration
func (c Config) Validate() error {
	switch {
	case c.Layers <= 0:
		return fmt.Errorf("%w: layers must be positive, got %d", ErrInvalidConfig, c.Layers)
	case c.Heads <= 0 || c.HeadDim <= 0:
		return fmt.Errorf("%w: heads and head_dim must be positive, got %d and %d", ErrInvalidConfig, c.Heads, c.HeadDim)
	case c.PatchSize <= 0 || c.Resolution <= 0:
		return fmt.Errorf("%w: patch_size and resolution must be positive", ErrInvalidConfig)
	case c.Resolution%c.PatchSize != 0:
		return fmt.Errorf("%w: resolution %d not divisible by patch_size %d", ErrInvalidConfig, c.Resolution, c.PatchSize)
	}

	switch c.DType {
	case ml.DTypeF32, ml.DTypeF16, ml.DTypeBF16:
	default:
		return fmt.Errorf("%w: %v", ml.ErrUnsupportedDType, c.DType)
	}

	return nil
}

// Patches gibt die Anzahl Patches pro Frame zurueck
func (c Config) Patches() int {
	g := c.Resolution / c.PatchSize
	return g * g
}

// Dim gibt die Token-Dimension zurueck
func (c Config) Dim() int {
	return c.Heads * c.HeadDim
}

// patchDim ist die Laenge eines flachen RGB-Patches
func (c Config) patchDim() int {
	return 3 * c.PatchSize * c.PatchSize
}
