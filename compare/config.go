// MODUL: config
// ZWECK: Konfiguration des Vergleichs zwischen Token-Fusion und Cache-Reuse
// INPUT: Environment-Variablen (VITCACHE_*), optionale YAML-Datei
// OUTPUT: Config Struct mit validierten Werten
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei LoadConfig
// ABHAENGIGKEITEN: gopkg.in/yaml.v3, envconfig, backbone
// HINWEISE: Reihenfolge: Defaults aus Environment, dann YAML, dann CLI-Flags

package compare

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dcvla/vitcache/backbone"
	"github.com/dcvla/vitcache/envconfig"
	"github.com/dcvla/vitcache/ml"
)

// ErrInvalidConfig wird bei ungueltiger Vergleichs-Konfiguration zurueckgegeben
var ErrInvalidConfig = errors.New("compare: invalid config")

// Config beschreibt einen Vergleichslauf
type Config struct {
	// Frames ist die Anzahl aufeinanderfolgender Frames (mindestens 2)
	Frames int `yaml:"frames" json:"frames"`

	// ReuseCount ist die Anzahl wiederverwendeter Patches pro Frame ab Frame 1
	ReuseCount int `yaml:"reuse_count" json:"reuse_count"`

	// Seed fuer die Reuse-Masken
	Seed uint64 `yaml:"seed" json:"seed"`

	Device ml.Device `yaml:"device" json:"device"`

	// FramesDir laedt Frames aus einem Verzeichnis statt synthetischer Frames
	FramesDir string `yaml:"frames_dir,omitempty" json:"frames_dir,omitempty"`

	StrictShapes bool `yaml:"strict_shapes" json:"strict_shapes"`

	Backbone backbone.Config `yaml:"backbone" json:"backbone"`
}

// DefaultConfig gibt die Konfiguration aus den Environment-Variablen zurueck
func DefaultConfig() Config {
	bb := backbone.DefaultConfig()
	bb.Resolution = int(envconfig.Resolution())

	return Config{
		Frames:       int(envconfig.NumFrames()),
		ReuseCount:   int(envconfig.ReuseCount()),
		Seed:         envconfig.Seed(),
		Device:       envconfig.Device(),
		StrictShapes: envconfig.StrictShapes(),
		Backbone:     bb,
	}
}

// LoadConfig liest eine YAML-Datei ueber die Default-Konfiguration.
// Unbekannte Felder sind ein Fehler.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config lesen fehlgeschlagen: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate prueft die Konfiguration
func (c Config) Validate() error {
	if err := c.Backbone.Validate(); err != nil {
		return err
	}

	if c.Frames < 2 {
		return fmt.Errorf("%w: frames must be at least 2, got %d", ErrInvalidConfig, c.Frames)
	}

	if patches := c.Backbone.Patches(); c.ReuseCount < 0 || c.ReuseCount > patches {
		return fmt.Errorf("%w: reuse_count must be between 0 and %d, got %d", ErrInvalidConfig, patches, c.ReuseCount)
	}

	return nil
}
