// config_features.go - Harness- und Cache-Einstellungen
//
// Dieses Modul enthaelt:
// - Cache-Verhalten (strikte Formen)
// - Vergleichs-Harness (Frames, Reuse-Anzahl, Seed, Aufloesung)
package envconfig

// =============================================================================
// Cache-Verhalten
// =============================================================================

var (
	// StrictShapes lehnt Formwechsel eines Layers innerhalb einer Sequenz ab
	StrictShapes = Bool("VITCACHE_STRICT_SHAPES")
)

// =============================================================================
// Vergleichs-Harness
// =============================================================================

var (
	// NumFrames setzt die Anzahl aufeinanderfolgender Frames
	// Konfigurierbar via VITCACHE_NUM_FRAMES
	NumFrames = Uint("VITCACHE_NUM_FRAMES", 3)

	// ReuseCount setzt die Anzahl wiederverwendeter Patches pro Frame
	// Konfigurierbar via VITCACHE_REUSE_COUNT
	ReuseCount = Uint("VITCACHE_REUSE_COUNT", 80)

	// Seed setzt den Seed fuer die Masken-Erzeugung
	// Konfigurierbar via VITCACHE_SEED
	Seed = Uint64("VITCACHE_SEED", 1234)

	// Resolution setzt die Kantenlaenge der Eingabebilder in Pixeln
	// Konfigurierbar via VITCACHE_RESOLUTION
	Resolution = Uint("VITCACHE_RESOLUTION", 224)
)
