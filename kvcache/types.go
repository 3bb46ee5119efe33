// Package kvcache - Typen und Datenstrukturen
//
// Dieses Modul enthaelt die Datenstrukturen des ViT-K/V-Caches:
// - Cache: Ein Slot pro Transformer-Block mit Key- und Value-Tensor
// - Entry: Ergebnis eines Get-Aufrufs
// - Option: Funktionale Konfiguration fuer NewCache
package kvcache

import (
	"github.com/dcvla/vitcache/ml"
)

// Cache stores the most recent key and value tensor of every transformer
// block across the frames of one sequence. Slots are indexed by layer and
// are always contiguous from 0.
//
// The tensors are of shape batch, heads, patches, head dim.
//
// A Cache is owned by exactly one inference session and is not safe for
// concurrent use. Parallel sessions must each use their own Cache.
type Cache struct {
	keys, values []ml.Tensor

	// capacity is the fixed number of layers, or 0 if the cache grows on demand
	capacity int

	// strictShapes rejects updates that change the shape stored for a layer
	strictShapes bool
}

// Entry is a key/value pair stored for one layer.
type Entry struct {
	Key   ml.Tensor
	Value ml.Tensor
}

// Option configures a Cache.
type Option func(*Cache)

// WithLayers fixes the number of layers the cache can hold. Updates for
// layers at or beyond n are rejected.
func WithLayers(n int) Option {
	return func(c *Cache) {
		c.capacity = max(n, 0)
	}
}

// WithStrictShapes rejects overwrites that change the shape stored for a
// layer until the next Reset.
func WithStrictShapes(strict bool) Option {
	return func(c *Cache) {
		c.strictShapes = strict
	}
}
