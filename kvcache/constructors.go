// Package kvcache - Konstruktoren und Initialisierung
//
// Dieses Modul enthaelt die Factory-Funktion zur Erstellung des Caches:
// - NewCache: Leerer Cache, wachsend oder mit fester Layer-Anzahl
package kvcache

import (
	"github.com/dcvla/vitcache/ml"
)

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}

	if c.capacity > 0 {
		c.keys = make([]ml.Tensor, 0, c.capacity)
		c.values = make([]ml.Tensor, 0, c.capacity)
	}

	return c
}
