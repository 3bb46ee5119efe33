// Package kvcache - Reuse-Masken
//
// Dieses Modul enthaelt den ReuseMask-Typ und Hilfsfunktionen:
// - NewReuseMask: Maske ohne Wiederverwendung
// - RandomReuseMask: k zufaellige Patches (Permutation wie im Vergleichs-Harness)
// - Count/Any/Invert/Indices/Hash
package kvcache

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// ReuseMask marks, per patch, whether the cached key/value should be used.
// A nil mask means no reuse at all; an empty non-nil mask is valid for a
// frame with zero patches.
type ReuseMask []bool

// NewReuseMask returns a mask of n patches with reuse disabled everywhere.
func NewReuseMask(n int) ReuseMask {
	return make(ReuseMask, max(n, 0))
}

// RandomReuseMask marks k distinct patches out of n for reuse. k is clamped
// to [0, n].
func RandomReuseMask(n, k int, rng *rand.Rand) ReuseMask {
	m := NewReuseMask(n)
	k = min(max(k, 0), len(m))
	for _, i := range rng.Perm(len(m))[:k] {
		m[i] = true
	}

	return m
}

// Count returns the number of reused patches.
func (m ReuseMask) Count() int {
	var n int
	for _, b := range m {
		if b {
			n++
		}
	}

	return n
}

// Any reports whether at least one patch is reused.
func (m ReuseMask) Any() bool {
	return m.Count() > 0
}

// Invert returns the complement of m. The complement of nil is nil.
func (m ReuseMask) Invert() ReuseMask {
	if m == nil {
		return nil
	}

	inv := make(ReuseMask, len(m))
	for i, b := range m {
		inv[i] = !b
	}

	return inv
}

// Indices returns the reused patch indices in ascending order.
func (m ReuseMask) Indices() []int {
	idx := make([]int, 0, m.Count())
	for i, b := range m {
		if b {
			idx = append(idx, i)
		}
	}

	return idx
}

// Hash returns a fingerprint of the mask. Masks of different length never
// share a fingerprint with the same bits; nil and empty masks hash to 0.
func (m ReuseMask) Hash() uint64 {
	if len(m) == 0 {
		return 0
	}

	buf := make([]byte, 8+(len(m)+7)/8)
	binary.LittleEndian.PutUint64(buf, uint64(len(m)))
	for i, b := range m {
		if b {
			buf[8+i/8] |= 1 << (i % 8)
		}
	}

	return xxhash.Sum64(buf)
}
