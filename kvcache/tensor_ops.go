// Package kvcache - Tensor-Operationen (Update/Get)
//
// Dieses Modul enthaelt die Kern-Tensor-Operationen:
// - Update: Schreibt einen entkoppelten Key/Value-Snapshot in einen Slot
// - Get: Liest Key/Value-Tensoren eines Slots
package kvcache

import (
	"context"
	"log/slog"

	"github.com/dcvla/vitcache/logutil"
	"github.com/dcvla/vitcache/ml"
)

// Update stores detached copies of key and value for layer. A layer equal to
// Len appends a slot, a smaller layer overwrites the slot in place. The
// stored tensors are returned so Update can be used as a pass-through.
//
// On error the cache is left unchanged.
func (c *Cache) Update(layer int, key, value ml.Tensor) (ml.Tensor, ml.Tensor, error) {
	if err := c.checkIndex(layer); err != nil {
		return nil, nil, err
	}

	if err := checkPair(key, value); err != nil {
		return nil, nil, err
	}

	if c.strictShapes && layer < len(c.keys) {
		if err := sameShape("key", c.keys[layer].Shape(), key); err != nil {
			return nil, nil, err
		}
	}

	key = key.Detach()
	value = value.Detach()

	if layer < len(c.keys) {
		c.keys[layer] = key
		c.values[layer] = value
	} else {
		c.keys = append(c.keys, key)
		c.values = append(c.values, value)
	}

	if slog.Default().Enabled(context.TODO(), logutil.LevelTrace) {
		logutil.Trace("kvcache: update", "layer", layer, "shape", key.Shape(), "device", key.Device(),
			"bytes", len(key.Bytes())+len(value.Bytes()), "layers", len(c.keys))
	}

	return key, value, nil
}

func (c *Cache) checkIndex(layer int) error {
	switch {
	case layer < 0:
		return ErrNegativeIndex
	case c.capacity > 0 && layer >= c.capacity,
		layer > len(c.keys):
		return &IndexGapError{Index: layer, Length: len(c.keys), Capacity: c.capacity}
	}

	return nil
}

// Get returns the entry for layer. The second result is false if the layer
// has not been populated since the last Reset.
func (c *Cache) Get(layer int) (Entry, bool) {
	if layer < 0 || layer >= len(c.keys) {
		return Entry{}, false
	}

	return Entry{Key: c.keys[layer], Value: c.values[layer]}, true
}
