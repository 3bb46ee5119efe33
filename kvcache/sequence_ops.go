// Package kvcache - Sequenz-Operationen
//
// Dieses Modul verwaltet Sequenz-bezogene Operationen:
// - Len: Anzahl belegter Slots
// - SequenceLength: Anzahl Patches eines Layers (0 = erster Frame)
// - Reset: Leert den Cache an Sequenzgrenzen
// - To: Migriert alle Tensoren auf ein anderes Geraet
package kvcache

import (
	"fmt"
	"log/slog"

	"github.com/dcvla/vitcache/ml"
)

// Len returns the number of populated layers.
func (c *Cache) Len() int {
	return len(c.keys)
}

// SequenceLength returns the number of patches stored for layer, or 0 if
// the layer has no entry yet.
func (c *Cache) SequenceLength(layer int) int {
	if layer < 0 || layer >= len(c.keys) {
		return 0
	}

	return c.keys[layer].Dim(patchAxis)
}

// Reset removes every entry. It is called when an unrelated sequence starts.
func (c *Cache) Reset() {
	clear(c.keys)
	clear(c.values)
	c.keys = c.keys[:0]
	c.values = c.values[:0]
}

// To moves every stored tensor to device, keeping slot order. It returns the
// cache itself so calls can be chained. If any tensor fails to move, the
// cache keeps its previous contents.
func (c *Cache) To(device ml.Device) (*Cache, error) {
	keys := make([]ml.Tensor, len(c.keys), cap(c.keys))
	values := make([]ml.Tensor, len(c.values), cap(c.values))

	for i := range c.keys {
		var err error
		if keys[i], err = c.keys[i].To(device); err != nil {
			return c, fmt.Errorf("move key (layer: %v): %w", i, err)
		}
		if values[i], err = c.values[i].To(device); err != nil {
			return c, fmt.Errorf("move value (layer: %v): %w", i, err)
		}
	}

	c.keys, c.values = keys, values
	slog.Debug("kvcache: moved", "device", device, "layers", len(keys))

	return c, nil
}

// Device returns the device of the first layer, or false if the cache is empty.
func (c *Cache) Device() (ml.Device, bool) {
	if len(c.keys) == 0 {
		return ml.Device{}, false
	}

	return c.keys[0].Device(), true
}

func (c *Cache) String() string {
	device := "empty"
	if d, ok := c.Device(); ok {
		device = d.String()
	}

	return fmt.Sprintf("Cache(layers=%d, patches=%d, device=%s)", c.Len(), c.SequenceLength(0), device)
}
