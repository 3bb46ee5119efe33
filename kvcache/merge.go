// Package kvcache - Reuse-Zusammenfuehrung
//
// Dieses Modul enthaelt Merge: pro Patch wird entweder der gecachte oder
// der frisch berechnete Key/Value-Wert uebernommen. Die Auswahl gilt
// gleichermassen fuer Batch, Heads und Head-Dimension.
package kvcache

import (
	"fmt"

	"github.com/dcvla/vitcache/ml"
)

// Merge returns the key and value that attention should consume for one
// layer. For every patch i the cached tensors are used where mask[i] is set
// and the current tensors otherwise.
//
// A nil mask disables reuse and returns currentKey and currentValue as is;
// the cached tensors are not inspected and may be nil.
func Merge(currentKey, currentValue, cachedKey, cachedValue ml.Tensor, mask ReuseMask) (ml.Tensor, ml.Tensor, error) {
	if mask == nil {
		return currentKey, currentValue, nil
	}

	if err := checkRank("current key", currentKey); err != nil {
		return nil, nil, err
	}

	shape := currentKey.Shape()
	for _, op := range []struct {
		name string
		t    ml.Tensor
	}{
		{"current value", currentValue},
		{"cached key", cachedKey},
		{"cached value", cachedValue},
	} {
		if err := sameShape(op.name, shape, op.t); err != nil {
			return nil, nil, err
		}
	}

	if patches := shape[patchAxis]; len(mask) != patches {
		return nil, nil, &MaskLengthError{Mask: len(mask), Patches: patches}
	}

	key, err := currentKey.Where(patchAxis, mask, cachedKey)
	if err != nil {
		return nil, nil, fmt.Errorf("merge key: %w", err)
	}

	value, err := currentValue.Where(patchAxis, mask, cachedValue)
	if err != nil {
		return nil, nil, fmt.Errorf("merge value: %w", err)
	}

	return key, value, nil
}
