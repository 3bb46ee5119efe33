// Package kvcache - Validierung
//
// Dieses Modul enthaelt die gemeinsamen Pruefungen fuer Update und Merge:
// Rang-4-Layout, identische Formen und nil-Tensoren.
package kvcache

import (
	"slices"

	"github.com/dcvla/vitcache/ml"
)

const (
	rank      = 4
	patchAxis = 2
)

func checkRank(operand string, t ml.Tensor) error {
	if t == nil {
		return ErrNilTensor
	}

	if shape := t.Shape(); len(shape) != rank {
		return &ShapeMismatchError{Operand: operand, Got: shape}
	}

	return nil
}

func sameShape(operand string, want []int, t ml.Tensor) error {
	if t == nil {
		return ErrNilTensor
	}

	if got := t.Shape(); !slices.Equal(want, got) {
		return &ShapeMismatchError{Operand: operand, Want: want, Got: got}
	}

	return nil
}

func checkPair(key, value ml.Tensor) error {
	if err := checkRank("key", key); err != nil {
		return err
	}

	return sameShape("value", key.Shape(), value)
}
