// Package kvcache - Fehlerarten
//
// Dieses Modul enthaelt die Sentinel-Fehler und die strukturierten
// Fehlertypen fuer Vertragsverletzungen durch den Aufrufer:
// - IndexGapError: Update hinter dem naechsten freien Slot
// - ShapeMismatchError: Tensoren mit abweichender Form
// - MaskLengthError: Maske passt nicht zur Patch-Dimension
package kvcache

import (
	"errors"
	"fmt"
)

var (
	ErrIndexGap      = errors.New("layer index leaves a gap in the cache")
	ErrNegativeIndex = errors.New("negative layer index")
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	ErrMaskLength    = errors.New("reuse mask length does not match patch count")
	ErrNilTensor     = errors.New("nil tensor")
)

// IndexGapError is returned by Update when layer is more than one past the
// last populated slot, or beyond the fixed capacity of the cache.
type IndexGapError struct {
	Index    int
	Length   int
	Capacity int
}

func (e *IndexGapError) Error() string {
	if e.Capacity > 0 && e.Index >= e.Capacity {
		return fmt.Sprintf("%v (layer: %v capacity: %v)", ErrIndexGap, e.Index, e.Capacity)
	}
	return fmt.Sprintf("%v (layer: %v length: %v)", ErrIndexGap, e.Index, e.Length)
}

func (e *IndexGapError) Unwrap() error {
	return ErrIndexGap
}

// ShapeMismatchError is returned when an operand does not have the expected
// shape. Want is nil when only the rank was checked.
type ShapeMismatchError struct {
	Operand string
	Want    []int
	Got     []int
}

func (e *ShapeMismatchError) Error() string {
	if e.Want == nil {
		return fmt.Sprintf("%v (%s: %v, want rank %d)", ErrShapeMismatch, e.Operand, e.Got, rank)
	}
	return fmt.Sprintf("%v (%s: %v, want %v)", ErrShapeMismatch, e.Operand, e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// MaskLengthError is returned by Merge when the mask does not cover every patch.
type MaskLengthError struct {
	Mask    int
	Patches int
}

func (e *MaskLengthError) Error() string {
	return fmt.Sprintf("%v (mask: %v patches: %v)", ErrMaskLength, e.Mask, e.Patches)
}

func (e *MaskLengthError) Unwrap() error {
	return ErrMaskLength
}
