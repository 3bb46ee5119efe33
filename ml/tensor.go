// tensor.go - Tensor-Interface fuer den K/V-Cache
// Dieses Modul definiert die minimale Tensor-Schnittstelle, die der Cache
// und die Reuse-Zusammenfuehrung von einem Backend benoetigen:
// Form-Abfrage, Detach, Geraete-Migration und elementweise Auswahl.
package ml

// Tensor is a dense, row-major multi-dimensional array owned by a backend.
//
// Key and value tensors handled by the cache are rank 4 with the layout
// [batch, heads, patches, head_dim].
type Tensor interface {
	// Shape returns a copy of the dimensions, outermost first.
	Shape() []int
	Dim(n int) int

	DType() DType
	Device() Device

	// Floats returns a copy of the elements converted to float32.
	Floats() []float32

	// Bytes returns the elements encoded little-endian in DType, using
	// DType.Size bytes per element.
	Bytes() []byte

	// Detach returns an independent snapshot of the tensor. Mutating either
	// tensor afterwards does not affect the other, and the snapshot holds no
	// reference to whatever computation produced the receiver.
	Detach() Tensor

	// To returns the tensor stored on device. The copy is synchronous. A
	// tensor already on device may be returned as is.
	To(device Device) (Tensor, error)

	// Where returns a new tensor with the receiver's shape. Elements whose
	// index along axis has mask set are taken from onTrue, all others from
	// the receiver. onTrue must have the receiver's shape and mask must have
	// Dim(axis) entries.
	Where(axis int, mask []bool, onTrue Tensor) (Tensor, error)
}

// Elements returns the number of elements described by shape.
func Elements(shape []int) int {
	return mul(shape...)
}
