// MODUL: tensor
// ZWECK: Dichter row-major Tensor im Hauptspeicher
// INPUT: float32-Slices, Formen, Masken
// OUTPUT: *Tensor (implementiert ml.Tensor)
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: github.com/pdevine/tensor (Permute), x448/float16, d4l3k/go-bfloat16
// HINWEISE: Werte werden intern als float32 gehalten, F16/BF16 werden beim Cast gerundet

package cpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/pdevine/tensor"
	"github.com/x448/float16"

	"github.com/dcvla/vitcache/ml"
)

// Tensor ist die Host-Implementierung von ml.Tensor.
type Tensor struct {
	data   []float32
	shape  []int
	dtype  ml.DType
	device ml.Device
}

var _ ml.Tensor = (*Tensor)(nil)

// FromFloats erstellt einen F32-Tensor. Die Daten werden kopiert.
func FromFloats(s []float32, shape ...int) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	if n := ml.Elements(shape); n != len(s) {
		return nil, fmt.Errorf("daten passen nicht zur form %v: %d elemente, erwartet %d", shape, len(s), n)
	}

	return &Tensor{
		data:   slices.Clone(s),
		shape:  slices.Clone(shape),
		dtype:  ml.DTypeF32,
		device: ml.CPU,
	}, nil
}

// hostDevice bildet alle Host-Kennungen auf ml.CPU ab.
func hostDevice(d ml.Device) ml.Device {
	if d.IsCPU() && d.ID == 0 {
		return ml.CPU
	}
	return d
}

// Zeros erstellt einen mit Nullen gefuellten Tensor.
func Zeros(dtype ml.DType, shape ...int) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	switch dtype {
	case ml.DTypeF32, ml.DTypeF16, ml.DTypeBF16:
	default:
		return nil, fmt.Errorf("%w: %v", ml.ErrUnsupportedDType, dtype)
	}

	return &Tensor{
		data:   make([]float32, ml.Elements(shape)),
		shape:  slices.Clone(shape),
		dtype:  dtype,
		device: ml.CPU,
	}, nil
}

func validateShape(shape []int) error {
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in form %v", shape)
		}
	}
	return nil
}

func (t *Tensor) Shape() []int {
	return slices.Clone(t.shape)
}

func (t *Tensor) Dim(n int) int {
	if n < 0 || n >= len(t.shape) {
		return 0
	}
	return t.shape[n]
}

func (t *Tensor) DType() ml.DType {
	return t.dtype
}

func (t *Tensor) Device() ml.Device {
	return t.device
}

func (t *Tensor) Floats() []float32 {
	return slices.Clone(t.data)
}

// Detach kopiert die Daten in einen unabhaengigen Tensor.
func (t *Tensor) Detach() ml.Tensor {
	return t.clone()
}

func (t *Tensor) clone() *Tensor {
	return &Tensor{
		data:   slices.Clone(t.data),
		shape:  slices.Clone(t.shape),
		dtype:  t.dtype,
		device: t.device,
	}
}

// To kopiert den Tensor auf device. Fuer nicht-CPU-Geraete wird der Speicher
// host-seitig gespiegelt und nur die Geraete-Kennung gesetzt.
func (t *Tensor) To(device ml.Device) (ml.Tensor, error) {
	device = hostDevice(device)
	if device == t.device {
		return t, nil
	}
	if !ml.IsDeviceAvailable(device) {
		return nil, fmt.Errorf("%w: %s", ml.ErrDeviceUnavailable, device)
	}

	c := t.clone()
	c.device = device
	return c, nil
}

// Where waehlt pro Index entlang axis zwischen onTrue und dem Empfaenger.
func (t *Tensor) Where(axis int, mask []bool, onTrue ml.Tensor) (ml.Tensor, error) {
	if axis < 0 || axis >= len(t.shape) {
		return nil, fmt.Errorf("achse %d ausserhalb von rang %d", axis, len(t.shape))
	}
	if !slices.Equal(t.shape, onTrue.Shape()) {
		return nil, fmt.Errorf("formen unterschiedlich: %v und %v", t.shape, onTrue.Shape())
	}
	if len(mask) != t.shape[axis] {
		return nil, fmt.Errorf("maskenlaenge %d passt nicht zu dimension %d", len(mask), t.shape[axis])
	}

	other := onTrue.Floats()
	outer := ml.Elements(t.shape[:axis])
	inner := ml.Elements(t.shape[axis+1:])
	n := t.shape[axis]

	out := make([]float32, len(t.data))
	for o := 0; o < outer; o++ {
		for i := 0; i < n; i++ {
			off := (o*n + i) * inner
			src := t.data
			if mask[i] {
				src = other
			}
			copy(out[off:off+inner], src[off:off+inner])
		}
	}

	return &Tensor{
		data:   out,
		shape:  slices.Clone(t.shape),
		dtype:  t.dtype,
		device: t.device,
	}, nil
}

// Cast rundet die Werte auf die Praezision von dtype.
func (t *Tensor) Cast(dtype ml.DType) (*Tensor, error) {
	c := t.clone()
	c.dtype = dtype

	switch dtype {
	case ml.DTypeF32:
	case ml.DTypeF16:
		for i, f := range c.data {
			c.data[i] = float16.Fromfloat32(f).Float32()
		}
	case ml.DTypeBF16:
		c.data = bfloat16.DecodeFloat32(bfloat16.EncodeFloat32(roundBF16(c.data)))
	default:
		return nil, fmt.Errorf("%w: %v", ml.ErrUnsupportedDType, dtype)
	}

	return c, nil
}

// roundBF16 rundet auf die naechste bf16-Zahl (ties to even), damit das
// Abschneiden in bfloat16.EncodeFloat32 korrekt rundet. NaN bleibt NaN.
func roundBF16(s []float32) []float32 {
	out := make([]float32, len(s))
	for i, f := range s {
		if f != f {
			out[i] = f
			continue
		}
		b := math.Float32bits(f)
		b += 0x7FFF + (b>>16)&1
		out[i] = math.Float32frombits(b)
	}
	return out
}

// Bytes gibt die Elemente little-endian im Format des DType zurueck.
func (t *Tensor) Bytes() []byte {
	size := t.dtype.Size()
	if size == 0 {
		size = ml.DTypeF32.Size()
	}
	b := make([]byte, size*len(t.data))

	switch t.dtype {
	case ml.DTypeF16:
		for i, f := range t.data {
			binary.LittleEndian.PutUint16(b[size*i:], float16.Fromfloat32(f).Bits())
		}
	case ml.DTypeBF16:
		copy(b, bfloat16.EncodeFloat32(t.data))
	default:
		for i, f := range t.data {
			binary.LittleEndian.PutUint32(b[size*i:], math.Float32bits(f))
		}
	}
	return b
}

// Reshape gibt eine Kopie mit neuer Form zurueck.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	if ml.Elements(shape) != len(t.data) {
		return nil, fmt.Errorf("form %v passt nicht zu %d elementen", shape, len(t.data))
	}
	c := t.clone()
	c.shape = slices.Clone(shape)
	return c, nil
}

// Permute vertauscht die Achsen und ordnet die Daten physisch neu an.
func (t *Tensor) Permute(axes ...int) (*Tensor, error) {
	if len(axes) != len(t.shape) {
		return nil, fmt.Errorf("permutation %v passt nicht zu rang %d", axes, len(t.shape))
	}

	shape := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 || a >= len(t.shape) {
			return nil, fmt.Errorf("ungueltige achse %d", a)
		}
		shape[i] = t.shape[a]
	}

	if len(t.data) == 0 || isIdentity(axes) {
		c := t.clone()
		c.shape = shape
		return c, nil
	}

	n := tensor.New(tensor.WithShape(t.shape...), tensor.WithBacking(slices.Clone(t.data)))
	if err := n.T(axes...); err != nil {
		return nil, err
	}
	if err := n.Transpose(); err != nil {
		return nil, err
	}

	data, ok := n.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("unerwarteter datentyp %T", n.Data())
	}

	return &Tensor{
		data:   data,
		shape:  shape,
		dtype:  t.dtype,
		device: t.device,
	}, nil
}

func isIdentity(axes []int) bool {
	for i, a := range axes {
		if i != a {
			return false
		}
	}
	return true
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%v, device=%v)", t.shape, t.dtype, t.device)
}
