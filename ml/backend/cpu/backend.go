// MODUL: cpu
// ZWECK: Host-Backend fuer Tensoren (Speicher im Hauptspeicher)
// INPUT: float32-Daten und Formen
// OUTPUT: ml.Tensor Implementierung
// NEBENEFFEKTE: Registriert sich via init() fuer die Library "cpu"
// ABHAENGIGKEITEN: github.com/pdevine/tensor, x448/float16, d4l3k/go-bfloat16
// HINWEISE: Nicht-CPU-Geraete werden host-seitig gespiegelt (nur Kennzeichnung)

package cpu

import (
	"fmt"

	"github.com/dcvla/vitcache/ml"
)

func init() {
	ml.RegisterBackend(ml.LibraryCPU, New)
}

// Backend erzeugt Tensoren fuer ein Geraet.
type Backend struct {
	device ml.Device
}

// New erstellt ein Backend fuer device.
func New(device ml.Device) (ml.Backend, error) {
	if !ml.IsDeviceAvailable(device) {
		return nil, fmt.Errorf("%w: %s", ml.ErrDeviceUnavailable, device)
	}
	return &Backend{device: hostDevice(device)}, nil
}

func (b *Backend) Device() ml.Device {
	return b.device
}

func (b *Backend) FromFloats(s []float32, shape ...int) (ml.Tensor, error) {
	t, err := FromFloats(s, shape...)
	if err != nil {
		return nil, err
	}
	t.device = b.device
	return t, nil
}

func (b *Backend) Zeros(dtype ml.DType, shape ...int) (ml.Tensor, error) {
	t, err := Zeros(dtype, shape...)
	if err != nil {
		return nil, err
	}
	t.device = b.device
	return t, nil
}

func (b *Backend) Cast(t ml.Tensor, dtype ml.DType) (ml.Tensor, error) {
	ct, ok := t.(*Tensor)
	if !ok {
		var err error
		if ct, err = FromFloats(t.Floats(), t.Shape()...); err != nil {
			return nil, err
		}
		ct.device = hostDevice(t.Device())
	}
	return ct.Cast(dtype)
}
