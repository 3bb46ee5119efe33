// backend.go - Backend-Interface und Registrierung fuer Tensor-Speicher
// Dieses Modul definiert das Backend-Interface und die Backend-Factory-Funktionen.
package ml

import (
	"fmt"
	"sync"
)

// Backend creates tensors on one device.
type Backend interface {
	Device() Device

	FromFloats(s []float32, shape ...int) (Tensor, error)
	Zeros(dtype DType, shape ...int) (Tensor, error)

	// Cast returns a copy of t rounded to the precision of dtype.
	Cast(t Tensor, dtype DType) (Tensor, error)
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[Library]func(Device) (Backend, error))
)

// RegisterBackend registers a backend factory for a library.
func RegisterBackend(lib Library, f func(Device) (Backend, error)) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, ok := backends[lib]; ok {
		panic("backend: backend already registered")
	}

	backends[lib] = f
}

// NewBackend creates a backend for device. Devices without a dedicated
// backend are served by the cpu backend with host-staged storage as long as
// the device is available.
func NewBackend(device Device) (Backend, error) {
	if !IsDeviceAvailable(device) {
		return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, device)
	}

	backendsMu.RLock()
	f, ok := backends[device.Library]
	if !ok {
		f, ok = backends[LibraryCPU]
	}
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported backend for device %s", device)
	}

	return f(device)
}
