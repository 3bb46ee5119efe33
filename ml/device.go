// device.go - Geraete-Kennungen fuer Tensor-Speicherorte
// Dieses Modul definiert Library und Device sowie das Parsen von
// Geraete-Strings wie "cpu", "cuda:0" oder "metal".
package ml

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Library identifies the compute library that owns a device.
type Library string

const (
	LibraryCPU   Library = "cpu"
	LibraryCUDA  Library = "cuda"
	LibraryMetal Library = "metal"
)

// Device is an opaque handle for the location of tensor storage.
type Device struct {
	Library Library
	ID      int
}

// CPU is the host device. It is always available.
var CPU = Device{Library: LibraryCPU}

// ParseDevice parses strings of the form "library[:id]".
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CPU, nil
	}

	lib, idStr, hasID := strings.Cut(s, ":")
	d := Device{Library: Library(lib)}
	switch d.Library {
	case LibraryCPU, LibraryCUDA, LibraryMetal:
	default:
		return Device{}, fmt.Errorf("unknown device library %q", lib)
	}

	if hasID {
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 0 {
			return Device{}, fmt.Errorf("invalid device id %q", idStr)
		}
		d.ID = id
	}

	return d, nil
}

func (d Device) String() string {
	if d.Library == "" {
		return string(LibraryCPU)
	}
	if d.Library == LibraryCPU && d.ID == 0 {
		return string(LibraryCPU)
	}
	return fmt.Sprintf("%s:%d", d.Library, d.ID)
}

// IsCPU reports whether d refers to host memory.
func (d Device) IsCPU() bool {
	return d.Library == "" || d.Library == LibraryCPU
}

func (d Device) LogValue() slog.Value {
	return slog.StringValue(d.String())
}

func (d Device) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Device) UnmarshalText(b []byte) error {
	v, err := ParseDevice(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
