// device_detect.go
// Dieses Modul enthaelt die Registrierung von Geraete-Detektoren und die
// Verfuegbarkeitspruefung fuer Migrationsziele des Caches.
// CPU ist immer verfuegbar, alle anderen Libraries nur ueber Detektoren.

package ml

import (
	"errors"
	"slices"
	"sync"
)

// ErrDeviceUnavailable is returned when tensors are moved to a device that
// no registered detector reports.
var ErrDeviceUnavailable = errors.New("device unavailable")

// DeviceInfo describes one detected compute device.
type DeviceInfo struct {
	Device

	// Name is the name of the device as labeled by the library.
	Name string `json:"name"`

	// TotalMemory is the total amount of memory on the device in bytes.
	TotalMemory uint64 `json:"total_memory"`
}

// Detector reports the devices provided by one library.
type Detector interface {
	Library() Library
	Detect() bool
	Devices() []DeviceInfo
}

var (
	detectorsMu sync.RWMutex
	detectors   = make(map[Library]Detector)
)

// RegisterDetector registers d for its library, replacing any previous one.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors[d.Library()] = d
}

// UnregisterDetector removes the detector for lib.
func UnregisterDetector(lib Library) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	delete(detectors, lib)
}

// Devices enumerates the host device followed by every detected device.
func Devices() []DeviceInfo {
	devices := []DeviceInfo{hostInfo()}

	detectorsMu.RLock()
	defer detectorsMu.RUnlock()

	libs := make([]Library, 0, len(detectors))
	for lib := range detectors {
		libs = append(libs, lib)
	}
	slices.Sort(libs)

	for _, lib := range libs {
		if d := detectors[lib]; d.Detect() {
			devices = append(devices, d.Devices()...)
		}
	}

	return devices
}

// IsDeviceAvailable reports whether tensors can be placed on d.
func IsDeviceAvailable(d Device) bool {
	if d.IsCPU() {
		return d.ID == 0
	}

	return slices.ContainsFunc(Devices(), func(info DeviceInfo) bool {
		return info.Device == d
	})
}
