// Modul: discover.go
// Beschreibung: Geraete-Erkennung fuer CUDA und Metal.
// Registriert Detektoren im ml-Paket, damit Tensoren auf erkannte
// Geraete verschoben werden koennen.

package discover

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dcvla/vitcache/logutil"
	"github.com/dcvla/vitcache/ml"
)

// nvidiaProcRoot enthaelt ein Verzeichnis pro NVIDIA-GPU (Linux).
var nvidiaProcRoot = "/proc/driver/nvidia/gpus"

var registerOnce sync.Once

// Register registriert die Detektoren fuer diese Plattform genau einmal.
func Register() {
	registerOnce.Do(func() {
		overrideWarnings()
		ml.RegisterDetector(&cudaDetector{root: nvidiaProcRoot})
		if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
			ml.RegisterDetector(metalDetector{})
		}
	})
}

type cudaDetector struct {
	root string

	once    sync.Once
	devices []ml.DeviceInfo
}

func (d *cudaDetector) Library() ml.Library { return ml.LibraryCUDA }

func (d *cudaDetector) Detect() bool { return len(d.Devices()) > 0 }

// Devices liest die GPUs aus dem Treiber-Verzeichnis, sortiert nach
// PCI-Adresse, und filtert nach CUDA_VISIBLE_DEVICES.
func (d *cudaDetector) Devices() []ml.DeviceInfo {
	d.once.Do(func() {
		entries, err := os.ReadDir(d.root)
		if err != nil {
			logutil.Trace("no nvidia driver", "root", d.root, "error", err)
			return
		}

		var names []string
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)

		visible := visibleDevices(os.Getenv("CUDA_VISIBLE_DEVICES"), len(names))
		for id, idx := range visible {
			info := ml.DeviceInfo{
				Device: ml.Device{Library: ml.LibraryCUDA, ID: id},
				Name:   gpuModel(filepath.Join(d.root, names[idx], "information")),
			}
			d.devices = append(d.devices, info)
		}

		slog.Debug("cuda devices detected", "count", len(d.devices))
	})

	return d.devices
}

// visibleDevices bildet CUDA_VISIBLE_DEVICES auf physische Indizes ab.
// Leer bedeutet alle Geraete, ungueltige Eintraege beenden die Liste.
func visibleDevices(env string, n int) []int {
	if strings.TrimSpace(env) == "" {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	var out []int
	for _, s := range strings.Split(env, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || i < 0 || i >= n {
			break
		}
		out = append(out, i)
	}
	return out
}

// gpuModel liest die "Model:"-Zeile der Treiber-Information.
func gpuModel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "NVIDIA GPU"
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if k, v, ok := strings.Cut(s.Text(), ":"); ok && strings.TrimSpace(k) == "Model" {
			return strings.TrimSpace(v)
		}
	}
	return "NVIDIA GPU"
}

type metalDetector struct{}

func (metalDetector) Library() ml.Library { return ml.LibraryMetal }
func (metalDetector) Detect() bool        { return true }
func (metalDetector) Devices() []ml.DeviceInfo {
	return []ml.DeviceInfo{{Device: ml.Device{Library: ml.LibraryMetal}, Name: "Apple GPU"}}
}

func overrideWarnings() {
	for _, k := range []string{"CUDA_VISIBLE_DEVICES", "GPU_DEVICE_ORDINAL"} {
		if v := os.Getenv(k); v != "" {
			slog.Warn("user overrode visible devices", k, v)
		}
	}
}
