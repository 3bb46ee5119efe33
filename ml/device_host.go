package ml

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// hostInfo describes the CPU device, including the SIMD extensions the
// host tensor loops can benefit from.
func hostInfo() DeviceInfo {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			ok   bool
		}{
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"avx512f", cpu.X86.HasAVX512F},
			{"fma", cpu.X86.HasFMA},
		} {
			if f.ok {
				features = append(features, f.name)
			}
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "asimd")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "sve")
		}
	}

	name := "CPU"
	if len(features) > 0 {
		name += " (" + strings.Join(features, ", ") + ")"
	}

	return DeviceInfo{Device: CPU, Name: name}
}
