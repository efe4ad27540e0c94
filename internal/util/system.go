package util

import (
	"os"
	"runtime"
	"runtime/debug"
)

// SystemInfo contains information about the host system and build.
type SystemInfo struct {
	Hostname  string
	NumCPU    int
	OS        string
	Arch      string
	GoVersion string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname:  hostname,
		NumCPU:    runtime.NumCPU(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}

// ModuleVersion returns the main module version recorded in the binary, or
// "(devel)" when it is unavailable.
func ModuleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}
