// Package buildinfo carries version information stamped at link time:
//
//	go build -ldflags "-X github.com/cwbudde/spectrafit/internal/buildinfo.Version=1.2.0"
package buildinfo

import "runtime/debug"

// Version is the release version. It falls back to the module version
// recorded by the go tool when not stamped.
var Version = ""

// String returns the effective version.
func String() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}
