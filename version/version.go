// Package version exposes build metadata, set at link time with
// -ldflags "-X github.com/farcloser/tactus/version.version=...".
package version

import (
	"os"
	"path/filepath"
	"runtime/debug"
)

var (
	name    = ""
	version = ""
	commit  = ""
)

// Name returns the binary name, defaulting to the executable's base name.
func Name() string {
	if name != "" {
		return name
	}

	return filepath.Base(os.Args[0])
}

// Version returns the release version, or the module version recorded by the toolchain.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
