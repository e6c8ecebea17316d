// Package platform identifies the running OS/architecture pair and matches it
// against the platform strings published by the registry.
package platform

import (
	"runtime"
	"strings"
)

// Current returns the canonical platform string for the running process,
// in the form "<os>-<arch>", e.g. "linux-amd64" or "darwin-arm64".
func Current() string {
	return detectOS() + "-" + detectArch()
}

// Normalize maps a registry platform string onto the canonical form used by
// Current. Registries are not always consistent about spellings: both
// "x86_64" and "amd64", "macos" and "darwin", and "/" or "-" separators
// appear in the wild.
func Normalize(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, "/", "-")
	p = strings.ReplaceAll(p, "_", "-")

	parts := strings.SplitN(p, "-", 2)
	if len(parts) != 2 {
		return p
	}
	return normalizeOS(parts[0]) + "-" + normalizeArch(parts[1])
}

// Matches reports whether an asset's platform string refers to the given
// canonical platform.
func Matches(assetPlatform, current string) bool {
	return Normalize(assetPlatform) == current
}

func normalizeOS(os string) string {
	switch os {
	case "macos", "osx", "mac":
		return "darwin"
	case "win", "win32", "win64":
		return "windows"
	default:
		return os
	}
}

func normalizeArch(arch string) string {
	// The arch part may itself contain a dash (e.g. "x86-64" after the
	// underscore rewrite above).
	switch arch {
	case "x86-64", "x64", "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	case "i686", "i386", "x86":
		return "386"
	default:
		return arch
	}
}

// detectOS maps Go OS names onto registry conventions.
func detectOS() string {
	switch runtime.GOOS {
	case "sunos":
		return "solaris"
	default:
		return runtime.GOOS
	}
}

// detectArch maps Go architecture names onto registry conventions.
func detectArch() string {
	switch runtime.GOARCH {
	case "arm":
		// Go does not distinguish ARM versions; armv7 is the common
		// release naming.
		return "armv7"
	default:
		return runtime.GOARCH
	}
}
