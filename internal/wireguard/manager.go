package wireguard

import "runtime"

// DefaultPlatform returns the tool locations for the running OS.
func DefaultPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return darwinPlatform()
	default:
		return linuxPlatform()
	}
}
