package wireguard

// Homebrew installs wireguard-tools under its own prefix.
func darwinPlatform() Platform {
	return Platform{
		ConfigDir:  "/opt/homebrew/etc/wireguard",
		WgQuickBin: "/opt/homebrew/bin/wg-quick",
		WgBin:      "/opt/homebrew/bin/wg",
	}
}
