package wireguard

func linuxPlatform() Platform {
	return Platform{
		ConfigDir:  "/etc/wireguard",
		WgQuickBin: "wg-quick",
		WgBin:      "wg",
	}
}
