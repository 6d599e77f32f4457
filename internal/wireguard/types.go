package wireguard

// Config is a read-only summary of a tunnel config, used for display.
type Config struct {
	Address    []string `json:"address,omitempty" yaml:"address,omitempty"`
	ListenPort int      `json:"listen_port,omitempty" yaml:"listen_port,omitempty"`
	TableOff   bool     `json:"table_off" yaml:"table_off"`
	Peers      []Peer   `json:"peers" yaml:"peers"`
}

// Peer summarizes one [Peer] section. Keys are public, so they are shown.
type Peer struct {
	PublicKey  string   `json:"public_key" yaml:"public_key"`
	Endpoint   string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AllowedIPs []string `json:"allowed_ips,omitempty" yaml:"allowed_ips,omitempty"`
	KeepAlive  int      `json:"persistent_keepalive,omitempty" yaml:"persistent_keepalive,omitempty"`
}

// Platform holds the per-OS locations of the WireGuard tooling.
type Platform struct {
	ConfigDir  string
	WgQuickBin string
	WgBin      string
}
