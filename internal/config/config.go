// Package config loads bosun's settings from the environment.
package config

import (
	"fmt"
	"time"

	"frameworks/api_tunnels/internal/wireguard"
	pkgconfig "frameworks/api_tunnels/pkg/config"
)

// BosunConfig holds every setting the service and CLI share.
type BosunConfig struct {
	Port              string        `yaml:"port"`
	WireGuardDir      string        `yaml:"wireguard_config_dir"`
	LedgerPath        string        `yaml:"listener_ledger_path"`
	ToolTimeout       time.Duration `yaml:"external_tool_timeout"`
	WgQuickBin        string        `yaml:"wg_quick_bin"`
	WgBin             string        `yaml:"wg_bin"`
	RelayBin          string        `yaml:"relay_bin"`
	RelaySession      string        `yaml:"relay_session"`
	ScreenBin         string        `yaml:"screen_bin"`
	LoopbackInterface string        `yaml:"loopback_interface"`
	StatusBackend     string        `yaml:"wg_status_backend"`
}

// Default returns the built-in defaults for the running platform.
func Default() BosunConfig {
	platform := wireguard.DefaultPlatform()
	return BosunConfig{
		Port:              "18040",
		WireGuardDir:      platform.ConfigDir,
		LedgerPath:        "parameters.csv",
		ToolTimeout:       30 * time.Second,
		WgQuickBin:        platform.WgQuickBin,
		WgBin:             platform.WgBin,
		RelayBin:          "gost",
		RelaySession:      "gost",
		ScreenBin:         "screen",
		LoopbackInterface: "lo",
		StatusBackend:     wireguard.BackendWgctrl,
	}
}

// LoadBosunConfig reads the environment over the defaults and validates the result.
func LoadBosunConfig() (BosunConfig, error) {
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv reads the environment over the defaults without validating.
func FromEnv() BosunConfig {
	d := Default()
	return BosunConfig{
		Port:              pkgconfig.GetEnv("BOSUN_PORT", d.Port),
		WireGuardDir:      pkgconfig.GetEnv("WIREGUARD_CONFIG_DIR", d.WireGuardDir),
		LedgerPath:        pkgconfig.GetEnv("LISTENER_LEDGER_PATH", d.LedgerPath),
		ToolTimeout:       pkgconfig.GetEnvDuration("EXTERNAL_TOOL_TIMEOUT", d.ToolTimeout),
		WgQuickBin:        pkgconfig.GetEnv("WG_QUICK_BIN", d.WgQuickBin),
		WgBin:             pkgconfig.GetEnv("WG_BIN", d.WgBin),
		RelayBin:          pkgconfig.GetEnv("RELAY_BIN", d.RelayBin),
		RelaySession:      pkgconfig.GetEnv("RELAY_SESSION", d.RelaySession),
		ScreenBin:         pkgconfig.GetEnv("SCREEN_BIN", d.ScreenBin),
		LoopbackInterface: pkgconfig.GetEnv("LOOPBACK_INTERFACE", d.LoopbackInterface),
		StatusBackend:     pkgconfig.GetEnv("WG_STATUS_BACKEND", d.StatusBackend),
	}
}

// Validate rejects settings the components cannot run with.
func (c BosunConfig) Validate() error {
	switch c.StatusBackend {
	case wireguard.BackendWgctrl, wireguard.BackendCommand:
	default:
		return fmt.Errorf("WG_STATUS_BACKEND must be %q or %q, got %q", wireguard.BackendWgctrl, wireguard.BackendCommand, c.StatusBackend)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("EXTERNAL_TOOL_TIMEOUT must be positive")
	}
	if c.WireGuardDir == "" || c.LedgerPath == "" {
		return fmt.Errorf("WIREGUARD_CONFIG_DIR and LISTENER_LEDGER_PATH must be set")
	}
	if c.LoopbackInterface == "" {
		return fmt.Errorf("LOOPBACK_INTERFACE must be set")
	}
	return nil
}
