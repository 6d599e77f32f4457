package wireguard

import (
	"strconv"
	"strings"

	"frameworks/api_tunnels/internal/wgconf"
)

// Summarize extracts the displayable fields of a config. Private keys are
// never included. Malformed values are skipped rather than reported.
func Summarize(text string) Config {
	doc := wgconf.Parse(text)
	cfg := Config{Peers: []Peer{}}

	if iface, ok := doc.Interface(); ok {
		for _, d := range doc.Directives(iface) {
			switch strings.ToLower(d.Key) {
			case "address":
				cfg.Address = append(cfg.Address, splitList(d.Value)...)
			case "listenport":
				if n, err := strconv.Atoi(d.Value); err == nil && n > 0 {
					cfg.ListenPort = n
				}
			case "table":
				cfg.TableOff = strings.EqualFold(d.Value, "off")
			}
		}
	}

	for _, s := range doc.Sections() {
		if !strings.EqualFold(s.Name, "Peer") {
			continue
		}
		var p Peer
		for _, d := range doc.Directives(s) {
			switch strings.ToLower(d.Key) {
			case "publickey":
				p.PublicKey = d.Value
			case "endpoint":
				p.Endpoint = d.Value
			case "allowedips":
				p.AllowedIPs = append(p.AllowedIPs, splitList(d.Value)...)
			case "persistentkeepalive":
				if n, err := strconv.Atoi(d.Value); err == nil && n >= 0 {
					p.KeepAlive = n
				}
			}
		}
		cfg.Peers = append(cfg.Peers, p)
	}
	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
