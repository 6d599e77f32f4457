package wireguard

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"frameworks/api_tunnels/internal/apperrors"
)

// ConfigSuffix is the extension wg-quick expects on config files.
const ConfigSuffix = ".conf"

var (
	interfaceNamePattern = regexp.MustCompile(`^wg\d+$`)
	configFilePattern    = regexp.MustCompile(`^wg(\d+)\.conf$`)
)

// ValidateInterfaceName rejects anything that is not "wg" followed by digits.
func ValidateInterfaceName(name string) error {
	if !interfaceNamePattern.MatchString(name) {
		return apperrors.Validation("invalid interface name %q: expected wg followed by digits", name)
	}
	return nil
}

// ConfigFileName returns the file name wg-quick reads for iface.
func ConfigFileName(iface string) string {
	return iface + ConfigSuffix
}

// InterfaceFromFile returns the interface name for a config file name, or
// false when the name is not a tunnel config.
func InterfaceFromFile(file string) (string, bool) {
	m := configFilePattern.FindStringSubmatch(file)
	if m == nil {
		return "", false
	}
	return "wg" + m[1], true
}

// HighestNumber returns the largest N among names matching wgN.conf, or 0.
func HighestNumber(names []string) int {
	highest := 0
	for _, name := range names {
		m := configFilePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// NextConfigName returns wg(N+1).conf where N is the highest number in use.
// Gaps below N are never reused.
func NextConfigName(names []string) string {
	return fmt.Sprintf("wg%d%s", HighestNumber(names)+1, ConfigSuffix)
}

// Allocate picks the next config file name and, while exists reports the
// candidate as taken, keeps incrementing. The result is a best-effort
// reservation: callers still create the file exclusively.
func Allocate(names []string, exists func(name string) bool) string {
	n := HighestNumber(names) + 1
	for {
		candidate := fmt.Sprintf("wg%d%s", n, ConfigSuffix)
		if exists == nil || !exists(candidate) {
			return candidate
		}
		n++
	}
}

// SortInterfaceNames orders names by their numeric suffix; names without one
// sort after, alphabetically.
func SortInterfaceNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, iok := interfaceNumber(names[i])
		nj, jok := interfaceNumber(names[j])
		switch {
		case iok && jok:
			if ni != nj {
				return ni < nj
			}
			return names[i] < names[j]
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

func interfaceNumber(name string) (int, bool) {
	if !interfaceNamePattern.MatchString(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil {
		return 0, false
	}
	return n, true
}
