// Package wgconf rewrites user-supplied WireGuard configs before they are
// written under the tunnel config directory.
//
// Only the first [Interface] section is touched: DNS directives are removed
// (bosun never lets wg-quick rewrite resolv.conf) and Table=off is added so
// bringing a tunnel up never replaces the host default route. Peer sections
// and everything outside [Interface] are preserved byte for byte.
package wgconf

import (
	"runtime"
	"strings"
)

// EscapedNewline is the two-character sequence some clients send instead of
// a real line break.
const EscapedNewline = `\n`

// TableOff is the directive inserted into [Interface].
const TableOff = "Table=off"

// LineSeparator is the platform line separator configs are normalized to.
var LineSeparator = lineSeparator()

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Normalize converts escaped newlines to real ones and then converts line
// breaks to LineSeparator. Apply it once per pipeline: a second pass on
// already normalized text is a no-op, but StripDNS and DisableRoutingTable do
// not call it themselves.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, EscapedNewline, "\n")
	if LineSeparator == "\n" {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", LineSeparator)
}

// Transform is the full pipeline applied to every config bosun persists.
func Transform(text string) string {
	return DisableRoutingTable(StripDNS(Normalize(text)))
}

// StripDNS removes every DNS directive from the first [Interface] section.
// Text without an [Interface] section is returned unchanged.
func StripDNS(text string) string {
	d := Parse(text)
	iface, ok := d.Interface()
	if !ok {
		return text
	}

	kept := make([]string, 0, len(d.lines))
	kept = append(kept, d.lines[:iface.Start+1]...)
	removed := 0
	for _, line := range d.lines[iface.Start+1 : iface.End] {
		if key, _, ok := directive(line); ok && strings.EqualFold(key, "DNS") {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return text
	}
	kept = append(kept, d.lines[iface.End:]...)
	return strings.Join(kept, "\n")
}

// DisableRoutingTable appends Table=off and a blank line to the first
// [Interface] section, just before the next section header. Trailing blank
// lines of the section collapse into that single blank line. A section that
// already carries Table=off is left untouched, so the operation is idempotent.
func DisableRoutingTable(text string) string {
	d := Parse(text)
	iface, ok := d.Interface()
	if !ok || hasTableOff(d, iface) {
		return text
	}

	last := iface.End - 1
	for last > iface.Start && isBlank(d.lines[last]) {
		last--
	}

	// Match the line ending already used by the section.
	cr := ""
	if strings.HasSuffix(d.lines[last], "\r") {
		cr = "\r"
	}

	out := make([]string, 0, len(d.lines)+3)
	out = append(out, d.lines[:last+1]...)
	out = append(out, TableOff+cr, cr)
	if iface.End == len(d.lines) {
		out = append(out, "")
	} else {
		out = append(out, d.lines[iface.End:]...)
	}
	return strings.Join(out, "\n")
}

// HasTableOff reports whether the first [Interface] section disables the routing table.
func HasTableOff(text string) bool {
	d := Parse(text)
	iface, ok := d.Interface()
	return ok && hasTableOff(d, iface)
}

// HasDNS reports whether the first [Interface] section carries a DNS directive.
func HasDNS(text string) bool {
	d := Parse(text)
	iface, ok := d.Interface()
	if !ok {
		return false
	}
	for _, line := range d.lines[iface.Start+1 : iface.End] {
		if key, _, ok := directive(line); ok && strings.EqualFold(key, "DNS") {
			return true
		}
	}
	return false
}

func hasTableOff(d *Document, iface Section) bool {
	for _, line := range d.lines[iface.Start+1 : iface.End] {
		key, value, ok := directive(line)
		if ok && strings.EqualFold(key, "Table") && strings.EqualFold(value, "off") {
			return true
		}
	}
	return false
}
