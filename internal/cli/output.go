package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func validOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// printer renders one result per command. Structured formats get v,
// text gets whatever the text callback writes.
type printer struct {
	w      io.Writer
	format string
}

func (p printer) print(v interface{}, text func(w io.Writer)) error {
	switch p.format {
	case OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(p.w)
		return nil
	}
}

func (p printer) success(format string, args ...interface{}) {
	successColor.Fprintf(p.w, "✓ "+format+"\n", args...)
}

func (p printer) warning(format string, args ...interface{}) {
	warningColor.Fprintf(p.w, "! "+format+"\n", args...)
}

// PrintError writes err to w the way bosunctl reports failures.
func PrintError(w io.Writer, err error) {
	errorColor.Fprintf(w, "Error: %v\n", err)
}

// result is the structured form of a message-only command.
type result struct {
	Status  string      `json:"status" yaml:"status"`
	Message string      `json:"message" yaml:"message"`
	Data    interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

func (p printer) status(status, message string, data interface{}) error {
	return p.print(result{Status: status, Message: message, Data: data}, func(io.Writer) {
		if status == "warning" {
			p.warning("%s", message)
			return
		}
		p.success("%s", message)
	})
}
