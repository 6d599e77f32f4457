package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerWithService(t *testing.T) {
	l := NewLoggerWithService("svc-a")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("k", "v").Info("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if line["service"] != "svc-a" {
		t.Fatalf("expected service field, got %v", line["service"])
	}
	if line["k"] != "v" {
		t.Fatalf("expected k=v, got %v", line["k"])
	}
}

func TestNewLoggerTextFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	l := NewLogger()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Info("plain")
	if json.Valid(buf.Bytes()) {
		t.Fatalf("expected text output, got json: %q", buf.String())
	}
}
