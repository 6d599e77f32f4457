package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("FOO", "")
	if got := GetEnv("FOO", "bar"); got != "bar" {
		t.Fatalf("expected bar, got %s", got)
	}
	t.Setenv("FOO", "baz")
	if got := GetEnv("FOO", "bar"); got != "baz" {
		t.Fatalf("expected baz, got %s", got)
	}
}



func TestGetEnvDuration(t *testing.T) {
	cases := []struct {
		value string
		want  time.Duration
	}{
		{"", 30 * time.Second},
		{"45s", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"10", 10 * time.Second},
		{"-5s", 30 * time.Second},
		{"soon", 30 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("TIMEOUT", tc.value)
		if got := GetEnvDuration("TIMEOUT", 30*time.Second); got != tc.want {
			t.Fatalf("GetEnvDuration(%q) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if GetLogLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level")
	}
	t.Setenv("LOG_LEVEL", "warn")
	if GetLogLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level")
	}
	t.Setenv("LOG_LEVEL", "error")
	if GetLogLevel() != logrus.ErrorLevel {
		t.Fatalf("expected error level")
	}
	t.Setenv("LOG_LEVEL", "")
	if GetLogLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level by default")
	}
}

func TestGetLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "TEXT")
	if GetLogFormat() != "text" {
		t.Fatalf("expected text format")
	}
	t.Setenv("LOG_FORMAT", "")
	if GetLogFormat() != "json" {
		t.Fatalf("expected json by default")
	}
}

func TestLoadEnv_NoFile(t *testing.T) {
	// Should not panic or error; just log debug
	logger := logrus.New()
	LoadEnv(logger)
}

func TestLoadEnv_OverridesFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BOSUN_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("BOSUN_TEST_VALUE", "from-env")

	LoadEnv(nil)

	if got := os.Getenv("BOSUN_TEST_VALUE"); got != "from-file" {
		t.Fatalf("expected .env to override, got %q", got)
	}
}
