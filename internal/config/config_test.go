package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/tlvf/internal/logging"
	"github.com/danmuck/tlvf/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tlvctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)

	path := writeConfig(t, `
[log]
level = "debug"
timestamp = false

[codec]
max_capacity = 4096
strict_types = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Timestamp {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Codec.CapacityHint != 256 {
		t.Fatalf("capacity hint default lost: %d", cfg.Codec.CapacityHint)
	}
	if cfg.Codec.MaxCapacity != 4096 || !cfg.Codec.StrictTypes {
		t.Fatalf("unexpected codec config: %+v", cfg.Codec)
	}
	limits := cfg.Limits()
	if limits.CapacityHint != 256 || limits.MaxCapacity != 4096 {
		t.Fatalf("unexpected limits: %+v", limits)
	}
}

func TestLoadHonoursExplicitZero(t *testing.T) {
	testlog.Start(t)

	cfg, err := Load(writeConfig(t, "[codec]\nmax_capacity = 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Codec.MaxCapacity != 0 {
		t.Fatalf("max capacity=%d want 0 (unbounded)", cfg.Codec.MaxCapacity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)

	cases := map[string]string{
		"bad level":     "[log]\nlevel = \"loud\"\n",
		"negative hint": "[codec]\ncapacity_hint = -1\n",
		"hint over max": "[codec]\ncapacity_hint = 4096\nmax_capacity = 1024\n",
		"bad toml":      "[codec\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "tlvctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second write err=%v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("template does not load as defaults: %+v", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if err := CheckStrict(data); err != nil {
		t.Fatalf("strict check: %v", err)
	}
}

func TestCheckStrictRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)

	body := "[codec]\nmax_capacity = 2048\nmax_capacty = 1\n"
	if err := CheckStrict([]byte(body)); err == nil {
		t.Fatal("expected unknown key error")
	}
	if _, err := Load(writeConfig(t, body)); err != nil {
		t.Fatalf("load should only warn: %v", err)
	}
}

func TestApplyLogging(t *testing.T) {
	testlog.Start(t)

	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Log.NoColor = true
	lc := logging.Config{Level: zerolog.InfoLevel}
	cfg.ApplyLogging(&lc)
	if lc.Level != zerolog.WarnLevel || !lc.NoColor || !lc.Timestamp {
		t.Fatalf("unexpected logger config: %+v", lc)
	}
}
