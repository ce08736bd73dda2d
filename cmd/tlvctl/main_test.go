package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/tlvf/internal/testutil/testlog"
)

func TestEncodeThenDecodeWsc(t *testing.T) {
	testlog.Start(t)

	var out bytes.Buffer
	if err := run([]string{"-encode-wsc", "10 4a 00 01 10", "-mid", "42"}, &out); err != nil {
		t.Fatalf("encode: %v", err)
	}
	encoded := strings.TrimSpace(out.String())
	want := "0000000900" + "2a" + "0080" + "11000510" + "4a000110" + "000000"
	if encoded != want {
		t.Fatalf("encoded=%s want %s", encoded, want)
	}

	out.Reset()
	if err := run([]string{"-decode", encoded}, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := out.String()
	for _, line := range []string{
		"AP_AUTOCONFIGURATION_WSC mid=42 fragment=0 flags=0x80",
		"[0] TLV_WSC len=5 value=104a000110",
		"[1] TLV_END_OF_MESSAGE len=0",
	} {
		if !strings.Contains(got, line) {
			t.Fatalf("decode output missing %q:\n%s", line, got)
		}
	}
}

func TestDecodeStrictTypesFromConfig(t *testing.T) {
	testlog.Start(t)

	msg := "000000020001008077000100000000"
	var out bytes.Buffer
	if err := run([]string{"-decode", msg}, &out); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if !strings.Contains(out.String(), "TLV_UNKNOWN(0x77)") {
		t.Fatalf("unknown tlv not shown:\n%s", out.String())
	}

	path := filepath.Join(t.TempDir(), "strict.toml")
	if err := os.WriteFile(path, []byte("[codec]\nstrict_types = true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run([]string{"-config", path, "-decode", msg}, &out); err == nil {
		t.Fatal("strict decode accepted unknown type")
	}
}

func TestInitAndValidate(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "tlvctl.toml")
	var out bytes.Buffer
	if err := run([]string{"-init", path}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run([]string{"-validate", path}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), path+": ok") {
		t.Fatalf("validate output: %q", out.String())
	}
}

func TestMetricsAndModes(t *testing.T) {
	testlog.Start(t)

	var out bytes.Buffer
	if err := run(nil, &out); !errors.Is(err, errNoMode) {
		t.Fatalf("no mode err=%v", err)
	}
	if err := run([]string{"-decode", "zz"}, &out); err == nil {
		t.Fatal("bad hex accepted")
	}
	out.Reset()
	if err := run([]string{"-encode-wsc", "01", "-metrics"}, &out); err != nil {
		t.Fatalf("encode with metrics: %v", err)
	}
	if !strings.Contains(out.String(), `tlvf_codec_finalize_total{layout="cmdu",result="ok"}`) {
		t.Fatalf("metrics missing finalize counter:\n%s", out.String())
	}
}
