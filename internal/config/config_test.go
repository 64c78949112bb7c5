package config

import (
	"strings"
	"testing"
)

func TestPlausible(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"short", false},
		{strings.Repeat("x", 19), false},
		{strings.Repeat("x", 20), true},
		{"AIzaSyA-very-long-looking-key-0123456789", true},
	}
	for _, tc := range cases {
		if got := Plausible(tc.key); got != tc.want {
			t.Errorf("Plausible(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestCredentialFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", strings.Repeat("k", 32))
	key, ok := CredentialFromEnv("gemini")
	if !ok || key != strings.Repeat("k", 32) {
		t.Errorf("expected configured gemini key, got %q ok=%v", key, ok)
	}

	t.Setenv("GEMINI_API_KEY", "too-short")
	if _, ok := CredentialFromEnv(""); ok {
		t.Error("short key must read as not configured")
	}

	if _, ok := CredentialFromEnv("unknown-provider"); ok {
		t.Error("unknown provider must read as not configured")
	}
}

func TestModesCoverNames(t *testing.T) {
	for _, name := range ModeNames {
		if _, ok := Modes[name]; !ok {
			t.Errorf("mode name %q missing from Modes map", name)
		}
	}
	if _, ok := Modes[DefaultMode]; !ok {
		t.Errorf("default mode %q missing from Modes map", DefaultMode)
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManagerAt(t.TempDir())

	if m.Exists() {
		t.Fatal("fresh manager must not report an existing config")
	}

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load of missing config must not fail: %v", err)
	}
	if cfg.Provider != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}

	want := &Config{Provider: "gemini", Mode: "Powerful Mode", HistoryBackend: "sqlite"}
	if err := m.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !m.Exists() {
		t.Error("Exists must report true after Save")
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}
