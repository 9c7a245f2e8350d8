package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseValidConfig(t *testing.T) {
	raw := []byte(`repos:
  - name: base
    baseurl: https://example.com/os/x86_64
    gpgkey: https://example.com/RPM-GPG-KEY
  - name: updates
    baseurl: /srv/mirror/updates
`)
	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(cfg.Repos))
	}
	if cfg.Repos[0].Name != "base" || cfg.Repos[0].GPGKey == "" {
		t.Errorf("unexpected first repo %+v", cfg.Repos[0])
	}
	if cfg.Repos[1].BaseURL != "/srv/mirror/updates" {
		t.Errorf("unexpected second repo %+v", cfg.Repos[1])
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing repos key", "foo: bar\n"},
		{"repo without name", "repos:\n  - baseurl: https://example.com\n"},
		{"repo without baseurl", "repos:\n  - name: base\n"},
		{"unknown repo field", "repos:\n  - name: base\n    baseurl: x\n    mirror: y\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.yaml")
	data := "repos:\n  - name: base\n    baseurl: https://example.com\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Repos) != 1 || cfg.Repos[0].Name != "base" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
