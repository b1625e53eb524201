package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cartforge/cartforge"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "cartforge.toml"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadOverlaysSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartforge.toml")
	body := "cache_root = \"/var/cache/cartforge\"\nfetch_window = \"15m\"\nvcs_concurrency = 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheRoot != "/var/cache/cartforge" {
		t.Errorf("CacheRoot = %q", cfg.CacheRoot)
	}
	if cfg.FetchWindow != 15*time.Minute {
		t.Errorf("FetchWindow = %v", cfg.FetchWindow)
	}
	if cfg.VCSConcurrency != 2 {
		t.Errorf("VCSConcurrency = %d", cfg.VCSConcurrency)
	}
}

func TestLoadPartialOverlayKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartforge.toml")
	if err := os.WriteFile(path, []byte("vcs_concurrency = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VCSConcurrency != 8 {
		t.Errorf("VCSConcurrency = %d", cfg.VCSConcurrency)
	}
	if cfg.CacheRoot != Default().CacheRoot {
		t.Errorf("CacheRoot = %q, want default", cfg.CacheRoot)
	}
}

func TestLoadInvalidTypeIsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartforge.toml")
	if err := os.WriteFile(path, []byte("vcs_concurrency = \"not a number\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for a non-integer vcs_concurrency")
	}
	if ce, ok := cartforge.AsError(err); !ok || ce.Kind != cartforge.ParseError {
		t.Errorf("error = %v, want a cartforge.ParseError", err)
	}
}
