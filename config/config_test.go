package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Browser.SlotsPerPage != 25 || cfg.Browser.PollBudget != 500 {
		t.Errorf("browser defaults = %+v", cfg.Browser)
	}
	if !cfg.Browser.HeadlessEnabled() {
		t.Error("headless should default to true")
	}
	if cfg.Database.Path == "" {
		t.Error("database path default missing")
	}
}

func TestLoadFile_OverridesAndPartialDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distiller.yaml")
	doc := `
server:
  port: "9090"
  gen_file: /srv/gen19.txt
browser:
  headless: false
  poll_interval: 250ms
database:
  path: /var/lib/distiller/distiller.db
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.GenFile != "/srv/gen19.txt" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Browser.HeadlessEnabled() {
		t.Error("explicit headless: false ignored")
	}
	if cfg.Browser.PollInterval != 250*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Browser.PollInterval)
	}
	// Unset fields still pick up defaults.
	if cfg.Browser.SlotsPerPage != 25 {
		t.Errorf("slots_per_page = %d", cfg.Browser.SlotsPerPage)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
