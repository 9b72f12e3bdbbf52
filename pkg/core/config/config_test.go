package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.DatabasePath != "bendcalc.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9000\"\ndatabase_path: custom.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BENDCALC_DB", "env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.DatabasePath != "env.db" {
		t.Errorf("env must override the file, got %q", cfg.DatabasePath)
	}
	if cfg.CachePath != "fingerprints.msgpack" {
		t.Errorf("unset field must keep its default, got %q", cfg.CachePath)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML must fail")
	}
}

func TestWindowRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.json")

	if got := LoadWindow(path); got != DefaultWindow() {
		t.Errorf("missing file = %+v, want defaults", got)
	}

	w := Window{X: 10, Y: 20, Width: 1024, Height: 768}
	if err := SaveWindow(path, w); err != nil {
		t.Fatal(err)
	}
	if got := LoadWindow(path); got != w {
		t.Errorf("round trip = %+v, want %+v", got, w)
	}
}

func TestWindowRejectsDegenerateGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.json")
	if err := os.WriteFile(path, []byte(`{"x":5,"y":5,"width":0,"height":-1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LoadWindow(path); got != DefaultWindow() {
		t.Errorf("degenerate geometry = %+v, want defaults", got)
	}
}

func TestLoadKTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ktable.hjson")
	content := `{
  # calibrated on the 110t brake
  0.5: 0.36
  1.0: 0.42
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadKTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 2 || table[0.5] != 0.36 || table[1.0] != 0.42 {
		t.Errorf("table = %v", table)
	}
}

func TestLoadKTableMissingFile(t *testing.T) {
	table, err := LoadKTable(filepath.Join(t.TempDir(), "nope.hjson"))
	if err != nil || table != nil {
		t.Errorf("table=%v err=%v, want nil, nil", table, err)
	}
}

func TestLoadKTableRejectsBadRatio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ktable.hjson")
	if err := os.WriteFile(path, []byte(`{ fino: 0.3 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKTable(path); err == nil {
		t.Error("non-numeric ratio must fail")
	}
}
