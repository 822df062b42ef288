package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RenderScale != 1 || cfg.Graphics.SampleCount != 4 || !cfg.Graphics.VSync {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	cfg := Default()
	cfg.RenderScale = 0.5
	cfg.Graphics.SampleCount = 8
	cfg.Window.Fullscreen = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RenderScale != 0.5 || got.Graphics.SampleCount != 8 || !got.Window.Fullscreen {
		t.Errorf("got %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nrender_scale: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RenderScale != 1.5 {
		t.Errorf("render scale got %v, want 1.5", cfg.RenderScale)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("window width got %v, want 1280", cfg.Window.Width)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.RenderScale = 10
	cfg.Graphics.SampleCount = 3
	cfg.Normalize()
	if cfg.RenderScale != 2 {
		t.Errorf("render scale got %v, want 2", cfg.RenderScale)
	}
	if cfg.Graphics.SampleCount != 4 {
		t.Errorf("sample count got %v, want 4", cfg.Graphics.SampleCount)
	}
}

func TestOffscreenSize(t *testing.T) {
	cfg := Default()
	cfg.RenderScale = 0.5
	w, h := cfg.OffscreenSize(1280, 720)
	if w != 640 || h != 360 {
		t.Errorf("got %dx%d, want 640x360", w, h)
	}
	if w, h := cfg.OffscreenSize(0, 0); w != 1 || h != 1 {
		t.Errorf("got %dx%d, want 1x1", w, h)
	}
}

func TestTerrainsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := "version: 1\ndata_dir: assets\nterrains:\n  - grid_x: 1\n    heightmap: hills\n  - grid_z: 2\n    heightmap: plains\n    blend_map: plainsBlend\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "assets" {
		t.Errorf("got data dir %q, want %q", cfg.DataDir, "assets")
	}
	if len(cfg.Terrains) != 2 {
		t.Fatalf("got %d terrains, want 2", len(cfg.Terrains))
	}
	if tr := cfg.Terrains[1]; tr.GridZ != 2 || tr.Heightmap != "plains" || tr.BlendMap != "plainsBlend" {
		t.Errorf("got terrain %+v", tr)
	}
}

func TestDefaultTerrain(t *testing.T) {
	cfg := Default()
	if len(cfg.Terrains) != 1 || cfg.Terrains[0].Heightmap == "" || cfg.DataDir == "" {
		t.Errorf("got terrains %+v in %q", cfg.Terrains, cfg.DataDir)
	}
}
