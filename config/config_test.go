package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Game.InitialLives != 3 {
		t.Errorf("InitialLives = %d, want 3", cfg.Game.InitialLives)
	}
	if cfg.Hazard.SpawnIntervalMs != 800 {
		t.Errorf("Hazard.SpawnIntervalMs = %v, want 800", cfg.Hazard.SpawnIntervalMs)
	}
	if cfg.Bonus.SpawnIntervalMs != 2000 {
		t.Errorf("Bonus.SpawnIntervalMs = %v, want 2000", cfg.Bonus.SpawnIntervalMs)
	}
	if cfg.Reward.Decimals != 9 {
		t.Errorf("Reward.Decimals = %d, want 9", cfg.Reward.Decimals)
	}
	if cfg.Wallet.RequestTimeout != 30*time.Second {
		t.Errorf("Wallet.RequestTimeout = %v, want 30s", cfg.Wallet.RequestTimeout)
	}

	wantY := float32(cfg.Screen.Height) - 50 - 50
	if cfg.Derived.PlayerY != wantY {
		t.Errorf("Derived.PlayerY = %v, want %v", cfg.Derived.PlayerY, wantY)
	}
	if cfg.Derived.FrameMs < 16.66 || cfg.Derived.FrameMs > 16.67 {
		t.Errorf("Derived.FrameMs = %v, want ~16.667", cfg.Derived.FrameMs)
	}
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("game:\n  initial_lives: 5\nscreen:\n  width: 600\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Game.InitialLives != 5 {
		t.Errorf("InitialLives = %d, want 5", cfg.Game.InitialLives)
	}
	if cfg.Screen.Width != 600 {
		t.Errorf("Screen.Width = %d, want 600", cfg.Screen.Width)
	}
	// untouched keys keep their defaults
	if cfg.Screen.Height != 800 {
		t.Errorf("Screen.Height = %d, want 800", cfg.Screen.Height)
	}
	if cfg.Derived.ScreenW32 != 600 {
		t.Errorf("Derived.ScreenW32 = %v, want 600", cfg.Derived.ScreenW32)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero lives", "game:\n  initial_lives: 0\n"},
		{"negative width", "screen:\n  width: -1\n"},
		{"player wider than screen", "player:\n  width: 5000\n"},
		{"zero ramp interval", "hazard:\n  ramp_interval: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Bonus.Points = 25

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot error: %v", err)
	}
	if loaded.Bonus.Points != 25 {
		t.Errorf("Bonus.Points = %d, want 25", loaded.Bonus.Points)
	}
}
