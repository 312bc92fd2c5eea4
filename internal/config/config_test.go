package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/dartcam/internal/detection"
	"github.com/ironsheep/dartcam/internal/engine"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got, want := cfg.EngineConfig(), engine.DefaultConfig(); got != want {
		t.Errorf("EngineConfig = %+v, want %+v", got, want)
	}
	if got, want := cfg.HitConfig(), detection.DefaultHitConfig(); got != want {
		t.Errorf("HitConfig = %+v, want %+v", got, want)
	}
	cal := cfg.CalibrationConfig()
	def := detection.DefaultCalibrationConfig()
	if cal.Colors != def.Colors || cal.KernelSize != def.KernelSize || cal.MinQuality != def.MinQuality {
		t.Errorf("CalibrationConfig = %+v, want %+v", cal, def)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hit.Threshold != DefaultConfig().Hit.Threshold {
		t.Errorf("threshold = %v", cfg.Hit.Threshold)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dartcam.json")
	data := `{"hit": {"threshold": 40}, "engine": {"cooldown_ms": 500}, "morphology": {"kernel_size": 4}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hit.Threshold != 40 {
		t.Errorf("threshold = %v, want 40", cfg.Hit.Threshold)
	}
	if cfg.Hit.MinChangedPixels != DefaultConfig().Hit.MinChangedPixels {
		t.Errorf("unset field lost its default: %d", cfg.Hit.MinChangedPixels)
	}
	if cfg.EngineConfig().Cooldown != 500*time.Millisecond {
		t.Errorf("cooldown = %v", cfg.EngineConfig().Cooldown)
	}
	if cfg.Morphology.KernelSize != 5 {
		t.Errorf("even kernel should be made odd, got %d", cfg.Morphology.KernelSize)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"hit": `},
		{"threshold out of range", `{"hit": {"threshold": 300}}`},
		{"radius fractions inverted", `{"calibration": {"min_radius_fraction": 0.4, "max_radius_fraction": 0.2}}`},
		{"unknown fit method", `{"fit": {"method": "hough"}}`},
		{"bad log level", `{"log": {"level": "loud"}}`},
		{"bad overlay color", `{"overlay": {"ring": "#12"}}`},
		{"orient min matches", `{"orient": {"min_matches": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvRotationOffset, "18")
	t.Setenv(EnvCooldownMS, "750")
	t.Setenv(EnvHitThreshold, "33.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.LogLevel())
	}
	if cfg.Engine.RotationOffset != 18 {
		t.Errorf("rotation offset = %v", cfg.Engine.RotationOffset)
	}
	if cfg.Engine.CooldownMS != 750 {
		t.Errorf("cooldown = %d", cfg.Engine.CooldownMS)
	}
	if cfg.Hit.Threshold != 33.5 {
		t.Errorf("threshold = %v", cfg.Hit.Threshold)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv(EnvCooldownMS, "soon")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), EnvCooldownMS) {
		t.Errorf("err = %v, want mention of %s", err, EnvCooldownMS)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DARTCAM_HIT_THRESHOLD=44\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Registers cleanup; godotenv.Load does not override set variables.
	t.Setenv(EnvHitThreshold, "")
	os.Unsetenv(EnvHitThreshold)

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvHitThreshold); got != "44" {
		t.Errorf("%s = %q, want 44", EnvHitThreshold, got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := DefaultConfig()
	cfg.Hit.BlurRadius = 1.5
	cfg.Orient.MinMatches = 4
	cfg.Overlay.Ring = "#FF000080"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"min_matches": 4`) {
		t.Errorf("embedded orient settings not flattened:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Hit.BlurRadius != 1.5 || loaded.Orient.MinMatches != 4 {
		t.Errorf("loaded = %+v", loaded)
	}
	style, err := loaded.OverlayStyle()
	if err != nil {
		t.Fatal(err)
	}
	if style.Ring.A != 0x80 {
		t.Errorf("ring alpha = %d", style.Ring.A)
	}
}
