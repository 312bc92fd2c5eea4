package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/dartcam/internal/detection"
	"github.com/ironsheep/dartcam/internal/engine"
	"github.com/ironsheep/dartcam/internal/imaging"
	"github.com/ironsheep/dartcam/internal/orient"
	"github.com/ironsheep/dartcam/internal/overlay"
)

// Environment variables read by Load.
const (
	EnvConfig         = "DARTCAM_CONFIG"
	EnvLogLevel       = "DARTCAM_LOG_LEVEL"
	EnvRotationOffset = "DARTCAM_ROTATION_OFFSET"
	EnvCooldownMS     = "DARTCAM_COOLDOWN_MS"
	EnvHitThreshold   = "DARTCAM_HIT_THRESHOLD"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New()

// Config is the full runtime configuration.
type Config struct {
	Mask        imaging.ColorThresholds `json:"mask"`
	Morphology  MorphologyConfig        `json:"morphology"`
	Blob        BlobConfig              `json:"blob"`
	Fit         detection.FitOptions    `json:"fit"`
	Calibration CalibrationConfig       `json:"calibration"`
	Hit         HitConfig               `json:"hit"`
	Engine      EngineConfig            `json:"engine"`
	Orient      OrientConfig            `json:"orient"`
	Overlay     OverlayConfig           `json:"overlay"`
	Log         LogConfig               `json:"log"`
}

// MorphologyConfig sizes the closing kernel applied to the board mask.
type MorphologyConfig struct {
	KernelSize int `json:"kernel_size" validate:"gte=1,lte=31"`
}

// BlobConfig bounds the board component.
type BlobConfig struct {
	MinArea int `json:"min_area" validate:"gte=1"`
}

// CalibrationConfig holds the plausibility checks for a board fit.
type CalibrationConfig struct {
	MaxWidth          int     `json:"max_width" validate:"gte=0"`
	MinAspect         float64 `json:"min_aspect" validate:"gte=0,lte=1"`
	MinRadiusFraction float64 `json:"min_radius_fraction" validate:"gt=0,lt=1"`
	MaxRadiusFraction float64 `json:"max_radius_fraction" validate:"gtfield=MinRadiusFraction,lte=1"`
	MaxCenterOffset   float64 `json:"max_center_offset" validate:"gt=0,lte=0.5"`
	MinQuality        float64 `json:"min_quality" validate:"gte=0,lte=1"`
	Stabilize         bool    `json:"stabilize"`
	Weighted          bool    `json:"weighted"`
}

// HitConfig holds the frame-difference thresholds.
type HitConfig struct {
	Threshold          float64 `json:"threshold" validate:"gt=0,lt=255"`
	MinChangedPixels   int     `json:"min_changed_pixels" validate:"gte=1"`
	MaxChangedFraction float64 `json:"max_changed_fraction" validate:"gt=0,lte=1"`
	Inflate            float64 `json:"inflate" validate:"gte=1,lte=2"`
	MaxRadius          float64 `json:"max_radius" validate:"gte=1,lte=2"`
	NearestFraction    float64 `json:"nearest_fraction" validate:"gt=0,lte=1"`
	MinNearest         int     `json:"min_nearest" validate:"gte=1"`
	BlurRadius         float64 `json:"blur_radius" validate:"gte=0,lte=10"`
}

// EngineConfig holds the scoring engine timing. Durations are in
// milliseconds.
type EngineConfig struct {
	CooldownMS     int     `json:"cooldown_ms" validate:"gte=0"`
	SettleDelayMS  int     `json:"settle_delay_ms" validate:"gte=0"`
	FrameStride    int     `json:"frame_stride" validate:"gte=1"`
	StableFrames   int     `json:"stable_frames" validate:"gte=1,lte=10"`
	IdleRefreshMS  int     `json:"idle_refresh_ms" validate:"gte=0"`
	QueueSize      int     `json:"queue_size" validate:"gte=1"`
	RotationOffset float64 `json:"rotation_offset" validate:"gte=-360,lte=360"`
}

// OrientConfig configures automatic orientation.
type OrientConfig struct {
	orient.Config
	Enabled        bool   `json:"enabled"`
	Language       string `json:"language" validate:"required"`
	TessdataPrefix string `json:"tessdata_prefix"`
}

// OverlayConfig holds debug overlay colors as "#RRGGBB" or "#RRGGBBAA".
type OverlayConfig struct {
	Ring  string `json:"ring"`
	Spoke string `json:"spoke"`
	Mark  string `json:"mark"`
}

// LogConfig configures logging. An empty File logs to stderr.
type LogConfig struct {
	Level      string `json:"level" validate:"oneof=debug info warn error"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days" validate:"gte=0"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	cal := detection.DefaultCalibrationConfig()
	hit := detection.DefaultHitConfig()
	eng := engine.DefaultConfig()
	return &Config{
		Mask:       cal.Colors,
		Morphology: MorphologyConfig{KernelSize: cal.KernelSize},
		Blob:       BlobConfig{MinArea: cal.MinBlobArea},
		Fit: detection.FitOptions{
			Method:     detection.FitPercentile,
			MaxPoints:  detection.DefaultMaxFitPoints,
			Percentile: detection.DefaultFitPercentile,
		},
		Calibration: CalibrationConfig{
			MaxWidth:          cal.MaxWidth,
			MinAspect:         cal.MinAspect,
			MinRadiusFraction: cal.MinRadiusFraction,
			MaxRadiusFraction: cal.MaxRadiusFraction,
			MaxCenterOffset:   cal.MaxCenterOffset,
			MinQuality:        cal.MinQuality,
			Stabilize:         cal.Stabilize,
			Weighted:          cal.Weighted,
		},
		Hit: HitConfig{
			Threshold:          hit.Threshold,
			MinChangedPixels:   hit.MinChangedPixels,
			MaxChangedFraction: hit.MaxChangedFraction,
			Inflate:            hit.Inflate,
			MaxRadius:          hit.MaxRadius,
			NearestFraction:    hit.NearestFraction,
			MinNearest:         hit.MinNearest,
			BlurRadius:         hit.BlurRadius,
		},
		Engine: EngineConfig{
			CooldownMS:    int(eng.Cooldown / time.Millisecond),
			SettleDelayMS: int(eng.SettleDelay / time.Millisecond),
			FrameStride:   eng.FrameStride,
			StableFrames:  eng.StableFrames,
			IdleRefreshMS: int(eng.IdleRefresh / time.Millisecond),
			QueueSize:     eng.QueueSize,
		},
		Orient: OrientConfig{
			Config:   orient.DefaultConfig(),
			Language: "eng",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate normalizes soft values, then checks every field against its
// constraints.
func (c *Config) Validate() error {
	if c.Morphology.KernelSize < 1 {
		c.Morphology.KernelSize = imaging.DefaultKernelSize
	}
	if c.Morphology.KernelSize%2 == 0 {
		c.Morphology.KernelSize++
	}
	if c.Engine.FrameStride < 1 {
		c.Engine.FrameStride = 1
	}
	if c.Engine.QueueSize < 1 {
		c.Engine.QueueSize = 1
	}
	if c.Hit.MinNearest < 1 {
		c.Hit.MinNearest = 1
	}
	if c.Fit.Method == "" {
		c.Fit.Method = detection.FitPercentile
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.OverlayStyle(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads configuration from the JSON file at path, applies DARTCAM_*
// environment overrides and validates the result. A missing file yields the
// defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
// With no paths, ".env" in the working directory is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvRotationOffset); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRotationOffset, err)
		}
		c.Engine.RotationOffset = f
	}
	if v, ok := os.LookupEnv(EnvCooldownMS); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCooldownMS, err)
		}
		c.Engine.CooldownMS = n
	}
	if v, ok := os.LookupEnv(EnvHitThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHitThreshold, err)
		}
		c.Hit.Threshold = f
	}
	return nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// CalibrationConfig returns the calibrator settings.
func (c *Config) CalibrationConfig() detection.CalibrationConfig {
	return detection.CalibrationConfig{
		Colors:            c.Mask,
		KernelSize:        c.Morphology.KernelSize,
		MinBlobArea:       c.Blob.MinArea,
		Fit:               c.Fit,
		MaxWidth:          c.Calibration.MaxWidth,
		MinAspect:         c.Calibration.MinAspect,
		MinRadiusFraction: c.Calibration.MinRadiusFraction,
		MaxRadiusFraction: c.Calibration.MaxRadiusFraction,
		MaxCenterOffset:   c.Calibration.MaxCenterOffset,
		MinQuality:        c.Calibration.MinQuality,
		Stabilize:         c.Calibration.Stabilize,
		Weighted:          c.Calibration.Weighted,
	}
}

// HitConfig returns the hit detector settings.
func (c *Config) HitConfig() detection.HitConfig {
	return detection.HitConfig{
		Threshold:          c.Hit.Threshold,
		MinChangedPixels:   c.Hit.MinChangedPixels,
		MaxChangedFraction: c.Hit.MaxChangedFraction,
		Inflate:            c.Hit.Inflate,
		MaxRadius:          c.Hit.MaxRadius,
		NearestFraction:    c.Hit.NearestFraction,
		MinNearest:         c.Hit.MinNearest,
		BlurRadius:         c.Hit.BlurRadius,
	}
}

// EngineConfig returns the engine timing.
func (c *Config) EngineConfig() engine.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return engine.Config{
		Cooldown:     ms(c.Engine.CooldownMS),
		SettleDelay:  ms(c.Engine.SettleDelayMS),
		FrameStride:  c.Engine.FrameStride,
		StableFrames: c.Engine.StableFrames,
		IdleRefresh:  ms(c.Engine.IdleRefreshMS),
		QueueSize:    c.Engine.QueueSize,

		RotationOffset: c.Engine.RotationOffset,
	}
}

// OverlayStyle parses the overlay colors.
func (c *Config) OverlayStyle() (overlay.Style, error) {
	return overlay.ParseStyle(c.Overlay.Ring, c.Overlay.Spoke, c.Overlay.Mark)
}

// LogLevel returns the slog level for Log.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
