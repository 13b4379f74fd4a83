// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Player    PlayerConfig    `yaml:"player"`
	Hazard    HazardConfig    `yaml:"hazard"`
	Bonus     BonusConfig     `yaml:"bonus"`
	Game      GameConfig      `yaml:"game"`
	Reward    RewardConfig    `yaml:"reward"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Storage   StorageConfig   `yaml:"storage"`
	Effects   EffectsConfig   `yaml:"effects"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Autopilot AutopilotConfig `yaml:"autopilot"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// PlayerConfig holds the player rectangle and movement parameters.
type PlayerConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Speed        float64 `yaml:"speed"`         // keyboard step, pixels per frame
	BottomMargin float64 `yaml:"bottom_margin"` // gap below the player
}

// HazardConfig holds falling hazard parameters.
type HazardConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	InitialSpeed    float64 `yaml:"initial_speed"`   // pixels per frame
	SpeedIncrement  float64 `yaml:"speed_increment"` // added per ramp step
	RampInterval    float64 `yaml:"ramp_interval"`   // seconds per ramp step
	SpawnIntervalMs float64 `yaml:"spawn_interval_ms"`
}

// BonusConfig holds falling coin parameters.
type BonusConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Speed           float64 `yaml:"speed"`
	SpawnIntervalMs float64 `yaml:"spawn_interval_ms"`
	Points          int     `yaml:"points"`
}

// GameConfig holds run-level rules.
type GameConfig struct {
	InitialLives            int     `yaml:"initial_lives"`
	SurvivalPointsPerSecond float64 `yaml:"survival_points_per_second"`
	SpawnY                  float64 `yaml:"spawn_y"`
	FrameRate               float64 `yaml:"frame_rate"`
	MaxStepMs               float64 `yaml:"max_step_ms"`
}

// RewardConfig holds token reward parameters.
type RewardConfig struct {
	TokensPer10Coins int    `yaml:"tokens_per_10_coins"`
	Decimals         uint8  `yaml:"decimals"`
	Network          string `yaml:"network"`
	RPCURL           string `yaml:"rpc_url"`
	TokenConfigPath  string `yaml:"token_config_path"`
	KeypairPath      string `yaml:"keypair_path"`
	ClaimURL         string `yaml:"claim_url"`
	ExplorerURL      string `yaml:"explorer_url"` // printf pattern taking the signature
}

// WalletConfig selects how a wallet address is obtained.
type WalletConfig struct {
	Address        string        `yaml:"address"`
	KeypairPath    string        `yaml:"keypair_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EffectsConfig holds particle effect limits.
type EffectsConfig struct {
	MaxParticles int `yaml:"max_particles"`
	HazardBurst  int `yaml:"hazard_burst"`
	BonusBurst   int `yaml:"bonus_burst"`
}

// TelemetryConfig holds run history and perf sampling parameters.
type TelemetryConfig struct {
	HistoryFile     string  `yaml:"history_file"`
	PerfWindow      int     `yaml:"perf_window"`
	PerfLogInterval float64 `yaml:"perf_log_interval"`
}

// AutopilotConfig weights the lane scoring used by headless runs.
type AutopilotConfig struct {
	Lookahead     float64 `yaml:"lookahead"` // pixels above the player considered
	Lanes         int     `yaml:"lanes"`
	HazardCost    float64 `yaml:"hazard_cost"`
	BonusReward   float64 `yaml:"bonus_reward"`
	MoveCost      float64 `yaml:"move_cost"`      // per pixel of travel
	HazardPadding float64 `yaml:"hazard_padding"` // fraction of player width
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	PlayerY   float32 // fixed player top edge
	FrameMs   float64 // milliseconds per reference frame
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if float64(c.Screen.Width) < c.Player.Width {
		return fmt.Errorf("player width %.0f exceeds screen width %d", c.Player.Width, c.Screen.Width)
	}
	if c.Game.InitialLives <= 0 {
		return fmt.Errorf("initial_lives must be positive, got %d", c.Game.InitialLives)
	}
	if c.Game.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %v", c.Game.FrameRate)
	}
	if c.Hazard.RampInterval <= 0 {
		return fmt.Errorf("hazard ramp_interval must be positive, got %v", c.Hazard.RampInterval)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.PlayerY = float32(float64(c.Screen.Height) - c.Player.Height - c.Player.BottomMargin)
	c.Derived.FrameMs = 1000 / c.Game.FrameRate
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
