// Package app provides configuration management and wiring for the simulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"vdpsim/internal/clock"
	"vdpsim/internal/design"
	"vdpsim/internal/sdram"
	"vdpsim/internal/session"
)

// Environment variables that override the configuration file.
const (
	EnvBackend   = "VDPSIM_BACKEND"
	EnvClockMHz  = "VDPSIM_CLOCK_MHZ"
	EnvMaxFrames = "VDPSIM_MAX_FRAMES"
	EnvTrace     = "VDPSIM_TRACE"
	EnvSDRAMLog  = "VDPSIM_SDRAM_LOG"
)

// Config holds all application configuration
type Config struct {
	Window  WindowConfig  `json:"window"`
	Video   VideoConfig   `json:"video"`
	Clock   ClockConfig   `json:"clock"`
	Design  DesignConfig  `json:"design"`
	SDRAM   SDRAMConfig   `json:"sdram"`
	Session SessionConfig `json:"session"`
	Debug   DebugConfig   `json:"debug"`
	Paths   PathsConfig   `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"` // 0 means the frame size
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend     string   `json:"backend"` // "ebitengine", "sdl", "terminal", "headless"
	VSync       bool     `json:"vsync"`
	Filter      string   `json:"filter"`       // "nearest", "linear"
	AspectRatio string   `json:"aspect_ratio"` // "keep", "stretch"
	RefreshRate int      `json:"refresh_rate"` // terminal pacing
	Brightness  float32  `json:"brightness"`
	Contrast    float32  `json:"contrast"`
	Saturation  float32  `json:"saturation"`
	ShowFPS     bool     `json:"show_fps"`
	Snapshots   []uint64 `json:"snapshot_frames"` // headless only
}

// ClockConfig sets the design clock
type ClockConfig struct {
	MHz float64 `json:"mhz"`
}

// DesignConfig configures the reference video design
type DesignConfig struct {
	// Mode is "720p", "480p" or "custom". Timing is only read in custom mode.
	Mode            string         `json:"mode"`
	Timing          *design.Timing `json:"timing,omitempty"`
	Pattern         string         `json:"pattern"`
	Gamma           bool           `json:"gamma"`
	CASLatency      int            `json:"cas_latency"`
	RefreshInterval int            `json:"refresh_interval"`
	PowerUpCycles   int            `json:"power_up_cycles"`
	Waits           design.Waits   `json:"waits"`
}

// SDRAMConfig configures the memory model
type SDRAMConfig struct {
	RowBits          int    `json:"row_bits"`
	ColBits          int    `json:"col_bits"`
	Banks            int    `json:"banks"`
	DataWidth        int    `json:"data_width"`
	BankInterleaving bool   `json:"bank_interleaving"`
	LogFile          string `json:"log_file"` // empty disables the log
	CommandLog       bool   `json:"command_log"`
}

// SessionConfig configures the session loop
type SessionConfig struct {
	ResetCycles int    `json:"reset_cycles"`
	MaxFrames   uint64 `json:"max_frames"` // 0 runs until the user quits
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	TracePath     string `json:"trace_path"` // empty disables the SQLite trace
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	Snapshots string `json:"snapshots"`
	Config    string `json:"config"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	dc := design.DefaultConfig()
	config := &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
		},
		Video: VideoConfig{
			Backend:     "ebitengine",
			VSync:       true,
			Filter:      "nearest",
			AspectRatio: "keep",
			RefreshRate: 30,
			Brightness:  1.0,
			Contrast:    1.0,
			Saturation:  1.0,
		},
		Clock: ClockConfig{
			MHz: 60,
		},
		Design: DesignConfig{
			Mode:            "720p",
			Pattern:         string(dc.Pattern),
			Gamma:           false,
			CASLatency:      dc.CASLatency,
			RefreshInterval: dc.RefreshInterval,
			PowerUpCycles:   dc.PowerUpCycles,
			Waits:           dc.Waits,
		},
		SDRAM: SDRAMConfig{
			RowBits:          13,
			ColBits:          9,
			Banks:            4,
			DataWidth:        16,
			BankInterleaving: true,
			LogFile:          "sdram_log.txt",
		},
		Session: SessionConfig{
			ResetCycles: session.MinResetCycles,
		},
		Paths: PathsConfig{
			Snapshots: "./screenshots",
			Config:    "./config",
		},
		loaded: false,
	}

	return config
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist - save default config and return
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %v", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %v", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// LoadConfig loads the configuration file at path, writing the defaults
// there if it does not exist, then applies the environment overrides. A
// file that cannot be used is reported and replaced by the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", path, err)
			cfg = NewConfig()
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads .env files, if present, and applies the VDPSIM_*
// overrides. Files that do not exist are skipped.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %v", f, err)
		}
	}

	if v, ok := os.LookupEnv(EnvBackend); ok {
		c.Video.Backend = v
	}
	if v, ok := os.LookupEnv(EnvClockMHz); ok {
		mhz, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &ConfigError{Field: EnvClockMHz, Value: v, Err: err}
		}
		c.Clock.MHz = mhz
	}
	if v, ok := os.LookupEnv(EnvMaxFrames); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &ConfigError{Field: EnvMaxFrames, Value: v, Err: err}
		}
		c.Session.MaxFrames = n
	}
	if v, ok := os.LookupEnv(EnvTrace); ok {
		c.Debug.TracePath = v
	}
	if v, ok := os.LookupEnv(EnvSDRAMLog); ok {
		c.SDRAM.LogFile = v
	}

	return c.validate()
}

// validate repairs soft settings and rejects values the simulation cannot
// run with.
func (c *Config) validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return &ConfigError{Field: "window", Value: fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			Err: fmt.Errorf("invalid window dimensions")}
	}

	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}

	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}

	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if c.Video.RefreshRate <= 0 {
		c.Video.RefreshRate = 30
	}

	if c.Clock.MHz <= 0 {
		return &ConfigError{Field: "clock.mhz", Value: c.Clock.MHz, Err: fmt.Errorf("frequency must be positive")}
	}

	if c.Session.ResetCycles < session.MinResetCycles {
		return &ConfigError{Field: "session.reset_cycles", Value: c.Session.ResetCycles, Err: session.ErrResetTooShort}
	}

	if _, err := c.Timing(); err != nil {
		return &ConfigError{Field: "design.mode", Value: c.Design.Mode, Err: err}
	}

	if _, err := design.ParsePattern(c.Design.Pattern); err != nil {
		return &ConfigError{Field: "design.pattern", Value: c.Design.Pattern, Err: err}
	}

	switch c.SDRAM.DataWidth {
	case 8, 16, 32:
	default:
		return &ConfigError{Field: "sdram.data_width", Value: c.SDRAM.DataWidth, Err: fmt.Errorf("must be 8, 16 or 32")}
	}

	return nil
}

// Timing returns the video mode selected by Design.Mode.
func (c *Config) Timing() (design.Timing, error) {
	switch c.Design.Mode {
	case "720p", "":
		return design.Timing720p, nil
	case "480p":
		return design.Timing480p, nil
	case "custom":
		if c.Design.Timing == nil {
			return design.Timing{}, fmt.Errorf("custom mode needs a timing section")
		}
		return *c.Design.Timing, c.Design.Timing.Validate()
	}
	return design.Timing{}, fmt.Errorf("unknown mode %q", c.Design.Mode)
}

// DesignConfig builds the design configuration.
func (c *Config) DesignConfig() (design.Config, error) {
	t, err := c.Timing()
	if err != nil {
		return design.Config{}, err
	}
	return design.Config{
		Timing:          t,
		Pattern:         design.Pattern(c.Design.Pattern),
		Gamma:           c.Design.Gamma,
		CASLatency:      c.Design.CASLatency,
		RefreshInterval: c.Design.RefreshInterval,
		PowerUpCycles:   c.Design.PowerUpCycles,
		Waits:           c.Design.Waits,
	}, nil
}

// SDRAMBuilder returns a builder for the configured geometry.
func (c *Config) SDRAMBuilder() sdram.Builder {
	return sdram.MakeBuilder().
		WithRowBits(c.SDRAM.RowBits).
		WithColBits(c.SDRAM.ColBits).
		WithBanks(c.SDRAM.Banks).
		WithDataWidth(sdram.DataWidth(c.SDRAM.DataWidth)).
		WithBankInterleaving(c.SDRAM.BankInterleaving).
		WithCommandLog(c.SDRAM.CommandLog)
}

// Frequency returns the design clock.
func (c *Config) Frequency() clock.Freq {
	return clock.Freq(c.Clock.MHz) * clock.MHz
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/vdpsim.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
