package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/codefionn/hlbridge/internal/consts"
	"github.com/codefionn/hlbridge/internal/logger"
	"github.com/codefionn/hlbridge/internal/render"
)

// EnvPrefix prefixes every environment override, e.g. HLBRIDGE_LOG_LEVEL.
const EnvPrefix = "HLBRIDGE"

// EnvConfigPath names the variable holding an explicit config file path.
const EnvConfigPath = EnvPrefix + "_CONFIG"

// RenderConfig holds HTML rendering and render cache settings
type RenderConfig struct {
	TabWidth        int           `json:"tab_width" yaml:"tab_width" mapstructure:"tab_width"`
	LineNumbers     bool          `json:"line_numbers" yaml:"line_numbers" mapstructure:"line_numbers"`
	MaxEntries      int           `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`                // 0 disables the cache
	CacheTTL        time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`                      // "5m", "1h", ...
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"` // 0 runs no janitor
}

// Config represents library and CLI configuration
type Config struct {
	LogLevel string       `json:"log_level" yaml:"log_level" mapstructure:"log_level"` // debug, info, warn, error, none
	LogPath  string       `json:"log_path" yaml:"log_path" mapstructure:"log_path"`    // "" disables logging, "-" is stderr
	Render   RenderConfig `json:"render" yaml:"render" mapstructure:"render"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "hlbridge")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "hlbridge")
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, "hlbridge")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "hlbridge")
	}
}

// DefaultConfig returns the configuration used when nothing is configured.
// Logging is off: the library is loaded into foreign processes and must not
// write anywhere unless asked to.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		LogPath:  "",
		Render: RenderConfig{
			TabWidth:   consts.DefaultTabWidth,
			MaxEntries: consts.DefaultRenderCacheEntries,
			CacheTTL:   consts.DefaultRenderCacheTTL,
		},
	}
}

// GetConfigPath returns $HLBRIDGE_CONFIG, or config.json in the user's
// config directory.
func GetConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return filepath.Join(defaultConfigDir(), "config.json")
}

func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_path", def.LogPath)
	v.SetDefault("render.tab_width", def.Render.TabWidth)
	v.SetDefault("render.line_numbers", def.Render.LineNumbers)
	v.SetDefault("render.max_entries", def.Render.MaxEntries)
	v.SetDefault("render.cache_ttl", def.Render.CacheTTL)
	v.SetDefault("render.cleanup_interval", def.Render.CleanupInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (JSON, YAML or TOML, by extension) on top of the defaults
// and applies HLBRIDGE_* environment overrides. A missing file is not an
// error; an empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the renderer cannot work with.
func (c *Config) Validate() error {
	if c.Render.TabWidth <= 0 {
		return fmt.Errorf("render.tab_width must be positive, got %d", c.Render.TabWidth)
	}
	if c.Render.MaxEntries < 0 {
		return fmt.Errorf("render.max_entries must not be negative, got %d", c.Render.MaxEntries)
	}
	if c.Render.CacheTTL < 0 {
		return fmt.Errorf("render.cache_ttl must not be negative, got %s", c.Render.CacheTTL)
	}
	if c.Render.CleanupInterval < 0 {
		return fmt.Errorf("render.cleanup_interval must not be negative, got %s", c.Render.CleanupInterval)
	}
	return nil
}

// Save writes c, creating the parent directory. Files ending in .yaml or
// .yml are written as YAML, everything else as JSON.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = c.YAML()
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// YAML renders c as a YAML document. Durations are written in
// time.Duration notation ("5m0s"), which Load reads back.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// RenderOptions converts the render section for render.New.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		TabWidth:        c.Render.TabWidth,
		LineNumbers:     c.Render.LineNumbers,
		MaxEntries:      c.Render.MaxEntries,
		TTL:             c.Render.CacheTTL,
		CleanupInterval: c.Render.CleanupInterval,
	}
}

// InitLogger installs the process-wide logger described by c.
func (c *Config) InitLogger() error {
	return logger.Init(logger.ParseLevel(c.LogLevel), c.LogPath)
}
