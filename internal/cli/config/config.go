package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivekit/internal/compiler/cache"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
	"github.com/conduit-lang/derivekit/internal/watch"
)

// FileName is the configuration file looked up in the project root
const FileName = "derivekit.yaml"

// EnvPrefix prefixes environment overrides, e.g. DERIVEKIT_CACHE_BACKEND
const EnvPrefix = "DERIVEKIT"

// Config represents the derivekit configuration
type Config struct {
	RuntimeCrate string      `mapstructure:"runtime_crate" yaml:"runtime_crate"`
	OutputDir    string      `mapstructure:"output_dir" yaml:"output_dir"`
	Suffix       string      `mapstructure:"suffix" yaml:"suffix"`
	Parallelism  int         `mapstructure:"parallelism" yaml:"parallelism"`
	LogLevel     string      `mapstructure:"log_level" yaml:"log_level"`
	Cache        CacheConfig `mapstructure:"cache" yaml:"cache"`
	Watch        WatchConfig `mapstructure:"watch" yaml:"watch"`
}

// CacheConfig represents expansion cache configuration
type CacheConfig struct {
	Backend  string        `mapstructure:"backend" yaml:"backend"`
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Ignore   []string      `mapstructure:"ignore" yaml:"ignore"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		RuntimeCrate: codegen.DefaultRuntimeCrate,
		Suffix:       driver.DefaultSuffix,
		Parallelism:  runtime.NumCPU(),
		LogLevel:     "info",
		Cache: CacheConfig{
			Backend:  cache.BackendMemory,
			RedisURL: "redis://localhost:6379/0",
			TTL:      24 * time.Hour,
			Prefix:   "derivekit:",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
			Ignore:   append([]string(nil), driver.DefaultIgnore...),
		},
	}
}

// Load loads derivekit.yaml from dir. A missing file yields the defaults;
// DERIVEKIT_* environment variables override both.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile loads an explicit configuration file
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("runtime_crate", d.RuntimeCrate)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("suffix", d.Suffix)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.ignore", d.Watch.Ignore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Write stores the configuration as derivekit.yaml in dir
func (c *Config) Write(dir string) (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// DriverOptions converts the configuration to expansion options
func (c *Config) DriverOptions() driver.Options {
	return driver.Options{
		Codegen:     codegen.Options{RuntimeCrate: c.RuntimeCrate},
		OutputDir:   c.OutputDir,
		Suffix:      c.Suffix,
		Parallelism: c.Parallelism,
	}
}

// CacheSettings converts the configuration to cache backend settings
func (c *Config) CacheSettings() cache.Settings {
	return cache.Settings{
		Backend:  c.Cache.Backend,
		RedisURL: c.Cache.RedisURL,
		Config: cache.Config{
			DefaultTTL: c.Cache.TTL,
			Prefix:     c.Cache.Prefix,
		},
	}
}

// WatchOptions converts the configuration to watcher options rooted at root
func (c *Config) WatchOptions(root string) watch.Options {
	return watch.Options{
		Root:     root,
		Debounce: c.Watch.Debounce,
		Ignore:   c.Watch.Ignore,
		Match: func(path string) bool {
			return driver.IsSource(path, c.Suffix)
		},
	}
}

// Logger builds a development logger writing to stderr at log_level
func (c *Config) Logger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

// FindRoot walks up from the working directory looking for derivekit.yaml.
// It returns the working directory itself when no file is found.
func FindRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Suffix == "" || !strings.HasSuffix(cfg.Suffix, ".rs") {
		return fmt.Errorf("suffix must end with '.rs', got: %q", cfg.Suffix)
	}
	if cfg.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got: %d", cfg.Parallelism)
	}
	if strings.TrimSpace(cfg.RuntimeCrate) == "" {
		return fmt.Errorf("runtime_crate must not be empty")
	}
	switch cfg.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of %s, %s or %s, got: %q",
			cache.BackendMemory, cache.BackendRedis, cache.BackendNone, cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == cache.BackendRedis && cfg.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required for the redis backend")
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
