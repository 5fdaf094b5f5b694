package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"

	"github.com/belphemur/haushaltsheld/internal/calendar"
)

// EnvPrefix marks environment variables that override the config file.
// Sections are separated by a double underscore:
// HAUSHALTSHELD_SERVICE__LOG_LEVEL=debug sets service.log_level.
const EnvPrefix = "HAUSHALTSHELD_"

// Config holds the application configuration
type Config struct {
	App      AppConfig      `koanf:"app"`
	Service  ServiceConfig  `koanf:"service"`
	Calendar CalendarConfig `koanf:"calendar"`
}

// AppConfig holds the HTTP and locale settings
type AppConfig struct {
	Port     int    `koanf:"port"`
	Timezone string `koanf:"timezone"`
	Locale   string `koanf:"locale"`
}

// ServiceConfig holds the service configuration
type ServiceConfig struct {
	StateFile       string        `koanf:"state_file"`
	LogLevel        string        `koanf:"log_level"`
	RefreshSchedule string        `koanf:"refresh_schedule"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CalendarConfig holds the grid display settings
type CalendarConfig struct {
	Palette         []string `koanf:"palette"`
	MaxColorsPerDay int      `koanf:"max_colors_per_day"`
}

func defaults() map[string]any {
	palette := calendar.DefaultPalette()
	colors := make([]string, len(palette))
	for i, c := range palette {
		colors[i] = string(c)
	}
	return map[string]any{
		"app.port":                    8080,
		"app.timezone":                "UTC",
		"app.locale":                  "en",
		"service.state_file":          "data/haushaltsheld.db",
		"service.log_level":           "info",
		"service.refresh_schedule":    "@every 5m",
		"service.shutdown_timeout":    "10s",
		"calendar.palette":            colors,
		"calendar.max_colors_per_day": calendar.DefaultMaxColorsPerDay,
	}
}

// Load reads defaults, then the TOML file at path, then the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// PORT is honored on its own for container platforms.
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			if key != "PORT" || value == "" {
				return "", nil
			}
			return "app.port", value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load PORT: %w", err)
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Service.StateFile != "" && !filepath.IsAbs(cfg.Service.StateFile) {
		abs, err := filepath.Abs(filepath.Join(filepath.Dir(path), cfg.Service.StateFile))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state file: %w", err)
		}
		cfg.Service.StateFile = abs
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// transformEnv maps HAUSHALTSHELD_SECTION__KEY to section.key.
func transformEnv(key, value string) (string, any) {
	name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if !strings.Contains(name, "__") {
		return "", nil
	}
	return strings.ReplaceAll(name, "__", "."), value
}

// validate checks the configuration and reports every problem at once
func validate(cfg *Config) error {
	var result *multierror.Error

	if cfg.App.Port < 1 || cfg.App.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("app.port must be between 1 and 65535, got %d", cfg.App.Port))
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		result = multierror.Append(result, fmt.Errorf("app.timezone %q: %w", cfg.App.Timezone, err))
	}
	if _, err := calendar.ParseLabels(cfg.App.Locale); err != nil {
		result = multierror.Append(result, fmt.Errorf("app.locale: %w", err))
	}

	if cfg.Service.StateFile == "" {
		result = multierror.Append(result, fmt.Errorf("service.state_file is required"))
	}
	if _, err := cron.ParseStandard(cfg.Service.RefreshSchedule); err != nil {
		result = multierror.Append(result, fmt.Errorf("service.refresh_schedule %q: %w", cfg.Service.RefreshSchedule, err))
	}
	if cfg.Service.ShutdownTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("service.shutdown_timeout must be positive"))
	}

	if _, err := calendar.ParsePalette(cfg.Calendar.Palette); err != nil {
		result = multierror.Append(result, fmt.Errorf("calendar.palette: %w", err))
	}
	if cfg.Calendar.MaxColorsPerDay < 1 {
		result = multierror.Append(result, fmt.Errorf("calendar.max_colors_per_day must be at least 1, got %d", cfg.Calendar.MaxColorsPerDay))
	}

	return result.ErrorOrNil()
}

// Location returns the configured reference time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Palette returns the configured user colors
func (c *Config) Palette() calendar.Palette {
	palette, err := calendar.ParsePalette(c.Calendar.Palette)
	if err != nil {
		return calendar.DefaultPalette()
	}
	return palette
}

// CalendarOptions returns the grid builder options for this configuration
func (c *Config) CalendarOptions() calendar.Options {
	labels, err := calendar.ParseLabels(c.App.Locale)
	if err != nil {
		labels = calendar.DefaultOptions().Labels
	}
	return calendar.Options{
		Location:        c.Location(),
		MaxColorsPerDay: c.Calendar.MaxColorsPerDay,
		Labels:          labels,
	}
}
