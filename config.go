package dispatcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultProgID identifies the Excel automation server.
const DefaultProgID = "Excel.Application"

// Config describes a dispatcher session in a file.
type Config struct {
	Engine    EngineConfig `toml:"engine" yaml:"engine"`
	Workbook  string       `toml:"workbook" yaml:"workbook" validate:"required_with=Worksheet"`
	Worksheet string       `toml:"worksheet" yaml:"worksheet"`
	LogLevel  string       `toml:"log_level" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// EngineConfig selects and configures the automation server.
type EngineConfig struct {
	ProgID string `toml:"prog_id" yaml:"prog_id" validate:"required"`
	// Attach connects to a running instance instead of starting one.
	Attach         bool `toml:"attach" yaml:"attach"`
	DisplayAlerts  bool `toml:"display_alerts" yaml:"display_alerts"`
	Visible        bool `toml:"visible" yaml:"visible"`
	ScreenUpdating bool `toml:"screen_updating" yaml:"screen_updating"`
}

// DefaultConfig returns a headless Excel configuration.
func DefaultConfig() Config {
	return Config{
		Engine:   EngineConfig{ProgID: DefaultProgID},
		LogLevel: "info",
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over the
// defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks required fields and value ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Settings returns the session flags of the engine section.
func (c Config) Settings() Settings {
	return Settings{
		DisplayAlerts:  c.Engine.DisplayAlerts,
		Visible:        c.Engine.Visible,
		ScreenUpdating: c.Engine.ScreenUpdating,
	}
}

// Options converts the config into construction options.
func (c Config) Options() []Option {
	opts := []Option{WithSettings(c.Settings())}
	if c.Workbook != "" {
		opts = append(opts, WithWorkbook(c.Workbook))
	}
	if c.Worksheet != "" {
		opts = append(opts, WithWorksheet(c.Worksheet))
	}
	return opts
}

// Logger builds a logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if c.LogLevel != "" {
		l, err := zerolog.ParseLevel(c.LogLevel)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
