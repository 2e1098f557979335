package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is the minimum enabled level.
	Level zapcore.Level

	// Development switches to console encoding.
	Development bool

	// OutputPaths defaults to stderr.
	OutputPaths []string

	// ErrorOutputPaths defaults to stderr.
	ErrorOutputPaths []string

	// StacktraceLevel defaults to error.
	StacktraceLevel zapcore.Level
}

type rawConfig struct {
	Level            string   `mapstructure:"level"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output-paths"`
	ErrorOutputPaths []string `mapstructure:"error-output-paths"`
	StacktraceLevel  string   `mapstructure:"stacktrace-level"`
}

func defaultConfig() Config {
	return Config{
		Level:           zapcore.InfoLevel,
		StacktraceLevel: zapcore.ErrorLevel,
	}
}

func (c Config) Validate() error {
	if err := validatePaths(c.OutputPaths, "output-paths"); err != nil {
		return err
	}
	return validatePaths(c.ErrorOutputPaths, "error-output-paths")
}

func validatePaths(paths []string, fieldName string) error {
	for i, path := range paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%s[%d] cannot be empty or whitespace", fieldName, i)
		}
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := defaultConfig()
	sub := v.Sub("logger")
	if sub == nil {
		return cfg, nil
	}

	var raw rawConfig
	if err := sub.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	if err := parseLevel(raw.Level, &cfg.Level); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}
	if err := parseLevel(raw.StacktraceLevel, &cfg.StacktraceLevel); err != nil {
		return Config{}, fmt.Errorf("invalid stacktrace level: %w", err)
	}
	cfg.Development = raw.Development
	cfg.OutputPaths = raw.OutputPaths
	cfg.ErrorOutputPaths = raw.ErrorOutputPaths
	return cfg, nil
}

// parseLevel leaves dst untouched for an empty value.
func parseLevel(value string, dst *zapcore.Level) error {
	if value == "" {
		return nil
	}
	level, err := zapcore.ParseLevel(value)
	if err != nil {
		return err
	}
	*dst = level
	return nil
}
