package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const envConfigFile = "CONFIG_FILE"

type viperConfig struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption configures NewViperModule.
type ViperOption func(*viperConfig)

// WithConfigPath reads path instead of CONFIG_FILE.
func WithConfigPath(path string) ViperOption {
	return func(cfg *viperConfig) {
		cfg.configPath = &path
	}
}

// WithoutConfigFile provides a viper instance backed by the environment only.
func WithoutConfigFile() ViperOption {
	return func(cfg *viperConfig) {
		cfg.noConfigFile = true
	}
}

// FilePath is the resolved config file. Empty means none.
type FilePath string

// NewViperModule provides *viper.Viper loaded from the YAML file named by CONFIG_FILE.
// Every key can be overridden by an env var with "." and "-" replaced by "_".
func NewViperModule(opts ...ViperOption) fx.Option {
	cfg := &viperConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Module("viper",
		fx.Supply(resolveConfigPath(cfg)),
		fx.Provide(newViper),
		fx.Invoke(func(log *zap.Logger, v *viper.Viper) {
			log.Info("configuration loaded",
				zap.String("config_file", v.ConfigFileUsed()),
				zap.Int("settings_count", len(v.AllKeys())),
			)
		}),
	)
}

func resolveConfigPath(cfg *viperConfig) FilePath {
	switch {
	case cfg.noConfigFile:
		return ""
	case cfg.configPath != nil:
		return FilePath(*cfg.configPath)
	default:
		return FilePath(os.Getenv(envConfigFile))
	}
}

func newViper(configFile FilePath) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(string(configFile))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}
	return v, nil
}
