package mongo

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultMaxPoolSize         = 100
	defaultMinPoolSize         = 10
	defaultMaxConnIdleTime     = 5 * time.Minute
	defaultConnectTimeout      = 10 * time.Second
	defaultServerSelectTimeout = 30 * time.Second
	defaultQueryTimeout        = 30 * time.Second
	defaultBulkheadTimeout     = 5 * time.Second
)

type Config struct {
	ConnectionString string `mapstructure:"connection-string"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	ReplicaSet       string `mapstructure:"replica-set"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	DirectConnection bool   `mapstructure:"direct-connection"`

	MaxPoolSize         uint64        `mapstructure:"max-pool-size"`
	MinPoolSize         uint64        `mapstructure:"min-pool-size"`
	MaxConnIdleTime     time.Duration `mapstructure:"max-conn-idle-time"`
	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	ServerSelectTimeout time.Duration `mapstructure:"server-select-timeout"`

	// QueryTimeout bounds every collection call.
	QueryTimeout time.Duration `mapstructure:"query-timeout"`

	// MaxConcurrentQueries caps in-flight collection calls per process; 0 disables the cap.
	MaxConcurrentQueries int           `mapstructure:"max-concurrent-queries"`
	BulkheadTimeout      time.Duration `mapstructure:"bulkhead-timeout"`
}

func provideConfig(opts *mongoOptions, v *viper.Viper, log *zap.Logger) (Config, error) {
	var cfg Config
	if opts.config != nil {
		cfg = *opts.config
	} else {
		sub := v.Sub("mongo")
		if sub == nil {
			return cfg, fmt.Errorf("mongo config section is missing")
		}
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load mongo config: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}

	log.Info("loaded mongo config",
		zap.String("database", cfg.Database),
		zap.Duration("query-timeout", cfg.QueryTimeout),
		zap.Int("max-concurrent-queries", cfg.MaxConcurrentQueries))
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = defaultMaxPoolSize
	}
	if cfg.MinPoolSize == 0 {
		cfg.MinPoolSize = defaultMinPoolSize
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = defaultMaxConnIdleTime
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ServerSelectTimeout == 0 {
		cfg.ServerSelectTimeout = defaultServerSelectTimeout
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.BulkheadTimeout == 0 {
		cfg.BulkheadTimeout = defaultBulkheadTimeout
	}
}

func validateConfig(conf Config) error {
	if conf.Database == "" {
		return fmt.Errorf("invalid mongo configuration: database is required")
	}
	if conf.ConnectionString == "" && (conf.Host == "" || conf.Port == 0) {
		return fmt.Errorf("invalid mongo configuration: connection-string or host and port are required")
	}
	if conf.MinPoolSize > conf.MaxPoolSize {
		return fmt.Errorf("invalid mongo configuration: min-pool-size %d exceeds max-pool-size %d",
			conf.MinPoolSize, conf.MaxPoolSize)
	}
	if conf.MaxConcurrentQueries < 0 {
		return fmt.Errorf("invalid mongo configuration: max-concurrent-queries must not be negative")
	}
	return nil
}

func buildURI(conf Config) string {
	if conf.ConnectionString != "" {
		return conf.ConnectionString
	}

	auth := ""
	if conf.Username != "" {
		auth = fmt.Sprintf("%s:%s@", conf.Username, conf.Password)
	}

	uri := fmt.Sprintf("mongodb://%s%s:%d/%s", auth, conf.Host, conf.Port, conf.Database)

	params := []string{}
	if conf.ReplicaSet != "" {
		params = append(params, "replicaSet="+conf.ReplicaSet)
	}
	if conf.DirectConnection {
		params = append(params, "directConnection=true")
	}

	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}

	return uri
}
