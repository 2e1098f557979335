package config

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
)

const defaultServiceVersion = "dev"

// Environment is the deployment environment.
type Environment string

const (
	EnvLocal       Environment = "local"
	EnvDevelopment Environment = "dev"
	EnvProduction  Environment = "pro"
)

func (e Environment) IsValid() bool {
	switch e {
	case EnvLocal, EnvDevelopment, EnvProduction:
		return true
	}
	return false
}

// AppConfig identifies the running service.
type AppConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    Environment
}

type appConfigOptions struct {
	static      *AppConfig
	serviceName string
}

// AppConfigOption configures NewAppConfigModule.
type AppConfigOption func(*appConfigOptions)

// WithAppConfig supplies cfg instead of reading the environment.
func WithAppConfig(cfg AppConfig) AppConfigOption {
	return func(o *appConfigOptions) {
		o.static = &cfg
	}
}

// WithServiceName sets the service name used when APP_SERVICE_NAME is unset.
func WithServiceName(name string) AppConfigOption {
	return func(o *appConfigOptions) {
		o.serviceName = name
	}
}

// NewAppConfigModule provides AppConfig built from APP_ENV, APP_SERVICE_NAME and APP_SERVICE_VERSION.
func NewAppConfigModule(opts ...AppConfigOption) fx.Option {
	o := &appConfigOptions{}
	for _, opt := range opts {
		opt(o)
	}

	provide := fx.Provide(func() (AppConfig, error) { return newAppConfig(o.serviceName) })
	if o.static != nil {
		provide = fx.Supply(*o.static)
	}

	return fx.Module("appconfig",
		provide,
		fx.Invoke(func(log *zap.Logger, conf AppConfig) {
			log.Info("loaded application configuration",
				zap.String("service", conf.ServiceName),
				zap.String("version", conf.ServiceVersion),
				zap.String("environment", string(conf.Environment)),
			)
		}),
	)
}

func newAppConfig(defaultServiceName string) (AppConfig, error) {
	env := Environment(os.Getenv(envAppEnv))
	if env == "" {
		env = EnvLocal
	}
	if !env.IsValid() {
		return AppConfig{}, fmt.Errorf("invalid %s: %q", envAppEnv, env)
	}

	serviceName := os.Getenv(envAppServiceName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	if serviceName == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppServiceName)
	}

	serviceVersion := os.Getenv(envAppServiceVersion)
	if serviceVersion == "" {
		serviceVersion = defaultServiceVersion
	}

	return AppConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    env,
	}, nil
}
