package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		defaultName string
		want        AppConfig
		wantErr     bool
	}{
		{
			name:        "defaults",
			defaultName: "order-service",
			want:        AppConfig{ServiceName: "order-service", ServiceVersion: "dev", Environment: EnvLocal},
		},
		{
			name:        "env overrides",
			env:         map[string]string{envAppEnv: "pro", envAppServiceName: "payments", envAppServiceVersion: "1.2.3"},
			defaultName: "payment-service",
			want:        AppConfig{ServiceName: "payments", ServiceVersion: "1.2.3", Environment: EnvProduction},
		},
		{
			name:        "invalid environment",
			env:         map[string]string{envAppEnv: "staging"},
			defaultName: "user-service",
			wantErr:     true,
		},
		{
			name:    "missing service name",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{envAppEnv, envAppServiceName, envAppServiceVersion} {
				t.Setenv(key, tt.env[key])
			}

			got, err := newAppConfig(tt.defaultName)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewViper(t *testing.T) {
	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("kafka:\n  brokers: localhost:9092\n"), 0o600))

		v, err := newViper(FilePath(path))

		require.NoError(t, err)
		assert.Equal(t, "localhost:9092", v.GetString("kafka.brokers"))
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("payment:\n  failure-probability: 0.1\n"), 0o600))
		t.Setenv("PAYMENT_FAILURE_PROBABILITY", "0.5")

		v, err := newViper(FilePath(path))

		require.NoError(t, err)
		assert.InDelta(t, 0.5, v.GetFloat64("payment.failure-probability"), 1e-9)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newViper(FilePath(filepath.Join(t.TempDir(), "missing.yaml")))

		assert.Error(t, err)
	})

	t.Run("no file", func(t *testing.T) {
		v, err := newViper("")

		require.NoError(t, err)
		assert.Empty(t, v.ConfigFileUsed())
	})
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(envConfigFile, "/etc/app/config.yaml")
	explicit := "/tmp/other.yaml"

	assert.Equal(t, FilePath("/etc/app/config.yaml"), resolveConfigPath(&viperConfig{}))
	assert.Equal(t, FilePath(explicit), resolveConfigPath(&viperConfig{configPath: &explicit}))
	assert.Equal(t, FilePath(""), resolveConfigPath(&viperConfig{noConfigFile: true}))
}
