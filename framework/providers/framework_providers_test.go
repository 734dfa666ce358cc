package providers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/providers"
)

func newRegistry(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	c := container.New()
	return c, container.NewProviderRegistry(c)
}

func TestConfigServiceProvider(t *testing.T) {
	t.Setenv("APP_NAME", "ProviderTest")
	c, reg := newRegistry(t)

	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Env: config.LoadEnv("testdata/none.env")}))

	cfg, err := container.Resolve[*config.Config](c, "config")
	require.NoError(t, err)
	assert.Equal(t, "ProviderTest", cfg.App.Name)

	_, err = container.Resolve[*config.Env](c, "env")
	assert.NoError(t, err)
}

func TestConfigServiceProvider_ChildEnvOverride(t *testing.T) {
	t.Setenv("APP_NAME", "")
	c, reg := newRegistry(t)
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Env: config.LoadEnv("testdata/none.env")}))

	child := c.Scope().GiveValue("env", config.LoadEnv("../config/testdata/app.env")).Build()

	assert.Equal(t, "FromFile", container.MustResolve[*config.Config](child, "config").App.Name)
	assert.Equal(t, "GoContainer", container.MustResolve[*config.Config](c, "config").App.Name)
}

func TestLoggingServiceProvider_Given(t *testing.T) {
	c, reg := newRegistry(t)
	logger := zap.NewNop()

	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{Logger: logger}))

	assert.Same(t, logger, container.MustResolve[*zap.Logger](c, "logger"))
}

func TestLoggingServiceProvider_BuiltFromConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	c, reg := newRegistry(t)
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Env: config.LoadEnv("testdata/none.env")}))
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{}))

	logger := container.MustResolve[*zap.Logger](c, "logger")
	assert.False(t, logger.Core().Enabled(zap.WarnLevel))
	assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := &config.Config{Log: config.LogConfig{Level: "loud"}}

	_, err := providers.NewLogger(cfg)
	assert.Error(t, err)
}

func TestInspectorServiceProvider(t *testing.T) {
	c, reg := newRegistry(t)
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{Logger: zap.NewNop()}))
	require.NoError(t, reg.Register(&providers.InspectorServiceProvider{}))
	require.NoError(t, reg.Boot())

	h, err := container.Resolve[http.Handler](c, "inspector")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestInspectorServiceProvider_BootFailsWithoutLogger(t *testing.T) {
	_, reg := newRegistry(t)
	require.NoError(t, reg.Register(&providers.InspectorServiceProvider{}))

	err := reg.Boot()
	assert.ErrorIs(t, err, container.ErrMissingService)
}
