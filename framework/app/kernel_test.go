package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newApp(t *testing.T, files ...string) *app.Application {
	t.Helper()
	for _, k := range []string{"APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT", "LOG_LEVEL",
		"INSPECTOR_ENABLED", "INSPECTOR_PREFIX"} {
		t.Setenv(k, "")
	}
	if len(files) == 0 {
		files = []string{"testdata/app.env"}
	}
	a, err := app.New(files...)
	require.NoError(t, err)
	return a
}

type greeterProvider struct {
	container.BaseProvider
	booted bool
}

func (p *greeterProvider) Register(c *container.Container) error {
	return c.Register("greeting", func(c *container.Container) (any, error) {
		name, err := container.Resolve[string](c, "name")
		return "hello " + name, err
	})
}

func (p *greeterProvider) Boot(c *container.Container) error {
	p.booted = true
	return c.VerifyDependenciesOrFail("greeting")
}

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_LoadsConfiguration(t *testing.T) {
	a := newApp(t)

	cfg := a.Config()
	assert.Equal(t, "KernelTest", cfg.App.Name)
	assert.Equal(t, "testing", a.Environment())
	assert.False(t, a.IsDebug())
	assert.NotEmpty(t, a.Version())
	assert.IsType(t, &zap.Logger{}, a.Logger())
}

func TestNew_FrameworkServicesBound(t *testing.T) {
	a := newApp(t)

	assert.NoError(t, a.VerifyDependenciesOrFail("env", "config", "logger", "inspector"))
	assert.Len(t, a.Providers.Providers(), 3)
}

func TestNew_ContainerReadsDotEnv(t *testing.T) {
	a := newApp(t)

	require.NoError(t, a.RegisterFromEnvironment("app_name"))
	assert.Equal(t, "KernelTest", a.MustGet("app_name"))
}

func TestNew_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	_, err := app.New("testdata/badlevel.env")
	assert.Error(t, err)
}

// ── Providers ────────────────────────────────────────────────────────────────

func TestRegisterProvider_BootsWithApp(t *testing.T) {
	a := newApp(t)
	p := &greeterProvider{}
	require.NoError(t, a.Container.Register("name", container.Value("app")))
	require.NoError(t, a.RegisterProvider(p))

	require.NoError(t, a.Boot())

	assert.True(t, p.booted)
	assert.Equal(t, "hello app", a.MustGet("greeting"))

	request := a.Scope().GiveValue("name", "request").Build()
	assert.Equal(t, "hello request", request.MustGet("greeting"))
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func TestHandler_MountsInspector(t *testing.T) {
	a := newApp(t)
	h, err := a.Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/container/services/config", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_InspectorDisabled(t *testing.T) {
	a := newApp(t)
	t.Setenv("INSPECTOR_ENABLED", "false")
	a.ClearCache()

	h, err := a.Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/container/services", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newApp(t)
	t.Setenv("APP_PORT", "0")
	a.ClearCache()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, a.Run(ctx))
	assert.True(t, a.Providers.Booted())
}

func TestRun_LogsStartup(t *testing.T) {
	a := newApp(t)
	t.Setenv("APP_PORT", "0")
	a.ClearCache()
	core, logs := observer.New(zap.InfoLevel)
	a.Override("logger", container.Value(zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx))

	entries := logs.FilterMessage("listening").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, a.Version(), fields["version"])
	assert.Equal(t, "testing", fields["env"])
	assert.Equal(t, false, fields["debug"])
}
