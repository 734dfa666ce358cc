package providers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/inspect"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded environment and the typed
// configuration built from it.
//
// Bound names:
//   - "env"    → *config.Env
//   - "config" → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	Env *config.Env
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	env := p.Env
	if env == nil {
		env = config.LoadEnv()
	}
	if err := app.Register("env", container.Value(env)); err != nil {
		return err
	}
	return app.Register("config", func(c *container.Container) (any, error) {
		e, err := container.Resolve[*config.Env](c, "env")
		if err != nil {
			return nil, err
		}
		return config.FromEnv(e), nil
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound names:
//   - "logger" → *zap.Logger
//
// When Logger is nil the logger is built from "config" on first use.
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		return app.Register("logger", container.Value(p.Logger))
	}
	return app.Register("logger", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return NewLogger(cfg)
	})
}

// NewLogger builds a development logger when the app runs in debug mode and a
// production (JSON) logger otherwise, at cfg.Log.Level.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.App.Debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}

// ── InspectorServiceProvider ──────────────────────────────────────────────────

// InspectorServiceProvider binds the container inspector.
//
// Bound names:
//   - "inspector" → http.Handler showing the resolving container
type InspectorServiceProvider struct {
	container.BaseProvider
}

func (p *InspectorServiceProvider) Register(app *container.Container) error {
	return app.Register("inspector", func(c *container.Container) (any, error) {
		logger, err := container.Resolve[*zap.Logger](c, "logger")
		if err != nil {
			return nil, err
		}
		var h http.Handler = inspect.Handler(c, logger.Named("inspector"))
		return h, nil
	})
}

// Boot checks the inspector's dependencies are bound.
func (p *InspectorServiceProvider) Boot(app *container.Container) error {
	return app.VerifyDependenciesOrFail("logger")
}
