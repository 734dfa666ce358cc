package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/providers"
)

// Application is the top-level application container.
// It embeds the Container and a ProviderRegistry so user code can call
// app.Register(), app.Get(), app.Child() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New loads the environment from envFiles (".env" by default), creates the
// application container and registers the framework providers.
func New(envFiles ...string) (*Application, error) {
	env := config.LoadEnv(envFiles...)
	logger, err := providers.NewLogger(config.FromEnv(env))
	if err != nil {
		return nil, err
	}

	c := container.New(container.WithEnvironment(env), container.WithLogger(logger))
	registry := container.NewProviderRegistry(c)
	app := &Application{
		Container: c,
		Providers: registry,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Env: env},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.InspectorServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// RegisterProvider adds a ServiceProvider to the application.
func (a *Application) RegisterProvider(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, "config")
}

// Logger resolves *zap.Logger from the container.
func (a *Application) Logger() *zap.Logger {
	return container.MustResolve[*zap.Logger](a.Container, "logger")
}

// Handler returns the application's HTTP routes: the inspector mounted under
// the configured prefix when enabled.
func (a *Application) Handler() (http.Handler, error) {
	cfg := a.Config()
	r := chi.NewRouter()
	r.Use(middleware.Heartbeat("/ping"))
	if cfg.Inspector.Enabled {
		inspector, err := container.Resolve[http.Handler](a.Container, "inspector")
		if err != nil {
			return nil, err
		}
		r.Mount(cfg.Inspector.Prefix, inspector)
	}
	return r, nil
}

// Run boots the application (if needed) and serves Handler() on APP_PORT
// until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg := a.Config()
	logger := a.Logger()
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("listening",
		zap.String("addr", "http://localhost"+srv.Addr),
		zap.String("version", a.Version()),
		zap.String("env", a.Environment()),
		zap.Bool("debug", a.IsDebug()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }

// IsDebug reports whether APP_DEBUG is on.
func (a *Application) IsDebug() bool { return a.Config().App.Debug }

// Version returns the framework version.
func (a *Application) Version() string { return "0.1.0" }
