package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
)

// Greeter is a stand-in for an application service.
type Greeter struct {
	Greeting string
	Audience string
}

func (g *Greeter) Greet() string { return g.Greeting + ", " + g.Audience + "!" }

// GreeterProvider wires the demo services.
type GreeterProvider struct{ container.BaseProvider }

func (p *GreeterProvider) Register(c *container.Container) error {
	// GREETING from the environment, "Hello" otherwise.
	if err := c.RegisterFromEnvironment("greeting", "Hello"); err != nil {
		return err
	}
	if err := c.Register("audience", container.Value("world")); err != nil {
		return err
	}
	_, err := container.Define(c, "greeter", func(c *container.Container) (*Greeter, error) {
		greeting, err := container.Resolve[string](c, "greeting")
		if err != nil {
			return nil, err
		}
		audience, err := container.Resolve[string](c, "audience")
		if err != nil {
			return nil, err
		}
		return &Greeter{Greeting: greeting, Audience: audience}, nil
	})
	return err
}

func (p *GreeterProvider) Boot(c *container.Container) error {
	return c.VerifyDependenciesOrFail("greeting", "audience", "greeter")
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := application.Logger()
	defer func() { _ = logger.Sync() }()

	if err := application.RegisterProvider(&GreeterProvider{}); err != nil {
		logger.Fatal("register provider", zap.Error(err))
	}
	if err := application.Boot(); err != nil {
		logger.Fatal("boot", zap.Error(err))
	}

	greeter := container.MustResolve[*Greeter](application.Container, "greeter")
	logger.Info(greeter.Greet())

	// A scope overriding "audience": the app-level greeter factory picks it up.
	for _, who := range os.Args[1:] {
		scope := application.Scope().GiveValue("audience", strings.TrimSpace(who)).Build()
		logger.Info(container.MustResolve[*Greeter](scope, "greeter").Greet(),
			zap.String("scope", scope.ID()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := application.Run(ctx); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
