package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register is called once for eager providers, as soon as the provider is
// added. Boot is called after all eager providers are registered, making it
// safe to resolve other services inside Boot.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(app *container.Container) error {
//	    return app.Register("mailer", func(c *container.Container) (any, error) {
//	        host, err := container.Resolve[string](c, "mail_host")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.NewSMTP(host), nil
//	    })
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other services here; use Boot for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides lists the names a deferred provider registers.
	Provides() []string

	// IsDeferred reports whether Register should wait until one of the
	// Provides names is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders against one
// container, including deferred providers.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool

	// deferred provider → factories it registered once loaded
	loaded map[ServiceProvider]map[string]Factory
	// deferred providers whose Boot has succeeded
	bootedDeferred map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:            app,
		registered:     make(map[ServiceProvider]bool),
		loaded:         make(map[ServiceProvider]map[string]Factory),
		bootedDeferred: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers are registered immediately, and
// booted immediately when the registry is already booted. Adding the same
// provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		return r.interceptDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register %T: %w", provider, err)
	}
	r.eager = append(r.eager, provider)

	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	return nil
}

// interceptDeferred binds a stub for each provided name. Resolving a stub
// loads the provider (once) and boots it (until Boot succeeds), then builds
// the real value through the originating container.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	for _, name := range provider.Provides() {
		name := name
		err := r.app.Register(name, func(c *Container) (any, error) {
			factories, err := r.load(provider)
			if err != nil {
				return nil, err
			}
			f, ok := factories[name]
			if !ok {
				return nil, &MissingServiceError{Names: []string{name}}
			}
			return f(c)
		})
		if err != nil {
			return fmt.Errorf("defer %T: %w", provider, err)
		}
	}
	r.deferred = append(r.deferred, provider)
	return nil
}

// load promotes a deferred provider on first use and boots it when the
// registry is booted.
func (r *ProviderRegistry) load(provider ServiceProvider) (map[string]Factory, error) {
	factories, ok := r.loaded[provider]
	if !ok {
		var err error
		if factories, err = r.promote(provider); err != nil {
			return nil, err
		}
		r.loaded[provider] = factories
	}
	if r.booted {
		if err := r.bootDeferred(provider); err != nil {
			return nil, err
		}
	}
	return factories, nil
}

// promote runs a deferred provider's Register against a staging container.
// Names the provider did not declare in Provides are registered into the app
// container, failing with *DuplicateServiceError when the app already binds
// one; declared names keep their stubs.
func (r *ProviderRegistry) promote(provider ServiceProvider) (map[string]Factory, error) {
	staging := NewChild(r.app)
	if err := provider.Register(staging); err != nil {
		return nil, fmt.Errorf("register %T: %w", provider, err)
	}

	stubs := make(map[string]bool)
	for _, name := range provider.Provides() {
		stubs[name] = true
	}

	staging.mu.RLock()
	factories := make(map[string]Factory, len(staging.factories))
	for name, f := range staging.factories {
		factories[name] = f
	}
	staging.mu.RUnlock()

	r.app.mu.RLock()
	for name := range factories {
		if _, exists := r.app.factories[name]; exists && !stubs[name] {
			r.app.mu.RUnlock()
			return nil, fmt.Errorf("register %T: %w", provider, &DuplicateServiceError{Name: name})
		}
	}
	r.app.mu.RUnlock()

	for name, f := range factories {
		if stubs[name] {
			continue
		}
		if err := r.app.Register(name, f); err != nil {
			return nil, fmt.Errorf("register %T: %w", provider, err)
		}
	}
	r.app.logger.Debug("deferred provider loaded",
		zap.String("provider", fmt.Sprintf("%T", provider)),
		zap.Strings("services", staging.Names()))
	return factories, nil
}

func (r *ProviderRegistry) bootDeferred(provider ServiceProvider) error {
	if r.bootedDeferred[provider] {
		return nil
	}
	if err := provider.Boot(r.app); err != nil {
		return fmt.Errorf("boot %T: %w", provider, err)
	}
	r.bootedDeferred[provider] = true
	return nil
}

// Boot calls Boot on every eager provider, then on deferred providers that
// were already loaded. Calling it again is a no-op.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	for _, provider := range r.deferred {
		if _, ok := r.loaded[provider]; !ok {
			continue
		}
		if err := r.bootDeferred(provider); err != nil {
			return err
		}
	}
	return nil
}

// Booted reports whether Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
