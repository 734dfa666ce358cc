// Package container provides a small lazy service container for Go.
//
// # Overview
//
// A Container maps service names to factory functions. A factory runs the
// first time its name is resolved and the result is cached, so every later
// Get on the same container returns the same value. Any registration can be
// overridden, which makes swapping a real service for a fake in tests a
// one-liner.
//
// Containers form a tree. A child that has no factory for a name asks its
// parent, and every chain ends at Root(), which knows nothing and reports
// *MissingServiceError.
//
// # Registering
//
//	c := container.New()
//
//	// Fails with *DuplicateServiceError if "db" is already registered here.
//	err := c.Register("db", func(c *container.Container) (any, error) {
//	    dsn, err := container.Resolve[string](c, "database_url")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open("postgres", dsn)
//	})
//
//	// Replaces the factory and drops any cached value.
//	c.Override("db", container.Value(fakeDB))
//
//	// DATABASE_URL from the environment, a default, or the parent's binding.
//	err = c.RegisterFromEnvironment("database_url")
//	err = c.RegisterFromEnvironment("port", "8080")
//
// # Resolving
//
//	raw, err := c.Get("db")
//	db, err := container.Resolve[*sql.DB](c, "db")
//	db := container.MustResolve[*sql.DB](c, "db") // bootstrap code only
//
// # Scopes
//
// A factory always receives the container Get was called on, not the one
// that owns the factory. Services defined on a parent therefore pick up a
// child's overrides:
//
//	app.Register("repo", func(c *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](c, "db")
//	    ...
//	})
//
//	test := app.Scope().GiveValue("db", fakeDB).Build()
//	repo, _ := test.Get("repo") // built with fakeDB, cached in test only
//
// Each container keeps its own cache; ClearCache empties only the receiver's.
//
// # Verifying
//
//	if err := c.VerifyDependenciesOrFail("db", "mailer"); err != nil {
//	    // err lists every missing name
//	}
//
// # Concurrency
//
// Registration is meant to happen during single-threaded start-up. The tables
// are lock-protected, but resolving an uncached name is not atomic: two
// goroutines may both run the factory, and the first stored value is the one
// every caller gets.
//
// # Service Providers
//
//	type AppProvider struct{ container.BaseProvider }
//
//	func (p *AppProvider) Register(app *container.Container) error {
//	    return app.Register("mailer", newMailer)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	_ = registry.Register(&AppProvider{})
//	_ = registry.Boot()
//
// Deferred providers (IsDeferred returns true) are only registered when one
// of their Provides names is first resolved.
package container
