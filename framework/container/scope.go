package container

// ScopeBuilder collects overrides for a child container.
//
//	request := app.Scope().
//	    Give("db", func(c *container.Container) (any, error) { return tx, nil }).
//	    GiveValue("request_id", id).
//	    Build()
//
// Services defined on app and resolved through request see the overridden
// "db" and "request_id".
type ScopeBuilder struct {
	parent    *Container
	opts      []Option
	overrides []scopeOverride
}

type scopeOverride struct {
	name    string
	factory Factory
}

// Scope starts building a child of c.
func (c *Container) Scope(opts ...Option) *ScopeBuilder {
	return &ScopeBuilder{parent: c, opts: opts}
}

// Give binds name to factory in the child. A later Give for the same name
// wins.
func (b *ScopeBuilder) Give(name string, factory Factory) *ScopeBuilder {
	b.overrides = append(b.overrides, scopeOverride{name: name, factory: factory})
	return b
}

// GiveValue is a shorthand for Give with a pre-built value.
func (b *ScopeBuilder) GiveValue(name string, value any) *ScopeBuilder {
	return b.Give(name, Value(value))
}

// Build creates the child container.
func (b *ScopeBuilder) Build() *Container {
	child := NewChild(b.parent, b.opts...)
	for _, o := range b.overrides {
		child.Override(o.name, o.factory)
	}
	return child
}
