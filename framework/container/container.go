package container

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Factory ───────────────────────────────────────────────────────────────────

// Factory builds a service. c is the container Get was called on, which may
// be a child of the container that owns the factory; resolve dependencies
// through c so the caller's overrides apply.
type Factory func(c *Container) (any, error)

// Value returns a Factory that always yields v.
//
//	c.Register("port", container.Value("8080"))
func Value(v any) Factory {
	return func(_ *Container) (any, error) { return v, nil }
}

// ErrRootRegistration is returned when registering on the root container.
var ErrRootRegistration = errors.New("container: the root container accepts no registrations")

// ── Container ─────────────────────────────────────────────────────────────────

// Container maps service names to factories and caches each factory's result
// on first use.
//
// Lookups that miss locally fall through to the parent. Every chain ends at
// Root(), which knows no services.
type Container struct {
	id     string
	parent *Container
	root   bool

	mu sync.RWMutex

	// name → factory
	factories map[string]Factory

	// names readable as members without going through the factory table
	members map[string]struct{}

	cache *cache

	env Environment

	// base is the configured logger; logger adds this container's id.
	base   *zap.Logger
	logger *zap.Logger
}

// Option configures a Container at construction.
type Option func(*Container)

// WithLogger sets the logger. Children inherit it unless given their own.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.base = l
		}
	}
}

// WithEnvironment sets the source read by RegisterFromEnvironment. Without
// one, the nearest ancestor's environment is used, then the process
// environment.
func WithEnvironment(env Environment) Option {
	return func(c *Container) { c.env = env }
}

var (
	rootOnce sync.Once
	root     *Container
)

// Root returns the process-wide terminator of every parent chain.
func Root() *Container {
	rootOnce.Do(func() {
		root = newContainer(nil)
		root.root = true
	})
	return root
}

// New creates an empty container whose parent is Root().
func New(opts ...Option) *Container {
	return newContainer(Root(), opts...)
}

// NewChild creates an empty container that falls back to parent. A nil
// parent means Root().
func NewChild(parent *Container, opts ...Option) *Container {
	if parent == nil {
		parent = Root()
	}
	return newContainer(parent, opts...)
}

// Child is shorthand for NewChild(c, opts...).
func (c *Container) Child(opts ...Option) *Container {
	return NewChild(c, opts...)
}

func newContainer(parent *Container, opts ...Option) *Container {
	c := &Container{
		id:        uuid.NewString(),
		parent:    parent,
		factories: make(map[string]Factory),
		members:   make(map[string]struct{}),
		cache:     newCache(),
	}
	if parent != nil {
		c.members["parent"] = struct{}{}
	}
	c.base = zap.NewNop()
	if parent != nil {
		c.base = parent.base
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.base.With(zap.String("container", c.id))
	return c
}

// ID returns the container's unique id, as used in log fields.
func (c *Container) ID() string { return c.id }

// Parent returns the fallback container, or nil for Root().
func (c *Container) Parent() *Container { return c.parent }

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds name to f. It fails with *DuplicateServiceError when name
// already has a local factory; the existing factory stays in place.
//
//	err := c.Register("db", func(c *container.Container) (any, error) {
//	    dsn, err := container.Resolve[string](c, "database_url")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open("postgres", dsn)
//	})
func (c *Container) Register(name string, f Factory) error {
	return c.RegisterWith(name, f, false)
}

// RegisterWith binds name to f. With allowDuplicate an existing local factory
// is replaced and the cached value for name is dropped.
func (c *Container) RegisterWith(name string, f Factory, allowDuplicate bool) error {
	if c.root {
		return ErrRootRegistration
	}

	c.mu.Lock()
	_, exists := c.factories[name]
	if exists && !allowDuplicate {
		c.mu.Unlock()
		return &DuplicateServiceError{Name: name}
	}
	c.factories[name] = f
	c.mu.Unlock()

	if exists {
		c.cache.delete(name)
		c.logger.Debug("service overridden", zap.String("service", name))
		return nil
	}
	c.logger.Debug("service registered", zap.String("service", name))
	return nil
}

// Override replaces (or creates) the binding for name and drops its cached
// value. It panics on Root().
func (c *Container) Override(name string, f Factory) {
	if err := c.RegisterWith(name, f, true); err != nil {
		panic(err)
	}
}

// expose marks name as a member readable on this container.
func (c *Container) expose(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members[name] = struct{}{}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the service bound to name, building and caching it on first
// use. The factory runs with c as its argument and its result is cached in c,
// even when the factory belongs to an ancestor.
//
// Factory errors are returned unchanged and nothing is cached, so a later Get
// runs the factory again.
func (c *Container) Get(name string) (any, error) {
	v, hit, err := c.cache.getOrCompute(name, func() (any, error) {
		f, err := c.factoryFor(name)
		if err != nil {
			return nil, err
		}
		return f(c)
	})
	if err != nil {
		c.logger.Debug("service resolution failed", zap.String("service", name), zap.Error(err))
		return nil, err
	}
	if !hit {
		c.logger.Debug("service built", zap.String("service", name))
	}
	return v, nil
}

// MustGet is like Get but panics on error. Intended for bootstrap code.
func (c *Container) MustGet(name string) any {
	v, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// factoryFor finds the nearest factory for name without invoking it.
func (c *Container) factoryFor(name string) (Factory, error) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		f, ok := cur.factories[name]
		cur.mu.RUnlock()
		if ok {
			return f, nil
		}
	}
	return nil, &MissingServiceError{Names: []string{name}}
}

// ClearCache drops every cached value of this container. Parents keep theirs.
func (c *Container) ClearCache() {
	c.cache.clear()
	c.logger.Debug("cache cleared")
}

// ── Verification ──────────────────────────────────────────────────────────────

// ServiceExists reports whether name resolves to a factory here or in an
// ancestor, or is a member exposed on this container.
func (c *Container) ServiceExists(name string) bool {
	c.mu.RLock()
	_, member := c.members[name]
	c.mu.RUnlock()
	if member {
		return true
	}

	_, err := c.factoryFor(name)
	return err == nil
}

// VerifyDependencies reports whether every name exists.
func (c *Container) VerifyDependencies(names ...string) bool {
	for _, n := range names {
		if !c.ServiceExists(n) {
			return false
		}
	}
	return true
}

// VerifyDependenciesOrFail returns a *MissingServiceError listing every name
// that does not exist, or nil.
func (c *Container) VerifyDependenciesOrFail(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.ServiceExists(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingServiceError{Names: missing}
	}
	return nil
}

// ── Introspection ─────────────────────────────────────────────────────────────

// ServiceState is the lifecycle position of a name within one container.
type ServiceState int

const (
	Unregistered ServiceState = iota
	RegisteredUncached
	RegisteredCached
)

func (s ServiceState) String() string {
	switch s {
	case RegisteredUncached:
		return "registered"
	case RegisteredCached:
		return "cached"
	default:
		return "unregistered"
	}
}

// State reports where name stands in this container. A name counts as
// registered when any ancestor has a factory for it.
func (c *Container) State(name string) ServiceState {
	if _, err := c.factoryFor(name); err != nil {
		return Unregistered
	}
	if _, ok := c.cache.get(name); ok {
		return RegisteredCached
	}
	return RegisteredUncached
}

// Cached reports whether name currently has a cached value in this container.
func (c *Container) Cached(name string) bool {
	_, ok := c.cache.get(name)
	return ok
}

// Names returns the locally registered service names, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.factories))
	for k := range c.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CachedNames returns the names with a cached value in this container, sorted.
func (c *Container) CachedNames() []string {
	return c.cache.keys()
}
