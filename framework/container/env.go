package container

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// Environment is the key-value source consulted by RegisterFromEnvironment.
type Environment interface {
	Lookup(key string) (string, bool)
}

// OSEnvironment reads the process environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapEnvironment is a static Environment, handy in tests.
type MapEnvironment map[string]string

func (m MapEnvironment) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvKey returns the environment key for a service name: its upper-cased
// form with any leading ':' dropped ("api_password" → "API_PASSWORD").
func EnvKey(name string) string {
	return strings.ToUpper(strings.TrimPrefix(name, ":"))
}

// RegisterFromEnvironment binds name to a value taken from the environment.
//
// The value is looked up under EnvKey(name). When absent, the optional
// default is used (a nil default still counts as supplied). Without a
// default, an existing factory in an ancestor is accepted and
// nothing is registered locally, so later lookups keep falling through to
// the parent. Otherwise an *EnvironmentVariableNotFoundError is returned.
//
//	// DATABASE_URL=postgres://... in the environment
//	err := c.RegisterFromEnvironment("database_url")
//	err = c.RegisterFromEnvironment("port", "8080")
func (c *Container) RegisterFromEnvironment(name string, def ...any) error {
	key := EnvKey(name)

	if v, ok := c.environment().Lookup(key); ok {
		return c.Register(name, Value(v))
	}
	if len(def) > 0 {
		return c.Register(name, Value(def[0]))
	}
	if c.parent != nil {
		if _, err := c.parent.factoryFor(name); err == nil {
			c.logger.Debug("environment binding falls through to parent", zap.String("service", name))
			return nil
		}
	}
	return &EnvironmentVariableNotFoundError{Key: key, Name: name}
}

func (c *Container) environment() Environment {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.env != nil {
			return cur.env
		}
	}
	return OSEnvironment{}
}
