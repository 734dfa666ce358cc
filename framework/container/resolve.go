package container

import (
	"fmt"
	"reflect"
)

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result. A nil service value
// resolves to the zero T when T can hold nil (interfaces, pointers, maps,
// slices, funcs, channels).
//
//	// Instead of: v, err := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil && nillable[T]() {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Name: name,
			Want: fmt.Sprintf("%T", &zero)[1:],
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}

func nillable[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// Accessor is a typed handle for one service name.
//
//	var Clock, _ = container.Define(app, "clock", func(*container.Container) (time.Time, error) {
//	    return time.Now(), nil
//	})
//	now, err := Clock.Get(child)
type Accessor[T any] struct {
	name string
}

// Define registers a typed factory under name and exposes name as a member of
// c. It fails like Register on a duplicate name.
func Define[T any](c *Container, name string, f func(c *Container) (T, error)) (Accessor[T], error) {
	err := c.Register(name, func(c *Container) (any, error) {
		return f(c)
	})
	if err != nil {
		return Accessor[T]{}, err
	}
	c.expose(name)
	return Accessor[T]{name: name}, nil
}

// Name returns the service name behind the accessor.
func (a Accessor[T]) Name() string { return a.name }

// Get resolves the service through c, which may be any container in the
// defining container's subtree.
func (a Accessor[T]) Get(c *Container) (T, error) {
	return Resolve[T](c, a.name)
}

// MustGet is like Get but panics on error.
func (a Accessor[T]) MustGet(c *Container) T {
	return MustResolve[T](c, a.name)
}
