package container

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinels for errors.Is. Every typed error below unwraps to one of them.
var (
	ErrMissingService              = errors.New("container: service not found")
	ErrDuplicateService            = errors.New("container: service already registered")
	ErrEnvironmentVariableNotFound = errors.New("container: environment variable not found")
)

// MissingServiceError is returned when one or more names cannot be resolved
// anywhere in the parent chain.
type MissingServiceError struct {
	Names []string
}

func (e *MissingServiceError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = strconv.Quote(n)
	}
	if len(quoted) == 1 {
		return "container: service " + quoted[0] + " not found"
	}
	return "container: services not found: " + strings.Join(quoted, ", ")
}

func (e *MissingServiceError) Unwrap() error { return ErrMissingService }

// DuplicateServiceError is returned by Register when the name already has a
// local factory.
type DuplicateServiceError struct {
	Name string
}

func (e *DuplicateServiceError) Error() string {
	// Example: container: service "db" already registered
	return "container: service " + strconv.Quote(e.Name) + " already registered"
}

func (e *DuplicateServiceError) Unwrap() error { return ErrDuplicateService }

// EnvironmentVariableNotFoundError is returned by RegisterFromEnvironment when
// there is no environment value, no default and no ancestor factory.
type EnvironmentVariableNotFoundError struct {
	Key  string
	Name string
}

func (e *EnvironmentVariableNotFoundError) Error() string {
	return fmt.Sprintf("container: environment variable %s not set for service %q", e.Key, e.Name)
}

func (e *EnvironmentVariableNotFoundError) Unwrap() error { return ErrEnvironmentVariableNotFound }

// TypeMismatchError is returned by Resolve when the service exists but holds
// a value of another type.
type TypeMismatchError struct {
	Name string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: service %q resolved to %s, want %s", e.Name, e.Got, e.Want)
}
