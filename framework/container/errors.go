package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/km-arc/go-opengenerics/framework/types"
)

var (
	// ErrNilType is returned when a nil service or implementation is given.
	ErrNilType = errors.New("container: nil type")

	// ErrParameterService is returned when a bare parameter slot is used as a
	// service.
	ErrParameterService = errors.New("container: a parameter slot cannot be a service")

	// ErrOpenService is returned when a service that still contains
	// parameter slots is registered or resolved. Open registrations use the
	// generic definition itself.
	ErrOpenService = errors.New("container: service type is open")
)

// UnrelatedImplementationError is returned by Register when no type in the
// implementation's hierarchy is built from the service's definition.
type UnrelatedImplementationError struct {
	Service        *types.Type
	Implementation *types.Type
}

func (e *UnrelatedImplementationError) Error() string {
	return fmt.Sprintf("container: %s does not implement %s", e.Implementation, e.Service)
}

// NoImplementationError is returned when nothing registered can serve a
// requested service.
type NoImplementationError struct {
	Service *types.Type
}

func (e *NoImplementationError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s]", e.Service)
}

// CircularDependencyError reports a service that, directly or through
// other services, requires itself.
type CircularDependencyError struct {
	Chain []*types.Type
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = t.String()
	}
	return "container: circular dependency: " + strings.Join(names, " -> ")
}

// FactoryError wraps an error returned by a factory or activator.
type FactoryError struct {
	Service *types.Type
	Err     error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("container: building [%s]: %v", e.Service, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means no implementation was available.
func IsNotFound(err error) bool {
	var nf *NoImplementationError
	return errors.As(err, &nf)
}
