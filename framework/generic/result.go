package generic

import "github.com/km-arc/go-opengenerics/framework/types"

// BuildResult is the outcome of BuildClosedGenericImplementation. The zero
// value is Invalid.
type BuildResult struct {
	valid  bool
	closed *types.Type
}

// Invalid is the result for an implementation that cannot serve the service.
func Invalid() BuildResult { return BuildResult{} }

// Valid wraps the closed implementation type.
func Valid(closed *types.Type) BuildResult {
	return BuildResult{valid: true, closed: closed}
}

// IsValid reports whether the implementation serves the requested service.
func (r BuildResult) IsValid() bool { return r.valid }

// ClosedGenericImplementation is the closed implementation, or nil when the
// result is invalid.
func (r BuildResult) ClosedGenericImplementation() *types.Type { return r.closed }

// Equal compares two results by value.
func (r BuildResult) Equal(other BuildResult) bool {
	return r.valid == other.valid && r.closed.Equal(other.closed)
}

func (r BuildResult) String() string {
	if !r.valid {
		return "invalid"
	}
	return "valid(" + r.closed.String() + ")"
}
