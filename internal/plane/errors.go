package plane

import "fmt"

// ConfigError reports a dataset or query that is structurally unusable:
// missing frame metadata, mismatched array shapes, unknown variables.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "plane: invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// DegenerateAxisError reports an axis vector whose norm is too small to
// normalize. An exactly zero axis3 is legal (single-plane dataset) and
// does not produce this error.
type DegenerateAxisError struct {
	Axis string
	Norm float64
}

func (e *DegenerateAxisError) Error() string {
	return fmt.Sprintf("plane: degenerate %s (norm %g): cannot normalize", e.Axis, e.Norm)
}

// DomainError reports a query point or time index outside the
// interpolable extent of the native grid.
type DomainError struct {
	Plane    int
	Variable string
	A1, A2   float64
	Reason   string
}

func (e *DomainError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("plane %d: %s: point (a1=%g, a2=%g) %s",
			e.Plane, e.Variable, e.A1, e.A2, e.Reason)
	}
	return fmt.Sprintf("plane %d: point (a1=%g, a2=%g) %s", e.Plane, e.A1, e.A2, e.Reason)
}
