// Unified error handling for the arm simulator.
//
// All failures from the kinematics core are reported as *SimError values
// carrying a stable code plus the structured context a consumer needs to
// present the failure (offending point, reach bounds, parameter name)
// without parsing message strings.
package errors

import "fmt"

// ErrorCode represents the category of error
type ErrorCode string

const (
	// ErrInvalidParameter indicates a non-positive link length, speed or
	// time step, or a negative circle radius. Detected before any
	// kinematics work is done.
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrOutOfReach indicates a target point or circle outside the
	// reachable annulus.
	ErrOutOfReach ErrorCode = "OUT_OF_REACH"

	// ErrDegenerateConfig indicates a joint configuration that has no
	// unique solution, such as L1 == L2 with the target at the base.
	ErrDegenerateConfig ErrorCode = "DEGENERATE_CONFIG"
)

// SimError is the unified error type for the simulator core.
type SimError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Param is the offending parameter name (if applicable)
	Param string

	// PointX, PointY is the offending target point (if applicable)
	PointX float64
	PointY float64

	// MinReach, MaxReach are the arm's reach bounds (OUT_OF_REACH only)
	MinReach float64
	MaxReach float64

	// HasPoint reports whether PointX/PointY are meaningful
	HasPoint bool

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *SimError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Param, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SimError) Unwrap() error {
	return e.Err
}

// SetPoint records the offending target point
func (e *SimError) SetPoint(x, y float64) *SimError {
	e.PointX = x
	e.PointY = y
	e.HasPoint = true
	return e
}

// SetParam records the offending parameter name
func (e *SimError) SetParam(param string) *SimError {
	e.Param = param
	return e
}

// New creates a new SimError
func New(code ErrorCode, message string) *SimError {
	return &SimError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *SimError {
	return &SimError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidParameterError creates an error for a rejected input parameter
func InvalidParameterError(param string, reason string) *SimError {
	return New(ErrInvalidParameter, fmt.Sprintf("parameter '%s': %s", param, reason)).
		SetParam(param)
}

// OutOfReachError creates an error for a target outside the reachable annulus
func OutOfReachError(x, y, minReach, maxReach float64) *SimError {
	e := New(ErrOutOfReach, fmt.Sprintf(
		"target point (%.3f, %.3f) is outside the reachable annulus [%.3f, %.3f]",
		x, y, minReach, maxReach))
	e.MinReach = minReach
	e.MaxReach = maxReach
	return e.SetPoint(x, y)
}

// DegenerateConfigurationError creates an error for a target with no unique
// joint solution
func DegenerateConfigurationError(x, y float64, reason string) *SimError {
	return New(ErrDegenerateConfig, fmt.Sprintf(
		"target point (%.3f, %.3f): %s", x, y, reason)).
		SetPoint(x, y)
}

// Is checks if error matches the given error code
func Is(err error, code ErrorCode) bool {
	if simErr, ok := err.(*SimError); ok {
		return simErr.Code == code
	}
	return false
}

// IsInvalidParameter checks if error is a parameter validation error
func IsInvalidParameter(err error) bool {
	return Is(err, ErrInvalidParameter)
}

// IsOutOfReach checks if error is a reachability error
func IsOutOfReach(err error) bool {
	return Is(err, ErrOutOfReach)
}

// IsDegenerate checks if error is a degenerate configuration error
func IsDegenerate(err error) bool {
	return Is(err, ErrDegenerateConfig)
}

// AsSimError extracts a *SimError from err, or nil if it is not one
func AsSimError(err error) *SimError {
	if simErr, ok := err.(*SimError); ok {
		return simErr
	}
	return nil
}
