package domain

import (
	"errors"
	"fmt"
)

// Estimation errors. They arise only from malformed numeric input and are
// reported before any conversion starts.
var (
	// ErrEmptyInput indicates that no values were supplied.
	ErrEmptyInput = errors.New("cannot calculate geometric mean of empty input")

	// ErrNonPositiveValue indicates that a value was zero or negative.
	ErrNonPositiveValue = errors.New("geometric mean requires all positive values")

	// ErrValueTooSmall indicates that a value was below 1.0, which the
	// pen-and-paper methods cannot represent.
	ErrValueTooSmall = errors.New("values must be >= 1.0 for this pen-and-paper method")

	// ErrNonFiniteValue indicates that a value was NaN or infinite.
	ErrNonFiniteValue = errors.New("values must be finite")
)

// Configuration errors. They are returned by ReadySession.Start and keep a
// session from ever becoming active.
var (
	// ErrZeroTeamSize indicates that a practice round asked for zero guesses.
	ErrZeroTeamSize = errors.New("team size cannot be zero")

	// ErrInvalidAnswerRange indicates an empty answer range (min >= max) or a
	// range starting at zero.
	ErrInvalidAnswerRange = errors.New("answer range cannot be empty (min >= max)")

	// ErrInvalidSpread indicates a log standard deviation that is negative,
	// non-finite or too large to sample without overflow.
	ErrInvalidSpread = errors.New("log standard deviation must be finite and within [0, 50]")
)

// Session misuse errors. Go cannot consume a value on use, so re-using a
// session after its transition is reported instead.
var (
	// ErrSessionStarted indicates Start was called on a session that already
	// produced an active session.
	ErrSessionStarted = errors.New("practice session already started")

	// ErrSessionConsumed indicates SubmitAnswer was called twice on the same
	// active session.
	ErrSessionConsumed = errors.New("practice session already answered")
)

// EstimationError records which method rejected which input.
type EstimationError struct {
	// Method is the name of the estimation method that failed.
	Method string

	// Index is the position of the offending value, or -1 when the failure
	// concerns the input as a whole.
	Index int

	// Value is the offending value. It is zero when Index is -1.
	Value float64

	// Err is one of the estimation sentinel errors.
	Err error
}

// Error implements the error interface for EstimationError.
func (e *EstimationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("estimation error: method=%s, err=%v", e.Method, e.Err)
	}
	return fmt.Sprintf("estimation error: method=%s, index=%d, value=%g, err=%v",
		e.Method, e.Index, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *EstimationError) Unwrap() error { return e.Err }

// NewEstimationError creates a new EstimationError with the given details.
func NewEstimationError(method string, index int, value float64, err error) *EstimationError {
	return &EstimationError{
		Method: method,
		Index:  index,
		Value:  value,
		Err:    err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
