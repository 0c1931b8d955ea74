package fsm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInitialState is returned by Start when SetInitialState was never called.
	ErrNoInitialState = errors.New("initial state is not set")

	// ErrInitialStateSet is returned when a different initial state is declared a second time.
	ErrInitialStateSet = errors.New("initial state is already set")

	// ErrStaticTransitionExists is returned when a state that already owns a
	// static transition is given a second one.
	ErrStaticTransitionExists = errors.New("state already has a static transition")

	// ErrNoStaticTransition is returned by ToNextState when the current state
	// has no static transition.
	ErrNoStaticTransition = errors.New("state has no static transition")

	// ErrOwnerTypeMismatch is returned when an OwnedState is registered to a
	// machine whose host is not exactly of the expected type.
	ErrOwnerTypeMismatch = errors.New("owning state machine is not of the expected type")

	// ErrAlreadyRunning is returned by Start when the machine is running.
	ErrAlreadyRunning = errors.New("state machine is already running")

	// ErrNoContainer is returned by Acquire when the machine was built without a container.
	ErrNoContainer = errors.New("state machine has no dependency container")
)

// ConfigurationError indicates a transition graph that was declared or used
// incorrectly. These errors are meant to be fixed in code, not recovered from.
type ConfigurationError struct {
	// Err is one of the package's sentinel errors.
	Err error

	// Message describes the offending declaration.
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MissingTransitionError is returned by ToState when no free-flow transition
// was declared from the current state to the requested one.
type MissingTransitionError struct {
	From string
	To   string
}

func (e *MissingTransitionError) Error() string {
	return fmt.Sprintf(
		"free-flow transition from state %s to state %s does not exist; declare it with AddFreeFlowTransition[%s, %s]",
		e.From, e.To, e.From, e.To)
}

func newConfigurationError(err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsMissingTransitionError reports whether err is, or wraps, a MissingTransitionError.
func IsMissingTransitionError(err error) bool {
	var e *MissingTransitionError
	return errors.As(err, &e)
}
