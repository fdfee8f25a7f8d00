package uiatest

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/uia-contract-tests/uia"
)

// ErrorKind classifies a test failure. It selects what triage does with it, and it is also the
// check policy that verification steps take: the kind to report if the check does not hold.
type ErrorKind int

const (
	// UnknownError is any failure that is not a *TestError, such as an unexpected error from
	// the provider. Triage treats it like a verification failure.
	UnknownError ErrorKind = iota

	// ConfigurationMismatch means the element does not meet the test's preconditions. The test
	// does not apply, which counts as a pass.
	ConfigurationMismatch

	// VerificationFailure means the element did not behave as expected.
	VerificationFailure

	// Warning is a soft failure that counts as a pass.
	Warning

	// Critical means the test cannot continue, for instance because the element is gone.
	Critical
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownError:
		return "Unknown"
	case ConfigurationMismatch:
		return "ConfigurationMismatch"
	case VerificationFailure:
		return "Verification"
	case Warning:
		return "Warning"
	case Critical:
		return "Critical"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// TestError is a failure raised by a test body or a step operation.
type TestError struct {
	Kind    ErrorKind
	Step    int
	Message string
	Cause   error
}

func (e *TestError) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TestError) Unwrap() error { return e.Cause }

// KindOf determines the kind of an arbitrary error. A *TestError anywhere in the chain wins;
// otherwise uia.ErrElementNotAvailable is critical and everything else is unknown.
func KindOf(err error) ErrorKind {
	var te *TestError
	if errors.As(err, &te) {
		return te.Kind
	}
	if errors.Is(err, uia.ErrElementNotAvailable) {
		return Critical
	}
	return UnknownError
}

// InvocationError wraps anything that escaped a test body other than a failure raised through
// T, such as a panic from a nil map. Triage looks through it at the cause.
type InvocationError struct {
	Cause error
	Stack string
}

func (e *InvocationError) Error() string {
	return "unexpected panic in test: " + e.Cause.Error()
}

func (e *InvocationError) Unwrap() error { return e.Cause }

// NotFoundError is returned by the dispatcher when a suite or test does not exist. It is the
// only failure that is reported as an error rather than as a test result.
type NotFoundError struct {
	Suite string
	Test  string
}

func (e *NotFoundError) Error() string {
	if e.Test == "" {
		return fmt.Sprintf("test suite %q not found", e.Suite)
	}
	return fmt.Sprintf("test %q not found in suite %q", e.Test, e.Suite)
}

type RegistrationError struct {
	Suite  string
	Name   string
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cannot register suite %q: %s", e.Suite, e.Reason)
	}
	return fmt.Sprintf("cannot register test %q in suite %q: %s", e.Name, e.Suite, e.Reason)
}

// innermost returns the error that triage should classify: the outermost *TestError in the
// chain if there is one, otherwise the innermost wrapped cause.
func innermost(err error) error {
	var te *TestError
	if errors.As(err, &te) {
		return te
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
