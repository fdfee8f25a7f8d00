package uiatest

import (
	"fmt"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// T is the per-invocation context passed to a test body. It owns the step cursor and the
// event monitors for that invocation.
//
// T implements require.TestingT, so testify's assert and require packages can be used in test
// bodies; their failures are verification failures at the current step.
type T struct {
	id       TestID
	desc     Descriptor
	env      *Environment
	target   uia.Element
	args     []ldvalue.Value
	snapshot ElementSnapshot
	cursor   StepCursor

	debugLogger framework.CapturingLogger
	events      *changeNotifier
	automation  *AutomationEventMonitor
	property    *PropertyChangeMonitor
	structure   *StructureChangeMonitor
	focus       *FocusChangeMonitor

	errors   []error
	warnings []error
	waived   bool
	cleanups []func()
}

func newT(id TestID, desc Descriptor, env *Environment, target uia.Element, args []ldvalue.Value) *T {
	t := &T{
		id:     id,
		desc:   desc,
		env:    env,
		target: target,
		args:   args,
		events: newChangeNotifier(),
	}
	t.cursor.desc = &t.desc
	return t
}

func (t *T) ID() TestID { return t.id }

func (t *T) Descriptor() Descriptor { return t.desc }

// Element is the element the test runs against.
func (t *T) Element() uia.Element { return t.target }

// Snapshot describes the target element as it was when the test started.
func (t *T) Snapshot() ElementSnapshot { return t.snapshot }

// Args returns the explicit arguments the test was invoked with, if any.
func (t *T) Args() []ldvalue.Value { return t.args }

// Arg returns argument i, or a null value if there are not that many.
func (t *T) Arg(i int) ldvalue.Value {
	if i < 0 || i >= len(t.args) {
		return ldvalue.Null()
	}
	return t.args[i]
}

func (t *T) Provider() uia.Provider { return t.env.Provider }

func (t *T) Timing() Timing { return t.env.Timing }

func (t *T) EventsEnabled() bool { return t.env.EventsEnabled }

// StepIndex is the current position of the step cursor.
func (t *T) StepIndex() int { return t.cursor.Index() }

// Comment logs a message tagged with the current step, without advancing.
func (t *T) Comment(format string, args ...interface{}) {
	t.env.TestLogger.TestComment(t.id, t.cursor.Index(), sprintf(format, args...))
}

// Debug writes to the test's debug log, which is only shown if the run is configured to.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
	if t.env.DebugLogger != nil {
		t.env.DebugLogger.Printf("[%s] %s", t.id, sprintf(message, args...))
	}
}

func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules an action to run during cleanup, after the body returns or fails. Deferred
// actions run in reverse order, before event subscriptions are removed.
func (t *T) Defer(action func()) {
	t.cleanups = append(t.cleanups, action)
}

// Throw fails the test with the given kind and stops it. A verification failure at a step whose
// description starts with BugMarker is only logged, and Throw then returns normally.
func (t *T) Throw(kind ErrorKind, format string, args ...interface{}) {
	t.throw(&TestError{Kind: kind, Step: t.cursor.Index(), Message: sprintf(format, args...)})
}

// Check stops the test if err is non-nil. The failure is reported with the given kind, unless
// err already carries a kind of its own or means the element is gone, which is critical.
func (t *T) Check(err error, kind ErrorKind, format string, args ...interface{}) {
	if err == nil {
		return
	}
	if k := KindOf(err); k != UnknownError {
		kind = k
	}
	t.throw(&TestError{Kind: kind, Step: t.cursor.Index(), Message: sprintf(format, args...), Cause: err})
}

// Fail reports a check that did not hold, under the check policy of the step. A Warning is
// logged and the test continues; any other kind stops the test as Throw does.
func (t *T) Fail(check ErrorKind, format string, args ...interface{}) {
	t.failWith(&TestError{Kind: check, Step: t.cursor.Index(), Message: sprintf(format, args...)})
}

// FailIf is Fail for a non-nil err. As with Check, a kind carried by err takes precedence over
// the policy.
func (t *T) FailIf(err error, check ErrorKind, format string, args ...interface{}) {
	if err == nil {
		return
	}
	if k := KindOf(err); k != UnknownError {
		check = k
	}
	t.failWith(&TestError{Kind: check, Step: t.cursor.Index(), Message: sprintf(format, args...), Cause: err})
}

func (t *T) failWith(err *TestError) {
	if err.Kind == Warning {
		t.Comment("WARNING: %s", err.Error())
		t.warnings = append(t.warnings, err)
		return
	}
	t.throw(err)
}

func (t *T) throw(err *TestError) {
	if t.waiveAtBugStep(err) {
		return
	}
	t.errors = append(t.errors, err)
	t.FailNow()
}

// Errorf records a verification failure and lets the test continue.
func (t *T) Errorf(format string, args ...interface{}) {
	err := &TestError{Kind: VerificationFailure, Step: t.cursor.Index(), Message: sprintf(format, args...)}
	if t.waiveAtBugStep(err) {
		return
	}
	t.errors = append(t.errors, err)
}

// FailNow stops the test. The pipeline recovers the panic.
func (t *T) FailNow() {
	panic(t)
}

func (t *T) waiveAtBugStep(err *TestError) bool {
	if err.Kind != VerificationFailure || !t.cursor.IsBugStep() {
		return false
	}
	t.Comment("\n\n$$$$$$$:%s:%s\n\n", t.cursor.Text(), err.Error())
	t.waived = true
	return true
}

func (t *T) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
