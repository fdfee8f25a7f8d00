package uiatest

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// invoke runs one test: setup, the body, triage of whatever went wrong, cleanup, and the final
// log entries. Everything that happens inside is turned into the returned result; nothing
// propagates to the caller.
func invoke(env *Environment, id TestID, c Case, target uia.Element, args []ldvalue.Value, scenario bool) TestResult {
	t := newT(id, c.Descriptor, env, target, args)

	var failures []error
	snapshot, err := takeSnapshot(env.Provider, target)
	t.snapshot = snapshot
	env.TestLogger.TestStarted(TestInfo{ID: id, Descriptor: c.Descriptor, Snapshot: snapshot})
	if err != nil {
		failures = append(failures, err)
	} else if err := t.checkHeader(scenario); err != nil {
		failures = append(failures, err)
	} else {
		failures = t.execute(c.Run)
	}

	outcome := Passed
	for _, f := range failures {
		outcome = worse(outcome, t.triage(f))
	}
	if len(t.warnings) > 0 {
		outcome = worse(outcome, PassedWithWarning)
		failures = append(failures, t.warnings...)
	}

	if err := t.cleanup(); err != nil {
		err = fmt.Errorf("cleanup failed: %w", err)
		env.TestLogger.TestError(id, t.cursor.Index(), err)
		failures = append(failures, err)
		outcome = Failed
	}

	result := TestResult{TestID: id, Outcome: outcome, Errors: failures, Steps: t.cursor.Index()}
	if outcome.OK() {
		env.TestLogger.TestPassed(id, outcome)
	}
	env.TestLogger.TestFinished(id, result, t.debugLogger.Output())
	return result
}

// takeSnapshot describes the target element. Properties that cannot be read are left empty;
// the only error returned is a critical one, meaning the element is unusable.
func takeSnapshot(p uia.PropertySource, target uia.Element) (ElementSnapshot, error) {
	s := ElementSnapshot{Element: target}
	if target.IsZero() || p == nil {
		return s, nil
	}
	get := func(prop uia.PropertyID) (string, error) {
		v, err := p.GetPropertyValue(target, prop, false)
		if err != nil {
			if KindOf(err) == Critical {
				return "", fmt.Errorf("could not describe %s: %w", target, err)
			}
			return "", nil
		}
		return v.StringValue(), nil
	}

	var err error
	if s.Name, err = get(uia.PropertyName); err != nil {
		return s, err
	}
	if s.ControlType, err = get(uia.PropertyControlType); err != nil {
		return s, err
	}
	if s.ControlType == "" {
		localized, err := get(uia.PropertyLocalizedControlType)
		if err != nil {
			return s, err
		}
		if localized != "" {
			s.ControlType = "* " + localized
		}
	}
	if s.AutomationID, err = get(uia.PropertyAutomationID); err != nil {
		return s, err
	}
	if s.ClassName, err = get(uia.PropertyClassName); err != nil {
		return s, err
	}
	return s, nil
}

// checkHeader verifies the preconditions every test has. Ordinary tests need their element to
// still exist; scenario tests drive their own elements but must say which client they are for.
func (t *T) checkHeader(scenario bool) error {
	if scenario {
		if t.desc.Client == "" {
			return &TestError{Kind: VerificationFailure, Message: "scenario test does not declare a client"}
		}
		return nil
	}
	if t.env.Provider == nil {
		return &TestError{Kind: Critical, Message: "no automation provider is configured"}
	}
	if t.target.IsZero() {
		return &TestError{Kind: ConfigurationMismatch, Message: "Element does not exist"}
	}
	if _, err := uia.BoundingRectangle(t.env.Provider, t.target); err != nil {
		return &TestError{Kind: ConfigurationMismatch, Message: "Element does not exist", Cause: err}
	}
	return nil
}

// execute runs the test body and returns the failures it raised.
func (t *T) execute(body func(*T)) (failures []error) {
	defer func() {
		if r := recover(); r != nil {
			t.recordPanic(r)
		}
		failures = t.errors
	}()
	body(t)
	return nil
}

func (t *T) recordPanic(r interface{}) {
	if r == t {
		if len(t.errors) == 0 && !t.waived {
			t.errors = append(t.errors, errors.New("test failed with no failure message"))
		}
		return
	}
	stack := string(debug.Stack())
	t.Debug("Panic in test: %v\n%s", r, stack)
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%+v", r)
	}
	t.errors = append(t.errors, &InvocationError{Cause: cause, Stack: stack})
}

// cleanup runs deferred actions, removes every event subscription and waits for in-flight
// events to settle. It runs exactly once per invocation, however the body ended.
func (t *T) cleanup() error {
	var errs []error
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		errs = append(errs, t.runCleanup(t.cleanups[i]))
	}
	t.cleanups = nil
	errs = append(errs, t.removeAllMonitors())
	t.sleep(t.env.Timing.SettleDelay)
	return errors.Join(errs...)
}

func (t *T) runCleanup(action func()) (err error) {
	before := len(t.errors)
	defer func() {
		if r := recover(); r != nil {
			t.recordPanic(r)
		}
		if len(t.errors) > before {
			err = errors.Join(t.errors[before:]...)
			t.errors = t.errors[:before]
		}
	}()
	action()
	return nil
}
