package uiatest

import (
	"errors"

	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Every exported step operation on T advances the step cursor by exactly one, whether it
// succeeds, is waived or fails.

// Step logs a free-form step, for script steps that are performed by code in the test body
// rather than by another step operation.
func (t *T) Step(format string, args ...interface{}) {
	t.Comment(format, args...)
	t.cursor.advance()
}

// ExpectError checks that an operation failed with target (compared with errors.Is). A nil
// target accepts any error.
func (t *T) ExpectError(err error, target error, check ErrorKind) {
	defer t.cursor.advance()
	switch {
	case err == nil:
		t.Fail(check, "expected an error but the call succeeded")
	case target != nil && !errors.Is(err, target):
		t.Fail(check, "expected error %q but got %q", target, err)
	default:
		t.Comment("Got the expected error: %s", err)
	}
}

// ExpectNoError checks that an operation succeeded.
func (t *T) ExpectNoError(err error, check ErrorKind) {
	defer t.cursor.advance()
	if err != nil {
		t.FailIf(err, check, "unexpected error")
		return
	}
	t.Comment("Call succeeded")
}

// VerifyProperty checks that an element supports a property and returns its current value.
func (t *T) VerifyProperty(el uia.Element, prop uia.PropertyID, check ErrorKind) ldvalue.Value {
	defer t.cursor.advance()
	v, err := t.env.Provider.GetPropertyValue(el, prop, false)
	t.FailIf(err, check, "could not get %s of %s", prop, el)
	t.Comment("%s = %s", prop, v.JSONString())
	return v
}

// VerifyPropertyEqual checks a property's current value.
func (t *T) VerifyPropertyEqual(el uia.Element, prop uia.PropertyID, expected ldvalue.Value, check ErrorKind) {
	defer t.cursor.advance()
	v, err := t.env.Provider.GetPropertyValue(el, prop, false)
	if err != nil {
		t.FailIf(err, check, "could not get %s of %s", prop, el)
		return
	}
	if !v.Equal(expected) {
		t.Fail(check, "%s of %s: expected %s but was %s", prop, el, expected.JSONString(), v.JSONString())
		return
	}
	t.Comment("%s = %s as expected", prop, v.JSONString())
}

// VerifyPropertyNotEqual checks that a property's current value is not the given one.
func (t *T) VerifyPropertyNotEqual(el uia.Element, prop uia.PropertyID, unexpected ldvalue.Value, check ErrorKind) {
	defer t.cursor.advance()
	v, err := t.env.Provider.GetPropertyValue(el, prop, false)
	if err != nil {
		t.FailIf(err, check, "could not get %s of %s", prop, el)
		return
	}
	if v.Equal(unexpected) {
		t.Fail(check, "%s of %s: did not expect %s", prop, el, v.JSONString())
		return
	}
	t.Comment("%s = %s", prop, v.JSONString())
}

// VerifyBoundingRect checks an element's bounding rectangle.
func (t *T) VerifyBoundingRect(el uia.Element, expected uia.Rect, check ErrorKind) {
	defer t.cursor.advance()
	r, err := uia.BoundingRectangle(t.env.Provider, el)
	if err != nil {
		t.FailIf(err, check, "could not get bounding rectangle of %s", el)
		return
	}
	if r != expected {
		t.Fail(check, "bounding rectangle of %s: expected %s but was %s", el, expected, r)
		return
	}
	t.Comment("Bounding rectangle is %s as expected", r)
}

// FromPoint returns the element at a screen point.
func (t *T) FromPoint(pt uia.Point) uia.Element {
	defer t.cursor.advance()
	el, err := t.env.Provider.FromPoint(pt)
	t.Check(err, VerificationFailure, "FromPoint(%g,%g)", pt.X, pt.Y)
	t.Comment("FromPoint(%g,%g) returned %s", pt.X, pt.Y, el)
	return el
}

// FromHandle returns the element for a native window handle.
func (t *T) FromHandle(hwnd int) uia.Element {
	defer t.cursor.advance()
	el, err := t.env.Provider.FromHandle(hwnd)
	t.Check(err, VerificationFailure, "FromHandle(%d)", hwnd)
	t.Comment("FromHandle(%d) returned %s", hwnd, el)
	return el
}

// FocusedElement returns the element that currently has the keyboard focus.
func (t *T) FocusedElement() uia.Element {
	defer t.cursor.advance()
	el, err := t.env.Provider.FocusedElement()
	t.Check(err, VerificationFailure, "FocusedElement")
	t.Comment("Focused element is %s", el)
	return el
}

// SetFocusVerifyWithEvent moves the focus to el and checks that it arrived. With event testing
// on, the check is that a focus-change event for el (or an element inside it) was received;
// otherwise it asks the provider which element is focused.
func (t *T) SetFocusVerifyWithEvent(el uia.Element, check ErrorKind) {
	defer t.cursor.advance()
	withEvent := t.env.EventsEnabled
	if withEvent {
		if t.desc.Type&Events == 0 || t.desc.EventTested == "" {
			t.Throw(VerificationFailure, "test uses event steps but is not declared as an event test with an event under test")
		}
		if t.focus == nil {
			t.Check(t.focusMonitor().Subscribe(), Critical, "SetFocusVerifyWithEvent")
			t.sleep(t.env.Timing.FocusListenerSettleDelay)
		}
	}

	t.Comment("Setting focus to %s", el)
	t.FailIf(t.env.Provider.SetFocus(el), check, "SetFocus(%s)", el)

	if withEvent {
		t.verifyFired("focus change to "+el.String(), t.focusMonitor().WasFired(el), Fired, check)
		return
	}
	focused, err := t.env.Provider.FocusedElement()
	if err != nil {
		t.FailIf(err, check, "FocusedElement")
		return
	}
	if !isSameOrDescendant(t.env.Provider, focused, el) {
		t.Fail(check, "focus is on %s instead of %s", focused, el)
	}
}

// SetWindowVisualState changes a window's visual state, then waits (up to the visual state
// timeout) for its bounding rectangle to change.
func (t *T) SetWindowVisualState(el uia.Element, state uia.WindowVisualState, check ErrorKind) {
	defer t.cursor.advance()
	p := t.env.Provider
	window, err := uia.GetWindowPattern(p, el, false)
	t.Check(err, ConfigurationMismatch, "%s does not support WindowPattern", el)

	current, err := window.Current().WindowVisualState()
	if err != nil {
		t.FailIf(err, check, "could not get WindowVisualState of %s", el)
		return
	}
	if current == state {
		t.Comment("%s is already %s", el, state)
		return
	}

	resized := NewSignal()
	sub, err := p.AddPropertyChangedHandler(el, uia.ScopeElement, []uia.PropertyID{uia.PropertyBoundingRectangle},
		func(uia.Element, uia.PropertyID, ldvalue.Value) { resized.Set() })
	t.Check(err, Critical, "could not listen for bounding rectangle changes")
	defer func() {
		if err := sub.Remove(); err != nil {
			t.Debug("Could not remove bounding rectangle listener: %s", err)
		}
	}()

	t.Comment("Setting %s to %s", el, state)
	t.FailIf(window.SetWindowVisualState(state), check, "SetWindowVisualState(%s)", state)
	if !resized.Wait(t.env.Timing.VisualStateTimeout) {
		t.Comment("Bounding rectangle of %s did not change within %s", el, t.env.Timing.VisualStateTimeout)
	}
}

// VerifyWindowVisualState checks a window's visual state.
func (t *T) VerifyWindowVisualState(el uia.Element, expected uia.WindowVisualState, check ErrorKind) {
	defer t.cursor.advance()
	window, err := uia.GetWindowPattern(t.env.Provider, el, false)
	t.Check(err, ConfigurationMismatch, "%s does not support WindowPattern", el)
	state, err := window.Current().WindowVisualState()
	if err != nil {
		t.FailIf(err, check, "could not get WindowVisualState of %s", el)
		return
	}
	if state != expected {
		t.Fail(check, "WindowVisualState of %s: expected %s but was %s", el, expected, state)
		return
	}
	t.Comment("WindowVisualState is %s as expected", state)
}
