package uiatest

import (
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uia/uiafake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestEventStepsWhenEventsAreDisabled(t *testing.T) {
	f := newFixture()
	f.env.EventsEnabled = false
	c := simpleCase("no-events", func(t *T) {
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventInvoked)
		t.WaitForEvents(1)
		t.VerifyEventListener(t.Element(), uia.EventInvoked, Fired, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome)
	assert.Equal(t, 3, result.Steps)
	assert.Len(t, f.logger.commentsContaining("Event testing is not turned on"), 3)
	assert.Equal(t, 0, f.tree.ActiveSubscriptions())
}

func TestEventStepsRequireEventDeclaration(t *testing.T) {
	f := newFixture()
	c := simpleCase("undeclared", func(t *T) {
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventInvoked)
	})
	result := f.run(c)
	assert.Equal(t, Failed, result.Outcome)
	assert.Equal(t, 1, result.Steps)
}

func TestAutomationEventSteps(t *testing.T) {
	f := newFixture()
	f.tree.Async = true
	c := eventCase("invoke", func(t *T) {
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventInvoked)
		f.tree.RaiseAutomationEvent(t.Element(), uia.EventInvoked)
		t.WaitForEvents(1)
		t.VerifyEventListener(t.Element(), uia.EventInvoked, Fired, VerificationFailure)
		t.VerifyEventCount(1, VerificationFailure)
		t.RemoveAllEventsFired()
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventMenuOpened)
		t.VerifyEventListener(t.Element(), uia.EventMenuOpened, NotFired, VerificationFailure)
		t.VerifyEventCount(0, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
	assert.Equal(t, 8, result.Steps)
	assert.Equal(t, 0, f.tree.ActiveSubscriptions())
}

func TestVerifyEventListenerFailsWhenEventMissing(t *testing.T) {
	f := newFixture()
	c := eventCase("missing", func(t *T) {
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventInvoked)
		t.WaitForEvents(1)
		t.VerifyEventListener(t.Element(), uia.EventInvoked, Fired, VerificationFailure)
	})
	start := time.Now()
	result := f.run(c)
	assert.Equal(t, Failed, result.Outcome)
	assert.True(t, time.Since(start) >= f.env.Timing.EventWaitTimeout)
	require.Len(t, f.logger.errors, 1)
	assert.Contains(t, f.logger.errors[0].message, "expected Fired but was NotFired")
	assert.Len(t, f.logger.commentsContaining("Timed out waiting for 1 event(s)"), 1)
}

func TestUndeterminedExpectationIsOnlyLogged(t *testing.T) {
	f := newFixture()
	c := eventCase("undetermined", func(t *T) {
		t.AddEventListener(t.Element(), uia.ScopeElement, uia.EventInvoked)
		t.VerifyEventListener(t.Element(), uia.EventInvoked, Undetermined, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome)
	assert.Len(t, f.logger.commentsContaining("(not asserted)"), 1)
}

func TestPropertyChangedSteps(t *testing.T) {
	f := newFixture()
	c := eventCase("property", func(t *T) {
		t.AddPropertyChangedListener(t.Element(), uia.ScopeElement, uia.PropertyName)
		f.tree.SetProperty(t.Element(), uia.PropertyName, ldvalue.String("Renamed"))
		t.VerifyPropertyChangedListener(t.Element(), uia.PropertyName, Fired, VerificationFailure)
		t.VerifyPropertyChangedListener(t.Element(), uia.PropertyIsEnabled, NotFired, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
}

func TestStructureChangedSteps(t *testing.T) {
	f := newFixture()
	c := eventCase("structure", func(t *T) {
		t.AddStructureChangedListener(t.Element(), uia.ScopeElement)
		f.tree.AddChild(t.Element(), "Node", "treeitem")
		t.VerifyStructureChangedEvent(t.Element(), uia.StructureChildAdded, Fired, VerificationFailure)
		t.VerifyStructureChangedEvent(t.Element(), uia.StructureChildRemoved, NotFired, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
}

func TestFocusSteps(t *testing.T) {
	f := newFixture()
	f.tree.Async = true
	edit := f.tree.AddChild(f.target, "Edit", "edit")
	c := eventCase("focus", func(t *T) {
		t.AddFocusChangedListener()
		t.SetFocusVerifyWithEvent(edit, VerificationFailure)
		t.VerifyFocusChangedEvent(t.Element(), Fired, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
	assert.Equal(t, 3, result.Steps)
}

func TestFocusTimeoutIsNotFiredRatherThanAnError(t *testing.T) {
	f := newFixture()
	c := eventCase("focus-timeout", func(t *T) {
		t.AddFocusChangedListener()
		t.VerifyFocusChangedEvent(t.Element(), NotFired, VerificationFailure)
	})
	result := f.run(c)
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
}

func TestSetFocusWithoutEvents(t *testing.T) {
	f := newFixture()
	f.env.EventsEnabled = false
	edit := f.tree.AddChild(f.target, "Edit", "edit")
	result := f.run(simpleCase("focus-no-events", func(t *T) {
		t.SetFocusVerifyWithEvent(edit, VerificationFailure)
		assert.Equal(t, edit, t.FocusedElement())
	}))
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
	assert.Equal(t, 2, result.Steps)
}

func TestLocatorSteps(t *testing.T) {
	f := newFixture()
	f.tree.SetWindowHandle(f.target, 0x1234)
	result := f.run(simpleCase("locators", func(t *T) {
		assert.Equal(t, f.target, t.FromHandle(0x1234))
		assert.NotEqual(t, uia.Element{}, t.FromPoint(uia.Point{X: 10, Y: 10}))
	}))
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)

	f = newFixture()
	result = f.run(simpleCase("bad-handle", func(t *T) { t.FromHandle(99) }))
	assert.Equal(t, Failed, result.Outcome)
}

func TestExpectError(t *testing.T) {
	f := newFixture()
	result := f.run(simpleCase("expect", func(t *T) {
		t.ExpectError(uia.ErrPatternNotSupported, uia.ErrPatternNotSupported, VerificationFailure)
		t.ExpectError(errors.New("anything"), nil, VerificationFailure)
	}))
	assert.Equal(t, Passed, result.Outcome)

	f = newFixture()
	result = f.run(simpleCase("expect-fails", func(t *T) {
		t.ExpectError(nil, nil, Warning)
	}))
	assert.Equal(t, PassedWithWarning, result.Outcome)
}

func TestVerifyBoundingRect(t *testing.T) {
	f := newFixture()
	result := f.run(simpleCase("rect", func(t *T) {
		t.VerifyBoundingRect(t.Element(), uia.Rect{Width: 100, Height: 20}, VerificationFailure)
		t.VerifyPropertyNotEqual(t.Element(), uia.PropertyName, ldvalue.String("Other"), VerificationFailure)
	}))
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
}

func TestPressKeys(t *testing.T) {
	f := newFixture()
	result := f.run(simpleCase("keys", func(t *T) {
		t.PressKeys("Control", "A")
	}))
	assert.Equal(t, Passed, result.Outcome)
	assert.Equal(t, 1, result.Steps)
	assert.Equal(t, []string{"down Control", "down A", "up A", "up Control"}, f.tree.InputLog())
}

func TestInputStepsWithoutInjector(t *testing.T) {
	f := newFixture()
	f.env.Input = nil
	result := f.run(simpleCase("no-input", func(t *T) { t.PressKeys("A") }))
	assert.Equal(t, NotApplicable, result.Outcome)
}

func TestSendLeftMouseClick(t *testing.T) {
	f := newFixture()
	f.tree.SetPropertyQuietly(f.target, uia.PropertyBoundingRectangle,
		uia.RectValue(uia.Rect{Left: 10, Top: 20, Width: 80, Height: 40}))
	result := f.run(simpleCase("click", func(t *T) { t.SendLeftMouseClick(t.Element()) }))
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
	assert.Equal(t, []string{"move 50,40", "mousedown left", "mouseup left"}, f.tree.InputLog())
}

func TestSendLeftMouseClickOnEmptyRect(t *testing.T) {
	f := newFixture()
	hidden := f.tree.AddChild(f.target, "Hidden", "button")
	f.tree.SetPropertyQuietly(hidden, uia.PropertyBoundingRectangle, uia.RectValue(uia.Rect{}))
	result := f.run(simpleCase("click-hidden", func(t *T) { t.SendLeftMouseClick(hidden) }))
	assert.Equal(t, NotApplicable, result.Outcome)
	assert.Len(t, f.tree.InputLog(), 0)
}

func addWindowPattern(tree *uiafake.Tree, el uia.Element, state uia.WindowVisualState) {
	tree.SetPropertyQuietly(el, uia.PropertyWindowVisualState, ldvalue.String(string(state)))
	tree.AddPattern(el, uia.PatternWindow, map[string]uiafake.PatternMethod{
		"SetWindowVisualState": func(tree *uiafake.Tree, el uia.Element, args []ldvalue.Value) error {
			newState := args[0].StringValue()
			tree.SetProperty(el, uia.PropertyWindowVisualState, ldvalue.String(newState))
			size := uia.Rect{Width: 400, Height: 300}
			if newState == string(uia.WindowMaximized) {
				size = uia.Rect{Width: 1920, Height: 1080}
			}
			tree.SetProperty(el, uia.PropertyBoundingRectangle, uia.RectValue(size))
			return nil
		},
	})
}

func TestWindowVisualStateSteps(t *testing.T) {
	f := newFixture()
	f.tree.Async = true
	addWindowPattern(f.tree, f.target, uia.WindowNormal)
	result := f.run(simpleCase("window", func(t *T) {
		t.SetWindowVisualState(t.Element(), uia.WindowMaximized, VerificationFailure)
		t.VerifyWindowVisualState(t.Element(), uia.WindowMaximized, VerificationFailure)
		t.VerifyBoundingRect(t.Element(), uia.Rect{Width: 1920, Height: 1080}, VerificationFailure)
		t.SetWindowVisualState(t.Element(), uia.WindowMaximized, VerificationFailure)
	}))
	assert.Equal(t, Passed, result.Outcome, "%v", result.Errors)
	assert.Equal(t, 4, result.Steps)
	assert.Len(t, f.logger.commentsContaining("is already Maximized"), 1)
	assert.Equal(t, 0, f.tree.ActiveSubscriptions())
}

func TestWindowVisualStateNotSupported(t *testing.T) {
	f := newFixture()
	result := f.run(simpleCase("no-window", func(t *T) {
		t.VerifyWindowVisualState(t.Element(), uia.WindowNormal, VerificationFailure)
	}))
	assert.Equal(t, NotApplicable, result.Outcome)
}
