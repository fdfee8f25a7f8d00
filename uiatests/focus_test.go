package uiatests

import (
	"testing"

	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const setFocusScenario = "Focus.SetFocus.Scenario.1"

func (f *fixture) addFocusableChild(name string, focusable bool) uia.Element {
	el := f.tree.AddChild(f.target, name, "button")
	f.tree.SetPropertyQuietly(el, uia.PropertyIsKeyboardFocusable, ldvalue.Bool(focusable))
	return el
}

func TestSetFocusScenario(t *testing.T) {
	for _, eventsEnabled := range []bool{true, false} {
		f := newFixture(t, "pane")
		f.env.EventsEnabled = eventsEnabled
		f.start(t)
		f.addFocusableChild("OK", true)
		f.addFocusableChild("Label", false)
		last := f.addFocusableChild("Cancel", true)

		results := f.runSuite(t, FocusSuite)
		result := results[setFocusScenario]
		assertOutcome(t, uiatest.Passed, result)
		assert.Equal(t, 9, result.Steps)

		focused, err := f.tree.FocusedElement()
		require.NoError(t, err)
		assert.Equal(t, last, focused)
		assert.Equal(t, 0, f.tree.ActiveSubscriptions())
	}
}

func TestSetFocusScenarioNeedsTwoFocusableChildren(t *testing.T) {
	f := newFixture(t, "pane")
	f.addFocusableChild("OK", true)
	f.addFocusableChild("Label", false)

	result, err := f.dispatcher.RunScenario(FocusSuite, setFocusScenario, f.target, nil)
	require.NoError(t, err)
	assertOutcome(t, uiatest.NotApplicable, result)
	assert.Equal(t, 2, result.Steps)
}

func TestSetFocusScenarioFailsWhenFocusDoesNotMove(t *testing.T) {
	f := newFixture(t, "pane")
	f.addFocusableChild("OK", true)
	f.addFocusableChild("Cancel", true)
	f.env.Provider = &stuckFocus{Provider: f.tree}
	f.env.EventsEnabled = false
	f.start(t)

	result, err := f.dispatcher.RunScenario(FocusSuite, setFocusScenario, f.target, nil)
	require.NoError(t, err)
	assertOutcome(t, uiatest.Failed, result)
	assert.Equal(t, 4, result.Steps)
}

// stuckFocus accepts SetFocus but never moves the focus.
type stuckFocus struct {
	uia.Provider
}

func (stuckFocus) SetFocus(uia.Element) error { return nil }

func TestFromPointFindsElement(t *testing.T) {
	f := newFixture(t, "pane")

	result := f.runOne(t, FocusSuite, "Focus.FromPoint.S.1.1")
	assertOutcome(t, uiatest.Passed, result)
	assert.Equal(t, 3, result.Steps)
}

func TestFromPointFindsDescendant(t *testing.T) {
	f := newFixture(t, "pane")
	child := f.tree.AddChild(f.target, "Inner", "text")
	f.tree.SetPropertyQuietly(child, uia.PropertyBoundingRectangle,
		uia.RectValue(uia.Rect{Left: 100, Top: 50, Width: 20, Height: 20}))

	assertOutcome(t, uiatest.Passed, f.runOne(t, FocusSuite, "Focus.FromPoint.S.1.1"))
}

func TestFromPointFailsWhenAnotherElementCoversTheCenter(t *testing.T) {
	f := newFixture(t, "pane")
	cover := f.tree.AddChild(f.window, "Popup", "window")
	f.tree.SetPropertyQuietly(cover, uia.PropertyBoundingRectangle,
		uia.RectValue(uia.Rect{Left: 100, Top: 50, Width: 50, Height: 50}))

	result := f.runOne(t, FocusSuite, "Focus.FromPoint.S.1.1")
	assertOutcome(t, uiatest.Failed, result)
	assert.Equal(t, 2, result.Steps)
}

func TestFromHandle(t *testing.T) {
	f := newFixture(t, "pane")
	assertOutcome(t, uiatest.NotApplicable, f.runOne(t, FocusSuite, "Focus.FromHandle.S.2.1"))

	f.tree.SetWindowHandle(f.target, 0x1234)
	result := f.runOne(t, FocusSuite, "Focus.FromHandle.S.2.1")
	assertOutcome(t, uiatest.Passed, result)
	assert.Equal(t, 3, result.Steps)
}
