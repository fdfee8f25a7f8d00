package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

const focusChanged = "AutomationFocusChangedEventHandler"

func focusSuite() uiatest.Suite {
	return uiatest.Suite{
		ID: FocusSuite,
		Cases: []uiatest.Case{
			{
				Descriptor: uiatest.Descriptor{
					Name:        "Focus.SetFocus.Scenario.1",
					Summary:     "Verify that focus can be moved between the focusable children of an element, and that each move raises a focus change event",
					Priority:    uiatest.Pri1,
					Status:      uiatest.Works,
					Client:      scenarioClient,
					Type:        uiatest.Scenario | uiatest.Events,
					EventTested: focusChanged,
					Steps: []string{
						"Precondition: The scenario was given a container element",
						"Step: Find the keyboard focusable children of the container",
						"Precondition: There are at least two focusable children",
						"Step: Add FocusChangedEvent listener",
						"Step: Set focus to the first focusable child",
						"Step: Set focus to the last focusable child",
						"Step: Verify that the FocusChangedEvent was fired for the last child",
						"Step: Get the focused element",
						"Step: Verify that the focused element is the last focusable child",
					},
				},
				Run: testSetFocusScenario1,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:     "Focus.FromPoint.S.1.1",
					Summary:  "Verify that FromPoint() on the center of an element returns the element or one of its descendants",
					Priority: uiatest.Pri1,
					Status:   uiatest.Works,
					Steps: []string{
						"Precondition: The BoundingRectangle is not empty",
						"Step: Call FromPoint() on the center of the BoundingRectangle",
						"Step: Verify that the element found is the element or one of its descendants",
					},
				},
				Run: testFromPointS11,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:     "Focus.FromHandle.S.2.1",
					Summary:  "Verify that FromHandle() on the NativeWindowHandle of an element returns the element",
					Priority: uiatest.Pri2,
					Status:   uiatest.Works,
					Steps: []string{
						"Precondition: NativeWindowHandle != 0",
						"Step: Call FromHandle(NativeWindowHandle)",
						"Step: Verify that FromHandle() returned the element",
					},
				},
				Run: testFromHandleS21,
			},
		},
	}
}

func testSetFocusScenario1(t *uiatest.T) {
	container := requireTarget(t)
	t.Step("Container is %s", container)

	all, err := children(t.Provider(), container)
	t.Check(err, uiatest.VerificationFailure, "could not list the children of %s", container)
	var focusable []uia.Element
	for _, child := range all {
		v, err := t.Provider().GetPropertyValue(child, uia.PropertyIsKeyboardFocusable, false)
		if err == nil && v.BoolValue() {
			focusable = append(focusable, child)
		}
	}
	t.Step("Found %d keyboard focusable children", len(focusable))
	if len(focusable) < 2 {
		t.Throw(uiatest.ConfigurationMismatch, "need two focusable children but found %d", len(focusable))
	}
	t.Step("There are %d focusable children", len(focusable))

	first, last := focusable[0], focusable[len(focusable)-1]
	t.AddFocusChangedListener()
	t.SetFocusVerifyWithEvent(first, uiatest.VerificationFailure)
	t.SetFocusVerifyWithEvent(last, uiatest.VerificationFailure)
	t.VerifyFocusChangedEvent(last, uiatest.Fired, uiatest.VerificationFailure)
	focused := t.FocusedElement()
	if focused != last {
		t.Throw(uiatest.VerificationFailure, "focus is on %s instead of %s", focused, last)
	}
	t.Step("Focus is on %s", focused)
}

func testFromPointS11(t *uiatest.T) {
	el := t.Element()
	r, err := uia.BoundingRectangle(t.Provider(), el)
	t.Check(err, uiatest.ConfigurationMismatch, "could not get bounding rectangle of %s", el)
	if r.IsEmpty() {
		t.Throw(uiatest.ConfigurationMismatch, "%s has an empty bounding rectangle", el)
	}
	t.Step("Bounding rectangle is %s", r)

	found := t.FromPoint(r.Center())
	within, err := isWithin(t.Provider(), found, el)
	t.Check(err, uiatest.VerificationFailure, "could not walk up from %s", found)
	if !within {
		t.Throw(uiatest.VerificationFailure, "FromPoint() returned %s, which is not inside %s", found, el)
	}
	t.Step("%s is inside %s", found, el)
}

func testFromHandleS21(t *uiatest.T) {
	el := t.Element()
	v, err := t.Provider().GetPropertyValue(el, uia.PropertyNativeWindowHandle, false)
	if err != nil || v.IntValue() == 0 {
		t.Throw(uiatest.ConfigurationMismatch, "%s has no native window handle", el)
	}
	hwnd := v.IntValue()
	t.Step("NativeWindowHandle = %d", hwnd)

	found := t.FromHandle(hwnd)
	if found != el {
		t.Throw(uiatest.VerificationFailure, "FromHandle(%d) returned %s instead of %s", hwnd, found, el)
	}
	t.Step("FromHandle(%d) returned the element", hwnd)
}

const maxChildren = 1000

// children lists the raw-view children of el.
func children(p uia.TreeWalker, el uia.Element) ([]uia.Element, error) {
	var ret []uia.Element
	next, ok, err := p.Navigate(el, uia.DirectionFirstChild, uia.ViewRaw)
	for ; ok && err == nil && len(ret) < maxChildren; next, ok, err = p.Navigate(next, uia.DirectionNextSibling, uia.ViewRaw) {
		ret = append(ret, next)
	}
	return ret, err
}
