package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

const expandCollapseStateChanged = "AutomationPropertyChangedEventHandler(ExpandCollapsePattern.ExpandCollapseStateProperty)"

func expandCollapseSuite() uiatest.Suite {
	return uiatest.Suite{
		ID: ExpandCollapseSuite,
		Cases: []uiatest.Case{
			{
				Descriptor: uiatest.Descriptor{
					Name:        "ExpandCollapsePattern.Expand.S.1.5",
					Summary:     "Verify that calling Expand() on a collapsed element expands the element",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Works,
					Type:        uiatest.Events | uiatest.Modifies,
					EventTested: expandCollapseStateChanged,
					Steps: []string{
						"Precondition: Verify that this is not a leaf node",
						"Step: Call Collapse()",
						"Step: Call Collapse() twice in case of ExpandCollapseState = PartiallyExpanded",
						"Step: Verify that the ExpandCollapseState = Collapsed",
						"Step: Add StatePropertyChange event",
						"Step: Call Expand()",
						"Step: Wait for events",
						"Step: Verify that the ExpandCollapseState != Collapsed",
						"Step: Verify that the StatePropertyChange event was fired",
					},
				},
				Run: testExpandS15,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:        "ExpandCollapsePattern.Collapse.S.2.4",
					Summary:     "Verify that after calling Collapse() on an expanded element, the element is not Expanded",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Works,
					Type:        uiatest.Events | uiatest.Modifies,
					EventTested: expandCollapseStateChanged,
					Steps: []string{
						"Precondition: ExpandCollapseState != LeafNode",
						"Step: Expand the element if it is collapsed",
						"Step: Add PropertyChange event for ExpandCollapseStateProperty for element",
						"Step: Call Collapse()",
						"Step: Wait for events to fire",
						"Step: Verify that the ExpandCollapseState != Expanded",
						"Step: Verify that the ExpandCollapseStateProperty PropertyChange event was fired for the element",
					},
				},
				Run: testCollapseS24,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:        "ExpandCollapsePattern.Collapse.S.2.5",
					Summary:     "Verify that after calling Collapse() on a PartiallyExpanded element, the element is collapsed",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Works,
					Type:        uiatest.Events | uiatest.Modifies,
					EventTested: expandCollapseStateChanged,
					Steps: []string{
						"Precondition: ExpandCollapseState != LeafNode",
						"Step: Call Collapse()",
						"Step: Call Collapse() again in case ExpandCollapseState = PartiallyExpanded",
						"Step: Verify that the ExpandCollapseState = Collapsed",
						"Step: Call Expand()",
						"Precondition: ExpandCollapseState = PartiallyExpanded",
						"Step: Add PropertyChange event for StateProperty",
						"Step: Call Collapse()",
						"Step: Wait for events to fire",
						"Step: Verify that ExpandCollapseState = Collapsed",
						"Step: Verify that PropertyChange event for StateProperty is fired",
					},
				},
				Run: testCollapseS25,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:        "ExpandCollapsePattern.Collapse.S.2.5.MouseClick",
					Summary:     "Verify that after mouse clicking on a non collapsed element, the element is collapsed",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Problem,
					Bugs:        "Cannot tell reliably where the user can click to collapse",
					Client:      scenarioClient,
					Type:        uiatest.Events | uiatest.Scenario | uiatest.Input | uiatest.Modifies,
					EventTested: expandCollapseStateChanged,
					Steps: []string{
						"Precondition: ExpandCollapseState != LeafNode",
						"Step: Call Collapse()",
						"Step: Call Collapse() again in case ExpandCollapseState = PartiallyExpanded",
						"Step: Verify that the ExpandCollapseState = Collapsed",
						"Step: Call Expand()",
						"Precondition: ExpandCollapseState != Collapsed",
						"Step: Add PropertyChange event for StateProperty",
						"Step: Mouse click on center of element",
						"Step: Wait for events to fire",
						"Step: Verify that ExpandCollapseState = Collapsed",
						"Step: Verify that PropertyChange event for StateProperty is fired",
					},
				},
				Run: testCollapseS25MouseClick,
			},
		},
	}
}

func testExpandS15(t *uiatest.T) {
	el := t.Element()
	p := expandCollapsePattern(t, el)

	verifyState(t, p, false, uiatest.ConfigurationMismatch, uia.LeafNode)
	collapse(t, p, uiatest.ConfigurationMismatch)
	collapse(t, p, uiatest.ConfigurationMismatch)
	verifyState(t, p, true, uiatest.VerificationFailure, uia.LeafNode, uia.Collapsed)
	t.AddPropertyChangedListener(el, uia.ScopeElement, uia.PropertyExpandCollapseState)
	expand(t, p, uiatest.VerificationFailure)
	t.WaitForEvents(1)
	verifyState(t, p, false, uiatest.VerificationFailure, uia.Collapsed)
	t.VerifyPropertyChangedListener(el, uia.PropertyExpandCollapseState, uiatest.Fired, uiatest.VerificationFailure)
}

func testCollapseS24(t *uiatest.T) {
	el := t.Element()
	p := expandCollapsePattern(t, el)

	verifyState(t, p, false, uiatest.ConfigurationMismatch, uia.LeafNode)
	expandIfCollapsed(t, p, uiatest.VerificationFailure)
	t.AddPropertyChangedListener(el, uia.ScopeElement, uia.PropertyExpandCollapseState)
	collapse(t, p, uiatest.VerificationFailure)
	t.WaitForEvents(1)
	verifyState(t, p, false, uiatest.VerificationFailure, uia.Expanded)
	t.VerifyPropertyChangedListener(el, uia.PropertyExpandCollapseState, uiatest.Fired, uiatest.VerificationFailure)
}

func testCollapseS25(t *uiatest.T) {
	el := t.Element()
	p := expandCollapsePattern(t, el)

	verifyState(t, p, false, uiatest.ConfigurationMismatch, uia.LeafNode)
	collapseIfExpanded(t, p, uiatest.VerificationFailure)
	collapse(t, p, uiatest.VerificationFailure)
	verifyState(t, p, true, uiatest.VerificationFailure, uia.Collapsed)
	expand(t, p, uiatest.VerificationFailure)
	verifyState(t, p, true, uiatest.ConfigurationMismatch, uia.PartiallyExpanded)
	t.AddPropertyChangedListener(el, uia.ScopeElement, uia.PropertyExpandCollapseState)
	collapse(t, p, uiatest.VerificationFailure)
	t.WaitForEvents(1)
	verifyState(t, p, true, uiatest.ConfigurationMismatch, uia.Collapsed)
	t.VerifyPropertyChangedListener(el, uia.PropertyExpandCollapseState, uiatest.Fired, uiatest.VerificationFailure)
}

// Not every control expands or collapses when clicked, so this only runs as a scenario.
func testCollapseS25MouseClick(t *uiatest.T) {
	el := requireTarget(t)
	if controlType(t, el) == controlTypeTreeItem {
		t.Throw(uiatest.ConfigurationMismatch,
			"tree items do not report a location that collapses them when clicked")
	}
	p := expandCollapsePattern(t, el)

	verifyState(t, p, false, uiatest.ConfigurationMismatch, uia.LeafNode)
	collapse(t, p, uiatest.VerificationFailure)
	collapse(t, p, uiatest.VerificationFailure)
	verifyState(t, p, true, uiatest.VerificationFailure, uia.Collapsed)
	expand(t, p, uiatest.VerificationFailure)
	verifyState(t, p, false, uiatest.ConfigurationMismatch, uia.Collapsed)
	t.AddPropertyChangedListener(el, uia.ScopeElement, uia.PropertyExpandCollapseState)
	t.SendLeftMouseClick(el)
	t.WaitForEvents(2)
	verifyState(t, p, true, uiatest.ConfigurationMismatch, uia.Collapsed)
	t.VerifyPropertyChangedListener(el, uia.PropertyExpandCollapseState, uiatest.Fired, uiatest.VerificationFailure)
}

func expandCollapsePattern(t *uiatest.T, el uia.Element) *uia.ExpandCollapsePattern {
	p, err := uia.GetExpandCollapsePattern(t.Provider(), el, false)
	t.Check(err, uiatest.ConfigurationMismatch, "%s does not support %s", el, uia.PatternExpandCollapse)
	return p
}

func expandCollapseState(t *uiatest.T, p *uia.ExpandCollapsePattern, check uiatest.ErrorKind) uia.ExpandCollapseState {
	state, err := p.Current().ExpandCollapseState()
	t.FailIf(err, check, "could not get %s of %s", uia.PropertyExpandCollapseState, p.Element())
	return state
}

// verifyState checks that the state is one of states (shouldBe) or none of them (!shouldBe).
func verifyState(t *uiatest.T, p *uia.ExpandCollapsePattern, shouldBe bool, check uiatest.ErrorKind,
	states ...uia.ExpandCollapseState) {
	state := expandCollapseState(t, p, check)
	found := false
	for _, s := range states {
		if s == state {
			found = true
		}
	}
	if found != shouldBe {
		t.Fail(check, "State for %s = %q", p.Element(), state)
	}
	t.Step("State for %s = %q", p.Element(), state)
}

func expand(t *uiatest.T, p *uia.ExpandCollapsePattern, check uiatest.ErrorKind) {
	err := p.Expand()
	if err != nil && controlType(t, p.Element()) == controlTypeMenuItem {
		// Menus are sometimes not ready to open yet.
		t.Debug("Expand() on menu item failed, trying again: %s", err)
		err = p.Expand()
	}
	t.FailIf(err, check, "Expand()")
	t.Step("After calling Expand(), ExpandCollapseState = %s", expandCollapseState(t, p, check))
}

func collapse(t *uiatest.T, p *uia.ExpandCollapsePattern, check uiatest.ErrorKind) {
	t.FailIf(p.Collapse(), check, "Collapse()")
	state := expandCollapseState(t, p, check)
	if state == uia.Expanded {
		t.Fail(check, "ExpandCollapseState is still %s after Collapse()", state)
	}
	t.Step("After calling Collapse(), ExpandCollapseState = %s", state)
}

func expandIfCollapsed(t *uiatest.T, p *uia.ExpandCollapsePattern, check uiatest.ErrorKind) {
	if state := expandCollapseState(t, p, check); state != uia.Collapsed {
		t.Step("ExpandCollapseState = %s, not expanding", state)
		return
	}
	expand(t, p, check)
}

func collapseIfExpanded(t *uiatest.T, p *uia.ExpandCollapsePattern, check uiatest.ErrorKind) {
	if state := expandCollapseState(t, p, check); state != uia.Expanded {
		t.Step("ExpandCollapseState = %s, not collapsing", state)
		return
	}
	collapse(t, p, check)
}
