package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

// Helpers in this file that end with t.Step are step operations: they advance the step
// cursor exactly once. The pattern getters are not; they run before the first step.

const (
	controlTypeMenuItem = "menu item"
	controlTypeTreeItem = "tree item"
)

// requireTarget stops a scenario test that was started without an element to work on.
func requireTarget(t *uiatest.T) uia.Element {
	el := t.Element()
	if el.IsZero() {
		t.Throw(uiatest.ConfigurationMismatch, "this scenario needs a target element")
	}
	return el
}

func controlType(t *uiatest.T, el uia.Element) string {
	v, err := t.Provider().GetPropertyValue(el, uia.PropertyControlType, false)
	if err != nil {
		t.Debug("Could not get %s of %s: %s", uia.PropertyControlType, el, err)
		return ""
	}
	return v.StringValue()
}

// verifyFlag checks a boolean property of a pattern. A value other than expected means the
// element does not meet the test's preconditions.
func verifyFlag(t *uiatest.T, name string, get func() (bool, error), expected bool) {
	v, err := get()
	t.Check(err, uiatest.ConfigurationMismatch, "could not get %s", name)
	if v != expected {
		t.Throw(uiatest.ConfigurationMismatch, "%s = %t", name, v)
	}
	t.Step("%s = %t", name, v)
}

func boundingRect(t *uiatest.T, el uia.Element) uia.Rect {
	r, err := uia.BoundingRectangle(t.Provider(), el)
	t.Check(err, uiatest.VerificationFailure, "could not get bounding rectangle of %s", el)
	t.Step("Bounding rectangle of %s is %s", el, r)
	return r
}

const maxTreeDepth = 100

// isWithin reports whether el is ancestor or inside it.
func isWithin(p uia.TreeWalker, el, ancestor uia.Element) (bool, error) {
	cur := el
	for i := 0; i < maxTreeDepth && !cur.IsZero(); i++ {
		if cur == ancestor {
			return true, nil
		}
		parent, ok, err := p.Navigate(cur, uia.DirectionParent, uia.ViewRaw)
		if err != nil || !ok {
			return false, err
		}
		cur = parent
	}
	return false, nil
}
