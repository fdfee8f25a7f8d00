package uiatest

import (
	"github.com/launchdarkly/uia-contract-tests/uia"
)

func (t *T) input() uia.InputInjector {
	if t.env.Input == nil {
		t.Throw(ConfigurationMismatch, "no input injector is configured")
	}
	return t.env.Input
}

// PressKeys presses the keys in order and releases them in reverse order, so that
// PressKeys("Control", "A") is a chord.
func (t *T) PressKeys(keys ...uia.Key) {
	defer t.cursor.advance()
	in := t.input()
	t.Comment("Pressing %v", keys)
	for _, k := range keys {
		t.Check(in.KeyDown(k), Critical, "KeyDown(%s)", k)
		t.sleep(t.env.Timing.KeyDelay)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		t.Check(in.KeyUp(keys[i]), Critical, "KeyUp(%s)", keys[i])
	}
	t.sleep(t.env.Timing.KeyDelay)
}

// SendLeftMouseClick clicks the center of an element's bounding rectangle.
func (t *T) SendLeftMouseClick(el uia.Element) {
	defer t.cursor.advance()
	in := t.input()
	r, err := uia.BoundingRectangle(t.env.Provider, el)
	t.Check(err, VerificationFailure, "could not get bounding rectangle of %s", el)
	if r.IsEmpty() {
		t.Throw(ConfigurationMismatch, "%s has an empty bounding rectangle and cannot be clicked", el)
	}
	pt := r.Center()
	t.Comment("Clicking %s at %g,%g", el, pt.X, pt.Y)
	t.Check(in.MouseMove(pt), Critical, "MouseMove")
	t.Check(in.MouseDown(uia.MouseLeft), Critical, "MouseDown")
	t.Check(in.MouseUp(uia.MouseLeft), Critical, "MouseUp")
}
