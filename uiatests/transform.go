package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

const transformOffset = 10

func transformSuite() uiatest.Suite {
	return uiatest.Suite{
		ID: TransformSuite,
		Cases: []uiatest.Case{
			{
				Descriptor: uiatest.Descriptor{
					Name:     "TransformPattern.Move.S.1.1",
					Summary:  "Verify that Move() moves the element to the requested position",
					Priority: uiatest.Pri0,
					Status:   uiatest.Works,
					Type:     uiatest.Modifies,
					Steps: []string{
						"Precondition: CanMove = true",
						"Step: Get the BoundingRectangle",
						"Step: Call Move() to offset the element by 10 pixels in each direction",
						"Step: Verify that the BoundingRectangle moved to the new position and kept its size",
					},
				},
				Run: testMoveS11,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:     "TransformPattern.Resize.S.2.1",
					Summary:  "Verify that Resize() changes the size of the element",
					Priority: uiatest.Pri0,
					Status:   uiatest.Works,
					Type:     uiatest.Modifies,
					Steps: []string{
						"Precondition: CanResize = true",
						"Step: Get the BoundingRectangle",
						"Step: Call Resize() to grow the element by 10 pixels in each direction",
						"Step: Verify that the BoundingRectangle has the new size and did not move",
					},
				},
				Run: testResizeS21,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:     "TransformPattern.Resize.S.2.2",
					Summary:  "Verify that Resize(width, height) with the given arguments gives the element that size",
					Priority: uiatest.Pri1,
					Status:   uiatest.Works,
					Type:     uiatest.Arguments | uiatest.Modifies,
					Steps: []string{
						"Precondition: The arguments are the new width and height",
						"Precondition: CanResize = true",
						"Step: Get the BoundingRectangle",
						"Step: Call Resize(width, height)",
						"Step: Verify that the BoundingRectangle has the requested size",
					},
				},
				Run: testResizeS22,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:     "TransformPattern.Rotate.S.3.1",
					Summary:  "Verify that Rotate() fails on an element that cannot be rotated",
					Priority: uiatest.Pri1,
					Status:   uiatest.Works,
					Steps: []string{
						"Precondition: CanRotate = false",
						"Step: Call Rotate(90) and verify that it fails",
					},
				},
				Run: testRotateS31,
			},
		},
	}
}

func testMoveS11(t *uiatest.T) {
	el := t.Element()
	p := transformPattern(t, el)

	verifyFlag(t, string(uia.PropertyTransformCanMove), p.Current().CanMove, true)
	r := boundingRect(t, el)
	restorePosition(t, p, r)
	x, y := r.Left+transformOffset, r.Top+transformOffset
	t.Check(p.Move(x, y), uiatest.VerificationFailure, "Move(%g,%g)", x, y)
	t.Step("Called Move(%g,%g)", x, y)
	t.VerifyBoundingRect(el, uia.Rect{Left: x, Top: y, Width: r.Width, Height: r.Height}, uiatest.VerificationFailure)
}

func testResizeS21(t *uiatest.T) {
	el := t.Element()
	p := transformPattern(t, el)

	verifyFlag(t, string(uia.PropertyTransformCanResize), p.Current().CanResize, true)
	r := boundingRect(t, el)
	restoreSize(t, p, r)
	w, h := r.Width+transformOffset, r.Height+transformOffset
	t.Check(p.Resize(w, h), uiatest.VerificationFailure, "Resize(%g,%g)", w, h)
	t.Step("Called Resize(%g,%g)", w, h)
	t.VerifyBoundingRect(el, uia.Rect{Left: r.Left, Top: r.Top, Width: w, Height: h}, uiatest.VerificationFailure)
}

func testResizeS22(t *uiatest.T) {
	el := t.Element()
	width, height := t.Arg(0), t.Arg(1)
	if !width.IsNumber() || !height.IsNumber() {
		t.Throw(uiatest.ConfigurationMismatch, "expected a numeric width and height but got %s and %s",
			width.JSONString(), height.JSONString())
	}
	t.Step("Requested size is %gx%g", width.Float64Value(), height.Float64Value())
	p := transformPattern(t, el)

	verifyFlag(t, string(uia.PropertyTransformCanResize), p.Current().CanResize, true)
	r := boundingRect(t, el)
	restoreSize(t, p, r)
	w, h := width.Float64Value(), height.Float64Value()
	t.Check(p.Resize(w, h), uiatest.VerificationFailure, "Resize(%g,%g)", w, h)
	t.Step("Called Resize(%g,%g)", w, h)
	t.VerifyBoundingRect(el, uia.Rect{Left: r.Left, Top: r.Top, Width: w, Height: h}, uiatest.VerificationFailure)
}

func testRotateS31(t *uiatest.T) {
	el := t.Element()
	p := transformPattern(t, el)

	verifyFlag(t, string(uia.PropertyTransformCanRotate), p.Current().CanRotate, false)
	t.ExpectError(p.Rotate(90), nil, uiatest.VerificationFailure)
}

func transformPattern(t *uiatest.T, el uia.Element) *uia.TransformPattern {
	p, err := uia.GetTransformPattern(t.Provider(), el, false)
	t.Check(err, uiatest.ConfigurationMismatch, "%s does not support %s", el, uia.PatternTransform)
	return p
}

// restorePosition and restoreSize put the element back the way it was once the test is over.

func restorePosition(t *uiatest.T, p *uia.TransformPattern, r uia.Rect) {
	t.Defer(func() {
		if err := p.Move(r.Left, r.Top); err != nil {
			t.Debug("Could not move %s back: %s", p.Element(), err)
		}
	})
}

func restoreSize(t *uiatest.T, p *uia.TransformPattern, r uia.Rect) {
	t.Defer(func() {
		if err := p.Resize(r.Width, r.Height); err != nil {
			t.Debug("Could not resize %s back: %s", p.Element(), err)
		}
	})
}
