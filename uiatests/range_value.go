package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const rangeValueChanged = "AutomationPropertyChangedEventHandler(RangeValuePattern.ValueProperty)"

func rangeValueSuite() uiatest.Suite {
	setValueSteps := func(which string) []string {
		return []string{
			"Precondition: IsReadOnly = false",
			"Precondition: Minimum != Maximum",
			"Step: Verify that Minimum is less than Maximum",
			"Step: Call SetValue() with a valid value other than " + which,
			"Step: Verify that Value returns this value",
			"Step: Add event that will catch PropertyChangeEvent",
			"Step: Call SetValue(" + which + ")",
			"Step: Verify that Value returns " + which,
			"Step: Wait for event",
			"Step: Verify that the PropertyChangeEvent event was fired",
		}
	}
	return uiatest.Suite{
		ID: RangeValueSuite,
		Cases: []uiatest.Case{
			{
				Descriptor: uiatest.Descriptor{
					Name:     "RangeValuePattern.ValueProperty.S.2.1",
					Summary:  "Verify that Value returns a value that is between or equal to Minimum and Maximum",
					Priority: uiatest.Pri0,
					Status:   uiatest.Works,
					Steps: []string{
						"Step: Verify that Minimum is not greater than Maximum",
						"Step: Verify that Minimum <= Value <= Maximum",
					},
				},
				Run: testValuePropertyS21,
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:        "RangeValuePattern.SetValue.S.1.3A",
					Summary:     "Verify that SetValue(Minimum) sets Value to Minimum",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Works,
					Type:        uiatest.Events | uiatest.Modifies,
					EventTested: rangeValueChanged,
					Steps:       setValueSteps("Minimum"),
				},
				Run: func(t *uiatest.T) {
					testSetValueToLimit(t, func(lo, _ float64) float64 { return lo })
				},
			},
			{
				Descriptor: uiatest.Descriptor{
					Name:        "RangeValuePattern.SetValue.S.1.3B",
					Summary:     "Verify that SetValue(Maximum) sets Value to Maximum",
					Priority:    uiatest.Pri0,
					Status:      uiatest.Works,
					Type:        uiatest.Events | uiatest.Modifies,
					EventTested: rangeValueChanged,
					Steps:       setValueSteps("Maximum"),
				},
				Run: func(t *uiatest.T) {
					testSetValueToLimit(t, func(_, hi float64) float64 { return hi })
				},
			},
		},
	}
}

func testValuePropertyS21(t *uiatest.T) {
	el := t.Element()
	p := rangeValuePattern(t, el)

	lo, hi := verifyRange(t, p, false)
	value, err := p.Current().Value()
	t.Check(err, uiatest.VerificationFailure, "could not get %s", uia.PropertyRangeValueValue)
	if value < lo || value > hi {
		t.Throw(uiatest.VerificationFailure, "Value %g is outside [%g, %g]", value, lo, hi)
	}
	t.Step("Value = %g", value)
}

func testSetValueToLimit(t *uiatest.T, limit func(lo, hi float64) float64) {
	el := t.Element()
	p := rangeValuePattern(t, el)

	verifyFlag(t, string(uia.PropertyRangeValueIsReadOnly), p.Current().IsReadOnly, false)
	lo, hi := verifyRange(t, p, true)
	target := limit(lo, hi)

	setValue(t, p, (lo+hi)/2)
	t.VerifyPropertyEqual(el, uia.PropertyRangeValueValue, ldvalue.Float64((lo+hi)/2), uiatest.VerificationFailure)
	t.AddPropertyChangedListener(el, uia.ScopeElement, uia.PropertyRangeValueValue)
	setValue(t, p, target)
	t.VerifyPropertyEqual(el, uia.PropertyRangeValueValue, ldvalue.Float64(target), uiatest.VerificationFailure)
	t.WaitForEvents(1)
	t.VerifyPropertyChangedListener(el, uia.PropertyRangeValueValue, uiatest.Fired, uiatest.VerificationFailure)
}

func rangeValuePattern(t *uiatest.T, el uia.Element) *uia.RangeValuePattern {
	p, err := uia.GetRangeValuePattern(t.Provider(), el, false)
	t.Check(err, uiatest.ConfigurationMismatch, "%s does not support %s", el, uia.PatternRangeValue)
	return p
}

// verifyRange gets Minimum and Maximum. With distinct set it takes two steps: first the
// precondition that they differ, then the check of their order; otherwise it is one step.
func verifyRange(t *uiatest.T, p *uia.RangeValuePattern, distinct bool) (lo, hi float64) {
	info := p.Current()
	lo, err := info.Minimum()
	t.Check(err, uiatest.VerificationFailure, "could not get %s", uia.PropertyRangeValueMinimum)
	hi, err = info.Maximum()
	t.Check(err, uiatest.VerificationFailure, "could not get %s", uia.PropertyRangeValueMaximum)

	if distinct {
		if lo == hi {
			t.Throw(uiatest.ConfigurationMismatch, "Minimum = Maximum = %g", lo)
		}
		t.Step("Minimum = %g, Maximum = %g", lo, hi)
		if lo > hi {
			t.Throw(uiatest.VerificationFailure, "Minimum %g is greater than Maximum %g", lo, hi)
		}
		t.Step("Minimum is less than Maximum")
		return lo, hi
	}
	if lo > hi {
		t.Throw(uiatest.VerificationFailure, "Minimum %g is greater than Maximum %g", lo, hi)
	}
	t.Step("Minimum = %g, Maximum = %g", lo, hi)
	return lo, hi
}

func setValue(t *uiatest.T, p *uia.RangeValuePattern, value float64) {
	t.Check(p.SetValue(value), uiatest.VerificationFailure, "SetValue(%g)", value)
	t.Step("Called SetValue(%g)", value)
}
