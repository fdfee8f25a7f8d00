package uiatests

import (
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
)

// Suite IDs.
const (
	ExpandCollapseSuite = "ExpandCollapsePattern"
	RangeValueSuite     = "RangeValuePattern"
	TransformSuite      = "TransformPattern"
	FocusSuite          = "Focus"
)

// The client that drives the scenario tests in this package.
const scenarioClient = "console"

// AllSuites returns every suite, in the order a full run executes them.
func AllSuites() []uiatest.Suite {
	return []uiatest.Suite{
		expandCollapseSuite(),
		rangeValueSuite(),
		transformSuite(),
		focusSuite(),
	}
}

// Register adds every suite to r.
func Register(r *uiatest.Registry) error {
	for _, s := range AllSuites() {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}
