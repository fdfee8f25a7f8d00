package uiatests

import (
	"testing"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uia/uiafake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type fixture struct {
	tree       *uiafake.Tree
	window     uia.Element
	target     uia.Element
	env        uiatest.Environment
	dispatcher *uiatest.Dispatcher
}

func newFixture(t *testing.T, controlType string) *fixture {
	tree := uiafake.NewTree()
	window := tree.AddChild(tree.Root(), "Main window", "window")
	tree.SetPropertyQuietly(window, uia.PropertyBoundingRectangle, uia.RectValue(uia.Rect{Width: 400, Height: 300}))
	target := tree.AddChild(window, "Target", controlType)
	tree.SetPropertyQuietly(target, uia.PropertyBoundingRectangle,
		uia.RectValue(uia.Rect{Left: 10, Top: 10, Width: 200, Height: 100}))

	f := &fixture{tree: tree, window: window, target: target}
	f.env = uiatest.Environment{
		Provider:      tree,
		Input:         tree,
		EventsEnabled: true,
		Timing: uiatest.Timing{
			SettleDelay:              time.Millisecond,
			ListenerSettleDelay:      time.Millisecond,
			FocusListenerSettleDelay: time.Millisecond,
			EventWaitTimeout:         time.Millisecond * 100,
			FocusWaitTimeout:         time.Millisecond * 100,
			VisualStateTimeout:       time.Millisecond * 100,
			KeyDelay:                 time.Millisecond,
		},
	}
	f.start(t)
	return f
}

// start (re)creates the dispatcher from the current environment.
func (f *fixture) start(t *testing.T) {
	registry := uiatest.NewRegistry()
	require.NoError(t, Register(registry))
	f.dispatcher = uiatest.NewDispatcher(registry, f.env)
}

func (f *fixture) runSuite(t *testing.T, suiteID string) map[string]uiatest.TestResult {
	results, err := f.dispatcher.RunSuite(suiteID, uiatest.PriAll, uiatest.Generic, f.target)
	require.NoError(t, err)
	ret := make(map[string]uiatest.TestResult)
	for _, r := range results.Tests {
		ret[r.TestID.Name()] = r
	}
	return ret
}

func (f *fixture) runOne(t *testing.T, suiteID, name string, args ...ldvalue.Value) uiatest.TestResult {
	result, err := f.dispatcher.RunOne(suiteID, name, f.target, args)
	require.NoError(t, err)
	return result
}

func assertOutcome(t *testing.T, expected uiatest.Outcome, result uiatest.TestResult) {
	t.Helper()
	assert.Equal(t, expected, result.Outcome, "%s: %v", result.TestID, result.Errors)
}

func (f *fixture) rect(t *testing.T, el uia.Element) uia.Rect {
	r, err := uia.BoundingRectangle(f.tree, el)
	require.NoError(t, err)
	return r
}
