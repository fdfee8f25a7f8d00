package uiatest

import (
	"sync/atomic"

	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Dispatcher runs registered tests. Tests run one at a time on the calling goroutine; only
// the cancellation flag may be touched from elsewhere.
type Dispatcher struct {
	registry  *Registry
	env       Environment
	cancelRun atomic.Bool
}

func NewDispatcher(registry *Registry, env Environment) *Dispatcher {
	return &Dispatcher{registry: registry, env: env.withDefaults()}
}

// CancelRun reports whether a cancellation is pending.
func (d *Dispatcher) CancelRun() bool {
	return d.cancelRun.Load()
}

// SetCancelRun requests (or withdraws a request) that RunSuite stop after the test that is
// running now. The request is consumed by the RunSuite that sees it.
func (d *Dispatcher) SetCancelRun(cancel bool) {
	d.cancelRun.Store(cancel)
}

// RunOne runs a single test. Scenario tests get the scenario preconditions. The error is
// non-nil only if the test does not exist.
func (d *Dispatcher) RunOne(suiteID, name string, target uia.Element, args []ldvalue.Value) (TestResult, error) {
	c, err := d.registry.Lookup(suiteID, name)
	if err != nil {
		return TestResult{}, err
	}
	return invoke(&d.env, NewTestID(suiteID, c.Name), c, target, args, c.IsScenario()), nil
}

// RunScenario is like RunOne, but always uses the scenario preconditions: the target element
// is not required to exist, and the test must declare a client.
func (d *Dispatcher) RunScenario(suiteID, name string, target uia.Element, args []ldvalue.Value) (TestResult, error) {
	c, err := d.registry.Lookup(suiteID, name)
	if err != nil {
		return TestResult{}, err
	}
	return invoke(&d.env, NewTestID(suiteID, c.Name), c, target, args, true), nil
}

// RunSuite runs every test that Filter selects, in order. A failing test does not stop the
// run; a cancellation request does, after the test during which it was made.
func (d *Dispatcher) RunSuite(suiteID string, priority Priority, mask CaseType, target uia.Element) (Results, error) {
	seq, err := d.registry.Filter(suiteID, priority, mask)
	if err != nil {
		return Results{}, err
	}
	var results Results
	it := seq.Iterator()
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		id := NewTestID(suiteID, c.Name)
		if d.env.Filter != nil && !d.env.Filter(id) {
			d.env.TestLogger.TestSkipped(id, "excluded by filter parameters")
			results.add(TestResult{TestID: id, Outcome: Skipped})
			continue
		}
		results.add(invoke(&d.env, id, c, target, nil, c.IsScenario()))
		if d.cancelRun.Swap(false) {
			break
		}
	}
	return results, nil
}
