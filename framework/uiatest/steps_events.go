package uiatest

import (
	"errors"
	"time"

	"github.com/launchdarkly/uia-contract-tests/uia"
)

// Monitors are created on first use and torn down by the pipeline after every invocation.

func (t *T) automationMonitor() *AutomationEventMonitor {
	if t.automation == nil {
		t.automation = NewAutomationEventMonitor(t.env.Provider)
		t.automation.notifier = t.events
	}
	return t.automation
}

func (t *T) propertyMonitor() *PropertyChangeMonitor {
	if t.property == nil {
		t.property = NewPropertyChangeMonitor(t.env.Provider, t.env.Provider)
		t.property.notifier = t.events
	}
	return t.property
}

func (t *T) structureMonitor() *StructureChangeMonitor {
	if t.structure == nil {
		t.structure = NewStructureChangeMonitor(t.env.Provider)
		t.structure.notifier = t.events
	}
	return t.structure
}

func (t *T) focusMonitor() *FocusChangeMonitor {
	if t.focus == nil {
		t.focus = NewFocusChangeMonitor(t.env.Provider, t.env.Provider, t.env.Timing.FocusWaitTimeout)
		t.focus.notifier = t.events
	}
	return t.focus
}

// eventCount is the number of events recorded by all monitors of this invocation.
func (t *T) eventCount() int {
	n := 0
	if t.automation != nil {
		n += t.automation.Count()
	}
	if t.property != nil {
		n += t.property.Count()
	}
	if t.structure != nil {
		n += t.structure.Count()
	}
	if t.focus != nil {
		n += t.focus.Count()
	}
	return n
}

// removeAllMonitors unsubscribes every monitor that was created and forgets them.
func (t *T) removeAllMonitors() error {
	var errs []error
	if t.automation != nil {
		errs = append(errs, t.automation.UnsubscribeAll())
	}
	if t.property != nil {
		errs = append(errs, t.property.UnsubscribeAll())
	}
	if t.structure != nil {
		errs = append(errs, t.structure.UnsubscribeAll())
	}
	if t.focus != nil {
		errs = append(errs, t.focus.UnsubscribeAll())
	}
	t.automation, t.property, t.structure, t.focus = nil, nil, nil, nil
	return errors.Join(errs...)
}

// eventStep is the common preamble of the event steps. It returns false, after logging and
// advancing, if event testing is off or the failure it raises was waived. A test that uses
// event steps must be flagged Events and name the event it tests.
func (t *T) eventStep() bool {
	if !t.env.EventsEnabled {
		t.Comment("Event testing is not turned on")
		t.cursor.advance()
		return false
	}
	if t.desc.Type&Events == 0 || t.desc.EventTested == "" {
		defer t.cursor.advance()
		t.Throw(VerificationFailure, "test uses event steps but is not declared as an event test with an event under test")
		return false
	}
	return true
}

// AddEventListener subscribes to automation events on an element.
func (t *T) AddEventListener(el uia.Element, scope uia.TreeScope, events ...uia.EventID) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.Comment("Adding listener for %v on %s (scope %s)", events, el, scope)
	t.Check(t.automationMonitor().Subscribe(el, scope, events...), Critical, "AddEventListener")
	t.sleep(t.env.Timing.ListenerSettleDelay)
}

// AddPropertyChangedListener subscribes to changes of the given properties.
func (t *T) AddPropertyChangedListener(el uia.Element, scope uia.TreeScope, props ...uia.PropertyID) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.Comment("Adding property change listener for %v on %s (scope %s)", props, el, scope)
	t.Check(t.propertyMonitor().Subscribe(el, scope, props...), Critical, "AddPropertyChangedListener")
	t.sleep(t.env.Timing.ListenerSettleDelay)
}

// AddFocusChangedListener subscribes to focus changes anywhere in the tree.
func (t *T) AddFocusChangedListener() {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.Comment("Adding focus change listener")
	t.Check(t.focusMonitor().Subscribe(), Critical, "AddFocusChangedListener")
	t.sleep(t.env.Timing.FocusListenerSettleDelay)
}

// AddStructureChangedListener subscribes to structure changes.
func (t *T) AddStructureChangedListener(el uia.Element, scope uia.TreeScope) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.Comment("Adding structure change listener on %s (scope %s)", el, scope)
	t.Check(t.structureMonitor().Subscribe(el, scope), Critical, "AddStructureChangedListener")
	t.sleep(t.env.Timing.ListenerSettleDelay)
}

// RemoveAllEventsFired removes every listener and forgets the recorded events.
func (t *T) RemoveAllEventsFired() {
	defer t.cursor.advance()
	t.Comment("Removing all event listeners")
	t.Check(t.removeAllMonitors(), Critical, "RemoveAllEventsFired")
}

// WaitForEvents waits until at least count events have been recorded in total, or until the
// event wait timeout. Timing out is not a failure; the verification steps that follow decide.
func (t *T) WaitForEvents(count int) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	deadline := time.NewTimer(t.env.Timing.EventWaitTimeout)
	defer deadline.Stop()
	for {
		changed := t.events.C()
		if n := t.eventCount(); n >= count {
			t.Comment("Received %d event(s)", n)
			return
		}
		select {
		case <-changed:
		case <-deadline.C:
			t.Comment("Timed out waiting for %d event(s); received %d", count, t.eventCount())
			return
		}
	}
}

func (t *T) verifyFired(what string, actual, expected EventFired, check ErrorKind) {
	switch {
	case expected == Undetermined:
		t.Comment("%s: %s (not asserted)", what, actual)
	case actual == NotTested:
		t.Comment("%s: not tested", what)
	case actual != expected:
		t.Fail(check, "%s: expected %s but was %s", what, expected, actual)
	default:
		t.Comment("%s: %s as expected", what, actual)
	}
}

// VerifyEventListener checks whether an automation event was recorded for an element.
func (t *T) VerifyEventListener(el uia.Element, event uia.EventID, expected EventFired, check ErrorKind) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.verifyFired(string(event)+" on "+el.String(), t.automationMonitor().WasFired(el, event), expected, check)
}

// VerifyEventCount checks the total number of events recorded by all listeners.
func (t *T) VerifyEventCount(expected int, check ErrorKind) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	if n := t.eventCount(); n != expected {
		t.Fail(check, "expected %d event(s) but received %d", expected, n)
	} else {
		t.Comment("Received %d event(s) as expected", expected)
	}
}

// VerifyPropertyChangedListener checks whether a property change was recorded for an element.
// Elements outside the content view are not required to raise these, so nothing is asserted
// for them.
func (t *T) VerifyPropertyChangedListener(el uia.Element, prop uia.PropertyID, expected EventFired, check ErrorKind) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.verifyFired("change of "+string(prop)+" on "+el.String(), t.propertyMonitor().WasFired(el, prop), expected, check)
}

// VerifyFocusChangedEvent waits for focus to reach el or an element inside it.
func (t *T) VerifyFocusChangedEvent(el uia.Element, expected EventFired, check ErrorKind) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.verifyFired("focus change to "+el.String(), t.focusMonitor().WasFired(el), expected, check)
}

// VerifyStructureChangedEvent checks whether a structure change was recorded for an element.
func (t *T) VerifyStructureChangedEvent(el uia.Element, change uia.StructureChangeType, expected EventFired, check ErrorKind) {
	if !t.eventStep() {
		return
	}
	defer t.cursor.advance()
	t.verifyFired(string(change)+" on "+el.String(), t.structureMonitor().WasFired(el, change), expected, check)
}
