package uiatest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// EventFired is both what a monitor reports about an event and what a test expects of it.
type EventFired int

const (
	// Undetermined as an expectation means the test does not assert either way.
	Undetermined EventFired = iota
	Fired
	NotFired
	// NotTested means the monitor cannot judge, for instance a property change on an element
	// that is not in the content view and so is allowed to omit the event.
	NotTested
)

func (e EventFired) String() string {
	switch e {
	case Undetermined:
		return "Undetermined"
	case Fired:
		return "Fired"
	case NotFired:
		return "NotFired"
	case NotTested:
		return "NotTested"
	default:
		return fmt.Sprintf("EventFired(%d)", int(e))
	}
}

func firedIf(b bool) EventFired {
	if b {
		return Fired
	}
	return NotFired
}

// EventRecord is one observed event. ID is the event, property or structure-change type, and
// Value the new value for property changes.
type EventRecord struct {
	Element uia.Element
	ID      string
	Value   ldvalue.Value
	Ordinal int
	Time    time.Time
}

// monitorBase holds the records and subscriptions that every monitor kind has. Records are
// appended from provider callbacks, so everything here is locked.
type monitorBase struct {
	records  []EventRecord
	subs     []uia.Subscription
	notifier *changeNotifier
	lock     sync.Mutex
}

func (m *monitorBase) addSubscription(sub uia.Subscription) {
	m.lock.Lock()
	m.subs = append(m.subs, sub)
	m.lock.Unlock()
}

func (m *monitorBase) record(el uia.Element, id string, value ldvalue.Value) {
	m.lock.Lock()
	m.records = append(m.records, EventRecord{
		Element: el,
		ID:      id,
		Value:   value,
		Ordinal: len(m.records) + 1,
		Time:    time.Now(),
	})
	m.lock.Unlock()
	if m.notifier != nil {
		m.notifier.changed()
	}
}

// Count returns the number of events recorded so far.
func (m *monitorBase) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.records)
}

// Records returns a copy of the events recorded so far, in arrival order.
func (m *monitorBase) Records() []EventRecord {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]EventRecord(nil), m.records...)
}

// find reports whether a record matches. A zero element matches any source.
func (m *monitorBase) find(el uia.Element, match func(EventRecord) bool) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, r := range m.records {
		if (el.IsZero() || r.Element == el) && match(r) {
			return true
		}
	}
	return false
}

// UnsubscribeAll removes every subscription and clears the records. All removals are
// attempted even if some fail.
func (m *monitorBase) UnsubscribeAll() error {
	m.lock.Lock()
	subs := m.subs
	m.subs = nil
	m.records = nil
	m.lock.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AutomationEventMonitor records generic automation events.
type AutomationEventMonitor struct {
	monitorBase
	source uia.EventSource
}

func NewAutomationEventMonitor(source uia.EventSource) *AutomationEventMonitor {
	return &AutomationEventMonitor{source: source}
}

func (m *AutomationEventMonitor) Subscribe(el uia.Element, scope uia.TreeScope, events ...uia.EventID) error {
	for _, event := range events {
		sub, err := m.source.AddAutomationEventHandler(event, el, scope, func(source uia.Element, event uia.EventID) {
			m.record(source, string(event), ldvalue.Null())
		})
		if err != nil {
			return fmt.Errorf("could not subscribe to %s on %s: %w", event, el, err)
		}
		m.addSubscription(sub)
	}
	return nil
}

func (m *AutomationEventMonitor) WasFired(el uia.Element, event uia.EventID) EventFired {
	return firedIf(m.find(el, func(r EventRecord) bool { return r.ID == string(event) }))
}

// PropertyChangeMonitor records property-change events.
type PropertyChangeMonitor struct {
	monitorBase
	source     uia.EventSource
	properties uia.PropertySource
}

func NewPropertyChangeMonitor(source uia.EventSource, properties uia.PropertySource) *PropertyChangeMonitor {
	return &PropertyChangeMonitor{source: source, properties: properties}
}

func (m *PropertyChangeMonitor) Subscribe(el uia.Element, scope uia.TreeScope, props ...uia.PropertyID) error {
	sub, err := m.source.AddPropertyChangedHandler(el, scope, props,
		func(source uia.Element, prop uia.PropertyID, newValue ldvalue.Value) {
			m.record(source, string(prop), newValue)
		})
	if err != nil {
		return fmt.Errorf("could not subscribe to property changes on %s: %w", el, err)
	}
	m.addSubscription(sub)
	return nil
}

// WasFired returns NotTested for elements outside the content view. If the content check
// itself fails, the element is judged like any other.
func (m *PropertyChangeMonitor) WasFired(el uia.Element, prop uia.PropertyID) EventFired {
	if !el.IsZero() {
		if isContent, err := uia.IsContentElement(m.properties, el); err == nil && !isContent {
			return NotTested
		}
	}
	return firedIf(m.find(el, func(r EventRecord) bool { return r.ID == string(prop) }))
}

// LastValue returns the most recent new value reported for a property, or false if none was.
func (m *PropertyChangeMonitor) LastValue(el uia.Element, prop uia.PropertyID) (ldvalue.Value, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.Element == el && r.ID == string(prop) {
			return r.Value, true
		}
	}
	return ldvalue.Null(), false
}

// StructureChangeMonitor records structure-change events.
type StructureChangeMonitor struct {
	monitorBase
	source uia.EventSource
}

func NewStructureChangeMonitor(source uia.EventSource) *StructureChangeMonitor {
	return &StructureChangeMonitor{source: source}
}

func (m *StructureChangeMonitor) Subscribe(el uia.Element, scope uia.TreeScope) error {
	sub, err := m.source.AddStructureChangedHandler(el, scope, func(source uia.Element, change uia.StructureChangeType) {
		m.record(source, string(change), ldvalue.Null())
	})
	if err != nil {
		return fmt.Errorf("could not subscribe to structure changes on %s: %w", el, err)
	}
	m.addSubscription(sub)
	return nil
}

func (m *StructureChangeMonitor) WasFired(el uia.Element, change uia.StructureChangeType) EventFired {
	return firedIf(m.find(el, func(r EventRecord) bool { return r.ID == string(change) }))
}

const focusEventID = "Focus"

// maxAncestorDepth bounds the parent walk in case a provider reports a cycle.
const maxAncestorDepth = 1000

// FocusChangeMonitor records focus changes. Its callback also sets a Signal, so WasFired can
// wait for a focus event instead of polling for one.
type FocusChangeMonitor struct {
	monitorBase
	source  uia.EventSource
	walker  uia.TreeWalker
	signal  *Signal
	timeout time.Duration
}

func NewFocusChangeMonitor(source uia.EventSource, walker uia.TreeWalker, timeout time.Duration) *FocusChangeMonitor {
	return &FocusChangeMonitor{source: source, walker: walker, signal: NewSignal(), timeout: timeout}
}

func (m *FocusChangeMonitor) Subscribe() error {
	sub, err := m.source.AddFocusChangedHandler(func(source uia.Element) {
		m.record(source, focusEventID, ldvalue.Null())
		m.signal.Set()
	})
	if err != nil {
		return fmt.Errorf("could not subscribe to focus changes: %w", err)
	}
	m.addSubscription(sub)
	return nil
}

// WasFired waits up to the monitor's timeout for focus to land on target or on any element
// inside it. A timeout gives NotFired.
func (m *FocusChangeMonitor) WasFired(target uia.Element) EventFired {
	deadline := time.Now().Add(m.timeout)
	for {
		m.signal.Reset()
		if m.focusedWithin(target) {
			return Fired
		}
		remaining := time.Until(deadline)
		if remaining <= 0 || !m.signal.Wait(remaining) {
			return firedIf(m.focusedWithin(target))
		}
	}
}

func (m *FocusChangeMonitor) focusedWithin(target uia.Element) bool {
	for _, r := range m.Records() {
		if target.IsZero() || isSameOrDescendant(m.walker, r.Element, target) {
			return true
		}
	}
	return false
}

func isSameOrDescendant(walker uia.TreeWalker, el, ancestor uia.Element) bool {
	cur := el
	for i := 0; i < maxAncestorDepth && !cur.IsZero(); i++ {
		if cur == ancestor {
			return true
		}
		parent, ok, err := walker.Navigate(cur, uia.DirectionParent, uia.ViewControl)
		if err != nil || !ok {
			return false
		}
		cur = parent
	}
	return false
}
