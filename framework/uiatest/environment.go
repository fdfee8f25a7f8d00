package uiatest

import (
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

// Timing holds the delays and timeouts the engine uses around asynchronous event delivery.
//
// The settle delays are fixed sleeps that give the provider time to deliver events before
// assertions read them. Nothing guarantees they are long enough on a slow machine, so event
// tests can be flaky; raise them (-settle-ms) rather than relying on the defaults.
type Timing struct {
	// SettleDelay is slept after every test, once its subscriptions are removed.
	SettleDelay time.Duration

	// ListenerSettleDelay is slept after adding an event listener.
	ListenerSettleDelay time.Duration

	// FocusListenerSettleDelay is slept after adding a focus-change listener, which some
	// providers take longer to activate.
	FocusListenerSettleDelay time.Duration

	// EventWaitTimeout bounds WaitForEvents.
	EventWaitTimeout time.Duration

	// FocusWaitTimeout bounds the wait for a focus-change event.
	FocusWaitTimeout time.Duration

	// VisualStateTimeout bounds the wait for a window to change size after its visual state
	// is set.
	VisualStateTimeout time.Duration

	// KeyDelay is slept between synthesized key presses.
	KeyDelay time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		SettleDelay:              time.Millisecond,
		ListenerSettleDelay:      time.Millisecond,
		FocusListenerSettleDelay: time.Millisecond * 100,
		EventWaitTimeout:         time.Second,
		FocusWaitTimeout:         time.Second,
		VisualStateTimeout:       time.Second * 5,
		KeyDelay:                 time.Millisecond * 200,
	}
}

// Environment is everything a dispatcher needs besides the registry.
type Environment struct {
	Provider uia.Provider
	Input    uia.InputInjector

	TestLogger  TestLogger
	KnownIssues KnownIssueStore

	// Filter, if set, is applied to test IDs by RunSuite. Tests it rejects are reported as
	// skipped.
	Filter Filter

	// ReproCommand, if set, returns a command line that reruns one test. It is recorded with
	// every failure registered in the known-issue store.
	ReproCommand func(id TestID) string

	// EventsEnabled turns on the event steps. When it is false they only log a comment.
	EventsEnabled bool

	Timing Timing

	// DebugLogger, if set, also receives every test's debug output as it is written.
	DebugLogger framework.Logger
}

func (e Environment) withDefaults() Environment {
	if e.TestLogger == nil {
		e.TestLogger = nullTestLogger{}
	}
	if e.KnownIssues == nil {
		e.KnownIssues = nullKnownIssueStore{}
	}
	if e.Timing == (Timing{}) {
		e.Timing = DefaultTiming()
	}
	return e
}
