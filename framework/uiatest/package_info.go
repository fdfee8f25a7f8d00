// Package uiatest is the test-execution engine: a registry of test case descriptors, a
// dispatcher that runs them against a target element, the invocation pipeline that wraps
// each run with setup, cleanup and failure triage, and the event monitors and step
// operations that test bodies use through *T.
//
// Exactly one invocation is in flight per T. Event callbacks may arrive on other goroutines,
// so the monitors are safe for concurrent use, but everything else on T belongs to the
// goroutine running the test body.
package uiatest
