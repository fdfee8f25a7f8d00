package uiatest

import (
	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

// ElementSnapshot describes the target element as it was when a test started.
type ElementSnapshot struct {
	Element      uia.Element `json:"element"`
	Name         string      `json:"name,omitempty"`
	ControlType  string      `json:"controlType,omitempty"`
	AutomationID string      `json:"automationId,omitempty"`
	ClassName    string      `json:"className,omitempty"`
}

// TestInfo is what a TestLogger is told about a test when it starts.
type TestInfo struct {
	ID         TestID
	Descriptor Descriptor
	Snapshot   ElementSnapshot
}

// TestLogger receives the structured log of a test run. Calls for one test are made from the
// goroutine running it, in order: TestStarted, then any number of TestComment and TestError,
// then TestPassed if the test passed, then TestFinished. TestSkipped replaces all of these
// for a test that was filtered out.
type TestLogger interface {
	TestStarted(info TestInfo)
	TestComment(id TestID, step int, message string)
	TestError(id TestID, step int, err error)
	TestPassed(id TestID, outcome Outcome)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func NullTestLogger() TestLogger { return nullTestLogger{} }

func (nullTestLogger) TestStarted(TestInfo)                                      {}
func (nullTestLogger) TestComment(TestID, int, string)                           {}
func (nullTestLogger) TestError(TestID, int, error)                              {}
func (nullTestLogger) TestPassed(TestID, Outcome)                                {}
func (nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (nullTestLogger) TestSkipped(TestID, string)                                {}

// MultiTestLogger forwards every call to each of its loggers in turn.
type MultiTestLogger []TestLogger

func (m MultiTestLogger) TestStarted(info TestInfo) {
	for _, l := range m {
		l.TestStarted(info)
	}
}

func (m MultiTestLogger) TestComment(id TestID, step int, message string) {
	for _, l := range m {
		l.TestComment(id, step, message)
	}
}

func (m MultiTestLogger) TestError(id TestID, step int, err error) {
	for _, l := range m {
		l.TestError(id, step, err)
	}
}

func (m MultiTestLogger) TestPassed(id TestID, outcome Outcome) {
	for _, l := range m {
		l.TestPassed(id, outcome)
	}
}

func (m MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}
