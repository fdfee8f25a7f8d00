package uiatest

import (
	"fmt"
	"strings"
)

// Outcome is how one invocation ended.
type Outcome int

const (
	Passed Outcome = iota
	// PassedWithWarning means the test raised a Warning.
	PassedWithWarning
	// NotApplicable means the test raised a ConfigurationMismatch.
	NotApplicable
	// KnownIssue means the test failed but the known-issue store waived the failure.
	KnownIssue
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case PassedWithWarning:
		return "warning"
	case NotApplicable:
		return "not applicable"
	case KnownIssue:
		return "known issue"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// OK is true for every outcome that does not fail a run.
func (o Outcome) OK() bool {
	return o != Failed
}

// worse returns whichever of two outcomes ranks worse: Failed over KnownIssue over
// NotApplicable over PassedWithWarning over Passed.
func worse(a, b Outcome) Outcome {
	if b > a {
		return b
	}
	return a
}

type TestID struct {
	Path []string
}

func NewTestID(suiteID, name string) TestID {
	return TestID{Path: []string{suiteID, name}}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name is the last element of the path.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

type TestResult struct {
	TestID  TestID
	Outcome Outcome
	Errors  []error

	// Steps is the final position of the step cursor.
	Steps int
}

func (r TestResult) Passed() bool {
	return r.Outcome.OK()
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

// OK is true if every test that was executed passed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r *Results) add(result TestResult) {
	if result.Outcome == Skipped {
		r.Skipped = append(r.Skipped, result)
		return
	}
	r.Tests = append(r.Tests, result)
	if !result.Passed() {
		r.Failures = append(r.Failures, result)
	}
}
