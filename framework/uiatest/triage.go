package uiatest

import (
	"fmt"
	"strings"
)

const knownIssueBanner = "#### KNOWN ISSUE ###"

// Fingerprint identifies a failure for the known-issue store.
type Fingerprint struct {
	Test    string
	Kind    ErrorKind
	Message string
	Step    int
	Element string

	// Command reruns the failing test. It is informational, so stores should not match on it.
	Command string
}

// KnownIssueStore is the database of accepted failures.
type KnownIssueStore interface {
	// IsKnown reports whether a failure is a known issue, and if so, its explanation.
	IsKnown(fp Fingerprint) (bool, string)

	// AddIssue records a failure for reproduction. Adding the same fingerprint again must not
	// change anything.
	AddIssue(fp Fingerprint) error
}

type nullKnownIssueStore struct{}

func (nullKnownIssueStore) IsKnown(Fingerprint) (bool, string) { return false, "" }
func (nullKnownIssueStore) AddIssue(Fingerprint) error         { return nil }

// triage decides the outcome of one failure and logs it accordingly.
func (t *T) triage(failure error) Outcome {
	cause := innermost(failure)
	kind := KindOf(cause)
	step := t.cursor.Index()
	if te, ok := cause.(*TestError); ok {
		step = te.Step
	}

	switch kind {
	case ConfigurationMismatch:
		t.env.TestLogger.TestComment(t.id, step, "Test does not apply to this element: "+cause.Error())
		return NotApplicable

	case Warning:
		t.env.TestLogger.TestComment(t.id, step, "WARNING: "+cause.Error())
		return PassedWithWarning

	case VerificationFailure, UnknownError, Critical:
		return t.triageFailure(kind, step, cause)

	default:
		return t.triageFailure(kind, step, fmt.Errorf("%w (unrecognized error kind %s)", cause, kind))
	}
}

func (t *T) triageFailure(kind ErrorKind, step int, cause error) Outcome {
	fp := Fingerprint{
		Test:    t.desc.Name,
		Kind:    kind,
		Message: cause.Error(),
		Step:    step,
		Element: t.target.RuntimeID,
	}
	if t.env.ReproCommand != nil {
		fp.Command = t.env.ReproCommand(t.id)
	}

	known, explanation := t.env.KnownIssues.IsKnown(fp)
	if err := t.env.KnownIssues.AddIssue(fp); err != nil {
		t.Debug("Could not register failure with the known-issue store: %s", err)
	}

	if known {
		t.env.TestLogger.TestComment(t.id, step, knownIssueBanner)
		for _, line := range strings.Split(explanation, "\n") {
			t.env.TestLogger.TestComment(t.id, step, line)
		}
		t.env.TestLogger.TestComment(t.id, step, cause.Error())
		t.env.TestLogger.TestComment(t.id, step, knownIssueBanner)
		return KnownIssue
	}

	t.env.TestLogger.TestError(t.id, step, cause)
	return Failed
}
