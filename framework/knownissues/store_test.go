package knownissues

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func verificationFailure(test, message string, step int) uiatest.Fingerprint {
	return uiatest.Fingerprint{
		Test:    test,
		Kind:    uiatest.VerificationFailure,
		Message: message,
		Step:    step,
		Element: "42.7",
		Command: "uia-contract-tests -test " + test,
	}
}

func TestIsKnownMatchesFields(t *testing.T) {
	s, err := New(
		Issue{Test: "collapse.s.2.4", Kind: "verification", Message: "NotFired$", Explanation: "leaf nodes", Bug: "12"},
		Issue{Test: "Expand.S.1.5", Step: intPtr(2), Explanation: "step two only"},
	)
	require.NoError(t, err)

	known, explanation := s.IsKnown(verificationFailure("Collapse.S.2.4", "expected Fired but was NotFired", 0))
	assert.True(t, known)
	assert.Equal(t, "leaf nodes (bug 12)", explanation)

	known, _ = s.IsKnown(verificationFailure("Collapse.S.2.4", "expected NotFired but was Fired", 0))
	assert.False(t, known)

	known, explanation = s.IsKnown(verificationFailure("Expand.S.1.5", "anything", 2))
	assert.True(t, known)
	assert.Equal(t, "step two only", explanation)

	known, _ = s.IsKnown(verificationFailure("Expand.S.1.5", "anything", 3))
	assert.False(t, known)
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(Issue{Message: "("})
	assert.Error(t, err)
}

func TestAddIssueIsIdempotent(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	fp := verificationFailure("X.S.1", "mismatch", 1)

	require.NoError(t, s.AddIssue(fp))
	require.NoError(t, s.AddIssue(fp))
	assert.Len(t, s.Repros(), 1)

	known, _ := s.IsKnown(fp)
	assert.False(t, known, "recording a repro must not make the failure known")

	require.NoError(t, s.AddIssue(verificationFailure("X.S.1", "mismatch", 2)))
	assert.Len(t, s.Repros(), 2)
}

func TestAddIssueIgnoresCommand(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	first := verificationFailure("X.S.1", "mismatch", 1)
	first.Command = "uia-contract-tests -suite X -test X.S.1 -arg 320"
	second := first
	second.Command = "uia-contract-tests -suite X -test X.S.1 -arg 640"

	require.NoError(t, s.AddIssue(first))
	require.NoError(t, s.AddIssue(second))
	repros := s.Repros()
	require.Len(t, repros, 1)
	assert.Equal(t, first.Command, repros[0].Command)
}

func TestAddIssueConcurrently(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddIssue(verificationFailure("X.S.1", "mismatch", 1))
		}()
	}
	wg.Wait()
	assert.Len(t, s.Repros(), 1)
}

func TestLoadMissingFileGivesEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	known, _ := s.IsKnown(verificationFailure("X.S.1", "mismatch", 1))
	assert.False(t, known)
	assert.Len(t, s.Repros(), 0)
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issues:
  - test: X.S.1
    message: mismatch
    explanation: accepted
repros:
  - test: Y.S.1
    step: 0
    kind: Critical
    message: element is not available
`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	known, explanation := s.IsKnown(verificationFailure("X.S.1", "a mismatch", 1))
	assert.True(t, known)
	assert.Equal(t, "accepted", explanation)
	require.Len(t, s.Repros(), 1)

	require.NoError(t, s.AddIssue(verificationFailure("X.S.1", "a mismatch", 1)))
	require.NoError(t, s.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	repros := reloaded.Repros()
	require.Len(t, repros, 2)
	assert.Equal(t, Repro{
		Test:    "X.S.1",
		Step:    1,
		Kind:    "Verification",
		Message: "a mismatch",
		Element: "42.7",
		Command: "uia-contract-tests -test X.S.1",
	}, repros[1])
	known, _ = reloaded.IsKnown(verificationFailure("X.S.1", "a mismatch", 1))
	assert.True(t, known)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known.yaml")
	require.NoError(t, os.WriteFile(path, []byte("issues: {not a list"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
