package uiatest

import (
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uia/uiafake"
)

type loggedComment struct {
	id      string
	step    int
	message string
}

// recordingTestLogger keeps everything it is told, for assertions.
type recordingTestLogger struct {
	started  []TestInfo
	comments []loggedComment
	errors   []loggedComment
	passed   []string
	finished []TestResult
	skipped  []string
	calls    []string
	lock     sync.Mutex
}

func (r *recordingTestLogger) TestStarted(info TestInfo) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.started = append(r.started, info)
	r.calls = append(r.calls, "started "+info.ID.String())
}

func (r *recordingTestLogger) TestComment(id TestID, step int, message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.comments = append(r.comments, loggedComment{id.String(), step, message})
}

func (r *recordingTestLogger) TestError(id TestID, step int, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.errors = append(r.errors, loggedComment{id.String(), step, err.Error()})
	r.calls = append(r.calls, "error "+id.String())
}

func (r *recordingTestLogger) TestPassed(id TestID, outcome Outcome) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.passed = append(r.passed, id.String())
	r.calls = append(r.calls, "passed "+id.String())
}

func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.finished = append(r.finished, result)
	r.calls = append(r.calls, "finished "+id.String())
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.skipped = append(r.skipped, id.String())
}

func (r *recordingTestLogger) commentsContaining(s string) []loggedComment {
	r.lock.Lock()
	defer r.lock.Unlock()
	var ret []loggedComment
	for _, c := range r.comments {
		if strings.Contains(c.message, s) {
			ret = append(ret, c)
		}
	}
	return ret
}

// fakeKnownIssueStore treats failures as known by message.
type fakeKnownIssueStore struct {
	known map[string]string
	added []Fingerprint
	lock  sync.Mutex
}

func (f *fakeKnownIssueStore) IsKnown(fp Fingerprint) (bool, string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	explanation, ok := f.known[fp.Message]
	return ok, explanation
}

func (f *fakeKnownIssueStore) AddIssue(fp Fingerprint) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, existing := range f.added {
		if existing == fp {
			return nil
		}
	}
	f.added = append(f.added, fp)
	return nil
}

func fastTiming() Timing {
	return Timing{
		SettleDelay:              time.Millisecond,
		ListenerSettleDelay:      time.Millisecond,
		FocusListenerSettleDelay: time.Millisecond,
		EventWaitTimeout:         time.Millisecond * 200,
		FocusWaitTimeout:         time.Millisecond * 200,
		VisualStateTimeout:       time.Millisecond * 200,
		KeyDelay:                 time.Millisecond,
	}
}

type testFixture struct {
	tree   *uiafake.Tree
	target uia.Element
	logger *recordingTestLogger
	issues *fakeKnownIssueStore
	env    Environment
}

func newFixture() *testFixture {
	tree := uiafake.NewTree()
	window := tree.AddChild(tree.Root(), "Main window", "window")
	target := tree.AddChild(window, "Tree", "tree")
	f := &testFixture{
		tree:   tree,
		target: target,
		logger: &recordingTestLogger{},
		issues: &fakeKnownIssueStore{known: map[string]string{}},
	}
	f.env = Environment{
		Provider:      tree,
		Input:         tree,
		TestLogger:    f.logger,
		KnownIssues:   f.issues,
		EventsEnabled: true,
		Timing:        fastTiming(),
	}
	return f
}

func (f *testFixture) run(c Case) TestResult {
	env := f.env.withDefaults()
	return invoke(&env, NewTestID("suite", c.Name), c, f.target, nil, c.IsScenario())
}

func eventCase(name string, body func(*T)) Case {
	return Case{
		Descriptor: Descriptor{Name: name, Type: Events, EventTested: "test event", Status: Works, Priority: Pri1},
		Run:        body,
	}
}
