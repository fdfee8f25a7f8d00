// Package resultlog writes test results as JSON lines, one object per finished test, for
// consumption by tools that track conformance over time.
package resultlog

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"

	"github.com/google/uuid"
)

// Comment is one step-tagged log line.
type Comment struct {
	Step    int    `json:"step"`
	Message string `json:"message"`
}

// Record is what JSONLogger writes for each test.
type Record struct {
	RunID    string                  `json:"runId"`
	Test     string                  `json:"test"`
	Suite    string                  `json:"suite"`
	Summary  string                  `json:"summary,omitempty"`
	Priority string                  `json:"priority"`
	Bugs     string                  `json:"bugs,omitempty"`
	Element  uiatest.ElementSnapshot `json:"element"`
	Comments []Comment               `json:"comments,omitempty"`
	Errors   []Comment               `json:"errors,omitempty"`
	Outcome  string                  `json:"outcome"`
	Steps    int                     `json:"steps"`
	Started  time.Time               `json:"started"`
	Finished time.Time               `json:"finished"`
}

// JSONLogger implements uiatest.TestLogger. Every record of one run carries the same run ID.
type JSONLogger struct {
	runID   string
	out     io.Writer
	pending map[string]*Record
	now     func() time.Time
	logger  framework.Logger
	err     error
	lock    sync.Mutex
}

// NewJSONLogger creates a JSONLogger. Records that cannot be written are reported to logger,
// which may be nil.
func NewJSONLogger(out io.Writer, logger framework.Logger) *JSONLogger {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &JSONLogger{
		runID:   uuid.New().String(),
		out:     out,
		pending: make(map[string]*Record),
		now:     time.Now,
		logger:  logger,
	}
}

func (j *JSONLogger) RunID() string { return j.runID }

// Err returns the first error that prevented a record from being written.
func (j *JSONLogger) Err() error {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.err
}

func splitID(id uiatest.TestID) (suite, test string) {
	if len(id.Path) > 1 {
		suite = id.Path[0]
	}
	return suite, id.Name()
}

func (j *JSONLogger) TestStarted(info uiatest.TestInfo) {
	suite, test := splitID(info.ID)
	j.lock.Lock()
	j.pending[info.ID.String()] = &Record{
		RunID:    j.runID,
		Test:     test,
		Suite:    suite,
		Summary:  info.Descriptor.Summary,
		Priority: info.Descriptor.Priority.String(),
		Bugs:     info.Descriptor.Bugs,
		Element:  info.Snapshot,
		Started:  j.now(),
	}
	j.lock.Unlock()
}

func (j *JSONLogger) TestComment(id uiatest.TestID, step int, message string) {
	j.update(id, func(r *Record) {
		r.Comments = append(r.Comments, Comment{Step: step, Message: message})
	})
}

func (j *JSONLogger) TestError(id uiatest.TestID, step int, err error) {
	j.update(id, func(r *Record) {
		r.Errors = append(r.Errors, Comment{Step: step, Message: err.Error()})
	})
}

func (j *JSONLogger) TestPassed(uiatest.TestID, uiatest.Outcome) {}

func (j *JSONLogger) TestFinished(id uiatest.TestID, result uiatest.TestResult, _ framework.CapturedOutput) {
	j.lock.Lock()
	r := j.pending[id.String()]
	delete(j.pending, id.String())
	j.lock.Unlock()
	if r == nil {
		return
	}
	r.Outcome = result.Outcome.String()
	r.Steps = result.Steps
	r.Finished = j.now()
	j.write(r)
}

func (j *JSONLogger) TestSkipped(id uiatest.TestID, reason string) {
	suite, test := splitID(id)
	now := j.now()
	r := &Record{
		RunID:    j.runID,
		Test:     test,
		Suite:    suite,
		Comments: []Comment{{Message: reason}},
		Outcome:  uiatest.Skipped.String(),
		Started:  now,
		Finished: now,
	}
	j.write(r)
}

func (j *JSONLogger) update(id uiatest.TestID, fn func(*Record)) {
	j.lock.Lock()
	if r := j.pending[id.String()]; r != nil {
		fn(r)
	}
	j.lock.Unlock()
}

func (j *JSONLogger) write(r *Record) {
	data, err := json.Marshal(r)
	j.lock.Lock()
	defer j.lock.Unlock()
	if err == nil {
		_, err = j.out.Write(append(data, '\n'))
	}
	if err != nil {
		j.logger.Printf("Could not write result record for %s/%s: %s", r.Suite, r.Test, err)
		if j.err == nil {
			j.err = fmt.Errorf("could not write result record for %s/%s: %w", r.Suite, r.Test, err)
		}
	}
}
