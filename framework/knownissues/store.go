// Package knownissues implements the file-backed database of accepted test failures.
//
// The file is YAML with two lists. "issues" is maintained by people: each entry describes a
// failure that is understood and should not fail a run. "repros" is maintained by the
// harness: every failure it triages is recorded there once, with a command line that reruns
// the test.
//
//	issues:
//	  - test: Collapse.S.2.4
//	    kind: Verification
//	    message: "expected Fired but was NotFired"
//	    explanation: Tree views do not raise the event for leaf nodes
//	    bug: "1234"
//	repros:
//	  - test: Expand.S.1.5
//	    step: 3
//	    kind: Verification
//	    message: "..."
//	    element: "42.7"
//	    command: uia-contract-tests -url http://localhost:8000 -suite ExpandCollapse -test Expand.S.1.5
package knownissues

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"

	"gopkg.in/yaml.v3"
)

// Issue is a known failure. Empty fields match anything; Message is a regular expression.
type Issue struct {
	Test        string `yaml:"test,omitempty"`
	Step        *int   `yaml:"step,omitempty"`
	Kind        string `yaml:"kind,omitempty"`
	Message     string `yaml:"message,omitempty"`
	Element     string `yaml:"element,omitempty"`
	Explanation string `yaml:"explanation"`
	Bug         string `yaml:"bug,omitempty"`
}

// Repro is a failure seen by the harness.
type Repro struct {
	Test    string `yaml:"test"`
	Step    int    `yaml:"step"`
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
	Element string `yaml:"element,omitempty"`
	Command string `yaml:"command,omitempty"`
}

type fileContent struct {
	Issues []Issue `yaml:"issues"`
	Repros []Repro `yaml:"repros,omitempty"`
}

type compiledIssue struct {
	Issue
	message *regexp.Regexp
}

// Store implements uiatest.KnownIssueStore. It is safe for concurrent use.
type Store struct {
	path   string
	issues []compiledIssue
	repros []Repro
	dirty  bool
	lock   sync.Mutex
}

// Load reads a store from a YAML file. A file that does not exist yet gives an empty store,
// which Save will create.
func Load(path string) (*Store, error) {
	var content fileContent
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("malformed known-issue file %s: %w", path, err)
		}
	}
	s, err := New(content.Issues...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	s.repros = content.Repros
	return s, nil
}

// New creates a store that is not backed by a file.
func New(issues ...Issue) (*Store, error) {
	s := &Store{}
	for i, issue := range issues {
		ci := compiledIssue{Issue: issue}
		if issue.Message != "" {
			rx, err := regexp.Compile(issue.Message)
			if err != nil {
				return nil, fmt.Errorf("issue %d has an invalid message pattern: %w", i+1, err)
			}
			ci.message = rx
		}
		s.issues = append(s.issues, ci)
	}
	return s, nil
}

func (c compiledIssue) matches(fp uiatest.Fingerprint) bool {
	return (c.Test == "" || strings.EqualFold(c.Test, fp.Test)) &&
		(c.Step == nil || *c.Step == fp.Step) &&
		(c.Kind == "" || strings.EqualFold(c.Kind, fp.Kind.String())) &&
		(c.message == nil || c.message.MatchString(fp.Message)) &&
		(c.Element == "" || c.Element == fp.Element)
}

// IsKnown returns the explanation of the first issue that matches the failure.
func (s *Store) IsKnown(fp uiatest.Fingerprint) (bool, string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, c := range s.issues {
		if c.matches(fp) {
			if c.Bug != "" {
				return true, fmt.Sprintf("%s (bug %s)", c.Explanation, c.Bug)
			}
			return true, c.Explanation
		}
	}
	return false, ""
}

// AddIssue records the failure as a repro unless the same failure is already recorded. The
// repro command is not compared; the first one recorded is kept.
func (s *Store) AddIssue(fp uiatest.Fingerprint) error {
	r := Repro{
		Test:    fp.Test,
		Step:    fp.Step,
		Kind:    fp.Kind.String(),
		Message: fp.Message,
		Element: fp.Element,
		Command: fp.Command,
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, existing := range s.repros {
		if existing.sameFailure(r) {
			return nil
		}
	}
	s.repros = append(s.repros, r)
	s.dirty = true
	return nil
}

func (r Repro) sameFailure(other Repro) bool {
	r.Command, other.Command = "", ""
	return r == other
}

// Repros returns a copy of the recorded repros.
func (s *Store) Repros() []Repro {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Repro(nil), s.repros...)
}

// Save writes the store back to its file if anything was added. The file is replaced
// atomically, so an interrupted save leaves the old content in place.
func (s *Store) Save() (err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.path == "" || !s.dirty {
		return nil
	}
	content := fileContent{Repros: s.repros}
	for _, c := range s.issues {
		content.Issues = append(content.Issues, c.Issue)
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), ".known-issues-*.yaml")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err = encoder.Encode(content); err != nil {
		_ = f.Close()
		return err
	}
	if err = encoder.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(f.Name(), s.path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
