package uiatest

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is a bitmask. A test declares exactly one level; a filter may ask for several.
type Priority int

const (
	Pri0 Priority = 1 << iota
	Pri1
	Pri2
	Pri3
	Pri4

	PriAll = Pri0 | Pri1 | Pri2 | Pri3 | Pri4
)

func (p Priority) String() string {
	if p == PriAll {
		return "PriAll"
	}
	var parts []string
	for i := 0; i <= 4; i++ {
		if p&(1<<i) != 0 {
			parts = append(parts, "Pri"+strconv.Itoa(i))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return strings.Join(parts, "|")
}

// ParsePriority accepts "all", a level number such as "1", or a name such as "Pri1". Several
// levels can be combined with commas.
func ParsePriority(s string) (Priority, error) {
	var p Priority
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "all" || part == "priall" {
			p |= PriAll
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(part, "pri"))
		if err != nil || n < 0 || n > 4 {
			return 0, fmt.Errorf("invalid priority %q", part)
		}
		p |= 1 << n
	}
	return p, nil
}

// Status says whether a test is ready to run as part of a suite.
type Status int

const (
	Works Status = iota
	Problem
	Ignore
)

func (s Status) String() string {
	switch s {
	case Works:
		return "Works"
	case Problem:
		return "Problem"
	case Ignore:
		return "Ignore"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// CaseType is a set of category flags. Generic, the zero value, means no particular category;
// as a filter mask it means any category.
type CaseType int

const (
	Generic   CaseType = 0
	Events    CaseType = 1 << 0
	Scenario  CaseType = 1 << 1
	Arguments CaseType = 1 << 2
	Modifies  CaseType = 1 << 3
	Input     CaseType = 1 << 4
)

var caseTypeNames = []struct {
	flag CaseType
	name string
}{
	{Events, "Events"},
	{Scenario, "Scenario"},
	{Arguments, "Arguments"},
	{Modifies, "Modifies"},
	{Input, "Input"},
}

func (c CaseType) String() string {
	if c == Generic {
		return "Generic"
	}
	var parts []string
	for _, n := range caseTypeNames {
		if c&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseCaseType parses a comma-separated list of category names, case-insensitively.
func ParseCaseType(s string) (CaseType, error) {
	var c CaseType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "generic") {
			continue
		}
		found := false
		for _, n := range caseTypeNames {
			if strings.EqualFold(part, n.name) {
				c |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid test category %q", part)
		}
	}
	return c, nil
}

// BugMarker at the start of a step description pre-declares that a verification failure at
// that step is a known bug.
const BugMarker = "BUG"

// Descriptor is the static metadata of one test case.
type Descriptor struct {
	Name     string
	Summary  string
	Priority Priority
	Status   Status
	Type     CaseType

	// Steps describes the test's script, one entry per step operation the body performs.
	Steps []string

	// EventTested names the event under test; event steps refuse to run without it.
	EventTested string

	// Bugs is free-form bug-tracking metadata, such as the reason a test has status Problem.
	Bugs string

	// Client names who drives a scenario test. Scenario tests must set it.
	Client string
	Author string
}

// Normalized is the registry key for the test name.
func (d Descriptor) Normalized() string {
	return normalizeName(d.Name)
}

// StepText returns the description of step i, or "" if the script has no such step.
func (d Descriptor) StepText(i int) string {
	if i < 0 || i >= len(d.Steps) {
		return ""
	}
	return d.Steps[i]
}

// IsArgumentsOnly is true for tests that can only run with explicit arguments.
func (d Descriptor) IsArgumentsOnly() bool {
	return d.Type&Arguments != 0
}

func (d Descriptor) IsScenario() bool {
	return d.Type&Scenario != 0
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Case is a registered test: its descriptor and its body.
type Case struct {
	Descriptor
	Run func(t *T)
}

// Suite is a named group of cases, typically all the tests for one control pattern.
type Suite struct {
	ID    string
	Cases []Case
}
