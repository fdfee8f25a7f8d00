package uiatest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter determines whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by matching their IDs ("suite/name"). A test runs if it matches
// at least one MustMatch pattern (or there are none) and no MustNotMatch pattern.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

// Describe writes a human-readable summary of the filters, if there are any.
func (r RegexFilters) Describe(out io.Writer) {
	if !r.IsDefined() {
		return
	}
	fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
	if r.MustMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any not matching %s\n", r.MustMatch)
	}
	if r.MustNotMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any matching %s\n", r.MustNotMatch)
	}
	fmt.Fprintln(out)
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser. Patterns are matched case-insensitively, since
// test names are.
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile("(?i)" + value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
