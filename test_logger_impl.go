package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"

	"github.com/fatih/color"
)

var (
	passedColor   = color.New(color.FgGreen).SprintFunc()
	warningColor  = color.New(color.FgYellow).SprintFunc()
	failedColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	knownColor    = color.New(color.FgMagenta).SprintFunc()
	inactiveColor = color.New(color.FgHiBlack).SprintFunc()
)

func outcomeLabel(o uiatest.Outcome) string {
	label := strings.ToUpper(o.String())
	switch o {
	case uiatest.Passed:
		return passedColor(label)
	case uiatest.PassedWithWarning:
		return warningColor(label)
	case uiatest.KnownIssue:
		return knownColor(label)
	case uiatest.Failed:
		return failedColor(label)
	default:
		return inactiveColor(label)
	}
}

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Out                  io.Writer
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return color.Output
	}
	return c.Out
}

func (c *ConsoleTestLogger) TestStarted(info uiatest.TestInfo) {
	fmt.Fprintf(c.out(), "[%s]", info.ID)
	if info.Snapshot.Name != "" || info.Snapshot.ControlType != "" {
		fmt.Fprintf(c.out(), " %s", inactiveColor(fmt.Sprintf("(%s %q)", info.Snapshot.ControlType, info.Snapshot.Name)))
	}
	fmt.Fprintln(c.out())
}

func (c *ConsoleTestLogger) TestComment(id uiatest.TestID, step int, message string) {
	fmt.Fprintf(c.out(), "  %d: %s\n", step, message)
}

func (c *ConsoleTestLogger) TestError(id uiatest.TestID, step int, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s %s\n", failedColor("!"), line)
	}
}

func (c *ConsoleTestLogger) TestPassed(uiatest.TestID, uiatest.Outcome) {}

func (c *ConsoleTestLogger) TestFinished(id uiatest.TestID, result uiatest.TestResult, debugOutput framework.CapturedOutput) {
	failed := !result.Passed()
	fmt.Fprintf(c.out(), "  %s: %s (%d steps)\n", outcomeLabel(result.Outcome), id, result.Steps)
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id uiatest.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.out(), "  %s: %s\n", outcomeLabel(uiatest.Skipped), id)
	} else {
		fmt.Fprintf(c.out(), "  %s: %s (%s)\n", outcomeLabel(uiatest.Skipped), id, reason)
	}
}

// PrintResults writes a summary of a run: the count of each outcome, then every failure.
func PrintResults(out io.Writer, results uiatest.Results) {
	if out == nil {
		out = os.Stdout
	}
	counts := make(map[uiatest.Outcome]int)
	for _, r := range results.Tests {
		counts[r.Outcome]++
	}
	counts[uiatest.Skipped] += len(results.Skipped)

	var parts []string
	for _, o := range []uiatest.Outcome{
		uiatest.Passed, uiatest.PassedWithWarning, uiatest.NotApplicable,
		uiatest.KnownIssue, uiatest.Failed, uiatest.Skipped,
	} {
		if counts[o] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[o], outcomeLabel(o)))
		}
	}
	if len(parts) == 0 {
		fmt.Fprintln(out, "No tests were run")
		return
	}
	fmt.Fprintf(out, "Ran %d tests: %s\n", len(results.Tests), strings.Join(parts, ", "))

	if results.OK() {
		fmt.Fprintln(out, passedColor("All tests passed"))
		return
	}
	fmt.Fprintln(out, failedColor("FAILED TESTS:"))
	for _, r := range results.Failures {
		fmt.Fprintf(out, "  %s\n", r.TestID)
		for _, err := range r.Errors {
			fmt.Fprintf(out, "    %s\n", err)
		}
	}
}
