package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/servicedef"

	"github.com/alessio/shellescape"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type commandParams struct {
	serviceURL       string
	port             int
	host             string
	suites           stringList
	test             string
	scenario         string
	args             argList
	priority         uiatest.Priority
	category         uiatest.CaseType
	filters          uiatest.RegexFilters
	noEvents         bool
	knownIssuesFile  string
	resultsFile      string
	settleMS         int
	eventTimeoutMS   int
	window           int
	pid              int
	automationID     string
	stopServiceAtEnd bool
	debug            bool
	debugAll         bool
}

func (c *commandParams) Read(args []string) bool {
	var priority, category string

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "test service URL")
	fs.StringVar(&c.host, "host", "localhost", "external hostname of the test harness")
	fs.IntVar(&c.port, "port", defaultPort, "port that the test harness will listen on")
	fs.Var(&c.suites, "suite", "suite to run (may be repeated; default is every suite)")
	fs.StringVar(&c.test, "test", "", "run only this test from the single -suite")
	fs.StringVar(&c.scenario, "scenario", "", "run this scenario test from the single -suite")
	fs.Var(&c.args, "arg", "JSON argument passed to -test or -scenario (may be repeated)")
	fs.StringVar(&priority, "priority", "all", `priorities to run, such as "0,1" or "all"`)
	fs.StringVar(&category, "category", "", `test categories to run, such as "Events,Modifies" (default is any)`)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.noEvents, "no-events", false, "do not subscribe to automation events")
	fs.StringVar(&c.knownIssuesFile, "known-issues", "", "YAML file of known issues; new failures are added to it")
	fs.StringVar(&c.resultsFile, "results", "", "file to write JSON test results to")
	fs.IntVar(&c.settleMS, "settle-ms", 0, "milliseconds to wait for events to settle (default is the engine's)")
	fs.IntVar(&c.eventTimeoutMS, "event-timeout-ms", 0, "milliseconds to wait for expected events (default is the engine's)")
	fs.IntVar(&c.window, "window", 0, "window handle of the application under test")
	fs.IntVar(&c.pid, "pid", 0, "process ID of the application under test")
	fs.StringVar(&c.automationID, "automation-id", "", "automation ID of the target element inside the application")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell test service to exit after the test run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}

	fail := func(message string, args ...interface{}) bool {
		fmt.Fprintf(os.Stderr, message+"\n", args...)
		fs.Usage()
		return false
	}
	if c.serviceURL == "" {
		return fail("-url is required")
	}
	if (c.window == 0) == (c.pid == 0) {
		return fail("exactly one of -window and -pid is required")
	}
	if c.test != "" && c.scenario != "" {
		return fail("-test and -scenario cannot be used together")
	}
	if (c.test != "" || c.scenario != "") && len(c.suites) != 1 {
		return fail("-test and -scenario require exactly one -suite")
	}
	if len(c.args) != 0 && c.test == "" && c.scenario == "" {
		return fail("-arg can only be used with -test or -scenario")
	}
	var err error
	if c.priority, err = uiatest.ParsePriority(priority); err != nil {
		return fail("-priority: %s", err)
	}
	if c.category, err = uiatest.ParseCaseType(category); err != nil {
		return fail("-category: %s", err)
	}
	return true
}

func (c *commandParams) sessionParams() servicedef.CreateSessionParams {
	p := servicedef.CreateSessionParams{
		Tag:          "uia-contract-tests",
		AutomationID: c.automationID,
	}
	if c.window != 0 {
		p.WindowHandle = ldvalue.NewOptionalInt(c.window)
	}
	if c.pid != 0 {
		p.ProcessID = ldvalue.NewOptionalInt(c.pid)
	}
	return p
}

func (c *commandParams) timing() uiatest.Timing {
	t := uiatest.DefaultTiming()
	if c.settleMS > 0 {
		d := time.Duration(c.settleMS) * time.Millisecond
		t.SettleDelay = d
		t.ListenerSettleDelay = d
		if d > t.FocusListenerSettleDelay {
			t.FocusListenerSettleDelay = d
		}
	}
	if c.eventTimeoutMS > 0 {
		d := time.Duration(c.eventTimeoutMS) * time.Millisecond
		t.EventWaitTimeout = d
		t.FocusWaitTimeout = d
	}
	return t
}

// reproCommand builds a command line that reruns a single test against the same application.
func (c *commandParams) reproCommand(program string) func(uiatest.TestID) string {
	return func(id uiatest.TestID) string {
		var b commandBuilder
		b.add(program, "-url", c.serviceURL)
		if c.window != 0 {
			b.add("-window", strconv.Itoa(c.window))
		}
		if c.pid != 0 {
			b.add("-pid", strconv.Itoa(c.pid))
		}
		if c.automationID != "" {
			b.add("-automation-id", c.automationID)
		}
		switch {
		case len(id.Path) == 2 && c.scenario != "":
			b.add("-suite", id.Path[0], "-scenario", id.Path[1])
		case len(id.Path) == 2:
			b.add("-suite", id.Path[0], "-test", id.Path[1])
		default:
			b.add("-run", "^"+id.String()+"$")
		}
		for _, a := range c.args {
			b.add("-arg", a.JSONString())
		}
		if c.noEvents {
			b.add("-no-events")
		}
		return b.String()
	}
}

type stringList []string

func (s stringList) String() string { return strings.Join(s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type argList []ldvalue.Value

func (a argList) String() string {
	var ss []string
	for _, v := range a {
		ss = append(ss, v.JSONString())
	}
	return strings.Join(ss, " ")
}

// Set parses a JSON value. A bare word that is not valid JSON is taken as a string.
func (a *argList) Set(value string) error {
	var v ldvalue.Value
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		if strings.ContainsAny(value, `{}[]"`) {
			return fmt.Errorf("invalid JSON argument: %w", err)
		}
		v = ldvalue.String(value)
	}
	*a = append(*a, v)
	return nil
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
