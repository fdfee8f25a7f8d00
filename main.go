package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/framework/harness"
	"github.com/launchdarkly/uia-contract-tests/framework/knownissues"
	"github.com/launchdarkly/uia-contract-tests/framework/resultlog"
	"github.com/launchdarkly/uia-contract-tests/framework/uiatest"
	"github.com/launchdarkly/uia-contract-tests/servicedef"
	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uiaservice"
	"github.com/launchdarkly/uia-contract-tests/uiatests"
)

const defaultPort = 8111
const statusQueryTimeout = time.Second * 10

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	ok, err := run(params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(params commandParams) (bool, error) {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	h, err := harness.NewTestHarness(
		params.serviceURL,
		params.host,
		params.port,
		statusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return false, fmt.Errorf("test service error: %w", err)
	}
	if params.stopServiceAtEnd {
		defer func() {
			fmt.Println("Stopping test service")
			if err := h.StopService(); err != nil {
				fmt.Fprintf(os.Stderr, "Error when stopping test service: %s\n", err)
			}
		}()
	}

	session, err := uiaservice.NewSession(h, params.sessionParams(),
		framework.LoggerWithPrefix(mainDebugLogger, "[session] "))
	if err != nil {
		return false, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error when closing session: %s\n", err)
		}
	}()

	registry := uiatest.NewRegistry()
	if err := uiatests.Register(registry); err != nil {
		return false, err
	}

	store, err := openKnownIssues(params.knownIssuesFile)
	if err != nil {
		return false, err
	}

	consoleLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	testLogger := uiatest.MultiTestLogger{consoleLogger}
	var jsonLogger *resultlog.JSONLogger
	if params.resultsFile != "" {
		f, err := os.Create(params.resultsFile)
		if err != nil {
			return false, err
		}
		defer f.Close()
		jsonLogger = resultlog.NewJSONLogger(f, framework.LoggerWithPrefix(mainDebugLogger, "[results] "))
		testLogger = append(testLogger, jsonLogger)
		fmt.Printf("Writing results of run %s to %s\n", jsonLogger.RunID(), params.resultsFile)
	}

	eventsEnabled := !params.noEvents
	if eventsEnabled && !h.TestServiceHasCapability(servicedef.CapabilityEvents) {
		fmt.Println("Test service does not support events; event steps will be skipped")
		eventsEnabled = false
	}
	env := uiatest.Environment{
		Provider:      session,
		TestLogger:    testLogger,
		KnownIssues:   store,
		Filter:        params.filters.AsFilter,
		ReproCommand:  params.reproCommand(os.Args[0]),
		EventsEnabled: eventsEnabled,
		Timing:        params.timing(),
	}
	if h.TestServiceHasCapability(servicedef.CapabilityInput) {
		env.Input = session
	}
	if params.debugAll {
		env.DebugLogger = mainDebugLogger
	}
	dispatcher := uiatest.NewDispatcher(registry, env)

	var interrupted atomic.Bool
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			fmt.Fprintln(os.Stderr, "Interrupted; stopping after the current test")
			interrupted.Store(true)
			dispatcher.SetCancelRun(true)
		}
	}()

	fmt.Println()
	params.filters.Describe(os.Stdout)

	results, err := runSelected(dispatcher, registry, params, session.Target(), &interrupted)
	if err != nil {
		return false, err
	}

	fmt.Println()
	PrintResults(os.Stdout, results)

	if jsonLogger != nil {
		if err := jsonLogger.Err(); err != nil {
			return false, fmt.Errorf("results file %s is incomplete: %w", params.resultsFile, err)
		}
	}
	if err := store.Save(); err != nil {
		return false, fmt.Errorf("could not save known issues: %w", err)
	}
	if repros := store.Repros(); params.knownIssuesFile != "" && len(repros) > 0 {
		fmt.Printf("%d failures are recorded in %s\n", len(repros), params.knownIssuesFile)
	}
	return results.OK(), nil
}

func openKnownIssues(path string) (*knownissues.Store, error) {
	if path == "" {
		return knownissues.New()
	}
	return knownissues.Load(path)
}

func runSelected(
	dispatcher *uiatest.Dispatcher,
	registry *uiatest.Registry,
	params commandParams,
	target uia.Element,
	interrupted *atomic.Bool,
) (uiatest.Results, error) {
	var results uiatest.Results

	if params.test != "" || params.scenario != "" {
		var result uiatest.TestResult
		var err error
		if params.scenario != "" {
			fmt.Printf("Running scenario %s/%s\n", params.suites[0], params.scenario)
			result, err = dispatcher.RunScenario(params.suites[0], params.scenario, target, params.args)
		} else {
			fmt.Printf("Running test %s/%s\n", params.suites[0], params.test)
			result, err = dispatcher.RunOne(params.suites[0], params.test, target, params.args)
		}
		if err != nil {
			return results, err
		}
		results.Tests = append(results.Tests, result)
		if !result.Passed() {
			results.Failures = append(results.Failures, result)
		}
		return results, nil
	}

	suites := []string(params.suites)
	if len(suites) == 0 {
		suites = registry.Suites()
	}
	for _, suite := range suites {
		if interrupted.Load() {
			break
		}
		fmt.Printf("Running test suite %s (%s, %s)\n", suite, params.priority, params.category)
		r, err := dispatcher.RunSuite(suite, params.priority, params.category, target)
		if err != nil {
			return results, err
		}
		results.Tests = append(results.Tests, r.Tests...)
		results.Failures = append(results.Failures, r.Failures...)
		results.Skipped = append(results.Skipped, r.Skipped...)
	}
	return results, nil
}
