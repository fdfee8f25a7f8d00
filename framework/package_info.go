// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of tests. The base package contains shared types
// such as Logger; other components are in the subpackages harness, uiatest, knownissues
// and resultlog.
//
// The general model is:
//
// 1. The test harness communicates with a test service, which hosts the accessibility tree
// of the application under test. The harness creates a session with it (POST) and sends it
// commands that query or manipulate the tree.
//
// 2. The test harness exposes mock endpoints to receive callback requests from the test
// service; this is how asynchronous accessibility events reach us.
//
// 3. The uiatest package is the test engine: a registry of test cases described by static
// metadata, a dispatcher and invocation pipeline that run them against an element, event
// monitors, and the triage logic that decides whether a failure is real, a warning, a
// configuration mismatch, or a known issue.
package framework
