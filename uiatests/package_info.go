// Package uiatests contains the conformance tests themselves: one suite per control pattern,
// plus scenario suites that drive the application through several elements.
//
// The engine that registers, runs and triages them is in framework/uiatest; test bodies only
// use the step operations on *uiatest.T and the pattern wrappers in package uia.
package uiatests
