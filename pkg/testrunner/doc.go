// SPDX-License-Identifier: MPL-2.0

// Package testrunner prepares a configured application for a test run.
//
// A Plugin loads the application described by a config URI, marks its
// settings module as running under test and provisions a disposable database.
// Go test binaries use it from TestMain:
//
//	func TestMain(m *testing.M) {
//	    loader := pastedeploy.NewLoader(resolver)
//	    os.Exit(testrunner.Main(m, testrunner.New(loader)))
//	}
//
// The plugin is configured from flags (RegisterFlags) or, inside test
// binaries, from the environment variables written by Options.Environ.
package testrunner
