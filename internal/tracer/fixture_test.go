// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"os"
	"testing"
)

// fixtureEnvVar, when set in the environment, makes this test binary
// run runSelfExecFixture instead of the normal `go test` main. The
// integration tests below re-exec the test binary itself as a tracee
// with this variable set, then plant breakpoints on regionBegin and
// regionEnd directly — relying on Go's default non-PIE linking on
// linux/amd64, under which the child loads its text segment at the
// same fixed address the parent already took with reflect.
const fixtureEnvVar = "REGIONTRACE_SELFEXEC_FIXTURE"

var fixtureCounter uint64

// regionBegin and regionEnd bracket the fake region the tests below
// watch. Neither may be inlined: the tests take their addresses with
// reflect.ValueOf(fn).Pointer() and plant a breakpoint on the first
// instruction of each.
//
//go:noinline
func regionBegin() {
	fixtureCounter++
}

// regionMiddle calls regionEnd one stack frame deeper than regionBegin
// is ever called from, so the stack pointer is guaranteed to differ
// between a stop at regionBegin and a stop at regionEnd regardless of
// the exact frame sizes the compiler chooses.
//
//go:noinline
func regionMiddle() {
	regionEnd()
}

//go:noinline
func regionEnd() {
	fixtureCounter += 10
}

// runSelfExecFixture is the child-side entry point.
func runSelfExecFixture() {
	for i := 0; i < 3; i++ {
		regionBegin()
		regionMiddle()
	}
	os.Exit(0)
}

func init() {
	if os.Getenv(fixtureEnvVar) != "" {
		runSelfExecFixture()
	}
}

// fixtureExecutable returns the path to the currently running test
// binary, which doubles as the fixture program when re-exec'd with
// fixtureEnvVar set.
func fixtureExecutable(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	return exe
}

// startTestFixture launches the test binary as a tracee with
// fixtureEnvVar set, and registers a cleanup to kill it.
func startTestFixture(t *testing.T) *Tracee {
	t.Helper()
	exe := fixtureExecutable(t)

	os.Setenv(fixtureEnvVar, "1")
	defer os.Unsetenv(fixtureEnvVar)

	tr, err := startTracee(exe, nil)
	if err != nil {
		t.Fatalf("startTracee: %v", err)
	}
	t.Cleanup(func() { tr.cmd.Process.Kill() })
	return tr
}
