// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"bufio"
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"
)

// TestRunReportsChangedRegister is Property 5: Run emits one PRF:: line
// per region execution for every watched register whose value differs
// between the begin and end stop. regionEnd is called one stack frame
// deeper than regionBegin (through regionMiddle), so rsp is guaranteed
// to differ on every iteration regardless of the compiler's chosen
// frame sizes.
func TestRunReportsChangedRegister(t *testing.T) {
	exe := fixtureExecutable(t)

	spec := RegionSpec{
		BeginAddr: uint64(reflect.ValueOf(regionBegin).Pointer()),
		EndAddr:   uint64(reflect.ValueOf(regionEnd).Pointer()),
		Vars:      []VarReg{{Var: "sp", Reg: "rsp"}},
	}

	os.Setenv(fixtureEnvVar, "1")
	defer os.Unsetenv(fixtureEnvVar)

	var out bytes.Buffer
	if err := Run(spec, exe, nil, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := nonEmptyLines(out.String())
	if len(lines) != 3 {
		t.Fatalf("got %d PRF:: lines, want 3\noutput:\n%s", len(lines), out.String())
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "PRF:: sp: ") {
			t.Errorf("unexpected line: %q", line)
		}
	}
}

// TestRunRejectsPairingViolation is the pairing-violation edge case: if
// the caller supplies BeginAddr/EndAddr swapped from the order the
// tracee actually executes them in, Run must fail fatally rather than
// silently resynchronizing.
func TestRunRejectsPairingViolation(t *testing.T) {
	exe := fixtureExecutable(t)

	spec := RegionSpec{
		BeginAddr: uint64(reflect.ValueOf(regionEnd).Pointer()),
		EndAddr:   uint64(reflect.ValueOf(regionBegin).Pointer()),
		Vars:      []VarReg{{Var: "sp", Reg: "rsp"}},
	}

	os.Setenv(fixtureEnvVar, "1")
	defer os.Unsetenv(fixtureEnvVar)

	var out bytes.Buffer
	err := Run(spec, exe, nil, &out, nil)
	if err == nil {
		t.Fatal("Run succeeded, want a pairing violation error")
	}
	if !strings.Contains(err.Error(), "pairing violation") {
		t.Errorf("error = %v, want a pairing violation", err)
	}
}

func nonEmptyLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	return lines
}
