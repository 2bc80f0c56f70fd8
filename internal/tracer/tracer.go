// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tracer implements the region-profiling tracer engine: it
// launches a target program under ptrace, brackets a code region with
// two software breakpoints, and reports how a set of registers change
// across every execution of that region.
//
// This package only supports linux/amd64, the one architecture ptrace
// breakpoints and the x86-64 register decoder below are written for.
package tracer

import (
	"golang.org/x/xerrors"
)

// A VarReg names one register to watch under a user-chosen variable
// name.
type VarReg struct {
	Var string
	Reg string
}

// A RegionSpec describes the region to profile: the address of its
// first instruction, the address of the instruction immediately after
// it, and the registers to snapshot at both ends.
//
// RegionSpec is immutable once built; Vars is kept in the order the
// caller supplied it (so -vars and the stdin protocol round-trip), but
// Run always reports changed variables in sorted order regardless.
type RegionSpec struct {
	BeginAddr uint64
	EndAddr   uint64
	Vars      []VarReg
}

// A Snapshot is the value of every variable in a RegionSpec at one
// stop of the tracee.
type Snapshot map[string]uint64

// A StatusReporter receives a short human-readable status string each
// time the engine is about to block waiting on the tracee. It never
// sees the engine's own PRF:: output; internal/status implements this
// for a live progress line, but it is entirely optional.
type StatusReporter interface {
	Status(string)
}

type noopReporter struct{}

func (noopReporter) Status(string) {}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf("%s: %w", op, err)
}
