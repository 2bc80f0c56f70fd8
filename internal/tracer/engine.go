// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/sys/unix"
)

// Run launches target under trace, brackets spec's region with
// breakpoints, and runs the begin/end alternation loop until the
// target exits, writing one "PRF:: name: old->new" line per changed
// variable to out for every region exit. It returns nil on a clean
// tracee exit and a non-nil error for any platform failure, input
// error, or pairing violation (§4.4): those are all fatal, per this
// engine's error model, and the caller is expected to log and exit
// nonzero rather than retry.
//
// Run must be called from a goroutine that will not be reused for
// anything else: it locks itself to its OS thread for as long as the
// tracee lives, since ptrace is thread-directed on Linux.
func Run(spec RegionSpec, target string, args []string, out io.Writer, reporter StatusReporter) error {
	if reporter == nil {
		reporter = noopReporter{}
	}

	lockOSThreadForTrace()

	tr, err := startTracee(target, args)
	if err != nil {
		return err
	}

	if err := tr.install(spec.BeginAddr); err != nil {
		return err
	}
	if err := tr.install(spec.EndAddr); err != nil {
		return err
	}

	if err := unix.PtraceCont(tr.Pid, 0); err != nil {
		return wrap("PtraceCont", err)
	}

	for {
		reporter.Status(fmt.Sprintf("waiting for begin_addr=%#x", spec.BeginAddr))
		exited, err := tr.waitForStopAt(spec.BeginAddr)
		if err != nil {
			return err
		}
		if exited {
			return nil
		}

		begin, err := tr.snapshot(spec.Vars)
		if err != nil {
			return err
		}

		if err := tr.stepPastBreakpoint(spec.BeginAddr); err != nil {
			return err
		}
		if err := unix.PtraceCont(tr.Pid, 0); err != nil {
			return wrap("PtraceCont", err)
		}

		reporter.Status(fmt.Sprintf("waiting for end_addr=%#x", spec.EndAddr))
		exited, err = tr.waitForStopAt(spec.EndAddr)
		if err != nil {
			return err
		}
		if exited {
			return nil
		}

		end, err := tr.snapshot(spec.Vars)
		if err != nil {
			return err
		}
		writeDiff(out, begin, end)

		if err := tr.stepPastBreakpoint(spec.EndAddr); err != nil {
			return err
		}
		if err := unix.PtraceCont(tr.Pid, 0); err != nil {
			return wrap("PtraceCont", err)
		}
	}
}

// waitForStopAt waits for the tracee to stop at want, forwarding any
// signal that is not the breakpoint trap the engine is looking for
// (spec.md §9 point 1) and retrying. It reports exited=true if the
// tracee exits before reaching want. A trap at an address other than
// want is a pairing violation (spec.md §9 point 5) and is fatal: this
// engine only understands regions entered and exited in strict
// alternation.
func (t *Tracee) waitForStopAt(want uint64) (exited bool, err error) {
	for {
		var ws unix.WaitStatus
		if _, err := unix.Wait4(t.Pid, &ws, 0, nil); err != nil {
			return false, wrap("wait", err)
		}
		if ws.Exited() {
			return true, nil
		}

		if ws.StopSignal() != unix.SIGTRAP {
			// Not a breakpoint trap: forward the signal and
			// keep waiting for the expected stop.
			if err := unix.PtraceCont(t.Pid, int(ws.StopSignal())); err != nil {
				return false, wrap("forwarding signal", err)
			}
			continue
		}

		var regs unix.PtraceRegs
		if err := unix.PtraceGetRegs(t.Pid, &regs); err != nil {
			return false, wrap("PtraceGetRegs", err)
		}
		// int3 is one byte; the trap leaves Rip one past it.
		hitAddr := regs.Rip - 1
		if hitAddr == want {
			return false, nil
		}
		return false, fmt.Errorf("pairing violation: expected a stop at %#x, tracee stopped at %#x instead", want, hitAddr)
	}
}

// writeDiff writes one PRF:: line for every variable whose value
// differs between begin and end, sorted by variable name so output is
// deterministic regardless of map iteration order.
func writeDiff(out io.Writer, begin, end Snapshot) {
	names := make([]string, 0, len(begin))
	for name := range begin {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		oldVal, newVal := begin[name], end[name]
		if oldVal != newVal {
			fmt.Fprintf(out, "PRF:: %s: %d->%d\n", name, int64(oldVal), int64(newVal))
		}
	}
}
