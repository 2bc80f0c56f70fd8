// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"golang.org/x/sys/unix"
)

// int3 is the one-byte x86 breakpoint trap instruction.
const int3 = 0xCC

// install writes int3 over the first byte at addr and remembers the
// byte that was there, so a later uninstall or re-arm restores it
// exactly. Only the first install at an address records the saved
// byte: a second install (for example when the begin and end
// addresses coincide) keeps the original rather than saving 0xCC.
func (t *Tracee) install(addr uint64) error {
	saved, err := t.replaceByte(addr, int3)
	if err != nil {
		return err
	}
	if _, ok := t.breakpoints[addr]; !ok {
		t.breakpoints[addr] = saved
	}
	return nil
}

// rearm reinstalls int3 at addr using the byte already saved by a
// previous install, without touching the saved-byte bookkeeping.
func (t *Tracee) rearm(addr uint64) error {
	_, err := t.replaceByte(addr, int3)
	return err
}

// uninstall restores the original byte at addr.
func (t *Tracee) uninstall(addr uint64) error {
	saved, ok := t.breakpoints[addr]
	if !ok {
		return nil
	}
	_, err := t.replaceByte(addr, saved)
	return err
}

// stepPastBreakpoint runs the four-step protocol that lets the tracee
// execute the original instruction at addr without losing the
// breakpoint: restore the original byte, rewind the instruction
// pointer onto it, single-step past it and wait for that step to
// finish, then re-arm the trap. The caller is responsible for the
// continue that follows.
func (t *Tracee) stepPastBreakpoint(addr uint64) error {
	if err := t.uninstall(addr); err != nil {
		return err
	}

	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(t.Pid, &regs); err != nil {
		return wrap("PtraceGetRegs", err)
	}
	regs.Rip = addr
	if err := unix.PtraceSetRegs(t.Pid, &regs); err != nil {
		return wrap("PtraceSetRegs", err)
	}

	if err := unix.PtraceSingleStep(t.Pid); err != nil {
		return wrap("PtraceSingleStep", err)
	}
	var ws unix.WaitStatus
	if _, err := unix.Wait4(t.Pid, &ws, 0, nil); err != nil {
		return wrap("wait for single-step", err)
	}
	if ws.Exited() {
		// The single instruction at the breakpoint was the
		// tracee's last: there is nothing left to re-arm.
		return nil
	}

	return t.rearm(addr)
}
