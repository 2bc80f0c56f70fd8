// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

// A Tracee is the engine's handle on the traced child process. Its
// lifetime ends when the child exits; after that its breakpoint
// bookkeeping is meaningless.
type Tracee struct {
	Pid int

	cmd *exec.Cmd

	// breakpoints holds the saved original byte for every address
	// this engine has ever installed a breakpoint at, keyed by
	// address. Entries persist across install/uninstall so a
	// re-install always restores the byte that was there before
	// this engine ever touched the tracee, never a byte it wrote
	// itself.
	breakpoints map[uint64]byte
}

// startTracee launches target with the given argv under ptrace and
// waits for the automatic stop ptrace delivers right after exec, the
// earliest point at which the target's text is mapped and safe to
// poke.
//
// The calling goroutine must already be locked to its OS thread
// (runtime.LockOSThread): ptrace is thread-directed on Linux, and
// every later call against this Tracee must come from the same
// thread that attached to it.
func startTracee(target string, args []string) (*Tracee, error) {
	cmd := exec.Command(target, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return nil, wrap("starting target", err)
	}

	var ws unix.WaitStatus
	if _, err := unix.Wait4(cmd.Process.Pid, &ws, 0, nil); err != nil {
		return nil, wrap("wait for initial stop", err)
	}
	if ws.Exited() {
		return nil, fmt.Errorf("target exited with status %d before reaching its first instruction", ws.ExitStatus())
	}

	return &Tracee{
		Pid:         cmd.Process.Pid,
		cmd:         cmd,
		breakpoints: make(map[uint64]byte),
	}, nil
}

// readWord reads the 8-byte word starting at addr from the tracee's
// address space. addr need not be aligned; the engine itself always
// passes the first byte of an instruction, but PtracePeekText handles
// either case.
func (t *Tracee) readWord(addr uint64) (uint64, error) {
	var buf [8]byte
	if _, err := unix.PtracePeekText(t.Pid, uintptr(addr), buf[:]); err != nil {
		return 0, wrap("PtracePeekText", err)
	}
	return leUint64(buf[:]), nil
}

// writeWord writes an 8-byte word at addr in the tracee's address
// space.
func (t *Tracee) writeWord(addr uint64, word uint64) error {
	var buf [8]byte
	lePutUint64(buf[:], word)
	if _, err := unix.PtracePokeText(t.Pid, uintptr(addr), buf[:]); err != nil {
		return wrap("PtracePokeText", err)
	}
	return nil
}

// replaceByte overwrites the low byte of the word at addr with
// newByte, leaving the other seven bytes of that word untouched, and
// returns the byte that was there before. The clear mask covers
// exactly the low 8 bits of a 64-bit word: a 32-bit mask here would
// corrupt the upper half of the word, which is the bug this engine
// must not repeat (spec's text-poke clear mask note).
func (t *Tracee) replaceByte(addr uint64, newByte byte) (byte, error) {
	word, err := t.readWord(addr)
	if err != nil {
		return 0, err
	}
	saved := byte(word)
	const clearLowByte = ^uint64(0xFF)
	word = (word & clearLowByte) | uint64(newByte)
	if err := t.writeWord(addr, word); err != nil {
		return 0, err
	}
	return saved, nil
}

func leUint64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func lePutUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

// lockOSThreadForTrace locks the calling goroutine to its current OS
// thread. Run calls this once, before forking, and never
// unlocks: the goroutine running the control loop is dedicated to
// this one tracee for the engine's whole lifetime, matching the way
// every ptrace caller on Linux must stay on one thread.
func lockOSThreadForTrace() {
	runtime.LockOSThread()
}
