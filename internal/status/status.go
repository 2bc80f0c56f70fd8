// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package status implements the optional live status line the engine
// can show while it waits on a long-running or rarely-hit region. A
// Reporter doubles as the io.Writer the engine's own PRF:: lines are
// sent through, so the status line is always cleared before real
// output lands on the terminal instead of the two interleaving.
package status

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/ssh/terminal"
)

// New returns a Reporter appropriate for out: a VT100 reporter with a
// single overwritten status line when out is a terminal and the TERM
// environment variable is set to something other than "dumb", and a
// plain line-per-update reporter otherwise. This mirrors
// stress2/reporter.go's NewStdoutReporter selection in this
// repository's existing tooling.
func New(out *os.File) Reporter {
	if os.Getenv("TERM") == "" || os.Getenv("TERM") == "dumb" || !terminal.IsTerminal(int(out.Fd())) {
		return &dumb{w: out}
	}
	return &vt100{w: out}
}

// A Reporter receives status updates from the tracer engine and also
// serves as the engine's output writer, so PRF:: lines always clear
// any pending status line first. Status must be safe to call
// repeatedly from the engine's single control goroutine; neither
// method needs to be safe for concurrent callers.
type Reporter interface {
	io.Writer
	Status(string)
}

// dumb is used when out is not a terminal: no escape codes, one line
// per status update, same as stress2/reporter.go's ReporterDumb.
type dumb struct {
	w io.Writer
}

func (d *dumb) Status(s string) {
	fmt.Fprintf(d.w, "%s\n", s)
}

func (d *dumb) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

// VT100 control sequence for clearing and returning to the start of
// the current line, the same sequence stress2/reporter.go uses for
// its status line.
const resetLine = "\r\x1b[2K"

// vt100 keeps one status line alive at the bottom of the terminal,
// clearing and rewriting it on every update instead of scrolling the
// terminal with one line per region exit, and clearing it before any
// real output (a PRF:: line) is written.
type vt100 struct {
	w  io.Writer
	mu sync.Mutex
}

func (v *vt100) Status(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "%s%s", resetLine, s)
}

func (v *vt100) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "%s", resetLine)
	return v.w.Write(p)
}
