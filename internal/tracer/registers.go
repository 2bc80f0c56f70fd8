// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package tracer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// extractor reads one sub-width register value out of a full
// general-purpose register file, zero-extended to 64 bits.
type extractor func(r *unix.PtraceRegs) uint64

// registerTable is the closed set of x86-64 register spellings this
// tracer recognizes. It replaces the if/else cascade of the original
// register lookup with a compile-time table, per the register-decoding
// REDESIGN FLAG: there is no way to add a register name without
// editing this file.
var registerTable = buildRegisterTable()

func buildRegisterTable() map[string]extractor {
	t := map[string]extractor{}

	// rax/rbx/rcx/rdx have a high-byte ("ah" etc.) sub-register in
	// addition to the low byte; the others don't.
	addQuadWithHigh := func(q, d, w, b, h string, get func(r *unix.PtraceRegs) uint64) {
		t[q] = get
		t[d] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFFFFFFFF }
		t[w] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFFFF }
		t[b] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFF }
		t[h] = func(r *unix.PtraceRegs) uint64 { return (get(r) >> 8) & 0xFF }
	}
	addQuad := func(q, d, w, b string, get func(r *unix.PtraceRegs) uint64) {
		t[q] = get
		t[d] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFFFFFFFF }
		t[w] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFFFF }
		t[b] = func(r *unix.PtraceRegs) uint64 { return get(r) & 0xFF }
	}

	addQuadWithHigh("rax", "eax", "ax", "al", "ah", func(r *unix.PtraceRegs) uint64 { return r.Rax })
	addQuadWithHigh("rbx", "ebx", "bx", "bl", "bh", func(r *unix.PtraceRegs) uint64 { return r.Rbx })
	addQuadWithHigh("rcx", "ecx", "cx", "cl", "ch", func(r *unix.PtraceRegs) uint64 { return r.Rcx })
	addQuadWithHigh("rdx", "edx", "dx", "dl", "dh", func(r *unix.PtraceRegs) uint64 { return r.Rdx })

	addQuad("rsi", "esi", "si", "sil", func(r *unix.PtraceRegs) uint64 { return r.Rsi })
	addQuad("rdi", "edi", "di", "dil", func(r *unix.PtraceRegs) uint64 { return r.Rdi })
	addQuad("rbp", "ebp", "bp", "bpl", func(r *unix.PtraceRegs) uint64 { return r.Rbp })
	addQuad("rsp", "esp", "sp", "spl", func(r *unix.PtraceRegs) uint64 { return r.Rsp })

	addQuad("r8", "r8d", "r8w", "r8b", func(r *unix.PtraceRegs) uint64 { return r.R8 })
	addQuad("r9", "r9d", "r9w", "r9b", func(r *unix.PtraceRegs) uint64 { return r.R9 })
	addQuad("r10", "r10d", "r10w", "r10b", func(r *unix.PtraceRegs) uint64 { return r.R10 })
	addQuad("r11", "r11d", "r11w", "r11b", func(r *unix.PtraceRegs) uint64 { return r.R11 })
	addQuad("r12", "r12d", "r12w", "r12b", func(r *unix.PtraceRegs) uint64 { return r.R12 })
	addQuad("r13", "r13d", "r13w", "r13b", func(r *unix.PtraceRegs) uint64 { return r.R13 })
	addQuad("r14", "r14d", "r14w", "r14b", func(r *unix.PtraceRegs) uint64 { return r.R14 })
	addQuad("r15", "r15d", "r15w", "r15b", func(r *unix.PtraceRegs) uint64 { return r.R15 })

	return t
}

// ValidRegister reports whether name is a recognized register
// spelling. internal/varmap uses this to reject unrecognized
// registers at startup, before the tracee is ever launched (Property
// 6).
func ValidRegister(name string) bool {
	_, ok := registerTable[name]
	return ok
}

// decodeRegister extracts the zero-extended value of the named
// register from a register-file snapshot. It returns an error — never
// panics or silently returns zero — for a name outside registerTable,
// since that is an input error distinct from a platform failure.
func decodeRegister(regs *unix.PtraceRegs, name string) (uint64, error) {
	get, ok := registerTable[name]
	if !ok {
		return 0, fmt.Errorf("unrecognized register %q", name)
	}
	return get(regs), nil
}

// snapshot reads the tracee's register file once and decodes every
// variable in vars into a Snapshot. The tracee must be stopped; a
// snapshot does not itself stop or lock anything, it just reads the
// register file that ptrace already froze.
func (t *Tracee) snapshot(vars []VarReg) (Snapshot, error) {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(t.Pid, &regs); err != nil {
		return nil, wrap("PtraceGetRegs", err)
	}
	snap := make(Snapshot, len(vars))
	for _, vr := range vars {
		v, err := decodeRegister(&regs, vr.Reg)
		if err != nil {
			return nil, err
		}
		snap[vr.Var] = v
	}
	return snap, nil
}
