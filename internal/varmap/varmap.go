// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package varmap builds the variable-name-to-register mapping the
// tracer engine watches, either from the interactive stdin protocol
// or from a single -vars flag string. Both are thin collaborators
// around internal/tracer: this package's whole job is turning text
// into a []tracer.VarReg and rejecting unrecognized registers before
// the target is ever launched.
package varmap

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kballard/go-shellquote"

	"github.com/aclements/regiontrace/internal/tracer"
)

// ReadPairs reads whitespace-separated "variable register" pairs from
// r until it sees the sentinel pair "run profile" (both tokens must
// match literally; "run rax" does NOT terminate the loop, which is
// surprising but matches this tool's original behavior). The sentinel
// itself is never added to the result, and any earlier pair whose
// variable happened to be named "run" is discarded along with it.
//
// A later pair with a variable name already seen overwrites the
// earlier one, following plain map-insertion semantics; ReadPairs
// does not warn about this, though a caller building a UI around it
// may want to.
func ReadPairs(r io.Reader) ([]tracer.VarReg, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	order := []string{}
	regs := map[string]string{}

	for {
		variable, ok := nextToken(sc)
		if !ok {
			return nil, fmt.Errorf("unexpected end of input reading variable name")
		}
		register, ok := nextToken(sc)
		if !ok {
			return nil, fmt.Errorf("unexpected end of input reading register name for %q", variable)
		}

		if variable == "run" && register == "profile" {
			break
		}

		if !tracer.ValidRegister(register) {
			return nil, fmt.Errorf("unrecognized register %q for variable %q", register, variable)
		}

		if _, seen := regs[variable]; !seen {
			order = append(order, variable)
		}
		regs[variable] = register
	}
	delete(regs, "run")

	pairs := make([]tracer.VarReg, 0, len(order))
	for _, name := range order {
		if reg, ok := regs[name]; ok {
			pairs = append(pairs, tracer.VarReg{Var: name, Reg: reg})
		}
	}
	return pairs, nil
}

func nextToken(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}

// ParseVars splits s the way a shell would (so a register or variable
// name can be quoted) into "variable register" pairs, without reading
// standard input and without the "run profile" sentinel. It backs the
// -vars flag described in SPEC_FULL.md §6.1.
func ParseVars(s string) ([]tracer.VarReg, error) {
	fields, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parsing -vars: %w", err)
	}
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("-vars must list variable/register pairs, got %d tokens", len(fields))
	}

	order := []string{}
	regs := map[string]string{}
	for i := 0; i < len(fields); i += 2 {
		variable, register := fields[i], fields[i+1]
		if !tracer.ValidRegister(register) {
			return nil, fmt.Errorf("unrecognized register %q for variable %q", register, variable)
		}
		if _, seen := regs[variable]; !seen {
			order = append(order, variable)
		}
		regs[variable] = register
	}

	pairs := make([]tracer.VarReg, 0, len(order))
	for _, name := range order {
		pairs = append(pairs, tracer.VarReg{Var: name, Reg: regs[name]})
	}
	return pairs, nil
}
