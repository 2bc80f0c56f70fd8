// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command regiontrace reports how a set of x86-64 registers change
// across every execution of a code region in a traced target program.
//
// Usage:
//
//	regiontrace [flags] <begin_addr_hex> <end_addr_hex> <target> [<target_arg>...]
//
// Before the target is launched, regiontrace reads whitespace-separated
// "variable register" pairs from standard input, terminated by the
// sentinel pair "run profile" (unless -vars is given). For every
// execution of the region between begin_addr and end_addr, it prints
// one line per changed variable:
//
//	PRF:: <variable>: <old>-><new>
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/aclements/regiontrace/internal/status"
	"github.com/aclements/regiontrace/internal/tracer"
	"github.com/aclements/regiontrace/internal/varmap"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("regiontrace: ")

	varsFlag := flag.String("vars", "", "`\"var reg var reg ...\"` pairs; if set, standard input is not read")
	statusFlag := flag.Bool("status", false, "show a live status line while waiting on the tracee")
	flag.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, `Usage: %s [flags] <begin_addr_hex> <end_addr_hex> <target> [<target_arg>...]

regiontrace launches target under trace, brackets the code region
between begin_addr and end_addr with software breakpoints, and prints
how the requested registers change across every execution of the
region.

Unless -vars is given, regiontrace reads "variable register" pairs
from standard input before launching target, terminated by the pair
"run profile".

`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 3 {
		flag.Usage()
		os.Exit(1)
	}

	beginAddr, err := strconv.ParseUint(args[0], 16, 64)
	if err != nil {
		log.Fatalf("invalid begin_addr_hex %q: %v", args[0], err)
	}
	endAddr, err := strconv.ParseUint(args[1], 16, 64)
	if err != nil {
		log.Fatalf("invalid end_addr_hex %q: %v", args[1], err)
	}
	target := args[2]
	targetArgs := args[3:]

	var vars []tracer.VarReg
	if *varsFlag != "" {
		vars, err = varmap.ParseVars(*varsFlag)
	} else {
		vars, err = varmap.ReadPairs(os.Stdin)
	}
	if err != nil {
		log.Fatal(err)
	}

	spec := tracer.RegionSpec{BeginAddr: beginAddr, EndAddr: endAddr, Vars: vars}

	var out io.Writer = os.Stdout
	var reporter tracer.StatusReporter
	if *statusFlag {
		r := status.New(os.Stdout)
		out = r
		reporter = r
	}

	if err := tracer.Run(spec, target, targetArgs, out, reporter); err != nil {
		log.Fatal(err)
	}
}
