// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(linux && amd64)

package tracer

import (
	"fmt"
	"io"
)

// ValidRegister always reports false on unsupported platforms: there is
// no register table to check against.
func ValidRegister(name string) bool {
	return false
}

// Run fails immediately on any platform other than linux/amd64, the
// only one ptrace breakpoints and the x86-64 register decoder are
// written for.
func Run(spec RegionSpec, target string, args []string, out io.Writer, reporter StatusReporter) error {
	return fmt.Errorf("region tracing requires linux/amd64; this binary was built for a different platform")
}
