// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package status

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumbStatusIsOneLinePerUpdate(t *testing.T) {
	var buf bytes.Buffer
	r := &dumb{w: &buf}
	r.Status("waiting for begin_addr=0x1000")
	r.Status("waiting for end_addr=0x1010")

	got := buf.String()
	want := "waiting for begin_addr=0x1000\nwaiting for end_addr=0x1010\n"
	if got != want {
		t.Errorf("dumb.Status output = %q, want %q", got, want)
	}
}

func TestDumbWritePassesThrough(t *testing.T) {
	var buf bytes.Buffer
	r := &dumb{w: &buf}
	if _, err := r.Write([]byte("PRF:: x: 1->2\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "PRF:: x: 1->2\n" {
		t.Errorf("dumb.Write output = %q", got)
	}
}

func TestVT100ClearsLineBeforeStatusAndWrite(t *testing.T) {
	var buf bytes.Buffer
	r := &vt100{w: &buf}

	r.Status("waiting for begin_addr=0x1000")
	if !strings.HasPrefix(buf.String(), resetLine) {
		t.Errorf("Status output %q does not start with the reset sequence", buf.String())
	}

	buf.Reset()
	if _, err := r.Write([]byte("PRF:: x: 1->2\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, resetLine) {
		t.Errorf("Write output %q does not start with the reset sequence", got)
	}
	if !strings.HasSuffix(got, "PRF:: x: 1->2\n") {
		t.Errorf("Write output %q does not end with the payload", got)
	}
}
