// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGoes(t *testing.T) {
	g := Goes()
	var buf bytes.Buffer
	g.Apropos(&buf)
	for _, s := range []string{"ax99100 ", "ax99100d ", "(daemon)"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("missing %q in %q", s, buf.String())
		}
	}
	if err := g.Main("ax99100", "0.80.0"); err == nil {
		t.Error("invalid address: no error")
	}
}
