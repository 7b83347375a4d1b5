// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cmd defines the commands of the multi-call binary.
package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/platinasystems/ax99100/lang"
)

type Cmd interface {
	Apropos() lang.Alt
	Main(...string) error
	// String returns the command name.
	String() string
	Usage() string
}

// Closers are daemons and other commands that must be stopped.
type Closer interface {
	Close() error
}

// ByName maps command names to commands.
type ByName map[string]Cmd

func New(cmds ...Cmd) ByName {
	m := make(ByName)
	for _, c := range cmds {
		m[c.String()] = c
	}
	return m
}

// Main runs the named command with the remaining arguments.
func (m ByName) Main(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	c, found := m[args[0]]
	if !found {
		return fmt.Errorf("%s: command not found", args[0])
	}
	return c.Main(args[1:]...)
}

// Apropos writes the name, kind and description of each visible command.
func (m ByName) Apropos(w io.Writer) {
	names := make([]string, 0, len(m))
	for name, c := range m {
		if !WhatKind(c).Is(Hidden) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c := m[name]
		s := c.Apropos().String()
		if k := WhatKind(c); k.Is(Daemon) {
			s += " (" + k.String() + ")"
		}
		fmt.Fprintf(w, "%-12s %s\n", name, s)
	}
}
