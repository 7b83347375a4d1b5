// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is a multi-call binary with the ax99100 command and daemon; it runs
// the command named by its program name or first argument.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/platinasystems/ax99100/cmd"
	"github.com/platinasystems/ax99100/cmd/ax99100"
	"github.com/platinasystems/ax99100/cmd/ax99100d"
)

const Name = "goes-ax99100"

var Exit = os.Exit

func Goes() cmd.ByName {
	return cmd.New(ax99100.Command{}, &ax99100d.Command{})
}

func main() {
	g := Goes()
	args := os.Args
	if _, found := g[filepath.Base(args[0])]; found {
		args[0] = filepath.Base(args[0])
	} else {
		args = args[1:]
	}
	if len(args) == 0 || args[0] == "apropos" || args[0] == "-help" {
		fmt.Fprintln(os.Stderr, "usage:", Name, "COMMAND [ARGS]...")
		g.Apropos(os.Stderr)
		return
	}
	if c, found := g[args[0]]; found && cmd.WhatKind(c).Is(cmd.Daemon) {
		if closer, ok := c.(cmd.Closer); ok {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
			go func() {
				<-sig
				closer.Close()
			}()
		}
	}
	if err := g.Main(args...); err != nil {
		fmt.Fprintln(os.Stderr, args[0]+":", err)
		Exit(1)
	}
}
