// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cmd

import "strings"

type Kind uint8

const (
	// Daemons run until closed.
	Daemon Kind = 1 << iota
	// Hidden commands aren't listed by apropos.
	Hidden
)

var kindNames = [...]string{"daemon", "hidden"}

type kinder interface {
	Kind() Kind
}

// WhatKind returns the command's Kind or zero if it has none.
func WhatKind(c Cmd) Kind {
	if k, ok := c.(kinder); ok {
		return k.Kind()
	}
	return 0
}

func (k Kind) Is(x Kind) bool { return k&x == x }

func (k Kind) String() string {
	var names []string
	for i, s := range kindNames {
		if k.Is(1 << uint(i)) {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
