// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package regs describes register tables for display.
package regs

import (
	"fmt"
	"io"

	"github.com/platinasystems/ax99100/internal/hw"
)

type Reg struct {
	Name   string
	Offset uint
	// Width in bytes.
	Width int
	Doc   string
}

func New8(name string, r hw.Reg8, doc string) Reg {
	return Reg{Name: name, Offset: r.Offset(), Width: 1, Doc: doc}
}

func New32(name string, r hw.Reg32, doc string) Reg {
	return Reg{Name: name, Offset: r.Offset(), Width: 4, Doc: doc}
}

type Table struct {
	Name string
	// Where the offsets are relative to.
	Base string
	Regs []Reg
}

func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "%s (%s):\n", t.Name, t.Base)
	total += int64(n)
	for _, r := range t.Regs {
		if err != nil {
			break
		}
		n, err = fmt.Fprintf(w, "    0x%03x %-2d %-10s %s\n",
			r.Offset, 8*r.Width, r.Name, r.Doc)
		total += int64(n)
	}
	return total, err
}
