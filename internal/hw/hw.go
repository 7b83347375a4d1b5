// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hw provides memory mapped register read/write.
package hw

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// A Window is a 32-bit register block at a fixed base.
type Window interface {
	Read32(offset uint) uint32
	Write32(offset uint, v uint32)
}

// A ByteWindow is an 8-bit register block at a fixed base.
type ByteWindow interface {
	Read8(offset uint) uint8
	Write8(offset uint, v uint8)
}

func CheckRegAddr(name string, got, want uint) {
	if got != want {
		panic(fmt.Errorf("%s got 0x%x != want 0x%x", name, got, want))
	}
}

// Mem is a register window backed by a mapped PCI resource.
type Mem []byte

func (m Mem) check(name string, offset, width uint) {
	if offset%width != 0 || offset+width > uint(len(m)) {
		panic(fmt.Errorf("%s: offset 0x%x out of range [0, 0x%x)",
			name, offset, len(m)))
	}
}

func (m Mem) Read32(offset uint) uint32 {
	m.check("read32", offset, 4)
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&m[offset])))
}

func (m Mem) Write32(offset uint, v uint32) {
	m.check("write32", offset, 4)
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&m[offset])), v)
}

func (m Mem) Read8(offset uint) uint8 {
	m.check("read8", offset, 1)
	return *(*uint8)(unsafe.Pointer(&m[offset]))
}

func (m Mem) Write8(offset uint, v uint8) {
	m.check("write8", offset, 1)
	*(*uint8)(unsafe.Pointer(&m[offset])) = v
}

// Generic 8/32 bit registers given by byte offset.
type Reg8 uint
type Reg32 uint

func (r Reg8) Offset() uint  { return uint(r) }
func (r Reg32) Offset() uint { return uint(r) }

func (r Reg8) Get(w ByteWindow) uint8    { return w.Read8(uint(r)) }
func (r Reg8) Set(w ByteWindow, x uint8) { w.Write8(uint(r), x) }
func (r Reg32) Get(w Window) uint32      { return w.Read32(uint(r)) }
func (r Reg32) Set(w Window, x uint32)   { w.Write32(uint(r), x) }
func (r Reg8) String() string            { return fmt.Sprintf("0x%03x", uint(r)) }
func (r Reg32) String() string           { return fmt.Sprintf("0x%03x", uint(r)) }
