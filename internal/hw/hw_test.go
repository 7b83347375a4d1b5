// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hw

import "testing"

func TestMem(t *testing.T) {
	m := make(Mem, 0x100)
	r := Reg32(0xc8)
	r.Set(m, 0xdeadbeef)
	if got := r.Get(m); got != 0xdeadbeef {
		t.Fatalf("got 0x%x", got)
	}
	if m[0xc8] != 0xef {
		t.Fatalf("byte 0 0x%x not little endian", m[0xc8])
	}
	b := Reg8(0x2)
	b.Set(m, 0x5a)
	if got := b.Get(m); got != 0x5a {
		t.Fatalf("got 0x%x", got)
	}
}

func TestMemRange(t *testing.T) {
	for _, o := range []uint{0xfe, 0x100, 0x3} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("0x%x: expected panic", o)
				}
			}()
			make(Mem, 0x100).Read32(o)
		}()
	}
}

func TestSim(t *testing.T) {
	s := NewSim()
	s.Poke(0xd0, 1<<30)
	s.OnRead[0xd0] = func(n int, v uint32) uint32 {
		if n >= 2 {
			return 0
		}
		return v
	}
	s.Write32(0xc8, 7)
	for i, want := range []uint32{1 << 30, 1 << 30, 0, 0} {
		if got := s.Read32(0xd0); got != want {
			t.Errorf("read %d: got 0x%x want 0x%x", i, got, want)
		}
	}
	if n := s.Reads(0xd0); n != 4 {
		t.Errorf("reads %d", n)
	}
	w := s.Writes()
	if len(w) != 1 || w[0].Offset != 0xc8 || w[0].Value != 7 {
		t.Fatalf("writes %v", w)
	}
	if s := w[0].String(); s != "wr32 0x0c8 0x00000007" {
		t.Errorf("%q", s)
	}
	s.Reset()
	if len(s.Log()) != 0 || s.Reads(0xd0) != 0 {
		t.Error("reset kept log")
	}
	if s.Peek(0xc8) != 7 {
		t.Error("reset lost value")
	}
}

func TestCheckRegAddr(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	CheckRegAddr("cr", 0xc8, 0xcc)
}
