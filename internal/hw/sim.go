// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hw

import (
	"fmt"
	"sync"
)

// Access is one logged register access of a Sim.
type Access struct {
	Write  bool
	Width  uint
	Offset uint
	Value  uint32
}

func (a Access) String() string {
	op := "rd"
	if a.Write {
		op = "wr"
	}
	return fmt.Sprintf("%s%d 0x%03x 0x%08x", op, 8*a.Width, a.Offset, a.Value)
}

// Sim is a software register model that stands in for a mapped window.
// A read returns the last value written or poked unless OnRead has a hook
// for the offset.
type Sim struct {
	mutex sync.Mutex
	regs  map[uint]uint32
	reads map[uint]int
	log   []Access

	// OnRead hooks are given the count of earlier reads of the offset and
	// the stored value and return what the read observes.
	OnRead map[uint]func(n int, v uint32) uint32
}

func NewSim() *Sim {
	return &Sim{
		regs:   make(map[uint]uint32),
		reads:  make(map[uint]int),
		OnRead: make(map[uint]func(int, uint32) uint32),
	}
}

func (s *Sim) read(offset, width uint) uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v := s.regs[offset]
	if f, found := s.OnRead[offset]; found {
		v = f(s.reads[offset], v)
	}
	s.reads[offset]++
	s.log = append(s.log, Access{Width: width, Offset: offset, Value: v})
	return v
}

func (s *Sim) write(offset, width uint, v uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.regs[offset] = v
	s.log = append(s.log, Access{Write: true, Width: width, Offset: offset,
		Value: v})
}

func (s *Sim) Read32(offset uint) uint32     { return s.read(offset, 4) }
func (s *Sim) Write32(offset uint, v uint32) { s.write(offset, 4, v) }
func (s *Sim) Read8(offset uint) uint8       { return uint8(s.read(offset, 1)) }
func (s *Sim) Write8(offset uint, v uint8)   { s.write(offset, 1, uint32(v)) }

// Poke stores a register value without logging an access.
func (s *Sim) Poke(offset uint, v uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.regs[offset] = v
}

// Peek returns the stored register value without logging an access.
func (s *Sim) Peek(offset uint) uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.regs[offset]
}

// Reads returns the number of reads of the given offset.
func (s *Sim) Reads(offset uint) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reads[offset]
}

// Log returns a copy of all accesses in order.
func (s *Sim) Log() []Access {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Access(nil), s.log...)
}

// Writes returns a copy of the logged writes in order.
func (s *Sim) Writes() (w []Access) {
	for _, a := range s.Log() {
		if a.Write {
			w = append(w, a)
		}
	}
	return
}

// Reset clears the access log and read counts, keeping register values.
func (s *Sim) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.log = s.log[:0]
	s.reads = make(map[uint]int)
}
