// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ax99100d

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/ax99100/i2c"
)

// Executer performs one smbus operation; *i2c.Adapter is one.
type Executer interface {
	Execute(i2c.Operation) (uint8, error)
}

type Stats struct {
	Xfers       uint64
	Errors      uint64
	Nack        uint64
	Recovery    uint64
	Unsupported uint64
	Retries     uint64
}

// Bus serializes the operations of one adapter and retries those that
// failed to recover the bus line.
type Bus struct {
	mutex sync.Mutex
	Executer
	Retries int
	Min     time.Duration
	Max     time.Duration
	sleep   func(time.Duration)
	stats   Stats
}

func NewBus(x Executer, retries int) *Bus {
	return &Bus{
		Executer: x,
		Retries:  retries,
		Min:      time.Millisecond,
		Max:      10 * time.Millisecond,
		sleep:    time.Sleep,
	}
}

func (b *Bus) Execute(op i2c.Operation) (data uint8, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	bo := backoff.Backoff{Min: b.Min, Max: b.Max}
	for {
		data, err = b.Executer.Execute(op)
		if !errors.Is(err, i2c.ErrBusRecovery) ||
			int(bo.Attempt()) >= b.Retries {
			break
		}
		b.stats.Retries++
		b.sleep(bo.Duration())
	}
	b.stats.Xfers++
	if err != nil {
		b.stats.Errors++
	}
	switch i2c.StatusOf(err) {
	case i2c.NotResponding:
		b.stats.Nack++
	case i2c.BusRecoveryFailed:
		b.stats.Recovery++
	case i2c.Unsupported:
		b.stats.Unsupported++
	}
	return
}

func (b *Bus) Stats() Stats {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.stats
}

type Request struct {
	Bus int
	Op  i2c.Operation
}

type Reply struct {
	Data   uint8
	Status i2c.Status
}

// Server is the rpc receiver of the daemon.
type Server struct {
	Buses []*Bus
}

func (s *Server) bus(i int) (*Bus, error) {
	if i < 0 || i >= len(s.Buses) {
		return nil, fmt.Errorf("i2c-%d: no such bus", i)
	}
	return s.Buses[i], nil
}

// ReadWrite executes one operation. Engine errors are returned in
// Reply.Status so that clients keep the error kind.
func (s *Server) ReadWrite(req Request, reply *Reply) error {
	b, err := s.bus(req.Bus)
	if err != nil {
		return err
	}
	reply.Data, err = b.Execute(req.Op)
	if reply.Status = i2c.StatusOf(err); reply.Status == i2c.Ok {
		return err
	}
	return nil
}

type StatusReply struct {
	Adapter string
	Stats
}

// Status returns the adapter description and counters of a bus.
func (s *Server) Status(bus int, reply *StatusReply) error {
	b, err := s.bus(bus)
	if err != nil {
		return err
	}
	reply.Adapter = fmt.Sprint(b.Executer)
	reply.Stats = b.Stats()
	return nil
}

// NBuses returns the number of adapters the daemon serves.
func (s *Server) NBuses(_ struct{}, n *int) error {
	*n = len(s.Buses)
	return nil
}
