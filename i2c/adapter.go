// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2c drives the SMBus master of the AX99100 PCIe bridge.
//
// The bridge provides a functionally limited smbus-interface made mostly
// for EEPROM access: byte-data read, byte-data write and word-data write.
// That is enough for most smbus sensors, i2c muxes and GPIO expanders.
//
// A transaction writes the clock/status/control register, then the
// command register which starts the hardware, then polls status at most
// Config.Iterations times. There is no interrupt path.
//
// An Adapter is not re-entrant; callers must serialize Execute and Do.
package i2c

import (
	"fmt"
	"time"

	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/i2c"
	"github.com/platinasystems/log"
)

const Name = "ax99100_i2c"

// Functionality is the fixed capability mask of the adapter; word reads
// and block transfers are not available.
const Functionality = i2c.SMBUS_Read_Byte_Data |
	i2c.SMBUS_Write_Byte_Data |
	i2c.SMBUS_Write_Word_Data

// Class is the kind of devices probed on the adapter.
type Class uint

const (
	ClassHwmon Class = 1 << 0
	ClassSPD   Class = 1 << 7
)

type Speed int

const (
	Speed400KHz Speed = iota
	Speed100KHz
)

func (s Speed) Prescale() Prescale {
	if s == Speed100KHz {
		return Prescale100KHz
	}
	return Prescale400KHz
}

func (s Speed) String() string {
	if s == Speed100KHz {
		return "100KHz"
	}
	return "400KHz"
}

// Config of an Adapter; zero values select defaults.
type Config struct {
	Speed Speed
	// Status checks per transaction, DefaultIterations if zero.
	Iterations int
	// Sleep between checks, DefaultInterval if zero, at most MaxInterval.
	Interval time.Duration
	// Sleep replaces time.Sleep; for simulation.
	Sleep func(time.Duration)
}

type Adapter struct {
	Name  string
	Class Class
	Speed Speed

	w          hw.Window
	timing     ClockControl
	iterations int
	interval   time.Duration
	sleep      func(time.Duration)
}

// New sets the bus prescale once and returns an adapter on the given
// register window. The timing fields found in the clock/status/control
// register are kept as the base of every transaction.
func New(w hw.Window, c Config) *Adapter {
	a := &Adapter{
		Name:       Name,
		Class:      ClassHwmon | ClassSPD,
		Speed:      c.Speed,
		w:          w,
		iterations: c.Iterations,
		interval:   c.Interval,
		sleep:      c.Sleep,
	}
	if a.iterations <= 0 {
		a.iterations = DefaultIterations
	}
	if a.interval <= 0 {
		a.interval = DefaultInterval
	} else if a.interval > MaxInterval {
		a.interval = MaxInterval
	}
	if a.sleep == nil {
		a.sleep = time.Sleep
	}
	a.timing = ClockControl(ClockControlReg.Get(w)).Timing()
	PrescaleReg.Set(w, uint32(a.Speed.Prescale()))
	return a
}

func (a *Adapter) String() string {
	return fmt.Sprintf("%s %s", a.Name, a.Speed)
}

// Functionality returns the SMBus features of the adapter.
func (a *Adapter) Functionality() i2c.FeatureFlag { return Functionality }

// Execute performs one operation and returns the data byte of a read.
func (a *Adapter) Execute(op Operation) (data uint8, err error) {
	cmd, clk, err := Encode(op)
	if err != nil {
		log.Print("warn", a.Name, ": ", op, ": ", err)
		return
	}
	p := poller{
		w:          a.w,
		iterations: a.iterations,
		interval:   a.interval,
		sleep:      a.sleep,
	}
	if err = Classify(p.run(a.timing|clk, cmd)).ToError(); err != nil {
		return
	}
	if op.RW == i2c.Read {
		data = Command(CommandReg.Get(a.w)).Data()
	}
	return
}

// Do is the smbus entry point of the adapter as used by i2c.Bus.Do; the
// byte is in data[0] and a word is little endian in data[0:2].
func (a *Adapter) Do(rw i2c.RW, address, command uint8, size i2c.SMBusSize,
	data *i2c.SMBusData) (err error) {
	var zero i2c.SMBusData
	if data == nil {
		data = &zero
	}
	op := Operation{
		Address: address,
		RW:      rw,
		Command: command,
		Size:    size,
		Data:    uint16(data[0]) | uint16(data[1])<<8,
	}
	if size == Byte {
		op.Data &= 0xff
	}
	b, err := a.Execute(op)
	if err == nil && rw == i2c.Read {
		data[0] = b
	}
	return
}

// ReadByteData reads a device register.
func (a *Adapter) ReadByteData(address, command uint8) (uint8, error) {
	return a.Execute(Operation{
		Address: address,
		RW:      i2c.Read,
		Command: command,
		Size:    Byte,
	})
}

// WriteByteData writes a device register.
func (a *Adapter) WriteByteData(address, command, v uint8) error {
	_, err := a.Execute(Operation{
		Address: address,
		RW:      i2c.Write,
		Command: command,
		Size:    Byte,
		Data:    uint16(v),
	})
	return err
}

// WriteWordData writes a 16-bit device register.
func (a *Adapter) WriteWordData(address, command uint8, v uint16) error {
	_, err := a.Execute(Operation{
		Address: address,
		RW:      i2c.Write,
		Command: command,
		Size:    Word,
		Data:    v,
	})
	return err
}
