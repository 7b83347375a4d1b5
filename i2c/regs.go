// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"fmt"

	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/ax99100/internal/regs"
)

// Register offsets from the base of the i2c window (BAR5).
const (
	CommandReg      hw.Reg32 = 0x0c8
	PrescaleReg     hw.Reg32 = 0x0cc
	ClockControlReg hw.Reg32 = 0x0d0
	BusFreeTimeReg  hw.Reg32 = 0x0d4
)

var Registers = regs.Table{
	Name: "i2c",
	Base: "BAR5",
	Regs: []regs.Reg{
		regs.New32("cr", CommandReg, "command/address"),
		regs.New32("sclpr", PrescaleReg, "clock prescale, written once"),
		regs.New32("sclcr", ClockControlReg, "clock/status/control"),
		regs.New32("bftr", BusFreeTimeReg, "bus free time"),
	},
}

// Command is the command/address register.
//
//	[7:0]   data
//	[23:8]  master address, command byte or {command, data low} if packed
//	[24]    master address format
//	[30:25] device address bits [6:1]
//	[31]    1 => write, 0 => read
type Command uint32

const (
	commandDataMask        Command = 0xff
	commandMasterAddrShift         = 8
	commandMasterAddrMask  Command = 0xffff << commandMasterAddrShift
	CommandPacked          Command = 1 << 24
	commandDeviceAddrShift         = 25
	commandDeviceAddrMask  Command = 0x3f << commandDeviceAddrShift
	CommandWrite           Command = 1 << 31
)

func CommandData(x uint8) Command {
	return Command(x) & commandDataMask
}

func CommandMasterAddress(x uint16) Command {
	return Command(x) << commandMasterAddrShift & commandMasterAddrMask
}

// CommandDeviceAddress places the upper six bits of a 7-bit address.
func CommandDeviceAddress(addr uint8) Command {
	return Command(addr>>1) << commandDeviceAddrShift & commandDeviceAddrMask
}

func (c Command) Data() uint8 { return uint8(c & commandDataMask) }

func (c Command) MasterAddress() uint16 {
	return uint16((c & commandMasterAddrMask) >> commandMasterAddrShift)
}

func (c Command) IsPacked() bool { return c&CommandPacked != 0 }
func (c Command) IsWrite() bool  { return c&CommandWrite != 0 }

// DeviceAddress returns address bits [6:1] shifted down.
func (c Command) DeviceAddress() uint8 {
	return uint8((c & commandDeviceAddrMask) >> commandDeviceAddrShift)
}

func (c Command) String() string {
	rw := "read"
	if c.IsWrite() {
		rw = "write"
	}
	packed := ""
	if c.IsPacked() {
		packed = " packed"
	}
	return fmt.Sprintf("{%s dev 0x%02x ma 0x%04x%s data 0x%02x}",
		rw, c.DeviceAddress(), c.MasterAddress(), packed, c.Data())
}

// ClockControl is the clock/status/control register.
//
//	[0]    device address bit 0
//	[8:1]  start bit recovery time, 16ns units
//	[24:9] SCL high count, 16ns units
//	[29]   line held error
//	[30]   receive in progress
//	[31]   not acknowledged
//
// Hardware clears [31:30] when a transaction resolves.
type ClockControl uint32

const (
	ClockAddressLSB ClockControl = 1 << 0
	clockSBRTShift               = 1
	clockSBRTMask   ClockControl = 0xff << clockSBRTShift
	clockSHSCShift               = 9
	clockSHSCMask   ClockControl = 0xffff << clockSHSCShift
	ClockLineHeld   ClockControl = 1 << 29
	ClockReceiving  ClockControl = 1 << 30
	ClockNack       ClockControl = 1 << 31
	ClockPending                 = ClockReceiving | ClockNack
	clockStatusMask              = ClockLineHeld | ClockPending
	clockTimingMask              = clockSBRTMask | clockSHSCMask
)

func ClockAddress(addr uint8) ClockControl {
	return ClockControl(addr) & ClockAddressLSB
}

func StartBitRecovery(ns uint32) ClockControl {
	return ClockControl(ns/16) << clockSBRTShift & clockSBRTMask
}

func SCLHighCount(ns uint32) ClockControl {
	return ClockControl(ns/16) << clockSHSCShift & clockSHSCMask
}

// Timing returns the start bit recovery and SCL high count fields alone.
func (c ClockControl) Timing() ClockControl { return c & clockTimingMask }

func (c ClockControl) AddressLSB() uint8 { return uint8(c & ClockAddressLSB) }
func (c ClockControl) IsPending() bool   { return c&ClockPending != 0 }
func (c ClockControl) IsLineHeld() bool  { return c&ClockLineHeld != 0 }
func (c ClockControl) IsReceiving() bool { return c&ClockReceiving != 0 }
func (c ClockControl) IsNack() bool      { return c&ClockNack != 0 }

func (c ClockControl) String() string {
	s := fmt.Sprintf("{lsb %d sbrt %d shsc %d", c.AddressLSB(),
		(c&clockSBRTMask)>>clockSBRTShift,
		(c&clockSHSCMask)>>clockSHSCShift)
	if c.IsLineHeld() {
		s += " line-held"
	}
	if c.IsReceiving() {
		s += " receiving"
	}
	if c.IsNack() {
		s += " nack"
	}
	return s + "}"
}

// Prescale selects the bus clock; it is written once at bring-up.
type Prescale uint32

const (
	Prescale100KHz Prescale = 0xee<<16 | 0x183
	Prescale400KHz Prescale = 0x3c<<16 | 0x61
)

// BusFreeTime encodes the bus free time register in 16ns units.
func BusFreeTime(ns uint32) uint32 { return (ns / 16) & 0xffff }
