// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"fmt"

	"github.com/platinasystems/i2c"
)

// Transaction sizes the bridge can perform.
const (
	Byte = i2c.ByteData
	Word = i2c.WordData
)

// MaxAddress is the largest 7-bit device address.
const MaxAddress = 0x7f

// Operation is one SMBus transaction addressed to a device register.
type Operation struct {
	// 7-bit device address.
	Address uint8
	RW      i2c.RW
	// Command byte, usually a device register.
	Command uint8
	// Byte or Word.
	Size i2c.SMBusSize
	// Byte payload in [7:0] or a word payload. Ignored for reads.
	Data uint16
}

func (op Operation) String() string {
	rw := "write"
	if op.RW == i2c.Read {
		rw = "read"
	}
	sz := "byte"
	if op.Size == Word {
		sz = "word"
	}
	return fmt.Sprintf("%s %s 0x%02x.0x%02x", rw, sz, op.Address,
		op.Command)
}

// Encode returns the command register value and the address bit that goes
// into the clock/status/control register for the given operation.
// Only byte read, byte write and word write are possible; everything else
// fails with ErrUnsupported before any register is touched.
func Encode(op Operation) (cmd Command, clk ClockControl, err error) {
	if op.Address > MaxAddress {
		err = fmt.Errorf("%w: address 0x%x", ErrUnsupported, op.Address)
		return
	}
	if op.RW != i2c.Read && op.RW != i2c.Write {
		err = fmt.Errorf("%w: direction %d", ErrUnsupported, op.RW)
		return
	}
	switch op.Size {
	case Byte:
		cmd = CommandMasterAddress(uint16(op.Command))
		if op.RW == i2c.Write {
			cmd |= CommandData(uint8(op.Data))
		}
	case Word:
		if op.RW == i2c.Read {
			err = fmt.Errorf("%w: read word", ErrUnsupported)
			return
		}
		cmd = CommandPacked |
			CommandMasterAddress(uint16(op.Command)<<8|op.Data&0xff) |
			CommandData(uint8(op.Data>>8))
	default:
		err = fmt.Errorf("%w: transaction size %d", ErrUnsupported,
			op.Size)
		return
	}
	if op.RW == i2c.Write {
		cmd |= CommandWrite
	}
	cmd |= CommandDeviceAddress(op.Address)
	clk = ClockAddress(op.Address)
	return
}
