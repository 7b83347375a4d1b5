// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package parport provides the memory mapped parallel port registers of the
// AX99100 with the control line helpers of a PC-style port.
package parport

import (
	"fmt"
	"strings"

	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/ax99100/internal/regs"
)

// Register offsets; the ECP block follows at 0x400 as on a PC-style port.
const (
	DataReg    hw.Reg8 = 0x000
	StatusReg  hw.Reg8 = 0x001
	ControlReg hw.Reg8 = 0x002
	EppAddrReg hw.Reg8 = 0x003
	EppDataReg hw.Reg8 = 0x004
	FifoReg    hw.Reg8 = 0x400
	ConfigAReg hw.Reg8 = 0x400
	ConfigBReg hw.Reg8 = 0x401
	EcrReg     hw.Reg8 = 0x402
)

var Registers = regs.Table{
	Name: "parport",
	Base: "parport BAR",
	Regs: []regs.Reg{
		regs.New8("data", DataReg, "data lines"),
		regs.New8("status", StatusReg, "device status (dsr)"),
		regs.New8("control", ControlReg, "device control (dcr)"),
		regs.New8("eppaddr", EppAddrReg, "EPP address"),
		regs.New8("eppdata", EppDataReg, "EPP data"),
		regs.New8("fifo", FifoReg, "ECP fifo, config A in cfg mode"),
		regs.New8("configb", ConfigBReg, "ECP config B"),
		regs.New8("ecr", EcrReg, "extended control"),
	},
}

type Control uint8

const (
	Strobe Control = 1 << iota
	AutoFd
	Init
	Select
	IrqEnable
	Reverse
)

// Lines software may drive through WriteControl and FrobControl.
const ControlLines = Strobe | AutoFd | Init | Select

type Status uint8

const (
	StatusError    Status = 0x08
	StatusSelect   Status = 0x10
	StatusPaperOut Status = 0x20
	StatusAck      Status = 0x40
	StatusBusy     Status = 0x80
)

func (s Status) String() string {
	var a []string
	if s&StatusBusy == 0 {
		a = append(a, "BUSY")
	}
	if s&StatusAck != 0 {
		a = append(a, "N-ACK")
	}
	if s&StatusPaperOut != 0 {
		a = append(a, "PERROR")
	}
	if s&StatusSelect != 0 {
		a = append(a, "SELECT")
	}
	if s&StatusError != 0 {
		a = append(a, "N-FAULT")
	}
	return "[" + strings.Join(a, ",") + "]"
}

func (c Control) String() string {
	a := []string{"fwd"}
	if c&Reverse != 0 {
		a[0] = "rev"
	}
	if c&IrqEnable != 0 {
		a = append(a, "ackIntEn")
	}
	if c&Select == 0 {
		a = append(a, "N-SELECT-IN")
	}
	if c&Init != 0 {
		a = append(a, "N-INIT")
	}
	if c&AutoFd == 0 {
		a = append(a, "N-AUTOFD")
	}
	if c&Strobe == 0 {
		a = append(a, "N-STROBE")
	}
	return "[" + strings.Join(a, ",") + "]"
}

// Ecr is the extended control register.
type Ecr uint8

const (
	EcrFifoEmpty Ecr = 1 << iota
	EcrFifoFull
	EcrServiceIntr
	EcrDmaEnable
	EcrErrIntrEnable
)

var ecrModes = []string{"SPP", "PS2", "PPFIFO", "ECP", "xXx", "yYy",
	"TST", "CFG"}

func (e Ecr) Mode() string { return ecrModes[e>>5] }

func (e Ecr) String() string {
	a := []string{e.Mode()}
	for _, x := range []struct {
		bit  Ecr
		name string
	}{
		{EcrErrIntrEnable, "nErrIntrEn"},
		{EcrDmaEnable, "dmaEn"},
		{EcrServiceIntr, "serviceIntr"},
		{EcrFifoFull, "f_full"},
		{EcrFifoEmpty, "f_empty"},
	} {
		if e&x.bit != 0 {
			a = append(a, x.name)
		}
	}
	return "[" + strings.Join(a, ",") + "]"
}

// Port keeps a soft copy of the control register as the parport_pc
// driver does.
type Port struct {
	w   hw.ByteWindow
	ctr Control
	// Bitmask of writable control bits.
	Writable Control
}

func New(w hw.ByteWindow) *Port {
	return &Port{w: w, Writable: 0xff}
}

func (p *Port) WriteData(d uint8) { DataReg.Set(p.w, d) }
func (p *Port) ReadData() uint8   { return DataReg.Get(p.w) }

func (p *Port) ReadStatus() Status { return Status(StatusReg.Get(p.w)) }
func (p *Port) ReadEcr() Ecr       { return Ecr(EcrReg.Get(p.w)) }

// Soft returns the last control value written or read.
func (p *Port) Soft() Control { return p.ctr }

// frob changes the masked control bits without restricting the mask.
func (p *Port) frob(mask, val Control) Control {
	ctr := Control(ControlReg.Get(p.w))
	ctr = (ctr &^ mask) | (val & mask)
	ctr &= p.Writable
	ControlReg.Set(p.w, uint8(ctr))
	p.ctr = ctr
	return ctr
}

func (p *Port) DataReverse() { p.frob(Reverse, Reverse) }
func (p *Port) DataForward() { p.frob(Reverse, 0) }
func (p *Port) EnableIrq()   { p.frob(IrqEnable, IrqEnable) }
func (p *Port) DisableIrq()  { p.frob(IrqEnable, 0) }

// WriteControl drives the control lines; a set direction bit switches the
// data lines to reverse first.
func (p *Port) WriteControl(c Control) {
	if c&Reverse != 0 {
		p.DataReverse()
	}
	p.frob(ControlLines, c)
}

func (p *Port) ReadControl() Control {
	p.ctr = Control(ControlReg.Get(p.w))
	return p.ctr & ControlLines
}

// FrobControl changes the masked control lines and returns the new
// register value. A direction bit in mask turns the data lines around.
func (p *Port) FrobControl(mask, val Control) Control {
	if mask&Reverse != 0 {
		if val&Reverse != 0 {
			p.DataReverse()
		} else {
			p.DataForward()
		}
	}
	return p.frob(mask&ControlLines, val)
}

// State describes ecr, control (hardware and soft copy) and status.
func (p *Port) State() string {
	ecr := p.ReadEcr()
	dcr := Control(ControlReg.Get(p.w))
	dsr := p.ReadStatus()
	return fmt.Sprintf("ecr=%v dcr(hard)=%v dcr(soft)=%v dsr=%v",
		ecr, dcr, p.ctr, dsr)
}
