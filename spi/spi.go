// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package spi provides the SPI master registers of the AX99100: the
// byte-wide control block in the i/o BAR and the 32-bit DMA block in the
// memory BAR.
package spi

import (
	"fmt"
	"strings"

	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/ax99100/internal/regs"
)

// SPI function subsystem vendor id.
const SubsystemID = 0x6000

// I/O mapped registers.
const (
	CmrReg   hw.Reg8 = 0x000 // control mode
	CssReg   hw.Reg8 = 0x001 // chip select
	BrrReg   hw.Reg8 = 0x004 // baud rate
	DsReg    hw.Reg8 = 0x005
	DtReg    hw.Reg8 = 0x006
	SdaofReg hw.Reg8 = 0x007
	Stof0Reg hw.Reg8 = 0x008 // 8 opcode/address bytes follow
	Sdfl0Reg hw.Reg8 = 0x010
	Sdfl1Reg hw.Reg8 = 0x011
	SsolReg  hw.Reg8 = 0x012
	SdcrReg  hw.Reg8 = 0x013
	MisrReg  hw.Reg8 = 0x014 // interrupt status
)

// Memory mapped registers.
const (
	SwResetReg hw.Reg32 = 0x238

	TxDmaAddr0Reg  hw.Reg32 = 0x080
	TxDmaAddr1Reg  hw.Reg32 = 0x084
	TxDmaLenReg    hw.Reg32 = 0x088
	TxDmaStartReg  hw.Reg32 = 0x08c
	TxDmaStopReg   hw.Reg32 = 0x090
	TxDmaStatusReg hw.Reg32 = 0x094
	TxBytesReg     hw.Reg32 = 0x098

	RxDmaAddr0Reg  hw.Reg32 = 0x100
	RxDmaAddr1Reg  hw.Reg32 = 0x104
	RxDmaLenReg    hw.Reg32 = 0x108
	RxDmaStartReg  hw.Reg32 = 0x10c
	RxDmaStopReg   hw.Reg32 = 0x110
	RxDmaStatusReg hw.Reg32 = 0x114
	RxBytesReg     hw.Reg32 = 0x118
)

var IORegisters = regs.Table{
	Name: "spi",
	Base: "i/o BAR",
	Regs: []regs.Reg{
		regs.New8("spicmr", CmrReg, "control mode"),
		regs.New8("spicss", CssReg, "chip select"),
		regs.New8("spibrr", BrrReg, "baud rate"),
		regs.New8("spids", DsReg, "divider select"),
		regs.New8("spidt", DtReg, "delay time"),
		regs.New8("sdaof", SdaofReg, "opcode/address length"),
		regs.New8("stof0", Stof0Reg, "opcode/address bytes 0-7"),
		regs.New8("sdfl0", Sdfl0Reg, "data frame length low"),
		regs.New8("sdfl1", Sdfl1Reg, "data frame length high"),
		regs.New8("spissol", SsolReg, "slave select output level"),
		regs.New8("sdcr", SdcrReg, "dma control, interrupt enable"),
		regs.New8("spimisr", MisrReg, "interrupt status"),
	},
}

var MemRegisters = regs.Table{
	Name: "spi dma",
	Base: "memory BAR",
	Regs: []regs.Reg{
		regs.New32("tdmasar0", TxDmaAddr0Reg, "tx dma address low"),
		regs.New32("tdmasar1", TxDmaAddr1Reg, "tx dma address high"),
		regs.New32("tdmalr", TxDmaLenReg, "tx dma length"),
		regs.New32("tdmastar", TxDmaStartReg, "tx dma start"),
		regs.New32("tdmastpr", TxDmaStopReg, "tx dma stop"),
		regs.New32("tdmasr", TxDmaStatusReg, "tx dma status"),
		regs.New32("tbnts", TxBytesReg, "tx bytes"),
		regs.New32("rdmasar0", RxDmaAddr0Reg, "rx dma address low"),
		regs.New32("rdmasar1", RxDmaAddr1Reg, "rx dma address high"),
		regs.New32("rdmalr", RxDmaLenReg, "rx dma length"),
		regs.New32("rdmastar", RxDmaStartReg, "rx dma start"),
		regs.New32("rdmastpr", RxDmaStopReg, "rx dma stop"),
		regs.New32("rdmasr", RxDmaStatusReg, "rx dma status"),
		regs.New32("rbnts", RxBytesReg, "rx bytes"),
		regs.New32("swrst", SwResetReg, "software reset"),
	},
}

// Mode is the control mode register.
type Mode uint8

const (
	ModeSSP Mode = 1 << iota
	ModeCPHA
	ModeCPOL
	ModeLSB
	ModeMaster
	ModeAutoSS
	ModeSWE
	ModeSSOE
)

var modeNames = []string{"ssp", "cpha", "cpol", "lsb", "spimen", "ass",
	"swe", "ssoe"}

func (m Mode) String() string {
	var a []string
	for i, name := range modeNames {
		if m&(1<<uint(i)) != 0 {
			a = append(a, name)
		}
	}
	return "[" + strings.Join(a, ",") + "]"
}

// Interrupt status bits of MisrReg.
type Interrupt uint8

const (
	TransferComplete Interrupt = 1 << iota
	TransferError
	interruptMask = TransferComplete | TransferError
)

// Dma control bits.
const (
	SdcrInterruptEnable = 0xc0
	DmaStart            = 1 << 0
	DmaAbort            = 1 << 0
	DmaBufferSize       = 65535
	SoftwareReset       = 1 << 0
)

// Flash opcodes.
const (
	OpWriteEnable  = 0x06
	OpReadStatus   = 0x05
	OpRead         = 0x03
	OpSectorErase  = 0x20
	OpBlockErase   = 0x52
	OpChipErase    = 0x60
	OpPageProgram  = 0x02
	FlashStatusWEL = 0x02
)

// Stof returns the i'th opcode/address byte register; there are eight.
func Stof(i int) hw.Reg8 {
	if i < 0 || i > 7 {
		panic(fmt.Errorf("stof%d: out of range", i))
	}
	return Stof0Reg + hw.Reg8(i)
}

// SetOpcode loads an opcode and its address bytes into the stof registers
// and their count into sdaof.
func SetOpcode(w hw.ByteWindow, op uint8, addr ...uint8) {
	Stof(0).Set(w, op)
	for i, b := range addr {
		Stof(i+1).Set(w, b)
	}
	SdaofReg.Set(w, uint8(1+len(addr)))
}

// Reset pulses the software reset of the SPI block.
func Reset(w hw.Window) {
	SwResetReg.Set(w, SoftwareReset)
	SwResetReg.Set(w, 0)
}

// Pending returns and acknowledges the pending interrupts.
func Pending(w hw.ByteWindow) Interrupt {
	x := Interrupt(MisrReg.Get(w)) & interruptMask
	if x != 0 {
		MisrReg.Set(w, uint8(x))
	}
	return x
}
