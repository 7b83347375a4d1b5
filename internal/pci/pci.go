// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pci finds, enables and maps PCI devices through Linux sysfs.
package pci

import (
	"fmt"

	"github.com/platinasystems/ax99100/internal/hw"
)

// Device/vendor ID from PCI config space.
type VendorID uint16
type VendorDeviceID uint16

func (v VendorID) String() string       { return fmt.Sprintf("0x%04x", uint16(v)) }
func (d VendorDeviceID) String() string { return fmt.Sprintf("0x%04x", uint16(d)) }

// Vendor/Device pair
type DeviceID struct {
	Vendor VendorID
	Device VendorDeviceID
}

func (id DeviceID) String() string {
	return fmt.Sprintf("%04x:%04x", uint16(id.Vendor), uint16(id.Device))
}

// Standard config space offsets.
const (
	ConfigVendor   = 0x00
	ConfigDevice   = 0x02
	ConfigCommand  = 0x04
	ConfigStatus   = 0x06
	ConfigRevision = 0x08
)

type Command uint16

const (
	IOEnable Command = 1 << iota
	MemoryEnable
	BusMasterEnable
	SpecialCycles
	WriteInvalidate
	VgaPaletteSnoop
	Parity
	AddressDataStepping
	SERR
	BackToBackWrite
	INTxEmulationDisable
)

type BusAddress struct {
	Domain        uint16
	Bus, Slot, Fn uint8
}

func (a BusAddress) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%01x", a.Domain, a.Bus, a.Slot, a.Fn)
}

func ParseBusAddress(s string) (a BusAddress, err error) {
	_, err = fmt.Sscanf(s, "%x:%x:%x.%x", &a.Domain, &a.Bus, &a.Slot, &a.Fn)
	if err != nil {
		err = fmt.Errorf("%s: invalid bus address: %s", s, err)
	}
	return
}

// Resource flags from the sysfs resource table.
const (
	ResourceIO  = 0x100
	ResourceMem = 0x200
)

type Resource struct {
	Index      uint32 // index of BAR
	Base, Size uint64
	Flags      uint64
	Mem        hw.Mem
}

func (r Resource) IsMem() bool { return r.Flags&ResourceMem != 0 }

func (r Resource) String() string {
	if r.Size == 0 {
		return fmt.Sprintf("{%d: unused}", r.Index)
	}
	tp := "mem"
	if !r.IsMem() {
		tp = "i/o"
	}
	return fmt.Sprintf("{%d: %s 0x%x-0x%x}", r.Index, tp, r.Base,
		r.Base+r.Size-1)
}

type Device struct {
	Addr      BusAddress
	ID        DeviceID
	Resources []Resource
}

func (d *Device) String() string {
	return fmt.Sprintf("%s %v", &d.Addr, d.ID)
}
