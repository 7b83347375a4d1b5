// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ax99100 brings up the ASIX AX99100 PCIe multi-interface bridge
// and its i2c interface.
package ax99100

import (
	"fmt"

	"github.com/platinasystems/ax99100/i2c"
	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/ax99100/internal/pci"
	"github.com/platinasystems/log"
)

var ID = pci.DeviceID{Vendor: 0x125b, Device: 0x9100}

// BARs used by the driver.
const (
	BarSM = 0
	BarDM = 1
	BarIM = 5
)

// Config space byte with the chip revision in [3:0].
const ConfigChipVersion = 0x44

type Revision uint8

const (
	RevAX99100 Revision = iota
	RevAX99100A
)

func (r Revision) String() string {
	if r == RevAX99100A {
		return "AX99100A"
	}
	return "AX99100"
}

func (r Revision) Banner() string {
	return fmt.Sprint("ASIX ", r, " PCIe Bridge to I2C")
}

type Device struct {
	*pci.Device
	Revision Revision

	// Mapped BARs, nil if the BAR is not memory.
	SM, DM, IM hw.Mem

	I2c *i2c.Adapter
}

// Discover returns all AX99100 functions on the host.
func Discover() ([]*pci.Device, error) {
	return pci.Discover(ID)
}

// Probe enables a discovered function, maps its BARs and creates the i2c
// adapter on BAR5. Everything done is undone on error.
func Probe(pd *pci.Device, c i2c.Config) (d *Device, err error) {
	if err = pd.Enable(); err != nil {
		return
	}
	d = &Device{Device: pd}
	defer func() {
		if err != nil {
			d.clear()
			d = nil
		}
	}()
	if err = pd.SetMaster(true); err != nil {
		return
	}
	for _, x := range []struct {
		bar uint
		mem *hw.Mem
	}{
		{BarSM, &d.SM},
		{BarDM, &d.DM},
		{BarIM, &d.IM},
	} {
		if x.bar >= uint(len(pd.Resources)) ||
			!pd.Resources[x.bar].IsMem() {
			continue
		}
		if *x.mem, err = pd.MapResource(x.bar); err != nil {
			return
		}
	}
	if d.IM == nil {
		err = fmt.Errorf("%s: resource%d: no i2c registers", pd.Addr,
			BarIM)
		return
	}
	v, err := pd.ReadConfigUint8(ConfigChipVersion)
	if err != nil {
		return
	}
	d.Revision = Revision(v & 0xf)
	d.I2c = i2c.New(d.IM, c)
	log.Print("info", d.Revision.Banner())
	return
}

// Remove unmaps the BARs, clears bus mastering and disables the device.
func (d *Device) Remove() error {
	d.I2c = nil
	return d.clear()
}

func (d *Device) clear() (err error) {
	for _, bar := range []uint{BarIM, BarDM, BarSM} {
		if xerr := d.UnmapResource(bar); err == nil {
			err = xerr
		}
	}
	d.SM, d.DM, d.IM = nil, nil, nil
	if xerr := d.SetMaster(false); err == nil {
		err = xerr
	}
	if xerr := d.Disable(); err == nil {
		err = xerr
	}
	return
}
