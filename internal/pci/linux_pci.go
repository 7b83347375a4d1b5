// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

// Linux PCI code

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinasystems/ax99100/internal/hw"
	"golang.org/x/sys/unix"
)

var SysBusPciPath = "/sys/bus/pci/devices"

func (d *Device) SysfsPath(format string, args ...interface{}) string {
	return filepath.Join(SysBusPciPath, d.Addr.String(),
		fmt.Sprintf(format, args...))
}

func (d *Device) SysfsReadHexFile(name string) (v uint, err error) {
	b, err := ioutil.ReadFile(d.SysfsPath(name))
	if err != nil {
		return
	}
	_, err = fmt.Sscanf(strings.TrimSpace(string(b)), "0x%x", &v)
	if err != nil {
		err = fmt.Errorf("%s: %s: %s", d.Addr, name, err)
	}
	return
}

func (d *Device) sysfsWrite(name, s string) error {
	return ioutil.WriteFile(d.SysfsPath(name), []byte(s), 0)
}

func (d *Device) ConfigRw(offset uint, b []byte, isWrite bool) (err error) {
	mode := os.O_RDONLY
	if isWrite {
		mode = os.O_RDWR
	}
	f, err := os.OpenFile(d.SysfsPath("config"), mode, 0)
	if err != nil {
		return
	}
	defer f.Close()
	if isWrite {
		_, err = f.WriteAt(b, int64(offset))
	} else {
		_, err = f.ReadAt(b, int64(offset))
	}
	if err != nil {
		err = fmt.Errorf("%s: config 0x%x: %s", d.Addr, offset, err)
	}
	return
}

func (d *Device) ReadConfigUint8(o uint) (uint8, error) {
	var b [1]byte
	err := d.ConfigRw(o, b[:], false)
	return b[0], err
}

func (d *Device) ReadConfigUint16(o uint) (uint16, error) {
	var b [2]byte
	err := d.ConfigRw(o, b[:], false)
	return uint16(b[0]) | uint16(b[1])<<8, err
}

func (d *Device) WriteConfigUint16(o uint, v uint16) error {
	b := [2]byte{byte(v), byte(v >> 8)}
	return d.ConfigRw(o, b[:], true)
}

// Enable turns on the device's resource decoding.
func (d *Device) Enable() error {
	if err := d.sysfsWrite("enable", "1"); err != nil {
		return fmt.Errorf("%s: enable: %s", d.Addr, err)
	}
	return nil
}

func (d *Device) Disable() error {
	if err := d.sysfsWrite("enable", "0"); err != nil {
		return fmt.Errorf("%s: disable: %s", d.Addr, err)
	}
	return nil
}

// SetMaster sets or clears bus mastering in the command register.
func (d *Device) SetMaster(on bool) error {
	v, err := d.ReadConfigUint16(ConfigCommand)
	if err != nil {
		return err
	}
	c := Command(v)
	if on {
		c |= BusMasterEnable
	} else {
		c &^= BusMasterEnable
	}
	if c == Command(v) {
		return nil
	}
	return d.WriteConfigUint16(ConfigCommand, uint16(c))
}

func (d *Device) MapResource(bar uint) (hw.Mem, error) {
	if bar >= uint(len(d.Resources)) {
		return nil, fmt.Errorf("%s: resource%d: not present", d.Addr, bar)
	}
	r := &d.Resources[bar]
	if r.Mem != nil {
		return r.Mem, nil
	}
	if r.Size == 0 || !r.IsMem() {
		return nil, fmt.Errorf("%s: resource%d: not memory", d.Addr, bar)
	}
	f, err := os.OpenFile(d.SysfsPath("resource%d", r.Index), os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := unix.Mmap(int(f.Fd()), 0, int(r.Size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap resource%d: %s", r.Index, err)
	}
	r.Mem = hw.Mem(b)
	return r.Mem, nil
}

func (d *Device) UnmapResource(bar uint) error {
	if bar >= uint(len(d.Resources)) || d.Resources[bar].Mem == nil {
		return nil
	}
	err := unix.Munmap(d.Resources[bar].Mem)
	d.Resources[bar].Mem = nil
	if err != nil {
		return fmt.Errorf("munmap resource%d: %s", bar, err)
	}
	return nil
}

// Loop through BARs to find resources.
func (d *Device) findResources() error {
	f, err := os.Open(d.SysfsPath("resource"))
	if err != nil {
		return err
	}
	defer f.Close()
	d.Resources = d.Resources[:0]
	scan := bufio.NewScanner(f)
	for i := 0; scan.Scan(); i++ {
		var v [3]uint64
		n, err := fmt.Sscanf(scan.Text(), "0x%x 0x%x 0x%x",
			&v[0], &v[1], &v[2])
		if n != 3 || err != nil {
			return fmt.Errorf("%s: resource line %d: short read",
				d.Addr, i)
		}
		size := v[0]
		if v[0] != 0 {
			size = 1 + v[1] - v[0]
		}
		d.Resources = append(d.Resources, Resource{
			Index: uint32(i),
			Base:  v[0],
			Size:  size,
			Flags: v[2],
		})
	}
	return scan.Err()
}

// Discover returns the devices that match any of the given ids with their
// resources filled in.
func Discover(ids ...DeviceID) (devs []*Device, err error) {
	fis, err := ioutil.ReadDir(SysBusPciPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return
	}
	want := make(map[DeviceID]bool)
	for _, id := range ids {
		want[id] = true
	}
	for _, fi := range fis {
		d := new(Device)
		if d.Addr, err = ParseBusAddress(fi.Name()); err != nil {
			return
		}
		var v [2]uint
		if v[0], err = d.SysfsReadHexFile("vendor"); err != nil {
			return
		}
		if v[1], err = d.SysfsReadHexFile("device"); err != nil {
			return
		}
		d.ID = DeviceID{VendorID(v[0]), VendorDeviceID(v[1])}
		if !want[d.ID] {
			continue
		}
		if err = d.findResources(); err != nil {
			return
		}
		devs = append(devs, d)
	}
	return
}
