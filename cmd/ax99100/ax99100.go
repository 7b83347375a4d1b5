// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ax99100 provides a cli command to access devices on the i2c
// adapter of an AX99100 bridge, through ax99100d if it's running.
package ax99100

import (
	"fmt"
	"io"
	"net/rpc"
	"os"
	"strconv"
	"time"

	"github.com/platinasystems/atsock"
	"github.com/platinasystems/ax99100"
	"github.com/platinasystems/ax99100/cmd/ax99100d"
	"github.com/platinasystems/ax99100/i2c"
	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/ax99100/internal/regs"
	"github.com/platinasystems/ax99100/lang"
	"github.com/platinasystems/ax99100/parport"
	"github.com/platinasystems/ax99100/spi"
	"github.com/platinasystems/flags"
	pi2c "github.com/platinasystems/i2c"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

const Name = "ax99100"

type Command struct{}

func (Command) String() string { return Name }

func (Command) Usage() string {
	return `ax99100 [-100] [-w] [-v] [-iter N] [-interval DURATION] [-sock NAME]
	BUS.ADDR[.BEGIN][-END] [VALUE]
ax99100 show
ax99100 [-v] regs [BUS]`
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "read and write devices on an AX99100 i2c adapter",
	}
}

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-100", "-w", "-v")
	parm, args := parms.New(args, "-iter", "-interval", "-sock")
	var config i2c.Config
	if flag.ByName["-100"] {
		config.Speed = i2c.Speed100KHz
	}
	if s := parm.ByName["-iter"]; len(s) > 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("-iter: %v", err)
		}
		config.Iterations = n
	}
	if s := parm.ByName["-interval"]; len(s) > 0 {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("-interval: %v", err)
		}
		config.Interval = d
	}
	sock := parm.ByName["-sock"]
	if len(sock) == 0 {
		sock = ax99100d.Name
	}

	if len(args) == 0 {
		return fmt.Errorf("BUS.ADDR.REG: missing")
	}

	switch args[0] {
	case "regs":
		if len(args) > 2 {
			return fmt.Errorf("%v: unexpected", args[2:])
		}
		if err := writeTables(os.Stdout); err != nil {
			return err
		}
		if len(args) < 2 && !flag.ByName["-v"] {
			return nil
		}
		bus := 0
		if len(args) == 2 {
			var err error
			if bus, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("%s: invalid bus: %v", args[1], err)
			}
		}
		d, err := probe(config)
		if err != nil {
			return err
		}
		defer d.Close()
		dev, err := d.device(bus)
		if err != nil {
			return err
		}
		return dump(os.Stdout, dev.IM)
	case "show":
		if len(args) > 1 {
			return fmt.Errorf("%v: unexpected", args[1:])
		}
		if client, err := atsock.NewRpcClient(sock); err == nil {
			defer client.Close()
			return showDaemon(os.Stdout, client)
		}
		d, err := probe(config)
		if err != nil {
			return err
		}
		defer d.Close()
		return d.show(os.Stdout)
	}

	req, err := ParseRequest(flag.ByName["-w"], args...)
	if err != nil {
		return err
	}
	var t transport
	if client, err := atsock.NewRpcClient(sock); err == nil {
		if flag.ByName["-v"] {
			log.Print("info", "using @", sock)
		}
		t = daemon{client}
	} else {
		d, err := probe(config)
		if err != nil {
			return err
		}
		t = d
	}
	defer t.Close()
	return access(os.Stdout, t, req)
}

// Request is a parsed command line access.
type Request struct {
	Bus        int
	Address    uint8
	Begin, End uint8
	// Register is false for BUS.ADDR.
	Register bool
	Write    bool
	Word     bool
	Value    uint16
}

func ParseRequest(word bool, args ...string) (r Request, err error) {
	var b, a, begin, end uint8
	if n := len(args); n == 0 {
		err = fmt.Errorf("BUS.ADDR.REG: missing")
		return
	} else if n > 2 {
		err = fmt.Errorf("%v: unexpected", args[2:])
		return
	}
	r.Register = true
	_, err = fmt.Sscanf(args[0], "%x.%x.%x-%x", &b, &a, &begin, &end)
	if err != nil {
		end = 0
		_, err = fmt.Sscanf(args[0], "%x.%x.%x", &b, &a, &begin)
		if err == nil {
			end = begin
		} else {
			r.Register = false
			_, err = fmt.Sscanf(args[0], "%x.%x", &b, &a)
		}
	}
	if err != nil {
		err = fmt.Errorf("%s: invalid BUS.ADDR[.REG]: %v", args[0], err)
		return
	}
	if a > i2c.MaxAddress {
		err = fmt.Errorf("%s: address out of range", args[0])
		return
	}
	if end < begin {
		err = fmt.Errorf("%s: invalid range", args[0])
		return
	}
	r.Bus, r.Address, r.Begin, r.End = int(b), a, begin, end
	r.Word = word
	if len(args) > 1 {
		var v uint64
		bits := 8
		if word {
			bits = 16
		}
		if v, err = strconv.ParseUint(args[1], 16, bits); err != nil {
			err = fmt.Errorf("%s: invalid value: %v", args[1], err)
			return
		}
		r.Write, r.Value = true, uint16(v)
	}
	return
}

// Operation returns the engine operation of register c.
func (r *Request) Operation(c uint8) i2c.Operation {
	op := i2c.Operation{
		Address: r.Address,
		RW:      pi2c.Read,
		Command: c,
		Size:    i2c.Byte,
		Data:    r.Value,
	}
	if !r.Register {
		// receive byte; the adapter reports it unsupported
		op.Size = pi2c.Byte
	} else if r.Word {
		op.Size = i2c.Word
	}
	if r.Write {
		op.RW = pi2c.Write
	}
	return op
}

type transport interface {
	Execute(bus int, op i2c.Operation) (uint8, error)
	Close() error
}

func access(w io.Writer, t transport, r Request) error {
	for c := int(r.Begin); c <= int(r.End); c++ {
		data, err := t.Execute(r.Bus, r.Operation(uint8(c)))
		if err != nil {
			return fmt.Errorf("%x.%02x.%02x: %w", r.Bus, r.Address, c,
				err)
		}
		switch {
		case r.Write && r.Word:
			fmt.Fprintf(w, "%x.%02x.%02x = %04x\n", r.Bus, r.Address,
				c, r.Value)
		case r.Write:
			fmt.Fprintf(w, "%x.%02x.%02x = %02x\n", r.Bus, r.Address,
				c, r.Value)
		default:
			fmt.Fprintf(w, "%x.%02x.%02x = %02x\n", r.Bus, r.Address,
				c, data)
		}
	}
	return nil
}

// daemon forwards operations to ax99100d.
type daemon struct{ *rpc.Client }

func (d daemon) Execute(bus int, op i2c.Operation) (uint8, error) {
	var reply ax99100d.Reply
	err := d.Call("Server.ReadWrite", ax99100d.Request{Bus: bus, Op: op},
		&reply)
	if err != nil {
		return 0, err
	}
	return reply.Data, reply.Status.ToError()
}

func showDaemon(w io.Writer, client *rpc.Client) error {
	var n int
	if err := client.Call("Server.NBuses", struct{}{}, &n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var st ax99100d.StatusReply
		if err := client.Call("Server.Status", i, &st); err != nil {
			return err
		}
		fmt.Fprintf(w, "i2c-%d: %s\n", i, st.Adapter)
		fmt.Fprintf(w, "    xfers %d errors %d nack %d", st.Xfers,
			st.Errors, st.Nack)
		fmt.Fprintf(w, " recovery %d retries %d\n", st.Recovery,
			st.Retries)
	}
	return nil
}

// direct owns devices probed by this command.
type direct struct {
	devs []*ax99100.Device
}

func probe(config i2c.Config) (*direct, error) {
	pds, err := ax99100.Discover()
	if err != nil {
		return nil, err
	}
	d := new(direct)
	for _, pd := range pds {
		dev, err := ax99100.Probe(pd, config)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.devs = append(d.devs, dev)
	}
	return d, nil
}

func (d *direct) device(bus int) (*ax99100.Device, error) {
	if bus < 0 || bus >= len(d.devs) {
		return nil, fmt.Errorf("i2c-%d: no such bus", bus)
	}
	return d.devs[bus], nil
}

func (d *direct) Execute(bus int, op i2c.Operation) (uint8, error) {
	dev, err := d.device(bus)
	if err != nil {
		return 0, err
	}
	return dev.I2c.Execute(op)
}

func (d *direct) Close() (err error) {
	for _, dev := range d.devs {
		if xerr := dev.Remove(); err == nil {
			err = xerr
		}
	}
	d.devs = nil
	return
}

func (d *direct) show(w io.Writer) error {
	if len(d.devs) == 0 {
		fmt.Fprintln(w, "no", ax99100.ID, "devices")
	}
	for i, dev := range d.devs {
		fmt.Fprintf(w, "i2c-%d: %s %s %v\n", i, dev.Addr, dev.Revision,
			dev.I2c)
		for _, r := range dev.Resources {
			fmt.Fprintln(w, "   ", r)
		}
		fmt.Fprintln(w, "    functionality:",
			Features(dev.I2c.Functionality()))
	}
	return nil
}

var features = []struct {
	flag pi2c.FeatureFlag
	name string
}{
	{pi2c.SMBUS_Read_Byte_Data, "read-byte-data"},
	{pi2c.SMBUS_Write_Byte_Data, "write-byte-data"},
	{pi2c.SMBUS_Read_Word_Data, "read-word-data"},
	{pi2c.SMBUS_Write_Word_Data, "write-word-data"},
}

// Features names the smbus data transfer capabilities in f.
func Features(f pi2c.FeatureFlag) (names []string) {
	for _, x := range features {
		if f&x.flag != 0 {
			names = append(names, x.name)
		}
	}
	return
}

var tables = []*regs.Table{
	&i2c.Registers,
	&parport.Registers,
	&spi.IORegisters,
	&spi.MemRegisters,
}

func writeTables(w io.Writer) error {
	for _, t := range tables {
		if _, err := t.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// dump prints the live i2c registers of a window.
func dump(w io.Writer, win hw.Window) error {
	for _, r := range i2c.Registers.Regs {
		_, err := fmt.Fprintf(w, "%-10s 0x%08x\n", r.Name,
			hw.Reg32(r.Offset).Get(win))
		if err != nil {
			return err
		}
	}
	return nil
}
