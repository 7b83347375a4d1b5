// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/platinasystems/ax99100/internal/hw"
	"github.com/platinasystems/i2c"
)

const timing = 10<<1 | 100<<9

type rig struct {
	sim    *hw.Sim
	a      *Adapter
	sleeps []time.Duration
}

// newRig returns an adapter on a simulated window whose status register
// reads status(n) on the n'th poll, counting from 1.
func newRig(t *testing.T, status func(n int) ClockControl) *rig {
	r := &rig{sim: hw.NewSim()}
	r.sim.Poke(ClockControlReg.Offset(), timing|uint32(ClockNack))
	r.a = New(r.sim, Config{
		Sleep: func(d time.Duration) { r.sleeps = append(r.sleeps, d) },
	})
	r.sim.Reset()
	if status != nil {
		r.sim.OnRead[ClockControlReg.Offset()] = func(n int, v uint32) uint32 {
			return v&^uint32(clockStatusMask) | uint32(status(n+1))
		}
	}
	return r
}

func (r *rig) polls() int { return r.sim.Reads(ClockControlReg.Offset()) }

func pendingUntil(poll int, x ClockControl) func(int) ClockControl {
	return func(n int) ClockControl {
		if n >= poll {
			return 0
		}
		return x
	}
}

func TestEncodeByte(t *testing.T) {
	for addr := 0; addr <= MaxAddress; addr++ {
		for _, rw := range []i2c.RW{i2c.Read, i2c.Write} {
			for _, c := range []uint8{0, 0x01, 0x5a, 0xff} {
				op := Operation{
					Address: uint8(addr),
					RW:      rw,
					Command: c,
					Size:    Byte,
					Data:    0xa5,
				}
				cmd, clk, err := Encode(op)
				if err != nil {
					t.Fatal(op, err)
				}
				if got := cmd.DeviceAddress()<<1 | clk.AddressLSB(); got != uint8(addr) {
					t.Fatalf("%v: address 0x%x", op, got)
				}
				if cmd.MasterAddress() != uint16(c) {
					t.Fatalf("%v: command 0x%x", op, cmd.MasterAddress())
				}
				if cmd.IsWrite() != (rw == i2c.Write) {
					t.Fatalf("%v: direction %v", op, cmd)
				}
				if cmd.IsPacked() {
					t.Fatalf("%v: packed", op)
				}
				want := uint8(0)
				if rw == i2c.Write {
					want = 0xa5
				}
				if cmd.Data() != want {
					t.Fatalf("%v: data 0x%x", op, cmd.Data())
				}
			}
		}
	}
}

func TestEncodeWord(t *testing.T) {
	for _, v := range []uint16{0x0000, 0xffff, 0x1234, 0xff00, 0x00ff} {
		cmd, _, err := Encode(Operation{
			Address: 0x50,
			RW:      i2c.Write,
			Command: 0x3c,
			Size:    Word,
			Data:    v,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !cmd.IsPacked() || !cmd.IsWrite() {
			t.Fatalf("0x%04x: %v", v, cmd)
		}
		if ma := cmd.MasterAddress(); ma != 0x3c00|v&0xff {
			t.Errorf("0x%04x: master address 0x%04x", v, ma)
		}
		if d := cmd.Data(); d != uint8(v>>8) {
			t.Errorf("0x%04x: data 0x%02x", v, d)
		}
	}
}

func TestEncodeAddressSplit(t *testing.T) {
	cmd, clk, err := Encode(Operation{Address: 0x55, RW: i2c.Read, Size: Byte})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.DeviceAddress() != 0x55>>1 {
		t.Errorf("device address 0x%x", cmd.DeviceAddress())
	}
	if clk.AddressLSB() != 1 || clk != ClockAddressLSB {
		t.Errorf("clock %v", clk)
	}
}

func TestUnsupported(t *testing.T) {
	for _, op := range []Operation{
		{Address: 0x50, RW: i2c.Read, Size: Word},
		{Address: 0x50, RW: i2c.Read, Size: i2c.Quick},
		{Address: 0x50, RW: i2c.Write, Size: i2c.Byte},
		{Address: 0x50, RW: i2c.Write, Size: i2c.BlockData},
		{Address: 0x50, RW: i2c.Read, Size: i2c.I2CBlockData},
		{Address: 0x80, RW: i2c.Read, Size: Byte},
		{Address: 0x50, RW: 7, Size: Byte},
	} {
		r := newRig(t, nil)
		_, err := r.a.Execute(op)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%v: %v", op, err)
		}
		if !errors.Is(err, syscall.EOPNOTSUPP) {
			t.Errorf("%v: %v not EOPNOTSUPP", op, err)
		}
		if log := r.sim.Log(); len(log) != 0 {
			t.Errorf("%v: register access %v", op, log)
		}
	}
}

func TestWriteOrder(t *testing.T) {
	r := newRig(t, pendingUntil(1, 0))
	op := Operation{
		Address: 0x55,
		RW:      i2c.Write,
		Command: 0x10,
		Size:    Byte,
		Data:    0x77,
	}
	if _, err := r.a.Execute(op); err != nil {
		t.Fatal(err)
	}
	cmd, _, _ := Encode(op)
	w := r.sim.Writes()
	if len(w) != 2 {
		t.Fatalf("writes %v", w)
	}
	if w[0].Offset != ClockControlReg.Offset() ||
		w[0].Value != timing|uint32(ClockAddressLSB) {
		t.Errorf("first write %v", w[0])
	}
	if w[1].Offset != CommandReg.Offset() || w[1].Value != uint32(cmd) {
		t.Errorf("second write %v", w[1])
	}
}

func TestCompletesOnThirdPoll(t *testing.T) {
	r := newRig(t, pendingUntil(3, ClockReceiving|ClockNack))
	if err := r.a.WriteByteData(0x20, 1, 2); err != nil {
		t.Fatal(err)
	}
	if n := r.polls(); n != 3 {
		t.Errorf("polls %d", n)
	}
	if len(r.sleeps) != 2 {
		t.Errorf("sleeps %v", r.sleeps)
	}
	for _, d := range r.sleeps {
		if d != DefaultInterval {
			t.Errorf("sleep %v", d)
		}
	}
}

func TestTimeout(t *testing.T) {
	for _, tc := range []struct {
		status ClockControl
		want   error
		errno  syscall.Errno
	}{
		{ClockReceiving, ErrBusRecovery, syscall.EIO},
		{ClockNack, ErrNoDevice, syscall.ENXIO},
		{ClockReceiving | ClockNack, ErrBusRecovery, syscall.EIO},
		{ClockLineHeld | ClockNack, ErrBusRecovery, syscall.EIO},
	} {
		x := tc.status
		r := newRig(t, func(int) ClockControl { return x })
		_, err := r.a.ReadByteData(0x50, 0)
		if !errors.Is(err, tc.want) || !errors.Is(err, tc.errno) {
			t.Errorf("%v: got %v want %v", x, err, tc.want)
		}
		if n := r.polls(); n != DefaultIterations {
			t.Errorf("%v: polls %d", x, n)
		}
		if n := len(r.sleeps); n != DefaultIterations-1 {
			t.Errorf("%v: sleeps %d", x, n)
		}
		if n := r.sim.Reads(CommandReg.Offset()); n != 0 {
			t.Errorf("%v: data read after timeout", x)
		}
	}
}

func TestIterations(t *testing.T) {
	sim := hw.NewSim()
	a := New(sim, Config{Iterations: 7, Sleep: func(time.Duration) {}})
	sim.Reset()
	sim.OnRead[ClockControlReg.Offset()] = func(int, uint32) uint32 {
		return uint32(ClockNack)
	}
	if _, err := a.ReadByteData(0x50, 0); err != ErrNoDevice {
		t.Fatal(err)
	}
	if n := sim.Reads(ClockControlReg.Offset()); n != 7 {
		t.Fatalf("polls %d", n)
	}
}

func TestReadByte(t *testing.T) {
	r := newRig(t, pendingUntil(2, ClockReceiving))
	r.sim.OnRead[CommandReg.Offset()] = func(n int, v uint32) uint32 {
		return v&^0xff | 0x5a
	}
	b, err := r.a.ReadByteData(0x50, 0x10)
	if err != nil {
		t.Fatal(err)
	}
	if b != 0x5a {
		t.Fatalf("got 0x%x", b)
	}
}

func TestDo(t *testing.T) {
	r := newRig(t, pendingUntil(1, 0))
	r.sim.OnRead[CommandReg.Offset()] = func(n int, v uint32) uint32 {
		return v&^0xff | 0xc3
	}
	var data i2c.SMBusData
	if err := r.a.Do(i2c.Read, 0x50, 4, Byte, &data); err != nil {
		t.Fatal(err)
	}
	if data[0] != 0xc3 {
		t.Errorf("read 0x%x", data[0])
	}

	r.sim.Reset()
	data[0], data[1] = 0x34, 0x12
	if err := r.a.Do(i2c.Write, 0x50, 4, Word, &data); err != nil {
		t.Fatal(err)
	}
	w := r.sim.Writes()
	cmd := Command(w[len(w)-1].Value)
	if cmd.MasterAddress() != 0x0434 || cmd.Data() != 0x12 {
		t.Errorf("word %v", cmd)
	}

	r.sim.Reset()
	if err := r.a.Do(i2c.Read, 0x50, 4, Word, &data); !errors.Is(err, ErrUnsupported) {
		t.Errorf("read word %v", err)
	}
	if len(r.sim.Log()) != 0 {
		t.Error("read word touched registers")
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		speed Speed
		want  Prescale
	}{
		{Speed400KHz, Prescale400KHz},
		{Speed100KHz, Prescale100KHz},
	} {
		sim := hw.NewSim()
		a := New(sim, Config{Speed: tc.speed, Sleep: func(time.Duration) {}})
		w := sim.Writes()
		if len(w) != 1 || w[0].Offset != PrescaleReg.Offset() ||
			w[0].Value != uint32(tc.want) {
			t.Fatalf("%v: writes %v", tc.speed, w)
		}
		a.WriteByteData(0x50, 0, 0)
		for _, x := range sim.Writes()[1:] {
			if x.Offset == PrescaleReg.Offset() {
				t.Fatalf("%v: prescale rewritten", tc.speed)
			}
		}
	}
}

func TestConfig(t *testing.T) {
	sim := hw.NewSim()
	a := New(sim, Config{Interval: time.Millisecond})
	if a.interval != MaxInterval {
		t.Errorf("interval %v", a.interval)
	}
	a = New(sim, Config{})
	if a.interval != DefaultInterval || a.iterations != DefaultIterations {
		t.Errorf("defaults %v %v", a.interval, a.iterations)
	}
	if a.Functionality()&i2c.SMBUS_Read_Word_Data != 0 {
		t.Error("advertises read word")
	}
	if a.Functionality()&i2c.SMBUS_Write_Word_Data == 0 {
		t.Error("missing write word")
	}
	if s := a.String(); s != "ax99100_i2c 400KHz" {
		t.Errorf("%q", s)
	}
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		p    PollOutcome
		want Status
	}{
		{PollOutcome{State: Completed}, Ok},
		{PollOutcome{State: Completed, Status: ClockLineHeld}, Ok},
		{PollOutcome{State: TimedOut, Status: ClockReceiving}, BusRecoveryFailed},
		{PollOutcome{State: TimedOut, Status: ClockLineHeld}, BusRecoveryFailed},
		{PollOutcome{State: TimedOut, Status: ClockNack}, NotResponding},
		{PollOutcome{State: TimedOut, Status: ClockNack | ClockReceiving}, BusRecoveryFailed},
	} {
		if got := Classify(tc.p); got != tc.want {
			t.Errorf("%v %v: got %v want %v", tc.p.State, tc.p.Status,
				got, tc.want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	_, _, err := Encode(Operation{RW: i2c.Read, Size: Word})
	if StatusOf(err) != Unsupported {
		t.Errorf("%v", err)
	}
	if StatusOf(nil) != Ok || StatusOf(ErrNoDevice) != NotResponding {
		t.Error("StatusOf")
	}
	if errors.Is(ErrNoDevice, syscall.EIO) {
		t.Error("nack is EIO")
	}
}
