// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package parport

import (
	"testing"

	"github.com/platinasystems/ax99100/internal/hw"
)

func TestFrobControl(t *testing.T) {
	sim := hw.NewSim()
	p := New(sim)
	sim.Poke(ControlReg.Offset(), uint32(Init|IrqEnable))
	got := p.FrobControl(Strobe|AutoFd|IrqEnable, Strobe|IrqEnable)
	// irq enable isn't a control line so FrobControl leaves it alone.
	if want := Init | IrqEnable | Strobe; got != want {
		t.Fatalf("got %v want %v", got, want)
	}
	if p.Soft() != got {
		t.Errorf("soft %v", p.Soft())
	}
	if v := Control(sim.Peek(ControlReg.Offset())); v != got {
		t.Errorf("register %v", v)
	}
}

func TestDirection(t *testing.T) {
	sim := hw.NewSim()
	p := New(sim)
	p.WriteControl(Reverse | Select)
	if v := Control(sim.Peek(ControlReg.Offset())); v != Reverse|Select {
		t.Fatalf("register 0x%x", uint8(v))
	}
	if c := p.ReadControl(); c != Select {
		t.Errorf("read control 0x%x", uint8(c))
	}
	p.FrobControl(Reverse, 0)
	if v := Control(sim.Peek(ControlReg.Offset())); v != Select {
		t.Errorf("forward 0x%x", uint8(v))
	}
}

func TestWritable(t *testing.T) {
	sim := hw.NewSim()
	p := New(sim)
	p.Writable = ControlLines
	p.EnableIrq()
	if v := sim.Peek(ControlReg.Offset()); v != 0 {
		t.Errorf("wrote read-only bits 0x%x", v)
	}
	p.Writable = 0xff
	p.EnableIrq()
	p.DisableIrq()
	w := sim.Writes()
	if len(w) != 3 || w[1].Value != uint32(IrqEnable) || w[2].Value != 0 {
		t.Errorf("writes %v", w)
	}
}

func TestData(t *testing.T) {
	sim := hw.NewSim()
	p := New(sim)
	p.WriteData(0xa5)
	if p.ReadData() != 0xa5 {
		t.Error("data")
	}
}

func TestState(t *testing.T) {
	sim := hw.NewSim()
	p := New(sim)
	sim.Poke(EcrReg.Offset(), 0x35)
	sim.Poke(ControlReg.Offset(), uint32(Init|Select|AutoFd|Strobe))
	sim.Poke(StatusReg.Offset(), uint32(StatusBusy|StatusSelect))
	want := "ecr=[PS2,nErrIntrEn,serviceIntr,f_empty] " +
		"dcr(hard)=[fwd,N-INIT] dcr(soft)=[fwd,N-SELECT-IN,N-AUTOFD,N-STROBE] " +
		"dsr=[SELECT]"
	if s := p.State(); s != want {
		t.Errorf("\ngot  %s\nwant %s", s, want)
	}
}
