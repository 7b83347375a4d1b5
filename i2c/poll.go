// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"time"

	"github.com/platinasystems/ax99100/internal/hw"
)

const (
	// DefaultIterations bounds the status checks of one transaction.
	DefaultIterations = 100
	// DefaultInterval and MaxInterval bound the sleep between checks.
	DefaultInterval = 70 * time.Microsecond
	MaxInterval     = 100 * time.Microsecond
)

type PollState int

const (
	Polling PollState = iota
	Completed
	TimedOut
)

var pollStateStrings = []string{
	Polling:   "polling",
	Completed: "completed",
	TimedOut:  "timed out",
}

func (x PollState) String() string { return pollStateStrings[x] }

// PollOutcome is the final state of a poller with the last status read.
type PollOutcome struct {
	State  PollState
	Status ClockControl
	Polls  int
}

type poller struct {
	w          hw.Window
	iterations int
	interval   time.Duration
	sleep      func(time.Duration)

	state  PollState
	status ClockControl
	polls  int
}

// step checks status once. The check comes before the sleep because the
// acknowledge may arrive before the first check; no sleep follows the last
// check of the budget.
func (p *poller) step() PollState {
	p.status = ClockControl(ClockControlReg.Get(p.w))
	p.polls++
	switch {
	case !p.status.IsPending():
		p.state = Completed
	case p.polls >= p.iterations:
		p.state = TimedOut
	default:
		p.sleep(p.interval)
	}
	return p.state
}

// run starts the transaction and polls until it resolves or the budget is
// spent. The clock/status/control write must precede the command write
// since the latter starts the hardware.
func (p *poller) run(clk ClockControl, cmd Command) PollOutcome {
	ClockControlReg.Set(p.w, uint32(clk&^clockStatusMask))
	CommandReg.Set(p.w, uint32(cmd))
	p.state, p.polls = Polling, 0
	for p.state == Polling {
		p.step()
	}
	return PollOutcome{State: p.state, Status: p.status, Polls: p.polls}
}
