// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"errors"
	"syscall"
)

// Status is the outcome of a transaction. Every status except Ok is an
// error and none are retried here.
type Status int

const (
	Ok Status = iota
	// The request has a shape the bridge can't perform.
	Unsupported
	// The bus did not return to idle within the poll budget.
	BusRecoveryFailed
	// The addressed device did not acknowledge.
	NotResponding
)

var statusStrings = []string{
	Ok:                "OK",
	Unsupported:       "operation not supported",
	BusRecoveryFailed: "failed to recover the bus line",
	NotResponding:     "device not responding",
}

var statusErrnos = []syscall.Errno{
	Unsupported:       syscall.EOPNOTSUPP,
	BusRecoveryFailed: syscall.EIO,
	NotResponding:     syscall.ENXIO,
}

var (
	ErrUnsupported = Unsupported.ToError()
	ErrBusRecovery = BusRecoveryFailed.ToError()
	ErrNoDevice    = NotResponding.ToError()
)

func (x Status) ToError() error {
	if x == Ok {
		return nil
	}
	return x
}

func (x Status) Error() string { return statusStrings[x] }

// Errno returns the errno a kernel smbus adapter would return.
func (x Status) Errno() syscall.Errno { return statusErrnos[x] }

// Is matches the status itself or its errno, so that
// errors.Is(err, syscall.ENXIO) holds for NotResponding.
func (x Status) Is(target error) bool {
	switch t := target.(type) {
	case Status:
		return t == x
	case syscall.Errno:
		return x != Ok && t == x.Errno()
	}
	return false
}

// StatusOf returns the Status carried by err; Ok if there is none.
func StatusOf(err error) (x Status) {
	errors.As(err, &x)
	return
}

// Classify maps the final poll outcome to a status. A held or still
// receiving line takes precedence over a missing acknowledge since the
// nack bit means nothing on an unrecovered bus.
func Classify(p PollOutcome) Status {
	if p.State == Completed {
		return Ok
	}
	switch {
	case p.Status.IsLineHeld(), p.Status.IsReceiving():
		return BusRecoveryFailed
	case p.Status.IsNack():
		return NotResponding
	}
	return BusRecoveryFailed
}
