// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ax99100d serves the i2c adapters of every AX99100 bridge found
// on the pci bus and publishes their transfer counters to redis.
package ax99100d

import (
	"fmt"
	"io"
	"net/rpc"
	"strconv"
	"sync"
	"time"

	"github.com/platinasystems/atsock"
	"github.com/platinasystems/ax99100"
	"github.com/platinasystems/ax99100/cmd"
	"github.com/platinasystems/ax99100/i2c"
	"github.com/platinasystems/ax99100/lang"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
)

const Name = "ax99100d"

const DefaultRetries = 2

var pollInterval = 5 * time.Second

type printer interface {
	Print(...interface{}) (int, error)
}

type Command struct {
	Info
	Init func()
	init sync.Once
}

type Info struct {
	Server
	mutex sync.Mutex
	rpc   *atsock.RpcServer
	pub   printer
	devs  []*ax99100.Device
	last  map[string]uint64

	stop     chan struct{}
	stopOnce sync.Once
	stopped  sync.Once
}

func (*Command) String() string { return Name }

func (*Command) Usage() string {
	return Name + " [-100] [-iter N] [-interval DURATION] [-retries N]"
}

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "AX99100 i2c adapter daemon",
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

// Config returns the adapter and retry configuration from the daemon's
// arguments.
func Config(args ...string) (c i2c.Config, retries int, err error) {
	flag, args := flags.New(args, "-100")
	parm, args := parms.New(args, "-iter", "-interval", "-retries")
	if len(args) > 0 {
		err = fmt.Errorf("%v: unexpected", args)
		return
	}
	if flag.ByName["-100"] {
		c.Speed = i2c.Speed100KHz
	}
	if s := parm.ByName["-iter"]; len(s) > 0 {
		if c.Iterations, err = strconv.Atoi(s); err != nil {
			err = fmt.Errorf("-iter: %v", err)
			return
		}
	}
	if s := parm.ByName["-interval"]; len(s) > 0 {
		if c.Interval, err = time.ParseDuration(s); err != nil {
			err = fmt.Errorf("-interval: %v", err)
			return
		}
	}
	retries = DefaultRetries
	if s := parm.ByName["-retries"]; len(s) > 0 {
		if retries, err = strconv.Atoi(s); err != nil {
			err = fmt.Errorf("-retries: %v", err)
		}
	}
	return
}

func (c *Command) Main(args ...string) error {
	if c.Init != nil {
		c.init.Do(c.Init)
	}
	stop := c.stopCh()

	config, retries, err := Config(args...)
	if err != nil {
		return err
	}

	select {
	case <-stop:
		return nil
	default:
	}

	if err = redis.IsReady(); err != nil {
		return err
	}

	c.last = make(map[string]uint64)

	pub, err := publisher.New()
	if err != nil {
		return err
	}
	c.mutex.Lock()
	c.pub = pub
	c.mutex.Unlock()

	pds, err := ax99100.Discover()
	if err != nil {
		c.release()
		return err
	}
	for _, pd := range pds {
		d, err := ax99100.Probe(pd, config)
		if err != nil {
			log.Print("daemon", "err", pd.Addr, ": ", err)
			continue
		}
		c.mutex.Lock()
		c.devs = append(c.devs, d)
		c.mutex.Unlock()
		c.Buses = append(c.Buses, NewBus(d.I2c, retries))
		log.Print("daemon", "info", "i2c-", len(c.Buses)-1, " ",
			d.I2c.Speed, " interface created")
		pub.Print(key(len(c.Buses)-1, "speed"), ": ", d.I2c.Speed)
	}
	if len(c.Buses) == 0 {
		log.Print("daemon", "warn", "no ", ax99100.ID, " adapters")
	}

	srv, err := atsock.NewRpcServer(Name)
	if err != nil {
		c.release()
		return err
	}
	c.mutex.Lock()
	c.rpc = srv
	c.mutex.Unlock()
	rpc.Register(&c.Info.Server)

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return nil
		case <-t.C:
			c.update()
		}
	}
}

// Close stops Main, even one that hasn't started, and releases the rpc
// socket, publisher and devices. It may be called more than once.
func (c *Command) Close() error {
	c.stopped.Do(func() { close(c.stopCh()) })
	return c.release()
}

func (info *Info) stopCh() chan struct{} {
	info.stopOnce.Do(func() { info.stop = make(chan struct{}) })
	return info.stop
}

func (info *Info) release() (err error) {
	info.mutex.Lock()
	defer info.mutex.Unlock()
	if info.rpc != nil {
		err = info.rpc.Close()
		info.rpc = nil
	}
	if p, ok := info.pub.(io.Closer); ok {
		p.Close()
	}
	info.pub = nil
	for _, d := range info.devs {
		if xerr := d.Remove(); err == nil {
			err = xerr
		}
	}
	info.devs = nil
	return
}

func key(bus int, field string) string {
	return fmt.Sprint("ax99100.", bus, ".", field)
}

// update publishes the counters that changed since the last tick.
func (info *Info) update() {
	info.mutex.Lock()
	pub := info.pub
	info.mutex.Unlock()
	if pub == nil {
		return
	}
	for i, b := range info.Buses {
		st := b.Stats()
		for _, kv := range []struct {
			field string
			v     uint64
		}{
			{"xfers", st.Xfers},
			{"errors", st.Errors},
			{"nack", st.Nack},
			{"recovery", st.Recovery},
			{"retries", st.Retries},
		} {
			k := key(i, kv.field)
			if v, found := info.last[k]; found && v == kv.v {
				continue
			}
			pub.Print(k, ": ", kv.v)
			info.last[k] = kv.v
		}
	}
}
