// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sccb

import (
	"errors"
	"fmt"

	goi2c "github.com/swdee/go-i2c"
	"periph.io/x/periph/conn/physic"
)

// GoI2C exposes a device opened with github.com/swdee/go-i2c as a periph
// i2c.Bus.
//
// The device file is bound to a single address, so Tx rejects any other
// address. The address write and the value read are sent as two separate
// transfers, which SCCB devices accept.
type GoI2C struct {
	Dev *goi2c.Options
}

// OpenGoI2C opens the i²c character device at path for the sensor at addr.
func OpenGoI2C(path string, addr uint8) (*GoI2C, error) {
	d, err := goi2c.New(addr, path)
	if err != nil {
		return nil, err
	}
	return &GoI2C{Dev: d}, nil
}

func (g *GoI2C) String() string {
	return fmt.Sprintf("%s@0x%02X", g.Dev.GetDev(), g.Dev.GetAddr())
}

// Tx implements i2c.Bus.
func (g *GoI2C) Tx(addr uint16, w, r []byte) error {
	if addr != uint16(g.Dev.GetAddr()) {
		return fmt.Errorf("sccb: %s is bound to 0x%02X, not 0x%02X", g.Dev.GetDev(), g.Dev.GetAddr(), addr)
	}
	if len(w) != 0 {
		if _, err := g.Dev.WriteBytes(w); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		n, err := g.Dev.ReadBytes(r)
		if err != nil {
			return err
		}
		if n != len(r) {
			return fmt.Errorf("sccb: short read %d/%d", n, len(r))
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (g *GoI2C) SetSpeed(f physic.Frequency) error {
	return errors.New("sccb: bus speed is set by the kernel driver")
}

// Close implements i2c.BusCloser.
func (g *GoI2C) Close() error {
	return g.Dev.Close()
}
