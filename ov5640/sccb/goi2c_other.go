// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package sccb

import (
	"errors"

	"periph.io/x/periph/conn/physic"
)

var errNoGoI2C = errors.New("sccb: go-i2c is only supported on linux")

// GoI2C is only supported on linux.
type GoI2C struct{}

// OpenGoI2C is only supported on linux.
func OpenGoI2C(path string, addr uint8) (*GoI2C, error) {
	return nil, errNoGoI2C
}

func (g *GoI2C) String() string {
	return "go-i2c"
}

// Tx implements i2c.Bus.
func (g *GoI2C) Tx(addr uint16, w, r []byte) error {
	return errNoGoI2C
}

// SetSpeed implements i2c.Bus.
func (g *GoI2C) SetSpeed(f physic.Frequency) error {
	return errNoGoI2C
}

// Close implements i2c.BusCloser.
func (g *GoI2C) Close() error {
	return nil
}
