// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sccb

import (
	"errors"

	"periph.io/x/periph/conn/physic"
	"tinygo.org/x/drivers"
)

// TinyGo exposes a TinyGo I²C bus, like machine.I2C, as a periph i2c.Bus.
//
// This permits driving the sensor from a microcontroller firmware that
// already owns the bus.
type TinyGo struct {
	Bus drivers.I2C
}

func (t *TinyGo) String() string {
	return "tinygo"
}

// Tx implements i2c.Bus.
func (t *TinyGo) Tx(addr uint16, w, r []byte) error {
	return t.Bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
//
// The speed of a TinyGo bus is set when it is configured.
func (t *TinyGo) SetSpeed(f physic.Frequency) error {
	return errors.New("sccb: tinygo bus speed is set at configuration")
}
