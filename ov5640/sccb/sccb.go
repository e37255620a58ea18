// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sccb implements the register access protocol used by OmniVision
// image sensors.
//
// SCCB is electrically compatible with I²C. Registers are addressed with 16
// bits sent big endian, followed by an 8 bit value. Wider logical registers
// are stored big endian across consecutive addresses.
//
// Reference:
//   OmniVision Serial Camera Control Bus (SCCB) Functional Specification
//   http://www.ovt.com/download/sensorpdf/157/OmniVision_SCCBSpec.pdf
package sccb

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// ErrFieldOverflow is returned when a value doesn't fit in a Field.
var ErrFieldOverflow = errors.New("sccb: value overflows field")

// Dev is a device on a SCCB bus.
//
// It is not safe for concurrent use.
type Dev struct {
	d i2c.Dev
}

// New returns a device at address addr on bus b.
func New(b i2c.Bus, addr uint16) *Dev {
	return &Dev{d: i2c.Dev{Bus: b, Addr: addr}}
}

func (d *Dev) String() string {
	return d.d.String()
}

// Write sets an 8 bit register.
func (d *Dev) Write(reg uint16, v uint8) error {
	return d.d.Tx([]byte{byte(reg >> 8), byte(reg), v}, nil)
}

// Read returns an 8 bit register.
func (d *Dev) Read(reg uint16) (uint8, error) {
	var b [1]byte
	if err := d.d.Tx([]byte{byte(reg >> 8), byte(reg)}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Write16 sets a 16 bit logical register stored at reg and reg+1.
func (d *Dev) Write16(reg uint16, v uint16) error {
	if err := d.Write(reg, uint8(v>>8)); err != nil {
		return err
	}
	return d.Write(reg+1, uint8(v))
}

// Read16 returns a 16 bit logical register stored at reg and reg+1.
func (d *Dev) Read16(reg uint16) (uint16, error) {
	h, err := d.Read(reg)
	if err != nil {
		return 0, err
	}
	l, err := d.Read(reg + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// WriteList replays l in order.
//
// It stops at the first failure; the writes before it stay applied.
func (d *Dev) WriteList(l List) error {
	for i, s := range l {
		if s.Pause != 0 {
			time.Sleep(s.Pause)
			continue
		}
		if err := d.Write(s.Addr, s.Value); err != nil {
			return fmt.Errorf("sccb: step %d (0x%04X): %w", i, s.Addr, err)
		}
	}
	return nil
}

// SetBits sets or clears the bits of mask in register reg.
func (d *Dev) SetBits(reg uint16, mask uint8, on bool) error {
	v, err := d.Read(reg)
	if err != nil {
		return err
	}
	if on {
		v |= mask
	} else {
		v &^= mask
	}
	return d.Write(reg, v)
}

// Get returns the value of a bit field.
func (d *Dev) Get(f Field) (uint8, error) {
	v, err := d.Read(f.Addr)
	if err != nil {
		return 0, err
	}
	return (v >> f.Shift) & f.Mask, nil
}

// Set updates a bit field, leaving the other bits of the register intact.
func (d *Dev) Set(f Field, v uint8) error {
	if v&^f.Mask != 0 {
		return fmt.Errorf("%w: 0x%X in 0x%04X mask 0x%X", ErrFieldOverflow, v, f.Addr, f.Mask)
	}
	old, err := d.Read(f.Addr)
	if err != nil {
		return err
	}
	return d.Write(f.Addr, old&^(f.Mask<<f.Shift)|v<<f.Shift)
}

// Get16 returns the value of a 16 bit logical bit field.
func (d *Dev) Get16(f Field16) (uint16, error) {
	v, err := d.Read16(f.Addr)
	if err != nil {
		return 0, err
	}
	return (v >> f.Shift) & f.Mask, nil
}

// Set16 updates a 16 bit logical bit field.
func (d *Dev) Set16(f Field16, v uint16) error {
	if v&^f.Mask != 0 {
		return fmt.Errorf("%w: 0x%X in 0x%04X mask 0x%X", ErrFieldOverflow, v, f.Addr, f.Mask)
	}
	old, err := d.Read16(f.Addr)
	if err != nil {
		return err
	}
	return d.Write16(f.Addr, old&^(f.Mask<<f.Shift)|v<<f.Shift)
}

// Field describes a group of bits within an 8 bit register.
//
// The field value is (register >> Shift) & Mask.
type Field struct {
	Addr  uint16
	Shift uint8
	Mask  uint8
}

// Field16 describes a group of bits within a 16 bit logical register.
type Field16 struct {
	Addr  uint16
	Shift uint8
	Mask  uint16
}
