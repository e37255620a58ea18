// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"errors"
	"testing"
	"time"

	"github.com/maruel/go-ov5640/ov5640test"
	"periph.io/x/periph/conn/i2c/i2ctest"
)

func TestAutofocus(t *testing.T) {
	defer fastPoll()()
	s := ov5640test.New()
	s.Zones = [5]uint8{0, 1, 2, 3, 4}
	d, err := New(s, nil, &Opts{AutofocusFirmware: []byte{0x02, 0x0F, 0xD6}})
	if err != nil {
		t.Fatal(err)
	}
	if v := s.Reg(0x8002); v != 0xD6 {
		t.Fatalf("0x%02X", v)
	}
	st, err := d.AutofocusStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st != AutofocusIdle {
		t.Fatal(st)
	}
	zones, err := d.Autofocus()
	if err != nil {
		t.Fatal(err)
	}
	if zones != s.Zones {
		t.Fatal(zones)
	}
	if st, _ := d.AutofocusStatus(); st != AutofocusFocused {
		t.Fatal(st)
	}
	if err := d.SetAutofocusVCMStep(42); err != nil {
		t.Fatal(err)
	}
	step, err := d.AutofocusVCMStep()
	if err != nil {
		t.Fatal(err)
	}
	if step != 42 {
		t.Fatal(step)
	}
	if err := d.ContinuousAutofocus(); err != nil {
		t.Fatal(err)
	}
	if st, _ := d.AutofocusStatus(); st != AutofocusFocusing {
		t.Fatal(st)
	}
}

func TestAutofocus_timeout(t *testing.T) {
	defer fastPoll()()
	s := ov5640test.New()
	d, err := New(s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Stuck = true
	if err := d.LoadAutofocusFirmware([]byte{0x02}); !errors.Is(err, ErrTimeout) {
		t.Fatal(err)
	}
	if _, err := d.Autofocus(); !errors.Is(err, ErrTimeout) {
		t.Fatal(err)
	}
}

func TestAfCommand(t *testing.T) {
	defer fastPoll()()
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x23, 0x01}},
			{Addr: 0x3C, W: []byte{0x30, 0x22, 0x08}},
			{Addr: 0x3C, W: []byte{0x30, 0x23}, R: []byte{0x01}},
			{Addr: 0x3C, W: []byte{0x30, 0x23}, R: []byte{0x00}},
		},
	}
	d := newDev(&i)
	if err := d.afCommand(afRelease); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAutofocusFirmware(t *testing.T) {
	defer fastPoll()()
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x00, 0x20}},
			{Addr: 0x3C, W: []byte{0x80, 0x00, 0x02}},
			{Addr: 0x3C, W: []byte{0x80, 0x01, 0x0F}},
			{Addr: 0x3C, W: []byte{0x80, 0x02, 0xD6}},
			{Addr: 0x3C, W: []byte{0x30, 0x22, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x23, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x24, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x25, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x26, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x27, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x28, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x29, 0x7F}},
			{Addr: 0x3C, W: []byte{0x30, 0x00, 0x00}},
			{Addr: 0x3C, W: []byte{0x30, 0x29}, R: []byte{0x7F}},
			{Addr: 0x3C, W: []byte{0x30, 0x29}, R: []byte{0x7E}},
			{Addr: 0x3C, W: []byte{0x30, 0x29}, R: []byte{0x70}},
		},
	}
	d := newDev(&i)
	if err := d.LoadAutofocusFirmware([]byte{0x02, 0x0F, 0xD6}); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAutofocusFirmware_range(t *testing.T) {
	r := i2ctest.Record{}
	d := newDev(&r)
	if err := d.LoadAutofocusFirmware(nil); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if err := d.LoadAutofocusFirmware(make([]byte, 0x8001)); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if len(r.Ops) != 0 {
		t.Fatal(r.Ops)
	}
}

//

func fastPoll() func() {
	old := pollInterval
	pollInterval = time.Microsecond
	return func() {
		pollInterval = old
	}
}
