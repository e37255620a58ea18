// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sccb

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/periph/conn/i2c/i2ctest"
)

func TestWrite(t *testing.T) {
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x08, 0x82}},
		},
	}
	d := New(&i, 0x3C)
	if err := d.Write(0x3008, 0x82); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRead16(t *testing.T) {
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x0A}, R: []byte{0x56}},
			{Addr: 0x3C, W: []byte{0x30, 0x0B}, R: []byte{0x40}},
		},
	}
	d := New(&i, 0x3C)
	v, err := d.Read16(0x300A)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x5640 {
		t.Fatalf("0x%04X", v)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWrite16(t *testing.T) {
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x38, 0x04, 0x0A}},
			{Addr: 0x3C, W: []byte{0x38, 0x05, 0x3F}},
		},
	}
	d := New(&i, 0x3C)
	if err := d.Write16(0x3804, 2623); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteList(t *testing.T) {
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x08, 0x82}},
			{Addr: 0x3C, W: []byte{0x30, 0x08, 0x42}},
			{Addr: 0x3C, W: []byte{0x51, 0x80, 0xFF}},
			{Addr: 0x3C, W: []byte{0x51, 0x81, 0xF2}},
		},
	}
	d := New(&i, 0x3C)
	l := Join(List{W(0x3008, 0x82), Sleep(time.Millisecond), W(0x3008, 0x42)}, Seq(0x5180, 0xFF, 0xF2))
	start := time.Now()
	if err := d.WriteList(l); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < time.Millisecond {
		t.Fatal("pause was skipped")
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
	if r := l.Regs(); len(r) != 4 || r[1] != (Reg{0x3008, 0x42}) {
		t.Fatal(r)
	}
}

func TestWriteList_empty(t *testing.T) {
	i := i2ctest.Record{}
	d := New(&i, 0x3C)
	if err := d.WriteList(nil); err != nil {
		t.Fatal(err)
	}
	if len(i.Ops) != 0 {
		t.Fatal(i.Ops)
	}
}

func TestSetBits(t *testing.T) {
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x50, 0x01}, R: []byte{0x83}},
			{Addr: 0x3C, W: []byte{0x50, 0x01, 0xA3}},
			{Addr: 0x3C, W: []byte{0x50, 0x01}, R: []byte{0xA3}},
			{Addr: 0x3C, W: []byte{0x50, 0x01, 0x83}},
		},
	}
	d := New(&i, 0x3C)
	if err := d.SetBits(0x5001, 0x20, true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetBits(0x5001, 0x20, false); err != nil {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestField(t *testing.T) {
	night := Field{Addr: 0x3A00, Shift: 2, Mask: 1}
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x3A, 0x00}, R: []byte{0x78}},
			{Addr: 0x3C, W: []byte{0x3A, 0x00, 0x7C}},
			{Addr: 0x3C, W: []byte{0x3A, 0x00}, R: []byte{0x7C}},
		},
	}
	d := New(&i, 0x3C)
	if err := d.Set(night, 1); err != nil {
		t.Fatal(err)
	}
	v, err := d.Get(night)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Fatal(v)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestField_overflow(t *testing.T) {
	i := i2ctest.Playback{}
	d := New(&i, 0x3C)
	if err := d.Set(Field{Addr: 0x4407, Mask: 0x3F}, 0x40); !errors.Is(err, ErrFieldOverflow) {
		t.Fatal(err)
	}
	if err := d.Set16(Field16{Addr: 0x300A, Shift: 4, Mask: 0xF}, 0x10); !errors.Is(err, ErrFieldOverflow) {
		t.Fatal(err)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestField16(t *testing.T) {
	id := Field16{Addr: 0x300A, Mask: 0xFFFF}
	i := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: []byte{0x30, 0x0A}, R: []byte{0x56}},
			{Addr: 0x3C, W: []byte{0x30, 0x0B}, R: []byte{0x40}},
		},
	}
	d := New(&i, 0x3C)
	v, err := d.Get16(id)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x5640 {
		t.Fatalf("0x%04X", v)
	}
	if err := i.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTinyGo(t *testing.T) {
	b := &fakeTinyGo{}
	d := New(&TinyGo{Bus: b}, 0x3C)
	if err := d.Write(0x3212, 0xA3); err != nil {
		t.Fatal(err)
	}
	b.r = 0x42
	v, err := d.Read(0x3029)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x42 {
		t.Fatal(v)
	}
	if len(b.w) != 2 || b.w[0] != 0x3212 || b.w[1] != 0x3029 {
		t.Fatal(b.w)
	}
}

//

type fakeTinyGo struct {
	w []uint16
	r byte
}

func (f *fakeTinyGo) Tx(addr uint16, w, r []byte) error {
	if addr != 0x3C {
		return errors.New("bad address")
	}
	f.w = append(f.w, uint16(w[0])<<8|uint16(w[1]))
	if len(r) != 0 {
		r[0] = f.r
	}
	return nil
}
