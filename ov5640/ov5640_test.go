// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"bytes"
	"errors"
	"image/jpeg"
	"reflect"
	"testing"

	"github.com/maruel/go-ov5640/ov5640/sccb"
	"github.com/maruel/go-ov5640/ov5640test"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2ctest"
	"periph.io/x/periph/conn/physic"
)

func TestNew(t *testing.T) {
	s := ov5640test.New()
	d, err := New(s, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Size() != SizeQQVGA || d.ColorSpace() != RGB565 || d.Quality() != 12 {
		t.Fatal(d)
	}
	if r := d.Bounds(); r.Dx() != 160 || r.Dy() != 120 {
		t.Fatal(r)
	}
	if w := uint16(s.Reg(0x3808))<<8 | uint16(s.Reg(0x3809)); w != 160 {
		t.Fatal(w)
	}
	if v := s.Reg(0x3008); v != 0x02 {
		t.Fatalf("not powered on: 0x%02X", v)
	}
	if v := s.Reg(0x4407); v != 12 {
		t.Fatal(v)
	}
	id, err := d.ChipID()
	if err != nil {
		t.Fatal(err)
	}
	if id != ChipID {
		t.Fatalf("0x%04X", id)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestNew_opts(t *testing.T) {
	s := ov5640test.New()
	if _, err := New(s, s, &Opts{Size: SizeQSXGA + 1}); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if _, err := New(s, s, &Opts{Quality: 55}); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if _, err := New(s, s, &Opts{ColorSpace: JPEG + 1}); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	s.Addr = 0x3D
	if _, err := New(s, s, &Opts{Addr: 0x3D, Size: SizeVGA, ColorSpace: JPEG, Quality: 8}); err != nil {
		t.Fatal(err)
	}
	if v := s.Reg(0x3821); v&0x20 == 0 {
		t.Fatal("JPEG not enabled")
	}
}

func TestNew_fail(t *testing.T) {
	i := i2ctest.Record{}
	// The chip ID read fails without a device.
	if _, err := New(&i, nil, nil); err == nil {
		t.Fatal("expected failure")
	}
	if len(i.Ops) < len(bringUp.Regs()) {
		t.Fatal(len(i.Ops))
	}
}

func TestNew_lifecycle(t *testing.T) {
	var log []string
	mclk := &logPin{Pin: &gpiotest.Pin{N: "MCLK"}, log: &log}
	pwdn := &logPin{Pin: &gpiotest.Pin{N: "PWDN"}, log: &log}
	reset := &logPin{Pin: &gpiotest.Pin{N: "RESET"}, log: &log}
	s := ov5640test.New()
	c := &fakeCapturer{log: &log}
	r := &i2ctest.Record{Bus: &orderBus{Bus: s, log: &log}}
	d, err := New(r, c, &Opts{MCLK: mclk, Shutdown: pwdn, Reset: reset})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"MCLK pwm", "RESET Low", "PWDN High", "PWDN Low", "RESET High", "bus"}
	if !reflect.DeepEqual(log, expected) {
		t.Fatal(log)
	}
	if mclk.D != gpio.DutyHalf || mclk.F != 20*physic.MegaHertz {
		t.Fatal(mclk.D, mclk.F)
	}
	log = nil
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	expected = []string{"close", "MCLK halt", "PWDN halt", "RESET halt"}
	if !reflect.DeepEqual(log, expected) {
		t.Fatal(log)
	}
	if _, err := d.Capture(make([]byte, 10)); err == nil {
		t.Fatal("capturer is released")
	}
}

func TestCapture_JPEG(t *testing.T) {
	c := &fakeCapturer{data: []byte{0xFF, 0xD8, 1, 2, 0xFF, 0xD9, 9, 9}}
	d := newDev(&i2ctest.Record{})
	d.capturer = c
	d.colorSpace = JPEG
	b, err := d.Capture(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, c.data[:6]) {
		t.Fatal(b)
	}

	c.data = []byte{0xFF, 0xD8, 1, 2, 3}
	b, err = d.Capture(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 16 {
		t.Fatal(len(b))
	}
}

func TestCapture_raw(t *testing.T) {
	c := &fakeCapturer{data: []byte{0xFF, 0xD9, 1}}
	d := newDev(&i2ctest.Record{})
	d.capturer = c
	b, err := d.Capture(make([]byte, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 8 {
		t.Fatal("only JPEG is trimmed")
	}
	c.err = errors.New("vsync")
	if _, err := d.Capture(b); err != c.err {
		t.Fatal(err)
	}
}

func TestCapture_none(t *testing.T) {
	d := newDev(&i2ctest.Record{})
	if _, err := d.Capture(make([]byte, 8)); err == nil {
		t.Fatal("no capturer")
	}
}

func TestCaptureBufferSize(t *testing.T) {
	s := ov5640test.New()
	d, err := New(s, s, &Opts{Size: SizeQVGA, ColorSpace: RGB565})
	if err != nil {
		t.Fatal(err)
	}
	if n := d.CaptureBufferSize(); n != 153600 {
		t.Fatal(n)
	}
	if err := d.SetColorSpace(Grayscale); err != nil {
		t.Fatal(err)
	}
	if n := d.CaptureBufferSize(); n != 76800 {
		t.Fatal(n)
	}
	if err := d.SetQuality(3); err != nil {
		t.Fatal(err)
	}
	if err := d.SetColorSpace(JPEG); err != nil {
		t.Fatal(err)
	}
	if n := d.CaptureBufferSize(); n != 25600 {
		t.Fatal(n)
	}
	b, err := d.Capture(make([]byte, 320*240))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(b, jpegEOI) {
		t.Fatal("not trimmed")
	}
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if r := img.Bounds(); r.Dx() != 320 || r.Dy() != 240 {
		t.Fatal(r)
	}
}

func TestStrings(t *testing.T) {
	if s := SizeVGA.String(); s != "VGA" {
		t.Fatal(s)
	}
	if s := Size(100).String(); s != "Size(100)" {
		t.Fatal(s)
	}
	if s := JPEG.String(); s != "JPEG" {
		t.Fatal(s)
	}
	if s := AutofocusIdle.String(); s != "Idle" {
		t.Fatal(s)
	}
	if s := AutofocusStatus(1).String(); s != "AutofocusStatus(0x01)" {
		t.Fatal(s)
	}
	if s, err := ParseSize("640x480"); err != nil || s != SizeVGA {
		t.Fatal(s, err)
	}
	if s, err := ParseSize("qvga"); err != nil || s != SizeQVGA {
		t.Fatal(s, err)
	}
	if _, err := ParseSize("641x480"); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if c, err := ParseColorSpace("yuv422"); err != nil || c != YUV422 {
		t.Fatal(c, err)
	}
	if _, err := ParseColorSpace("RGB888"); !errors.Is(err, ErrRange) {
		t.Fatal(err)
	}
	if e, err := ParseEffect("sepia"); err != nil || e != EffectSepia {
		t.Fatal(e, err)
	}
	if w, err := ParseWhiteBalance("Cloudy"); err != nil || w != WhiteBalanceCloudy {
		t.Fatal(w, err)
	}
	if p, err := ParseTestPattern("colorbar"); err != nil || p != PatternColorBar {
		t.Fatal(p, err)
	}
	if _, err := ParseTestPattern("stripes"); err == nil || err.Error() != `ov5640: value out of range: test pattern "stripes"` {
		t.Fatal(err)
	}
}

//

// newDev returns a Dev on b without running the power on sequence.
func newDev(b i2c.Bus) *Dev {
	return &Dev{
		c:       sccb.New(b, 0x3C),
		size:    SizeQQVGA,
		w:       160,
		h:       120,
		quality: 12,
	}
}

// expectOps returns the Playback operations for the writes of l.
func expectOps(l sccb.List) []i2ctest.IO {
	var out []i2ctest.IO
	for _, r := range l.Regs() {
		out = append(out, i2ctest.IO{Addr: 0x3C, W: []byte{byte(r.Addr >> 8), byte(r.Addr), r.Value}})
	}
	return out
}

type fakeCapturer struct {
	data []byte
	err  error
	log  *[]string
}

func (f *fakeCapturer) Capture(b []byte) error {
	if f.err != nil {
		return f.err
	}
	copy(b, f.data)
	return nil
}

func (f *fakeCapturer) Close() error {
	if f.log != nil {
		*f.log = append(*f.log, "close")
	}
	return nil
}

type logPin struct {
	*gpiotest.Pin
	log *[]string
}

func (p *logPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, p.N+" "+l.String())
	return p.Pin.Out(l)
}

func (p *logPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	*p.log = append(*p.log, p.N+" pwm")
	return p.Pin.PWM(duty, f)
}

func (p *logPin) Halt() error {
	*p.log = append(*p.log, p.N+" halt")
	return p.Pin.Halt()
}

// orderBus logs the first bus transaction.
type orderBus struct {
	i2c.Bus
	log  *[]string
	seen bool
}

func (o *orderBus) Tx(addr uint16, w, r []byte) error {
	if !o.seen {
		o.seen = true
		*o.log = append(*o.log, "bus")
	}
	return o.Bus.Tx(addr, w, r)
}
