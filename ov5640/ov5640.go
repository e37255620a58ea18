// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ov5640 controls an OmniVision OV5640 5MP CMOS image sensor.
//
// The sensor is configured over SCCB (see package sccb) and streams pixels
// over an 8 bit parallel DVP port. This package doesn't sample the DVP port
// itself; it drives a Capturer, see package dvp for implementations.
//
// References:
// OV5640 datasheet:
//   https://cdn.sparkfun.com/datasheets/Sensors/LightImaging/OV5640_datasheet.pdf
//   p. 18    SCCB and group write.
//   p. 37-41 PLL and clock tree.
//   p. 44-48 Image windowing, scaling and binning.
//
// OV5640 auto focus camera module application notes:
//   https://www.waveshare.com/w/upload/5/58/OV5640_AF_module_application_notes.pdf
//   p. 10-13 Firmware download and commands.
package ov5640

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/maruel/go-ov5640/ov5640/sccb"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

var (
	// ErrRange is returned when a user parameter is outside its valid domain.
	ErrRange = errors.New("ov5640: value out of range")
	// ErrInvalidParameter is returned when a derived configuration value is
	// outside its bounds.
	ErrInvalidParameter = errors.New("ov5640: invalid parameter")
	// ErrTimeout is returned when the sensor doesn't reach the expected state.
	ErrTimeout = errors.New("ov5640: timed out")
)

// ChipID is the value of the chip ID registers.
const ChipID = 0x5640

// Capturer samples one frame from the DVP port.
//
// Capture must fill b with a complete frame. For JPEG, the frame may be
// shorter than b and the rest of b is garbage.
type Capturer interface {
	io.Closer
	Capture(b []byte) error
}

// Opts is optional parameters for New.
type Opts struct {
	// Addr is the SCCB address. 0 means 0x3C.
	Addr uint16
	// Size is the initial output resolution.
	Size Size
	// ColorSpace is the initial pixel format.
	ColorSpace ColorSpace
	// Quality is the initial JPEG quality. 0 means 12.
	Quality int

	// MCLK, if set, is the pin generating the master clock with PWM.
	MCLK gpio.PinOut
	// MCLKFreq is the master clock frequency. 0 means 20MHz.
	MCLKFreq physic.Frequency
	// Shutdown, if set, is the power down pin (active high).
	Shutdown gpio.PinOut
	// Reset, if set, is the reset pin (active low).
	Reset gpio.PinOut

	// AutofocusFirmware, if set, is loaded in the autofocus MCU.
	AutofocusFirmware []byte
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:       0x3C,
	Size:       SizeQQVGA,
	ColorSpace: RGB565,
	Quality:    12,
	MCLKFreq:   20 * physic.MegaHertz,
}

// Dev is a handle to an OV5640.
//
// All methods are safe to call concurrently; calls are serialized.
type Dev struct {
	mu       sync.Mutex
	c        *sccb.Dev
	capturer Capturer
	mclk     gpio.PinOut
	shutdown gpio.PinOut
	reset    gpio.PinOut

	size       Size
	colorSpace ColorSpace
	w, h       int
	flipX      bool
	flipY      bool
	binning    bool
	scaling    bool
	pattern    TestPattern
	saturation int
	ev         int
	effect     Effect
	wb         WhiteBalance
	quality    int
}

// New powers up the sensor and configures it.
//
// c may be nil, in which case Capture fails. opts may be nil.
//
// On failure, the pins are left as is. Call Halt on a successful return to
// power down.
func New(b i2c.Bus, c Capturer, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.Quality == 0 {
		o.Quality = DefaultOpts.Quality
	}
	if o.MCLKFreq == 0 {
		o.MCLKFreq = DefaultOpts.MCLKFreq
	}
	if int(o.Size) >= len(resolutions) {
		return nil, fmt.Errorf("%w: size %d", ErrRange, o.Size)
	}
	if int(o.ColorSpace) >= len(colorSpaces) {
		return nil, fmt.Errorf("%w: color space %d", ErrRange, o.ColorSpace)
	}
	if o.Quality < 2 || o.Quality > 54 {
		return nil, fmt.Errorf("%w: quality %d", ErrRange, o.Quality)
	}
	d := &Dev{
		mclk:       o.MCLK,
		shutdown:   o.Shutdown,
		reset:      o.Reset,
		size:       SizeQQVGA,
		colorSpace: RGB565,
		w:          int(resolutions[SizeQQVGA].w),
		h:          int(resolutions[SizeQQVGA].h),
		quality:    DefaultOpts.Quality,
	}
	if err := d.powerUp(o.MCLKFreq); err != nil {
		return nil, err
	}
	d.c = sccb.New(b, o.Addr)
	if err := d.c.WriteList(bringUp); err != nil {
		return nil, err
	}
	if id, err := d.c.Get16(fieldChipID); err != nil {
		return nil, err
	} else if id != ChipID {
		// Clones answer with other values and still work.
		glog.Warningf("ov5640: unexpected chip id 0x%04X", id)
	}
	d.capturer = c
	d.colorSpace = o.ColorSpace
	if err := d.setSize(o.Size); err != nil {
		return nil, err
	}
	if err := d.setQuality(o.Quality); err != nil {
		return nil, err
	}
	if len(o.AutofocusFirmware) != 0 {
		if err := d.loadAutofocusFirmware(o.AutofocusFirmware); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("%s ready", d)
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("OV5640{%s, %dx%d %s}", d.c, d.w, d.h, d.colorSpace)
}

// Halt closes the Capturer and releases the pins.
//
// It is safe to call multiple times.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	if d.capturer != nil {
		errs = append(errs, d.capturer.Close())
		d.capturer = nil
	}
	for _, p := range []*gpio.PinOut{&d.mclk, &d.shutdown, &d.reset} {
		if *p != nil {
			errs = append(errs, (*p).Halt())
			*p = nil
		}
	}
	return errors.Join(errs...)
}

// Bounds returns the output frame size.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return image.Rect(0, 0, d.w, d.h)
}

// Size returns the current output resolution.
func (d *Dev) Size() Size {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// ColorSpace returns the current pixel format.
func (d *Dev) ColorSpace() ColorSpace {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.colorSpace
}

// FlipX returns true if the image is mirrored horizontally.
func (d *Dev) FlipX() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flipX
}

// FlipY returns true if the image is flipped vertically.
func (d *Dev) FlipY() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flipY
}

// TestPattern returns the last pattern set.
func (d *Dev) TestPattern() TestPattern {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pattern
}

// Saturation returns the last saturation level set.
func (d *Dev) Saturation() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saturation
}

// ExposureValue returns the last exposure value set.
func (d *Dev) ExposureValue() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ev
}

// Effect returns the last effect set.
func (d *Dev) Effect() Effect {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.effect
}

// WhiteBalance returns the last light mode set.
func (d *Dev) WhiteBalance() WhiteBalance {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wb
}

// Private details.

// powerUp runs the power on sequence, datasheet p. 21.
func (d *Dev) powerUp(f physic.Frequency) error {
	if d.mclk != nil {
		if err := d.mclk.PWM(gpio.DutyHalf, f); err != nil {
			return err
		}
		// Let the clock stabilize.
		time.Sleep(time.Millisecond)
	}
	if d.reset != nil {
		if err := d.reset.Out(gpio.Low); err != nil {
			return err
		}
	}
	if d.shutdown != nil {
		if err := d.shutdown.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
		if err := d.shutdown.Out(gpio.Low); err != nil {
			return err
		}
	}
	if d.reset != nil {
		time.Sleep(time.Millisecond)
		if err := d.reset.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}
