// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"fmt"

	"github.com/golang/glog"
)

// SetSize changes the output resolution.
//
// The sensing window, the ISP scaler, binning and the PLL are reconfigured.
func (d *Dev) SetSize(s Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setSize(s)
}

// SetColorSpace changes the output pixel format.
func (d *Dev) SetColorSpace(c ColorSpace) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(c) >= len(colorSpaces) {
		return fmt.Errorf("%w: color space %d", ErrRange, c)
	}
	d.colorSpace = c
	return d.setSize(d.size)
}

// SetFlipX mirrors the image horizontally.
func (d *Dev) SetFlipX(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flipX = on
	return d.setImageOptions()
}

// SetFlipY flips the image vertically.
func (d *Dev) SetFlipY(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flipY = on
	return d.setImageOptions()
}

// SetTestPattern replaces the image with a generated pattern.
//
// PatternNone returns to normal operation.
func (d *Dev) SetTestPattern(p TestPattern) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v uint8
	switch p {
	case PatternNone:
	case PatternColorBar, PatternRandom, PatternSquare, PatternBlack:
		v = testPatternEnable | uint8(p-1)
	default:
		return fmt.Errorf("%w: test pattern %d", ErrRange, p)
	}
	if err := d.c.Write(regPreISPTest, v); err != nil {
		return err
	}
	d.pattern = p
	return nil
}

// SetColorBar enables or disables the color bar test pattern.
func (d *Dev) SetColorBar(on bool) error {
	p := PatternNone
	if on {
		p = PatternColorBar
	}
	return d.SetTestPattern(p)
}

// Private details.

// setSize writes the sensor window, output size, timing, image options, PLL
// and color space for s.
func (d *Dev) setSize(s Size) error {
	if int(s) >= len(resolutions) {
		return fmt.Errorf("%w: size %d", ErrRange, s)
	}
	r := resolutions[s]
	win := windows[r.aspect]
	w, h := r.w, r.h
	// Below a quarter of the window, sum 2x2 pixels.
	binning := w <= win.maxW/2 && h <= win.maxH/2
	// The ISP scaler is bypassed for the full window and for its binned half.
	scaling := !(w == win.maxW && h == win.maxH) && !(w == win.maxW/2 && h == win.maxH/2)
	p := pllFor(s, d.colorSpace)
	pl, err := p.regs()
	if err != nil {
		return err
	}
	d.size = s
	d.w, d.h = int(w), int(h)
	d.binning = binning
	d.scaling = scaling
	glog.V(1).Infof("ov5640: %dx%d %s binning=%t scaling=%t %s", w, h, d.colorSpace, binning, scaling, p)

	for _, x := range [...]struct{ reg, v uint16 }{
		{regXAddrStart, win.startX},
		{regYAddrStart, win.startY},
		{regXAddrEnd, win.endX},
		{regYAddrEnd, win.endY},
		{regXOutputSize, w},
		{regYOutputSize, h},
	} {
		if err := d.c.Write16(x.reg, x.v); err != nil {
			return err
		}
	}
	tx, ty, ox, oy := win.totalX, win.totalY, win.offX, win.offY
	if binning {
		if w > 920 {
			tx -= 200
		} else {
			tx = 2060
		}
		ty /= 2
		ox /= 2
		oy /= 2
	}
	for _, x := range [...]struct{ reg, v uint16 }{
		{regXTotalSize, tx},
		{regYTotalSize, ty},
		{regXOffset, ox},
		{regYOffset, oy},
	} {
		if err := d.c.Write16(x.reg, x.v); err != nil {
			return err
		}
	}
	if err := d.c.SetBits(regISPCtrl01, scaleEnable, scaling); err != nil {
		return err
	}
	if err := d.setImageOptions(); err != nil {
		return err
	}
	if err := d.c.WriteList(pl); err != nil {
		return err
	}
	return d.c.WriteList(colorSpaces[d.colorSpace])
}

// setImageOptions writes the flip, mirror, binning and JPEG bits.
func (d *Dev) setImageOptions() error {
	var tc20, tc21 uint8
	var i int
	if d.colorSpace == JPEG {
		tc21 |= 0x20
	}
	if d.binning {
		tc20 |= 0x01
		tc21 |= 0x01
		i |= 4
	} else {
		tc20 |= 0x40
	}
	if d.flipY {
		tc20 |= 0x06
		i |= 1
	}
	if d.flipX {
		tc21 |= 0x06
		i |= 2
	}
	if err := d.c.Write(regTimingTC20, tc20); err != nil {
		return err
	}
	if err := d.c.Write(regTimingTC21, tc21); err != nil {
		return err
	}
	if err := d.c.Write(regBinningMode, binningModes[i]); err != nil {
		return err
	}
	inc := uint8(0x11)
	ctrl := uint8(0x10)
	if d.binning {
		inc = 0x31
		ctrl = 0x0B
	}
	if err := d.c.Write(regBinningCtrl, ctrl); err != nil {
		return err
	}
	if err := d.c.Write(regXIncrement, inc); err != nil {
		return err
	}
	return d.c.Write(regYIncrement, inc)
}
