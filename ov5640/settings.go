// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"fmt"

	"github.com/maruel/go-ov5640/ov5640/sccb"
)

// SetSaturation sets the color saturation in [-4, 4].
func (d *Dev) SetSaturation(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level < -4 || level > 4 {
		return fmt.Errorf("%w: saturation %d", ErrRange, level)
	}
	row := saturationLevels[levelIndex(level, len(saturationLevels))]
	if err := d.c.WriteList(sccb.Seq(regColorMatrix, row[:]...)); err != nil {
		return err
	}
	d.saturation = level
	return nil
}

// SetEffect applies a special digital effect.
func (d *Dev) SetEffect(e Effect) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(e) >= len(effects) {
		return fmt.Errorf("%w: effect %d", ErrRange, e)
	}
	l := make(sccb.List, len(effectRegs))
	for i, r := range effectRegs {
		l[i] = sccb.W(r, effects[e][i])
	}
	if err := d.c.WriteList(l); err != nil {
		return err
	}
	d.effect = e
	return nil
}

// SetExposureValue sets the auto exposure target in [-3, 3].
func (d *Dev) SetExposureValue(ev int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ev < -3 || ev > 3 {
		return fmt.Errorf("%w: exposure value %d", ErrRange, ev)
	}
	row := evLevels[levelIndex(ev, len(evLevels))]
	l := make(sccb.List, len(aeTarget))
	for i, r := range aeTarget {
		l[i] = sccb.W(r, row[i])
	}
	if err := d.c.WriteList(l); err != nil {
		return err
	}
	d.ev = ev
	return nil
}

// SetWhiteBalance sets the light mode.
//
// The gains are committed together with a group write.
func (d *Dev) SetWhiteBalance(wb WhiteBalance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(wb) >= len(lightModes) {
		return fmt.Errorf("%w: white balance %d", ErrRange, wb)
	}
	l := make(sccb.List, len(lightRegs))
	for i, r := range lightRegs {
		l[i] = sccb.W(r, lightModes[wb][i])
	}
	if err := d.groupWrite(l); err != nil {
		return err
	}
	d.wb = wb
	return nil
}

// SetQuality sets the JPEG quantization scale in [2, 54].
//
// Lower is better quality and larger frames.
func (d *Dev) SetQuality(q int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setQuality(q)
}

// Quality returns the JPEG quantization scale.
func (d *Dev) Quality() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quality
}

// SetBrightness sets the brightness offset in [-4, 4].
func (d *Dev) SetBrightness(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level < -4 || level > 4 {
		return fmt.Errorf("%w: brightness %d", ErrRange, level)
	}
	sign := uint8(0x01)
	abs := level
	if level < 0 {
		sign = 0x09
		abs = -level
	}
	return d.groupWrite(sccb.List{
		sccb.W(regSDECtrl7, uint8(abs)<<4),
		sccb.W(regSDECtrl8, sign),
	})
}

// Brightness reads back the brightness offset.
func (d *Dev) Brightness() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.c.Read(regSDECtrl7)
	if err != nil {
		return 0, err
	}
	sign, err := d.c.Read(regSDECtrl8)
	if err != nil {
		return 0, err
	}
	level := int(v >> 4)
	if sign&0x08 != 0 {
		level = -level
	}
	return level, nil
}

// SetContrast sets the contrast in [-3, 3].
func (d *Dev) SetContrast(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level < -3 || level > 3 {
		return fmt.Errorf("%w: contrast %d", ErrRange, level)
	}
	row := contrastLevels[levelIndex(level, len(contrastLevels))]
	return d.groupWrite(sccb.List{
		sccb.W(regSDECtrl6, row[0]),
		sccb.W(regSDECtrl5, row[1]),
	})
}

// Contrast reads back the contrast.
//
// It returns ErrRange if the register holds a value not set by SetContrast.
func (d *Dev) Contrast() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.c.Read(regSDECtrl6)
	if err != nil {
		return 0, err
	}
	for level := -3; level <= 3; level++ {
		if contrastLevels[levelIndex(level, len(contrastLevels))][0] == v {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: contrast register 0x%02X", ErrRange, v)
}

// SetNightMode enables the automatic frame rate reduction in low light.
func (d *Dev) SetNightMode(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v uint8
	if on {
		v = 1
	}
	return d.c.Set(fieldNightMode, v)
}

// NightMode returns true if night mode is enabled.
func (d *Dev) NightMode() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.c.Get(fieldNightMode)
	return v != 0, err
}

// ChipID reads the chip ID registers. It is ChipID for a genuine OV5640.
func (d *Dev) ChipID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.c.Get16(fieldChipID)
}

// Private details.

func (d *Dev) setQuality(q int) error {
	if q < 2 || q > 54 {
		return fmt.Errorf("%w: quality %d", ErrRange, q)
	}
	if err := d.c.Write(regCompression07, uint8(q)&0x3F); err != nil {
		return err
	}
	d.quality = q
	return nil
}

// groupWrite writes l in group 3 and launches it, so the sensor applies all
// the values on the same frame.
func (d *Dev) groupWrite(l sccb.List) error {
	if err := d.c.Write(regGroupAccess, groupStart); err != nil {
		return err
	}
	if err := d.c.WriteList(l); err != nil {
		return err
	}
	if err := d.c.Write(regGroupAccess, groupEnd); err != nil {
		return err
	}
	return d.c.Write(regGroupAccess, groupLaunch)
}
