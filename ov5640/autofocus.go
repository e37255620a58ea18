// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/maruel/go-ov5640/ov5640/sccb"
)

// AutofocusStatus is the state of the autofocus MCU.
type AutofocusStatus uint8

// Valid values for AutofocusStatus.
const (
	AutofocusFocusing    AutofocusStatus = 0x00
	AutofocusFocused     AutofocusStatus = 0x10
	AutofocusIdle        AutofocusStatus = 0x70
	AutofocusStartup     AutofocusStatus = 0x7E
	AutofocusFirmwareBad AutofocusStatus = 0x7F
)

type afCommand uint8

const (
	afTrigger    afCommand = 0x03
	afContinuous afCommand = 0x04
	afRelease    afCommand = 0x08
	afSetVCMStep afCommand = 0x1A
	afGetVCMStep afCommand = 0x1B
)

// Overridden in tests.
var (
	pollInterval = 10 * time.Millisecond
	pollTries    = 100
)

// finalizeFirmware starts the autofocus MCU after the firmware is written.
var finalizeFirmware = sccb.Join(
	sccb.Seq(regAFCmdMain, 0, 0, 0, 0, 0, 0, 0, uint8(AutofocusFirmwareBad)),
	sccb.List{sccb.W(regSystemReset00, 0x00)},
)

// LoadAutofocusFirmware loads the autofocus MCU firmware and waits for it
// to be idle.
//
// The firmware is distributed by OmniVision as a binary blob.
func (d *Dev) LoadAutofocusFirmware(fw []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadAutofocusFirmware(fw)
}

// AutofocusStatus returns the state of the autofocus MCU.
func (d *Dev) AutofocusStatus() (AutofocusStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.c.Read(regAFFWStatus)
	return AutofocusStatus(v), err
}

// Autofocus runs a single focus pass.
//
// It returns the focus result of the 5 zones. If all are zero, focus failed.
func (d *Dev) Autofocus() ([5]uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zones [5]uint8
	if err := d.afCommand(afRelease); err != nil {
		return zones, err
	}
	if err := d.afCommand(afTrigger); err != nil {
		return zones, err
	}
	for i := range zones {
		v, err := d.c.Read(regAFCmdPara0 + uint16(i))
		if err != nil {
			return zones, err
		}
		zones[i] = v
	}
	glog.V(1).Infof("ov5640: focus zones %v", zones)
	return zones, nil
}

// ContinuousAutofocus makes the MCU refocus when the scene changes.
func (d *Dev) ContinuousAutofocus() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.afCommand(afContinuous)
}

// AutofocusVCMStep returns the voice coil motor position.
func (d *Dev) AutofocusVCMStep() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.afCommand(afGetVCMStep); err != nil {
		return 0, err
	}
	return d.c.Read(regAFCmdPara4)
}

// SetAutofocusVCMStep moves the voice coil motor to an absolute position.
func (d *Dev) SetAutofocusVCMStep(step uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.c.Write(regAFCmdPara3, 0); err != nil {
		return err
	}
	if err := d.c.Write(regAFCmdPara4, step); err != nil {
		return err
	}
	return d.afCommand(afSetVCMStep)
}

// Private details.

func (d *Dev) loadAutofocusFirmware(fw []byte) error {
	if len(fw) == 0 || len(fw) > 0x8000 {
		return fmt.Errorf("%w: firmware of %d bytes", ErrRange, len(fw))
	}
	// Hold the MCU in reset.
	if err := d.c.Write(regSystemReset00, 0x20); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	for i, b := range fw {
		if err := d.c.Write(afFirmwareBase+uint16(i), b); err != nil {
			return err
		}
	}
	if err := d.c.WriteList(finalizeFirmware); err != nil {
		return err
	}
	for i := 0; i < pollTries; i++ {
		v, err := d.c.Read(regAFFWStatus)
		if err != nil {
			return err
		}
		if AutofocusStatus(v) == AutofocusIdle {
			glog.V(1).Infof("ov5640: autofocus firmware loaded, %d bytes", len(fw))
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("%w: autofocus firmware didn't start", ErrTimeout)
}

// afCommand sends a command to the autofocus MCU and waits for the
// acknowledgement.
func (d *Dev) afCommand(c afCommand) error {
	if err := d.c.Write(regAFCmdAck, 0x01); err != nil {
		return err
	}
	if err := d.c.Write(regAFCmdMain, uint8(c)); err != nil {
		return err
	}
	for i := 0; i < pollTries; i++ {
		v, err := d.c.Read(regAFCmdAck)
		if err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("%w: autofocus command 0x%02X", ErrTimeout, uint8(c))
}
