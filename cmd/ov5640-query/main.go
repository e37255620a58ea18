// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ov5640-query uses the SCCB interface to query the sensor internal state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/maruel/go-ov5640/internal/cli"
)

func mainImpl() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	focus := flag.Bool("focus", false, "run a single autofocus pass; requires -af")
	flag.Parse()
	f.SetupLog()

	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	dev, err := f.Open(nil)
	if err != nil {
		return err
	}
	defer dev.Close()
	id, err := dev.ChipID()
	if err != nil {
		return err
	}
	fmt.Printf("ChipID:      0x%04X\n", id)
	fmt.Printf("Mode:        %s %dx%d %s\n", dev.Size(), dev.Bounds().Dx(), dev.Bounds().Dy(), dev.ColorSpace())
	night, err := dev.NightMode()
	if err != nil {
		return err
	}
	fmt.Printf("NightMode:   %t\n", night)
	b, err := dev.Brightness()
	if err != nil {
		return err
	}
	fmt.Printf("Brightness:  %d\n", b)
	c, err := dev.Contrast()
	if err != nil {
		return err
	}
	fmt.Printf("Contrast:    %d\n", c)
	fmt.Printf("Quality:     %d\n", dev.Quality())
	if f.Firmware == "" {
		return nil
	}
	status, err := dev.AutofocusStatus()
	if err != nil {
		return err
	}
	fmt.Printf("Autofocus:   %s\n", status)
	step, err := dev.AutofocusVCMStep()
	if err != nil {
		return err
	}
	fmt.Printf("VCMStep:     %d\n", step)
	if *focus {
		zones, err := dev.Autofocus()
		if err != nil {
			return err
		}
		fmt.Printf("Zones:       %v\n", zones)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nov5640-query: %s.\n", err)
		os.Exit(1)
	}
}
