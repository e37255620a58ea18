// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cli holds the flags and the setup shared by the ov5640 tools.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/maruel/go-ov5640/dvp"
	"github.com/maruel/go-ov5640/ov5640"
	"github.com/maruel/go-ov5640/ov5640/sccb"
	"github.com/maruel/go-ov5640/ov5640test"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

// Flags selects the bus, the pins and the frame source.
type Flags struct {
	I2C      string
	Hz       int
	Addr     int
	MCLK     string
	MCLKHz   int
	Shutdown string
	Reset    string
	Firmware string
	Capture  string
	Fake     bool
	Verbose  bool
}

// Register adds the flags to fs.
//
// -v is taken by glog so verbosity of the tool itself is -verbose.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.I2C, "i2c", "", "I²C bus to use; prefix with goi2c: to use /dev/i2c-N directly")
	fs.IntVar(&f.Hz, "hz", 0, "I²C bus speed")
	fs.IntVar(&f.Addr, "addr", 0x3C, "SCCB address")
	fs.StringVar(&f.MCLK, "mclk", "", "pin generating MCLK, if any")
	fs.IntVar(&f.MCLKHz, "mclkhz", 20000000, "MCLK frequency")
	fs.StringVar(&f.Shutdown, "pwdn", "", "PWDN pin, if any")
	fs.StringVar(&f.Reset, "reset", "", "RESET pin, if any")
	fs.StringVar(&f.Firmware, "af", "", "autofocus firmware to load, if any")
	fs.StringVar(&f.Capture, "capture", "", "frame source: file:<path>, serial[:<port>] or v4l2:<path>")
	fs.BoolVar(&f.Fake, "fake", false, "use a simulated sensor")
	fs.BoolVar(&f.Verbose, "verbose", false, "verbose mode")
}

// SetupLog silences the log package unless -verbose was specified.
func (f *Flags) SetupLog() {
	if !f.Verbose {
		log.SetOutput(io.Discard)
	} else {
		// Also route the driver's logs to stderr.
		flag.Set("logtostderr", "true")
	}
	log.SetFlags(log.Lmicroseconds)
}

// Camera is an opened sensor along its resources.
type Camera struct {
	*ov5640.Dev

	bus io.Closer
}

// Close halts the sensor then releases the bus.
func (c *Camera) Close() error {
	err := c.Dev.Halt()
	if c.bus != nil {
		err = errors.Join(err, c.bus.Close())
	}
	return err
}

// Open initializes the host drivers, the bus, the pins and the frame source
// then powers up the sensor.
func (f *Flags) Open(opts *ov5640.Opts) (*Camera, error) {
	o := ov5640.DefaultOpts
	if opts != nil {
		o = *opts
	}
	o.Addr = uint16(f.Addr)
	o.MCLKFreq = physic.Frequency(f.MCLKHz) * physic.Hertz
	if f.Firmware != "" {
		fw, err := os.ReadFile(f.Firmware)
		if err != nil {
			return nil, err
		}
		o.AutofocusFirmware = fw
	}
	if f.Fake {
		s := ov5640test.New()
		s.Addr = o.Addr
		d, err := ov5640.New(s, s, &o)
		if err != nil {
			return nil, err
		}
		log.Printf("using %s", d)
		return &Camera{Dev: d}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := f.openBus(o.Addr)
	if err != nil {
		return nil, err
	}
	if o.MCLK, err = pin(f.MCLK); err != nil {
		bus.Close()
		return nil, err
	}
	if o.Shutdown, err = pin(f.Shutdown); err != nil {
		bus.Close()
		return nil, err
	}
	if o.Reset, err = pin(f.Reset); err != nil {
		bus.Close()
		return nil, err
	}
	c, err := f.openCapturer(o.ColorSpace, o.Size)
	if err != nil {
		bus.Close()
		return nil, err
	}
	d, err := ov5640.New(bus, c, &o)
	if err != nil {
		if c != nil {
			c.Close()
		}
		bus.Close()
		return nil, fmt.Errorf("%w\nIf testing without hardware, use -fake to simulate a camera", err)
	}
	log.Printf("using %s", d)
	return &Camera{Dev: d, bus: bus}, nil
}

func (f *Flags) openBus(addr uint16) (i2c.BusCloser, error) {
	if path, ok := strings.CutPrefix(f.I2C, "goi2c:"); ok {
		return sccb.OpenGoI2C(path, uint8(addr))
	}
	b, err := i2creg.Open(f.I2C)
	if err != nil {
		return nil, err
	}
	if f.Hz != 0 {
		if err := b.SetSpeed(physic.Frequency(f.Hz) * physic.Hertz); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

func (f *Flags) openCapturer(c ov5640.ColorSpace, s ov5640.Size) (ov5640.Capturer, error) {
	kind, arg, _ := strings.Cut(f.Capture, ":")
	switch kind {
	case "":
		return nil, nil
	case "file":
		return dvp.OpenFile(arg)
	case "serial":
		return dvp.OpenSerial(arg)
	case "v4l2":
		return dvp.OpenV4L2(arg, c, s.Width(), s.Height())
	default:
		return nil, fmt.Errorf("unknown -capture %q", f.Capture)
	}
}

func pin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}
