// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ov5640test implements a fake OV5640.
//
// Sensor emulates the register file, the autofocus MCU and the DVP port well
// enough to run the ov5640 driver and the tools without a device.
package ov5640test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math/rand"
	"sync"
	"time"

	"periph.io/x/periph/conn/physic"
)

// Sensor is a fake OV5640.
//
// It implements i2c.Bus and ov5640.Capturer.
type Sensor struct {
	// Addr is the SCCB address it answers to. 0 means 0x3C.
	Addr uint16
	// Zones is reported by the autofocus MCU after a focus pass.
	Zones [5]uint8
	// Stuck makes the autofocus MCU never acknowledge anything.
	Stuck bool
	// FrameDelay is the time Capture takes.
	FrameDelay time.Duration

	mu       sync.Mutex
	mem      [0x10000]byte
	fwLoaded bool
	vcm      uint8
	frames   int
	closed   bool
	noise    *noise
}

// New returns a Sensor in its power on state.
func New() *Sensor {
	s := &Sensor{Zones: [5]uint8{1, 1, 1, 0, 0}, noise: makeNoise()}
	s.reset()
	return s
}

func (s *Sensor) String() string {
	return "ov5640test"
}

// Tx implements i2c.Bus.
func (s *Sensor) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != s.addr() {
		return fmt.Errorf("ov5640test: no device at 0x%02X", addr)
	}
	if len(w) < 2 {
		return errors.New("ov5640test: missing register address")
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	for i, v := range w[2:] {
		s.write(reg+uint16(i), v)
	}
	for i := range r {
		r[i] = s.mem[reg+uint16(i)]
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (s *Sensor) SetSpeed(f physic.Frequency) error {
	return nil
}

// Reg returns the current value of a register.
func (s *Sensor) Reg(reg uint16) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[reg]
}

// Frames returns the number of frames captured.
func (s *Sensor) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Capture implements ov5640.Capturer.
//
// It renders a frame according to the output size and format registers. A
// JPEG frame larger than b is truncated, like the hardware does.
func (s *Sensor) Capture(b []byte) error {
	time.Sleep(s.FrameDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("ov5640test: closed")
	}
	w := int(s.mem16(0x3808))
	h := int(s.mem16(0x380A))
	if w == 0 || h == 0 {
		return errors.New("ov5640test: output size not configured")
	}
	s.frames++
	s.noise.update()
	img := image.NewGray(image.Rect(0, 0, w, h))
	if s.mem[0x503D]&0x80 != 0 {
		renderBars(img)
	} else {
		s.noise.render(img)
	}
	switch {
	case s.mem[0x3821]&0x20 != 0:
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(s.mem[0x4407] & 0x3F)}); err != nil {
			return err
		}
		n := copy(b, buf.Bytes())
		for i := n; i < len(b); i++ {
			b[i] = 0
		}
		return nil
	case s.mem[0x4300] == 0x10:
		if len(b) < w*h {
			return fmt.Errorf("ov5640test: %w: %d < %d", io.ErrShortBuffer, len(b), w*h)
		}
		copy(b, img.Pix)
		return nil
	case s.mem[0x501F] == 0x01:
		if len(b) < w*h*2 {
			return fmt.Errorf("ov5640test: %w: %d < %d", io.ErrShortBuffer, len(b), w*h*2)
		}
		for i, y := range img.Pix {
			v := uint16(y>>3)<<11 | uint16(y>>2)<<5 | uint16(y>>3)
			b[2*i] = byte(v)
			b[2*i+1] = byte(v >> 8)
		}
		return nil
	default:
		if len(b) < w*h*2 {
			return fmt.Errorf("ov5640test: %w: %d < %d", io.ErrShortBuffer, len(b), w*h*2)
		}
		for i, y := range img.Pix {
			b[2*i] = y
			b[2*i+1] = 0x80
		}
		return nil
	}
}

// Close implements ov5640.Capturer.
func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

//

func (s *Sensor) addr() uint16 {
	if s.Addr == 0 {
		return 0x3C
	}
	return s.Addr
}

func (s *Sensor) reset() {
	s.mem = [0x10000]byte{}
	s.mem[0x300A] = 0x56
	s.mem[0x300B] = 0x40
	s.mem[0x3029] = 0x7F
	s.mem[0x4407] = 0x0C
	s.fwLoaded = false
}

func (s *Sensor) mem16(reg uint16) uint16 {
	return uint16(s.mem[reg])<<8 | uint16(s.mem[reg+1])
}

// write updates a register and emulates its side effects.
func (s *Sensor) write(reg uint16, v uint8) {
	switch {
	case reg == 0x3008 && v&0x80 != 0:
		s.reset()
		v &^= 0x80
	case reg >= 0x8000:
		s.fwLoaded = true
	case reg == 0x3000 && v == 0 && s.fwLoaded && !s.Stuck:
		s.mem[reg] = v
		s.mem[0x3029] = 0x70
		return
	case reg == 0x3022:
		s.mem[reg] = v
		s.command(v)
		return
	}
	s.mem[reg] = v
}

// command emulates the autofocus MCU.
func (s *Sensor) command(c uint8) {
	if s.Stuck || s.mem[0x3029] == 0x7F {
		return
	}
	switch c {
	case 0x03:
		s.mem[0x3029] = 0x10
		copy(s.mem[0x3024:0x3029], s.Zones[:])
	case 0x04:
		s.mem[0x3029] = 0x00
	case 0x08:
		s.mem[0x3029] = 0x70
	case 0x1A:
		s.vcm = s.mem[0x3028]
	case 0x1B:
		s.mem[0x3028] = s.vcm
	}
	s.mem[0x3023] = 0
}

// jpegQuality maps the sensor quantization scale to image/jpeg quality.
func jpegQuality(q uint8) int {
	v := 100 - int(q)*2
	if v < 1 {
		v = 1
	}
	return v
}

func renderBars(img *image.Gray) {
	w := img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8(255 - (x*8/w)*32)
		}
	}
}

type vector struct {
	intensity float64
	x         float64
	y         float64
}

// noise is cheezy but gets us going for testing without a device.
//
// Coordinates are relative to the frame size.
type noise struct {
	rand    *rand.Rand
	vectors []vector
}

func makeNoise() *noise {
	n := &noise{rand: rand.New(rand.NewSource(0))}
	n.vectors = make([]vector, 10)
	for i := range n.vectors {
		n.vectors[i].intensity = n.rand.NormFloat64() * 0.2
		n.vectors[i].x = n.rand.NormFloat64()*0.2 + 0.5
		n.vectors[i].y = n.rand.NormFloat64()*0.2 + 0.5
	}
	return n
}

func (n *noise) update() {
	for i := range n.vectors {
		n.vectors[i].intensity += n.rand.NormFloat64() * 0.002
		n.vectors[i].x += n.rand.NormFloat64() * 0.002
		n.vectors[i].y += n.rand.NormFloat64() * 0.002
	}
}

func (n *noise) render(img *image.Gray) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		fy := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			fx := float64(x) / float64(w)
			value := 128.
			for _, vect := range n.vectors {
				distance := (vect.x-fx)*(vect.x-fx) + (vect.y-fy)*(vect.y-fy) + 0.01
				value += vect.intensity / distance
			}
			if value > 255 {
				value = 255
			}
			if value < 0 {
				value = 0
			}
			img.Pix[y*img.Stride+x] = uint8(value)
		}
	}
}
