// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dvp implements frame sources for the OV5640 parallel DVP port.
//
// The DVP port (8 data lines, PCLK, VSYNC and HREF) can't be sampled by a
// general purpose host directly. Each type in this package reads frames
// from a peripheral that does: a character device, a microcontroller bridge
// over USB or a V4L2 capture driver. They all implement ov5640.Capturer.
package dvp

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrShortFrame is returned when the source ends before a frame is
// complete.
var ErrShortFrame = errors.New("dvp: short frame")

// Reader reads frames of a fixed length from a stream.
//
// It is meant for drivers exposing the DVP port as a character device or a
// FIFO, where each read returns the next bytes of the frame stream.
type Reader struct {
	R io.Reader
}

// OpenFile opens a character device or FIFO.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{R: f}, nil
}

// Capture implements ov5640.Capturer.
func (r *Reader) Capture(b []byte) error {
	n, err := io.ReadFull(r.R, b)
	if err == io.ErrUnexpectedEOF || (err == io.EOF && len(b) != 0) {
		return fmt.Errorf("%w: %d/%d bytes", ErrShortFrame, n, len(b))
	}
	return err
}

// Close implements ov5640.Capturer.
func (r *Reader) Close() error {
	if c, ok := r.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// fill copies the frame f into b and clears the rest of b.
//
// The stale bytes of a previous frame could otherwise contain an EOI marker.
func fill(b, f []byte) int {
	n := copy(b, f)
	clear(b[n:])
	return n
}
