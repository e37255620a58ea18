// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"bytes"
	"errors"

	"github.com/golang/glog"
)

var jpegEOI = []byte{0xFF, 0xD9}

// Capture reads one frame into b.
//
// With JPEG, the returned slice ends right after the End Of Image marker. If
// no marker is found, b is returned as is and the frame is likely truncated;
// retry with a larger buffer.
//
// For other color spaces, b is returned as is. Use CaptureBufferSize to size
// b.
func (d *Dev) Capture(b []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capturer == nil {
		return nil, errors.New("ov5640: no capturer")
	}
	if err := d.capturer.Capture(b); err != nil {
		return nil, err
	}
	if d.colorSpace != JPEG {
		return b, nil
	}
	if i := bytes.Index(b, jpegEOI); i != -1 {
		return b[:i+2], nil
	}
	glog.V(2).Infof("ov5640: no EOI in %d bytes", len(b))
	return b, nil
}

// CaptureBufferSize returns the buffer size for the current size and color
// space.
//
// For JPEG, it is a heuristic based on the quality, not a bound.
func (d *Dev) CaptureBufferSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.colorSpace {
	case JPEG:
		return d.w * d.h / d.quality
	case Grayscale:
		return d.w * d.h
	default:
		return d.w * d.h * 2
	}
}
