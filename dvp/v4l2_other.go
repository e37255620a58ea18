// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package dvp

import (
	"errors"

	"github.com/maruel/go-ov5640/ov5640"
)

// V4L2 is only supported on linux.
type V4L2 struct {
	Timeout uint32
}

// OpenV4L2 is only supported on linux.
func OpenV4L2(path string, c ov5640.ColorSpace, w, h int) (*V4L2, error) {
	return nil, errors.New("dvp: V4L2 is only supported on linux")
}

// Capture implements ov5640.Capturer.
func (v *V4L2) Capture(b []byte) error {
	return errors.New("dvp: V4L2 is only supported on linux")
}

// Close implements ov5640.Capturer.
func (v *V4L2) Close() error {
	return nil
}
