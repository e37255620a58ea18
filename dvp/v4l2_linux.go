// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dvp

import (
	"errors"
	"fmt"

	"github.com/blackjack/webcam"
	"github.com/golang/glog"
	"github.com/maruel/go-ov5640/ov5640"
)

// V4L2 captures frames from a Video4Linux2 device.
//
// This is the case when a SoC camera interface (e.g. the i.MX CSI or the
// Allwinner CSI) samples the DVP port. The sensor must not be claimed by a
// kernel driver, since this process configures it over SCCB.
type V4L2 struct {
	// Timeout is the time to wait for a frame, in seconds.
	Timeout uint32

	cam *webcam.Webcam
}

// OpenV4L2 opens the capture device at path and starts streaming frames of
// w x h pixels in color space c.
func OpenV4L2(path string, c ov5640.ColorSpace, w, h int) (*V4L2, error) {
	f, err := pixelFormat(c)
	if err != nil {
		return nil, err
	}
	cam, err := webcam.Open(path)
	if err != nil {
		return nil, err
	}
	got, gw, gh, err := cam.SetImageFormat(f, uint32(w), uint32(h))
	if err != nil {
		cam.Close()
		return nil, err
	}
	if got != f || int(gw) != w || int(gh) != h {
		cam.Close()
		return nil, fmt.Errorf("dvp: %s doesn't support %s %dx%d; got %dx%d", path, c, w, h, gw, gh)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, err
	}
	glog.V(1).Infof("dvp: %s streaming %s %dx%d", path, c, w, h)
	return &V4L2{Timeout: 5, cam: cam}, nil
}

// Capture implements ov5640.Capturer.
func (v *V4L2) Capture(b []byte) error {
	for {
		err := v.cam.WaitForFrame(v.Timeout)
		var t *webcam.Timeout
		if errors.As(err, &t) {
			return errors.New("dvp: timed out waiting for a frame")
		}
		if err != nil {
			return err
		}
		frame, err := v.cam.ReadFrame()
		if err != nil {
			return err
		}
		if len(frame) == 0 {
			// Spurious wake up.
			continue
		}
		if n := fill(b, frame); n < len(frame) {
			glog.Warningf("dvp: frame truncated to %d/%d bytes", n, len(frame))
		}
		return nil
	}
}

// Close implements ov5640.Capturer.
func (v *V4L2) Close() error {
	err1 := v.cam.StopStreaming()
	err2 := v.cam.Close()
	return errors.Join(err1, err2)
}

func pixelFormat(c ov5640.ColorSpace) (webcam.PixelFormat, error) {
	switch c {
	case ov5640.RGB565:
		return fourcc("RGBP"), nil
	case ov5640.YUV422:
		return fourcc("YUYV"), nil
	case ov5640.Grayscale:
		return fourcc("GREY"), nil
	case ov5640.JPEG:
		return fourcc("JPEG"), nil
	default:
		return 0, fmt.Errorf("dvp: unknown color space %s", c)
	}
}

func fourcc(s string) webcam.PixelFormat {
	return webcam.PixelFormat(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24)
}
