// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pixfmt converts raw frames captured from an OV5640 into images.
package pixfmt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/maruel/go-ov5640/ov5640"
)

// ErrShortBuffer is returned when the frame is smaller than its dimensions.
var ErrShortBuffer = errors.New("pixfmt: buffer too short")

// RGB565 implements image.Image over a little endian RGB565 frame without
// copying it.
type RGB565 struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewRGB565 wraps b as a w x h image.
func NewRGB565(b []byte, w, h int) (*RGB565, error) {
	if len(b) < w*h*2 {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(b), w*h*2)
	}
	return &RGB565{Pix: b, Stride: 2 * w, Rect: image.Rect(0, 0, w, h)}, nil
}

func (r *RGB565) ColorModel() color.Model {
	return color.RGBAModel
}

func (r *RGB565) Bounds() image.Rectangle {
	return r.Rect
}

func (r *RGB565) At(x, y int) color.Color {
	return r.RGBAAt(x, y)
}

// RGBAAt expands the 5-6-5 bits to 8 bits per channel.
func (r *RGB565) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(r.Rect)) {
		return color.RGBA{}
	}
	i := (y-r.Rect.Min.Y)*r.Stride + (x-r.Rect.Min.X)*2
	v := uint16(r.Pix[i]) | uint16(r.Pix[i+1])<<8
	r5 := uint8(v >> 11)
	g6 := uint8(v>>5) & 0x3F
	b5 := uint8(v) & 0x1F
	return color.RGBA{R: r5<<3 | r5>>2, G: g6<<2 | g6>>4, B: b5<<3 | b5>>2, A: 0xFF}
}

// YUV422 converts a YUYV frame to a 4:2:2 YCbCr image.
//
// w must be even.
func YUV422(b []byte, w, h int) (*image.YCbCr, error) {
	if w&1 != 0 {
		return nil, fmt.Errorf("pixfmt: odd width %d", w)
	}
	if len(b) < w*h*2 {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(b), w*h*2)
	}
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	for i := range img.Cb {
		ii := i * 4
		img.Y[i*2] = b[ii]
		img.Y[i*2+1] = b[ii+2]
		img.Cb[i] = b[ii+1]
		img.Cr[i] = b[ii+3]
	}
	return img, nil
}

// Gray wraps an 8 bit luminance frame without copying it.
func Gray(b []byte, w, h int) (*image.Gray, error) {
	if len(b) < w*h {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(b), w*h)
	}
	return &image.Gray{Pix: b[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}, nil
}

// Decode converts a frame returned by ov5640.Dev.Capture.
func Decode(b []byte, c ov5640.ColorSpace, w, h int) (image.Image, error) {
	switch c {
	case ov5640.RGB565:
		return NewRGB565(b, w, h)
	case ov5640.YUV422:
		return YUV422(b, w, h)
	case ov5640.Grayscale:
		return Gray(b, w, h)
	case ov5640.JPEG:
		return jpeg.Decode(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("pixfmt: unknown color space %s", c)
	}
}
