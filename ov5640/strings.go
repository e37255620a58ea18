// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"fmt"
	"strings"
)

var sizeNames = [...]string{
	"96x96", "QQVGA", "QCIF", "HQVGA", "240x240", "QVGA", "CIF", "HVGA", "VGA",
	"SVGA", "XGA", "HD", "SXGA", "UXGA", "QHD", "WQXGA", "PFHD", "QSXGA",
}

func (s Size) String() string {
	if int(s) < len(sizeNames) {
		return sizeNames[s]
	}
	return fmt.Sprintf("Size(%d)", s)
}

// Width returns the width in pixels, or 0 if s is invalid.
func (s Size) Width() int {
	if int(s) < len(resolutions) {
		return int(resolutions[s].w)
	}
	return 0
}

// Height returns the height in pixels, or 0 if s is invalid.
func (s Size) Height() int {
	if int(s) < len(resolutions) {
		return int(resolutions[s].h)
	}
	return 0
}

// ParseSize returns the Size named n, either by name ("VGA") or by
// dimensions ("640x480").
func ParseSize(n string) (Size, error) {
	for i, name := range sizeNames {
		s := Size(i)
		if strings.EqualFold(n, name) || n == fmt.Sprintf("%dx%d", s.Width(), s.Height()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: size %q", ErrRange, n)
}

var colorSpaceNames = [...]string{"RGB565", "YUV422", "Grayscale", "JPEG"}

func (c ColorSpace) String() string {
	if int(c) < len(colorSpaceNames) {
		return colorSpaceNames[c]
	}
	return fmt.Sprintf("ColorSpace(%d)", c)
}

// ParseColorSpace returns the ColorSpace named n, case insensitive.
func ParseColorSpace(n string) (ColorSpace, error) {
	i, err := parseName(colorSpaceNames[:], "color space", n)
	return ColorSpace(i), err
}

var effectNames = [...]string{"Normal", "Negative", "Grayscale", "RedTint", "GreenTint", "BlueTint", "Sepia"}

func (e Effect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("Effect(%d)", e)
}

// ParseEffect returns the Effect named n, case insensitive.
func ParseEffect(n string) (Effect, error) {
	i, err := parseName(effectNames[:], "effect", n)
	return Effect(i), err
}

var whiteBalanceNames = [...]string{"Auto", "Sunny", "Fluorescent", "Cloudy", "Incandescent"}

func (w WhiteBalance) String() string {
	if int(w) < len(whiteBalanceNames) {
		return whiteBalanceNames[w]
	}
	return fmt.Sprintf("WhiteBalance(%d)", w)
}

// ParseWhiteBalance returns the WhiteBalance named n, case insensitive.
func ParseWhiteBalance(n string) (WhiteBalance, error) {
	i, err := parseName(whiteBalanceNames[:], "white balance", n)
	return WhiteBalance(i), err
}

var testPatternNames = [...]string{"None", "ColorBar", "Random", "Square", "Black"}

func (t TestPattern) String() string {
	if int(t) < len(testPatternNames) {
		return testPatternNames[t]
	}
	return fmt.Sprintf("TestPattern(%d)", t)
}

// ParseTestPattern returns the TestPattern named n, case insensitive.
func ParseTestPattern(n string) (TestPattern, error) {
	i, err := parseName(testPatternNames[:], "test pattern", n)
	return TestPattern(i), err
}

func (a AutofocusStatus) String() string {
	switch a {
	case AutofocusFocusing:
		return "Focusing"
	case AutofocusFocused:
		return "Focused"
	case AutofocusIdle:
		return "Idle"
	case AutofocusStartup:
		return "Startup"
	case AutofocusFirmwareBad:
		return "FirmwareBad"
	default:
		return fmt.Sprintf("AutofocusStatus(0x%02X)", uint8(a))
	}
}

func parseName(names []string, what, n string) (int, error) {
	for i, name := range names {
		if strings.EqualFold(n, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrRange, what, n)
}
