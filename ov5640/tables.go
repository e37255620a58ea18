// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"time"

	"github.com/maruel/go-ov5640/ov5640/sccb"
)

// Size is an output resolution.
type Size uint8

// Supported output resolutions.
const (
	Size96x96   Size = 0  // 96x96
	SizeQQVGA   Size = 1  // 160x120
	SizeQCIF    Size = 2  // 176x144
	SizeHQVGA   Size = 3  // 240x176
	Size240x240 Size = 4  // 240x240
	SizeQVGA    Size = 5  // 320x240
	SizeCIF     Size = 6  // 400x296
	SizeHVGA    Size = 7  // 480x320
	SizeVGA     Size = 8  // 640x480
	SizeSVGA    Size = 9  // 800x600
	SizeXGA     Size = 10 // 1024x768
	SizeHD      Size = 11 // 1280x720
	SizeSXGA    Size = 12 // 1280x1024
	SizeUXGA    Size = 13 // 1600x1200
	SizeQHD     Size = 14 // 2560x1440
	SizeWQXGA   Size = 15 // 2560x1600
	SizePFHD    Size = 16 // 1088x1920, portrait
	SizeQSXGA   Size = 17 // 2560x1920
)

// ColorSpace is the output pixel format.
type ColorSpace uint8

// Supported pixel formats.
const (
	RGB565    ColorSpace = 0 // 16 bits per pixel, little endian.
	YUV422    ColorSpace = 1 // YUYV.
	Grayscale ColorSpace = 2 // Y8.
	JPEG      ColorSpace = 3
)

// Effect is a special digital effect.
type Effect uint8

// Supported effects.
const (
	EffectNormal    Effect = 0
	EffectNegative  Effect = 1
	EffectGrayscale Effect = 2
	EffectRedTint   Effect = 3
	EffectGreenTint Effect = 4
	EffectBlueTint  Effect = 5
	EffectSepia     Effect = 6
)

// WhiteBalance is a light mode.
type WhiteBalance uint8

// Supported light modes.
const (
	WhiteBalanceAuto         WhiteBalance = 0
	WhiteBalanceSunny        WhiteBalance = 1
	WhiteBalanceFluorescent  WhiteBalance = 2
	WhiteBalanceCloudy       WhiteBalance = 3
	WhiteBalanceIncandescent WhiteBalance = 4
)

// TestPattern is generated by the sensor instead of the image.
type TestPattern uint8

// Valid values for TestPattern.
const (
	PatternNone     TestPattern = 0
	PatternColorBar TestPattern = 1
	PatternRandom   TestPattern = 2
	PatternSquare   TestPattern = 3
	PatternBlack    TestPattern = 4
)

type aspectRatio uint8

const (
	aspect4x3   aspectRatio = 0
	aspect3x2   aspectRatio = 1
	aspect16x10 aspectRatio = 2
	aspect5x3   aspectRatio = 3
	aspect16x9  aspectRatio = 4
	aspect21x9  aspectRatio = 5
	aspect5x4   aspectRatio = 6
	aspect1x1   aspectRatio = 7
	aspect9x16  aspectRatio = 8
)

type resolution struct {
	w, h   uint16
	aspect aspectRatio
}

var resolutions = [...]resolution{
	Size96x96:   {96, 96, aspect1x1},
	SizeQQVGA:   {160, 120, aspect4x3},
	SizeQCIF:    {176, 144, aspect5x4},
	SizeHQVGA:   {240, 176, aspect4x3},
	Size240x240: {240, 240, aspect1x1},
	SizeQVGA:    {320, 240, aspect4x3},
	SizeCIF:     {400, 296, aspect4x3},
	SizeHVGA:    {480, 320, aspect3x2},
	SizeVGA:     {640, 480, aspect4x3},
	SizeSVGA:    {800, 600, aspect4x3},
	SizeXGA:     {1024, 768, aspect4x3},
	SizeHD:      {1280, 720, aspect16x9},
	SizeSXGA:    {1280, 1024, aspect5x4},
	SizeUXGA:    {1600, 1200, aspect4x3},
	SizeQHD:     {2560, 1440, aspect16x9},
	SizeWQXGA:   {2560, 1600, aspect16x10},
	SizePFHD:    {1088, 1920, aspect9x16},
	SizeQSXGA:   {2560, 1920, aspect4x3},
}

// window is the crop window on the sensing array for an aspect ratio.
type window struct {
	maxW, maxH     uint16 // Largest output.
	startX, startY uint16
	endX, endY     uint16
	offX, offY     uint16 // ISP offset.
	totalX, totalY uint16 // Timing.
}

var windows = [...]window{
	aspect4x3:   {2560, 1920, 0, 0, 2623, 1951, 32, 16, 2844, 1968},
	aspect3x2:   {2560, 1704, 0, 110, 2623, 1843, 32, 16, 2844, 1752},
	aspect16x10: {2560, 1600, 0, 160, 2623, 1791, 32, 16, 2844, 1648},
	aspect5x3:   {2560, 1536, 0, 192, 2623, 1759, 32, 16, 2844, 1584},
	aspect16x9:  {2560, 1440, 0, 240, 2623, 1711, 32, 16, 2844, 1488},
	aspect21x9:  {2560, 1080, 0, 420, 2623, 1531, 32, 16, 2844, 1128},
	aspect5x4:   {2400, 1920, 80, 0, 2543, 1951, 32, 16, 2684, 1968},
	aspect1x1:   {1920, 1920, 320, 0, 2543, 1951, 32, 16, 2684, 1968},
	aspect9x16:  {1088, 1920, 736, 0, 1887, 1951, 32, 16, 1884, 1968},
}

// bringUp is sent once after reset.
var bringUp = sccb.Join(
	sccb.List{
		sccb.W(regSystemCtrl0, 0x82), // Software reset.
		sccb.Sleep(10 * time.Millisecond),
		sccb.W(regSystemCtrl0, 0x42),  // Power down.
		sccb.W(regSCCBSysCtrl1, 0x13), // PLL clock.
		sccb.W(regPLLCtrl0, 0x1A),     // Constant for DVP.
		// IO direction.
		sccb.W(0x3017, 0xFF),
		sccb.W(0x3018, 0xFF),
		sccb.W(regDriveCapacity, 0xC3),
		sccb.W(0x4740, 0x21), // Clock polarity.
		sccb.W(0x4713, 0x02), // JPEG mode 2.
		sccb.W(regISPCtrl01, 0x83),
		sccb.W(regSystemReset00, 0x00),
		sccb.W(regSystemReset02, 0x1C),
		sccb.W(0x3004, 0xFF),
		sccb.W(regClockEnable02, 0xC3),
		sccb.W(0x5000, 0xA7),
		sccb.W(regISPCtrl01, 0xA3),
		sccb.W(regISPCtrl03, 0x08),
		sccb.W(0x370C, 0x02),
		sccb.W(0x3634, 0x40),
	},
	// AEC/AGC.
	sccb.List{
		sccb.W(0x3A02, 0x03),
		sccb.W(0x3A03, 0xD8),
		sccb.W(0x3A08, 0x01),
		sccb.W(0x3A09, 0x27),
		sccb.W(0x3A0A, 0x00),
		sccb.W(0x3A0B, 0xF6),
		sccb.W(0x3A0D, 0x04),
		sccb.W(0x3A0E, 0x03),
		sccb.W(0x3A0F, 0x30),
		sccb.W(0x3A10, 0x28),
		sccb.W(0x3A11, 0x60),
		sccb.W(0x3A13, 0x43),
		sccb.W(0x3A14, 0x03),
		sccb.W(0x3A15, 0xD8),
		sccb.W(0x3A18, 0x00),
		sccb.W(0x3A19, 0xF8),
		sccb.W(0x3A1B, 0x30),
		sccb.W(0x3A1E, 0x26),
		sccb.W(0x3A1F, 0x14),
	},
	// VCM debug.
	sccb.Seq(0x3600, 0x08, 0x33),
	// 50/60Hz detection.
	sccb.List{sccb.W(0x3C01, 0xA4)},
	sccb.Seq(0x3C04, 0x28, 0x98, 0x00, 0x08, 0x00, 0x1C, 0x9C, 0x40),
	sccb.List{
		sccb.W(regVFIFOCtrl0C, 0x22),
		// Black level calibration.
		sccb.W(0x4001, 0x02),
		sccb.W(0x4004, 0x02),
	},
	// AWB.
	sccb.Seq(0x5180,
		0xFF, 0xF2, 0x00, 0x14, 0x25, 0x24, 0x09, 0x09, 0x09, 0x75, 0x54, 0xE0,
		0xB2, 0x42, 0x3D, 0x56, 0x46, 0xF8, 0x04, 0x70, 0xF0, 0xF0, 0x03, 0x01,
		0x04, 0x12, 0x04, 0x00, 0x06, 0x82, 0x38),
	// Color matrix.
	sccb.Seq(regColorMatrix, 0x1E, 0x5B, 0x08, 0x0A, 0x7E, 0x88, 0x7C, 0x6C, 0x10, 0x01, 0x98),
	// CIP, sharpness and denoise.
	sccb.Seq(0x5300, 0x10, 0x10, 0x18, 0x19, 0x10, 0x10, 0x08, 0x16, 0x40, 0x10, 0x10, 0x04, 0x06),
	// Gamma.
	sccb.Seq(0x5480,
		0x01, 0x00, 0x1E, 0x3B, 0x58, 0x66, 0x71, 0x7D, 0x83, 0x8F, 0x98, 0xA6,
		0xB8, 0xCA, 0xD7, 0xE3, 0x1D),
	// SDE, brightness and contrast enabled.
	sccb.List{
		sccb.W(regSDECtrl0, 0x06),
		sccb.W(regSDECtrl3, 0x40),
		sccb.W(regSDECtrl4, 0x10),
		sccb.W(regSDECtrl6, 0x20),
		sccb.W(regSDECtrl7, 0x00),
		sccb.W(regSDECtrl8, 0x00),
		sccb.W(0x5589, 0x10),
		sccb.W(0x558A, 0x00),
		sccb.W(0x558B, 0xF8),
		sccb.W(0x501D, 0x40),
		sccb.W(regSystemCtrl0, 0x02), // Power on.
		sccb.W(0x3C00, 0x04),         // 50Hz.
	},
)

var colorSpaces = [...]sccb.List{
	RGB565: {
		sccb.W(regFormatMux, 0x01),
		sccb.W(regFormatCtrl00, 0x61),
		sccb.W(regSystemReset02, 0x1C),
		sccb.W(regClockEnable02, 0xC3),
	},
	YUV422: {
		sccb.W(regFormatMux, 0x00),
		sccb.W(regFormatCtrl00, 0x30),
	},
	Grayscale: {
		sccb.W(regFormatMux, 0x00),
		sccb.W(regFormatCtrl00, 0x10),
	},
	JPEG: {
		sccb.W(regFormatMux, 0x00),
		sccb.W(regFormatCtrl00, 0x30),
		sccb.W(regSystemReset02, 0x00),
		sccb.W(regClockEnable02, 0xFF),
		sccb.W(0x471C, 0x50),
	},
}

// Tables indexed by level are ordered 0, +1, ..., +n, -n, ..., -1.

var saturationLevels = [9][11]uint8{
	{0x1D, 0x60, 0x03, 0x0C, 0x78, 0x84, 0x7D, 0x6B, 0x12, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x0D, 0x84, 0x91, 0x8A, 0x76, 0x14, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x0E, 0x90, 0x9E, 0x96, 0x80, 0x16, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x10, 0x9C, 0xAC, 0xA2, 0x8B, 0x17, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x11, 0xA8, 0xB9, 0xAF, 0x96, 0x19, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x07, 0x48, 0x4F, 0x4B, 0x40, 0x0B, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x08, 0x54, 0x5C, 0x58, 0x4B, 0x0D, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x0A, 0x60, 0x6A, 0x64, 0x56, 0x0E, 0x01, 0x98},
	{0x1D, 0x60, 0x03, 0x0B, 0x6C, 0x77, 0x70, 0x60, 0x10, 0x01, 0x98},
}

// aeTarget are the AEC stable and fast range limits.
var aeTarget = [6]uint16{0x3A0F, 0x3A10, 0x3A11, 0x3A1B, 0x3A1E, 0x3A1F}

var evLevels = [7][6]uint8{
	{0x38, 0x30, 0x61, 0x38, 0x30, 0x10},
	{0x40, 0x38, 0x71, 0x40, 0x38, 0x10},
	{0x50, 0x48, 0x90, 0x50, 0x48, 0x20},
	{0x60, 0x58, 0xA0, 0x60, 0x58, 0x20},
	{0x10, 0x08, 0x10, 0x08, 0x20, 0x10},
	{0x20, 0x18, 0x41, 0x20, 0x18, 0x10},
	{0x30, 0x28, 0x61, 0x30, 0x28, 0x10},
}

// contrastLevels are the values for regSDECtrl6 and regSDECtrl5.
var contrastLevels = [7][2]uint8{
	{0x20, 0x00},
	{0x24, 0x10},
	{0x28, 0x18},
	{0x2C, 0x1C},
	{0x14, 0x14},
	{0x18, 0x18},
	{0x1C, 0x1C},
}

var lightRegs = [7]uint16{regAWBManual, regAWBRGain, 0x3401, 0x3402, 0x3403, 0x3404, 0x3405}

var lightModes = [...][7]uint8{
	WhiteBalanceAuto:         {0x00, 0x04, 0x00, 0x04, 0x00, 0x04, 0x00},
	WhiteBalanceSunny:        {0x01, 0x06, 0x1C, 0x04, 0x00, 0x04, 0xF3},
	WhiteBalanceFluorescent:  {0x01, 0x05, 0x48, 0x04, 0x00, 0x07, 0xCF},
	WhiteBalanceCloudy:       {0x01, 0x06, 0x48, 0x04, 0x00, 0x04, 0xD3},
	WhiteBalanceIncandescent: {0x01, 0x04, 0x10, 0x04, 0x00, 0x08, 0x40},
}

var effectRegs = [4]uint16{regSDECtrl0, regSDECtrl3, regSDECtrl4, regISPCtrl03}

var effects = [...][4]uint8{
	EffectNormal:    {0x06, 0x40, 0x10, 0x08},
	EffectNegative:  {0x46, 0x40, 0x28, 0x08},
	EffectGrayscale: {0x1E, 0x80, 0x80, 0x08},
	EffectRedTint:   {0x1E, 0x80, 0xC0, 0x08},
	EffectGreenTint: {0x1E, 0x60, 0x60, 0x08},
	EffectBlueTint:  {0x1E, 0xA0, 0x40, 0x08},
	EffectSepia:     {0x1E, 0x40, 0xA0, 0x08},
}

// binningModes is the value of regBinningMode indexed by
// flip-y | flip-x<<1 | binning<<2. Found empirically.
var binningModes = [8]uint8{0x88, 0x00, 0xBB, 0x00, 0xAA, 0xBB, 0xBB, 0xAA}

// levelIndex maps a signed level to its row in a table of n entries.
func levelIndex(level, n int) int {
	if level < 0 {
		return n + level
	}
	return level
}
