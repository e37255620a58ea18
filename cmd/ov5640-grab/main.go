// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ov5640-grab captures a single image.
//
// The output format is deduced from the file extension: .jpg, .png, .bmp or
// anything else to save the frame as captured. Without a file, the frame is
// written as captured to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/go-ov5640/internal/cli"
	"github.com/maruel/go-ov5640/ov5640"
	"github.com/maruel/go-ov5640/pixfmt"
	"golang.org/x/image/bmp"
	"golang.org/x/term"
)

func mainImpl() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	size := flag.String("size", "VGA", "resolution, by name or WxH")
	cs := flag.String("cs", "JPEG", "color space: RGB565, YUV422, Grayscale or JPEG")
	quality := flag.Int("q", 12, "JPEG quality, lower is better, in [2, 54]")
	effect := flag.String("effect", "Normal", "special effect")
	wb := flag.String("wb", "Auto", "white balance")
	pattern := flag.String("pattern", "None", "test pattern instead of the image")
	ev := flag.Int("ev", 0, "exposure value in [-3, 3]")
	saturation := flag.Int("saturation", 0, "saturation in [-4, 4]")
	brightness := flag.Int("brightness", 0, "brightness in [-4, 4]")
	contrast := flag.Int("contrast", 0, "contrast in [-3, 3]")
	flipX := flag.Bool("flipx", false, "mirror horizontally")
	flipY := flag.Bool("flipy", false, "flip vertically")
	night := flag.Bool("night", false, "enable night mode")
	focus := flag.Bool("focus", false, "run a single autofocus pass before capturing; requires -af")
	flag.Parse()
	f.SetupLog()

	if flag.NArg() > 1 {
		return errors.New("supply at most one path to save the image to")
	}
	if flag.NArg() == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write a frame to a terminal; supply a path or redirect stdout")
	}
	if f.Capture == "" && !f.Fake {
		return errors.New("-capture is required")
	}
	if *focus && f.Firmware == "" {
		return errors.New("-focus requires -af")
	}

	opts := ov5640.DefaultOpts
	var err error
	if opts.Size, err = ov5640.ParseSize(*size); err != nil {
		return err
	}
	if opts.ColorSpace, err = ov5640.ParseColorSpace(*cs); err != nil {
		return err
	}
	opts.Quality = *quality
	e, err := ov5640.ParseEffect(*effect)
	if err != nil {
		return err
	}
	w, err := ov5640.ParseWhiteBalance(*wb)
	if err != nil {
		return err
	}
	p, err := ov5640.ParseTestPattern(*pattern)
	if err != nil {
		return err
	}

	dev, err := f.Open(&opts)
	if err != nil {
		return err
	}
	defer dev.Close()
	if err := configure(dev.Dev, e, w, p, *ev, *saturation, *brightness, *contrast, *flipX, *flipY, *night); err != nil {
		return err
	}
	if *focus {
		zones, err := dev.Autofocus()
		if err != nil {
			return err
		}
		log.Printf("focused: %v", zones)
	}

	frame, err := dev.Capture(make([]byte, dev.CaptureBufferSize()))
	if err != nil {
		return err
	}
	log.Printf("captured %d bytes", len(frame))
	if flag.NArg() == 0 {
		_, err = os.Stdout.Write(frame)
		return err
	}
	out, err := os.Create(flag.Arg(0))
	if err != nil {
		return err
	}
	if err = save(out, frame, dev.Dev, filepath.Ext(flag.Arg(0))); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func configure(dev *ov5640.Dev, e ov5640.Effect, w ov5640.WhiteBalance, p ov5640.TestPattern, ev, saturation, brightness, contrast int, flipX, flipY, night bool) error {
	if err := dev.SetEffect(e); err != nil {
		return err
	}
	if err := dev.SetWhiteBalance(w); err != nil {
		return err
	}
	if err := dev.SetTestPattern(p); err != nil {
		return err
	}
	if err := dev.SetExposureValue(ev); err != nil {
		return err
	}
	if err := dev.SetSaturation(saturation); err != nil {
		return err
	}
	if err := dev.SetBrightness(brightness); err != nil {
		return err
	}
	if err := dev.SetContrast(contrast); err != nil {
		return err
	}
	if err := dev.SetFlipX(flipX); err != nil {
		return err
	}
	if err := dev.SetFlipY(flipY); err != nil {
		return err
	}
	return dev.SetNightMode(night)
}

// save writes frame to w, converting it as needed for the extension ext.
func save(w io.Writer, frame []byte, dev *ov5640.Dev, ext string) error {
	ext = strings.ToLower(ext)
	if ext != ".png" && ext != ".bmp" && ext != ".jpg" && ext != ".jpeg" {
		_, err := w.Write(frame)
		return err
	}
	if (ext == ".jpg" || ext == ".jpeg") && dev.ColorSpace() == ov5640.JPEG {
		_, err := w.Write(frame)
		return err
	}
	r := dev.Bounds()
	img, err := pixfmt.Decode(frame, dev.ColorSpace(), r.Dx(), r.Dy())
	if err != nil {
		return err
	}
	return encode(w, img, ext)
}

func encode(w io.Writer, img image.Image, ext string) error {
	switch ext {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nov5640-grab: %s.\n", err)
		os.Exit(1)
	}
}
