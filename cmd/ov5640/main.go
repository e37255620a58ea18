// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ov5640 streams the OV5640 frames over HTTP.
//
// It serves a live view on /, the last frame on /still.jpg and a WebSocket
// stream on /stream. Frames are also pushed to a remote server when
// ~/.config/ov5640/ov5640.json is filled in.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/maruel/go-ov5640/internal/cli"
	"github.com/maruel/go-ov5640/ov5640"
	"github.com/maruel/go-ov5640/pixfmt"
	"github.com/maruel/interrupt"
)

// stats is updated by the capture loop.
type stats struct {
	frames   atomic.Int64
	failures atomic.Int64
	bytes    atomic.Int64
}

// grabber captures frames and converts them to JPEG as needed.
type grabber struct {
	dev   *ov5640.Dev
	buf   []byte
	index int
	stats stats
}

func (g *grabber) grab() (*Frame, error) {
	if n := g.dev.CaptureBufferSize(); len(g.buf) < n {
		g.buf = make([]byte, n)
	}
	b, err := g.dev.Capture(g.buf)
	if err != nil {
		g.stats.failures.Add(1)
		return nil, err
	}
	r := g.dev.Bounds()
	c := g.dev.ColorSpace()
	f := &Frame{
		Metadata: Metadata{
			Index:      g.index,
			Timestamp:  time.Now(),
			Size:       g.dev.Size().String(),
			Width:      r.Dx(),
			Height:     r.Dy(),
			ColorSpace: c.String(),
			Length:     len(b),
		},
	}
	g.index++
	if c == ov5640.JPEG {
		// b is reused for the next frame.
		f.JPEG = bytes.Clone(b)
	} else {
		img, err := pixfmt.Decode(b, c, r.Dx(), r.Dy())
		if err != nil {
			g.stats.failures.Add(1)
			return nil, err
		}
		var w bytes.Buffer
		if err := jpeg.Encode(&w, img, &jpeg.Options{Quality: 85}); err != nil {
			g.stats.failures.Add(1)
			return nil, err
		}
		f.JPEG = w.Bytes()
	}
	g.stats.frames.Add(1)
	g.stats.bytes.Add(int64(len(b)))
	return f, nil
}

func mainImpl() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	cpuprofile := flag.String("cpuprofile", "", "dump CPU profile in file")
	port := flag.Int("port", 8010, "http port to listen on")
	size := flag.String("size", "VGA", "resolution, by name or WxH")
	cs := flag.String("cs", "JPEG", "color space: RGB565, YUV422, Grayscale or JPEG")
	quality := flag.Int("q", 12, "JPEG quality, lower is better, in [2, 54]")
	continuous := flag.Bool("continuous", false, "enable continuous autofocus; requires -af")
	flag.Parse()
	f.SetupLog()

	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}
	if f.Capture == "" && !f.Fake {
		return fmt.Errorf("-capture is required")
	}

	if *cpuprofile != "" {
		pf, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(pf)
		defer pprof.StopCPUProfile()
	}

	interrupt.HandleCtrlC()
	go func() {
		if err := watchFile(); err != nil {
			log.Printf("watch: %s", err)
		}
		interrupt.Set()
	}()

	opts := ov5640.DefaultOpts
	var err error
	if opts.Size, err = ov5640.ParseSize(*size); err != nil {
		return err
	}
	if opts.ColorSpace, err = ov5640.ParseColorSpace(*cs); err != nil {
		return err
	}
	opts.Quality = *quality
	dev, err := f.Open(&opts)
	if err != nil {
		return err
	}
	defer dev.Close()
	if *continuous {
		if f.Firmware == "" {
			return fmt.Errorf("-continuous requires -af")
		}
		if err := dev.ContinuousAutofocus(); err != nil {
			return err
		}
	}

	var seeder *Seeder
	var c chan *Frame
	if p, err := configPath(); err == nil {
		if seeder = LoadSeeder(p); seeder != nil {
			c = make(chan *Frame, 60)
			go seeder.sendFrames(c)
		}
	}
	s := StartWebServer(*port)
	g := &grabber{dev: dev.Dev}

	go func() {
		// Keep this loop busy to not lose frames.
		for !interrupt.IsSet() {
			fr, err := g.grab()
			if err != nil {
				log.Printf("capture: %s", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			s.AddFrame(fr)
			if c != nil {
				select {
				case c <- fr:
				default:
					// The server is too slow, drop the frame.
				}
			}
		}
	}()

	for !interrupt.IsSet() {
		line := fmt.Sprintf("\r%d frames %d failures %d bytes", g.stats.frames.Load(), g.stats.failures.Load(), g.stats.bytes.Load())
		if seeder != nil {
			st := seeder.Stats()
			line += fmt.Sprintf("; pushed %d frames in %d requests, %d failures", st.FramesSent, st.HTTPReqs, st.Failures)
		}
		fmt.Print(line)
		select {
		case <-interrupt.Channel:
		case <-time.After(time.Second):
		}
	}
	fmt.Print("\n")
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nov5640: %s.\n", err)
		os.Exit(1)
	}
}
