// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dvp

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/maruel/go-ov5640/ov5640"
)

var (
	_ ov5640.Capturer = &Reader{}
	_ ov5640.Capturer = &Serial{}
	_ ov5640.Capturer = &V4L2{}
)

func TestReader(t *testing.T) {
	r := Reader{R: bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7})}
	b := make([]byte, 3)
	if err := r.Capture(b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatal(b)
	}
	if err := r.Capture(b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{4, 5, 6}) {
		t.Fatal(b)
	}
	if err := r.Capture(b); !errors.Is(err, ErrShortFrame) {
		t.Fatal(err)
	}
	if err := r.Capture(b); !errors.Is(err, ErrShortFrame) {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFill(t *testing.T) {
	b := []byte{9, 9, 9, 9}
	if n := fill(b, []byte{1, 2}); n != 2 {
		t.Fatal(n)
	}
	if !bytes.Equal(b, []byte{1, 2, 0, 0}) {
		t.Fatal(b)
	}
	if n := fill(b, []byte{1, 2, 3, 4, 5}); n != 4 {
		t.Fatal(n)
	}
	if !bytes.Equal(b, []byte{1, 2, 3, 4}) {
		t.Fatal(b)
	}
}

func TestSerial(t *testing.T) {
	p := &port{}
	p.packet("LOGM", []byte("hello"))
	p.packet("FRAM", []byte{0xFF, 0xD8, 0xFF, 0xD9})
	s := NewSerial(p)
	b := make([]byte, 8)
	for i := range b {
		b[i] = 0xAA
	}
	if err := s.Capture(b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{0xFF, 0xD8, 0xFF, 0xD9, 0, 0, 0, 0}) {
		t.Fatalf("%#v", b)
	}
	if s := p.w.String(); s != "   #00000008CAPT00000008" {
		t.Fatalf("%q", s)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !p.closed {
		t.Fatal("expected Close to be forwarded")
	}
}

func TestSerial_truncated(t *testing.T) {
	p := &port{}
	p.packet("FRAM", []byte{1, 2, 3, 4})
	b := make([]byte, 2)
	if err := NewSerial(p).Capture(b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{1, 2}) {
		t.Fatal(b)
	}
}

func TestSerial_errors(t *testing.T) {
	data := []struct {
		name  string
		setup func(p *port)
		want  string
	}{
		{
			"error",
			func(p *port) { p.packet("ERRR", []byte("no sync")) },
			"dvp: bridge: no sync",
		},
		{
			"crc",
			func(p *port) { fmt.Fprintf(&p.r, "   #%08XFRAM%s%08X", 2, "ab", 0) },
			"dvp: bad CRC",
		},
		{
			"header",
			func(p *port) { p.r.WriteString("garbage garbage!") },
			"dvp: bad header",
		},
		{
			"length",
			func(p *port) { p.r.WriteString("   #0000000GFRAM") },
			"dvp: bad packet length",
		},
		{
			"huge",
			func(p *port) { p.r.WriteString("   #FFFFFFF0FRAM") },
			"dvp: packet of 4294967280 bytes exceeds 4100 bytes",
		},
		{
			"eof",
			func(p *port) {},
			"dvp: failed to read header",
		},
		{
			"empty",
			func(p *port) { p.packet("FRAM", nil) },
			"dvp: short frame",
		},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			p := &port{}
			line.setup(p)
			err := NewSerial(p).Capture(make([]byte, 4))
			if err == nil || !strings.HasPrefix(err.Error(), line.want) {
				t.Fatalf("want %q; got %v", line.want, err)
			}
		})
	}
}

func TestSerial_hugeLength(t *testing.T) {
	p := &port{}
	fmt.Fprintf(&p.r, "   #%08XFRAM", 16+packetSlack+1)
	if err := NewSerial(p).Capture(make([]byte, 16)); err == nil || !strings.HasPrefix(err.Error(), "dvp: packet of") {
		t.Fatal(err)
	}
	// A log message longer than the frame buffer is accepted.
	p = &port{}
	p.packet("LOGM", bytes.Repeat([]byte("x"), 100))
	p.packet("FRAM", []byte{1, 2})
	b := make([]byte, 2)
	if err := NewSerial(p).Capture(b); err != nil {
		t.Fatal(err)
	}
}

func TestSerial_payloadEOF(t *testing.T) {
	p := &port{}
	fmt.Fprintf(&p.r, "   #%08XFRAM", 8)
	if err := NewSerial(p).Capture(make([]byte, 16)); !errors.Is(err, ErrShortFrame) {
		t.Fatal(err)
	}
}

func TestSerial_shortPayload(t *testing.T) {
	p := &port{}
	fmt.Fprintf(&p.r, "   #%08XFRAM", 16)
	p.r.WriteString("abc")
	if err := NewSerial(p).Capture(make([]byte, 16)); !errors.Is(err, ErrShortFrame) {
		t.Fatal(err)
	}
}

//

// port is a fake serial port. Reads come from r, writes go to w.
type port struct {
	r      bytes.Buffer
	w      bytes.Buffer
	closed bool
}

func (p *port) packet(t string, data []byte) {
	fmt.Fprintf(&p.r, "   #%08X%s", len(data), t)
	p.r.Write(data)
	fmt.Fprintf(&p.r, "%08X", crc32.ChecksumIEEE(data))
}

func (p *port) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *port) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *port) Close() error {
	p.closed = true
	return nil
}
