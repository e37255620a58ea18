// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dvp

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// USB IDs of the bridge firmware.
const vendorID = "2E8A"

var productIDs = []string{"000A", "F00D"}

// packetSlack is how much a packet may exceed the capture buffer. It leaves
// room for log and error messages when the buffer is small.
const packetSlack = 4096

// Serial captures frames through a microcontroller bridge connected over
// USB-CDC.
//
// The bridge samples the DVP port with its PIO or DCMI peripheral and sends
// the frame back in a packet. Packets are:
//
//	"   #" <length: 8 hex digits> <type: 4 chars> <payload> <CRC32: 8 hex digits>
//
// The length counts the payload only and the CRC covers the payload. The
// host sends "CAPT" with the buffer size as an 8 hex digits payload and no
// CRC. The bridge answers "FRAM" with the frame, or "ERRR" with a message.
// "LOGM" packets can be interleaved anytime.
type Serial struct {
	mu   sync.Mutex
	port io.ReadWriter
}

// OpenSerial opens the bridge on the serial port name.
//
// When name is empty, the port is found by its USB IDs.
func OpenSerial(name string) (*Serial, error) {
	if name == "" {
		var err error
		if name, err = findPort(); err != nil {
			return nil, err
		}
	}
	// The baud rate is ignored by USB-CDC devices.
	p, err := serial.Open(name, &serial.Mode{})
	if err != nil {
		return nil, fmt.Errorf("dvp: failed to open %s: %w", name, err)
	}
	return NewSerial(p), nil
}

// NewSerial returns a Serial talking over an already opened port.
func NewSerial(port io.ReadWriter) *Serial {
	return &Serial{port: port}
}

// Capture implements ov5640.Capturer.
//
// A frame longer than b is truncated.
func (s *Serial) Capture(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.send(fmt.Sprintf("CAPT%08X", len(b))); err != nil {
		return err
	}
	for {
		t, data, err := s.readPacket(len(b) + packetSlack)
		if err != nil {
			return err
		}
		switch t {
		case "FRAM":
			if len(data) == 0 {
				return ErrShortFrame
			}
			if n := fill(b, data); n < len(data) {
				glog.Warningf("dvp: frame truncated to %d/%d bytes", n, len(data))
			}
			return nil
		case "ERRR":
			return fmt.Errorf("dvp: bridge: %s", data)
		case "LOGM":
			glog.V(2).Infof("dvp: bridge: %s", data)
		default:
			glog.V(1).Infof("dvp: ignoring %q packet", t)
		}
	}
}

// Close implements ov5640.Capturer.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Serial) send(cmd string) error {
	if _, err := io.WriteString(s.port, fmt.Sprintf("   #%08X%s", len(cmd)-4, cmd)); err != nil {
		return fmt.Errorf("dvp: failed to write to serial port: %w", err)
	}
	return nil
}

// readPacket reads one packet, refusing payloads larger than limit bytes.
func (s *Serial) readPacket(limit int) (string, []byte, error) {
	var header [16]byte
	if _, err := io.ReadFull(s.port, header[:]); err != nil {
		return "", nil, fmt.Errorf("dvp: failed to read header: %w", err)
	}
	if string(header[:4]) != "   #" {
		return "", nil, fmt.Errorf("dvp: bad header %q", header[:])
	}
	l, err := strconv.ParseUint(string(header[4:12]), 16, 32)
	if err != nil {
		return "", nil, fmt.Errorf("dvp: bad packet length: %w", err)
	}
	if l > uint64(limit) {
		return "", nil, fmt.Errorf("dvp: packet of %d bytes exceeds %d bytes", l, limit)
	}
	data := make([]byte, l)
	if _, err := io.ReadFull(s.port, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = ErrShortFrame
		}
		return "", nil, fmt.Errorf("dvp: failed to read payload: %w", err)
	}
	var crc [8]byte
	if _, err := io.ReadFull(s.port, crc[:]); err != nil {
		return "", nil, fmt.Errorf("dvp: failed to read CRC: %w", err)
	}
	if v, err := strconv.ParseUint(string(crc[:]), 16, 32); err != nil || uint32(v) != crc32.ChecksumIEEE(data) {
		return "", nil, fmt.Errorf("dvp: bad CRC %q", crc[:])
	}
	return string(header[12:]), data, nil
}

func findPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("dvp: failed to list serial ports: %w", err)
	}
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, vendorID) && slices.ContainsFunc(productIDs, func(id string) bool { return strings.EqualFold(id, p.PID) }) {
			return p.Name, nil
		}
	}
	return "", errors.New("dvp: no bridge found")
}
