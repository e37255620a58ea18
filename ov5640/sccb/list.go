// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sccb

import (
	"fmt"
	"time"
)

// Reg is a value to assign to a register.
type Reg struct {
	Addr  uint16
	Value uint8
}

func (r Reg) String() string {
	return fmt.Sprintf("0x%04X=0x%02X", r.Addr, r.Value)
}

// Step is one entry of a List.
//
// It is either a register write or, when Pause is non-zero, a pause.
type Step struct {
	Reg
	Pause time.Duration
}

func (s Step) String() string {
	if s.Pause != 0 {
		return "sleep(" + s.Pause.String() + ")"
	}
	return s.Reg.String()
}

// W returns a Step writing v to register addr.
func W(addr uint16, v uint8) Step {
	return Step{Reg: Reg{Addr: addr, Value: v}}
}

// Sleep returns a Step pausing for d.
func Sleep(d time.Duration) Step {
	return Step{Pause: d}
}

// List is an ordered sequence of register writes and pauses.
//
// When the same register appears multiple times, the last write wins.
type List []Step

// Seq returns writes of values to consecutive registers starting at addr.
func Seq(addr uint16, values ...uint8) List {
	out := make(List, len(values))
	for i, v := range values {
		out[i] = W(addr+uint16(i), v)
	}
	return out
}

// Writes returns a List writing each register in order.
func Writes(regs ...Reg) List {
	out := make(List, len(regs))
	for i, r := range regs {
		out[i].Reg = r
	}
	return out
}

// Regs returns the register writes of l, dropping pauses.
func (l List) Regs() []Reg {
	out := make([]Reg, 0, len(l))
	for _, s := range l {
		if s.Pause == 0 {
			out = append(out, s.Reg)
		}
	}
	return out
}

// Join concatenates lists.
func Join(lists ...List) List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
