// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import (
	"fmt"

	"github.com/maruel/go-ov5640/ov5640/sccb"
)

// pll is the clock tree configuration.
//
// XVCLK -> pre divider -> multiplier -> system divider -> PCLK root divider
// -> PCLK divider.
type pll struct {
	bypass      bool
	multiplier  int // [4, 252]
	sysDiv      int // [0, 15]
	preDiv      int // [0, 8]
	root2x      bool
	pclkRootDiv int // [0, 3]
	pclkManual  bool
	pclkDiv     int // [0, 31]
}

// pllFor returns the clock configuration for an output.
func pllFor(s Size, c ColorSpace) pll {
	if c != JPEG {
		return pll{multiplier: 32, sysDiv: 1, preDiv: 1, pclkRootDiv: 1, pclkManual: true, pclkDiv: 4}
	}
	m := 200
	if s < SizeQVGA {
		m = 160
	} else if s < SizeXGA {
		m = 180
	}
	return pll{multiplier: m, sysDiv: 4, preDiv: 2, pclkRootDiv: 2, pclkManual: true, pclkDiv: 4}
}

// regs returns the register writes for p.
//
// It returns ErrInvalidParameter and no write when a value is out of bounds.
func (p *pll) regs() (sccb.List, error) {
	switch {
	case p.multiplier < 4 || p.multiplier > 252:
		return nil, fmt.Errorf("%w: PLL multiplier %d", ErrInvalidParameter, p.multiplier)
	case p.sysDiv < 0 || p.sysDiv > 15:
		return nil, fmt.Errorf("%w: PLL system divider %d", ErrInvalidParameter, p.sysDiv)
	case p.preDiv < 0 || p.preDiv > 8:
		return nil, fmt.Errorf("%w: PLL pre divider %d", ErrInvalidParameter, p.preDiv)
	case p.pclkRootDiv < 0 || p.pclkRootDiv > 3:
		return nil, fmt.Errorf("%w: PCLK root divider %d", ErrInvalidParameter, p.pclkRootDiv)
	case p.pclkDiv < 0 || p.pclkDiv > 31:
		return nil, fmt.Errorf("%w: PCLK divider %d", ErrInvalidParameter, p.pclkDiv)
	}
	var bypass, root2x uint8
	if p.bypass {
		bypass = 0x80
	}
	if p.root2x {
		root2x = 0x10
	}
	vfifo := uint8(0x20)
	if p.pclkManual {
		vfifo |= 0x02
	}
	return sccb.List{
		sccb.W(regPLLBypass, bypass),
		sccb.W(regPLLCtrl1, 1|uint8(p.sysDiv&0xF)<<4),
		sccb.W(regPLLCtrl2, uint8(p.multiplier)),
		sccb.W(regPLLCtrl3, uint8(p.preDiv&0xF)|root2x),
		sccb.W(regPCLKRootDiv, uint8(p.pclkRootDiv&3)<<4|0x06),
		sccb.W(regPCLKDiv, uint8(p.pclkDiv&0x1F)),
		sccb.W(regVFIFOCtrl0C, vfifo),
	}, nil
}

func (p pll) String() string {
	return fmt.Sprintf("PLL{x%d /%d /%d root/%d pclk/%d}", p.multiplier, p.preDiv, p.sysDiv, p.pclkRootDiv, p.pclkDiv)
}
