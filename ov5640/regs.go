// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov5640

import "github.com/maruel/go-ov5640/ov5640/sccb"

// Register map.
//
// OV5640 datasheet, section 7 "register tables".
const (
	regSystemReset00  = 0x3000 // Bit[5]: MCU reset.
	regSystemReset02  = 0x3002
	regClockEnable02  = 0x3006
	regSystemCtrl0    = 0x3008 // Bit[7]: software reset; Bit[6]: power down.
	regChipIDHigh     = 0x300A
	regDriveCapacity  = 0x302C
	regPLLCtrl0       = 0x3034
	regPLLCtrl1       = 0x3035 // Bit[7:4]: system clock divider.
	regPLLCtrl2       = 0x3036 // PLL multiplier.
	regPLLCtrl3       = 0x3037 // Bit[4]: root divider; Bit[3:0]: pre divider.
	regPLLBypass      = 0x3039
	regSCCBSysCtrl1   = 0x3103
	regPCLKRootDiv    = 0x3108
	regGroupAccess    = 0x3212
	regAWBManual      = 0x3406
	regAWBRGain       = 0x3400
	regAECCtrl00      = 0x3A00 // Bit[2]: night mode.
	regXAddrStart     = 0x3800
	regYAddrStart     = 0x3802
	regXAddrEnd       = 0x3804
	regYAddrEnd       = 0x3806
	regXOutputSize    = 0x3808
	regYOutputSize    = 0x380A
	regXTotalSize     = 0x380C
	regYTotalSize     = 0x380E
	regXOffset        = 0x3810
	regYOffset        = 0x3812
	regXIncrement     = 0x3814
	regYIncrement     = 0x3815
	regTimingTC20     = 0x3820 // Bit[2:1]: vertical flip; Bit[0]: vertical binning.
	regTimingTC21     = 0x3821 // Bit[5]: JPEG; Bit[2:1]: horizontal mirror; Bit[0]: horizontal binning.
	regPCLKDiv        = 0x3824
	regFormatCtrl00   = 0x4300
	regCompression07  = 0x4407 // Bit[5:0]: quantization scale.
	regVFIFOCtrl0C    = 0x460C // Bit[1]: PCLK manual.
	regISPCtrl01      = 0x5001 // Bit[5]: scale enable.
	regSDECtrl0       = 0x5580
	regSDECtrl3       = 0x5583
	regSDECtrl4       = 0x5584
	regSDECtrl5       = 0x5585
	regSDECtrl6       = 0x5586
	regSDECtrl7       = 0x5587
	regSDECtrl8       = 0x5588
	regISPCtrl03      = 0x5003
	regFormatMux      = 0x501F
	regPreISPTest     = 0x503D // Bit[7]: enable; Bit[1:0]: pattern.
	regColorMatrix    = 0x5381
	regBinningMode    = 0x4514
	regBinningCtrl    = 0x4520
	regAFCmdMain      = 0x3022
	regAFCmdAck       = 0x3023
	regAFCmdPara0     = 0x3024
	regAFCmdPara3     = 0x3027
	regAFCmdPara4     = 0x3028
	regAFFWStatus     = 0x3029
	afFirmwareBase    = 0x8000
	groupStart        = 0x03
	groupEnd          = 0x13
	groupLaunch       = 0xA3
	scaleEnable       = 0x20
	testPatternEnable = 0x80
)

// Bit fields accessed with read-modify-write.
var (
	fieldChipID    = sccb.Field16{Addr: regChipIDHigh, Mask: 0xFFFF}
	fieldNightMode = sccb.Field{Addr: regAECCtrl00, Shift: 2, Mask: 1}
)
