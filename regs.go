package eve

import "image/color"

// Memory map (FT81x).
const (
	RAMG    Addr = 0x000000
	RAMGEnd Addr = 0x100000 // 1MiB of general purpose memory
)

// Registers.
const (
	regID         Addr = 0x302000
	regHCycle     Addr = 0x30202C
	regHOffset    Addr = 0x302030
	regHSize      Addr = 0x302034
	regHSync0     Addr = 0x302038
	regHSync1     Addr = 0x30203C
	regVCycle     Addr = 0x302040
	regVOffset    Addr = 0x302044
	regVSize      Addr = 0x302048
	regVSync0     Addr = 0x30204C
	regVSync1     Addr = 0x302050
	regDither     Addr = 0x302060
	regSwizzle    Addr = 0x302064
	regCSpread    Addr = 0x302068
	regPCLKPol    Addr = 0x30206C
	regPCLK       Addr = 0x302070
	regGPIODir    Addr = 0x302090
	regGPIO       Addr = 0x302094
	regCmdRead    Addr = 0x3020F8
	regCmdBSpace  Addr = 0x302574
	regCmdBWrite  Addr = 0x302578
	chipID             = 0x7C
	cmdFaultRead       = 0xFFF
	cmdBufferSize      = 4096
	cmdBufferEmpty     = cmdBufferSize - 4
)

// Host commands.
const (
	hostActive  = 0x00
	hostPwrDown = 0x50
)

// Coprocessor commands.
const (
	cmdDLStart      = 0xFFFFFF00
	cmdSwap         = 0xFFFFFF01
	cmdMemWrite     = 0xFFFFFF1A
	cmdMemSet       = 0xFFFFFF1B
	cmdMemCopy      = 0xFFFFFF1D
	cmdLoadIdentity = 0xFFFFFF26
	cmdTranslate    = 0xFFFFFF27
	cmdRotate       = 0xFFFFFF29
	cmdSetMatrix    = 0xFFFFFF2A
	cmdSetBitmap    = 0xFFFFFF43
)

// Display list primitives.
const (
	primBitmaps   = 1
	filterNearest = 0
	wrapBorder    = 0
)

// circle is one full turn in CMD_ROTATE units.
const circle = 65536

func dlDisplay() uint32 { return 0 }

func dlBitmapSize(filter, wrapx, wrapy, w, h int) uint32 {
	return 8<<24 | uint32(filter&1)<<20 | uint32(wrapx&1)<<19 | uint32(wrapy&1)<<18 |
		uint32(w&0x1FF)<<9 | uint32(h&0x1FF)
}

func dlBitmapSizeH(w, h int) uint32 {
	return 0x29<<24 | uint32(w&3)<<2 | uint32(h&3)
}

func dlColorRGB(c color.RGBA) uint32 {
	return 4<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func dlClearColorRGB(c color.RGBA) uint32 {
	return 2<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func dlClear(c, s, t bool) uint32 {
	v := uint32(0x26 << 24)
	if c {
		v |= 4
	}
	if s {
		v |= 2
	}
	if t {
		v |= 1
	}
	return v
}

func dlBegin(prim int) uint32 { return 0x1F<<24 | uint32(prim&15) }

func dlEnd() uint32 { return 0x21 << 24 }

func dlVertexFormat(frac int) uint32 { return 0x27<<24 | uint32(frac&7) }

func dlVertex2F(x, y int) uint32 {
	return 1<<30 | uint32(x&0x7FFF)<<15 | uint32(y&0x7FFF)
}

func dlPaletteSource(a Addr) uint32 { return 0x2A<<24 | uint32(a)&0x3FFFFF }

func dlSaveContext() uint32 { return 0x22 << 24 }

func dlRestoreContext() uint32 { return 0x23 << 24 }
