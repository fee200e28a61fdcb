// Package eve drives an FT81x/BT81x EVE graphics coprocessor via SPI.
//
// The EVE chips own a display list and a megabyte of graphics RAM (RAM_G).
// The host never sends pixels per frame: it uploads bitmaps to RAM_G once,
// then every frame builds a short display list pointing at them. This driver
// exposes the coprocessor command FIFO for that, and implements the memory
// and display interfaces of the waveform package.
//
// # Hardware Connection
//
// Connect the EVE module to your system via SPI:
//
//	Module Pin → System Pin
//	GND        → GND
//	VCC        → 3.3V or 5V depending on the module
//	SCK        → SPI Clock (SCLK)
//	MOSI       → SPI Data (MOSI)
//	MISO       → SPI Data (MISO)
//	CS         → SPI Chip Select
//	PD         → GPIO (any available pin)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"context"
//		"image/color"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/eve"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		p, _ := spireg.Open("")
//		dev, _ := eve.NewSPI(p, &eve.Opts{PD: gpioreg.ByName("GPIO25")})
//		defer dev.Halt()
//
//		// A 32×32 white square at (10, 10)
//		img := make([]byte, 32*32)
//		for i := range img {
//			img[i] = 0xFF
//		}
//		dev.Write(eve.RAMG, img)
//
//		dev.Begin()
//		dev.SetBitmap(eve.RAMG, eve.FormatL8, 32, 32)
//		dev.Blit(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255}, eve.RotateNone)
//		dev.End()
//		dev.Fence(context.Background())
//	}
//
// # Command FIFO
//
// Memory and display list commands are queued on the host and sent in as few
// SPI transactions as the FIFO free space allows. End and Fence flush the
// queue; Fence also waits until the coprocessor has executed every command,
// which is the only way to know a MEMCPY landed.
//
// A coprocessor fault is reported as ErrCoprocessorFault. The device must be
// re-initialized with NewSPI afterward.
//
// # Panel Timing
//
// Opts.Timing configures the panel. The default is WVGA, the 800×480 panels
// of most FT813 modules.
//
// # Datasheet
//
// https://brtchip.com/wp-content/uploads/Support/Documentation/Programming_Guides/ICs/EVE/FT81X_Series_Programmer_Guide.pdf
package eve
