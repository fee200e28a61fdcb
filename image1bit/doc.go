// Package image1bit provides the 1-bit monochrome image format of EVE L1
// bitmaps.
//
// Pixels are packed horizontally, 8 per byte, most significant bit first so
// the leftmost pixel of a byte is bit 7. Each line starts on a byte boundary.
//
// Memory layout example for a 10-pixel line:
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9
//	Values: 1 0 1 0 0 0 0 1 | 1 1
//	Bytes:  0xA1           | 0xC0
//
// Example usage:
//
//	img := image1bit.NewHorizontalMSB(image.Rect(0, 0, 160, 4))
//	img.SetBit(10, 2, image1bit.On)
//	println(img.BitAt(10, 2))  // Output: true
package image1bit
