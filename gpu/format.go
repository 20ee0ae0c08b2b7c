// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"cogentcore.org/webgpudemo/gpu/driver"
)

// TextureFormat describes the size and format of a Texture.
type TextureFormat struct {
	// Size of image
	Size image.Point

	// Texture format: RGBA8UnormSrgb is default
	Format driver.TextureFormat

	// number of samples: 1 unless multisampling
	Samples int
}

// NewTextureFormat returns a new TextureFormat with default format and given size.
func NewTextureFormat(width, height int) *TextureFormat {
	im := &TextureFormat{}
	im.Defaults()
	im.Size = image.Point{width, height}
	return im
}

func (im *TextureFormat) Defaults() {
	im.Format = driver.TextureFormatRGBA8UnormSrgb
	im.Samples = 1
}

// String returns human-readable version of format
func (im *TextureFormat) String() string {
	return fmt.Sprintf("Size: %v  Format: %s  MultiSample: %d", im.Size, im.Format, im.Samples)
}

// IsStdRGBA returns true if image format is the standard
// RGBA8UnormSrgb format, which is compatible with go image.RGBA format.
func (im *TextureFormat) IsStdRGBA() bool {
	return im.Format == driver.TextureFormatRGBA8UnormSrgb
}

// IsRGBAUnorm returns true if image format is the linear RGBA8Unorm
// format, used for data textures such as normal maps.
func (im *TextureFormat) IsRGBAUnorm() bool {
	return im.Format == driver.TextureFormatRGBA8Unorm
}

// SetSize sets the width, height
func (im *TextureFormat) SetSize(w, h int) {
	im.Size = image.Point{X: w, Y: h}
}

// Set sets width, height and format
func (im *TextureFormat) Set(w, h int, ft driver.TextureFormat) {
	im.SetSize(w, h)
	im.Format = ft
}

// Area returns the total number of pixels.
func (im *TextureFormat) Area() int {
	return im.Size.X * im.Size.Y
}

// BytesPerRow returns the number of bytes in one row of pixels.
func (im *TextureFormat) BytesPerRow() int {
	return im.Size.X * im.Format.BytesPerPixel()
}

// TotalByteSize returns the total number of bytes of the image.
func (im *TextureFormat) TotalByteSize() int {
	return im.BytesPerRow() * im.Size.Y
}

// descriptor returns the texture descriptor for this format.
func (im *TextureFormat) descriptor(label string, usage driver.TextureUsage) *driver.TextureDescriptor {
	samples := im.Samples
	if samples < 1 {
		samples = 1
	}
	return &driver.TextureDescriptor{
		Label:       label,
		Width:       uint32(im.Size.X),
		Height:      uint32(im.Size.Y),
		Format:      im.Format,
		Usage:       usage,
		SampleCount: uint32(samples),
	}
}
