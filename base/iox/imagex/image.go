// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
)

// CloneAsRGBA returns an RGBA copy of the supplied image,
// with bounds starting at the origin.
func CloneAsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	bounds := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(img, img.Rect, src, bounds.Min, draw.Src)
	return img
}

// AsRGBA returns the image as an RGBA: if it already is one with
// tightly packed rows starting at the origin, then it returns that
// image directly. Otherwise it returns a clone.
func AsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	return CloneAsRGBA(src)
}

// Solid returns a 1x1 RGBA image of the given color.
func Solid(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return img
}

// FitSize returns the size that fits within maxSize in both
// dimensions, preserving the aspect ratio of sz.
// If sz already fits, it is returned unchanged.
func FitSize(sz image.Point, maxSize int) image.Point {
	if maxSize <= 0 || (sz.X <= maxSize && sz.Y <= maxSize) {
		return sz
	}
	if sz.X >= sz.Y {
		return image.Point{maxSize, max(1, sz.Y*maxSize/sz.X)}
	}
	return image.Point{max(1, sz.X*maxSize/sz.Y), maxSize}
}

// Fit returns the image scaled down so that neither dimension
// exceeds maxSize, using linear resampling. Images that already fit
// are returned as RGBA without resampling.
func Fit(src image.Image, maxSize int) *image.RGBA {
	if src == nil {
		return nil
	}
	sz := src.Bounds().Size()
	nsz := FitSize(sz, maxSize)
	if nsz == sz {
		return AsRGBA(src)
	}
	return transform.Resize(src, nsz.X, nsz.Y, transform.Linear)
}
