// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestExtToFormat(t *testing.T) {
	f, err := ExtToFormat(".JPG")
	assert.NoError(t, err)
	assert.Equal(t, JPEG, f)
	f, err = MIMEToFormat("image/png")
	assert.NoError(t, err)
	assert.Equal(t, PNG, f)
	_, err = MIMEToFormat("text/plain")
	assert.Error(t, err)
	_, err = ExtToFormat("")
	assert.Error(t, err)
	assert.Equal(t, "WebP", WebP.String())
}

func TestReadBytes(t *testing.T) {
	src := testImage(4, 3)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	f, err := Detect(buf.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, PNG, f)

	img, f, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())
	assert.Equal(t, src.Pix, AsRGBA(img).Pix)

	_, _, err = ReadBytes([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, _, err = ReadBytes(nil)
	assert.Error(t, err)
}

func TestAsRGBA(t *testing.T) {
	src := testImage(4, 4)
	assert.Same(t, src, AsRGBA(src))

	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	cl := AsRGBA(sub)
	assert.NotSame(t, sub, cl)
	assert.Equal(t, image.Rect(0, 0, 2, 2), cl.Rect)
	assert.Equal(t, 8, cl.Stride)
	assert.Equal(t, src.RGBAAt(1, 1), cl.RGBAAt(0, 0))

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	assert.Len(t, AsRGBA(gray).Pix, 16)
	assert.Nil(t, AsRGBA(nil))
}

func TestFit(t *testing.T) {
	assert.Equal(t, image.Pt(100, 50), FitSize(image.Pt(100, 50), 0))
	assert.Equal(t, image.Pt(64, 32), FitSize(image.Pt(128, 64), 64))
	assert.Equal(t, image.Pt(16, 64), FitSize(image.Pt(64, 256), 64))
	assert.Equal(t, image.Pt(64, 1), FitSize(image.Pt(1024, 2), 64))

	img := Fit(testImage(20, 10), 8)
	assert.Equal(t, image.Pt(8, 4), img.Bounds().Size())
	src := testImage(4, 4)
	assert.Same(t, src, Fit(src, 8))
}

func TestSolid(t *testing.T) {
	img := Solid(color.RGBA{255, 0, 0, 255})
	assert.Equal(t, []uint8{255, 0, 0, 255}, img.Pix)
}
