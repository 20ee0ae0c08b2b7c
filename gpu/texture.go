// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"
	"image/color"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/base/iox/imagex"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// Texture represents a GPU Texture with an associated TextureView.
// The texture is in device memory, in an optimized format.
type Texture struct {

	// Name of the texture, used as the debug label.
	// This is helpful for debugging.
	Name string

	// Format & size of texture
	Format TextureFormat

	// texture handle, in device memory
	texture driver.Texture

	// texture view
	view driver.TextureView
}

// NewTexture returns a new texture with the default
// RGBA8UnormSrgb format.
func NewTexture(name string) *Texture {
	tx := &Texture{Name: name}
	tx.Format.Defaults()
	return tx
}

// Handle returns the driver texture, nil if not yet created.
func (tx *Texture) Handle() driver.Texture {
	return tx.texture
}

// View returns the texture view, nil if not yet created.
func (tx *Texture) View() driver.TextureView {
	return tx.view
}

// LoadFromMemory decodes the encoded image data (png, jpeg etc)
// and uploads it with [Texture.SetFromImage].
func (tx *Texture) LoadFromMemory(gd *GraphicsDevice, data []byte) error {
	img, _, err := imagex.ReadBytes(data)
	if err != nil {
		return fmt.Errorf("gpu.Texture %q: %w", tx.Name, err)
	}
	return tx.SetFromImage(gd, img)
}

// SetFromImage creates the texture at the size of the image and
// uploads the image to it. Images larger than the device texture
// limit are scaled down to fit. The texture Format must be an RGBA
// format; only its Size is updated.
func (tx *Texture) SetFromImage(gd *GraphicsDevice, img image.Image) error {
	if gd == nil || gd.Device == nil {
		return ErrDeviceReleased
	}
	if img == nil {
		return fmt.Errorf("gpu.Texture %q: nil image", tx.Name)
	}
	if !tx.Format.IsStdRGBA() && !tx.Format.IsRGBAUnorm() {
		return fmt.Errorf("gpu.Texture %q: cannot upload an image to format %s", tx.Name, tx.Format.Format)
	}
	maxSize := 0
	if gd.Adapter != nil {
		maxSize = int(gd.Adapter.MaxTextureDimension2D())
	}
	rgba := imagex.Fit(img, maxSize)
	sz := rgba.Bounds().Size()
	if sz.X == 0 || sz.Y == 0 {
		return fmt.Errorf("gpu.Texture %q: empty image", tx.Name)
	}
	tx.Format.Size = sz
	if err := tx.CreateTexture(gd, driver.TextureUsageTextureBinding|driver.TextureUsageCopyDst); err != nil {
		return err
	}
	err := gd.Queue.WriteTexture(tx.texture, rgba.Pix, uint32(tx.Format.BytesPerRow()))
	if errors.Log(err) != nil {
		tx.Release()
		return err
	}
	return nil
}

// CreateTexture creates the texture and its view with the current
// Format and given usage, releasing any existing one.
func (tx *Texture) CreateTexture(gd *GraphicsDevice, usage driver.TextureUsage) error {
	tx.Release()
	t, err := gd.Device.CreateTexture(tx.Format.descriptor(tx.Name, usage))
	if errors.Log(err) != nil {
		return err
	}
	tx.texture = t
	v, err := t.CreateView()
	if errors.Log(err) != nil {
		tx.Release()
		return err
	}
	tx.view = v
	return nil
}

// ConfigDepth configures this texture as a depth texture
// of the given format and size, used as a render attachment.
func (tx *Texture) ConfigDepth(gd *GraphicsDevice, format driver.TextureFormat, size image.Point) error {
	if !format.IsDepth() {
		return fmt.Errorf("gpu.Texture %q: %s is not a depth format", tx.Name, format)
	}
	tx.Format.Set(size.X, size.Y, format)
	tx.Format.Samples = 1
	return tx.CreateTexture(gd, driver.TextureUsageRenderAttachment)
}

// NewSolidTexture returns a 1x1 texture of the given color and format,
// used where a material has no texture of its own.
func NewSolidTexture(gd *GraphicsDevice, name string, c color.Color, format driver.TextureFormat) (*Texture, error) {
	tx := NewTexture(name)
	tx.Format.Format = format
	if err := tx.SetFromImage(gd, imagex.Solid(c)); err != nil {
		return nil, err
	}
	return tx, nil
}

// ReleaseView destroys any existing view
func (tx *Texture) ReleaseView() {
	if tx.view != nil {
		tx.view.Release()
		tx.view = nil
	}
}

// Release destroys any existing view and texture.
// It is safe to call more than once.
func (tx *Texture) Release() {
	tx.ReleaseView()
	if tx.texture != nil {
		tx.texture.Release()
		tx.texture = nil
	}
}
