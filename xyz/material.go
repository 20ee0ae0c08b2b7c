// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"image"

	"cogentcore.org/webgpudemo/base/iox/imagex"
	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Material describes the metallic-roughness material properties of
// a surface on the GPU: one texture per [TextureSlot], the sampler
// they are read with, and the factors that multiply them.
type Material struct {
	Name string

	// Textures has a texture for every slot: a 1x1 fallback
	// where the material has none.
	Textures [NumTextures]*gpu.Texture

	// Sampler used for all textures of the material.
	Sampler gpu.Sampler

	BaseColorFactor mgl32.Vec4
	EmissiveFactor  mgl32.Vec4

	// Params is metallic, roughness, normal scale and occlusion strength.
	Params mgl32.Vec4
}

// Init creates the textures and sampler of the material. The encoded
// textures are decoded in parallel, then uploaded in slot order.
func (mt *Material) Init(gd *gpu.GraphicsDevice, md *MaterialData) error {
	mt.Name = md.Name
	mt.BaseColorFactor = md.BaseColorFactor
	mt.EmissiveFactor = md.EmissiveFactor.Vec4(1)
	mt.Params = mgl32.Vec4{md.MetallicFactor, md.RoughnessFactor, md.NormalScale, md.OcclusionStrength}

	var imgs [NumTextures]image.Image
	var eg errgroup.Group
	for slot := range NumTextures {
		data := md.Textures[slot]
		if len(data) == 0 {
			continue
		}
		eg.Go(func() error {
			img, _, err := imagex.ReadBytes(data)
			if err != nil {
				return fmt.Errorf("xyz: material %q %s texture: %w", md.Name, slot, err)
			}
			imgs[slot] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for slot := range NumTextures {
		name := fmt.Sprintf("%s %s", md.Name, slot)
		tx := gpu.NewTexture(name)
		tx.Format.Format = slot.Format()
		img := imgs[slot]
		if img == nil {
			img = imagex.Solid(slot.Fallback())
		}
		if err := tx.SetFromImage(gd, img); err != nil {
			mt.Release()
			return err
		}
		mt.Textures[slot] = tx
	}

	mt.Sampler = gpu.Sampler{
		Name:      md.Name,
		UMode:     md.AddressU,
		VMode:     md.AddressV,
		WMode:     driver.AddressModeRepeat,
		MagFilter: md.MagFilter,
		MinFilter: md.MinFilter,
	}
	if err := mt.Sampler.Config(gd); err != nil {
		mt.Release()
		return err
	}
	return nil
}

// bindGroupEntries returns the sampler and texture entries of the
// mesh bind group.
func (mt *Material) bindGroupEntries() []driver.BindGroupEntry {
	es := []driver.BindGroupEntry{{Binding: SamplerBinding, Sampler: mt.Sampler.Handle()}}
	for slot, tx := range mt.Textures {
		var view driver.TextureView
		if tx != nil {
			view = tx.View()
		}
		es = append(es, driver.BindGroupEntry{Binding: TextureBinding + uint32(slot), TextureView: view})
	}
	return es
}

// Release releases the textures and sampler.
func (mt *Material) Release() {
	for i, tx := range mt.Textures {
		if tx != nil {
			tx.Release()
			mt.Textures[i] = nil
		}
	}
	mt.Sampler.Release()
}
