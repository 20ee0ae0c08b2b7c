// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// Sampler specifies how to sample from a texture.
type Sampler struct {
	Name string

	// for U (horizontal) axis -- what to do when going off the edge
	UMode driver.AddressMode

	// for V (vertical) axis -- what to do when going off the edge
	VMode driver.AddressMode

	// for W (horizontal) axis -- what to do when going off the edge
	WMode driver.AddressMode

	// filtering when magnifying
	MagFilter driver.FilterMode

	// filtering when minifying
	MinFilter driver.FilterMode

	sampler driver.Sampler
}

// Defaults sets repeat address modes and linear filtering.
func (sm *Sampler) Defaults() {
	sm.UMode = driver.AddressModeRepeat
	sm.VMode = driver.AddressModeRepeat
	sm.WMode = driver.AddressModeRepeat
	sm.MagFilter = driver.FilterModeLinear
	sm.MinFilter = driver.FilterModeLinear
}

// Config creates the sampler on the device, releasing any existing one.
func (sm *Sampler) Config(gd *GraphicsDevice) error {
	if gd == nil || gd.Device == nil {
		return ErrDeviceReleased
	}
	sm.Release()
	s, err := gd.Device.CreateSampler(&driver.SamplerDescriptor{
		Label:        sm.Name,
		AddressModeU: sm.UMode,
		AddressModeV: sm.VMode,
		AddressModeW: sm.WMode,
		MagFilter:    sm.MagFilter,
		MinFilter:    sm.MinFilter,
		MipmapFilter: driver.FilterModeLinear,
	})
	if errors.Log(err) != nil {
		return err
	}
	sm.sampler = s
	return nil
}

// Handle returns the driver sampler, nil until configured.
func (sm *Sampler) Handle() driver.Sampler {
	return sm.sampler
}

func (sm *Sampler) Release() {
	if sm.sampler != nil {
		sm.sampler.Release()
		sm.sampler = nil
	}
}
