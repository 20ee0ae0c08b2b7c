// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"image/color"

	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureSlot is one of the textures of a [Material].
type TextureSlot int32

const (
	BaseColorTexture TextureSlot = iota
	MetallicRoughnessTexture
	NormalTexture
	OcclusionTexture
	EmissiveTexture

	NumTextures
)

var textureSlotNames = [...]string{"base color", "metallic roughness", "normal", "occlusion", "emissive"}

func (ts TextureSlot) String() string {
	if ts >= 0 && ts < NumTextures {
		return textureSlotNames[ts]
	}
	return fmt.Sprintf("TextureSlot(%d)", int32(ts))
}

// IsColor returns whether the slot holds color data in sRGB,
// as opposed to linear data.
func (ts TextureSlot) IsColor() bool {
	return ts == BaseColorTexture || ts == EmissiveTexture
}

// Format returns the texture format for the slot.
func (ts TextureSlot) Format() driver.TextureFormat {
	if ts.IsColor() {
		return driver.TextureFormatRGBA8UnormSrgb
	}
	return driver.TextureFormatRGBA8Unorm
}

// Fallback returns the color of the 1x1 texture used when a
// material has no texture for the slot. Factors multiply textures,
// so the fallbacks are neutral: white, or a flat normal.
func (ts TextureSlot) Fallback() color.RGBA {
	if ts == NormalTexture {
		return color.RGBA{128, 128, 255, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

// MaterialData is the CPU side description of a material,
// with textures as encoded image files (png, jpeg etc).
type MaterialData struct {
	Name string

	// Textures are the encoded images, nil for slots without one.
	Textures [NumTextures][]byte

	BaseColorFactor   mgl32.Vec4
	EmissiveFactor    mgl32.Vec3
	MetallicFactor    float32
	RoughnessFactor   float32
	NormalScale       float32
	OcclusionStrength float32

	// sampler settings, from the base color texture
	AddressU, AddressV   driver.AddressMode
	MagFilter, MinFilter driver.FilterMode
}

// Defaults sets the glTF default material: white, fully metallic and
// rough, no emission.
func (md *MaterialData) Defaults() {
	md.BaseColorFactor = mgl32.Vec4{1, 1, 1, 1}
	md.EmissiveFactor = mgl32.Vec3{}
	md.MetallicFactor = 1
	md.RoughnessFactor = 1
	md.NormalScale = 1
	md.OcclusionStrength = 1
	md.AddressU = driver.AddressModeRepeat
	md.AddressV = driver.AddressModeRepeat
	md.MagFilter = driver.FilterModeLinear
	md.MinFilter = driver.FilterModeLinear
}

// MeshData is the CPU side description of a mesh.
type MeshData struct {
	Name     string
	Vertices []Vertex

	// Indices are triangle list indices into Vertices.
	Indices []uint32

	// Matrix is the world matrix of the node the mesh is attached to.
	Matrix mgl32.Mat4

	Material MaterialData
}

// NewMeshData returns mesh data with an identity matrix and
// default material.
func NewMeshData(name string) *MeshData {
	md := &MeshData{Name: name, Matrix: mgl32.Ident4()}
	md.Material.Defaults()
	return md
}

// Validate checks that the mesh has triangles and
// that all indices are in range.
func (md *MeshData) Validate() error {
	if len(md.Vertices) == 0 {
		return fmt.Errorf("xyz: mesh %q has no vertices", md.Name)
	}
	if len(md.Indices) == 0 || len(md.Indices)%3 != 0 {
		return fmt.Errorf("xyz: mesh %q has %d indices, not a triangle list", md.Name, len(md.Indices))
	}
	nv := uint32(len(md.Vertices))
	for i, ix := range md.Indices {
		if ix >= nv {
			return fmt.Errorf("xyz: mesh %q index %d is %d, out of range of %d vertices", md.Name, i, ix, nv)
		}
	}
	return nil
}
