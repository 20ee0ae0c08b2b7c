// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"unsafe"

	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one interleaved mesh vertex.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
	Normal   [3]float32
	Tangent  [4]float32
}

// VertexSize is the size of a [Vertex] in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// VertexLayout returns the vertex buffer layout matching [Vertex].
func VertexLayout() gpu.VertexLayout {
	var vl gpu.VertexLayout
	vl.Add("position", gpu.Float32Vector3).
		Add("uv", gpu.Float32Vector2).
		Add("normal", gpu.Float32Vector3).
		Add("tangent", gpu.Float32Vector4)
	return vl
}

// Uniforms are the per-mesh shader uniforms at binding 0,
// matching the Uniforms struct in the shaders.
type Uniforms struct {
	Model    mgl32.Mat4
	ViewProj mgl32.Mat4

	// CameraPos is the camera position in xyz.
	CameraPos mgl32.Vec4

	BaseColorFactor mgl32.Vec4

	// EmissiveFactor is the emissive color in rgb.
	EmissiveFactor mgl32.Vec4

	// Material is metallic, roughness, normal scale and occlusion strength.
	Material mgl32.Vec4
}

// UniformsSize is the size of [Uniforms] in bytes.
const UniformsSize = int(unsafe.Sizeof(Uniforms{}))

// Bindings of the mesh bind group.
const (
	UniformsBinding uint32 = iota
	SamplerBinding
	TextureBinding // first of NumTextures texture bindings
)

// BindGroupLayout returns the layout entries of the mesh bind group:
// uniforms, sampler, then one texture per [TextureSlot].
func BindGroupLayout() []driver.BindGroupLayoutEntry {
	es := []driver.BindGroupLayoutEntry{
		{Binding: UniformsBinding, Visibility: driver.ShaderStageVertex | driver.ShaderStageFragment, Type: driver.BindingUniformBuffer},
		{Binding: SamplerBinding, Visibility: driver.ShaderStageFragment, Type: driver.BindingSampler},
	}
	for i := range NumTextures {
		es = append(es, driver.BindGroupLayoutEntry{Binding: TextureBinding + uint32(i), Visibility: driver.ShaderStageFragment, Type: driver.BindingTexture})
	}
	return es
}
