// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"

	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver"
	"cogentcore.org/webgpudemo/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle mesh on the GPU with its material,
// uniforms and the pipeline it is drawn with.
type Mesh struct {
	Name string

	// Transform positions the mesh in the world, applied after Local.
	Transform Transform

	// Local is the matrix of the asset node the mesh came from.
	Local mgl32.Mat4

	NumVertex int
	NumIndex  int

	Material Material

	// Pipeline is owned by the device pipeline cache.
	Pipeline *gpu.GraphicsPipeline

	pipelines *gpu.PipelineCache

	vertex    *gpu.Buffer
	index     *gpu.Buffer
	uniforms  *gpu.Buffer
	bindGroup driver.BindGroup
}

// NewPipelineDescriptor returns the descriptor of the pipeline
// for drawing meshes with the named shader.
func NewPipelineDescriptor(shader string) (*gpu.PipelineDescriptor, error) {
	code, err := shaders.Source(shader)
	if err != nil {
		return nil, err
	}
	pd := &gpu.PipelineDescriptor{Name: shader, Shader: shader, Code: code}
	pd.SetGraphicsDefaults()
	pd.Vertex = VertexLayout()
	pd.Bindings = BindGroupLayout()
	return pd, nil
}

// Init creates the buffers, material and bind group of the mesh
// from the data, drawn with the named shader. On error, everything
// created so far is released.
func (ms *Mesh) Init(gd *gpu.GraphicsDevice, md *MeshData, shader string) error {
	if err := md.Validate(); err != nil {
		return err
	}
	ms.Name = md.Name
	ms.Transform.Defaults()
	ms.Local = md.Matrix
	ms.NumVertex = len(md.Vertices)
	ms.NumIndex = len(md.Indices)
	if err := ms.init(gd, md, shader); err != nil {
		ms.Release()
		return fmt.Errorf("xyz: mesh %q: %w", ms.Name, err)
	}
	return nil
}

func (ms *Mesh) init(gd *gpu.GraphicsDevice, md *MeshData, shader string) error {
	pd, err := NewPipelineDescriptor(shader)
	if err != nil {
		return err
	}
	ms.Pipeline, err = gd.Pipelines.Get(gd, pd)
	if err != nil {
		return err
	}
	ms.pipelines = gd.Pipelines
	ms.vertex, err = gpu.MakeVertexBuffer(gd, ms.Name+" vertices", md.Vertices)
	if err != nil {
		return err
	}
	ms.index, err = gpu.MakeIndexBuffer(gd, ms.Name+" indices", md.Indices)
	if err != nil {
		return err
	}
	if err := ms.Material.Init(gd, &md.Material); err != nil {
		return err
	}
	u := ms.Uniforms(nil)
	ms.uniforms, err = gpu.MakeUniformBuffer(gd, ms.Name+" uniforms", []Uniforms{u})
	if err != nil {
		return err
	}
	entries := append([]driver.BindGroupEntry{{
		Binding: UniformsBinding,
		Buffer:  ms.uniforms.Handle(),
		Size:    uint64(UniformsSize),
	}}, ms.Material.bindGroupEntries()...)
	ms.bindGroup, err = ms.Pipeline.NewBindGroup(gd, ms.Name, entries)
	return err
}

// Matrix returns the model matrix of the mesh.
func (ms *Mesh) Matrix() mgl32.Mat4 {
	return ms.Transform.Matrix().Mul4(ms.Local)
}

// Uniforms returns the uniforms for drawing the mesh with the camera.
// A nil camera gives identity view and projection.
func (ms *Mesh) Uniforms(cam *Camera) Uniforms {
	u := Uniforms{
		Model:           ms.Matrix(),
		ViewProj:        mgl32.Ident4(),
		BaseColorFactor: ms.Material.BaseColorFactor,
		EmissiveFactor:  ms.Material.EmissiveFactor,
		Material:        ms.Material.Params,
	}
	if cam != nil {
		u.ViewProj = cam.ViewProjection()
		u.CameraPos = cam.Position().Vec4(1)
	}
	return u
}

// Draw uploads the uniforms for the camera and records the draw
// of the mesh into the render pass. The uniforms are uploaded
// on every call.
func (ms *Mesh) Draw(gd *gpu.GraphicsDevice, pass driver.RenderPassEncoder, cam *Camera) error {
	if ms.bindGroup == nil {
		return fmt.Errorf("xyz: mesh %q not initialized", ms.Name)
	}
	u := ms.Uniforms(cam)
	if err := gpu.WriteBuffer(gd, ms.uniforms, []Uniforms{u}); err != nil {
		return err
	}
	ms.Pipeline.BindPipeline(pass, ms.bindGroup)
	ms.Pipeline.BindDrawIndexed(pass, ms.vertex, ms.index)
	return nil
}

// Release releases the GPU resources of the mesh and gives its
// pipeline back to the pipeline cache.
func (ms *Mesh) Release() {
	if ms.bindGroup != nil {
		ms.bindGroup.Release()
		ms.bindGroup = nil
	}
	ms.Material.Release()
	for _, b := range []*gpu.Buffer{ms.uniforms, ms.index, ms.vertex} {
		if b != nil {
			b.Release()
		}
	}
	ms.uniforms, ms.index, ms.vertex = nil, nil, nil
	if ms.Pipeline != nil && ms.pipelines != nil {
		ms.pipelines.Put(ms.Pipeline)
	}
	ms.Pipeline, ms.pipelines = nil, nil
}
