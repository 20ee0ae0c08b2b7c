// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"log/slog"

	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver"
	"cogentcore.org/webgpudemo/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// Model is an ordered list of meshes, typically loaded from one asset.
type Model struct {
	// Path is the asset the model was loaded from, if any.
	Path string

	// Shader is the name of the shader meshes are drawn with,
	// [shaders.PBR] if empty.
	Shader string

	// Meshes are drawn in order.
	Meshes []*Mesh
}

// Init loads the asset at path and creates its meshes.
// An asset that fails to load is an error, not an empty model.
func (md *Model) Init(gd *gpu.GraphicsDevice, path string) error {
	data, err := LoadGLTF(path)
	if err != nil {
		return err
	}
	md.Path = path
	if err := md.InitFromData(gd, data, md.Shader); err != nil {
		return err
	}
	slog.Info("xyz: loaded model", "path", path, "meshes", len(md.Meshes), "vertices", md.NumVertex(), "indices", md.NumIndex())
	return nil
}

// InitFromData creates one mesh per mesh data, drawn with the named
// shader. On error, all meshes created so far are released.
func (md *Model) InitFromData(gd *gpu.GraphicsDevice, data []*MeshData, shader string) error {
	if shader == "" {
		shader = shaders.PBR
	}
	md.Shader = shader
	md.Release()
	for i, d := range data {
		ms := &Mesh{}
		if err := ms.Init(gd, d, shader); err != nil {
			md.Release()
			return fmt.Errorf("xyz: model mesh %d: %w", i, err)
		}
		md.Meshes = append(md.Meshes, ms)
	}
	return nil
}

// Draw draws all meshes in order with the camera.
func (md *Model) Draw(gd *gpu.GraphicsDevice, pass driver.RenderPassEncoder, cam *Camera) error {
	for _, ms := range md.Meshes {
		if err := ms.Draw(gd, pass, cam); err != nil {
			return err
		}
	}
	return nil
}

// SetTransform sets the transform of all meshes.
func (md *Model) SetTransform(tr Transform) {
	for _, ms := range md.Meshes {
		ms.Transform = tr
	}
}

// NumVertex returns the total number of vertices.
func (md *Model) NumVertex() int {
	n := 0
	for _, ms := range md.Meshes {
		n += ms.NumVertex
	}
	return n
}

// NumIndex returns the total number of indices.
func (md *Model) NumIndex() int {
	n := 0
	for _, ms := range md.Meshes {
		n += ms.NumIndex
	}
	return n
}

// Release releases all meshes.
func (md *Model) Release() {
	for _, ms := range md.Meshes {
		ms.Release()
	}
	md.Meshes = nil
}

// TriangleData returns the data of a single triangle in the xy plane.
func TriangleData() *MeshData {
	md := NewMeshData("triangle")
	md.Vertices = []Vertex{
		{Position: [3]float32{0, 0.5, 0}, UV: [2]float32{0.5, 0}, Normal: [3]float32{0, 0, 1}, Tangent: [4]float32{1, 0, 0, 1}},
		{Position: [3]float32{-0.5, -0.5, 0}, UV: [2]float32{0, 1}, Normal: [3]float32{0, 0, 1}, Tangent: [4]float32{1, 0, 0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, UV: [2]float32{1, 1}, Normal: [3]float32{0, 0, 1}, Tangent: [4]float32{1, 0, 0, 1}},
	}
	md.Indices = []uint32{0, 1, 2}
	md.Material.Name = "triangle"
	md.Material.BaseColorFactor = mgl32.Vec4{1, 0.5, 0.2, 1}
	return md
}

// NewTriangleModel returns a model of one unlit triangle.
func NewTriangleModel(gd *gpu.GraphicsDevice) (*Model, error) {
	md := &Model{}
	if err := md.InitFromData(gd, []*MeshData{TriangleData()}, shaders.Unlit); err != nil {
		return nil, err
	}
	return md, nil
}
