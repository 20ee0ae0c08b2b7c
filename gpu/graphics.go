// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// GraphicsPipeline is a render pipeline with its shader module and
// the layout of its single bind group. Each pipeline handles
// a different class of materials (unlit, PBR).
type GraphicsPipeline struct {
	// Name of the pipeline, used as the debug label.
	Name string

	// Key is the cache key the pipeline was created for.
	Key PipelineKey

	module         driver.ShaderModule
	layout         driver.BindGroupLayout
	renderPipeline driver.RenderPipeline
}

// newGraphicsPipeline creates the shader module, bind group layout
// and render pipeline described by pd.
func newGraphicsPipeline(gd *GraphicsDevice, pd *PipelineDescriptor, key PipelineKey) (*GraphicsPipeline, error) {
	pl := &GraphicsPipeline{Name: pd.Name, Key: key}
	var err error
	pl.module, err = gd.Device.CreateShaderModule(&driver.ShaderModuleDescriptor{Label: pd.Shader, Code: pd.Code})
	if err != nil {
		return nil, fmt.Errorf("gpu.GraphicsPipeline %q: shader %q: %w", pd.Name, pd.Shader, err)
	}
	pl.layout, err = gd.Device.CreateBindGroupLayout(&driver.BindGroupLayoutDescriptor{Label: pd.Name, Entries: pd.Bindings})
	if err != nil {
		pl.Release()
		return nil, fmt.Errorf("gpu.GraphicsPipeline %q: bind group layout: %w", pd.Name, err)
	}
	rd := &driver.RenderPipelineDescriptor{
		Label:         pd.Name,
		Layout:        pl.layout,
		Module:        pl.module,
		VertexEntry:   pd.VertexEntry,
		FragmentEntry: pd.FragmentEntry,
		Buffers:       []driver.VertexBufferLayout{pd.Vertex.BufferLayout()},
		Topology:      pd.Topology,
		FrontFace:     pd.FrontFace,
		CullMode:      pd.CullMode,
		TargetFormat:  key.Format,
		AlphaBlend:    pd.AlphaBlend,
		SampleCount:   1,
	}
	if key.DepthFormat != driver.TextureFormatUndefined {
		rd.DepthStencil = &driver.DepthStencilState{
			Format:            key.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      driver.CompareFunctionLess,
		}
	}
	pl.renderPipeline, err = gd.Device.CreateRenderPipeline(rd)
	if err != nil {
		pl.Release()
		return nil, fmt.Errorf("gpu.GraphicsPipeline %q: %w", pd.Name, err)
	}
	slog.Debug("gpu: created pipeline", "name", pd.Name, "shader", pd.Shader)
	return pl, nil
}

// Layout returns the bind group layout, for creating bind groups
// to use with this pipeline.
func (pl *GraphicsPipeline) Layout() driver.BindGroupLayout {
	return pl.layout
}

// Handle returns the driver render pipeline.
func (pl *GraphicsPipeline) Handle() driver.RenderPipeline {
	return pl.renderPipeline
}

// NewBindGroup creates a bind group for this pipeline's layout.
func (pl *GraphicsPipeline) NewBindGroup(gd *GraphicsDevice, label string, entries []driver.BindGroupEntry) (driver.BindGroup, error) {
	if pl.layout == nil {
		return nil, fmt.Errorf("gpu.GraphicsPipeline %q: released", pl.Name)
	}
	bg, err := gd.Device.CreateBindGroup(&driver.BindGroupDescriptor{Label: label, Layout: pl.layout, Entries: entries})
	return bg, errors.Log(err)
}

// BindPipeline binds this pipeline and the given bind group
// as the ones to use for next commands in the render pass.
func (pl *GraphicsPipeline) BindPipeline(rp driver.RenderPassEncoder, group driver.BindGroup) {
	rp.SetPipeline(pl.renderPipeline)
	rp.SetBindGroup(0, group)
}

// BindDrawIndexed binds the vertex and 32 bit index buffers
// and draws all indices as one instance.
func (pl *GraphicsPipeline) BindDrawIndexed(rp driver.RenderPassEncoder, vertex, index *Buffer) {
	rp.SetVertexBuffer(0, vertex.Handle(), 0, driver.WholeSize)
	rp.SetIndexBuffer(index.Handle(), driver.IndexFormatUint32, 0, driver.WholeSize)
	rp.DrawIndexed(uint32(index.Count), 1, 0, 0, 0)
}

// Release releases the pipeline, layout and shader module.
func (pl *GraphicsPipeline) Release() {
	if pl.renderPipeline != nil {
		pl.renderPipeline.Release()
		pl.renderPipeline = nil
	}
	if pl.layout != nil {
		pl.layout.Release()
		pl.layout = nil
	}
	if pl.module != nil {
		pl.module.Release()
		pl.module = nil
	}
}
