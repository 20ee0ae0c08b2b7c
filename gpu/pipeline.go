// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"strings"
	"sync"

	"cogentcore.org/webgpudemo/gpu/driver"
)

// PipelineDescriptor describes a graphics pipeline to get from
// a [PipelineCache].
type PipelineDescriptor struct {
	// Name is the debug label of the pipeline.
	Name string

	// Shader is the name of the shader, identifying Code in the cache key.
	Shader string

	// Code is the WGSL source of the shader.
	Code string

	// VertexEntry and FragmentEntry are the shader entry points.
	VertexEntry, FragmentEntry string

	// Vertex is the layout of the single vertex buffer.
	Vertex VertexLayout

	// Bindings are the entries of the bind group at index 0.
	Bindings []driver.BindGroupLayoutEntry

	Topology   driver.PrimitiveTopology
	FrontFace  driver.FrontFace
	CullMode   driver.CullMode
	AlphaBlend bool
}

// SetGraphicsDefaults sets the vs_main and fs_main entry points
// and counter-clockwise triangle lists without culling.
func (pd *PipelineDescriptor) SetGraphicsDefaults() {
	pd.VertexEntry = "vs_main"
	pd.FragmentEntry = "fs_main"
	pd.Topology = driver.TopologyTriangleList
	pd.FrontFace = driver.FrontFaceCCW
	pd.CullMode = driver.CullModeNone
}

// PipelineKey identifies pipelines that can be shared between meshes.
type PipelineKey struct {
	Shader      string
	Vertex      string
	Bindings    string
	Format      driver.TextureFormat
	DepthFormat driver.TextureFormat
	Topology    driver.PrimitiveTopology
	FrontFace   driver.FrontFace
	CullMode    driver.CullMode
	AlphaBlend  bool
}

// Key returns the cache key for the descriptor on the given device.
func (pd *PipelineDescriptor) Key(gd *GraphicsDevice) PipelineKey {
	var b strings.Builder
	for i, e := range pd.Bindings {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%s:%d", e.Binding, e.Type, e.Visibility)
	}
	key := PipelineKey{
		Shader:     pd.Shader,
		Vertex:     pd.Vertex.String(),
		Bindings:   b.String(),
		Format:     gd.Format(),
		Topology:   pd.Topology,
		FrontFace:  pd.FrontFace,
		CullMode:   pd.CullMode,
		AlphaBlend: pd.AlphaBlend,
	}
	if gd.Depth != nil {
		key.DepthFormat = gd.Depth.Format.Format
	}
	return key
}

// PipelineCache owns the graphics pipelines of a device. If Share is
// set, meshes with equal [PipelineKey]s get the same pipeline;
// otherwise every Get creates a new one. Pipelines are reference
// counted: each Get must be matched by a Put, and a pipeline is
// released when its last user puts it back.
type PipelineCache struct {
	Share bool

	mu        sync.Mutex
	pipelines map[PipelineKey]*GraphicsPipeline
	refs      map[*GraphicsPipeline]int
}

// NewPipelineCache returns a new empty cache.
func NewPipelineCache(share bool) *PipelineCache {
	return &PipelineCache{
		Share:     share,
		pipelines: make(map[PipelineKey]*GraphicsPipeline),
		refs:      make(map[*GraphicsPipeline]int),
	}
}

// Get returns the pipeline for the descriptor, creating it as needed.
// The returned pipeline is owned by the cache.
func (pc *PipelineCache) Get(gd *GraphicsDevice, pd *PipelineDescriptor) (*GraphicsPipeline, error) {
	if gd == nil || gd.Device == nil {
		return nil, ErrDeviceReleased
	}
	key := pd.Key(gd)
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.Share {
		if pl, ok := pc.pipelines[key]; ok {
			pc.refs[pl]++
			return pl, nil
		}
	}
	pl, err := newGraphicsPipeline(gd, pd, key)
	if err != nil {
		return nil, err
	}
	if pc.Share {
		pc.pipelines[key] = pl
	}
	pc.refs[pl] = 1
	return pl, nil
}

// Put gives back a pipeline returned by [PipelineCache.Get],
// releasing it if it has no other users. Pipelines not in
// the cache, as after [PipelineCache.Release], are ignored.
func (pc *PipelineCache) Put(pl *GraphicsPipeline) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	n, ok := pc.refs[pl]
	if !ok {
		return
	}
	if n > 1 {
		pc.refs[pl] = n - 1
		return
	}
	delete(pc.refs, pl)
	if pc.pipelines[pl.Key] == pl {
		delete(pc.pipelines, pl.Key)
	}
	pl.Release()
}

// Len returns the number of pipelines in the cache.
func (pc *PipelineCache) Len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.refs)
}

// Release releases all pipelines in the cache.
func (pc *PipelineCache) Release() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for pl := range pc.refs {
		pl.Release()
	}
	clear(pc.refs)
	clear(pc.pipelines)
}
