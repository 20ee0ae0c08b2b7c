// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webgpu

import (
	"fmt"
	"slices"

	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureFormats maps driver texture formats to WebGPU formats.
var TextureFormats = map[driver.TextureFormat]wgpu.TextureFormat{
	driver.TextureFormatUndefined:      wgpu.TextureFormatUndefined,
	driver.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	driver.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	driver.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	driver.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
	driver.TextureFormatDepth24Plus:    wgpu.TextureFormatDepth24Plus,
	driver.TextureFormatDepth32Float:   wgpu.TextureFormatDepth32Float,
}

// VertexFormats maps driver vertex formats to WebGPU formats.
var VertexFormats = map[driver.VertexFormat]wgpu.VertexFormat{
	driver.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	driver.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	driver.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	driver.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	driver.VertexFormatUint32:    wgpu.VertexFormatUint32,
}

func textureFormat(f driver.TextureFormat) wgpu.TextureFormat {
	return TextureFormats[f]
}

// surfaceFormat returns the format to configure a surface with:
// the requested format if the surface supports it, otherwise the
// first supported format that has a driver equivalent.
func surfaceFormat(want driver.TextureFormat, supported []wgpu.TextureFormat) (driver.TextureFormat, error) {
	if slices.Contains(supported, textureFormat(want)) {
		return want, nil
	}
	for _, sf := range supported {
		for f, wf := range TextureFormats {
			if wf == sf && f != driver.TextureFormatUndefined && !f.IsDepth() {
				return f, nil
			}
		}
	}
	return driver.TextureFormatUndefined, fmt.Errorf("webgpu: surface supports none of the known formats %v", supported)
}

func errorType(t wgpu.ErrorType) driver.ErrorType {
	switch t {
	case wgpu.ErrorTypeValidation:
		return driver.ErrorTypeValidation
	case wgpu.ErrorTypeOutOfMemory:
		return driver.ErrorTypeOutOfMemory
	case wgpu.ErrorTypeInternal:
		return driver.ErrorTypeInternal
	}
	return driver.ErrorTypeUnknown
}

func vertexFormat(f driver.VertexFormat) wgpu.VertexFormat {
	return VertexFormats[f]
}

func bufferUsage(u driver.BufferUsage) wgpu.BufferUsage {
	var w wgpu.BufferUsage
	pairs := []struct {
		d driver.BufferUsage
		w wgpu.BufferUsage
	}{
		{driver.BufferUsageMapRead, wgpu.BufferUsageMapRead},
		{driver.BufferUsageMapWrite, wgpu.BufferUsageMapWrite},
		{driver.BufferUsageCopySrc, wgpu.BufferUsageCopySrc},
		{driver.BufferUsageCopyDst, wgpu.BufferUsageCopyDst},
		{driver.BufferUsageIndex, wgpu.BufferUsageIndex},
		{driver.BufferUsageVertex, wgpu.BufferUsageVertex},
		{driver.BufferUsageUniform, wgpu.BufferUsageUniform},
		{driver.BufferUsageStorage, wgpu.BufferUsageStorage},
		{driver.BufferUsageIndirect, wgpu.BufferUsageIndirect},
	}
	for _, p := range pairs {
		if u&p.d != 0 {
			w |= p.w
		}
	}
	return w
}

func textureUsage(u driver.TextureUsage) wgpu.TextureUsage {
	var w wgpu.TextureUsage
	if u&driver.TextureUsageCopySrc != 0 {
		w |= wgpu.TextureUsageCopySrc
	}
	if u&driver.TextureUsageCopyDst != 0 {
		w |= wgpu.TextureUsageCopyDst
	}
	if u&driver.TextureUsageTextureBinding != 0 {
		w |= wgpu.TextureUsageTextureBinding
	}
	if u&driver.TextureUsageStorageBinding != 0 {
		w |= wgpu.TextureUsageStorageBinding
	}
	if u&driver.TextureUsageRenderAttachment != 0 {
		w |= wgpu.TextureUsageRenderAttachment
	}
	return w
}

func shaderStage(s driver.ShaderStage) wgpu.ShaderStage {
	var w wgpu.ShaderStage
	if s&driver.ShaderStageVertex != 0 {
		w |= wgpu.ShaderStageVertex
	}
	if s&driver.ShaderStageFragment != 0 {
		w |= wgpu.ShaderStageFragment
	}
	return w
}

func presentMode(m driver.PresentMode) wgpu.PresentMode {
	switch m {
	case driver.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	case driver.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

func powerPreference(p driver.PowerPreference) wgpu.PowerPreference {
	switch p {
	case driver.PowerPreferenceLowPower:
		return wgpu.PowerPreferenceLowPower
	case driver.PowerPreferenceHighPerformance:
		return wgpu.PowerPreferenceHighPerformance
	}
	return wgpu.PowerPreferenceUndefined
}

func primitiveTopology(t driver.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case driver.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case driver.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case driver.TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func frontFace(f driver.FrontFace) wgpu.FrontFace {
	if f == driver.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func cullMode(c driver.CullMode) wgpu.CullMode {
	switch c {
	case driver.CullModeFront:
		return wgpu.CullModeFront
	case driver.CullModeBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func compareFunction(c driver.CompareFunction) wgpu.CompareFunction {
	switch c {
	case driver.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case driver.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLess
}

func addressMode(a driver.AddressMode) wgpu.AddressMode {
	switch a {
	case driver.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case driver.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeRepeat
}

func filterMode(f driver.FilterMode) wgpu.FilterMode {
	if f == driver.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(f driver.FilterMode) wgpu.MipmapFilterMode {
	if f == driver.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func indexFormat(f driver.IndexFormat) wgpu.IndexFormat {
	if f == driver.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func loadOp(op driver.LoadOp) wgpu.LoadOp {
	if op == driver.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func storeOp(op driver.StoreOp) wgpu.StoreOp {
	if op == driver.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}
