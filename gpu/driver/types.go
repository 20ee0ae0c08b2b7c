// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import "fmt"

// WholeSize means the remaining size of a buffer from a given offset.
const WholeSize = ^uint64(0)

// BufferUsage is a bit set describing how a buffer is used.
type BufferUsage uint32

const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

var bufferUsageNames = []string{"MapRead", "MapWrite", "CopySrc", "CopyDst", "Index", "Vertex", "Uniform", "Storage", "Indirect"}

func (u BufferUsage) String() string {
	return bitString(uint32(u), bufferUsageNames)
}

// TextureUsage is a bit set describing how a texture is used.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

var textureUsageNames = []string{"CopySrc", "CopyDst", "TextureBinding", "StorageBinding", "RenderAttachment"}

func (u TextureUsage) String() string {
	return bitString(uint32(u), textureUsageNames)
}

func bitString(v uint32, names []string) string {
	if v == 0 {
		return "None"
	}
	s := ""
	for i, nm := range names {
		if v&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += nm
	}
	return s
}

// TextureFormat is the pixel format of a texture.
type TextureFormat uint32

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatDepth24Plus
	TextureFormatDepth32Float
)

var textureFormatNames = [...]string{"Undefined", "RGBA8Unorm", "RGBA8UnormSrgb", "BGRA8Unorm", "BGRA8UnormSrgb", "Depth24Plus", "Depth32Float"}

func (f TextureFormat) String() string {
	if int(f) < len(textureFormatNames) {
		return textureFormatNames[f]
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

// BytesPerPixel returns the size of one texel in bytes.
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureFormatUndefined {
		return 0
	}
	return 4
}

// IsDepth returns true for depth formats.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24Plus || f == TextureFormatDepth32Float
}

// IndexFormat is the element type of an index buffer.
type IndexFormat uint32

const (
	IndexFormatUint16 IndexFormat = iota + 1
	IndexFormatUint32
)

// Size returns the number of bytes per index.
func (f IndexFormat) Size() int {
	if f == IndexFormatUint16 {
		return 2
	}
	return 4
}

// VertexFormat is the format of one vertex attribute.
type VertexFormat uint32

const (
	VertexFormatFloat32 VertexFormat = iota + 1
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
)

var vertexFormatNames = [...]string{"Undefined", "Float32", "Float32x2", "Float32x3", "Float32x4", "Uint32"}

func (f VertexFormat) String() string {
	if int(f) < len(vertexFormatNames) {
		return vertexFormatNames[f]
	}
	return fmt.Sprintf("VertexFormat(%d)", uint32(f))
}

// Size returns the number of bytes of the attribute.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32, VertexFormatUint32:
		return 4
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	}
	return 0
}

// PresentMode determines how frames are queued for display.
type PresentMode uint32

const (
	PresentModeFifo PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

// ParsePresentMode returns the PresentMode for the given name.
func ParsePresentMode(s string) (PresentMode, error) {
	switch s {
	case "fifo", "Fifo", "":
		return PresentModeFifo, nil
	case "mailbox", "Mailbox":
		return PresentModeMailbox, nil
	case "immediate", "Immediate":
		return PresentModeImmediate, nil
	}
	return PresentModeFifo, fmt.Errorf("unknown present mode %q", s)
}

// ShaderStage is a bit set of shader stages.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// BindingType is the kind of resource in a bind group layout entry.
type BindingType uint32

const (
	BindingUniformBuffer BindingType = iota + 1
	BindingSampler
	BindingTexture
)

var bindingTypeNames = [...]string{"Undefined", "UniformBuffer", "Sampler", "Texture"}

func (b BindingType) String() string {
	if int(b) < len(bindingTypeNames) {
		return bindingTypeNames[b]
	}
	return fmt.Sprintf("BindingType(%d)", uint32(b))
}

// PrimitiveTopology is how vertices are assembled into primitives.
type PrimitiveTopology uint32

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// FrontFace determines which winding is the front of a triangle.
type FrontFace uint32

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CullMode determines which triangle faces are discarded.
type CullMode uint32

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// CompareFunction is used for depth tests.
type CompareFunction uint32

const (
	CompareFunctionLess CompareFunction = iota + 1
	CompareFunctionLessEqual
	CompareFunctionAlways
)

// AddressMode is the sampler behavior outside [0, 1] texture coordinates.
type AddressMode uint32

const (
	AddressModeRepeat AddressMode = iota
	AddressModeClampToEdge
	AddressModeMirrorRepeat
)

// FilterMode is the sampler filtering.
type FilterMode uint32

const (
	FilterModeLinear FilterMode = iota
	FilterModeNearest
)

// LoadOp is what happens to an attachment at the start of a pass.
type LoadOp uint32

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

// StoreOp is what happens to an attachment at the end of a pass.
type StoreOp uint32

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// PowerPreference is a hint for adapter selection.
type PowerPreference uint32

const (
	PowerPreferenceUndefined PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

// RequestStatus is the result status of an asynchronous request.
type RequestStatus uint32

const (
	RequestStatusSuccess RequestStatus = iota
	RequestStatusUnavailable
	RequestStatusError
)

var requestStatusNames = [...]string{"Success", "Unavailable", "Error"}

func (s RequestStatus) String() string {
	if int(s) < len(requestStatusNames) {
		return requestStatusNames[s]
	}
	return fmt.Sprintf("RequestStatus(%d)", uint32(s))
}

// ErrorType is the kind of an uncaptured device error.
type ErrorType uint32

const (
	ErrorTypeValidation ErrorType = iota + 1
	ErrorTypeOutOfMemory
	ErrorTypeInternal
	ErrorTypeUnknown
)

var errorTypeNames = [...]string{"NoError", "Validation", "OutOfMemory", "Internal", "Unknown"}

func (e ErrorType) String() string {
	if int(e) < len(errorTypeNames) {
		return errorTypeNames[e]
	}
	return fmt.Sprintf("ErrorType(%d)", uint32(e))
}

// Color is a clear color with float components in [0, 1].
type Color struct {
	R, G, B, A float64
}
