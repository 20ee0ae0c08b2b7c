// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

// AdapterOptions are the options for [Instance.RequestAdapter].
type AdapterOptions struct {
	CompatibleSurface Surface
	PowerPreference   PowerPreference
	ForceFallback     bool
}

// DeviceDescriptor describes a device to request from an adapter.
type DeviceDescriptor struct {
	Label      string
	QueueLabel string

	// OnUncapturedError is called for errors not captured by an
	// error scope. It must not block.
	OnUncapturedError func(typ ErrorType, message string)

	// OnDeviceLost is called when the device is lost or destroyed.
	OnDeviceLost func(message string)
}

// SwapChainDescriptor configures a surface for presentation.
type SwapChainDescriptor struct {
	Width, Height uint32
	Format        TextureFormat
	PresentMode   PresentMode
	Usage         TextureUsage
}

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	Format        TextureFormat
	Usage         TextureUsage
	SampleCount   uint32
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

type ShaderModuleDescriptor struct {
	Label string
	Code  string
}

// BindGroupLayoutEntry describes one binding in a bind group layout.
// Textures are always 2D float textures, samplers always filtering.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds one resource. Exactly one of Buffer,
// Sampler or TextureView is set, matching the layout entry.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	Sampler     Sampler
	TextureView TextureView
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

type DepthStencilState struct {
	Format            TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
}

// RenderPipelineDescriptor describes a render pipeline with a single
// bind group at index 0 and a single color target.
type RenderPipelineDescriptor struct {
	Label         string
	Layout        BindGroupLayout
	Module        ShaderModule
	VertexEntry   string
	FragmentEntry string
	Buffers       []VertexBufferLayout
	Topology      PrimitiveTopology
	FrontFace     FrontFace
	CullMode      CullMode
	TargetFormat  TextureFormat
	AlphaBlend    bool
	DepthStencil  *DepthStencilState
	SampleCount   uint32
}

type ColorAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

type DepthStencilAttachment struct {
	View            TextureView
	DepthLoadOp     LoadOp
	DepthStoreOp    StoreOp
	DepthClearValue float32
}

type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
}
