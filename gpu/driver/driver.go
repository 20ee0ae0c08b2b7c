// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver defines the GPU API used by the renderer, as a set
// of interfaces mirroring the WebGPU object model. Implementations
// register themselves by name with [Register]: the webgpu subpackage
// wraps a native WebGPU implementation, and drivertest records calls
// for tests that run without a GPU.
//
// Handles are released explicitly with Release. Adapter and device
// requests complete through callbacks, as in the WebGPU API; callers
// that need blocking semantics wait on the callback themselves.
package driver

// Driver creates instances of one GPU API implementation.
type Driver interface {
	// Name is the name the driver is registered under.
	Name() string

	// CreateInstance creates the API instance, the root of all objects.
	CreateInstance() (Instance, error)
}

// RequestAdapterCallback receives the result of [Instance.RequestAdapter].
// adapter is nil unless status is [RequestStatusSuccess].
type RequestAdapterCallback func(status RequestStatus, adapter Adapter, message string)

// RequestDeviceCallback receives the result of [Adapter.RequestDevice].
// device is nil unless status is [RequestStatusSuccess].
type RequestDeviceCallback func(status RequestStatus, device Device, message string)

type Instance interface {
	// RequestAdapter requests an adapter; the callback may be
	// called before RequestAdapter returns, or later on any goroutine.
	RequestAdapter(opts *AdapterOptions, callback RequestAdapterCallback)
	Release()
}

type Adapter interface {
	// Name is a human readable adapter description.
	Name() string

	// MaxTextureDimension2D is the largest supported 2D texture size.
	MaxTextureDimension2D() uint32

	// RequestDevice requests a device, with the same callback
	// semantics as [Instance.RequestAdapter].
	RequestDevice(desc *DeviceDescriptor, callback RequestDeviceCallback)
	Release()
}

// Surface is a platform window surface.
type Surface interface {
	Release()
}

type Device interface {
	Queue() Queue
	CreateSwapChain(surface Surface, desc *SwapChainDescriptor) (SwapChain, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Release()
}

type Queue interface {
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error

	// WriteTexture uploads tightly packed rows of pixel data
	// covering the whole of mip level 0 of the texture.
	WriteTexture(texture Texture, data []byte, bytesPerRow uint32) error

	Submit(commands ...CommandBuffer)
	Release()
}

// SwapChain is a configured surface that provides a texture to
// render into for every frame.
type SwapChain interface {
	// CurrentTextureView acquires the next texture and returns a
	// view of it; the view is owned by the caller.
	CurrentTextureView() (TextureView, error)

	// Format returns the texture format the surface was configured
	// with, which may differ from the requested one.
	Format() TextureFormat

	Present()
	Release()
}

type Buffer interface {
	Size() uint64
	Release()
}

type Texture interface {
	Width() uint32
	Height() uint32
	Format() TextureFormat
	CreateView() (TextureView, error)
	Release()
}

type TextureView interface {
	Release()
}

type Sampler interface {
	Release()
}

type ShaderModule interface {
	Release()
}

type BindGroupLayout interface {
	Release()
}

type BindGroup interface {
	Release()
}

type RenderPipeline interface {
	Release()
}

type CommandBuffer interface {
	Release()
}

type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPassEncoder, error)
	Finish() (CommandBuffer, error)
	Release()
}

type RenderPassEncoder interface {
	SetPipeline(pipeline RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buffer Buffer, offset, size uint64)
	SetIndexBuffer(buffer Buffer, format IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
	Release()
}
