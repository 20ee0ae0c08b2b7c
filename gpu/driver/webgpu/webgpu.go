// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package webgpu implements the [driver] interfaces on top of the
// native WebGPU implementation in github.com/cogentcore/webgpu.
// Importing it registers the driver under the name "webgpu".
package webgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/cogentcore/webgpu/wgpu"
)

// Name is the name the driver is registered under.
const Name = "webgpu"

func init() {
	driver.Register(Driver{})
}

// Driver is the WebGPU [driver.Driver].
type Driver struct{}

func (Driver) Name() string { return Name }

func (Driver) CreateInstance() (driver.Instance, error) {
	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("webgpu: could not create instance")
	}
	return &Instance{inst: inst}, nil
}

// Instance wraps a [wgpu.Instance].
type Instance struct {
	inst *wgpu.Instance
}

// Native returns the underlying instance, for creating surfaces.
func (in *Instance) Native() *wgpu.Instance { return in.inst }

func (in *Instance) RequestAdapter(opts *driver.AdapterOptions, callback driver.RequestAdapterCallback) {
	wopts := &wgpu.RequestAdapterOptions{
		PowerPreference:      powerPreference(opts.PowerPreference),
		ForceFallbackAdapter: opts.ForceFallback,
	}
	if sf, ok := opts.CompatibleSurface.(*Surface); ok && sf != nil {
		wopts.CompatibleSurface = sf.surface
	}
	a, err := in.inst.RequestAdapter(wopts)
	if err != nil || a == nil {
		msg := "no adapter"
		if err != nil {
			msg = err.Error()
		}
		callback(driver.RequestStatusUnavailable, nil, msg)
		return
	}
	callback(driver.RequestStatusSuccess, &Adapter{adapter: a}, "")
}

func (in *Instance) Release() { in.inst.Release() }

// Surface wraps a [wgpu.Surface].
type Surface struct {
	surface *wgpu.Surface
}

func (sf *Surface) Release() { sf.surface.Release() }

// Adapter wraps a [wgpu.Adapter].
type Adapter struct {
	adapter *wgpu.Adapter
}

func (ad *Adapter) Name() string { return "webgpu adapter" }

func (ad *Adapter) MaxTextureDimension2D() uint32 {
	return ad.adapter.GetLimits().Limits.MaxTextureDimension2D
}

// RequestDevice requests the device. The binding has no default queue
// descriptor, so desc.QueueLabel is not used.
func (ad *Adapter) RequestDevice(desc *driver.DeviceDescriptor, callback driver.RequestDeviceCallback) {
	wdesc := &wgpu.DeviceDescriptor{Label: desc.Label}
	if desc.OnDeviceLost != nil {
		wdesc.DeviceLostCallback = func(_ wgpu.DeviceLostReason, message string) {
			desc.OnDeviceLost(message)
		}
	}
	d, err := ad.adapter.RequestDevice(wdesc)
	if err != nil || d == nil {
		msg := "no device"
		if err != nil {
			msg = err.Error()
		}
		callback(driver.RequestStatusError, nil, msg)
		return
	}
	errs := errorSink(desc.OnUncapturedError)
	callback(driver.RequestStatusSuccess, &Device{device: d, adapter: ad.adapter, queue: &Queue{queue: d.GetQueue(), errs: errs}, errs: errs}, "")
}

func (ad *Adapter) Release() { ad.adapter.Release() }

// errorSink passes errors returned by binding calls on to the
// uncaptured error callback of the device, as wgpu-native reports
// them per call instead of through the device.
type errorSink func(typ driver.ErrorType, message string)

// report calls the sink for a non-nil error and returns the error.
func (es errorSink) report(err error) error {
	if err == nil || es == nil {
		return err
	}
	var we *wgpu.Error
	if errors.As(err, &we) {
		es(errorType(we.Type), we.Message)
	} else {
		es(driver.ErrorTypeUnknown, err.Error())
	}
	return err
}

// Device wraps a [wgpu.Device]. The adapter is kept for surface
// configuration, which needs both.
type Device struct {
	device  *wgpu.Device
	adapter *wgpu.Adapter
	queue   *Queue
	errs    errorSink
}

func (dv *Device) Queue() driver.Queue { return dv.queue }

func (dv *Device) CreateSwapChain(surface driver.Surface, desc *driver.SwapChainDescriptor) (driver.SwapChain, error) {
	sf, ok := surface.(*Surface)
	if !ok || sf == nil {
		return nil, fmt.Errorf("webgpu: CreateSwapChain: surface %T is not a webgpu surface", surface)
	}
	caps := sf.surface.GetCapabilities(dv.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("webgpu: surface is not compatible with the adapter")
	}
	format, err := surfaceFormat(desc.Format, caps.Formats)
	if err != nil {
		return nil, err
	}
	if format != desc.Format {
		slog.Warn("webgpu: surface does not support the requested format", "requested", desc.Format, "using", format)
	}
	sf.surface.Configure(dv.adapter, dv.device, &wgpu.SurfaceConfiguration{
		Usage:       textureUsage(desc.Usage),
		Format:      textureFormat(format),
		Width:       desc.Width,
		Height:      desc.Height,
		PresentMode: presentMode(desc.PresentMode),
		AlphaMode:   caps.AlphaModes[0],
	})
	return &SwapChain{surface: sf.surface, format: format}, nil
}

func (dv *Device) CreateBuffer(desc *driver.BufferDescriptor) (driver.Buffer, error) {
	b, err := dv.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &Buffer{buffer: b, size: desc.Size}, nil
}

func (dv *Device) CreateTexture(desc *driver.TextureDescriptor) (driver.Texture, error) {
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	t, err := dv.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        textureFormat(desc.Format),
		Usage:         textureUsage(desc.Usage),
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &Texture{texture: t, desc: *desc}, nil
}

func (dv *Device) CreateSampler(desc *driver.SamplerDescriptor) (driver.Sampler, error) {
	s, err := dv.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressMode(desc.AddressModeU),
		AddressModeV:  addressMode(desc.AddressModeV),
		AddressModeW:  addressMode(desc.AddressModeW),
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &Sampler{sampler: s}, nil
}

func (dv *Device) CreateShaderModule(desc *driver.ShaderModuleDescriptor) (driver.ShaderModule, error) {
	m, err := dv.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Code},
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &ShaderModule{module: m}, nil
}

func (dv *Device) CreateBindGroupLayout(desc *driver.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		we := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: shaderStage(e.Visibility),
		}
		switch e.Type {
		case driver.BindingUniformBuffer:
			we.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
		case driver.BindingSampler:
			we.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		case driver.BindingTexture:
			we.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		default:
			return nil, fmt.Errorf("webgpu: binding %d: unsupported binding type %s", e.Binding, e.Type)
		}
		entries[i] = we
	}
	bl, err := dv.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	pl, err := dv.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bl},
	})
	if err != nil {
		bl.Release()
		return nil, dv.errs.report(err)
	}
	return &BindGroupLayout{layout: bl, pipelineLayout: pl}, nil
}

func (dv *Device) CreateBindGroup(desc *driver.BindGroupDescriptor) (driver.BindGroup, error) {
	bl, ok := desc.Layout.(*BindGroupLayout)
	if !ok || bl == nil {
		return nil, fmt.Errorf("webgpu: CreateBindGroup %s: invalid layout", desc.Label)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		we := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			we.Buffer = e.Buffer.(*Buffer).buffer
			we.Offset = e.Offset
			we.Size = e.Size
			if we.Size == 0 {
				we.Size = wgpu.WholeSize
			}
		case e.Sampler != nil:
			we.Sampler = e.Sampler.(*Sampler).sampler
		case e.TextureView != nil:
			we.TextureView = e.TextureView.(*TextureView).view
		}
		entries[i] = we
	}
	bg, err := dv.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  bl.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &BindGroup{group: bg}, nil
}

func (dv *Device) CreateRenderPipeline(desc *driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	bl, ok := desc.Layout.(*BindGroupLayout)
	if !ok || bl == nil {
		return nil, fmt.Errorf("webgpu: CreateRenderPipeline %s: invalid layout", desc.Label)
	}
	module := desc.Module.(*ShaderModule).module
	buffers := make([]wgpu.VertexBufferLayout, len(desc.Buffers))
	for i, b := range desc.Buffers {
		attrs := make([]wgpu.VertexAttribute, len(b.Attributes))
		for j, a := range b.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         vertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: b.ArrayStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}
	blend := &wgpu.BlendStateReplace
	if desc.AlphaBlend {
		blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	pd := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: bl.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    textureFormat(desc.TargetFormat),
				Blend:     blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(desc.Topology),
			FrontFace: frontFace(desc.FrontFace),
			CullMode:  cullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	}
	if ds := desc.DepthStencil; ds != nil {
		pd.DepthStencil = &wgpu.DepthStencilState{
			Format:            textureFormat(ds.Format),
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      compareFunction(ds.DepthCompare),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	rp, err := dv.device.CreateRenderPipeline(pd)
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &RenderPipeline{pipeline: rp}, nil
}

func (dv *Device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	var desc *wgpu.CommandEncoderDescriptor
	if label != "" {
		desc = &wgpu.CommandEncoderDescriptor{Label: label}
	}
	ce, err := dv.device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, dv.errs.report(err)
	}
	return &CommandEncoder{encoder: ce, errs: dv.errs}, nil
}

func (dv *Device) Release() { dv.device.Release() }

// Queue wraps a [wgpu.Queue].
type Queue struct {
	queue *wgpu.Queue
	errs  errorSink
}

func (q *Queue) WriteBuffer(buffer driver.Buffer, offset uint64, data []byte) error {
	return q.errs.report(q.queue.WriteBuffer(buffer.(*Buffer).buffer, offset, data))
}

func (q *Queue) WriteTexture(texture driver.Texture, data []byte, bytesPerRow uint32) error {
	tx := texture.(*Texture)
	size := wgpu.Extent3D{
		Width:              tx.desc.Width,
		Height:             tx.desc.Height,
		DepthOrArrayLayers: 1,
	}
	// https://www.w3.org/TR/webgpu/#gpuimagecopytexture
	err := q.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  tx.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: tx.desc.Height,
		},
		&size,
	)
	return q.errs.report(err)
}

func (q *Queue) Submit(commands ...driver.CommandBuffer) {
	cbs := make([]*wgpu.CommandBuffer, len(commands))
	for i, c := range commands {
		cbs[i] = c.(*CommandBuffer).buffer
	}
	q.queue.Submit(cbs...)
}

func (q *Queue) Release() { q.queue.Release() }

// SwapChain is a configured [wgpu.Surface]. It holds the surface
// texture acquired for the current frame until Present.
type SwapChain struct {
	surface *wgpu.Surface
	current *wgpu.Texture
	format  driver.TextureFormat
}

// Format returns the format the surface was configured with.
func (sc *SwapChain) Format() driver.TextureFormat { return sc.format }

func (sc *SwapChain) CurrentTextureView() (driver.TextureView, error) {
	tex, err := sc.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	sc.current = tex
	return &TextureView{view: view}, nil
}

func (sc *SwapChain) Present() {
	sc.surface.Present()
	if sc.current != nil {
		sc.current.Release()
		sc.current = nil
	}
}

// Release drops the current frame texture. The surface itself is
// owned and released by the [Surface].
func (sc *SwapChain) Release() {
	if sc.current != nil {
		sc.current.Release()
		sc.current = nil
	}
}

type Buffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

func (b *Buffer) Size() uint64 { return b.size }
func (b *Buffer) Release()     { b.buffer.Release() }

type Texture struct {
	texture *wgpu.Texture
	desc    driver.TextureDescriptor
}

func (t *Texture) Width() uint32                { return t.desc.Width }
func (t *Texture) Height() uint32               { return t.desc.Height }
func (t *Texture) Format() driver.TextureFormat { return t.desc.Format }

func (t *Texture) CreateView() (driver.TextureView, error) {
	v, err := t.texture.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &TextureView{view: v}, nil
}

func (t *Texture) Release() { t.texture.Release() }

type TextureView struct{ view *wgpu.TextureView }

func (v *TextureView) Release() { v.view.Release() }

type Sampler struct{ sampler *wgpu.Sampler }

func (s *Sampler) Release() { s.sampler.Release() }

type ShaderModule struct{ module *wgpu.ShaderModule }

func (m *ShaderModule) Release() { m.module.Release() }

// BindGroupLayout holds the bind group layout and the pipeline
// layout made of it, as pipelines here use a single group.
type BindGroupLayout struct {
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
}

func (l *BindGroupLayout) Release() {
	l.pipelineLayout.Release()
	l.layout.Release()
}

type BindGroup struct{ group *wgpu.BindGroup }

func (g *BindGroup) Release() { g.group.Release() }

type RenderPipeline struct{ pipeline *wgpu.RenderPipeline }

func (p *RenderPipeline) Release() { p.pipeline.Release() }

type CommandBuffer struct{ buffer *wgpu.CommandBuffer }

func (c *CommandBuffer) Release() { c.buffer.Release() }

type CommandEncoder struct {
	encoder *wgpu.CommandEncoder
	errs    errorSink
}

func (ce *CommandEncoder) BeginRenderPass(desc *driver.RenderPassDescriptor) (driver.RenderPassEncoder, error) {
	rpd := &wgpu.RenderPassDescriptor{Label: desc.Label}
	for _, ca := range desc.ColorAttachments {
		rpd.ColorAttachments = append(rpd.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:    ca.View.(*TextureView).view,
			LoadOp:  loadOp(ca.LoadOp),
			StoreOp: storeOp(ca.StoreOp),
			ClearValue: wgpu.Color{
				R: ca.ClearValue.R,
				G: ca.ClearValue.G,
				B: ca.ClearValue.B,
				A: ca.ClearValue.A,
			},
		})
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		rpd.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            ds.View.(*TextureView).view,
			DepthLoadOp:     loadOp(ds.DepthLoadOp),
			DepthStoreOp:    storeOp(ds.DepthStoreOp),
			DepthClearValue: ds.DepthClearValue,
		}
	}
	return &RenderPassEncoder{pass: ce.encoder.BeginRenderPass(rpd)}, nil
}

func (ce *CommandEncoder) Finish() (driver.CommandBuffer, error) {
	cb, err := ce.encoder.Finish(nil)
	if err != nil {
		return nil, ce.errs.report(err)
	}
	return &CommandBuffer{buffer: cb}, nil
}

func (ce *CommandEncoder) Release() { ce.encoder.Release() }

type RenderPassEncoder struct{ pass *wgpu.RenderPassEncoder }

func (rp *RenderPassEncoder) SetPipeline(pipeline driver.RenderPipeline) {
	rp.pass.SetPipeline(pipeline.(*RenderPipeline).pipeline)
}

func (rp *RenderPassEncoder) SetBindGroup(index uint32, group driver.BindGroup) {
	rp.pass.SetBindGroup(index, group.(*BindGroup).group, nil) // note: nil is dynamic offsets
}

func (rp *RenderPassEncoder) SetVertexBuffer(slot uint32, buffer driver.Buffer, offset, size uint64) {
	rp.pass.SetVertexBuffer(slot, buffer.(*Buffer).buffer, offset, size)
}

func (rp *RenderPassEncoder) SetIndexBuffer(buffer driver.Buffer, format driver.IndexFormat, offset, size uint64) {
	rp.pass.SetIndexBuffer(buffer.(*Buffer).buffer, indexFormat(format), offset, size)
}

func (rp *RenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	rp.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (rp *RenderPassEncoder) End() error {
	rp.pass.End()
	return nil
}

func (rp *RenderPassEncoder) Release() { rp.pass.Release() }
