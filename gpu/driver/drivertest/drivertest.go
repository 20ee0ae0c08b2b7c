// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drivertest provides a recording GPU driver for tests.
// It allocates nothing on a GPU: every call is validated against the
// WebGPU rules the renderer relies on and recorded in a [Recorder].
package drivertest

import (
	"fmt"
	"image"
	"slices"

	"cogentcore.org/webgpudemo/gpu/driver"
)

// Name is the name the driver is registered under.
const Name = "drivertest"

func init() {
	driver.Register(New(Options{}))
}

// Options control the failures the driver simulates.
type Options struct {

	// FailInstance makes CreateInstance fail.
	FailInstance bool

	// FailAdapter makes the adapter request complete with
	// [driver.RequestStatusUnavailable].
	FailAdapter bool

	// FailDevice makes the device request complete with
	// [driver.RequestStatusError].
	FailDevice bool

	// NoCallback makes adapter requests never complete.
	NoCallback bool

	// AsyncCallbacks completes requests on a separate goroutine.
	AsyncCallbacks bool

	// FailSurfaceTexture makes the swapchain return no texture.
	FailSurfaceTexture bool

	// OutdatedSurface makes the swapchain return no texture until
	// it is created again, as for an outdated surface.
	OutdatedSurface bool

	// SurfaceFormats are the formats the surface supports;
	// all formats if empty. Swapchains for other formats are
	// configured with the first one.
	SurfaceFormats []driver.TextureFormat

	// MaxTextureDimension is the adapter limit, 8192 if zero.
	MaxTextureDimension uint32
}

// Driver is a recording [driver.Driver].
type Driver struct {
	Options

	// Rec records all calls made through objects of this driver.
	Rec *Recorder
}

// New returns a new driver with the given options and a fresh [Recorder].
func New(opts Options) *Driver {
	return &Driver{Options: opts, Rec: newRecorder()}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) CreateInstance() (driver.Instance, error) {
	if d.FailInstance {
		return nil, d.Rec.fail("CreateInstance: simulated failure")
	}
	d.Rec.record("CreateInstance")
	in := &Instance{drv: d}
	in.init(d.Rec, "Instance", "")
	return in, nil
}

func (d *Driver) complete(fn func()) {
	if d.AsyncCallbacks {
		go fn()
		return
	}
	fn()
}

// Window is a fake window with a fixed framebuffer size.
type Window struct {
	Size image.Point

	// FailSurface makes CreateSurface fail.
	FailSurface bool
}

func (w *Window) FramebufferSize() image.Point { return w.Size }

func (w *Window) CreateSurface(inst driver.Instance) (driver.Surface, error) {
	in, ok := inst.(*Instance)
	if !ok {
		return nil, fmt.Errorf("drivertest.Window: instance %T is not a drivertest instance", inst)
	}
	if w.FailSurface {
		return nil, in.drv.Rec.fail("CreateSurface: simulated failure")
	}
	in.drv.Rec.record("CreateSurface")
	sf := &Surface{}
	sf.init(in.drv.Rec, "Surface", "")
	return sf, nil
}

type Instance struct {
	object
	drv *Driver
}

func (in *Instance) RequestAdapter(opts *driver.AdapterOptions, callback driver.RequestAdapterCallback) {
	d := in.drv
	d.Rec.record("RequestAdapter")
	if d.NoCallback {
		return
	}
	d.complete(func() {
		if d.FailAdapter {
			callback(driver.RequestStatusUnavailable, nil, "no compatible adapter")
			return
		}
		ad := &Adapter{drv: d}
		ad.init(d.Rec, "Adapter", "")
		callback(driver.RequestStatusSuccess, ad, "")
	})
}

type Surface struct {
	object
}

type Adapter struct {
	object
	drv *Driver
}

func (ad *Adapter) Name() string { return "drivertest adapter" }

func (ad *Adapter) MaxTextureDimension2D() uint32 {
	if ad.drv.MaxTextureDimension == 0 {
		return 8192
	}
	return ad.drv.MaxTextureDimension
}

func (ad *Adapter) RequestDevice(desc *driver.DeviceDescriptor, callback driver.RequestDeviceCallback) {
	d := ad.drv
	d.Rec.record("RequestDevice %s", desc.Label)
	d.complete(func() {
		if d.FailDevice {
			callback(driver.RequestStatusError, nil, "device limits not supported")
			return
		}
		dv := &Device{drv: d, desc: *desc}
		dv.init(d.Rec, "Device", desc.Label)
		dv.queue = &Queue{drv: d}
		dv.queue.init(d.Rec, "Queue", desc.QueueLabel)
		callback(driver.RequestStatusSuccess, dv, "")
	})
}

// Device is a recording [driver.Device].
type Device struct {
	object
	drv   *Driver
	desc  driver.DeviceDescriptor
	queue *Queue
}

// InjectError reports an uncaptured error through the device
// descriptor callback, as a GPU validation failure would.
func (dv *Device) InjectError(typ driver.ErrorType, message string) {
	if dv.desc.OnUncapturedError != nil {
		dv.desc.OnUncapturedError(typ, message)
	}
}

// Lose reports device loss through the device descriptor callback.
func (dv *Device) Lose(message string) {
	if dv.desc.OnDeviceLost != nil {
		dv.desc.OnDeviceLost(message)
	}
}

func (dv *Device) Queue() driver.Queue {
	dv.drv.Rec.record("GetQueue")
	return dv.queue
}

func (dv *Device) CreateSwapChain(surface driver.Surface, desc *driver.SwapChainDescriptor) (driver.SwapChain, error) {
	if surface == nil {
		return nil, dv.drv.Rec.fail("CreateSwapChain: nil surface")
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, dv.drv.Rec.fail("CreateSwapChain: zero size %dx%d", desc.Width, desc.Height)
	}
	format := desc.Format
	if fs := dv.drv.SurfaceFormats; len(fs) > 0 && !slices.Contains(fs, format) {
		format = fs[0]
	}
	dv.drv.Rec.record("CreateSwapChain %dx%d %s", desc.Width, desc.Height, format)
	dv.drv.OutdatedSurface = false
	sc := &SwapChain{drv: dv.drv, Desc: *desc}
	sc.Desc.Format = format
	sc.init(dv.drv.Rec, "SwapChain", "")
	return sc, nil
}

func (dv *Device) CreateBuffer(desc *driver.BufferDescriptor) (driver.Buffer, error) {
	if desc.Size == 0 {
		return nil, dv.drv.Rec.fail("CreateBuffer %s: zero size", desc.Label)
	}
	if desc.Size%4 != 0 {
		return nil, dv.drv.Rec.fail("CreateBuffer %s: size %d not a multiple of 4", desc.Label, desc.Size)
	}
	dv.drv.Rec.record("CreateBuffer %s %d %s", desc.Label, desc.Size, desc.Usage)
	bf := &Buffer{Desc: *desc}
	bf.init(dv.drv.Rec, "Buffer", desc.Label)
	return bf, nil
}

func (dv *Device) CreateTexture(desc *driver.TextureDescriptor) (driver.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, dv.drv.Rec.fail("CreateTexture %s: zero size", desc.Label)
	}
	if desc.Format == driver.TextureFormatUndefined {
		return nil, dv.drv.Rec.fail("CreateTexture %s: undefined format", desc.Label)
	}
	dv.drv.Rec.record("CreateTexture %s %dx%d %s", desc.Label, desc.Width, desc.Height, desc.Format)
	tx := &Texture{drv: dv.drv, Desc: *desc}
	tx.init(dv.drv.Rec, "Texture", desc.Label)
	return tx, nil
}

func (dv *Device) CreateSampler(desc *driver.SamplerDescriptor) (driver.Sampler, error) {
	dv.drv.Rec.record("CreateSampler %s", desc.Label)
	sm := &Sampler{Desc: *desc}
	sm.init(dv.drv.Rec, "Sampler", desc.Label)
	return sm, nil
}

func (dv *Device) CreateShaderModule(desc *driver.ShaderModuleDescriptor) (driver.ShaderModule, error) {
	if desc.Code == "" {
		return nil, dv.drv.Rec.fail("CreateShaderModule %s: no code", desc.Label)
	}
	dv.drv.Rec.record("CreateShaderModule %s", desc.Label)
	sm := &ShaderModule{Code: desc.Code}
	sm.init(dv.drv.Rec, "ShaderModule", desc.Label)
	return sm, nil
}

func (dv *Device) CreateBindGroupLayout(desc *driver.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	seen := map[uint32]bool{}
	for _, e := range desc.Entries {
		if seen[e.Binding] {
			return nil, dv.drv.Rec.fail("CreateBindGroupLayout %s: duplicate binding %d", desc.Label, e.Binding)
		}
		seen[e.Binding] = true
	}
	dv.drv.Rec.record("CreateBindGroupLayout %s", desc.Label)
	bl := &BindGroupLayout{Entries: append([]driver.BindGroupLayoutEntry(nil), desc.Entries...)}
	bl.init(dv.drv.Rec, "BindGroupLayout", desc.Label)
	return bl, nil
}

func (dv *Device) CreateBindGroup(desc *driver.BindGroupDescriptor) (driver.BindGroup, error) {
	rec := dv.drv.Rec
	bl, ok := desc.Layout.(*BindGroupLayout)
	if !ok || bl == nil {
		return nil, rec.fail("CreateBindGroup %s: invalid layout", desc.Label)
	}
	if len(desc.Entries) != len(bl.Entries) {
		return nil, rec.fail("CreateBindGroup %s: %d entries for a layout with %d", desc.Label, len(desc.Entries), len(bl.Entries))
	}
	for _, le := range bl.Entries {
		var entry *driver.BindGroupEntry
		for i := range desc.Entries {
			if desc.Entries[i].Binding == le.Binding {
				entry = &desc.Entries[i]
			}
		}
		if entry == nil {
			return nil, rec.fail("CreateBindGroup %s: missing binding %d", desc.Label, le.Binding)
		}
		var set bool
		switch le.Type {
		case driver.BindingUniformBuffer:
			set = entry.Buffer != nil
		case driver.BindingSampler:
			set = entry.Sampler != nil
		case driver.BindingTexture:
			set = entry.TextureView != nil
		}
		if !set {
			return nil, rec.fail("CreateBindGroup %s: binding %d needs a %s", desc.Label, le.Binding, le.Type)
		}
	}
	rec.record("CreateBindGroup %s", desc.Label)
	bg := &BindGroup{}
	bg.init(rec, "BindGroup", desc.Label)
	return bg, nil
}

func (dv *Device) CreateRenderPipeline(desc *driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	rec := dv.drv.Rec
	if desc.Module == nil || desc.Layout == nil {
		return nil, rec.fail("CreateRenderPipeline %s: missing module or layout", desc.Label)
	}
	if desc.VertexEntry == "" || desc.FragmentEntry == "" {
		return nil, rec.fail("CreateRenderPipeline %s: missing entry point", desc.Label)
	}
	rec.record("CreateRenderPipeline %s", desc.Label)
	pl := &RenderPipeline{Desc: *desc}
	pl.init(rec, "RenderPipeline", desc.Label)
	return pl, nil
}

func (dv *Device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	dv.drv.Rec.record("CreateCommandEncoder %s", label)
	ce := &CommandEncoder{drv: dv.drv}
	ce.init(dv.drv.Rec, "CommandEncoder", label)
	return ce, nil
}

type Queue struct {
	object
	drv *Driver
}

func (q *Queue) WriteBuffer(buffer driver.Buffer, offset uint64, data []byte) error {
	rec := q.drv.Rec
	bf, ok := buffer.(*Buffer)
	if !ok || bf == nil {
		return rec.fail("WriteBuffer: invalid buffer")
	}
	if !rec.isLive(&bf.object) {
		return rec.fail("WriteBuffer %s: buffer released", bf.label)
	}
	if bf.Desc.Usage&driver.BufferUsageCopyDst == 0 {
		return rec.fail("WriteBuffer %s: buffer lacks CopyDst usage", bf.label)
	}
	if offset+uint64(len(data)) > bf.Desc.Size {
		return rec.fail("WriteBuffer %s: %d bytes at %d overflow size %d", bf.label, len(data), offset, bf.Desc.Size)
	}
	if len(data)%4 != 0 || offset%4 != 0 {
		return rec.fail("WriteBuffer %s: unaligned write", bf.label)
	}
	rec.record("WriteBuffer %s %d", bf.label, len(data))
	rec.mu.Lock()
	rec.writes = append(rec.writes, BufferWrite{Buffer: bf.label, Offset: offset, Data: append([]byte(nil), data...)})
	rec.mu.Unlock()
	return nil
}

func (q *Queue) WriteTexture(texture driver.Texture, data []byte, bytesPerRow uint32) error {
	rec := q.drv.Rec
	tx, ok := texture.(*Texture)
	if !ok || tx == nil {
		return rec.fail("WriteTexture: invalid texture")
	}
	if tx.Desc.Usage&driver.TextureUsageCopyDst == 0 {
		return rec.fail("WriteTexture %s: texture lacks CopyDst usage", tx.label)
	}
	want := tx.Desc.Width * uint32(tx.Desc.Format.BytesPerPixel())
	if bytesPerRow != want {
		return rec.fail("WriteTexture %s: bytesPerRow %d, want %d", tx.label, bytesPerRow, want)
	}
	if uint32(len(data)) != bytesPerRow*tx.Desc.Height {
		return rec.fail("WriteTexture %s: %d bytes, want %d", tx.label, len(data), bytesPerRow*tx.Desc.Height)
	}
	rec.record("WriteTexture %s %d", tx.label, len(data))
	return nil
}

func (q *Queue) Submit(commands ...driver.CommandBuffer) {
	q.drv.Rec.record("Submit %d", len(commands))
}

// SwapChain is a recording [driver.SwapChain].
type SwapChain struct {
	object
	drv  *Driver
	Desc driver.SwapChainDescriptor
}

func (sc *SwapChain) CurrentTextureView() (driver.TextureView, error) {
	if sc.drv.FailSurfaceTexture {
		return nil, sc.drv.Rec.fail("CurrentTextureView: no surface texture")
	}
	if sc.drv.OutdatedSurface {
		return nil, sc.drv.Rec.fail("CurrentTextureView: surface outdated")
	}
	sc.drv.Rec.record("AcquireTexture")
	vw := &TextureView{}
	vw.init(sc.drv.Rec, "TextureView", "swapchain")
	return vw, nil
}

func (sc *SwapChain) Format() driver.TextureFormat { return sc.Desc.Format }

func (sc *SwapChain) Present() {
	sc.drv.Rec.record("Present")
}

// Buffer is a recording [driver.Buffer].
type Buffer struct {
	object
	Desc driver.BufferDescriptor
}

func (bf *Buffer) Size() uint64 { return bf.Desc.Size }

// Texture is a recording [driver.Texture].
type Texture struct {
	object
	drv  *Driver
	Desc driver.TextureDescriptor
}

func (tx *Texture) Width() uint32                { return tx.Desc.Width }
func (tx *Texture) Height() uint32               { return tx.Desc.Height }
func (tx *Texture) Format() driver.TextureFormat { return tx.Desc.Format }

func (tx *Texture) CreateView() (driver.TextureView, error) {
	tx.drv.Rec.record("CreateTextureView %s", tx.label)
	vw := &TextureView{}
	vw.init(tx.drv.Rec, "TextureView", tx.label)
	return vw, nil
}

type TextureView struct {
	object
}

// Sampler is a recording [driver.Sampler].
type Sampler struct {
	object
	Desc driver.SamplerDescriptor
}

// ShaderModule is a recording [driver.ShaderModule].
type ShaderModule struct {
	object
	Code string
}

// BindGroupLayout is a recording [driver.BindGroupLayout].
type BindGroupLayout struct {
	object
	Entries []driver.BindGroupLayoutEntry
}

type BindGroup struct {
	object
}

// RenderPipeline is a recording [driver.RenderPipeline].
type RenderPipeline struct {
	object
	Desc driver.RenderPipelineDescriptor
}

type CommandBuffer struct {
	object
}

type CommandEncoder struct {
	object
	drv      *Driver
	finished bool
}

func (ce *CommandEncoder) BeginRenderPass(desc *driver.RenderPassDescriptor) (driver.RenderPassEncoder, error) {
	rec := ce.drv.Rec
	if ce.finished {
		return nil, rec.fail("BeginRenderPass: encoder finished")
	}
	if len(desc.ColorAttachments) == 0 || desc.ColorAttachments[0].View == nil {
		return nil, rec.fail("BeginRenderPass: no color attachment view")
	}
	info := PassInfo{}
	c := desc.ColorAttachments[0].ClearValue
	info.Clear = [4]float64{c.R, c.G, c.B, c.A}
	if ds := desc.DepthStencilAttachment; ds != nil {
		if ds.View == nil {
			return nil, rec.fail("BeginRenderPass: depth attachment without view")
		}
		info.HasDepth = true
		info.ClearDepth = ds.DepthClearValue
	}
	rec.record("BeginRenderPass")
	rec.mu.Lock()
	rec.passes = append(rec.passes, info)
	pass := len(rec.passes) - 1
	rec.mu.Unlock()
	rp := &RenderPass{drv: ce.drv, pass: pass}
	rp.init(rec, "RenderPassEncoder", "")
	return rp, nil
}

func (ce *CommandEncoder) Finish() (driver.CommandBuffer, error) {
	if ce.finished {
		return nil, ce.drv.Rec.fail("Finish: encoder already finished")
	}
	ce.finished = true
	ce.drv.Rec.record("Finish")
	cb := &CommandBuffer{}
	cb.init(ce.drv.Rec, "CommandBuffer", "")
	return cb, nil
}

// RenderPass is a recording [driver.RenderPassEncoder].
type RenderPass struct {
	object
	drv       *Driver
	pass      int
	ended     bool
	pipeline  *RenderPipeline
	bindGroup *BindGroup
	vertex    bool
	index     bool
}

func (rp *RenderPass) SetPipeline(pipeline driver.RenderPipeline) {
	pl, _ := pipeline.(*RenderPipeline)
	rp.pipeline = pl
	if pl != nil {
		rp.drv.Rec.record("SetPipeline %s", pl.label)
	}
}

func (rp *RenderPass) SetBindGroup(index uint32, group driver.BindGroup) {
	bg, _ := group.(*BindGroup)
	rp.bindGroup = bg
	if bg != nil {
		rp.drv.Rec.record("SetBindGroup %d %s", index, bg.label)
	}
}

func (rp *RenderPass) SetVertexBuffer(slot uint32, buffer driver.Buffer, offset, size uint64) {
	bf, _ := buffer.(*Buffer)
	rp.vertex = bf != nil
	if bf != nil {
		rp.drv.Rec.record("SetVertexBuffer %d %s", slot, bf.label)
	}
}

func (rp *RenderPass) SetIndexBuffer(buffer driver.Buffer, format driver.IndexFormat, offset, size uint64) {
	bf, _ := buffer.(*Buffer)
	rp.index = bf != nil
	if bf != nil {
		rp.drv.Rec.record("SetIndexBuffer %s", bf.label)
	}
}

func (rp *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	rec := rp.drv.Rec
	if rp.ended {
		rec.fail("DrawIndexed: pass ended")
		return
	}
	if rp.pipeline == nil || rp.bindGroup == nil || !rp.vertex || !rp.index {
		rec.fail("DrawIndexed: pipeline, bind group, vertex and index buffers must be set")
		return
	}
	rec.record("DrawIndexed %d %d %d %d %d", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	rec.mu.Lock()
	rec.draws = append(rec.draws, DrawCall{
		Pipeline:      rp.pipeline.label,
		BindGroup:     rp.bindGroup.label,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
	rec.passes[rp.pass].Draws++
	rec.mu.Unlock()
}

func (rp *RenderPass) End() error {
	if rp.ended {
		return rp.drv.Rec.fail("End: pass already ended")
	}
	rp.ended = true
	rp.drv.Rec.record("EndPass")
	return nil
}
