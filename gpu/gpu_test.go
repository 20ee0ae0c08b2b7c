// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"cogentcore.org/webgpudemo/gpu/driver"
	"cogentcore.org/webgpudemo/gpu/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, opts drivertest.Options) (*GraphicsDevice, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New(opts)
	gd, err := NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(800, 600)}, nil)
	require.NoError(t, err)
	t.Cleanup(gd.Release)
	return gd, drv
}

func testPipeline() *PipelineDescriptor {
	pd := &PipelineDescriptor{Name: "test", Shader: "test", Code: "@vertex fn vs_main() {}"}
	pd.SetGraphicsDefaults()
	pd.Vertex.Add("position", Float32Vector3).Add("uv", Float32Vector2)
	pd.Bindings = []driver.BindGroupLayoutEntry{
		{Binding: 0, Visibility: driver.ShaderStageVertex, Type: driver.BindingUniformBuffer},
	}
	return pd
}

func TestNewGraphicsDevice(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	rec := drv.Rec

	assert.Equal(t, image.Pt(800, 600), gd.Size)
	sc := gd.SwapChain.(*drivertest.SwapChain)
	assert.Equal(t, uint32(800), sc.Desc.Width)
	assert.Equal(t, uint32(600), sc.Desc.Height)
	assert.Equal(t, driver.TextureFormatBGRA8Unorm, sc.Desc.Format)
	assert.Equal(t, driver.PresentModeFifo, sc.Desc.PresentMode)

	require.NotNil(t, gd.Depth)
	assert.Equal(t, image.Pt(800, 600), gd.Depth.Format.Size)
	assert.Equal(t, driver.TextureFormatDepth24Plus, gd.Depth.Format.Format)
	assert.NotNil(t, gd.Depth.View())

	order := []string{
		"CreateInstance",
		"CreateSurface",
		"RequestAdapter",
		"RequestDevice webgpudemo",
		"GetQueue",
		"CreateSwapChain 800x600 BGRA8Unorm",
		"CreateTexture depth 800x600 Depth24Plus",
	}
	last := -1
	for _, op := range order {
		i := rec.Index(op)
		require.GreaterOrEqual(t, i, 0, op)
		assert.Greater(t, i, last, op)
		last = i
	}
	assert.Empty(t, rec.Errors())
}

func TestNoDepth(t *testing.T) {
	drv := drivertest.New(drivertest.Options{})
	opts := &DeviceOptions{}
	opts.Defaults()
	opts.Depth = false
	gd, err := NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(64, 32)}, opts)
	require.NoError(t, err)
	defer gd.Release()
	assert.Nil(t, gd.Depth)
	assert.Equal(t, 0, drv.Rec.Count("CreateTexture"))
	assert.Nil(t, gd.ClearRenderPass(nil).DepthStencilAttachment)
}

func TestReleaseOrder(t *testing.T) {
	drv := drivertest.New(drivertest.Options{})
	gd, err := NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(800, 600)}, nil)
	require.NoError(t, err)
	_, err = gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)

	drv.Rec.Reset()
	gd.Release()
	assert.Equal(t, []string{
		"Release RenderPipeline test",
		"Release BindGroupLayout test",
		"Release ShaderModule test",
		"Release TextureView depth",
		"Release Texture depth",
		"Release SwapChain",
		"Release Queue webgpudemo",
		"Release Device webgpudemo",
		"Release Adapter",
		"Release Surface",
		"Release Instance",
	}, drv.Rec.OpsWithPrefix("Release"))
	assert.Equal(t, 0, drv.Rec.Live())

	gd.Release()
	assert.Empty(t, drv.Rec.DoubleReleases())
	assert.Nil(t, gd.Device)

	_, err = gd.BeginFrame()
	assert.ErrorIs(t, err, ErrDeviceReleased)
	assert.ErrorIs(t, gd.Resize(image.Pt(10, 10)), ErrDeviceReleased)
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name string
		opts drivertest.Options
		win  drivertest.Window
		err  error
	}{
		{"instance", drivertest.Options{FailInstance: true}, drivertest.Window{Size: image.Pt(8, 8)}, ErrNoInstance},
		{"surface", drivertest.Options{}, drivertest.Window{Size: image.Pt(8, 8), FailSurface: true}, ErrNoSurface},
		{"adapter", drivertest.Options{FailAdapter: true}, drivertest.Window{Size: image.Pt(8, 8)}, ErrAdapterUnavailable},
		{"device", drivertest.Options{FailDevice: true}, drivertest.Window{Size: image.Pt(8, 8)}, ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := drivertest.New(tt.opts)
			gd, err := NewGraphicsDevice(context.Background(), drv, &tt.win, nil)
			assert.Nil(t, gd)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, drv.Rec.Count("CreateSwapChain"))
			assert.Equal(t, 0, drv.Rec.Live(), drv.Rec.LiveKinds())
			assert.Empty(t, drv.Rec.DoubleReleases())
		})
	}
}

func TestAdapterRequestError(t *testing.T) {
	drv := drivertest.New(drivertest.Options{FailAdapter: true})
	_, err := NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(8, 8)}, nil)
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "adapter", re.Op)
	assert.Equal(t, driver.RequestStatusUnavailable, re.Status)
	assert.Equal(t, "no compatible adapter", re.Message)
	assert.Contains(t, err.Error(), "Unavailable")
}

func TestRequestTimeout(t *testing.T) {
	drv := drivertest.New(drivertest.Options{NoCallback: true})
	opts := &DeviceOptions{}
	opts.Defaults()
	opts.RequestTimeout = 20 * time.Millisecond
	start := time.Now()
	gd, err := NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(8, 8)}, opts)
	assert.Nil(t, gd)
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, drv.Rec.Live())
}

func TestRequestContextCanceled(t *testing.T) {
	drv := drivertest.New(drivertest.Options{NoCallback: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGraphicsDevice(ctx, drv, &drivertest.Window{Size: image.Pt(8, 8)}, nil)
	assert.ErrorIs(t, err, ErrRequestTimeout)
}

func TestAsyncCallbacks(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{AsyncCallbacks: true})
	assert.NotNil(t, gd.Device)
	assert.NotNil(t, gd.Queue)
	assert.Equal(t, 1, drv.Rec.Count("CreateSwapChain"))
}

func TestLateAdapterReleased(t *testing.T) {
	drv := drivertest.New(drivertest.Options{})
	inst, err := drv.CreateInstance()
	require.NoError(t, err)
	defer inst.Release()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the adapter is delivered synchronously, before await sees ctx
	// is done, or released if await gives up first
	ad, err := RequestAdapter(ctx, inst, &driver.AdapterOptions{})
	if err == nil {
		ad.Release()
	}
	assert.Equal(t, 1, drv.Rec.Live())
}

type countedHandle struct {
	released *int
}

func (h *countedHandle) Release() { *h.released++ }

func TestAwaitReleasesUnused(t *testing.T) {
	ctx := context.Background()
	released := 0
	h, err := await(ctx, "adapter", ErrAdapterUnavailable, func(done func(driver.RequestStatus, *countedHandle, string)) {
		done(driver.RequestStatusError, &countedHandle{&released}, "failed")
	})
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrAdapterUnavailable)
	assert.Equal(t, 1, released)

	first := &countedHandle{&released}
	h, err = await(ctx, "device", ErrDeviceUnavailable, func(done func(driver.RequestStatus, *countedHandle, string)) {
		done(driver.RequestStatusSuccess, first, "")
		done(driver.RequestStatusSuccess, &countedHandle{&released}, "")
	})
	require.NoError(t, err)
	assert.Same(t, first, h)
	assert.Equal(t, 2, released)
}

func TestUncapturedError(t *testing.T) {
	gd, _ := newTestDevice(t, drivertest.Options{})
	dv := gd.Device.(*drivertest.Device)
	dv.InjectError(driver.ErrorTypeValidation, "bad bind group")
	dv.InjectError(driver.ErrorTypeOutOfMemory, "out of memory")
	assert.Equal(t, int64(2), gd.UncapturedErrors())
	assert.False(t, gd.Lost())
	dv.Lose("destroyed")
	assert.True(t, gd.Lost())
}

func TestResize(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	rec := drv.Rec
	rec.Reset()

	require.NoError(t, gd.Resize(image.Pt(0, 300)))
	require.NoError(t, gd.Resize(image.Pt(800, 600)))
	assert.Empty(t, rec.Ops())

	require.NoError(t, gd.Resize(image.Pt(1024, 768)))
	assert.Equal(t, image.Pt(1024, 768), gd.Size)
	assert.Equal(t, 1, rec.Count("CreateSwapChain 1024x768"))
	assert.Equal(t, 1, rec.Count("CreateTexture depth 1024x768"))
	assert.Equal(t, 1, rec.Count("Release SwapChain"))
	assert.Equal(t, 1, rec.Count("Release Texture depth"))
}

func TestBuffers(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	rec := drv.Rec

	vb, err := MakeVertexBuffer(gd, "vertices", [][3]float32{{0, 0.5, 0}, {-0.5, -0.5, 0}, {0.5, -0.5, 0}})
	require.NoError(t, err)
	defer vb.Release()
	assert.Equal(t, 3, vb.Count)
	assert.Equal(t, 36, vb.Size)
	assert.Equal(t, 1, rec.Count("CreateBuffer vertices 36 CopyDst|Vertex"))

	ib, err := MakeIndexBuffer(gd, "indices", []uint32{0, 1, 2})
	require.NoError(t, err)
	defer ib.Release()
	ws := rec.WritesTo("indices")
	require.Len(t, ws, 1)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, ws[0].Data)

	odd, err := MakeBuffer(gd, "odd", driver.BufferUsageVertex, []uint16{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6, odd.Size)
	assert.Equal(t, 8, odd.AllocSize)
	ws = rec.WritesTo("odd")
	require.Len(t, ws, 1)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0, 0, 0}, ws[0].Data)
	odd.Release()
	odd.Release()
	assert.Empty(t, rec.DoubleReleases())
	assert.Error(t, odd.Write(gd, []byte{1, 2, 3, 4}))

	_, err = MakeUniformBuffer[float32](gd, "empty", nil)
	assert.Error(t, err)

	ub, err := MakeUniformBuffer(gd, "uniforms", []float32{1, 2, 3, 4})
	require.NoError(t, err)
	defer ub.Release()
	require.NoError(t, WriteBuffer(gd, ub, []float32{5, 6, 7, 8}))
	assert.Len(t, rec.WritesTo("uniforms"), 2)
	assert.Error(t, WriteBuffer(gd, ub, make([]float32, 8)))
	assert.Empty(t, rec.Errors())
}

func TestMemSizeAlign(t *testing.T) {
	assert.Equal(t, 16, MemSizeAlign(12, 16))
	assert.Equal(t, 16, MemSizeAlign(16, 16))
	assert.Equal(t, 8, MemSizeAlign(6, 4))
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 128, 255})
		}
	}
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestTextureLoadFromMemory(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	tx := NewTexture("albedo")
	require.NoError(t, tx.LoadFromMemory(gd, encodePNG(t, 8, 4)))
	defer tx.Release()
	assert.Equal(t, image.Pt(8, 4), tx.Format.Size)
	assert.Equal(t, 1, drv.Rec.Count("CreateTexture albedo 8x4 RGBA8UnormSrgb"))
	assert.Equal(t, 1, drv.Rec.Count("WriteTexture albedo 128"))
	assert.NotNil(t, tx.View())

	assert.Error(t, NewTexture("junk").LoadFromMemory(gd, []byte("not an image")))
	assert.Empty(t, drv.Rec.Errors())
}

func TestTextureFitsDeviceLimit(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{MaxTextureDimension: 4})
	tx := NewTexture("big")
	tx.Format.Format = driver.TextureFormatRGBA8Unorm
	require.NoError(t, tx.LoadFromMemory(gd, encodePNG(t, 8, 4)))
	defer tx.Release()
	assert.Equal(t, image.Pt(4, 2), tx.Format.Size)
	assert.Equal(t, 1, drv.Rec.Count("CreateTexture big 4x2 RGBA8Unorm"))
	assert.Empty(t, drv.Rec.Errors())
}

func TestSolidTexture(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	tx, err := NewSolidTexture(gd, "white", color.White, driver.TextureFormatRGBA8UnormSrgb)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1, 1), tx.Format.Size)
	tx.Release()
	tx.Release()
	assert.Empty(t, drv.Rec.DoubleReleases())

	_, err = NewSolidTexture(gd, "depth", color.White, driver.TextureFormatDepth32Float)
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	gd, _ := newTestDevice(t, drivertest.Options{})
	sm := &Sampler{Name: "material"}
	sm.Defaults()
	sm.UMode = driver.AddressModeClampToEdge
	require.NoError(t, sm.Config(gd))
	s := sm.Handle().(*drivertest.Sampler)
	assert.Equal(t, driver.AddressModeClampToEdge, s.Desc.AddressModeU)
	assert.Equal(t, driver.AddressModeRepeat, s.Desc.AddressModeV)
	assert.Equal(t, driver.FilterModeLinear, s.Desc.MagFilter)
	sm.Release()
	assert.Nil(t, sm.Handle())
}

func TestVertexLayout(t *testing.T) {
	var vl VertexLayout
	vl.Add("position", Float32Vector3).Add("uv", Float32Vector2).Add("normal", Float32Vector3).Add("tangent", Float32Vector4)
	assert.Equal(t, 48, vl.Stride())
	assert.Equal(t, 20, vl.Offset("normal"))
	assert.Equal(t, -1, vl.Offset("color"))
	bl := vl.BufferLayout()
	assert.Equal(t, uint64(48), bl.ArrayStride)
	require.Len(t, bl.Attributes, 4)
	assert.Equal(t, driver.VertexAttribute{Format: driver.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, bl.Attributes[3])
	assert.Equal(t, "0:Float32Vector3,1:Float32Vector2,2:Float32Vector3,3:Float32Vector4", vl.String())
}

func TestPipelineCache(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	a, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	b, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, gd.Pipelines.Len())
	assert.Equal(t, 1, drv.Rec.Count("CreateRenderPipeline"))

	rp := a.Handle().(*drivertest.RenderPipeline)
	assert.Equal(t, driver.TextureFormatBGRA8Unorm, rp.Desc.TargetFormat)
	require.NotNil(t, rp.Desc.DepthStencil)
	assert.Equal(t, driver.TextureFormatDepth24Plus, rp.Desc.DepthStencil.Format)
	assert.Equal(t, uint64(20), rp.Desc.Buffers[0].ArrayStride)

	other := testPipeline()
	other.Shader = "other"
	c, err := gd.Pipelines.Get(gd, other)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, gd.Pipelines.Len())
}

func TestPipelineCacheUnshared(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	gd.Pipelines = NewPipelineCache(false)
	a, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	b, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, drv.Rec.Count("CreateRenderPipeline"))
	gd.Pipelines.Release()
	assert.Equal(t, 0, gd.Pipelines.Len())
}

func TestPipelineCachePut(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	rec := drv.Rec
	a, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	b, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	require.Same(t, a, b)

	gd.Pipelines.Put(a)
	assert.Equal(t, 1, gd.Pipelines.Len())
	assert.Equal(t, 0, rec.Count("Release RenderPipeline"))
	gd.Pipelines.Put(b)
	assert.Equal(t, 0, gd.Pipelines.Len())
	assert.Equal(t, 1, rec.Count("Release RenderPipeline"))
	gd.Pipelines.Put(b)

	// a released key is created again
	c, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, rec.Count("CreateRenderPipeline"))

	gd.Pipelines = NewPipelineCache(false)
	d, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	gd.Pipelines.Put(d)
	assert.Equal(t, 0, gd.Pipelines.Len())
	assert.Equal(t, 2, rec.Count("Release RenderPipeline"))
	assert.Empty(t, rec.DoubleReleases())
}

func TestSurfaceFormatFallback(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{SurfaceFormats: []driver.TextureFormat{driver.TextureFormatRGBA8Unorm}})
	assert.Equal(t, driver.TextureFormatBGRA8Unorm, gd.Options.Format)
	assert.Equal(t, driver.TextureFormatRGBA8Unorm, gd.Format())
	assert.Equal(t, 1, drv.Rec.Count("CreateSwapChain 800x600 RGBA8Unorm"))

	pl, err := gd.Pipelines.Get(gd, testPipeline())
	require.NoError(t, err)
	rp := pl.Handle().(*drivertest.RenderPipeline)
	assert.Equal(t, driver.TextureFormatRGBA8Unorm, rp.Desc.TargetFormat)
}

func TestReconfigure(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	rec := drv.Rec
	rec.Reset()
	drv.OutdatedSurface = true

	_, err := gd.BeginFrame()
	require.ErrorIs(t, err, ErrSurfaceTexture)
	require.NoError(t, gd.Reconfigure())
	assert.Equal(t, image.Pt(800, 600), gd.Size)
	assert.Equal(t, 1, rec.Count("CreateSwapChain 800x600"))
	assert.Equal(t, 1, rec.Count("Release SwapChain"))

	fr, err := gd.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, fr.End())
	assert.Empty(t, rec.DoubleReleases())

	gd.Release()
	assert.ErrorIs(t, gd.Reconfigure(), ErrDeviceReleased)
}

func TestPipelineError(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	pd := testPipeline()
	pd.Code = ""
	_, err := gd.Pipelines.Get(gd, pd)
	assert.Error(t, err)
	pd = testPipeline()
	pd.FragmentEntry = ""
	_, err = gd.Pipelines.Get(gd, pd)
	assert.Error(t, err)
	assert.Equal(t, 0, gd.Pipelines.Len())
	assert.Equal(t, 1, drv.Rec.Count("Release ShaderModule test"))
}

func TestFrame(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{})
	gd.Options.ClearColor = driver.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}
	rec := drv.Rec
	rec.Reset()
	live := rec.Live()

	fr, err := gd.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, fr.End())
	assert.Equal(t, []string{
		"AcquireTexture",
		"CreateCommandEncoder frame",
		"BeginRenderPass",
		"EndPass",
		"Release RenderPassEncoder",
		"Finish",
		"Submit 1",
		"Release CommandBuffer",
		"Release CommandEncoder frame",
		"Present",
		"Release TextureView swapchain",
	}, rec.Ops())
	passes := rec.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, [4]float64{0.25, 0.5, 0.75, 1}, passes[0].Clear)
	assert.True(t, passes[0].HasDepth)
	assert.Equal(t, float32(1), passes[0].ClearDepth)
	assert.Equal(t, live, rec.Live())
	assert.Empty(t, rec.DoubleReleases())
}

func TestFrameNoSurfaceTexture(t *testing.T) {
	gd, drv := newTestDevice(t, drivertest.Options{FailSurfaceTexture: true})
	live := drv.Rec.Live()
	fr, err := gd.BeginFrame()
	assert.Nil(t, fr)
	assert.ErrorIs(t, err, ErrSurfaceTexture)
	assert.Equal(t, live, drv.Rec.Live())
	assert.Equal(t, 0, drv.Rec.Count("Present"))
}
