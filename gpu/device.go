// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// Window is a platform window that can be rendered to.
type Window interface {
	// FramebufferSize returns the size of the window in device pixels.
	FramebufferSize() image.Point

	// CreateSurface creates a rendering surface for the window.
	CreateSurface(inst driver.Instance) (driver.Surface, error)
}

// DeviceOptions are the options for [NewGraphicsDevice].
type DeviceOptions struct {
	// Label is the debug label of the device.
	Label string

	// Format is the swapchain texture format.
	Format driver.TextureFormat

	// PresentMode determines how frames are queued for display.
	PresentMode driver.PresentMode

	// Depth creates a depth texture matching the swapchain size.
	Depth bool

	// DepthFormat is the format of the depth texture.
	DepthFormat driver.TextureFormat

	// PowerPreference is the adapter selection hint.
	PowerPreference driver.PowerPreference

	// RequestTimeout bounds each of the adapter and device requests.
	RequestTimeout time.Duration

	// SharePipelines makes meshes with the same shader and vertex
	// layout share one pipeline.
	SharePipelines bool

	// ClearColor is the color each frame is cleared to.
	ClearColor driver.Color
}

// Defaults sets the default options.
func (do *DeviceOptions) Defaults() {
	do.Label = "webgpudemo"
	do.Format = driver.TextureFormatBGRA8Unorm
	do.PresentMode = driver.PresentModeFifo
	do.Depth = true
	do.DepthFormat = driver.TextureFormatDepth24Plus
	do.PowerPreference = driver.PowerPreferenceHighPerformance
	do.RequestTimeout = 5 * time.Second
	do.SharePipelines = true
	do.ClearColor = driver.Color{R: 0.1, G: 0.1, B: 0.15, A: 1}
}

// GraphicsDevice is the complete set of GPU objects needed to render
// into a window: the instance, surface, adapter, device, queue,
// swapchain and optional depth texture. It owns all of them and
// releases them in reverse order of creation.
type GraphicsDevice struct {
	// Options the device was created with.
	Options DeviceOptions

	Instance  driver.Instance
	Surface   driver.Surface
	Adapter   driver.Adapter
	Device    driver.Device
	Queue     driver.Queue
	SwapChain driver.SwapChain

	// Depth is the depth texture, nil unless Options.Depth.
	Depth *Texture

	// Size is the current swapchain size.
	Size image.Point

	// Pipelines are the graphics pipelines created on this device.
	Pipelines *PipelineCache

	// uncaptured counts uncaptured device errors.
	uncaptured atomic.Int64

	// lost is set once the device reports it was lost.
	lost atomic.Bool
}

// NewGraphicsDevice creates a GraphicsDevice rendering to the window
// using the given driver. If opts is nil the defaults are used.
// Requests for the adapter and the device each time out after
// Options.RequestTimeout, and also stop when ctx is done.
// On failure, everything created so far is released.
func NewGraphicsDevice(ctx context.Context, drv driver.Driver, win Window, opts *DeviceOptions) (*GraphicsDevice, error) {
	gd := &GraphicsDevice{}
	if opts != nil {
		gd.Options = *opts
	} else {
		gd.Options.Defaults()
	}
	if err := gd.init(ctx, drv, win); err != nil {
		gd.Release()
		return nil, err
	}
	return gd, nil
}

func (gd *GraphicsDevice) init(ctx context.Context, drv driver.Driver, win Window) error {
	if drv == nil {
		return fmt.Errorf("%w: no driver", ErrNoInstance)
	}
	inst, err := drv.CreateInstance()
	if err != nil {
		return errors.Log(fmt.Errorf("%w: %w", ErrNoInstance, err))
	}
	gd.Instance = inst

	sf, err := win.CreateSurface(inst)
	if err != nil {
		return errors.Log(fmt.Errorf("%w: %w", ErrNoSurface, err))
	}
	gd.Surface = sf

	actx, cancel := gd.requestContext(ctx)
	gd.Adapter, err = RequestAdapter(actx, inst, &driver.AdapterOptions{
		CompatibleSurface: sf,
		PowerPreference:   gd.Options.PowerPreference,
	})
	cancel()
	if err != nil {
		return errors.Log(err)
	}
	slog.Info("gpu: using adapter", "driver", drv.Name(), "adapter", gd.Adapter.Name())

	dctx, cancel := gd.requestContext(ctx)
	gd.Device, err = RequestDevice(dctx, gd.Adapter, &driver.DeviceDescriptor{
		Label:             gd.Options.Label,
		QueueLabel:        gd.Options.Label,
		OnUncapturedError: gd.uncapturedError,
		OnDeviceLost:      gd.deviceLost,
	})
	cancel()
	if err != nil {
		return errors.Log(err)
	}
	gd.Queue = gd.Device.Queue()

	if err := gd.configSurface(win.FramebufferSize()); err != nil {
		return err
	}
	gd.Pipelines = NewPipelineCache(gd.Options.SharePipelines)
	return nil
}

func (gd *GraphicsDevice) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if gd.Options.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, gd.Options.RequestTimeout)
}

// uncapturedError is the device callback for errors not captured by
// an error scope. It may be called on any goroutine.
func (gd *GraphicsDevice) uncapturedError(typ driver.ErrorType, message string) {
	gd.uncaptured.Add(1)
	slog.Error("gpu: uncaptured device error", "type", typ, "message", message)
}

// deviceLost is the device callback for device loss. Loss at release
// is expected, so it is only logged at debug level.
func (gd *GraphicsDevice) deviceLost(message string) {
	gd.lost.Store(true)
	slog.Debug("gpu: device lost", "message", message)
}

// UncapturedErrors returns the number of uncaptured device errors so far.
func (gd *GraphicsDevice) UncapturedErrors() int64 {
	return gd.uncaptured.Load()
}

// Lost returns whether the device has reported that it was lost.
func (gd *GraphicsDevice) Lost() bool {
	return gd.lost.Load()
}

// Format returns the swapchain texture format. It is the format the
// surface was configured with, which is Options.Format unless the
// surface does not support that.
func (gd *GraphicsDevice) Format() driver.TextureFormat {
	if gd.SwapChain != nil {
		return gd.SwapChain.Format()
	}
	return gd.Options.Format
}

// configSurface configures the swapchain, and the depth texture
// if enabled, at the given size.
func (gd *GraphicsDevice) configSurface(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("gpu: invalid surface size %v", size)
	}
	sc, err := gd.Device.CreateSwapChain(gd.Surface, &driver.SwapChainDescriptor{
		Width:       uint32(size.X),
		Height:      uint32(size.Y),
		Format:      gd.Options.Format,
		PresentMode: gd.Options.PresentMode,
		Usage:       driver.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Log(fmt.Errorf("gpu: configuring swapchain: %w", err))
	}
	gd.SwapChain = sc
	gd.Size = size
	if !gd.Options.Depth {
		return nil
	}
	if gd.Depth == nil {
		gd.Depth = NewTexture("depth")
	}
	if err := gd.Depth.ConfigDepth(gd, gd.Options.DepthFormat, size); err != nil {
		return errors.Log(fmt.Errorf("gpu: creating depth texture: %w", err))
	}
	return nil
}

// Resize reconfigures the swapchain and depth texture for a new
// window size. A size with zero area, as for a minimized window,
// is ignored, as is the current size.
func (gd *GraphicsDevice) Resize(size image.Point) error {
	if gd.Device == nil {
		return ErrDeviceReleased
	}
	if size.X <= 0 || size.Y <= 0 || size == gd.Size {
		return nil
	}
	slog.Debug("gpu: resize", "size", size)
	gd.releaseSurface()
	return gd.configSurface(size)
}

// Reconfigure configures the swapchain and depth texture again at
// the current size, as needed after the surface became outdated.
func (gd *GraphicsDevice) Reconfigure() error {
	if gd.Device == nil {
		return ErrDeviceReleased
	}
	slog.Debug("gpu: reconfiguring surface", "size", gd.Size)
	gd.releaseSurface()
	return gd.configSurface(gd.Size)
}

func (gd *GraphicsDevice) releaseSurface() {
	if gd.Depth != nil {
		gd.Depth.Release()
	}
	if gd.SwapChain != nil {
		gd.SwapChain.Release()
		gd.SwapChain = nil
	}
}

// Release releases all GPU objects in reverse order of creation.
// It is safe to call more than once, and on a partially
// initialized device.
func (gd *GraphicsDevice) Release() {
	if gd.Pipelines != nil {
		gd.Pipelines.Release()
		gd.Pipelines = nil
	}
	if gd.Depth != nil {
		gd.Depth.Release()
		gd.Depth = nil
	}
	if gd.SwapChain != nil {
		gd.SwapChain.Release()
		gd.SwapChain = nil
	}
	if gd.Queue != nil {
		gd.Queue.Release()
		gd.Queue = nil
	}
	if gd.Device != nil {
		gd.Device.Release()
		gd.Device = nil
	}
	if gd.Adapter != nil {
		gd.Adapter.Release()
		gd.Adapter = nil
	}
	if gd.Surface != nil {
		gd.Surface.Release()
		gd.Surface = nil
	}
	if gd.Instance != nil {
		gd.Instance.Release()
		gd.Instance = nil
	}
}
