// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// Frame is one frame being rendered: the acquired swapchain texture
// view, the command encoder, and the render pass recording into it.
// It is started by [GraphicsDevice.BeginFrame] and must be finished
// with [Frame.End].
type Frame struct {
	// Pass is the render pass encoder to record draw commands into.
	Pass driver.RenderPassEncoder

	gd      *GraphicsDevice
	view    driver.TextureView
	encoder driver.CommandEncoder
}

// ClearRenderPass returns a render pass descriptor that clears the
// view to the clear color, and the depth texture, if any, to 1.
func (gd *GraphicsDevice) ClearRenderPass(view driver.TextureView) *driver.RenderPassDescriptor {
	rp := &driver.RenderPassDescriptor{
		Label: "frame",
		ColorAttachments: []driver.ColorAttachment{{
			View:       view,
			LoadOp:     driver.LoadOpClear,
			StoreOp:    driver.StoreOpStore,
			ClearValue: gd.Options.ClearColor,
		}},
	}
	if gd.Depth != nil && gd.Depth.View() != nil {
		rp.DepthStencilAttachment = &driver.DepthStencilAttachment{
			View:            gd.Depth.View(),
			DepthLoadOp:     driver.LoadOpClear,
			DepthStoreOp:    driver.StoreOpStore,
			DepthClearValue: 1,
		}
	}
	return rp
}

// BeginFrame acquires the next swapchain texture and begins a render
// pass that clears it. If no texture is available, as when the
// surface is outdated, it returns an error wrapping [ErrSurfaceTexture]
// and the frame should be skipped.
func (gd *GraphicsDevice) BeginFrame() (*Frame, error) {
	if gd.Device == nil || gd.SwapChain == nil {
		return nil, ErrDeviceReleased
	}
	view, err := gd.SwapChain.CurrentTextureView()
	if err != nil {
		return nil, errors.Log(fmt.Errorf("%w: %w", ErrSurfaceTexture, err))
	}
	fr := &Frame{gd: gd, view: view}
	fr.encoder, err = gd.Device.CreateCommandEncoder("frame")
	if errors.Log(err) != nil {
		fr.release()
		return nil, err
	}
	fr.Pass, err = fr.encoder.BeginRenderPass(gd.ClearRenderPass(view))
	if errors.Log(err) != nil {
		fr.release()
		return nil, err
	}
	return fr, nil
}

// End ends the render pass, submits the recorded commands and
// presents the frame. All per-frame objects are released,
// also when an error is returned.
func (fr *Frame) End() error {
	defer fr.release()
	if err := fr.Pass.End(); err != nil {
		return errors.Log(err)
	}
	fr.Pass.Release() // must happen before Finish
	fr.Pass = nil
	cmd, err := fr.encoder.Finish()
	if err != nil {
		return errors.Log(err)
	}
	fr.gd.Queue.Submit(cmd)
	cmd.Release()
	fr.encoder.Release()
	fr.encoder = nil
	fr.gd.SwapChain.Present()
	return nil
}

// release releases whatever per-frame objects are still held.
func (fr *Frame) release() {
	if fr.Pass != nil {
		fr.Pass.Release()
		fr.Pass = nil
	}
	if fr.encoder != nil {
		fr.encoder.Release()
		fr.encoder = nil
	}
	if fr.view != nil {
		fr.view.Release()
		fr.view = nil
	}
}
