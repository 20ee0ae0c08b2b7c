// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render has the per-frame rendering of the demo scene.
package render

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/xyz"
)

// Context has everything needed to render a frame.
// All fields are only used on the render thread.
type Context struct {
	Device *gpu.GraphicsDevice

	// Model is drawn every frame; a nil model gives a clear-only frame.
	Model *xyz.Model

	Camera *xyz.Camera

	// Orbit animates the camera around its target.
	Orbit bool

	// OrbitSpeed is the orbit angle per frame in radians.
	OrbitSpeed float32

	// Watcher, if set, reloads the model when its asset changes.
	Watcher *Watcher

	// Frames is the number of frames rendered.
	Frames int

	// Skipped is the number of consecutive frames skipped because
	// the surface had no texture.
	Skipped int

	// FPSInterval is how often the frame rate is logged, 10s if 0.
	FPSInterval time.Duration

	fpsFrames int
	fpsStart  time.Time
}

// NewContext returns a render context for the device, model and
// camera, with the camera aspect set from the device size.
// A nil camera gets the default camera.
func NewContext(gd *gpu.GraphicsDevice, md *xyz.Model, cam *xyz.Camera) *Context {
	if cam == nil {
		cam = xyz.NewCamera()
	}
	cam.SetAspect(gd.Size)
	return &Context{Device: gd, Model: md, Camera: cam}
}

// OnRender renders one frame: it animates the camera, reloads the
// model if its asset changed, then acquires the surface texture,
// records a render pass that clears and draws the model, submits
// it and presents. If the surface has no texture the swapchain is
// reconfigured and an error wrapping [gpu.ErrSurfaceTexture] is
// returned; the next frame can then be rendered normally.
func OnRender(rc *Context) error {
	if rc.Orbit {
		rc.Camera.OrbitRad(rc.OrbitSpeed)
	}
	if rc.Watcher != nil && rc.Watcher.Changed() {
		rc.Reload()
	}

	gd := rc.Device
	fr, err := gd.BeginFrame()
	if err != nil {
		if errors.Is(err, gpu.ErrSurfaceTexture) {
			rc.Skipped++
			if rerr := gd.Reconfigure(); rerr != nil {
				return rerr
			}
		}
		return err
	}
	rc.Skipped = 0
	if rc.Model != nil {
		if err := rc.Model.Draw(gd, fr.Pass, rc.Camera); err != nil {
			fr.End()
			return err
		}
	}
	if err := fr.End(); err != nil {
		return err
	}
	rc.frameDone()
	return nil
}

func (rc *Context) frameDone() {
	rc.Frames++
	rc.fpsFrames++
	now := time.Now()
	if rc.fpsStart.IsZero() {
		rc.fpsStart = now
		return
	}
	interval := rc.FPSInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	dur := now.Sub(rc.fpsStart)
	if dur > interval {
		fps := float64(rc.fpsFrames) / dur.Seconds()
		slog.Info("render: frame rate", "fps", int(fps+0.5), "frames", rc.Frames)
		rc.fpsFrames = 0
		rc.fpsStart = now
	}
}

// Reload loads the model again from its asset. If that fails,
// the current model is kept and the error is logged.
func (rc *Context) Reload() {
	if rc.Model == nil || rc.Model.Path == "" {
		return
	}
	md := &xyz.Model{Shader: rc.Model.Shader}
	if err := md.Init(rc.Device, rc.Model.Path); err != nil {
		slog.Error("render: reloading model failed, keeping the current one", "path", rc.Model.Path, "err", err)
		return
	}
	rc.Model.Release()
	rc.Model = md
}

// Resize resizes the device surface and sets the camera aspect.
func (rc *Context) Resize(size image.Point) error {
	if err := rc.Device.Resize(size); err != nil {
		return err
	}
	rc.Camera.SetAspect(size)
	return nil
}

// Release releases the model and stops the watcher.
// The device is not released.
func (rc *Context) Release() {
	if rc.Watcher != nil {
		rc.Watcher.Close()
		rc.Watcher = nil
	}
	if rc.Model != nil {
		rc.Model.Release()
		rc.Model = nil
	}
}
