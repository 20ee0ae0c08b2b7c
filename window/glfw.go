// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen && ((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package window

import (
	"image"
	"log/slog"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
	"cogentcore.org/webgpudemo/gpu/driver/webgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// note: this file contains the glfw dependencies, for desktop platform builds

// Init initializes glfw.
// IMPORTANT: must be called on the main initial thread!
func Init() error {
	return errors.Log(glfw.Init())
}

// Terminate shuts down glfw -- call as last thing before quitting.
// IMPORTANT: must be called on the main initial thread!
func Terminate() {
	glfw.Terminate()
}

// Window is a glfw window without a client graphics API,
// for rendering with WebGPU.
type Window struct {
	glw *glfw.Window

	// FPS is the frame rate of [Window.Run], [FrameRate] if 0.
	FPS int

	resize func(size image.Point)
}

// New opens a window with the given size in screen units and title.
// [Init] must have been called.
func New(size image.Point, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glw, err := glfw.CreateWindow(size.X, size.Y, title, nil, nil)
	if errors.Log(err) != nil {
		return nil, err
	}
	w := &Window{glw: glw}
	glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.resize != nil {
			w.resize(image.Pt(width, height))
		}
	})
	slog.Info("window: opened", "title", title, "size", w.FramebufferSize())
	return w, nil
}

// SetResizeCallback sets the function called with the new
// framebuffer size when the window is resized.
func (w *Window) SetResizeCallback(fn func(size image.Point)) {
	w.resize = fn
}

// PollEvents processes pending window events, and returns false
// once the window should close.
func (w *Window) PollEvents() bool {
	if w.glw.ShouldClose() {
		return false
	}
	glfw.PollEvents()
	return true
}

// FramebufferSize returns the size of the framebuffer in pixels,
// which differs from the window size on high-DPI displays.
func (w *Window) FramebufferSize() image.Point {
	width, height := w.glw.GetFramebufferSize()
	return image.Pt(width, height)
}

// CreateSurface creates a surface for the window on the instance,
// which must come from the webgpu driver.
func (w *Window) CreateSurface(inst driver.Instance) (driver.Surface, error) {
	return webgpu.CreateGLFWSurface(inst, w.glw)
}

// Run renders frames with frame until the window is closed or
// frame returns an error.
func (w *Window) Run(frame func() error) error {
	return RunLoop(w.FPS, w.PollEvents, frame)
}

// Destroy closes the window.
func (w *Window) Destroy() {
	if w.glw != nil {
		w.glw.Destroy()
		w.glw = nil
	}
}
