// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen && ((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package webgpu

import (
	"fmt"

	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// note: this file contains the glfw dependencies, for desktop platform builds

// CreateGLFWSurface creates a surface for the given glfw window
// on a webgpu instance.
func CreateGLFWSurface(inst driver.Instance, window *glfw.Window) (driver.Surface, error) {
	in, ok := inst.(*Instance)
	if !ok || in == nil {
		return nil, fmt.Errorf("webgpu: instance %T is not a webgpu instance", inst)
	}
	sf := in.inst.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	if sf == nil {
		return nil, fmt.Errorf("webgpu: could not create surface")
	}
	return &Surface{surface: sf}, nil
}
