// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// clipDepth maps the OpenGL [-1, 1] clip depth produced by
// mgl32.Perspective to the [0, 1] range used by WebGPU.
var clipDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera defines the properties of the camera
type Camera struct {
	// overall orientation and direction of the camera, relative to pointing at negative Z axis with up (positive Y) direction
	Transform Transform

	// target location for the camera -- where it is pointing at -- defaults to the origin, and is reset by a call to LookAt method
	Target mgl32.Vec3

	// up direction for camera -- which way is up -- defaults to positive Y axis, and is reset by call to LookAt method
	UpDir mgl32.Vec3

	// field of view in degrees
	FOV float32

	// aspect ratio (width/height)
	Aspect float32

	// near plane z coordinate
	Near float32

	// far plane z coordinate
	Far float32
}

// NewCamera returns a camera with default settings.
func NewCamera() *Camera {
	cm := &Camera{}
	cm.Defaults()
	return cm
}

func (cm *Camera) Defaults() {
	cm.FOV = 45
	cm.Aspect = 16.0 / 9.0
	cm.Near = 0.1
	cm.Far = 100
	cm.DefaultPose()
}

// DefaultPose resets the camera pose to default location and orientation, looking
// at the origin from 0,0,3, with up Y axis
func (cm *Camera) DefaultPose() {
	cm.Transform.Defaults()
	cm.Transform.SetPos(mgl32.Vec3{0, 0, 3})
	cm.LookAtOrigin()
}

// SetAspect sets the aspect ratio from the given framebuffer size.
// Sizes with zero area are ignored.
func (cm *Camera) SetAspect(size image.Point) {
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	cm.Aspect = float32(size.X) / float32(size.Y)
}

// Position returns the camera position.
func (cm *Camera) Position() mgl32.Vec3 {
	return cm.Transform.Pos()
}

// SetPosition sets the camera position, keeping its orientation.
func (cm *Camera) SetPosition(pos mgl32.Vec3) {
	cm.Transform.SetPos(pos)
}

// LookAt points the camera at given target location, using given up direction,
// and sets the Target, UpDir fields for future camera movements.
func (cm *Camera) LookAt(target, upDir mgl32.Vec3) {
	cm.Target = target
	if dir := target.Sub(cm.Position()); dir.Len() > 0 {
		upDir = UpFor(dir, upDir)
	} else if upDir.Len() == 0 {
		upDir = mgl32.Vec3{0, 1, 0}
	}
	cm.UpDir = upDir
	cm.Transform.LookAt(target, upDir)
}

// LookAtOrigin points the camera at origin with Y axis pointing Up (i.e., standard)
func (cm *Camera) LookAtOrigin() {
	cm.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

// LookAtTarget points the camera at current target using current up direction
func (cm *Camera) LookAtTarget() {
	cm.LookAt(cm.Target, cm.UpDir)
}

// ViewVector is the vector between the camera position and target
func (cm *Camera) ViewVector() mgl32.Vec3 {
	return cm.Position().Sub(cm.Target)
}

// Orbit moves the camera along the given 2D axes in degrees
// (delX = left/right, delY = up/down),
// relative to current position and orientation,
// keeping the same distance from the Target, and rotating the camera and
// the Up direction vector to keep looking at the target.
func (cm *Camera) Orbit(delX, delY float32) {
	ctdir := cm.ViewVector()
	if ctdir.Len() == 0 {
		ctdir = mgl32.Vec3{0, 0, 1}
	}
	dir := ctdir.Normalize()

	up := UpFor(dir, cm.UpDir).Normalize()
	right := up.Cross(dir).Normalize()

	// delX rotates around the up vector
	dxq := mgl32.QuatRotate(degToRad(delX), up)
	dx := dxq.Rotate(ctdir).Sub(ctdir)
	// delY rotates around the right vector
	dyq := mgl32.QuatRotate(degToRad(delY), right)
	dy := dyq.Rotate(ctdir).Sub(ctdir)

	cm.SetPosition(cm.Position().Add(dx).Add(dy))
	cm.UpDir = dyq.Rotate(cm.UpDir) // this is only one that affects up
	cm.LookAtTarget()
}

// OrbitRad orbits around the up vector by the given angle in radians.
func (cm *Camera) OrbitRad(angle float32) {
	cm.Orbit(angle*180/math32.Pi, 0)
}

// Zoom moves along axis given pct closer or further from the target.
// The camera never reaches the target.
func (cm *Camera) Zoom(zoomPct float32) {
	ctaxis := cm.ViewVector()
	if ctaxis.Len() == 0 {
		ctaxis = mgl32.Vec3{0, 0, 1}
	}
	dist := ctaxis.Len()
	ndist := math32.Max(dist*(1+zoomPct), cm.Near)
	cm.SetPosition(cm.Target.Add(ctaxis.Mul(ndist / dist)))
	cm.LookAtTarget()
}

// View returns the view matrix, the inverse of the camera transform.
func (cm *Camera) View() mgl32.Mat4 {
	return cm.Transform.Matrix().Inv()
}

// Projection returns the perspective projection matrix,
// with clip depth in [0, 1].
func (cm *Camera) Projection() mgl32.Mat4 {
	return clipDepth.Mul4(mgl32.Perspective(degToRad(cm.FOV), cm.Aspect, cm.Near, cm.Far))
}

// ViewProjection returns the combined view and projection matrix.
func (cm *Camera) ViewProjection() mgl32.Mat4 {
	return cm.Projection().Mul4(cm.View())
}
