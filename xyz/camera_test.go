// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "want %v, got %v", want, got)
	}
}

func assertFinite(t *testing.T, m mgl32.Mat4) {
	t.Helper()
	for i, v := range m {
		assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "element %d of %v", i, m)
	}
}

func TestTransform(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Ident4(), tr.Matrix())
	assert.Equal(t, float32(1), tr.Scale())

	tr.SetPos(mgl32.Vec3{1, 2, 3})
	tr.SetScale(2)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Pos())
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{3, 2, 3}, p.Vec3())

	tr = NewTransform()
	tr.RotateOnAxis(mgl32.Vec3{0, 1, 0}, 90)
	p = tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -1}, p.Vec3())

	tr = NewTransform()
	tr.SetPos(mgl32.Vec3{0, 0, 3})
	tr.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{0, 0, -1}, tr.Rot.Rotate(mgl32.Vec3{0, 0, -1}))

	// looking at itself keeps the rotation
	rot := tr.Rot
	tr.LookAt(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, rot, tr.Rot)
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera()
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, cam.Position())
	assert.Equal(t, mgl32.Vec3{}, cam.Target)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, cam.UpDir)

	// the origin is 3 units in front of the camera
	p := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -3}, p.Vec3())

	cam.SetAspect(image.Pt(800, 600))
	assert.InDelta(t, 4.0/3.0, cam.Aspect, 1e-6)
	cam.SetAspect(image.Pt(0, 600))
	assert.InDelta(t, 4.0/3.0, cam.Aspect, 1e-6)
}

func TestCameraProjectionDepth(t *testing.T) {
	cam := NewCamera()
	proj := cam.Projection()
	near := proj.Mul4x1(mgl32.Vec4{0, 0, -cam.Near, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -cam.Far, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)

	// the origin is in the view volume
	o := cam.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	z := o.Z() / o.W()
	assert.Greater(t, z, float32(0))
	assert.Less(t, z, float32(1))
	assert.InDelta(t, 0, o.X()/o.W(), 1e-5)
	assert.InDelta(t, 0, o.Y()/o.W(), 1e-5)
}

func TestCameraOrbit(t *testing.T) {
	cam := NewCamera()
	cam.Orbit(90, 0)
	assert.InDelta(t, 3, cam.ViewVector().Len(), 1e-4)
	assertVec3(t, mgl32.Vec3{3, 0, 0}, cam.Position())

	// still looking at the target
	p := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -3}, p.Vec3())

	cam.DefaultPose()
	for range 8 {
		cam.OrbitRad(mgl32.DegToRad(45))
	}
	assertVec3(t, mgl32.Vec3{0, 0, 3}, cam.Position())
}

func TestCameraLookAlongUp(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, UpFor(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}))
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, UpFor(mgl32.Vec3{0, -3, 0}, mgl32.Vec3{0, 1, 0}))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, UpFor(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}))

	cam := NewCamera()
	cam.SetPosition(mgl32.Vec3{0, 3, 0})
	cam.LookAtOrigin()
	assertFinite(t, cam.ViewProjection())
	p := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -3}, p.Vec3())

	start := cam.Position()
	for range 10 {
		cam.OrbitRad(0.01)
	}
	assertFinite(t, cam.ViewProjection())
	assert.NotEqual(t, start, cam.Position())
	assert.InDelta(t, 3, cam.ViewVector().Len(), 1e-3)

	var tr Transform
	tr.Defaults()
	tr.SetPos(mgl32.Vec3{0, -2, 0})
	tr.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{0, 1, 0}, tr.Rot.Rotate(mgl32.Vec3{0, 0, -1}))
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera()
	cam.Zoom(-0.5)
	assert.InDelta(t, 1.5, cam.ViewVector().Len(), 1e-4)
	cam.Zoom(1)
	assert.InDelta(t, 3, cam.ViewVector().Len(), 1e-4)
	cam.Zoom(-10)
	assert.InDelta(t, cam.Near, cam.ViewVector().Len(), 1e-4)
}
