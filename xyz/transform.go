// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the position, uniform scale and rotation of an object.
// The zero value is not valid: use [NewTransform] or Defaults.
type Transform struct {
	// PosScale is the position in xyz, and the uniform scale in w.
	PosScale mgl32.Vec4

	// Rot is the rotation.
	Rot mgl32.Quat
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	var tr Transform
	tr.Defaults()
	return tr
}

// Defaults sets the identity transform: origin, unit scale, no rotation.
func (tr *Transform) Defaults() {
	tr.PosScale = mgl32.Vec4{0, 0, 0, 1}
	tr.Rot = mgl32.QuatIdent()
}

// Pos returns the position.
func (tr *Transform) Pos() mgl32.Vec3 {
	return tr.PosScale.Vec3()
}

// SetPos sets the position.
func (tr *Transform) SetPos(pos mgl32.Vec3) {
	tr.PosScale = pos.Vec4(tr.PosScale.W())
}

// Scale returns the uniform scale.
func (tr *Transform) Scale() float32 {
	return tr.PosScale.W()
}

// SetScale sets the uniform scale.
func (tr *Transform) SetScale(scale float32) {
	tr.PosScale[3] = scale
}

// Matrix returns the transform as a matrix that scales,
// then rotates, then translates.
func (tr *Transform) Matrix() mgl32.Mat4 {
	p := tr.PosScale
	s := p.W()
	return mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(tr.Rot.Normalize().Mat4()).Mul4(mgl32.Scale3D(s, s, s))
}

// RotateOnAxis rotates by the given angle in degrees around the given
// axis, in addition to the current rotation.
func (tr *Transform) RotateOnAxis(axis mgl32.Vec3, angle float32) {
	q := mgl32.QuatRotate(degToRad(angle), axis.Normalize())
	tr.Rot = q.Mul(tr.Rot).Normalize()
}

// LookAt rotates the transform so that its -Z axis points at
// target, with the given up direction, or another axis if up is
// parallel to the view direction.
// A target at the position is ignored.
func (tr *Transform) LookAt(target, up mgl32.Vec3) {
	dir := target.Sub(tr.Pos())
	if dir.Len() == 0 {
		return
	}
	view := mgl32.LookAtV(tr.Pos(), target, UpFor(dir, up))
	tr.Rot = mgl32.Mat4ToQuat(view.Inv()).Normalize()
}

// UpFor returns an up direction usable for looking along dir:
// up itself, or if that is zero or parallel to dir, the first of
// the Y, Z and X axes that is not.
func UpFor(dir, up mgl32.Vec3) mgl32.Vec3 {
	dir = dir.Normalize()
	for _, u := range []mgl32.Vec3{up, {0, 1, 0}, {0, 0, 1}, {1, 0, 0}} {
		if u.Len() > 0 && dir.Cross(u.Normalize()).Len() > 1e-3 {
			return u
		}
	}
	return up
}

func degToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}
