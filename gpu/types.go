// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"strings"

	"cogentcore.org/webgpudemo/gpu/driver"
)

// Types is a list of supported GPU data types for vertex attributes
// and uniform members. Note that Float32Vector3 is only properly
// aligned for vertex data: uniform members use Float32Vector4.
type Types int32

const (
	UndefinedType Types = iota

	Uint32

	Float32
	Float32Vector2
	Float32Vector3 // note: only use for vertex data -- not properly aligned for uniforms
	Float32Vector4

	Float32Matrix4 // std transform matrix
)

var typeNames = [...]string{"UndefinedType", "Uint32", "Float32", "Float32Vector2", "Float32Vector3", "Float32Vector4", "Float32Matrix4"}

func (tp Types) String() string {
	if tp >= 0 && int(tp) < len(typeNames) {
		return typeNames[tp]
	}
	return fmt.Sprintf("Types(%d)", int32(tp))
}

// TypeToVertexFormat maps vertex attribute types to driver formats.
var TypeToVertexFormat = map[Types]driver.VertexFormat{
	Uint32:         driver.VertexFormatUint32,
	Float32:        driver.VertexFormatFloat32,
	Float32Vector2: driver.VertexFormatFloat32x2,
	Float32Vector3: driver.VertexFormatFloat32x3,
	Float32Vector4: driver.VertexFormatFloat32x4,
}

// TypeSizes gives number of bytes for each type
var TypeSizes = map[Types]int{
	Uint32:         4,
	Float32:        4,
	Float32Vector2: 8,
	Float32Vector3: 12,
	Float32Vector4: 16,
	Float32Matrix4: 64,
}

// VertexFormat returns the driver VertexFormat for given type,
// undefined (0) for types that cannot be vertex attributes.
func (tp Types) VertexFormat() driver.VertexFormat {
	return TypeToVertexFormat[tp]
}

// Bytes returns number of bytes for this type
func (tp Types) Bytes() int {
	return TypeSizes[tp]
}

// VertexAttrib is one attribute of an interleaved vertex.
type VertexAttrib struct {
	// Name is the attribute name, for debugging.
	Name string

	// Type of the attribute.
	Type Types

	// Location is the shader location.
	Location uint32
}

// VertexLayout is the layout of one interleaved vertex buffer,
// with attributes packed in order.
type VertexLayout struct {
	Attribs []VertexAttrib
}

// Add adds an attribute at the next shader location.
func (vl *VertexLayout) Add(name string, tp Types) *VertexLayout {
	vl.Attribs = append(vl.Attribs, VertexAttrib{Name: name, Type: tp, Location: uint32(len(vl.Attribs))})
	return vl
}

// Stride returns the size of one vertex in bytes.
func (vl *VertexLayout) Stride() int {
	n := 0
	for _, a := range vl.Attribs {
		n += a.Type.Bytes()
	}
	return n
}

// Offset returns the byte offset of the attribute with the given name, or -1.
func (vl *VertexLayout) Offset(name string) int {
	off := 0
	for _, a := range vl.Attribs {
		if a.Name == name {
			return off
		}
		off += a.Type.Bytes()
	}
	return -1
}

// BufferLayout returns the driver vertex buffer layout.
func (vl *VertexLayout) BufferLayout() driver.VertexBufferLayout {
	bl := driver.VertexBufferLayout{ArrayStride: uint64(vl.Stride())}
	off := uint64(0)
	for _, a := range vl.Attribs {
		bl.Attributes = append(bl.Attributes, driver.VertexAttribute{
			Format:         a.Type.VertexFormat(),
			Offset:         off,
			ShaderLocation: a.Location,
		})
		off += uint64(a.Type.Bytes())
	}
	return bl
}

// String returns a compact description, used in pipeline keys.
func (vl *VertexLayout) String() string {
	var b strings.Builder
	for i, a := range vl.Attribs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%s", a.Location, a.Type)
	}
	return b.String()
}
