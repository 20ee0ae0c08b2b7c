// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/webgpudemo/base/iox/imagex"
	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	// ErrUnsupportedAsset is returned for asset files that are not glTF.
	ErrUnsupportedAsset = errors.New("xyz: unsupported asset format")

	// ErrNoPosition is returned for a primitive without positions.
	ErrNoPosition = errors.New("xyz: primitive has no POSITION attribute")

	// ErrNoMeshes is returned for an asset without any triangle meshes.
	ErrNoMeshes = errors.New("xyz: asset has no meshes")
)

// IsGLTF returns whether the file name has a glTF extension,
// .gltf (text) or .glb (binary).
func IsGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".gltf" || ext == ".glb"
}

// LoadGLTF loads the meshes of a glTF file. Each triangle primitive
// of each mesh reachable from the default scene becomes one MeshData,
// with the world matrix of its node. Without a scene, all meshes
// are loaded untransformed.
func LoadGLTF(path string) ([]*MeshData, error) {
	if !IsGLTF(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAsset, path)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xyz: loading %q: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadGLTF(doc, filepath.Dir(path), name)
}

// ReadGLTF returns the meshes of a decoded glTF document.
// dir is the directory that relative image URIs are resolved in,
// and name prefixes the mesh names.
func ReadGLTF(doc *gltf.Document, dir, name string) ([]*MeshData, error) {
	ld := &gltfLoader{doc: doc, dir: dir, name: name, visited: map[int]bool{}}
	if err := ld.load(); err != nil {
		return nil, err
	}
	if len(ld.meshes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMeshes, name)
	}
	return ld.meshes, nil
}

type gltfLoader struct {
	doc     *gltf.Document
	dir     string
	name    string
	visited map[int]bool
	meshes  []*MeshData
}

func (ld *gltfLoader) load() error {
	doc := ld.doc
	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	}
	if len(roots) == 0 {
		for mi := range doc.Meshes {
			if err := ld.addMesh(mi, mgl32.Ident4()); err != nil {
				return err
			}
		}
		return nil
	}
	for _, ni := range roots {
		if err := ld.addNode(ni, mgl32.Ident4()); err != nil {
			return err
		}
	}
	return nil
}

// addNode adds the meshes of the node and its children.
func (ld *gltfLoader) addNode(ni int, parent mgl32.Mat4) error {
	if ni < 0 || ni >= len(ld.doc.Nodes) {
		return fmt.Errorf("xyz: %s: node %d out of range", ld.name, ni)
	}
	if ld.visited[ni] {
		return fmt.Errorf("xyz: %s: node %d is in a cycle or has two parents", ld.name, ni)
	}
	ld.visited[ni] = true
	nd := ld.doc.Nodes[ni]
	world := parent.Mul4(nodeMatrix(nd))
	if nd.Mesh != nil {
		if err := ld.addMesh(*nd.Mesh, world); err != nil {
			return err
		}
	}
	for _, ci := range nd.Children {
		if err := ld.addNode(ci, world); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the local matrix of the node, either given
// directly or as translation, rotation and scale.
func nodeMatrix(nd *gltf.Node) mgl32.Mat4 {
	m := nd.MatrixOrDefault()
	var mat mgl32.Mat4
	for i, v := range m {
		mat[i] = float32(v)
	}
	if mat != mgl32.Ident4() {
		return mat
	}
	t := nd.TranslationOrDefault()
	r := nd.RotationOrDefault()
	s := nd.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (ld *gltfLoader) addMesh(mi int, world mgl32.Mat4) error {
	if mi < 0 || mi >= len(ld.doc.Meshes) {
		return fmt.Errorf("xyz: %s: mesh %d out of range", ld.name, mi)
	}
	mesh := ld.doc.Meshes[mi]
	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			slog.Warn("xyz: skipping non-triangle primitive", "asset", ld.name, "mesh", mi, "primitive", pi, "mode", prim.Mode)
			continue
		}
		md, err := ld.primitive(mi, pi, prim)
		if err != nil {
			return fmt.Errorf("xyz: %s: mesh %d primitive %d: %w", ld.name, mi, pi, err)
		}
		md.Matrix = world
		ld.meshes = append(ld.meshes, md)
	}
	return nil
}

func (ld *gltfLoader) accessor(ai int) (*gltf.Accessor, error) {
	if ai < 0 || ai >= len(ld.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", ai)
	}
	return ld.doc.Accessors[ai], nil
}

func (ld *gltfLoader) primitive(mi, pi int, prim *gltf.Primitive) (*MeshData, error) {
	doc := ld.doc
	name := fmt.Sprintf("%s mesh%d", ld.name, mi)
	if mn := doc.Meshes[mi].Name; mn != "" {
		name = mn
	}
	md := NewMeshData(fmt.Sprintf("%s.%d", name, pi))

	pai, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, ErrNoPosition
	}
	acr, err := ld.accessor(pai)
	if err != nil {
		return nil, err
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	n := len(pos)
	md.Vertices = make([]Vertex, n)
	for i, p := range pos {
		md.Vertices[i] = Vertex{Position: p, Normal: [3]float32{0, 0, 1}, Tangent: [4]float32{1, 0, 0, 1}}
	}

	if ai, ok := prim.Attributes["NORMAL"]; ok {
		acr, err := ld.accessor(ai)
		if err != nil {
			return nil, err
		}
		ns, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil || len(ns) != n {
			return nil, attribError("NORMAL", len(ns), n, err)
		}
		for i := range ns {
			md.Vertices[i].Normal = ns[i]
		}
	}
	if ai, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acr, err := ld.accessor(ai)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil || len(uvs) != n {
			return nil, attribError("TEXCOORD_0", len(uvs), n, err)
		}
		for i := range uvs {
			md.Vertices[i].UV = uvs[i]
		}
	}
	if ai, ok := prim.Attributes["TANGENT"]; ok {
		acr, err := ld.accessor(ai)
		if err != nil {
			return nil, err
		}
		ts, err := modeler.ReadTangent(doc, acr, nil)
		if err != nil || len(ts) != n {
			return nil, attribError("TANGENT", len(ts), n, err)
		}
		for i := range ts {
			md.Vertices[i].Tangent = ts[i]
		}
	}

	if prim.Indices != nil {
		acr, err := ld.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		// u8 and u16 indices are widened to u32
		md.Indices, err = modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		md.Indices = make([]uint32, n)
		for i := range md.Indices {
			md.Indices[i] = uint32(i)
		}
	}

	if err := ld.material(&md.Material, prim.Material); err != nil {
		return nil, err
	}
	return md, nil
}

func attribError(attr string, got, want int, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", attr, err)
	}
	return fmt.Errorf("%s: %d values for %d vertices", attr, got, want)
}

// material sets the material data from the glTF material,
// leaving the defaults for a primitive without one.
func (ld *gltfLoader) material(md *MaterialData, mi *int) error {
	doc := ld.doc
	md.Name = ld.name + " default"
	if mi == nil || *mi < 0 || *mi >= len(doc.Materials) {
		return nil
	}
	m := doc.Materials[*mi]
	md.Name = m.Name
	if md.Name == "" {
		md.Name = fmt.Sprintf("%s material%d", ld.name, *mi)
	}
	var err error
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		bc := pbr.BaseColorFactorOrDefault()
		md.BaseColorFactor = mgl32.Vec4{float32(bc[0]), float32(bc[1]), float32(bc[2]), float32(bc[3])}
		md.MetallicFactor = float32(pbr.MetallicFactorOrDefault())
		md.RoughnessFactor = float32(pbr.RoughnessFactorOrDefault())
		if ti := pbr.BaseColorTexture; ti != nil {
			if md.Textures[BaseColorTexture], err = ld.texture(ti.Index); err != nil {
				return err
			}
			ld.sampler(md, ti.Index)
		}
		if ti := pbr.MetallicRoughnessTexture; ti != nil {
			if md.Textures[MetallicRoughnessTexture], err = ld.texture(ti.Index); err != nil {
				return err
			}
		}
	}
	if nt := m.NormalTexture; nt != nil && nt.Index != nil {
		if md.Textures[NormalTexture], err = ld.texture(*nt.Index); err != nil {
			return err
		}
		md.NormalScale = float32(nt.ScaleOrDefault())
	}
	if ot := m.OcclusionTexture; ot != nil && ot.Index != nil {
		if md.Textures[OcclusionTexture], err = ld.texture(*ot.Index); err != nil {
			return err
		}
		md.OcclusionStrength = float32(ot.StrengthOrDefault())
	}
	if ti := m.EmissiveTexture; ti != nil {
		if md.Textures[EmissiveTexture], err = ld.texture(ti.Index); err != nil {
			return err
		}
	}
	ef := m.EmissiveFactor
	md.EmissiveFactor = mgl32.Vec3{float32(ef[0]), float32(ef[1]), float32(ef[2])}
	return nil
}

// texture returns the encoded image of the texture, or nil
// if it has no image source.
func (ld *gltfLoader) texture(ti int) ([]byte, error) {
	doc := ld.doc
	if ti < 0 || ti >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", ti)
	}
	tex := doc.Textures[ti]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d: image %d out of range", ti, *tex.Source)
	}
	img := doc.Images[*tex.Source]
	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", *tex.Source, *img.BufferView)
		}
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		var uri string
		uri, err = url.PathUnescape(img.URI)
		if err == nil {
			data, err = os.ReadFile(filepath.Join(ld.dir, filepath.FromSlash(uri)))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", *tex.Source, err)
	}
	if err := ld.checkMIME(*tex.Source, img, data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkMIME checks that the declared mime type of an image, from its
// mimeType or data URI, is a supported image format. Data in another
// format than declared is decoded anyway, with a warning.
func (ld *gltfLoader) checkMIME(ii int, img *gltf.Image, data []byte) error {
	mime := img.MimeType
	if mime == "" && img.IsEmbeddedResource() {
		mime, _, _ = strings.Cut(strings.TrimPrefix(img.URI, "data:"), ";")
	}
	if mime == "" || len(data) == 0 {
		return nil
	}
	want, err := imagex.MIMEToFormat(mime)
	if err != nil {
		return fmt.Errorf("image %d: %w", ii, err)
	}
	if got, err := imagex.Detect(data); err == nil && got != want {
		slog.Warn("xyz: image data does not match its mime type", "asset", ld.name, "image", ii, "mimeType", mime, "format", got)
	}
	return nil
}

// sampler sets the sampler settings of the material from the
// sampler of the texture, if it has one.
func (ld *gltfLoader) sampler(md *MaterialData, ti int) {
	tex := ld.doc.Textures[ti]
	if tex.Sampler == nil || *tex.Sampler < 0 || *tex.Sampler >= len(ld.doc.Samplers) {
		return
	}
	s := ld.doc.Samplers[*tex.Sampler]
	md.AddressU = addressMode(s.WrapS)
	md.AddressV = addressMode(s.WrapT)
	if s.MagFilter == gltf.MagNearest {
		md.MagFilter = driver.FilterModeNearest
	}
	switch s.MinFilter {
	case gltf.MinNearest, gltf.MinNearestMipMapNearest, gltf.MinNearestMipMapLinear:
		md.MinFilter = driver.FilterModeNearest
	}
}

func addressMode(w gltf.WrappingMode) driver.AddressMode {
	switch w {
	case gltf.WrapClampToEdge:
		return driver.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return driver.AddressModeMirrorRepeat
	}
	return driver.AddressModeRepeat
}
